package textfilter

import "strings"

// linkSchemes are the protocols an external bracket link can start with.
// Wikitext also allows protocol-relative "//host" links.
var linkSchemes = []string{"http://", "https://", "ftp://", "//"}

// RemoveExternalLinks strips single-bracket external link units, both
// labeled ("[URL some label]") and bare ("[URL]"). The unit is deleted
// literally with no whitespace collapsing, so "a [URL x] b" becomes "a  b".
// Internal [[wiki links]], plain bracketed text ("[sic]") and an
// unterminated "[" are left untouched.
func RemoveExternalLinks(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '[')
		if open < 0 {
			b.WriteString(s[i:])
			break
		}
		open += i
		b.WriteString(s[i:open])

		// [[...]] is an internal link; copy the whole unit through so its
		// target never looks like an external link to this pass.
		if strings.HasPrefix(s[open:], "[[") {
			end := strings.Index(s[open+2:], "]]")
			if end < 0 {
				b.WriteString(s[open:])
				break
			}
			b.WriteString(s[open : open+2+end+2])
			i = open + 2 + end + 2
			continue
		}

		end := strings.IndexByte(s[open+1:], ']')
		if end < 0 {
			b.WriteString(s[open:])
			break
		}
		unit := s[open+1 : open+1+end]
		if hasLinkScheme(unit) {
			i = open + 1 + end + 1
			continue
		}
		// Bracketed but not a link: keep it.
		b.WriteString(s[open : open+1+end+1])
		i = open + 1 + end + 1
	}

	return b.String()
}

func hasLinkScheme(s string) bool {
	for _, scheme := range linkSchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
