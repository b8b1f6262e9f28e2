package textfilter

import "strings"

// RemoveComments strips HTML/wikitext comments (<!-- ... -->). An
// unterminated comment opener is left in place.
func RemoveComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		open := strings.Index(s[i:], "<!--")
		if open < 0 {
			b.WriteString(s[i:])
			break
		}
		open += i

		end := strings.Index(s[open+len("<!--"):], "-->")
		if end < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i:open])
		i = open + len("<!--") + end + len("-->")
	}

	return b.String()
}
