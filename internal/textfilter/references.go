package textfilter

import "strings"

// RemoveReferences strips citation markup: paired <ref>...</ref> (named or
// not) and self-closing <ref name="x" /> reuse tags. Surrounding text is
// concatenated without inserting whitespace. An opening <ref> with no
// matching close is left untouched; deleting to end-of-text would take
// unrelated prose with it.
func RemoveReferences(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		open := indexFold(s[i:], "<ref")
		if open < 0 {
			b.WriteString(s[i:])
			break
		}
		open += i

		// "<ref" must be a tag boundary, not a prefix of another element
		// such as <references/>.
		after := open + len("<ref")
		if after < len(s) && !isRefBoundary(s[after]) {
			b.WriteString(s[i : after+1])
			i = after + 1
			continue
		}

		tagEnd := strings.IndexByte(s[after:], '>')
		if tagEnd < 0 {
			// Unterminated opening tag: keep the span as-is.
			b.WriteString(s[i:])
			break
		}
		tagEnd += after

		b.WriteString(s[i:open])

		if strings.HasSuffix(strings.TrimRight(s[after:tagEnd], " \t"), "/") {
			// Self-closing named reuse: drop the tag alone.
			i = tagEnd + 1
			continue
		}

		closing := indexFold(s[tagEnd+1:], "</ref>")
		if closing < 0 {
			// No matching close: emit the opening tag untouched and move on.
			b.WriteString(s[open : tagEnd+1])
			i = tagEnd + 1
			continue
		}
		i = tagEnd + 1 + closing + len("</ref>")
	}

	return b.String()
}

// isRefBoundary reports whether c can follow "<ref" inside a ref tag.
func isRefBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '>', '/':
		return true
	}
	return false
}

// indexFold is strings.Index with ASCII case folding, enough for wiki tag
// names.
func indexFold(s, pat string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(pat))
}
