package cull

import (
	"strings"

	"github.com/wikicull/wikicull/internal/model"
)

// filePrefixes are the embed namespaces recognized by FileAddition.
var filePrefixes = []string{"[[file:", "[[image:"}

// FileAddition culls a diff whose entire addition is one file or image
// embed directive. Caption text lives inside the embed and does not exempt
// it: pure structural image placement is always minor. Prose outside the
// embed keeps the diff major.
func FileAddition(_ *model.PageEntry, text string) bool {
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)

	matched := false
	for _, p := range filePrefixes {
		if strings.HasPrefix(lower, p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	// File embeds may nest [[links]] in their caption, so the closing
	// brackets are found by depth counting, not by the first "]]".
	end, ok := matchBrackets(t)
	if !ok {
		return false
	}
	return strings.TrimSpace(t[end:]) == ""
}

// matchBrackets scans a string starting with "[[" and returns the index
// just past the matching "]]". ok is false for unbalanced input.
func matchBrackets(s string) (int, bool) {
	if !strings.HasPrefix(s, "[[") {
		return 0, false
	}
	depth := 0
	for i := 0; i+1 < len(s); i++ {
		switch {
		case s[i] == '[' && s[i+1] == '[':
			depth++
			i++
		case s[i] == ']' && s[i+1] == ']':
			depth--
			i++
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
