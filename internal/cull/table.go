package cull

import (
	"strings"

	"github.com/wikicull/wikicull/internal/model"
)

// Table culls a diff whose addition is wiki-table markup with no prose
// outside the table: it must open with "{|", close with "|}", and every
// line in between must be table structure (rows "|-", cells "|"/"!",
// captions "|+", nested table delimiters).
func Table(_ *model.PageEntry, text string) bool {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{|") || !strings.HasSuffix(t, "|}") {
		return false
	}

	lines := strings.Split(t, "\n")
	if len(lines) < 2 {
		// "{|" and "|}" on one line with inline cells.
		return true
	}
	for _, line := range lines[1 : len(lines)-1] {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}
		switch l[0] {
		case '|', '!', '{':
			continue
		}
		return false
	}
	return true
}
