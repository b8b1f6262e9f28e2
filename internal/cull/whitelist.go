package cull

import (
	"unicode"

	"github.com/wikicull/wikicull/internal/model"
)

// Whitelist culls diffs whose filtered text carries no substantive content
// at all: empty, whitespace, or markup/punctuation with no letters or
// digits. This is the one predicate that explicitly treats a failed fetch
// (empty added text) as minor.
func Whitelist(_ *model.PageEntry, text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
