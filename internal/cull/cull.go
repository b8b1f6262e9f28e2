// Package cull decides whether a diff is minor. A Predicate sees the page
// entry the diff belongs to and the diff's filtered added text, and returns
// true when the diff should be culled (minor, not worth manual copyright
// review). Predicates are combined at configuration time with And/Or/Not;
// the engine itself applies exactly one predicate slot.
package cull

import (
	"errors"
	"strings"
	"unicode"

	"github.com/wikicull/wikicull/internal/model"
)

// Predicate reports whether one diff is minor. text is the diff's filtered
// added text; entry may be consulted for title-based decisions and is never
// nil when called through the engine.
type Predicate func(entry *model.PageEntry, text string) bool

// ErrInvalidThreshold is returned by WordCount for thresholds < 1.
var ErrInvalidThreshold = errors.New("cull: word count threshold must be positive")

// And culls only when every predicate culls. And() with no arguments never
// culls.
func And(ps ...Predicate) Predicate {
	return func(entry *model.PageEntry, text string) bool {
		if len(ps) == 0 {
			return false
		}
		for _, p := range ps {
			if !p(entry, text) {
				return false
			}
		}
		return true
	}
}

// Or culls when any predicate culls.
func Or(ps ...Predicate) Predicate {
	return func(entry *model.PageEntry, text string) bool {
		for _, p := range ps {
			if p(entry, text) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(entry *model.PageEntry, text string) bool {
		return !p(entry, text)
	}
}

// Never keeps every diff for review. It is the zero-risk default.
func Never(*model.PageEntry, string) bool { return false }

// isWord reports whether a token carries content: at least one letter or
// digit. Quote runs ('''), dashes and stray punctuation do not qualify.
func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// markupDelimiters break prose into segments for word counting. A run of
// words interrupted by any of these no longer counts as continuous prose.
const markupDelimiters = "<>{}|=[]"

func isDelimiter(r rune) bool {
	return strings.ContainsRune(markupDelimiters, r)
}
