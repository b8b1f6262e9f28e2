package cull

import (
	"strings"

	"github.com/wikicull/wikicull/internal/model"
)

// WordCount builds the default content predicate: a diff is minor when its
// longest run of consecutive plain words, measured between markup
// delimiters, is strictly below threshold. Raising the threshold can only
// grow the set of culled diffs, never shrink it.
//
// The threshold is validated here so a bad configuration fails when the
// predicate is built, not in the middle of an analyze pass.
func WordCount(threshold int) (Predicate, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	return func(_ *model.PageEntry, text string) bool {
		return LongestWordRun(text) < threshold
	}, nil
}

// LongestWordRun returns the maximum number of consecutive word tokens in
// any delimiter-free segment of text. Exported for direct use in reports.
func LongestWordRun(text string) int {
	max := 0
	for _, segment := range strings.FieldsFunc(text, isDelimiter) {
		run := 0
		for _, tok := range strings.Fields(segment) {
			if isWord(tok) {
				run++
			}
		}
		if run > max {
			max = run
		}
	}
	return max
}
