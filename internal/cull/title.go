package cull

import (
	"strings"

	"github.com/wikicull/wikicull/internal/model"
)

// Title-based guards. Unlike content predicates these express "never cull
// this entry, whatever its text": they return false (block culling) when
// the entry matches a naming convention, and true otherwise, so they are
// conjoined with content predicates:
//
//	p := cull.And(wordCount, cull.DisambiguationGuard)
//
// Per the eligibility rule only new-page creations are guarded; edits to
// existing pages pass through to the content predicates unconditionally.

// DisambiguationGuard blocks culling of newly created disambiguation pages.
func DisambiguationGuard(entry *model.PageEntry, _ string) bool {
	if entry == nil || !entry.NewPage {
		return true
	}
	return !strings.HasSuffix(entry.Title, "(disambiguation)")
}

// ListPageGuard blocks culling of newly created "List of ..." pages.
func ListPageGuard(entry *model.PageEntry, _ string) bool {
	if entry == nil || !entry.NewPage {
		return true
	}
	return !strings.HasPrefix(entry.Title, "List of ")
}
