package model

// CCIPage is one contributor-copyright-investigation report page under
// analysis. It is built once by the listing parser and then mutated only by
// the engine's analyze pass, which rewrites MinorEdits wholesale. A CCIPage
// is not safe for concurrent use; analyze two pages on two goroutines instead.
type CCIPage struct {
	// Source is the raw wikitext listing the page was parsed from. It is
	// never mutated; culled listings are derived copies.
	Source string `json:"source"`

	// Entries in order of appearance. Duplicate titles stay duplicated.
	Entries []*PageEntry `json:"entries"`

	// MinorEdits holds the verbatim diff-reference substrings classified
	// minor by the most recent analyze pass, in original appearance order.
	// Rebuilt from scratch on every pass.
	MinorEdits []string `json:"minor_edits"`
}

// DiffCount returns the total number of diff references across all entries.
func (p *CCIPage) DiffCount() int {
	n := 0
	for _, e := range p.Entries {
		n += len(e.DiffRefs)
	}
	return n
}

// PageEntry is one surveyed article within a CCIPage.
type PageEntry struct {
	// Title as it appears between [[: and ]] in the listing line.
	Title string `json:"title"`

	// NewPage is set when the listing flags this entry as the creation of a
	// new page. Title-based culling guards only apply to new pages.
	NewPage bool `json:"new_page"`

	// DiffRefs holds each diff reference verbatim, brackets and label
	// included, so minor refs can later be removed from Source by exact
	// substring match.
	DiffRefs []string `json:"diff_refs"`
}

// DiffRecord is the per-diff working state of one analysis pass. Records are
// keyed by their reference text and never persisted past the engine unless a
// store explicitly saves them.
type DiffRecord struct {
	// Ref is the same string stored in PageEntry.DiffRefs.
	Ref string `json:"ref"`

	// AddedText is the raw added text supplied by the diff loader; empty
	// when the fetch failed.
	AddedText string `json:"added_text"`

	// FilteredText is AddedText after the engine's filter chain. Recomputed
	// whenever diffs are (re)loaded.
	FilteredText string `json:"filtered_text"`

	// Minor is the verdict of the most recent analyze pass.
	Minor bool `json:"minor"`

	// FetchOK records whether the loader actually produced text for this
	// diff. A failed fetch still leaves the diff in the page.
	FetchOK bool `json:"fetch_ok"`
}
