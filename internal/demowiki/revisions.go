package demowiki

// Revision is one canned edit served by the demo wiki.
type Revision struct {
	// ID is the revision id referenced as Special:Diff/<ID>.
	ID string

	// AddedLines are the lines the edit added, served as diff-addedline
	// cells by action=compare.
	AddedLines []string

	// Content and ParentID back the action=query revisions fallback.
	Content  string
	ParentID int64

	// CompareFails makes action=compare answer nosuchrevid, forcing
	// clients onto the revision-content fallback.
	CompareFails bool
}

// SampleListing is a wikitext listing whose diff links all resolve
// against the demo wiki's canned revisions.
const SampleListing = `* [[:Example article]] (3 edits): [[Special:Diff/1001|(+1200)]][[Special:Diff/1002|(+24)]][[Special:Diff/1003|(+88)]]
* '''N''' [[:List of examples]] (2 edits): [[Special:Diff/1004|(+45)]][[Special:Diff/1005|(+160)]]
* [[:Another article]] (1 edits): [[Special:Diff/1006|(+230)]]`

// AllRevisions returns the canned revisions, covering prose that should
// survive culling and the markup shapes that should not.
func AllRevisions() []Revision {
	return []Revision{
		{
			ID: "1001",
			AddedLines: []string{
				"The quick brown fox jumps over the lazy dog and keeps running through the meadow until nightfall.",
				"A second paragraph of genuinely new prose that any reviewer would want to read before deciding.",
			},
		},
		{
			ID:         "1002",
			AddedLines: []string{"[[Category:Examples]]"},
		},
		{
			ID:         "1003",
			AddedLines: []string{`<ref>{{cite web |url=http://example.com |title=Example source}}</ref>`},
		},
		{
			ID:         "1004",
			AddedLines: []string{"[[File:Example.jpg|thumb|An example image with a [[linked]] caption]]"},
		},
		{
			ID: "1005",
			AddedLines: []string{
				"{| class=\"wikitable\"",
				"! Header",
				"| Value",
				"|}",
			},
		},
		{
			ID:           "1006",
			CompareFails: true,
			ParentID:     900,
			Content: "Old text that was already there.\n" +
				"These eleven brand new words were only added in the later revision.",
		},
		{
			// Parent of 1006, only reachable through the fallback.
			ID:      "900",
			Content: "Old text that was already there.",
		},
	}
}
