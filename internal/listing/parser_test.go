package listing_test

import (
	"strings"
	"testing"

	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/listing"
)

const sampleListing = `*[[:Culture of Foo]] (2 edits): [[Special:Diff/1001|(+2054)]] [[Special:Diff/1002|(+317)]]
*'''N''' [[:Foo (disambiguation)]] (1 edit): [[Special:Diff/1003|(+96)]]
*[[:History of Foo]] (1 edit): [[Special:Diff/1004|(+1200)]]`

func TestParse_WellFormedListing(t *testing.T) {
	t.Parallel()
	p := listing.New(interfaces.NewTestLogger(false))

	page := p.Parse(sampleListing)
	if got, want := len(page.Entries), 3; got != want {
		t.Fatalf("entries = %d, want %d", got, want)
	}
	if page.Source != sampleListing {
		t.Error("Source must hold the original listing verbatim")
	}

	first := page.Entries[0]
	if first.Title != "Culture of Foo" {
		t.Errorf("title = %q", first.Title)
	}
	if first.NewPage {
		t.Error("first entry should not be flagged as a new page")
	}
	if got, want := len(first.DiffRefs), 2; got != want {
		t.Fatalf("diff refs = %d, want %d", got, want)
	}
	// Refs are captured verbatim so they can be removed by substring match.
	if first.DiffRefs[0] != "[[Special:Diff/1001|(+2054)]]" {
		t.Errorf("ref = %q", first.DiffRefs[0])
	}
	if !strings.Contains(page.Source, first.DiffRefs[1]) {
		t.Error("captured ref not found verbatim in source")
	}

	second := page.Entries[1]
	if !second.NewPage {
		t.Error("second entry should carry the new-page flag")
	}
	if second.Title != "Foo (disambiguation)" {
		t.Errorf("title = %q", second.Title)
	}
}

func TestParse_OrderPreservedAndDuplicatesKept(t *testing.T) {
	t.Parallel()
	src := `*[[:Alpha]] (1 edit): [[Special:Diff/1|(+1)]]
*[[:Alpha]] (1 edit): [[Special:Diff/2|(+2)]]`

	page := listing.New(nil).Parse(src)
	if len(page.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (duplicate titles are not merged)", len(page.Entries))
	}
	if page.Entries[0].DiffRefs[0] != "[[Special:Diff/1|(+1)]]" ||
		page.Entries[1].DiffRefs[0] != "[[Special:Diff/2|(+2)]]" {
		t.Error("entry order does not match appearance order")
	}
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		line string
	}{
		{"no title brackets", `* Some stray text with no link`},
		{"unterminated title", `*[[:Broken title (1 edit): [[Special:Diff/5|(+5)]]`},
		{"no diff refs", `*[[:Lonely page]] (0 edits):`},
		{"unterminated diff ref", `*[[:Page]] (1 edit): [[Special:Diff/9|(+9)`},
		{"not a bullet", `[[:Page]] (1 edit): [[Special:Diff/9|(+9)]]`},
		{"empty title", `*[[:]] (1 edit): [[Special:Diff/9|(+9)]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := listing.New(nil).Parse(tt.line)
			if len(page.Entries) != 0 {
				t.Errorf("expected line to be skipped, got %d entries", len(page.Entries))
			}
		})
	}
}

func TestParse_BadLineDoesNotAbortRestOfListing(t *testing.T) {
	t.Parallel()
	src := `* broken line
*[[:Good page]] (1 edit): [[Special:Diff/77|(+700)]]`

	page := listing.New(nil).Parse(src)
	if len(page.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(page.Entries))
	}
	if page.Entries[0].Title != "Good page" {
		t.Errorf("title = %q", page.Entries[0].Title)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()
	page := listing.New(nil).Parse("")
	if page == nil || len(page.Entries) != 0 {
		t.Fatal("empty input should yield an empty page, not nil or entries")
	}
}
