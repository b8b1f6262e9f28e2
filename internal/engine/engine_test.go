package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/wikicull/wikicull/internal/cull"
	"github.com/wikicull/wikicull/internal/engine"
	"github.com/wikicull/wikicull/internal/listing"
	"github.com/wikicull/wikicull/internal/model"
	"github.com/wikicull/wikicull/internal/testutil"
	"github.com/wikicull/wikicull/internal/textfilter"
)

const testListing = `*[[:Culture of Foo]] (3 edits): [[Special:Diff/1|(+2054)]] [[Special:Diff/2|(+317)]] [[Special:Diff/3|(+96)]]
*'''N''' [[:Foo (disambiguation)]] (1 edit): [[Special:Diff/4|(+120)]]`

func newLoadedEngine(t *testing.T, loader *testutil.DummyLoader) (*engine.Engine, *model.CCIPage) {
	t.Helper()
	page := listing.New(nil).Parse(testListing)
	eng, err := engine.New(engine.Config{}, loader, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if err := eng.LoadDiffs(context.Background(), page); err != nil {
		t.Fatalf("LoadDiffs: %v", err)
	}
	return eng, page
}

func TestEngine_ConfigurationContract(t *testing.T) {
	t.Parallel()
	if _, err := engine.New(engine.Config{}, nil, nil); err == nil {
		t.Error("nil loader must be rejected at construction")
	}
	eng, err := engine.New(engine.Config{}, &testutil.DummyLoader{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.SetFilter(nil); err == nil {
		t.Error("nil filter must be rejected")
	}
	if err := eng.SetPredicate(nil); err == nil {
		t.Error("nil predicate must be rejected")
	}
	if err := eng.AnalyzeDiffs(nil); err == nil {
		t.Error("nil page must be rejected")
	}
	if err := eng.AnalyzeDiffs(&model.CCIPage{}); err == nil {
		t.Error("analyzing an unloaded page must fail")
	}
}

func TestEngine_WordCountAnalysis(t *testing.T) {
	t.Parallel()
	loader := &testutil.DummyLoader{Texts: map[string]string{
		"[[Special:Diff/1|(+2054)]]": "a long and genuinely substantive paragraph of new article prose",
		"[[Special:Diff/2|(+317)]]":  "tiny fix",
		"[[Special:Diff/3|(+96)]]":   "<ref>only a citation</ref>",
		"[[Special:Diff/4|(+120)]]":  "Foo may refer to",
	}}
	eng, page := newLoadedEngine(t, loader)

	if err := eng.SetFilter(textfilter.RemoveReferences); err != nil {
		t.Fatal(err)
	}
	wc, err := cull.WordCount(5)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.SetPredicate(wc); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"[[Special:Diff/2|(+317)]]", // two words
		"[[Special:Diff/3|(+96)]]",  // empty after ref stripping
		"[[Special:Diff/4|(+120)]]", // four words
	}
	if len(page.MinorEdits) != len(want) {
		t.Fatalf("minor = %v, want %v", page.MinorEdits, want)
	}
	for i, ref := range want {
		if page.MinorEdits[i] != ref {
			t.Errorf("minor[%d] = %q, want %q", i, page.MinorEdits[i], ref)
		}
	}
}

func TestEngine_MinorListIsOrderedSubsequence(t *testing.T) {
	t.Parallel()
	loader := &testutil.DummyLoader{Texts: map[string]string{
		"[[Special:Diff/1|(+2054)]]": "x",
		"[[Special:Diff/2|(+317)]]":  "y",
		"[[Special:Diff/3|(+96)]]":   "z",
		"[[Special:Diff/4|(+120)]]":  "w",
	}}
	eng, page := newLoadedEngine(t, loader)

	wc, _ := cull.WordCount(100)
	if err := eng.SetPredicate(wc); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}

	var all []string
	for _, e := range page.Entries {
		all = append(all, e.DiffRefs...)
	}
	i := 0
	for _, ref := range all {
		if i < len(page.MinorEdits) && page.MinorEdits[i] == ref {
			i++
		}
	}
	if i != len(page.MinorEdits) {
		t.Errorf("minor list %v is not a subsequence of %v", page.MinorEdits, all)
	}
}

func TestEngine_ReanalyzeOverwrites(t *testing.T) {
	t.Parallel()
	loader := &testutil.DummyLoader{Texts: map[string]string{
		"[[Special:Diff/1|(+2054)]]": "",
		"[[Special:Diff/2|(+317)]]":  "solid new prose with plenty of words to keep",
		"[[Special:Diff/3|(+96)]]":   "",
		"[[Special:Diff/4|(+120)]]":  "",
	}}
	eng, page := newLoadedEngine(t, loader)

	if err := eng.SetPredicate(cull.Whitelist); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 3 {
		t.Fatalf("whitelist pass: minor = %d, want 3", len(page.MinorEdits))
	}

	// Swap predicate and re-run: the second verdict fully replaces the
	// first, nothing accumulates.
	if err := eng.SetPredicate(cull.Never); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 0 {
		t.Errorf("never pass: minor = %v, want empty", page.MinorEdits)
	}

	if loader.Fetches != 4 {
		t.Errorf("re-analysis must not refetch: fetches = %d", loader.Fetches)
	}
}

func TestEngine_FailedFetchRetainsDiff(t *testing.T) {
	t.Parallel()
	loader := &testutil.DummyLoader{
		Texts: map[string]string{
			"[[Special:Diff/1|(+2054)]]": "real text one",
			"[[Special:Diff/2|(+317)]]":  "real text two",
			"[[Special:Diff/3|(+96)]]":   "real text three",
		},
		Fail: map[string]bool{"[[Special:Diff/4|(+120)]]": true},
	}
	eng, page := newLoadedEngine(t, loader)

	recs, err := eng.Records(page)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 4 {
		t.Fatalf("records = %d, want 4 (failed fetch keeps the diff)", len(recs))
	}

	// Whitelist claims empty text as minor, so the failed diff culls.
	if err := eng.SetPredicate(cull.Whitelist); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 1 || page.MinorEdits[0] != "[[Special:Diff/4|(+120)]]" {
		t.Errorf("minor = %v, want only the failed diff", page.MinorEdits)
	}

	// A predicate that does not claim emptiness keeps it for review.
	if err := eng.SetPredicate(cull.ListItem); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 0 {
		t.Errorf("list-item pass: minor = %v, want empty", page.MinorEdits)
	}
}

func TestEngine_DisambiguationGuardScenario(t *testing.T) {
	t.Parallel()
	loader := &testutil.DummyLoader{Texts: map[string]string{
		"[[Special:Diff/1|(+2054)]]": "long substantive prose far beyond any reasonable culling threshold at all",
		"[[Special:Diff/2|(+317)]]":  "long substantive prose far beyond any reasonable culling threshold at all",
		"[[Special:Diff/3|(+96)]]":   "long substantive prose far beyond any reasonable culling threshold at all",
		"[[Special:Diff/4|(+120)]]":  "Foo may refer to",
	}}
	eng, page := newLoadedEngine(t, loader)

	wc, _ := cull.WordCount(8)

	// Guard disabled: the disambiguation entry culls by word count.
	if err := eng.SetPredicate(wc); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 1 || page.MinorEdits[0] != "[[Special:Diff/4|(+120)]]" {
		t.Fatalf("guard disabled: minor = %v", page.MinorEdits)
	}

	// Guard enabled: the new disambiguation page is exempt regardless of
	// word count.
	if err := eng.SetPredicate(cull.And(wc, cull.DisambiguationGuard)); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 0 {
		t.Errorf("guard enabled: minor = %v, want empty", page.MinorEdits)
	}
}

func TestEngine_FileAdditionScenario(t *testing.T) {
	t.Parallel()
	src := `*[[:Gallery page]] (2 edits): [[Special:Diff/10|(+90)]] [[Special:Diff/11|(+400)]]`
	page := listing.New(nil).Parse(src)
	loader := &testutil.DummyLoader{Texts: map[string]string{
		"[[Special:Diff/10|(+90)]]":  "[[File:Example.jpg|thumb|Some caption]]",
		"[[Special:Diff/11|(+400)]]": "[[File:Other.jpg]] plus a real paragraph of added text",
	}}
	eng, err := engine.New(engine.Config{}, loader, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.LoadDiffs(context.Background(), page); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetPredicate(cull.FileAddition); err != nil {
		t.Fatal(err)
	}
	if err := eng.AnalyzeDiffs(page); err != nil {
		t.Fatal(err)
	}
	if len(page.MinorEdits) != 1 || page.MinorEdits[0] != "[[Special:Diff/10|(+90)]]" {
		t.Errorf("minor = %v, want only the pure file embed", page.MinorEdits)
	}
}

func TestCulledListing(t *testing.T) {
	t.Parallel()
	page := listing.New(nil).Parse(testListing)
	page.MinorEdits = []string{"[[Special:Diff/2|(+317)]]", "[[Special:Diff/4|(+120)]]"}

	culled := engine.CulledListing(page)
	if strings.Contains(culled, "[[Special:Diff/2|(+317)]]") {
		t.Error("minor ref 2 should be removed")
	}
	if strings.Contains(culled, "[[Special:Diff/4|(+120)]]") {
		t.Error("minor ref 4 should be removed")
	}
	if !strings.Contains(culled, "[[Special:Diff/1|(+2054)]]") ||
		!strings.Contains(culled, "[[Special:Diff/3|(+96)]]") {
		t.Error("kept refs must survive")
	}
	if page.Source == culled {
		t.Error("culled listing should differ from source")
	}
	if !strings.Contains(page.Source, "[[Special:Diff/2|(+317)]]") {
		t.Error("source must never be mutated")
	}
}

func TestBuildReport(t *testing.T) {
	t.Parallel()
	page := listing.New(nil).Parse(testListing)
	page.MinorEdits = []string{"[[Special:Diff/3|(+96)]]"}

	rep := engine.BuildReport(page)
	if rep.Totals.Entries != 2 || rep.Totals.Diffs != 4 {
		t.Errorf("totals = %+v", rep.Totals)
	}
	if rep.Totals.Minor != 1 || rep.Totals.Kept != 3 {
		t.Errorf("totals = %+v", rep.Totals)
	}
	if rep.Pages[0].Title != "Culture of Foo" || len(rep.Pages[0].Minor) != 1 {
		t.Errorf("page report = %+v", rep.Pages[0])
	}
}
