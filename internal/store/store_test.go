package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/wikicull/wikicull/internal/model"
	"github.com/wikicull/wikicull/internal/store"
	"github.com/wikicull/wikicull/internal/testutil"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "wikicull.db"), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePage() (*model.CCIPage, []*model.DiffRecord) {
	page := &model.CCIPage{
		Source: "* [[:Alpha]] ...",
		Entries: []*model.PageEntry{
			{
				Title:    "Alpha",
				DiffRefs: []string{"[[Special:Diff/101|(+120)]]", "[[Special:Diff/102|(+7)]]"},
			},
			{
				Title:    "Beta (disambiguation)",
				NewPage:  true,
				DiffRefs: []string{"[[Special:Diff/103|(+45)]]"},
			},
		},
		MinorEdits: []string{"[[Special:Diff/102|(+7)]]"},
	}
	records := []*model.DiffRecord{
		{Ref: "[[Special:Diff/101|(+120)]]", AddedText: "long prose", FilteredText: "long prose", FetchOK: true},
		{Ref: "[[Special:Diff/102|(+7)]]", AddedText: "[[link]]", FilteredText: "[[link]]", Minor: true, FetchOK: true},
		{Ref: "[[Special:Diff/103|(+45)]]", FetchOK: false},
	}
	return page, records
}

func TestSaveAndGetAnalysis(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	page, records := samplePage()
	id, err := s.SaveAnalysis(ctx, "case one", page, records)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty analysis id")
	}

	got, err := s.GetAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if got.Name != "case one" {
		t.Errorf("name = %q, want %q", got.Name, "case one")
	}
	if got.Page.Source != page.Source {
		t.Errorf("source = %q, want %q", got.Page.Source, page.Source)
	}
	if len(got.Page.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(got.Page.Entries))
	}
	if got.Page.Entries[0].Title != "Alpha" || got.Page.Entries[1].Title != "Beta (disambiguation)" {
		t.Errorf("entry order not preserved: %+v", got.Page.Entries)
	}
	if !got.Page.Entries[1].NewPage {
		t.Error("NewPage flag lost on round trip")
	}
	if len(got.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(got.Records))
	}
	if got.Records[0].Ref != records[0].Ref || got.Records[2].Ref != records[2].Ref {
		t.Errorf("record order not preserved: %+v", got.Records)
	}
	if got.Records[2].FetchOK {
		t.Error("FetchOK=false lost on round trip")
	}
	if len(got.Page.MinorEdits) != 1 || got.Page.MinorEdits[0] != page.MinorEdits[0] {
		t.Errorf("minor edits = %v, want %v", got.Page.MinorEdits, page.MinorEdits)
	}
}

func TestListAnalyses(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	page, records := samplePage()
	if _, err := s.SaveAnalysis(ctx, "first", page, records); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if _, err := s.SaveAnalysis(ctx, "second", page, records); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	sums, err := s.ListAnalyses(ctx, 0)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	for _, sum := range sums {
		if sum.Entries != 2 || sum.Diffs != 3 || sum.Minor != 1 {
			t.Errorf("summary counts = %+v, want 2 entries / 3 diffs / 1 minor", sum)
		}
	}
}

func TestDeleteAnalysis(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	page, records := samplePage()
	id, err := s.SaveAnalysis(ctx, "doomed", page, records)
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if err := s.DeleteAnalysis(ctx, id); err != nil {
		t.Fatalf("DeleteAnalysis failed: %v", err)
	}
	if _, err := s.GetAnalysis(ctx, id); !errors.Is(err, store.ErrAnalysisNotFound) {
		t.Errorf("GetAnalysis after delete = %v, want ErrAnalysisNotFound", err)
	}
	if err := s.DeleteAnalysis(ctx, id); !errors.Is(err, store.ErrAnalysisNotFound) {
		t.Errorf("second DeleteAnalysis = %v, want ErrAnalysisNotFound", err)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	if _, err := s.GetAnalysis(context.Background(), "no-such-id"); !errors.Is(err, store.ErrAnalysisNotFound) {
		t.Errorf("GetAnalysis = %v, want ErrAnalysisNotFound", err)
	}
}
