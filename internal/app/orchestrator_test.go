package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wikicull/wikicull/internal/store"
	"github.com/wikicull/wikicull/internal/testutil"
)

const testListing = `* [[:Alpha]] (2 edits): [[Special:Diff/101|(+188)]][[Special:Diff/102|(+12)]]`

// newFakeAPI serves canned action=compare responses keyed by torev. Each
// value is the inner text of one added line.
func newFakeAPI(t *testing.T, added map[string]string, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		rev := r.URL.Query().Get("torev")
		text, ok := added[rev]
		if !ok {
			http.Error(w, "unknown revision", http.StatusNotFound)
			return
		}
		body := `<tr><td class="diff-addedline"><div>` + text + `</div></td></tr>`
		resp := map[string]any{"compare": map[string]any{"body": body}}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOrchestrator(t *testing.T, apiURL string) *Orchestrator {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "wikicull.db"), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := DefaultConfig()
	cfg.LoaderCfg.APIURL = apiURL
	return NewOrchestrator(cfg, st, &testutil.DummyLogger{})
}

func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()

	srv := newFakeAPI(t, map[string]string{
		"101": "Nine words of genuinely new prose were added here",
		"102": "[[linked]]",
	}, 0)
	orch := newTestOrchestrator(t, srv.URL)

	result, err := orch.Analyze(context.Background(), "case alpha", testListing)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Page.MinorEdits) != 1 || !strings.Contains(result.Page.MinorEdits[0], "Special:Diff/102") {
		t.Errorf("minor edits = %v, want only the diff 102 ref", result.Page.MinorEdits)
	}
	if !strings.Contains(result.CulledListing, "Special:Diff/101") {
		t.Error("culled listing lost the substantive diff ref")
	}
	if strings.Contains(result.CulledListing, "Special:Diff/102") {
		t.Error("culled listing still contains the minor diff ref")
	}
	if result.Report.Totals.Minor != 1 {
		t.Errorf("report minor diffs = %d, want 1", result.Report.Totals.Minor)
	}

	if result.AnalysisID == "" {
		t.Fatal("expected the analysis to be persisted")
	}
	saved, err := orch.GetAnalysis(context.Background(), result.AnalysisID)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if saved.Name != "case alpha" || len(saved.Records) != 2 {
		t.Errorf("saved analysis = %q with %d records, want %q with 2", saved.Name, len(saved.Records), "case alpha")
	}
}

func TestStartAnalyzeJobRunsToDone(t *testing.T) {
	t.Parallel()

	srv := newFakeAPI(t, map[string]string{
		"101": "Nine words of genuinely new prose were added here",
		"102": "[[linked]]",
	}, 0)
	orch := newTestOrchestrator(t, srv.URL)

	job, err := orch.StartAnalyzeJob(context.Background(), "case alpha", testListing)
	if err != nil {
		t.Fatalf("StartAnalyzeJob failed: %v", err)
	}

	var last JobEvent
	for ev := range job.Events {
		last = ev
	}
	if last.Type != JobEventResult || last.Status != JobDone {
		t.Fatalf("last event = %+v, want a done result", last)
	}

	got := orch.GetJob(job.ID)
	if got == nil || got.Status != JobDone {
		t.Fatalf("GetJob = %+v, want done", got)
	}
	if got.AnalysisID == "" {
		t.Error("job did not record the saved analysis id")
	}
	if got.Report == nil || got.Report.Totals.Diffs != 2 {
		t.Errorf("job report = %+v, want totals over 2 diffs", got.Report)
	}
}

func TestCancelAnalyzeJob(t *testing.T) {
	t.Parallel()

	srv := newFakeAPI(t, map[string]string{
		"101": "Nine words of genuinely new prose were added here",
		"102": "[[linked]]",
	}, 300*time.Millisecond)
	orch := newTestOrchestrator(t, srv.URL)

	job, err := orch.StartAnalyzeJob(context.Background(), "slow case", testListing)
	if err != nil {
		t.Fatalf("StartAnalyzeJob failed: %v", err)
	}
	orch.CancelJob(job.ID)

	for range job.Events {
	}
	got := orch.GetJob(job.ID)
	if got.Status != JobCanceled {
		t.Fatalf("status after cancel = %q, want %q", got.Status, JobCanceled)
	}
}

func TestBuildFilterRejectsUnknownName(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.Filters = append(cfg.Filters, "sparkle")
	if _, err := BuildFilter(cfg); err == nil {
		t.Error("expected an error for an unknown filter name")
	}
}

func TestBuildPredicate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.WordThreshold = 0
	if _, err := BuildPredicate(cfg); err == nil {
		t.Error("expected an error for a non-positive threshold")
	}

	cfg = DefaultConfig()
	cfg.Predicates = []string{"sparkle"}
	if _, err := BuildPredicate(cfg); err == nil {
		t.Error("expected an error for an unknown predicate name")
	}

	cfg = DefaultConfig()
	cfg.Predicates = nil
	p, err := BuildPredicate(cfg)
	if err != nil {
		t.Fatalf("BuildPredicate failed: %v", err)
	}
	if p(nil, "anything at all") {
		t.Error("empty predicate list should never cull")
	}
}
