// Package engine drives one CCI analysis: load a parsed page's diffs
// through the configured loader and filter chain, then classify each diff
// with the configured culling predicate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wikicull/wikicull/internal/cull"
	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/model"
	"github.com/wikicull/wikicull/internal/textfilter"
)

var (
	ErrNilLoader    = errors.New("engine: nil diff loader")
	ErrNilFilter    = errors.New("engine: nil filter function")
	ErrNilPredicate = errors.New("engine: nil culling predicate")
	ErrNilPage      = errors.New("engine: nil page")
	ErrNotLoaded    = errors.New("engine: page has not been loaded")
)

// Config tunes the engine.
type Config struct {
	// FetchConcurrency bounds parallel diff fetches during LoadDiffs.
	// Zero means the default of 4.
	FetchConcurrency int
}

// Engine owns the filter and predicate slots and the per-page diff records.
// A page moves through two states: loaded (LoadDiffs fetched and filtered
// its diffs) and analyzed (AnalyzeDiffs classified them). Analyzing is
// re-runnable; each pass rebuilds the page's minor-edit list from scratch.
//
// Two different pages may be analyzed from two goroutines; one page must
// not.
type Engine struct {
	cfg    Config
	loader interfaces.DiffLoader
	logger interfaces.Logger

	mu        sync.Mutex
	filter    textfilter.Func
	predicate cull.Predicate
	records   map[*model.CCIPage]map[string]*model.DiffRecord
}

// New creates an Engine with the identity filter and the Never predicate:
// until configured, the engine culls nothing. logger may be nil.
func New(cfg Config, loader interfaces.DiffLoader, logger interfaces.Logger) (*Engine, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "component", Value: "engine"})
	}
	return &Engine{
		cfg:       cfg,
		loader:    loader,
		logger:    logger,
		filter:    textfilter.Identity,
		predicate: cull.Never,
		records:   make(map[*model.CCIPage]map[string]*model.DiffRecord),
	}, nil
}

// SetFilter replaces the filter slot. Filtered text of already-loaded pages
// is recomputed immediately, so a later AnalyzeDiffs sees the new chain
// without refetching.
func (e *Engine) SetFilter(f textfilter.Func) error {
	if f == nil {
		return ErrNilFilter
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = f
	for _, recs := range e.records {
		for _, rec := range recs {
			rec.FilteredText = f(rec.AddedText)
		}
	}
	return nil
}

// SetPredicate replaces the culling predicate slot.
func (e *Engine) SetPredicate(p cull.Predicate) error {
	if p == nil {
		return ErrNilPredicate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.predicate = p
	return nil
}

// LoadDiffs fetches the added text for every diff reference of page and
// computes its filtered text. Fetch failures are not errors: the diff is
// kept with empty added text. Fetches run concurrently but results are
// keyed by reference, so the outcome does not depend on completion order.
func (e *Engine) LoadDiffs(ctx context.Context, page *model.CCIPage) error {
	if page == nil {
		return ErrNilPage
	}

	refs := make([]string, 0, page.DiffCount())
	for _, entry := range page.Entries {
		refs = append(refs, entry.DiffRefs...)
	}

	recs := make(map[string]*model.DiffRecord, len(refs))
	var recsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.FetchConcurrency)
	for _, ref := range refs {
		g.Go(func() error {
			text, ok := e.loader.FetchAddedText(gctx, ref)
			if !ok {
				text = ""
				if e.logger != nil {
					e.logger.Warn("diff fetch failed, treating as empty",
						interfaces.Field{Key: "ref", Value: ref})
				}
			}
			recsMu.Lock()
			recs[ref] = &model.DiffRecord{Ref: ref, AddedText: text, FetchOK: ok}
			recsMu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading diffs: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range recs {
		rec.FilteredText = e.filter(rec.AddedText)
	}
	e.records[page] = recs

	if e.logger != nil {
		e.logger.Info("page loaded",
			interfaces.Field{Key: "entries", Value: len(page.Entries)},
			interfaces.Field{Key: "diffs", Value: len(recs)})
	}
	return nil
}

// AnalyzeDiffs classifies every loaded diff of page with the current
// predicate and rewrites page.MinorEdits with the verbatim references of
// the minor ones, in original appearance order. Running it again replaces
// the previous result; nothing accumulates.
func (e *Engine) AnalyzeDiffs(page *model.CCIPage) error {
	if page == nil {
		return ErrNilPage
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	recs, ok := e.records[page]
	if !ok {
		return ErrNotLoaded
	}

	minor := make([]string, 0)
	for _, entry := range page.Entries {
		for _, ref := range entry.DiffRefs {
			rec, ok := recs[ref]
			if !ok {
				// Refs added to the page after LoadDiffs; keep for review.
				continue
			}
			rec.Minor = e.predicate(entry, rec.FilteredText)
			if rec.Minor {
				minor = append(minor, ref)
			}
		}
	}
	page.MinorEdits = minor

	if e.logger != nil {
		e.logger.Info("page analyzed",
			interfaces.Field{Key: "diffs", Value: len(recs)},
			interfaces.Field{Key: "minor", Value: len(minor)})
	}
	return nil
}

// Records returns the page's diff records in original appearance order.
// The slice is fresh; the records are the live ones.
func (e *Engine) Records(page *model.CCIPage) ([]*model.DiffRecord, error) {
	if page == nil {
		return nil, ErrNilPage
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	recs, ok := e.records[page]
	if !ok {
		return nil, ErrNotLoaded
	}
	out := make([]*model.DiffRecord, 0, len(recs))
	for _, entry := range page.Entries {
		for _, ref := range entry.DiffRefs {
			if rec, ok := recs[ref]; ok {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// Forget drops the engine's working state for page, releasing its records.
func (e *Engine) Forget(page *model.CCIPage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.records, page)
}

// CulledListing returns the original listing with every minor diff
// reference removed by exact substring match. The page's source text is
// never modified.
func CulledListing(page *model.CCIPage) string {
	out := page.Source
	for _, ref := range page.MinorEdits {
		out = strings.Replace(out, ref, "", 1)
	}
	return out
}

// BuildReport assembles the programmatic report for an analyzed page.
func BuildReport(page *model.CCIPage) *model.Report {
	minorSet := make(map[string]bool, len(page.MinorEdits))
	for _, ref := range page.MinorEdits {
		minorSet[ref] = true
	}

	rep := &model.Report{GeneratedAt: time.Now().UTC()}
	for _, entry := range page.Entries {
		pr := model.PageReport{
			Title:     entry.Title,
			NewPage:   entry.NewPage,
			DiffCount: len(entry.DiffRefs),
			Minor:     []string{},
			Kept:      []string{},
		}
		for _, ref := range entry.DiffRefs {
			if minorSet[ref] {
				pr.Minor = append(pr.Minor, ref)
			} else {
				pr.Kept = append(pr.Kept, ref)
			}
		}
		rep.Pages = append(rep.Pages, pr)
		rep.Totals.Entries++
		rep.Totals.Diffs += pr.DiffCount
		rep.Totals.Minor += len(pr.Minor)
		rep.Totals.Kept += len(pr.Kept)
	}
	return rep
}
