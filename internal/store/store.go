// Package store persists finished analyses in SQLite so a reviewer can
// come back to a culled CCI page later or serve it over the API.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrAnalysisNotFound is returned when an analysis id does not exist.
var ErrAnalysisNotFound = errors.New("store: analysis not found")

// Store wraps the SQLite database holding saved analyses.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// Analysis is a saved page together with its per-diff records.
type Analysis struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"created_at"`
	Page      *model.CCIPage      `json:"page"`
	Records   []*model.DiffRecord `json:"records"`
}

// Summary is the listing row for one saved analysis.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Entries   int       `json:"entries"`
	Diffs     int       `json:"diffs"`
	Minor     int       `json:"minor"`
}

// Open opens (creating if needed) the store at path and applies the
// schema. logger may be nil.
func Open(path string, logger interfaces.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store database: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "component", Value: "store"})
		logger.Info("store opened", interfaces.Field{Key: "path", Value: path})
	}
	return &Store{db: db, logger: logger}, nil
}

// SaveAnalysis writes page and its records as one new analysis and returns
// its id. records may be keyed by any order; rows are written in page
// order.
func (s *Store) SaveAnalysis(ctx context.Context, name string, page *model.CCIPage, records []*model.DiffRecord) (string, error) {
	if page == nil {
		return "", errors.New("store: nil page")
	}

	byRef := make(map[string]*model.DiffRecord, len(records))
	for _, rec := range records {
		byRef[rec.Ref] = rec
	}
	minor := make(map[string]bool, len(page.MinorEdits))
	for _, ref := range page.MinorEdits {
		minor[ref] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rb := tx.Rollback(); rb != nil && rb != sql.ErrTxDone {
			if s.logger != nil {
				s.logger.Warn("rollback failed", interfaces.Field{Key: "err", Value: rb})
			}
		}
	}()

	analysisID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO analyses (id, name, source, created_at)
		VALUES (?, ?, ?, ?)
	`, analysisID, name, page.Source, time.Now().Unix()); err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}

	for pos, entry := range page.Entries {
		entryID := uuid.New().String()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, analysis_id, position, title, new_page)
			VALUES (?, ?, ?, ?, ?)
		`, entryID, analysisID, pos, entry.Title, boolInt(entry.NewPage)); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}

		for dpos, ref := range entry.DiffRefs {
			rec := byRef[ref]
			added, filtered, fetchOK := "", "", true
			if rec != nil {
				added, filtered, fetchOK = rec.AddedText, rec.FilteredText, rec.FetchOK
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO diffs (id, entry_id, position, ref, added_text, filtered_text, minor, fetch_ok)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, uuid.New().String(), entryID, dpos, ref, added, filtered, boolInt(minor[ref]), boolInt(fetchOK)); err != nil {
				return "", fmt.Errorf("insert diff: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("analysis saved",
			interfaces.Field{Key: "id", Value: analysisID},
			interfaces.Field{Key: "entries", Value: len(page.Entries)})
	}
	return analysisID, nil
}

// GetAnalysis loads one saved analysis, page order restored.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	a := &Analysis{ID: id, Page: &model.CCIPage{}}

	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT name, source, created_at FROM analyses WHERE id = ?`, id,
	).Scan(&a.Name, &a.Page.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.new_page
		FROM entries e WHERE e.analysis_id = ? ORDER BY e.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	type entryRow struct {
		id    string
		entry *model.PageEntry
	}
	var entryRows []entryRow
	for rows.Next() {
		var er entryRow
		var newPage int
		er.entry = &model.PageEntry{}
		if err := rows.Scan(&er.id, &er.entry.Title, &newPage); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		er.entry.NewPage = newPage != 0
		entryRows = append(entryRows, er)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	for _, er := range entryRows {
		drows, err := s.db.QueryContext(ctx, `
			SELECT ref, added_text, filtered_text, minor, fetch_ok
			FROM diffs WHERE entry_id = ? ORDER BY position
		`, er.id)
		if err != nil {
			return nil, fmt.Errorf("query diffs: %w", err)
		}
		for drows.Next() {
			rec := &model.DiffRecord{}
			var minor, fetchOK int
			if err := drows.Scan(&rec.Ref, &rec.AddedText, &rec.FilteredText, &minor, &fetchOK); err != nil {
				drows.Close()
				return nil, fmt.Errorf("scan diff: %w", err)
			}
			rec.Minor = minor != 0
			rec.FetchOK = fetchOK != 0
			er.entry.DiffRefs = append(er.entry.DiffRefs, rec.Ref)
			a.Records = append(a.Records, rec)
			if rec.Minor {
				a.Page.MinorEdits = append(a.Page.MinorEdits, rec.Ref)
			}
		}
		if err := drows.Err(); err != nil {
			drows.Close()
			return nil, fmt.Errorf("iterate diffs: %w", err)
		}
		drows.Close()
		a.Page.Entries = append(a.Page.Entries, er.entry)
	}

	return a, nil
}

// ListAnalyses returns saved analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.created_at,
		       (SELECT COUNT(*) FROM entries e WHERE e.analysis_id = a.id),
		       (SELECT COUNT(*) FROM diffs d JOIN entries e ON d.entry_id = e.id WHERE e.analysis_id = a.id),
		       (SELECT COUNT(*) FROM diffs d JOIN entries e ON d.entry_id = e.id WHERE e.analysis_id = a.id AND d.minor = 1)
		FROM analyses a ORDER BY a.created_at DESC, a.id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &sum.Name, &createdAt, &sum.Entries, &sum.Diffs, &sum.Minor); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		sum.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteAnalysis removes one analysis and its rows. Child rows are
// deleted explicitly; foreign_keys is a per-connection pragma and the
// pool may hand out a connection that never ran the schema script.
func (s *Store) DeleteAnalysis(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM diffs WHERE entry_id IN (SELECT id FROM entries WHERE analysis_id = ?)
	`, id); err != nil {
		return fmt.Errorf("delete diffs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE analysis_id = ?`, id); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAnalysisNotFound
	}
	return tx.Commit()
}

// DB returns the underlying database (owned by the store).
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
