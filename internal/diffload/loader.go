// Package diffload resolves diff references against a MediaWiki api.php
// endpoint. The primary path asks action=compare for the rendered diff
// table and extracts the added side; when compare is unavailable for a
// revision (deleted, suppressed, API hiccup) it falls back to fetching the
// revision and its parent and computing the inserted text locally.
//
// Per the loader contract failures are reported as ok=false, never as an
// error: the engine keeps the diff and classifies its empty text.
package diffload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wikicull/wikicull/internal/interfaces"
)

// ErrNoAPIURL is returned by New when the api.php endpoint is missing.
var ErrNoAPIURL = errors.New("diffload: api url is required")

// ErrNilClient is returned by New when no transport is supplied.
var ErrNilClient = errors.New("diffload: nil wikiclient")

// revIDPattern extracts the numeric revision id from a diff reference such
// as "[[Special:Diff/1044325563|(+2054)]]".
var revIDPattern = regexp.MustCompile(`Special:Diff/(\d+)`)

// Config tunes the loader.
type Config struct {
	// APIURL is the api.php endpoint, e.g. "https://en.wikipedia.org/w/api.php".
	APIURL string

	// DisableDeltaMerge turns off the adjacent-delta merge rule (two
	// changed spans separated by exactly one space are treated as one
	// continuous change). The rule is a heuristic over MediaWiki's diff
	// rendering, so it stays configurable.
	DisableDeltaMerge bool

	// DisableFallback turns off the revision-pair fallback when compare
	// fails.
	DisableFallback bool

	// CacheTTLSeconds bounds how long fetched added text is reused.
	// Zero means 600.
	CacheTTLSeconds int
}

// Loader implements interfaces.DiffLoader over a MediaWiki API.
type Loader struct {
	cfg    Config
	client interfaces.WikiClient
	cache  *gocache.Cache
	logger interfaces.Logger
}

// New builds a Loader. logger may be nil.
func New(cfg Config, client interfaces.WikiClient, logger interfaces.Logger) (*Loader, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, ErrNoAPIURL
	}
	if client == nil {
		return nil, ErrNilClient
	}
	ttl := 600 * time.Second
	if cfg.CacheTTLSeconds > 0 {
		ttl = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "component", Value: "diffload"})
	}
	return &Loader{
		cfg:    cfg,
		client: client,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}, nil
}

// ExtractRevID pulls the numeric revision id out of a diff reference.
func ExtractRevID(ref string) (string, error) {
	m := revIDPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", fmt.Errorf("diffload: no revision id in %q", ref)
	}
	return m[1], nil
}

// FetchAddedText implements interfaces.DiffLoader.
func (l *Loader) FetchAddedText(ctx context.Context, ref string) (string, bool) {
	revID, err := ExtractRevID(ref)
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("unparseable diff reference",
				interfaces.Field{Key: "ref", Value: ref})
		}
		return "", false
	}

	if cached, ok := l.cache.Get(revID); ok {
		return cached.(string), true
	}

	text, err := l.fetchCompare(ctx, revID)
	if err != nil && !l.cfg.DisableFallback {
		if l.logger != nil {
			l.logger.Warn("compare failed, trying revision-pair fallback",
				interfaces.Field{Key: "revid", Value: revID},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
		text, err = l.fetchRevisionPair(ctx, revID)
	}
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("diff unavailable",
				interfaces.Field{Key: "revid", Value: revID},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
		return "", false
	}

	l.cache.SetDefault(revID, text)
	return text, true
}

// Close implements interfaces.DiffLoader.
func (l *Loader) Close() error {
	l.cache.Flush()
	return l.client.Close()
}

// compareResponse mirrors the action=compare JSON (formatversion=2).
type compareResponse struct {
	Compare struct {
		Body string `json:"body"`
	} `json:"compare"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) String() string {
	return e.Code + ": " + e.Info
}

// fetchCompare asks the API for the rendered diff of revID against its
// parent and extracts the added text from the HTML table.
func (l *Loader) fetchCompare(ctx context.Context, revID string) (string, error) {
	params := url.Values{}
	params.Set("action", "compare")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("fromrelative", "prev")
	params.Set("torev", revID)
	params.Set("prop", "diff")

	resp, err := l.client.Get(ctx, l.cfg.APIURL+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("compare request: %w", err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("compare status %d", resp.StatusCode)
	}

	var cr compareResponse
	if err := json.Unmarshal(resp.Body, &cr); err != nil {
		return "", fmt.Errorf("compare decode: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("compare api error: %s", cr.Error)
	}
	if cr.Compare.Body == "" {
		return "", errors.New("compare returned no diff body")
	}

	return ParseAddedText(cr.Compare.Body, !l.cfg.DisableDeltaMerge)
}
