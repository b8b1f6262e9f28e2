// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"

	"github.com/wikicull/wikicull/internal/logging"
	"github.com/wikicull/wikicull/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── DiffLoader ────────────────────────────────────────────────────────

// DummyLoader implements interfaces.DiffLoader from a fixed ref→text map.
// Refs listed in Fail report ok=false; refs missing from Texts return "" with
// ok=true. Fetches are counted so tests can assert on call volume.
type DummyLoader struct {
	mu      sync.Mutex
	Texts   map[string]string
	Fail    map[string]bool
	Fetches int
}

func (d *DummyLoader) FetchAddedText(_ context.Context, ref string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Fetches++
	if d.Fail[ref] {
		return "", false
	}
	return d.Texts[ref], true
}

func (d *DummyLoader) Close() error { return nil }

// ─── WikiClient ────────────────────────────────────────────────────────

// DummyWikiClient implements interfaces.WikiClient.
// By default it returns body "ok:<url>" with status 200; set Responses to
// serve canned bodies per URL.
type DummyWikiClient struct {
	mu        sync.Mutex
	Responses map[string][]byte
	Requests  []string
}

func (d *DummyWikiClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	return d.Get(ctx, req.URL)
}

func (d *DummyWikiClient) Get(_ context.Context, url string) (*model.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Requests = append(d.Requests, url)
	body, ok := d.Responses[url]
	if !ok {
		body = []byte("ok:" + url)
	}
	return &model.Response{Body: body, StatusCode: 200}, nil
}

func (d *DummyWikiClient) Close() error { return nil }
