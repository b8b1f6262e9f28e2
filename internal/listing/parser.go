// Package listing parses wikitext CCI listings into the model.
//
// A listing is a bullet list where each entry looks like
//
//	*'''N''' [[:Some article]] (3 edits): [[Special:Diff/123|(+456)]] [[Special:Diff/124|(+7)]]
//
// The bold N marker (new page creation) is optional. Listings are
// user-authored wikitext, so the parser is best-effort: lines that do not
// yield a title and at least one diff reference are skipped, never fatal.
package listing

import (
	"strings"

	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/model"
)

// diffRefPrefix identifies a bracketed diff link inside an entry line.
const diffRefPrefix = "[[Special:Diff/"

// newPageMarker flags an entry as the creation of a new page.
const newPageMarker = "'''N'''"

// Parser converts a wikitext bullet listing into a model.CCIPage.
type Parser struct {
	logger interfaces.Logger
}

// New returns a Parser. logger may be nil.
func New(logger interfaces.Logger) *Parser {
	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "component", Value: "listing-parser"})
	}
	return &Parser{logger: logger}
}

// Parse scans source bullet by bullet and returns a CCIPage whose entries
// appear in source order. Malformed lines are skipped; Parse never fails on
// input content.
func (p *Parser) Parse(source string) *model.CCIPage {
	page := &model.CCIPage{Source: source}

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "*") {
			continue
		}
		entry, ok := p.parseLine(trimmed)
		if !ok {
			if p.logger != nil {
				p.logger.Debug("skipping malformed listing line",
					interfaces.Field{Key: "line", Value: truncate(trimmed, 80)})
			}
			continue
		}
		page.Entries = append(page.Entries, entry)
	}

	if p.logger != nil {
		p.logger.Info("parsed listing",
			interfaces.Field{Key: "entries", Value: len(page.Entries)},
			interfaces.Field{Key: "diffs", Value: page.DiffCount()})
	}
	return page
}

// parseLine extracts one PageEntry from a bullet line. ok is false when the
// line has no parseable title or no diff references.
func (p *Parser) parseLine(line string) (*model.PageEntry, bool) {
	sc := newScanner(line)

	titleStart := sc.seek("[[:")
	if titleStart < 0 {
		return nil, false
	}
	newPage := strings.Contains(line[:titleStart], newPageMarker)

	sc.advance(len("[[:"))
	title, ok := sc.until("]]")
	if !ok || strings.TrimSpace(title) == "" {
		return nil, false
	}

	entry := &model.PageEntry{
		Title:   strings.TrimSpace(title),
		NewPage: newPage,
	}

	// Remaining text holds the diff references. Each is captured verbatim,
	// outer brackets and label included, so the engine can later remove it
	// from the source by exact substring match.
	for {
		refStart := sc.seek(diffRefPrefix)
		if refStart < 0 {
			break
		}
		ref, ok := sc.bracketLink()
		if !ok {
			// Unterminated link: leave the rest of the line alone.
			break
		}
		entry.DiffRefs = append(entry.DiffRefs, ref)
	}

	if len(entry.DiffRefs) == 0 {
		return nil, false
	}
	return entry, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// scanner is a cursor over one listing line. The states of interest are
// "outside markup" and "inside a [[...]] bracket link"; instead of repeated
// strings.Index arithmetic at call sites, the scanner owns the cursor so
// unterminated markup is an explicit failed transition.
type scanner struct {
	s string
	i int
}

func newScanner(s string) *scanner {
	return &scanner{s: s}
}

// seek moves the cursor to the next occurrence of pat and returns its
// absolute index, or -1 (cursor unchanged) when pat does not occur.
func (sc *scanner) seek(pat string) int {
	idx := strings.Index(sc.s[sc.i:], pat)
	if idx < 0 {
		return -1
	}
	sc.i += idx
	return sc.i
}

// advance moves the cursor forward n bytes, clamped to the end of input.
func (sc *scanner) advance(n int) {
	sc.i += n
	if sc.i > len(sc.s) {
		sc.i = len(sc.s)
	}
}

// until consumes and returns the text up to the next occurrence of pat,
// leaving the cursor after pat. ok is false (cursor unchanged) when pat is
// missing.
func (sc *scanner) until(pat string) (string, bool) {
	idx := strings.Index(sc.s[sc.i:], pat)
	if idx < 0 {
		return "", false
	}
	out := sc.s[sc.i : sc.i+idx]
	sc.i += idx + len(pat)
	return out, true
}

// bracketLink consumes a [[...]] unit starting at the cursor and returns it
// verbatim, brackets included. The cursor must sit on "[[". ok is false for
// an unterminated link; the cursor then stays put.
func (sc *scanner) bracketLink() (string, bool) {
	if !strings.HasPrefix(sc.s[sc.i:], "[[") {
		return "", false
	}
	end := strings.Index(sc.s[sc.i+2:], "]]")
	if end < 0 {
		return "", false
	}
	out := sc.s[sc.i : sc.i+2+end+2]
	sc.i += 2 + end + 2
	return out, true
}
