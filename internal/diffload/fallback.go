package diffload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// queryResponse mirrors the prop=revisions JSON (formatversion=2).
type queryResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Revisions []struct {
				RevID    int64 `json:"revid"`
				ParentID int64 `json:"parentid"`
				Slots    struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// fetchRevisionPair computes added text without the compare endpoint: it
// fetches the revision and its parent wikitext and keeps the inserted
// spans of a word-level diff. A revision without a parent (page creation)
// contributes its full content.
func (l *Loader) fetchRevisionPair(ctx context.Context, revID string) (string, error) {
	current, parentID, err := l.fetchRevision(ctx, revID)
	if err != nil {
		return "", err
	}
	if parentID == 0 {
		return current, nil
	}

	parent, _, err := l.fetchRevision(ctx, strconv.FormatInt(parentID, 10))
	if err != nil {
		return "", fmt.Errorf("parent revision: %w", err)
	}

	return insertedText(parent, current), nil
}

// fetchRevision returns the wikitext content and parent id of one revision.
func (l *Loader) fetchRevision(ctx context.Context, revID string) (string, int64, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "revisions")
	params.Set("revids", revID)
	params.Set("rvslots", "main")
	params.Set("rvprop", "ids|content")

	resp, err := l.client.Get(ctx, l.cfg.APIURL+"?"+params.Encode())
	if err != nil {
		return "", 0, fmt.Errorf("revision request: %w", err)
	}
	if resp.StatusCode != 200 {
		return "", 0, fmt.Errorf("revision status %d", resp.StatusCode)
	}

	var qr queryResponse
	if err := json.Unmarshal(resp.Body, &qr); err != nil {
		return "", 0, fmt.Errorf("revision decode: %w", err)
	}
	if qr.Error != nil {
		return "", 0, fmt.Errorf("revision api error: %s", qr.Error)
	}
	for _, p := range qr.Query.Pages {
		if p.Missing || len(p.Revisions) == 0 {
			continue
		}
		rev := p.Revisions[0]
		return rev.Slots.Main.Content, rev.ParentID, nil
	}
	return "", 0, errors.New("revision not found")
}

// insertedText diffs two revision texts at word granularity and joins the
// inserted spans. Word granularity keeps a one-word change from dragging
// surrounding context into the added text.
func insertedText(parent, current string) string {
	dmp := diffmatchpatch.New()

	c1, c2, lines := dmp.DiffLinesToChars(wordsToLines(parent), wordsToLines(current))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lines)

	var inserted []string
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		frag := linesToWords(d.Text)
		if frag != "" {
			inserted = append(inserted, frag)
		}
	}
	return joinFragments(inserted)
}

// wordsToLines puts one word per line so diffmatchpatch's line mode works
// at word granularity.
func wordsToLines(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}

// linesToWords undoes wordsToLines for one diff fragment.
func linesToWords(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func joinFragments(frags []string) string {
	switch len(frags) {
	case 0:
		return ""
	case 1:
		return frags[0]
	}
	out := frags[0]
	for _, f := range frags[1:] {
		out += "\n" + f
	}
	return out
}
