// Package demowiki is a tiny fake MediaWiki used for demos and manual
// testing. It serves just enough of api.php (action=compare and the
// revision-content query) to run an analysis with no internet access.
package demowiki

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
)

// DemoWiki serves canned revisions over a minimal api.php.
type DemoWiki struct {
	cfg       Config
	revisions map[string]Revision
}

// NewDemoWiki creates a demo wiki instance with the canned revisions.
func NewDemoWiki(cfg Config) *DemoWiki {
	revs := make(map[string]Revision)
	for _, r := range AllRevisions() {
		revs[r.ID] = r
	}
	return &DemoWiki{cfg: cfg, revisions: revs}
}

// Handler returns the demo wiki's HTTP handler.
func (d *DemoWiki) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", d.apiHandler)
	mux.HandleFunc("/listing", d.listingHandler)
	mux.HandleFunc("/", d.indexHandler)
	return mux
}

// Start starts the demo wiki and blocks.
func (d *DemoWiki) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Port)
	return http.ListenAndServe(addr, d.Handler())
}

func (d *DemoWiki) apiHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "compare":
		d.compareHandler(w, r)
	case "query":
		d.queryHandler(w, r)
	default:
		writeAPIError(w, "unknown_action", "unrecognized value for parameter action")
	}
}

func (d *DemoWiki) compareHandler(w http.ResponseWriter, r *http.Request) {
	rev, ok := d.revisions[r.URL.Query().Get("torev")]
	if !ok || rev.CompareFails || len(rev.AddedLines) == 0 {
		writeAPIError(w, "nosuchrevid", "there is no revision with that id")
		return
	}

	var body strings.Builder
	for _, line := range rev.AddedLines {
		body.WriteString(`<tr><td class="diff-marker"></td><td class="diff-addedline"><div>`)
		body.WriteString(html.EscapeString(line))
		body.WriteString(`</div></td></tr>`)
	}

	writeJSON(w, map[string]any{
		"compare": map[string]any{"body": body.String()},
	})
}

func (d *DemoWiki) queryHandler(w http.ResponseWriter, r *http.Request) {
	revID := r.URL.Query().Get("revids")
	rev, ok := d.revisions[revID]
	if !ok {
		writeAPIError(w, "nosuchrevid", "there is no revision with that id")
		return
	}

	id, _ := strconv.ParseInt(rev.ID, 10, 64)
	writeJSON(w, map[string]any{
		"query": map[string]any{
			"pages": []map[string]any{
				{
					"title": "Demo page",
					"revisions": []map[string]any{
						{
							"revid":    id,
							"parentid": rev.ParentID,
							"slots": map[string]any{
								"main": map[string]any{"content": rev.Content},
							},
						},
					},
				},
			},
		},
	})
}

func (d *DemoWiki) listingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, SampleListing)
}

func (d *DemoWiki) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, `wikicull demo wiki

Endpoints:
  /w/api.php  minimal MediaWiki API (action=compare, action=query)
  /listing    a sample listing whose diff links resolve here

Try:
  curl -s localhost:%d/listing | wikicull analyze --api http://localhost:%d/w/api.php --no-store
`, d.cfg.Port, d.cfg.Port)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code, info string) {
	writeJSON(w, map[string]any{
		"error": map[string]string{"code": code, "info": info},
	})
}
