package app

import (
	"fmt"

	"github.com/wikicull/wikicull/internal/cull"
	"github.com/wikicull/wikicull/internal/diffload"
	"github.com/wikicull/wikicull/internal/engine"
	"github.com/wikicull/wikicull/internal/textfilter"
	"github.com/wikicull/wikicull/internal/wikiclient"
)

// Filter names accepted in Config.Filters.
const (
	FilterReferences    = "references"
	FilterExternalLinks = "external-links"
	FilterComments      = "comments"
)

// Predicate names accepted in Config.Predicates.
const (
	PredicateWordCount    = "word-count"
	PredicateWhitelist    = "whitelist"
	PredicateListItem     = "list-item"
	PredicateFileAddition = "file-addition"
	PredicateTable        = "table"
)

// Config contains the runtime configuration shared by the CLI and the
// server. It aggregates the per-package configs plus the analysis
// options that select filters and culling predicates by name.
type Config struct {
	// WikiClientCfg selects and configures the HTTP backend.
	WikiClientCfg wikiclient.Config `mapstructure:"wikiclient" yaml:"wikiclient"`

	// LoaderCfg configures diff fetching against the MediaWiki API.
	LoaderCfg diffload.Config `mapstructure:"loader" yaml:"loader"`

	// EngineCfg configures the culling engine itself.
	EngineCfg engine.Config `mapstructure:"engine" yaml:"engine"`

	// StorePath is the SQLite database holding saved analyses.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`

	// WordThreshold is the minimum consecutive-word run that keeps a
	// diff out of the minor list when the word-count predicate is on.
	WordThreshold int `mapstructure:"word_threshold" yaml:"word_threshold"`

	// Filters and Predicates select behavior by name; predicates are
	// OR-combined, with the title guards applied on top.
	Filters    []string `mapstructure:"filters" yaml:"filters"`
	Predicates []string `mapstructure:"predicates" yaml:"predicates"`

	// DisambiguationGuard and ListGuard protect new disambiguation and
	// "List of" pages from being culled.
	DisambiguationGuard bool `mapstructure:"disambiguation_guard" yaml:"disambiguation_guard"`
	ListGuard           bool `mapstructure:"list_guard" yaml:"list_guard"`
}

// DefaultConfig returns a Config populated with sensible defaults for
// analyzing English Wikipedia listings.
func DefaultConfig() *Config {
	return &Config{
		WikiClientCfg: wikiclient.Config{
			Backend:        wikiclient.BackendNetHTTP,
			TimeoutSeconds: 30,
		},
		LoaderCfg: diffload.Config{
			APIURL:          "https://en.wikipedia.org/w/api.php",
			CacheTTLSeconds: 600,
		},
		EngineCfg: engine.Config{
			FetchConcurrency: 4,
		},
		StorePath:     "~/.wikicull/wikicull.db",
		WordThreshold: 5,
		Filters:       []string{FilterReferences, FilterExternalLinks, FilterComments},
		Predicates:    []string{PredicateWordCount, PredicateWhitelist},
	}
}

// BuildFilter assembles the text filter chain named by cfg.Filters.
func BuildFilter(cfg *Config) (textfilter.Func, error) {
	var fns []textfilter.Func
	for _, name := range cfg.Filters {
		switch name {
		case FilterReferences:
			fns = append(fns, textfilter.RemoveReferences)
		case FilterExternalLinks:
			fns = append(fns, textfilter.RemoveExternalLinks)
		case FilterComments:
			fns = append(fns, textfilter.RemoveComments)
		default:
			return nil, fmt.Errorf("unknown filter %q", name)
		}
	}
	return textfilter.Chain(fns...), nil
}

// BuildPredicate assembles the culling predicate named by cfg.Predicates,
// OR-combined and wrapped with the configured title guards.
func BuildPredicate(cfg *Config) (cull.Predicate, error) {
	var ps []cull.Predicate
	for _, name := range cfg.Predicates {
		switch name {
		case PredicateWordCount:
			wc, err := cull.WordCount(cfg.WordThreshold)
			if err != nil {
				return nil, err
			}
			ps = append(ps, wc)
		case PredicateWhitelist:
			ps = append(ps, cull.Whitelist)
		case PredicateListItem:
			ps = append(ps, cull.ListItem)
		case PredicateFileAddition:
			ps = append(ps, cull.FileAddition)
		case PredicateTable:
			ps = append(ps, cull.Table)
		default:
			return nil, fmt.Errorf("unknown predicate %q", name)
		}
	}
	if len(ps) == 0 {
		return cull.Never, nil
	}

	p := cull.Or(ps...)
	if cfg.DisambiguationGuard {
		p = cull.And(p, cull.DisambiguationGuard)
	}
	if cfg.ListGuard {
		p = cull.And(p, cull.ListPageGuard)
	}
	return p, nil
}
