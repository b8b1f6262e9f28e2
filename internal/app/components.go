package app

import (
	"fmt"

	"github.com/wikicull/wikicull/internal/diffload"
	"github.com/wikicull/wikicull/internal/engine"
	"github.com/wikicull/wikicull/internal/logging"
	"github.com/wikicull/wikicull/internal/wikiclient"
)

// Components is the wired analysis pipeline for one run: a transport,
// the diff loader on top of it, and an engine configured with the
// filters and predicates named in Config.
type Components struct {
	WikiClient wikiclient.WikiClient
	Loader     *diffload.Loader
	Engine     *engine.Engine
}

func newComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	wc, err := wikiclient.New(cfg.WikiClientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new wikiclient: %w", err)
	}

	loader, err := diffload.New(cfg.LoaderCfg, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new diff loader: %w", err)
	}

	eng, err := engine.New(cfg.EngineCfg, loader, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new engine: %w", err)
	}

	filter, err := BuildFilter(cfg)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("build filter: %w", err)
	}
	if err := eng.SetFilter(filter); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("set filter: %w", err)
	}

	predicate, err := BuildPredicate(cfg)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("build predicate: %w", err)
	}
	if err := eng.SetPredicate(predicate); err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("set predicate: %w", err)
	}

	return &Components{WikiClient: wc, Loader: loader, Engine: eng}, nil
}

// Close releases the transport behind the pipeline. Any in-flight
// fetches will fail.
func (c *Components) Close() error {
	if err := c.Loader.Close(); err != nil {
		return fmt.Errorf("close loader: %w", err)
	}
	return nil
}
