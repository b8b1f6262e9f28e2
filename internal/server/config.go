package server

import (
	"github.com/wikicull/wikicull/internal/app"
	"github.com/wikicull/wikicull/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server (the CLI
	// uses the orchestrator in-process and does not require the network).
	ListenAddr string

	// AppConfig is the shared runtime configuration; nil means defaults.
	AppConfig *app.Config

	// Logger may be nil; a stdout logger is used then.
	Logger logging.Logger
}
