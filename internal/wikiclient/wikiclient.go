// Package wikiclient provides the HTTP transport used to talk to a
// MediaWiki api.php endpoint. Backends register themselves by name; the
// default nethttp backend is plain net/http.
package wikiclient

import (
	"github.com/wikicull/wikicull/internal/interfaces"
)

// WikiClient is re-exported from interfaces so backend implementations and
// their consumers share one contract.
type WikiClient = interfaces.WikiClient

// Backend names the transport implementation.
type Backend string

const (
	BackendNetHTTP Backend = "nethttp"
)

// Config is the minimal configuration required for constructing a
// WikiClient.
type Config struct {
	// Backend selects the registered transport; empty means nethttp.
	Backend Backend

	// TimeoutSeconds bounds a single request; 0 means 30.
	TimeoutSeconds int

	// UserAgent is sent on every request. MediaWiki operators ask API
	// consumers to identify themselves.
	UserAgent string
}
