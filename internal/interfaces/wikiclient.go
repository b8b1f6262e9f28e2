package interfaces

import (
	"context"

	"github.com/wikicull/wikicull/internal/model"
)

// WikiClient executes HTTP requests against a MediaWiki api.php endpoint.
// It is transport-only: callers build the query parameters, implementations
// move bytes. Backends register themselves with the wikiclient factory.
type WikiClient interface {
	Do(ctx context.Context, req *model.Request) (*model.Response, error)

	// Get is a convenience method for simple GET requests.
	Get(ctx context.Context, url string) (*model.Response, error)

	Close() error
}
