package interfaces

import "context"

// DiffLoader resolves a diff reference (e.g. "[[Special:Diff/12345|(1)]]")
// to the text added by that revision.
//
// Implementations must never return an error: ok=false signals "the diff
// could not be fetched, treat the added text as empty". The engine keeps the
// diff in the page either way and classifies it from whatever text it got.
type DiffLoader interface {
	// FetchAddedText returns the added text for one diff reference.
	FetchAddedText(ctx context.Context, diffRef string) (text string, ok bool)

	// Close releases any resources held by the loader.
	Close() error
}
