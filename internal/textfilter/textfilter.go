// Package textfilter holds the pure text transforms applied to a diff's
// added text before culling. Filters never fail: malformed markup (an
// unterminated <ref>, a stray "[") is left in place rather than risking the
// removal of unrelated trailing content.
package textfilter

// Func rewrites a fragment of added text. Implementations must be pure,
// safe to apply twice, and must not panic on any input.
type Func func(string) string

// Identity returns its input unchanged. It is the engine's default filter.
func Identity(s string) string { return s }

// Chain composes filters left to right: Chain(a, b)(s) == b(a(s)).
// Chain() with no arguments behaves like Identity. Nil entries are skipped
// so callers can build chains from optional configuration slots.
func Chain(fns ...Func) Func {
	return func(s string) string {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			s = fn(s)
		}
		return s
	}
}
