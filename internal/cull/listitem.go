package cull

import (
	"strings"

	"github.com/wikicull/wikicull/internal/model"
)

// ListItem culls a diff that is exactly one list item holding a single link
// and nothing else: "*[http://example.com External link]", "*[[Wikilink]]",
// or a bolded variant. Any prose before or after the link keeps the diff
// major, as does more than one line.
func ListItem(_ *model.PageEntry, text string) bool {
	item := strings.TrimSpace(text)
	if item == "" || strings.ContainsAny(item, "\n") {
		return false
	}

	// One or more leading list markers.
	rest := strings.TrimLeft(item, "*#:")
	if rest == item {
		return false
	}
	rest = strings.TrimSpace(rest)

	// Bold/italic wrapping around the link is still structural.
	for _, quotes := range []string{"'''", "''"} {
		if strings.HasPrefix(rest, quotes) && strings.HasSuffix(rest, quotes) && len(rest) > 2*len(quotes) {
			rest = rest[len(quotes) : len(rest)-len(quotes)]
			break
		}
	}

	return isOnlyLink(rest)
}

// isOnlyLink reports whether s is exactly one [[...]] or [...] unit.
func isOnlyLink(s string) bool {
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") {
		inner := s[2 : len(s)-2]
		return inner != "" && !strings.Contains(inner, "]]")
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		return inner != "" && !strings.ContainsAny(inner, "[]")
	}
	return false
}
