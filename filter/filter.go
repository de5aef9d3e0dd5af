package filter

import (
	"strings"

	"github.com/scipunch/feedsearch/item"
)

// DefaultMax is the item cap used when none is configured
const DefaultMax = 100

// NormalizeKeyword folds a raw query value; the empty string means no filter
func NormalizeKeyword(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Keyword keeps items whose title, link or summary contains keyword,
// ignoring case. keyword must already be normalized. Order is preserved.
func Keyword(items []item.Item, keyword string) []item.Item {
	if keyword == "" {
		return items
	}

	kept := make([]item.Item, 0, len(items))
	for _, it := range items {
		if matches(it, keyword) {
			kept = append(kept, it)
		}
	}
	return kept
}

func matches(it item.Item, keyword string) bool {
	for _, field := range []*string{it.Titulo, it.Link, it.Resumo} {
		if field != nil && strings.Contains(strings.ToLower(*field), keyword) {
			return true
		}
	}
	return false
}

// Limit returns at most max leading items. A non-positive max means DefaultMax.
func Limit(items []item.Item, max int) []item.Item {
	if max <= 0 {
		max = DefaultMax
	}
	if len(items) <= max {
		return items
	}
	return items[:max]
}

// Apply filters by keyword, then caps the result
func Apply(items []item.Item, keyword string, max int) []item.Item {
	return Limit(Keyword(items, keyword), max)
}
