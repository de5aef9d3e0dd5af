// Package item turns parsed feed entries into the shape the service returns.
package item

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/scipunch/feedsearch/fetcher/types"
)

// Item is a feed entry as exposed to clients. Nil fields were missing in the
// source document.
type Item struct {
	Titulo    *string `json:"titulo,omitempty"`
	Link      *string `json:"link,omitempty"`
	Publicado *string `json:"publicado"`
	Resumo    *string `json:"resumo,omitempty"`
}

var strict = bluemonday.StrictPolicy()

// Normalize maps a raw feed item without inventing values
func Normalize(raw types.FeedItem) Item {
	return Item{
		Titulo:    optional(raw.Title),
		Link:      optional(raw.Link),
		Publicado: optional(raw.Published),
		Resumo:    optional(plainText(raw.Description)),
	}
}

func NormalizeAll(raw []types.FeedItem) []Item {
	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r))
	}
	return items
}

// plainText strips markup from a description. StrictPolicy leaves entities
// escaped, so they are decoded afterwards to keep the text matchable.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// optional keeps any present value as is, only the empty string is absent
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences an optional field, returning "" when it is absent
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
