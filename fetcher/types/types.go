package types

import "context"

// Feed represents a collection of items from a feed source
type Feed struct {
	Title       string
	Description string
	Items       []FeedItem
}

// FeedItem represents a single item in a feed
type FeedItem struct {
	Title       string
	Link        string
	Description string
	// Published is the publish date exactly as written in the document, empty when missing
	Published string
}

// FeedFetcher is an interface for fetching feeds from different sources
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (Feed, error)
}
