package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/scipunch/feedsearch/fetcher/types"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "feedsearch/1.0 (+https://github.com/scipunch/feedsearch)"
)

// RSSFetcher fetches RSS and Atom feeds using gofeed
type RSSFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

type Option func(*RSSFetcher)

// WithTimeout bounds a single fetch, including reading and parsing the body
func WithTimeout(d time.Duration) Option {
	return func(f *RSSFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(f *RSSFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *RSSFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewRSSFetcher creates a new RSS fetcher
func NewRSSFetcher(opts ...Option) *RSSFetcher {
	f := &RSSFetcher{
		client:    http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses a feed from the given URL. It makes a single
// attempt; failures are wrapped with ErrNetwork or ErrParse.
func (f *RSSFetcher) Fetch(ctx context.Context, url string) (types.Feed, error) {
	var feed types.Feed

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// gofeed.Parser is not safe for concurrent use, one per request
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.userAgent

	start := time.Now()
	gofeedFeed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		// the deadline may fire while gofeed is still reading the body,
		// in which case err does not carry it yet
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		slog.Debug("feed fetch failed", "url", url, "error", err, "elapsed", time.Since(start))
		return feed, classify(err)
	}
	slog.Debug("feed fetched", "url", url, "items", len(gofeedFeed.Items), "elapsed", time.Since(start))

	// Convert gofeed.Feed to our custom Feed type
	feed.Title = gofeedFeed.Title
	feed.Description = gofeedFeed.Description
	feed.Items = make([]types.FeedItem, 0, len(gofeedFeed.Items))

	for _, item := range gofeedFeed.Items {
		feedItem := types.FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Published:   item.Published,
		}
		if feedItem.Description == "" {
			feedItem.Description = item.Content
		}

		// Atom entries may only carry <updated>
		if feedItem.Published == "" {
			feedItem.Published = item.Updated
		}

		feed.Items = append(feed.Items, feedItem)
	}

	return feed, nil
}
