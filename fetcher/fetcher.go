package fetcher

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"net"
	"net/url"

	"github.com/mmcdole/gofeed"
)

var (
	// ErrNetwork covers transport failures, upstream error statuses and timeouts
	ErrNetwork = errors.New("feed fetch failed")
	// ErrParse means the document was fetched but is not a readable feed
	ErrParse = errors.New("feed parse failed")
)

const (
	KindNetwork  = "network"
	KindParse    = "parse"
	KindInternal = "internal"
)

// kindError tags an underlying error with one of the sentinel kinds while
// keeping the original message intact.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

// Kind reports which failure class err belongs to
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return KindInternal
	}
}

// classify maps an error returned by gofeed to ErrNetwork or ErrParse
func classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		httpErr   gofeed.HTTPError
		urlErr    *url.Error
		netErr    net.Error
		syntaxErr *xml.SyntaxError
		jsonErr   *json.SyntaxError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &kindError{kind: ErrNetwork, err: err}
	case errors.As(err, &httpErr):
		return &kindError{kind: ErrNetwork, err: err}
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return &kindError{kind: ErrNetwork, err: err}
	case errors.Is(err, gofeed.ErrFeedTypeNotDetected), errors.As(err, &syntaxErr), errors.As(err, &jsonErr):
		return &kindError{kind: ErrParse, err: err}
	default:
		// gofeed reports most decoder failures as plain errors once the body was read
		return &kindError{kind: ErrParse, err: err}
	}
}
