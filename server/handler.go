package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scipunch/feedsearch/fetcher"
	"github.com/scipunch/feedsearch/filter"
	"github.com/scipunch/feedsearch/item"
	"github.com/scipunch/feedsearch/render"
)

const (
	formatHTML = "html"
	formatJSON = "json"

	// FailureMessage is the fixed "error" value of every failure response
	FailureMessage = "feed processing failed"
)

// handleRSS serves GET /rss?url=&q=&format=
func (s *Server) handleRSS(c echo.Context) error {
	req := c.Request()

	feedURL := c.QueryParam("url")
	if feedURL == "" {
		feedURL = s.cfg.DefaultFeedURL
	}
	keyword := filter.NormalizeKeyword(c.QueryParam("q"))
	format := requestedFormat(c)

	start := time.Now()
	feed, err := s.fetcher.Fetch(req.Context(), feedURL)
	s.metrics.observeFetch(err, time.Since(start))
	if err != nil {
		return s.fail(c, format, feedURL, err)
	}

	items := filter.Apply(item.NormalizeAll(feed.Items), keyword, s.cfg.MaxItems)
	slog.Debug("feed filtered",
		"url", feedURL,
		"keyword", keyword,
		"fetched", len(feed.Items),
		"returned", len(items))

	// Render fully before writing so a failure still gets the error envelope
	var body []byte
	var contentType string
	switch format {
	case formatHTML:
		var buf bytes.Buffer
		err = render.HTML(&buf, render.Page{
			Title:       feed.Title,
			Description: feed.Description,
			Query:       c.QueryParam("q"),
			Items:       items,
		})
		body, contentType = buf.Bytes(), echo.MIMETextHTMLCharsetUTF8
	default:
		body, err = json.Marshal(render.NewResponse(feed.Title, feedURL, keyword, items))
		contentType = echo.MIMEApplicationJSON
	}
	if err != nil {
		return s.fail(c, format, feedURL, err)
	}

	s.metrics.succeeded(format, len(items))
	return c.Blob(http.StatusOK, contentType, body)
}

// requestedFormat reads ?format=. Only "html" or no value selects HTML.
func requestedFormat(c echo.Context) string {
	if f := c.QueryParam("format"); f != "" && f != formatHTML {
		return formatJSON
	}
	return formatHTML
}

// fail logs err with its kind and writes the uniform JSON error, whatever
// format was requested.
func (s *Server) fail(c echo.Context, format, feedURL string, err error) error {
	s.metrics.failed(format)
	slog.Error("feed processing failed",
		"url", feedURL,
		"kind", fetcher.Kind(err),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err)
	return c.JSON(http.StatusInternalServerError, render.ErrorResponse{
		Error:   FailureMessage,
		Detalhe: err.Error(),
	})
}

// errorHandler keeps echo's responses for routing errors and turns anything
// else, including recovered panics, into the failure envelope.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		s.echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if jsonErr := s.fail(c, requestedFormat(c), c.QueryParam("url"), err); jsonErr != nil {
		slog.Error("failed to write error response", "error", jsonErr)
	}
}
