package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/feedsearch/fetcher/types"
	"github.com/scipunch/feedsearch/item"
)

func renderPage(t *testing.T, p Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, p))
	return buf.String()
}

func TestHTML_RendersItems(t *testing.T) {
	out := renderPage(t, Page{
		Title:       "G1",
		Description: "Últimas notícias",
		Query:       "economia",
		Items: item.NormalizeAll([]types.FeedItem{
			{Title: "Crise na Economia", Link: "https://g1.globo.com/economia", Published: "Mon, 06 Oct 2025 10:00:00 -0300"},
			{Title: "Esporte", Link: "https://g1.globo.com/esporte"},
		}),
	})

	assert.Contains(t, out, "<title>G1</title>")
	assert.Contains(t, out, "<h1>G1</h1>")
	assert.Contains(t, out, "<h2>Últimas notícias</h2>")
	assert.Contains(t, out, `value="economia"`)
	assert.Contains(t, out, `<a href="https://g1.globo.com/economia" target="_blank" rel="noopener">Crise na Economia</a>`)
	assert.Contains(t, out, "<small>Mon, 06 Oct 2025 10:00:00 -0300</small>")
	assert.Equal(t, 1, strings.Count(out, "<small>"), "date line only for items that have one")
	assert.Equal(t, 2, strings.Count(out, "<li>"))
	assert.NotContains(t, out, "null")
	assert.Contains(t, out, "params.set('q', this.value)")
}

func TestHTML_EmptyFeed(t *testing.T) {
	out := renderPage(t, Page{Title: "Empty"})

	assert.Contains(t, out, `<ul id="results">`)
	assert.NotContains(t, out, "<li>")
	assert.Contains(t, out, "</html>")
}

func TestHTML_EscapesFeedText(t *testing.T) {
	out := renderPage(t, Page{
		Title:       `<script>alert("t")</script>`,
		Description: `Tom & "Jerry"`,
		Query:       `"><script>x()</script>`,
		Items: item.NormalizeAll([]types.FeedItem{
			{
				Title:     `<img src=x onerror=alert(1)>`,
				Link:      `javascript:alert(1)`,
				Published: `<b>today</b>`,
			},
			{
				Title: "Quote",
				Link:  `https://example.com/?a=1&b="2"`,
			},
		}),
	})

	assert.NotContains(t, out, `<script>alert`)
	assert.NotContains(t, out, `<img src=x`)
	assert.NotContains(t, out, `<b>today</b>`)
	assert.NotContains(t, out, `href="javascript:`)
	assert.NotContains(t, out, `"><script>x()`)
	assert.Contains(t, out, "&lt;script&gt;alert(&#34;t&#34;)&lt;/script&gt;")
	assert.Contains(t, out, "Tom &amp; &#34;Jerry&#34;")
	assert.Contains(t, out, "&lt;img src=x onerror=alert(1)&gt;")
	assert.Equal(t, 1, strings.Count(out, "<script>"), "only the page's own script")
}

func TestNewResponse(t *testing.T) {
	items := item.NormalizeAll([]types.FeedItem{{Title: "Crise na Economia Brasileira"}})

	resp := NewResponse("G1", "https://g1.globo.com/rss/g1/", "economia", items)
	assert.Equal(t, "economia", resp.Filtro)
	assert.Equal(t, 1, resp.Total)

	resp = NewResponse("G1", "https://g1.globo.com/rss/g1/", "", nil)
	assert.Equal(t, NoFilter, resp.Filtro)
	assert.Equal(t, 0, resp.Total)

	blob, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"feed":"G1","url":"https://g1.globo.com/rss/g1/","filtro":"none","total":0,"itens":[]}`, string(blob))
}
