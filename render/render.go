package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/scipunch/feedsearch/item"
)

// NoFilter is reported in place of the keyword when none was given
const NoFilter = "none"

//go:embed templates/*.html
var templateFS embed.FS

var page = template.Must(
	template.New("feed.html").
		Funcs(template.FuncMap{"value": item.Value}).
		ParseFS(templateFS, "templates/feed.html"),
)

// Page is the data behind the HTML search page
type Page struct {
	Title       string
	Description string
	Query       string
	Items       []item.Item
}

// HTML writes the search page. Feed text is escaped by html/template
// according to where it lands, and javascript: style links are neutralised.
func HTML(w io.Writer, p Page) error {
	if err := page.Execute(w, p); err != nil {
		return fmt.Errorf("failed to render HTML page with %w", err)
	}
	return nil
}

// Response is the JSON representation of a filtered feed
type Response struct {
	Feed   string      `json:"feed"`
	URL    string      `json:"url"`
	Filtro string      `json:"filtro"`
	Total  int         `json:"total"`
	Itens  []item.Item `json:"itens"`
}

func NewResponse(feedTitle, url, keyword string, items []item.Item) Response {
	if keyword == "" {
		keyword = NoFilter
	}
	if items == nil {
		items = []item.Item{}
	}
	return Response{
		Feed:   feedTitle,
		URL:    url,
		Filtro: keyword,
		Total:  len(items),
		Itens:  items,
	}
}

// ErrorResponse is the single error envelope returned on any failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Detalhe string `json:"detalhe"`
}
