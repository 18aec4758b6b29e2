package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/daily3me/daily3/internal/auth"
	"github.com/daily3me/daily3/internal/model"
)

// Page templates. Names ending in _a are the beta variants.
var pageNames = []string{
	"index", "index_a",
	"user_profile", "user_profile_a",
	"favorites_a",
	"404", "500",
}

// betaSuffix selects the beta variant of a template.
const betaSuffix = "_a"

// PageData is passed to every page and fragment template.
type PageData struct {
	Visitor *auth.Visitor
	Flashes []string
	Beta    bool
	GAID    string
	Posts   []model.PostView
	Profile *model.User

	// PanelFlashes shows the flashes inside the user panel instead of
	// above the page.
	PanelFlashes bool
}

// Renderer holds the parsed templates. Each page is its own template set
// (base.html + partials + the page) so pages can define "content" and
// "title" without clashing.
type Renderer struct {
	pages     map[string]*template.Template
	fragments *template.Template
	logger    *slog.Logger
}

// NewRenderer parses every template in fsys once. It fails if any page is
// missing or does not parse.
func NewRenderer(fsys fs.FS, funcs template.FuncMap, logger *slog.Logger) (*Renderer, error) {
	fragments, err := template.New("fragments").Funcs(funcs).ParseFS(fsys, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("handler: parsing partials: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, "base.html", "partials/*.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("handler: parsing page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages, fragments: fragments, logger: logger}, nil
}

// Page renders a full page. Output is buffered so a template error can
// still produce a clean 500.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data PageData) {
	t, ok := r.pages[name]
	if !ok {
		r.fail(w, fmt.Errorf("unknown page %q", name))
		return
	}
	r.write(w, status, func(buf *bytes.Buffer) error {
		return t.ExecuteTemplate(buf, "base", data)
	})
}

// Fragment renders a partial such as "user_panel" on its own.
func (r *Renderer) Fragment(w http.ResponseWriter, status int, name string, data PageData) {
	r.write(w, status, func(buf *bytes.Buffer) error {
		return r.fragments.ExecuteTemplate(buf, name, data)
	})
}

func (r *Renderer) write(w http.ResponseWriter, status int, exec func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		r.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("writing response", slog.Any("error", err))
	}
}

func (r *Renderer) fail(w http.ResponseWriter, err error) {
	r.logger.Error("failed to render template", slog.Any("error", err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
