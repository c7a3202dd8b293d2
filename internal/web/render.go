package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

var funcs = template.FuncMap{
	"categories": models.Categories,
	"plural":     pluralize,
	"title":      capitalize,
	"year":       formatYear,
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatYear(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// parseTemplates pairs every page with the shared layout, keyed by page file name.
func parseTemplates() (map[string]*template.Template, error) {
	layout, err := template.New(layoutFile).Funcs(funcs).ParseFS(templateFS, "templates/"+layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}

		page, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = page
	}
	return pages, nil
}

// view is the data every page template receives.
type view struct {
	Title       string
	CurrentUser *models.User
	Flash       *session.Flash

	Works     map[models.Category][]*models.Work
	Spotlight *models.Work
	Work      *models.Work
	Voters    []*models.User
	Users     []*models.User
	User      *models.User
	Form      *workForm
	Errors    []string
	Status    int
	Message   string
}

// render executes page into a buffer so the session (and its flash) is committed only once
// the page rendered successfully.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tmpl, ok := a.pages[page]
	if !ok {
		a.logger.Error("unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	v.CurrentUser = UserFromContext(r.Context())
	if s := session.FromContext(r.Context()); s != nil {
		v.Flash = s.Flash()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutFile, v); err != nil {
		a.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect sets a flash and sends a 302 to target.
func (a *App) redirect(w http.ResponseWriter, r *http.Request, target, status, text string) {
	if s := session.FromContext(r.Context()); s != nil {
		s.SetFlash(status, text)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	a.renderError(w, r, http.StatusNotFound, "The page you were looking for doesn't exist.")
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	a.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
}

func (a *App) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	a.render(w, r, status, "error.html", view{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}
