package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/abstract-tutoring/card-crafter/frontend"
	"github.com/abstract-tutoring/card-crafter/services"
	"github.com/abstract-tutoring/card-crafter/store"
	"github.com/abstract-tutoring/card-crafter/utils"
)

const currentTermCookie = "current_term"

// Handler serves the flashcard pages over a single Collection store.
type Handler struct {
	store    *store.Store
	images   *services.ImageLoader
	exporter *services.Exporter
	cookies  utils.Cookies
	baseURL  string
}

// New builds the handlers. developmentMode drops the Secure flag from cookies.
func New(st *store.Store, images *services.ImageLoader, baseURL string, developmentMode bool) *Handler {
	return &Handler{
		store:    st,
		images:   images,
		exporter: services.NewExporter(images),
		cookies:  utils.Cookies{DevelopmentMode: developmentMode},
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

var templateFuncs = template.FuncMap{
	"add":      func(a, b int) int { return a + b },
	"truncate": utils.TruncateText,
	"imgsrc":   imageSource,
}

// imageSource marks stored image references as safe for src attributes.
// Only image data URIs and http(s) URLs pass; anything else renders no image.
func imageSource(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "https://"):
		return template.URL(src)
	}
	return ""
}

// render executes the named template from the given files into a buffer first,
// so a template failure still produces a clean 500.
func render(w http.ResponseWriter, status int, name string, data any, files ...string) {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = "templates/" + f
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(frontend.Files, paths...)
	if err != nil {
		log.Println("Template parse error:", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Println("Render error:", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Println("Write response error:", err)
	}
}

func renderPage(w http.ResponseWriter, status int, page string, data any) {
	render(w, status, "base", data, "base.html", page)
}

func renderNotFound(w http.ResponseWriter, message string) {
	renderPage(w, http.StatusNotFound, "not-found.html", struct{ Message string }{message})
}

func renderError(w http.ResponseWriter, message string) {
	renderPage(w, http.StatusInternalServerError, "error.html", struct{ Message string }{message})
}

// absoluteURL builds a link to path on this server, preferring the configured base URL.
func (h *Handler) absoluteURL(r *http.Request, path string) string {
	if h.baseURL != "" {
		return h.baseURL + path
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
