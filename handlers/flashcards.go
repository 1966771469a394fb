package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abstract-tutoring/card-crafter/models"
	"github.com/abstract-tutoring/card-crafter/services"
)

// ViewCard shows one group with the current term of its navigator.
func (h *Handler) ViewCard(w http.ResponseWriter, r *http.Request) {
	index, group, ok := h.groupFromPath(w, r)
	if !ok {
		return
	}

	nav := navigatorFor(r, index, len(group.Terms))

	data := map[string]interface{}{
		"Index":     index,
		"Group":     group,
		"Current":   nav.Current,
		"Position":  nav.Position(),
		"Count":     nav.Count,
		"CanMove":   nav.CanMove(),
		"Term":      models.Term{},
		"TermImage": "",
	}
	if nav.Count > 0 {
		term := group.Terms[nav.Current]
		data["Term"] = term
		if term.Image != "" {
			uri, err := h.images.Resolve(r.Context(), term.Image)
			if err != nil {
				log.Println("Error converting image to data URI:", err)
			}
			data["TermImage"] = uri
		}
	}

	renderPage(w, http.StatusOK, "view.html", data)
}

func (h *Handler) NextTerm(w http.ResponseWriter, r *http.Request) {
	h.moveTerm(w, r, (*services.TermNavigator).Next)
}

func (h *Handler) PreviousTerm(w http.ResponseWriter, r *http.Request) {
	h.moveTerm(w, r, (*services.TermNavigator).Previous)
}

func (h *Handler) moveTerm(w http.ResponseWriter, r *http.Request, move func(*services.TermNavigator)) {
	index, group, ok := h.groupFromPath(w, r)
	if !ok {
		return
	}

	nav := navigatorFor(r, index, len(group.Terms))
	move(nav)
	h.saveNavigator(w, r, index, nav)
	http.Redirect(w, r, viewPath(index), http.StatusSeeOther)
}

// JumpToTerm selects a term from the side list.
func (h *Handler) JumpToTerm(w http.ResponseWriter, r *http.Request) {
	index, group, ok := h.groupFromPath(w, r)
	if !ok {
		return
	}

	term, err := strconv.Atoi(chi.URLParam(r, "term"))
	nav := navigatorFor(r, index, len(group.Terms))
	if err != nil || !nav.JumpTo(term) {
		http.Error(w, "Invalid term", http.StatusBadRequest)
		return
	}

	h.saveNavigator(w, r, index, nav)
	http.Redirect(w, r, viewPath(index), http.StatusSeeOther)
}

// DownloadPDF sends the group export as an attachment.
func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	h.servePDF(w, r, "attachment")
}

// PrintPDF sends the same export inline so the browser opens its print view.
func (h *Handler) PrintPDF(w http.ResponseWriter, r *http.Request) {
	h.servePDF(w, r, "inline")
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, disposition string) {
	_, group, ok := h.groupFromPath(w, r)
	if !ok {
		return
	}

	doc, err := h.exporter.Export(r.Context(), group)
	if err != nil {
		log.Println("Error exporting flashcards:", err)
		renderError(w, "Could not export flashcards")
		return
	}
	raw, err := doc.Bytes()
	if err != nil {
		log.Println("Error rendering PDF:", err)
		renderError(w, "Could not export flashcards")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, models.ExportFileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	if _, err := w.Write(raw); err != nil {
		log.Println("Write PDF error:", err)
	}
}

// ShareModal renders the share partial for the group's browsing URL.
func (h *Handler) ShareModal(w http.ResponseWriter, r *http.Request) {
	index, _, ok := h.groupFromPath(w, r)
	if !ok {
		return
	}

	pageURL := h.absoluteURL(r, viewPath(index))
	render(w, http.StatusOK, "share", struct {
		URL   string
		Links []services.ShareLink
		Back  string
	}{pageURL, services.ShareLinks(pageURL), viewPath(index)}, "partials/share.html")
}

// groupFromPath resolves {index}. When it fails the not-found page has already been written.
func (h *Handler) groupFromPath(w http.ResponseWriter, r *http.Request) (int, models.FlashcardGroup, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		if g, ok := h.store.Group(index); ok {
			return index, g, true
		}
	}
	renderNotFound(w, "Flashcard group not found")
	return 0, models.FlashcardGroup{}, false
}

func viewPath(index int) string {
	return "/view-card/" + strconv.Itoa(index)
}

// navigatorFor restores the navigator from the current_term cookie ("<group>:<term>").
// A cookie for another group, or a stale position, starts at the first term.
func navigatorFor(r *http.Request, index, count int) *services.TermNavigator {
	current := 0
	if c, err := r.Cookie(currentTermCookie); err == nil {
		if g, t, found := strings.Cut(c.Value, ":"); found {
			gi, gerr := strconv.Atoi(g)
			ti, terr := strconv.Atoi(t)
			if gerr == nil && terr == nil && gi == index {
				current = ti
			}
		}
	}
	return services.NewTermNavigator(count, current)
}

func (h *Handler) saveNavigator(w http.ResponseWriter, r *http.Request, index int, nav *services.TermNavigator) {
	h.cookies.Set(w, r, currentTermCookie, fmt.Sprintf("%d:%d", index, nav.Current), time.Time{})
}
