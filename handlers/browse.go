package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/abstract-tutoring/card-crafter/models"
	"github.com/abstract-tutoring/card-crafter/store"
	"github.com/abstract-tutoring/card-crafter/utils"
)

const descriptionPreviewLength = 100

type groupCard struct {
	Index       int
	Group       string
	Description string
	Image       string
	TermCount   int
	Terms       []models.Term
}

// MyFlashcardsPage lists every group with a shortened description.
func (h *Handler) MyFlashcardsPage(w http.ResponseWriter, r *http.Request) {
	cards := h.groupCards(r, func(g models.FlashcardGroup) string {
		return utils.TruncateText(g.Description, descriptionPreviewLength)
	})
	renderPage(w, http.StatusOK, "my-flashcards.html", struct{ Groups []groupCard }{cards})
}

// AllFlashcardsPage shows every group together with all of its terms.
func (h *Handler) AllFlashcardsPage(w http.ResponseWriter, r *http.Request) {
	cards := h.groupCards(r, func(g models.FlashcardGroup) string { return g.Description })
	renderPage(w, http.StatusOK, "all-flashcards.html", struct{ Groups []groupCard }{cards})
}

// groupCards snapshots the collection and resolves the group images in list order.
func (h *Handler) groupCards(r *http.Request, describe func(models.FlashcardGroup) string) []groupCard {
	groups := h.store.Groups()

	srcs := make([]string, len(groups))
	for i, g := range groups {
		srcs[i] = g.Image
	}
	resolved := h.images.ResolveAll(r.Context(), srcs)

	cards := make([]groupCard, 0, len(groups))
	for i, g := range groups {
		cards = append(cards, groupCard{
			Index:       i,
			Group:       g.Group,
			Description: describe(g),
			Image:       resolved[i],
			TermCount:   len(g.Terms),
			Terms:       g.Terms,
		})
	}
	return cards
}

// ConfirmDelete renders the confirmation partial for the group at ?index=.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, "Missing index", http.StatusBadRequest)
		return
	}

	g, ok := h.store.Group(index)
	if !ok {
		renderNotFound(w, "Flashcard group not found")
		return
	}

	render(w, http.StatusOK, "confirm-delete", struct {
		Index     int
		Group     string
		TermCount int
	}{index, g.Group, len(g.Terms)}, "partials/confirm-delete.html")
}

// DeleteHandler removes the group at the posted index and returns to the list.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "Missing index", http.StatusBadRequest)
		return
	}

	if _, err := h.store.DeleteGroup(r.Context(), index); err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			renderNotFound(w, "Flashcard group not found")
			return
		}
		log.Println("Error deleting flashcard group:", err)
		renderError(w, "Could not delete flashcards, please try again")
		return
	}

	// Indexes after the deleted group have shifted.
	h.cookies.Clear(w, r, currentTermCookie)
	http.Redirect(w, r, "/my-flashcards", http.StatusSeeOther)
}
