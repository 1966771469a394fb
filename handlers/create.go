package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abstract-tutoring/card-crafter/services"
)

const maxFormBytes = 32 << 20

type createForm struct {
	Group          string
	Description    string
	Image          string
	Terms          []services.TermInput
	Errors         services.FieldErrors
	Success        bool
	ExistingGroups []string
}

// CreatePage renders an empty create form with one term row.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderCreate(w, http.StatusOK, createForm{Terms: []services.TermInput{{}}})
}

// CreateHandler handles every button of the create form. add-term and remove-term:<i>
// re-render the rows; anything else validates and saves the group.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Println("Form parse error:", err)
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	sub := h.readSubmission(r)
	form := createForm{
		Group:       sub.Group,
		Description: sub.Description,
		Image:       sub.Image,
		Terms:       sub.Terms,
	}

	action := r.FormValue("action")
	switch {
	case action == "add-term":
		form.Terms = append(form.Terms, services.TermInput{})
		h.renderCreate(w, http.StatusOK, form)
		return
	case strings.HasPrefix(action, "remove-term:"):
		i, err := strconv.Atoi(strings.TrimPrefix(action, "remove-term:"))
		if err == nil && i >= 0 && i < len(form.Terms) && len(form.Terms) > 1 {
			form.Terms = append(form.Terms[:i], form.Terms[i+1:]...)
		}
		h.renderCreate(w, http.StatusOK, form)
		return
	}

	if errs := services.ValidateSubmission(sub, h.store.HasGroup(sub.Group)); len(errs) > 0 {
		form.Errors = errs
		h.renderCreate(w, http.StatusUnprocessableEntity, form)
		return
	}

	if _, err := h.store.AddOrMergeGroup(r.Context(), sub.ToGroup()); err != nil {
		log.Println("Error saving flashcard group:", err)
		renderError(w, "Could not save flashcards, please try again")
		return
	}

	h.renderCreate(w, http.StatusOK, createForm{Success: true, Terms: []services.TermInput{{}}})
}

func (h *Handler) renderCreate(w http.ResponseWriter, status int, form createForm) {
	if form.Errors == nil {
		form.Errors = services.FieldErrors{}
	}
	form.ExistingGroups = h.store.GroupNames()
	renderPage(w, status, "create.html", form)
}

// readSubmission collects the sanitised form values. Term rows are aligned by
// position: every row posts term, definition, term_image and term_image_url.
func (h *Handler) readSubmission(r *http.Request) services.Submission {
	sub := services.Submission{
		Group:       services.SanitiseText(r.FormValue("group")),
		Description: services.SanitiseText(r.FormValue("description")),
		Image: h.formImage(r, "group_image",
			r.FormValue("group_image_url"), r.FormValue("group_image_current")),
	}

	terms := r.Form["term"]
	definitions := r.Form["definition"]
	current := r.Form["term_image"]
	urls := r.Form["term_image_url"]

	sub.Terms = make([]services.TermInput, 0, len(terms))
	for i, term := range terms {
		sub.Terms = append(sub.Terms, services.TermInput{
			Term:       services.SanitiseText(term),
			Definition: services.SanitiseText(at(definitions, i)),
			Image:      h.formImage(r, fmt.Sprintf("term_image_%d", i), at(urls, i), at(current, i)),
		})
	}
	return sub
}

// formImage picks, in order, an uploaded file, a pasted URL or the image carried
// over from a previous render. Unusable input is logged and skipped.
func (h *Handler) formImage(r *http.Request, fileField, rawURL, current string) string {
	if file, header, err := r.FormFile(fileField); err == nil {
		defer file.Close()
		uri, err := h.images.FromUpload(file, header)
		if err == nil {
			return uri
		}
		log.Println("Error converting image to data URI:", err)
	}

	if rawURL = strings.TrimSpace(rawURL); rawURL != "" {
		if u, err := url.Parse(rawURL); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return u.String()
		}
		log.Println("Ignoring image URL:", rawURL)
	}

	if imageSource(current) != "" {
		return current
	}
	return ""
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
