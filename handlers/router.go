package handlers

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abstract-tutoring/card-crafter/frontend"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(frontend.Files, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", h.CreatePage)
	r.Post("/create", h.CreateHandler)

	r.Get("/my-flashcards", h.MyFlashcardsPage)
	r.Get("/confirm-delete", h.ConfirmDelete)
	r.Post("/delete", h.DeleteHandler)
	r.Get("/all-flashcards", h.AllFlashcardsPage)

	r.Route("/view-card/{index}", func(r chi.Router) {
		r.Get("/", h.ViewCard)
		r.Post("/next", h.NextTerm)
		r.Post("/previous", h.PreviousTerm)
		r.Get("/term/{term}", h.JumpToTerm)
		r.Get("/download", h.DownloadPDF)
		r.Get("/print", h.PrintPDF)
		r.Get("/share", h.ShareModal)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
