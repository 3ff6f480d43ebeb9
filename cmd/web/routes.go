package main

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	mw "digitalgeosciences.com/geo-web/internal/middleware"
)

func routes(r chi.Router) {
	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets")))
	r.Handle("/assets/*", assets)

	// Raw content documents
	r.Get("/data/*", DataHandler)

	r.Get("/", HomeHandler)
	r.Get("/projects/{id}", ProjectDetailHandler)
	r.Get("/projects-and-collaborators", RosterHandler)

	r.Get("/fragments/projects", ProjectsFrag)
	r.Get("/fragments/join/form", JoinFormFrag)
	r.Post("/join", JoinSubmitHandler)

	r.NotFound(NotFoundHandler)
}
