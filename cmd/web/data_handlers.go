package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"digitalgeosciences.com/geo-web/internal/content"
	mw "digitalgeosciences.com/geo-web/internal/middleware"
)

// DataHandler serves the raw content documents under /data/ with an ETag so
// browsers and CDNs can revalidate cheaply.
func DataHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if !strings.HasSuffix(name, ".json") {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	raw, err := contentLoader.Raw(r.Context(), name)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			mw.WriteError(w, r, http.StatusNotFound, "not found")
			return
		}
		mw.WriteError(w, r, http.StatusBadGateway, "content unavailable")
		return
	}
	w.Header().Set("Cache-Control", mw.DataCacheControl)
	if mw.NotModified(w, r, mw.ETag(raw)) {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(raw)
}

// ErrorView is the payload of the not-found and error pages.
type ErrorView struct {
	Code    int
	Title   string
	Message string
}

// NotFoundHandler renders the catch-all not-found page.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	renderErrorPage(w, r, http.StatusNotFound)
}

func renderErrorPage(w http.ResponseWriter, r *http.Request, code int) {
	view := ErrorView{
		Code:    code,
		Title:   i18nOrDefault("notfound.title", "Page not found"),
		Message: i18nOrDefault("notfound.message", "The page you are looking for does not exist or has moved."),
	}
	if code != http.StatusNotFound {
		view.Title = i18nOrDefault("error.title", "Something went wrong")
		view.Message = i18nOrDefault("error.message", "Please try again later.")
	}
	vm := basePage(r, view.Title, view.Message)
	vm.SEO.Robots = "noindex"
	vm.NotFound = view
	renderPageStatus(w, r, "not_found", vm, code)
}
