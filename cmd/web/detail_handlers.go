package main

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/format"
	"digitalgeosciences.com/geo-web/internal/nav"
	"digitalgeosciences.com/geo-web/internal/observability"
	"digitalgeosciences.com/geo-web/internal/seo"
)

// DetailView is the project detail page payload.
type DetailView struct {
	Page     content.DetailPage
	Updated  string
	BackHref string
}

// ProjectDetailHandler renders a hand-authored project page. Ids without an
// authored page get the not-found page.
func ProjectDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, err := contentLoader.DetailPage(r.Context(), id)
	if errors.Is(err, content.ErrNotFound) {
		NotFoundHandler(w, r)
		return
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("detail page unavailable", zap.String("id", id), zap.Error(err))
		renderErrorPage(w, r, http.StatusInternalServerError)
		return
	}

	vm := basePage(r, page.Title, page.Subtitle)
	vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, map[string]string{r.URL.Path: page.Title})
	vm.Detail = DetailView{
		Page:     page,
		Updated:  format.FmtDate(page.UpdatedAt),
		BackHref: nav.SectionHref(r.URL.Path, nav.HomeSection),
	}
	vm.SEO.OG.Type = "article"

	crumbs := make([]seo.BreadcrumbItem, 0, len(vm.Breadcrumbs))
	for _, c := range vm.Breadcrumbs {
		crumbs = append(crumbs, seo.BreadcrumbItem{Name: c.Label, Item: absoluteRef(r, c.Href)})
	}
	modified := ""
	if !page.UpdatedAt.IsZero() {
		modified = page.UpdatedAt.Format("2006-01-02")
	}
	vm.SEO.JSONLD = []template.JS{
		seo.Script(seo.Project(page.Title, page.Subtitle, vm.SEO.Canonical, page.ToolURL, modified)),
		seo.Script(seo.BreadcrumbList(crumbs)),
	}
	renderPage(w, r, "detail", vm)
}
