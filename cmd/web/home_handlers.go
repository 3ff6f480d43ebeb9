package main

import (
	"html/template"
	"net/http"

	handlersPkg "digitalgeosciences.com/geo-web/internal/handlers"
	mw "digitalgeosciences.com/geo-web/internal/middleware"
	"digitalgeosciences.com/geo-web/internal/seo"
)

// HomeHandler renders the landing page composite.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	home := buildHomeView(r.Context(), r.URL.Query(), mw.CSRFToken(r.Context()))
	renderHome(w, r, home)
}

func renderHome(w http.ResponseWriter, r *http.Request, home HomeView) {
	desc := i18nOrDefault("brand.tagline", "")
	if home.Objectives != nil && home.Objectives.Hero.Subtitle != "" {
		desc = home.Objectives.Hero.Subtitle
	}
	vm := basePage(r, "", desc)
	vm.Title = vm.Site.Title
	vm.SearchInPlace = true
	vm.Home = home
	vm.SEO.JSONLD = siteJSONLD(r, vm)
	renderPage(w, r, "home", vm)
}

func siteJSONLD(r *http.Request, vm handlersPkg.PageData) []template.JS {
	home := origin(r) + "/"
	orgURL := vm.Site.URL
	if orgURL == "" {
		orgURL = home
	}
	return []template.JS{
		seo.Script(seo.Organization(vm.Site.Title, orgURL, vm.Site.Contact, vm.Site.GitHub, vm.Site.Channel)),
		seo.Script(seo.WebSite(vm.Site.Title, home, home+"?search=")),
	}
}

// ProjectsFrag renders the projects section for header searches and "load
// more". The address bar is replaced, not pushed, so search stays deep-linkable.
func ProjectsFrag(w http.ResponseWriter, r *http.Request) {
	doc, err := contentLoader.Projects(r.Context())
	if err != nil {
		// keep whatever the page already shows
		w.WriteHeader(http.StatusNoContent)
		return
	}
	view := buildProjectsView(doc, r.URL.Query())
	w.Header().Set("HX-Replace-Url", searchLocation(view.Result.Query))
	renderTemplate(w, r, "section_projects", view)
}
