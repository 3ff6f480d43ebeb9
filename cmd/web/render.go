package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/format"
	handlersPkg "digitalgeosciences.com/geo-web/internal/handlers"
	mw "digitalgeosciences.com/geo-web/internal/middleware"
	"digitalgeosciences.com/geo-web/internal/nav"
	"digitalgeosciences.com/geo-web/internal/observability"
)

// templateSet holds one template tree per page plus the shared partials used
// to render fragments.
type templateSet struct {
	shared *template.Template
	pages  map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now":             time.Now,
		"t":               func(key string) string { return i18nOrDefault(key, key) },
		"tf":              func(key string, args ...any) string { return fmt.Sprintf(i18nOrDefault(key, key), args...) },
		"month":           format.Month,
		"period":          format.Period,
		"plural":          format.Plural,
		"fmtDate":         format.FmtDate,
		"icon":            iconClass,
		"scrollSpyOffset": func() int { return nav.ScrollSpyOffset },
		"initials":        initials,
		"dict":            dict,
	}
}

// parseTemplates parses layouts, partials and sections once, then clones them
// for every page under pages/. Note: ParseGlob doesn't support **.
func parseTemplates() (*templateSet, error) {
	var shared, pages []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		rel, _ := filepath.Rel(templatesDir, path)
		if strings.HasPrefix(filepath.ToSlash(rel), "pages/") {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	base, err := template.New("_root").Funcs(templateFuncs()).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	set := &templateSet{shared: base, pages: map[string]*template.Template{}}
	for _, p := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		set.pages[strings.TrimSuffix(filepath.Base(p), ".tmpl")] = clone
	}
	return set, nil
}

func currentTemplates() (*templateSet, error) {
	if devMode {
		return parseTemplates()
	}
	if tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return tmplCache, nil
}

// renderPage executes the base layout of the named page.
func renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderPageStatus(w, r, name, data, http.StatusOK)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, name string, data any, code int) {
	set, err := currentTemplates()
	if err != nil {
		renderFailure(w, r, "template parse error", err)
		return
	}
	t, ok := set.pages[name]
	if !ok {
		renderFailure(w, r, "template exec error", fmt.Errorf("unknown page %q", name))
		return
	}
	execute(w, r, t, "base", data, code)
}

// renderTemplate executes a named fragment, typically for htmx swaps.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	set, err := currentTemplates()
	if err != nil {
		renderFailure(w, r, "template parse error", err)
		return
	}
	execute(w, r, set.shared, name, data, http.StatusOK)
}

func execute(w http.ResponseWriter, r *http.Request, t *template.Template, name string, data any, code int) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		renderFailure(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

func renderFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	if devMode {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	mw.WriteError(w, r, http.StatusInternalServerError, msg)
}

// basePage fills the layout fields shared by every page.
func basePage(r *http.Request, title, desc string) handlersPkg.PageData {
	site := loadSite(r)
	brand := site.Site.Title
	if brand == "" {
		brand = i18nOrDefault("brand.name", "Digital Geosciences")
	}
	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang(),
		Path:        r.URL.Path,
		Site:        site.Site,
		Supporters:  site.Supporters,
		Nav:         nav.Build(site.Navigation, r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path, nil),
		Analytics:   analytics,
		CSRFToken:   mw.CSRFToken(r.Context()),
		Search:      r.URL.Query().Get("search"),
	}
	if vm.Site.Title == "" {
		vm.Site.Title = brand
	}

	vm.SEO.Title = brand
	if title != "" && title != brand {
		vm.SEO.Title = title + " | " + brand
	}
	vm.SEO.Description = desc
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Type = "website"
	vm.SEO.Twitter.Card = "summary"
	return vm
}

// absoluteURL is the canonical URL of the request path, without query.
func absoluteURL(r *http.Request) string {
	return absoluteRef(r, r.URL.Path)
}

func absoluteRef(r *http.Request, path string) string {
	return origin(r) + path
}

// origin prefers the configured site URL over the request host.
func origin(r *http.Request) string {
	if siteURL != "" {
		return siteURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

var iconClasses = map[string]string{
	"microscope": "icon-microscope",
	"eye":        "icon-eye",
	"package":    "icon-package",
	"database":   "icon-database",
	"layers":     "icon-layers",
	"image":      "icon-image",
	"terminal":   "icon-terminal",
	"github":     "icon-github",
	"arrow-down": "icon-arrow-down",
	"external":   "icon-external",
}

// iconClass maps a content icon key to its CSS class; unknown keys get a generic glyph.
func iconClass(key string) string {
	if c, ok := iconClasses[strings.ToLower(strings.TrimSpace(key))]; ok {
		return "icon " + c
	}
	return "icon icon-generic"
}

// initials builds the avatar placeholder for collaborators without a photo.
func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
