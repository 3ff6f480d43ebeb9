package nav

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"digitalgeosciences.com/geo-web/internal/content"
)

// ScrollSpyOffset is the distance in pixels from the top of the viewport used
// by the client-side scroll spy to decide which section is active. It is
// rendered into the page as data-scroll-spy-offset.
const ScrollSpyOffset = 100

// HomeSection is the anchor the header search lands on.
const HomeSection = "projects"

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href    string
	Label   string
	Section string
	Active  bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// sectionPaths maps path prefixes without a page of their own to the home
// page section listing them.
var sectionPaths = map[string]string{
	"/projects": "/#" + HomeSection,
}

// Build renders the configured navigation for the current path. Section
// links are in-page anchors on the home page and point back home elsewhere.
func Build(items []content.NavItem, currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	home := currentPath == "/"
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		r := RenderedItem{Label: it.Label, Section: it.Section}
		switch {
		case it.Href != "":
			r.Href = it.Href
			r.Active = isActive(it.Href, currentPath)
		case home:
			r.Href = "#" + it.Section
		default:
			r.Href = "/#" + it.Section
		}
		out = append(out, r)
	}
	return out
}

// SectionHref links to a home page section from currentPath.
func SectionHref(currentPath, section string) string {
	if currentPath == "" || currentPath == "/" {
		return "#" + section
	}
	return "/#" + section
}

func isActive(itemPath, currentPath string) bool {
	if !strings.HasPrefix(itemPath, "/") || strings.Contains(itemPath, "#") {
		return false
	}
	if itemPath == "/" {
		return currentPath == "/"
	}
	if currentPath == itemPath {
		return true
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path. labels maps a
// path to a display name (e.g. a project id to its title); other segments are
// title-cased.
func Breadcrumbs(currentPath string, labels map[string]string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}
	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, seg := range parts {
		if seg == "" {
			continue
		}
		href += "/" + seg
		label := labels[href]
		if label == "" {
			label = titleFromSegment(seg)
		}
		link := href
		if alias, ok := sectionPaths[href]; ok {
			link = alias
		}
		crumbs = append(crumbs, Crumb{Href: link, Label: label, Active: i == len(parts)-1})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	// Casers are stateful; one per call.
	s = cases.Title(language.English).String(s)
	return strings.ReplaceAll(s, " And ", " and ")
}
