package handlers

import (
	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/nav"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics
	CSRFToken string

	Path        string
	Site        content.Site
	Supporters  []content.ExternalLink
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Search      string
	// SearchInPlace is true on the home page, where the header search swaps
	// the projects section instead of navigating.
	SearchInPlace bool

	// Optional per-page view model payloads
	Home     any
	Detail   any
	Roster   any
	NotFound any
}
