package handlers

import "html/template"

// SEOData is the head metadata of a page.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          struct {
		Title       string
		Description string
		Image       string
		Type        string
		URL         string
		SiteName    string
	}
	Twitter struct {
		Card  string
		Site  string
		Image string
	}
	JSONLD []template.JS
}
