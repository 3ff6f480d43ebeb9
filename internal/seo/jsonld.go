package seo

import (
	"encoding/json"
	"html/template"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals v for embedding in a <script type="application/ld+json"> block.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// Organization returns a minimal Organization schema.
func Organization(name, url, email string, sameAs ...string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" { m["url"] = url }
	if email != "" { m["email"] = email }
	if len(sameAs) > 0 {
		links := make([]string, 0, len(sameAs))
		for _, s := range sameAs {
			if s != "" { links = append(links, s) }
		}
		if len(links) > 0 { m["sameAs"] = links }
	}
	return m
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" { m["url"] = url }
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type": "SearchAction",
			"target": searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Project returns a SoftwareApplication schema for a project detail page.
func Project(name, description, url, toolURL, dateModified string) map[string]any {
	m := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                name,
		"applicationCategory": "ScientificApplication",
	}
	if description != "" { m["description"] = description }
	if url != "" { m["url"] = url }
	if toolURL != "" { m["installUrl"] = toolURL }
	if dateModified != "" { m["dateModified"] = dateModified }
	return m
}
