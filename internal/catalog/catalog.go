// Package catalog filters and paginates the project listing.
package catalog

import (
	"strconv"
	"strings"

	"digitalgeosciences.com/geo-web/internal/content"
)

// PageSize is both the initial window and the load-more increment.
const PageSize = 12

// Filter returns the projects whose title or description contains query,
// case-insensitively, in their original order. An empty query matches all.
func Filter(all []content.Project, query string) []content.Project {
	if query == "" {
		return all
	}
	needle := strings.ToLower(query)
	out := make([]content.Project, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Window is the number of matched projects currently shown.
type Window struct {
	Count int
}

// NewWindow returns the initial window.
func NewWindow() Window {
	return Window{Count: PageSize}
}

// ParseWindow reads a window size carried in a request. Missing, malformed,
// or too-small values fall back to the initial window.
func ParseWindow(raw string) Window {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < PageSize {
		return NewWindow()
	}
	return Window{Count: n}
}

// LoadMore grows the window by one page.
func (w Window) LoadMore() Window {
	return Window{Count: w.Count + PageSize}
}

// Visible returns the first min(Count, len(matched)) projects.
func (w Window) Visible(matched []content.Project) []content.Project {
	if w.Count >= len(matched) {
		return matched
	}
	return matched[:w.Count]
}

// HasMore reports whether some matched projects are hidden.
func (w Window) HasMore(matched []content.Project) bool {
	return len(matched) > w.Count
}

// Result is one rendering of the project listing.
type Result struct {
	Query   string
	Total   int
	Matched int
	Visible []content.Project
	Window  Window
	HasMore bool
	Next    Window
}

// Empty reports whether the query matched nothing.
func (r Result) Empty() bool {
	return r.Matched == 0
}

// Apply filters all by query and cuts the result to the window.
func Apply(all []content.Project, query string, w Window) Result {
	matched := Filter(all, query)
	return Result{
		Query:   query,
		Total:   len(all),
		Matched: len(matched),
		Visible: w.Visible(matched),
		Window:  w,
		HasMore: w.HasMore(matched),
		Next:    w.LoadMore(),
	}
}
