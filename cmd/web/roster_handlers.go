package main

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/nav"
	"digitalgeosciences.com/geo-web/internal/roster"
)

// RosterView is the combined projects and collaborators table.
type RosterView struct {
	Rows    []roster.Row
	Summary roster.Summary
	Loaded  bool
}

// RosterHandler renders every project with the collaborators who list it.
// The two documents load independently: without collaborators.json every
// project is still listed, as "Not listed".
func RosterHandler(w http.ResponseWriter, r *http.Request) {
	var (
		projects        content.Projects
		projectsOK      bool
		collaborators   content.Collaborators
		collaboratorsOK bool
	)
	ctx := r.Context()
	var g errgroup.Group
	g.Go(func() error {
		if doc, err := contentLoader.Projects(ctx); err == nil {
			projects, projectsOK = doc, true
		}
		return nil
	})
	g.Go(func() error {
		if doc, err := contentLoader.Collaborators(ctx); err == nil {
			collaborators, collaboratorsOK = doc, true
		}
		return nil
	})
	_ = g.Wait()

	view := RosterView{}
	if projectsOK {
		var people []content.Collaborator
		if collaboratorsOK {
			people = collaborators.Collaborators
		}
		view.Rows = roster.Rows(projects.Projects, people)
		view.Summary = roster.Summarize(view.Rows, people)
		view.Loaded = true
	}

	title := i18nOrDefault("roster.title", "Projects and Collaborators")
	vm := basePage(r, title, i18nOrDefault("roster.description", ""))
	vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, map[string]string{rosterPath: title})
	vm.Roster = view
	renderPage(w, r, "roster", vm)
}
