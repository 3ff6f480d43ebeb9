package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"digitalgeosciences.com/geo-web/internal/catalog"
	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/format"
	"digitalgeosciences.com/geo-web/internal/join"
	"digitalgeosciences.com/geo-web/internal/nav"
)

// maxCardProjects is how many project chips a collaborator card shows before
// linking to the full table.
const maxCardProjects = 4

// rosterPath is the combined projects and collaborators table.
const rosterPath = "/projects-and-collaborators"

// HomeView aggregates the sections of the landing page. A nil section failed
// to load and renders nothing.
type HomeView struct {
	Objectives    *content.Objectives
	Projects      *ProjectsView
	HowWeWork     *content.HowWeWork
	Collaborators *CollaboratorsView
	Join          *JoinView
}

// ProjectsView is the projects section and its search/load-more fragment.
type ProjectsView struct {
	Header  content.SectionHeader
	Result  catalog.Result
	MoreURL string
}

// CollaboratorCard is one roster card on the landing page.
type CollaboratorCard struct {
	content.Collaborator
	Period   string
	Initials string
	Shown    []content.ProjectRef
	More     bool
}

// CollaboratorsView is the collaborators section.
type CollaboratorsView struct {
	Header     content.SectionHeader
	Cards      []CollaboratorCard
	RosterHref string
}

// JoinView is the join section in either mode.
type JoinView struct {
	Doc       content.Join
	Mode      join.Mode
	StartURL  string
	BrowseURL string
	CSRFToken string

	Draft     join.Draft
	Errors    join.FieldErrors
	Notice    *join.Notification
	Submitted bool
	Email     string
}

// FormMode reports whether proposals are collected with the form.
func (v JoinView) FormMode() bool { return v.Mode == join.ModeForm }

// Value returns the draft text for a field.
func (v JoinView) Value(id string) string { return v.Draft[id] }

// FieldError returns the validation message for a field, if any.
func (v JoinView) FieldError(id string) string { return v.Errors[id] }

func loadSite(r *http.Request) content.SiteConfig {
	site, err := contentLoader.SiteConfig(r.Context())
	if err != nil {
		return content.SiteConfig{}
	}
	return site
}

// buildHomeView loads every section document in parallel. Failures leave the
// section nil; the loader has already logged them.
func buildHomeView(ctx context.Context, q url.Values, csrf string) HomeView {
	var (
		view   HomeView
		site   content.SiteConfig
		siteOK bool
	)
	var g errgroup.Group
	g.Go(func() error {
		if doc, err := contentLoader.Objectives(ctx); err == nil {
			view.Objectives = &doc
		}
		return nil
	})
	g.Go(func() error {
		if doc, err := contentLoader.Projects(ctx); err == nil {
			pv := buildProjectsView(doc, q)
			view.Projects = &pv
		}
		return nil
	})
	g.Go(func() error {
		if doc, err := contentLoader.HowWeWork(ctx); err == nil {
			view.HowWeWork = &doc
		}
		return nil
	})
	g.Go(func() error {
		if doc, err := contentLoader.Collaborators(ctx); err == nil {
			cv := buildCollaboratorsView(doc)
			view.Collaborators = &cv
		}
		return nil
	})
	g.Go(func() error {
		if doc, err := contentLoader.SiteConfig(ctx); err == nil {
			site, siteOK = doc, true
		}
		return nil
	})
	var joinDoc content.Join
	var joinOK bool
	g.Go(func() error {
		if doc, err := contentLoader.Join(ctx); err == nil {
			joinDoc, joinOK = doc, true
		}
		return nil
	})
	_ = g.Wait()

	if joinOK {
		var s *content.SiteConfig
		if siteOK {
			s = &site
		}
		jv := newJoinView(joinDoc, s, csrf)
		view.Join = &jv
	}
	return view
}

func buildProjectsView(doc content.Projects, q url.Values) ProjectsView {
	query := q.Get("search")
	w := catalog.ParseWindow(q.Get("count"))
	res := catalog.Apply(doc.Projects, query, w)
	return ProjectsView{
		Header:  doc.Header,
		Result:  res,
		MoreURL: projectsFragURL(query, res.Next),
	}
}

func projectsFragURL(query string, w catalog.Window) string {
	v := url.Values{}
	if query != "" {
		v.Set("search", query)
	}
	v.Set("count", strconv.Itoa(w.Count))
	return "/fragments/projects?" + v.Encode()
}

// searchLocation is the address bar value after a header search: the search
// parameter is dropped entirely when empty.
func searchLocation(query string) string {
	if query == "" {
		return "/#" + nav.HomeSection
	}
	v := url.Values{}
	v.Set("search", query)
	return "/?" + v.Encode() + "#" + nav.HomeSection
}

func buildCollaboratorsView(doc content.Collaborators) CollaboratorsView {
	cards := make([]CollaboratorCard, 0, len(doc.Collaborators))
	for _, c := range doc.Collaborators {
		card := CollaboratorCard{
			Collaborator: c,
			Period:       format.Period(c.Participation.Start, c.Participation.End),
			Initials:     initials(c.Name),
			Shown:        c.Projects,
		}
		if len(c.Projects) > maxCardProjects {
			card.Shown = c.Projects[:maxCardProjects]
			card.More = true
		}
		cards = append(cards, card)
	}
	return CollaboratorsView{Header: doc.Header, Cards: cards, RosterHref: rosterPath}
}

// newJoinView builds an empty join section. Discussion links fall back to the
// repository's discussions board when the document does not name them.
func newJoinView(doc content.Join, site *content.SiteConfig, csrf string) JoinView {
	v := JoinView{
		Doc:       doc,
		Mode:      joinMode,
		StartURL:  doc.Discussion.StartURL,
		BrowseURL: doc.Discussion.BrowseURL,
		CSRFToken: csrf,
		Draft:     join.Draft{},
	}
	if site != nil && site.Site.GitHub != "" {
		board := discussionsURL(site.Site.GitHub)
		if v.StartURL == "" {
			v.StartURL = board + "/new"
		}
		if v.BrowseURL == "" {
			v.BrowseURL = board
		}
	}
	return v
}

// discussionsURL is the discussions board of a GitHub organisation or repository.
func discussionsURL(github string) string {
	u, err := url.Parse(strings.TrimSpace(github))
	if err != nil || u.Host == "" {
		return strings.TrimRight(github, "/") + "/discussions"
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 1 && segs[0] != "" {
		u.Path = "/orgs/" + segs[0] + "/discussions"
	} else {
		u.Path = "/" + strings.Join(segs, "/") + "/discussions"
	}
	u.RawQuery, u.Fragment = "", ""
	return u.String()
}
