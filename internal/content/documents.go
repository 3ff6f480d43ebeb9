package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Document paths relative to the content data root.
const (
	SiteConfigPath    = "site-config.json"
	ObjectivesPath    = "objectives.json"
	ProjectsPath      = "projects.json"
	CollaboratorsPath = "collaborators.json"
	JoinPath          = "join.json"
	HowWeWorkPath     = "how-we-work.json"
)

// DocumentPaths lists every document the site reads, in section order.
var DocumentPaths = []string{
	SiteConfigPath,
	ObjectivesPath,
	ProjectsPath,
	HowWeWorkPath,
	CollaboratorsPath,
	JoinPath,
}

// Present marks an ongoing participation end date.
const Present = "Present"

var projectIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validator is implemented by every document decoded by the typed accessors.
type Validator interface {
	Validate() error
}

// SectionHeader is the title block shared by most sections.
type SectionHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Note     string `json:"note,omitempty"`
}

// Address is the organisation's postal address.
type Address struct {
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Site holds organisation-wide metadata.
type Site struct {
	Title   string  `json:"title"`
	Contact string  `json:"contact"`
	URL     string  `json:"url"`
	Address Address `json:"address"`
	GitHub  string  `json:"github"`
	Channel string  `json:"channel,omitempty"`
}

// ExternalLink is a labelled outbound link.
type ExternalLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// NavItem is one header navigation entry pointing at a home page section.
type NavItem struct {
	Label   string `json:"label"`
	Section string `json:"section"`
	Href    string `json:"href,omitempty"`
}

// SiteConfig is site-config.json.
type SiteConfig struct {
	Site       Site           `json:"site"`
	Navigation []NavItem      `json:"navigation"`
	Supporters []ExternalLink `json:"supporters,omitempty"`
}

func (c SiteConfig) Validate() error {
	v := newValidation(SiteConfigPath)
	v.require("site.title", c.Site.Title)
	seen := map[string]bool{}
	for i, item := range c.Navigation {
		field := fmt.Sprintf("navigation[%d]", i)
		v.require(field+".label", item.Label)
		if item.Section == "" && item.Href == "" {
			v.add(field, "section or href is required")
		}
		if item.Section != "" {
			if seen[item.Section] {
				v.add(field+".section", "duplicate section "+item.Section)
			}
			seen[item.Section] = true
		}
	}
	return v.err()
}

// HeroButton is a call to action in the hero block.
type HeroButton struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
	Action  string `json:"action"`
	Target  string `json:"target"`
	Icon    string `json:"icon,omitempty"`
}

// Href resolves the button target: scroll actions jump to a section anchor.
func (b HeroButton) Href() string {
	if b.Action == "scroll" {
		return "#" + strings.TrimPrefix(b.Target, "#")
	}
	return b.Target
}

// External reports whether the button leaves the site.
func (b HeroButton) External() bool {
	return b.Action == "link"
}

// Hero is the landing banner.
type Hero struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Buttons  []HeroButton `json:"buttons"`
}

// Objective themes.
const (
	ThemeResearch    = "research"
	ThemeEducation   = "education"
	ThemeDevelopment = "development"
)

// ObjectiveGroup is a themed list of objective points.
type ObjectiveGroup struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Theme  string   `json:"theme"`
	Points []string `json:"points"`
}

// Objectives is objectives.json.
type Objectives struct {
	Hero Hero `json:"hero"`
	Core struct {
		Title      string           `json:"title"`
		Subtitle   string           `json:"subtitle"`
		Objectives []ObjectiveGroup `json:"objectives"`
	} `json:"core"`
}

func (o Objectives) Validate() error {
	v := newValidation(ObjectivesPath)
	v.require("hero.title", o.Hero.Title)
	for i, b := range o.Hero.Buttons {
		field := fmt.Sprintf("hero.buttons[%d]", i)
		v.require(field+".label", b.Label)
		switch b.Action {
		case "scroll", "link":
		default:
			v.add(field+".action", "must be scroll or link")
		}
		switch b.Variant {
		case "", "primary", "secondary":
		default:
			v.add(field+".variant", "must be primary or secondary")
		}
	}
	for i, g := range o.Core.Objectives {
		field := fmt.Sprintf("core.objectives[%d]", i)
		v.require(field+".label", g.Label)
		switch g.Theme {
		case ThemeResearch, ThemeEducation, ThemeDevelopment:
		default:
			v.add(field+".theme", "unknown theme "+g.Theme)
		}
	}
	return v.err()
}

// Project is one entry in the project catalog.
type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	URL         string `json:"url,omitempty"`
	External    bool   `json:"external,omitempty"`
}

// Href is where the project card links to. Projects without an explicit url
// link to their detail page.
func (p Project) Href() string {
	if p.URL != "" {
		return p.URL
	}
	return "/projects/" + p.ID
}

// Projects is projects.json.
type Projects struct {
	Header   SectionHeader `json:"header"`
	Projects []Project     `json:"projects"`
}

func (p Projects) Validate() error {
	v := newValidation(ProjectsPath)
	seen := map[string]bool{}
	for i, pr := range p.Projects {
		field := fmt.Sprintf("projects[%d]", i)
		v.require(field+".title", pr.Title)
		if !projectIDPattern.MatchString(pr.ID) {
			v.add(field+".id", "must be URL-safe")
		}
		if seen[pr.ID] {
			v.add(field+".id", "duplicate id "+pr.ID)
		}
		seen[pr.ID] = true
	}
	return v.err()
}

// Participation is the period a collaborator has been involved.
type Participation struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

// Ongoing reports whether the participation has no concrete end date.
func (p Participation) Ongoing() bool {
	return p.End == "" || strings.EqualFold(p.End, Present)
}

// Links are optional contact channels.
type Links struct {
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ProjectRef is a collaborator's reference to a project by display name.
type ProjectRef struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Collaborator is one roster entry.
type Collaborator struct {
	Name          string        `json:"name"`
	Role          string        `json:"role"`
	Photo         string        `json:"photo,omitempty"`
	Participation Participation `json:"participation"`
	Links         *Links        `json:"links,omitempty"`
	Projects      []ProjectRef  `json:"projects,omitempty"`
}

// Collaborators is collaborators.json.
type Collaborators struct {
	Header        SectionHeader  `json:"header"`
	Collaborators []Collaborator `json:"collaborators"`
}

func (c Collaborators) Validate() error {
	v := newValidation(CollaboratorsPath)
	for i, col := range c.Collaborators {
		field := fmt.Sprintf("collaborators[%d]", i)
		v.require(field+".name", col.Name)
		start, startErr := parseMonth(col.Participation.Start)
		if col.Participation.Start != "" && startErr != nil {
			v.add(field+".participation.start", "must be YYYY-MM")
		}
		if col.Participation.Ongoing() {
			continue
		}
		end, endErr := parseMonth(col.Participation.End)
		if endErr != nil {
			v.add(field+".participation.end", "must be YYYY-MM or Present")
			continue
		}
		if startErr == nil && col.Participation.Start != "" && end.Before(start) {
			v.add(field+".participation", "start is after end")
		}
	}
	return v.err()
}

// JoinFormField describes one input of the proposal form.
type JoinFormField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
	Rows        int    `json:"rows,omitempty"`
}

// Multiline reports whether the field renders as a textarea.
func (f JoinFormField) Multiline() bool {
	return f.Type == "textarea"
}

// Join is join.json.
type Join struct {
	Header      SectionHeader `json:"header"`
	Eligibility struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Requirements []string `json:"requirements"`
	} `json:"eligibility"`
	CTA struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		WhyTitle    string   `json:"whyTitle"`
		Highlights  []string `json:"highlights"`
		Note        string   `json:"note"`
		Buttons     struct {
			StartLabel  string `json:"startLabel"`
			BrowseLabel string `json:"browseLabel"`
		} `json:"buttons"`
	} `json:"cta"`
	Discussion struct {
		StartURL  string `json:"startUrl,omitempty"`
		BrowseURL string `json:"browseUrl,omitempty"`
	} `json:"discussion"`
	Form struct {
		Title       string          `json:"title"`
		SubmitLabel string          `json:"submitLabel"`
		Fields      []JoinFormField `json:"fields"`
	} `json:"form"`
}

func (j Join) Validate() error {
	v := newValidation(JoinPath)
	seen := map[string]bool{}
	for i, f := range j.Form.Fields {
		field := fmt.Sprintf("form.fields[%d]", i)
		v.require(field+".id", f.ID)
		if seen[f.ID] {
			v.add(field+".id", "duplicate id "+f.ID)
		}
		seen[f.ID] = true
	}
	return v.err()
}

// PrincipleAction is an optional link attached to a principle.
type PrincipleAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Principle is one "how we work" entry.
type Principle struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Action      *PrincipleAction `json:"action,omitempty"`
	Features    []string         `json:"features,omitempty"`
}

// HowWeWork is how-we-work.json.
type HowWeWork struct {
	Header     SectionHeader `json:"header"`
	Principles []Principle   `json:"principles"`
}

func (h HowWeWork) Validate() error {
	v := newValidation(HowWeWorkPath)
	for i, p := range h.Principles {
		v.require(fmt.Sprintf("principles[%d].title", i), p.Title)
	}
	return v.err()
}

func parseMonth(v string) (time.Time, error) {
	return time.Parse("2006-01", strings.TrimSpace(v))
}
