// Package roster joins the project catalog with the collaborator roster.
package roster

import (
	"strings"

	"digitalgeosciences.com/geo-web/internal/content"
)

// Contact is one way to reach a contributor.
type Contact struct {
	Kind  string
	Label string
	Href  string
}

// Contributor is a collaborator as listed against a project.
type Contributor struct {
	Name     string
	Role     string
	Links    *content.Links
	Projects int
}

// Contacts returns the contributor's present links in a fixed order:
// github, website, linkedin, email.
func (c Contributor) Contacts() []Contact {
	if c.Links == nil {
		return nil
	}
	var out []Contact
	if c.Links.GitHub != "" {
		out = append(out, Contact{Kind: "github", Label: "GitHub", Href: c.Links.GitHub})
	}
	if c.Links.Website != "" {
		out = append(out, Contact{Kind: "website", Label: "Website", Href: c.Links.Website})
	}
	if c.Links.LinkedIn != "" {
		out = append(out, Contact{Kind: "linkedin", Label: "LinkedIn", Href: c.Links.LinkedIn})
	}
	if c.Links.Email != "" {
		out = append(out, Contact{Kind: "email", Label: c.Links.Email, Href: "mailto:" + c.Links.Email})
	}
	return out
}

// Key normalises a project title or reference for matching: surrounding
// whitespace is ignored and case is folded.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Index maps a project name normalised by Key to the collaborators who list it,
// in collaborator order, without duplicate names.
type Index map[string][]Contributor

// BuildIndex builds the project name index from the roster.
func BuildIndex(collaborators []content.Collaborator) Index {
	idx := Index{}
	seen := map[string]map[string]bool{}
	for _, col := range collaborators {
		contributor := Contributor{
			Name:     col.Name,
			Role:     col.Role,
			Links:    col.Links,
			Projects: len(col.Projects),
		}
		for _, ref := range col.Projects {
			key := Key(ref.Name)
			if key == "" {
				continue
			}
			if seen[key] == nil {
				seen[key] = map[string]bool{}
			}
			name := strings.ToLower(col.Name)
			if seen[key][name] {
				continue
			}
			seen[key][name] = true
			idx[key] = append(idx[key], contributor)
		}
	}
	return idx
}

// Row is one project with its contributors.
type Row struct {
	Project      content.Project
	Contributors []Contributor
}

// Rows returns one row per project in catalog order.
func Rows(projects []content.Project, collaborators []content.Collaborator) []Row {
	idx := BuildIndex(collaborators)
	rows := make([]Row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, Row{
			Project:      p,
			Contributors: idx[Key(p.Title)],
		})
	}
	return rows
}

// Summary counts the table contents.
type Summary struct {
	Projects      int
	Collaborators int
	Unstaffed     int
}

// Summarize counts the rows and the whole roster, including collaborators
// not linked to any listed project.
func Summarize(rows []Row, collaborators []content.Collaborator) Summary {
	s := Summary{Projects: len(rows), Collaborators: len(collaborators)}
	for _, r := range rows {
		if len(r.Contributors) == 0 {
			s.Unstaffed++
		}
	}
	return s
}
