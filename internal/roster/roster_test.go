package roster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"digitalgeosciences.com/geo-web/internal/content"
)

func names(cs []Contributor) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func TestRowsMatchProjectTitlesCaseInsensitively(t *testing.T) {
	t.Parallel()

	projects := []content.Project{
		{ID: "geohub", Title: "GeoHub"},
		{ID: "rockvision", Title: "RockVision"},
	}
	collaborators := []content.Collaborator{
		{Name: "A", Projects: []content.ProjectRef{{Name: "geohub"}, {Name: "GEOHUB"}}},
		{Name: "B", Projects: []content.ProjectRef{{Name: "GeoHub"}}},
	}

	rows := Rows(projects, collaborators)
	require.Len(t, rows, 2)
	if diff := cmp.Diff([]string{"A", "B"}, names(rows[0].Contributors)); diff != "" {
		t.Fatalf("GeoHub contributors mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, rows[1].Contributors)
}

func TestBuildIndexDeduplicatesByName(t *testing.T) {
	t.Parallel()

	idx := BuildIndex([]content.Collaborator{
		{Name: "Sara", Projects: []content.ProjectRef{{Name: "GeoHub"}}},
		{Name: "sara", Projects: []content.ProjectRef{{Name: "geohub"}}},
		{Name: "Omar", Projects: []content.ProjectRef{{Name: " "}}},
	})
	require.Equal(t, []string{"Sara"}, names(idx["geohub"]))
	require.Len(t, idx, 1)
}

func TestContactsOrderAndEmailLink(t *testing.T) {
	t.Parallel()

	c := Contributor{Links: &content.Links{
		Email:    "a@example.com",
		LinkedIn: "https://linkedin.com/in/a",
		GitHub:   "https://github.com/a",
	}}
	got := c.Contacts()
	require.Len(t, got, 3)
	require.Equal(t, "github", got[0].Kind)
	require.Equal(t, "linkedin", got[1].Kind)
	require.Equal(t, "mailto:a@example.com", got[2].Href)

	require.Empty(t, Contributor{}.Contacts())
	require.Empty(t, Contributor{Links: &content.Links{}}.Contacts())
}

func TestRowsIgnoreSurroundingWhitespace(t *testing.T) {
	t.Parallel()

	projects := []content.Project{
		{ID: "survey", Title: "Survey "},
		{ID: "basins", Title: "Basins"},
	}
	collaborators := []content.Collaborator{
		{Name: "A", Projects: []content.ProjectRef{{Name: "Survey "}}},
		{Name: "B", Projects: []content.ProjectRef{{Name: "  basins"}}},
	}

	rows := Rows(projects, collaborators)
	require.Equal(t, []string{"A"}, names(rows[0].Contributors))
	require.Equal(t, []string{"B"}, names(rows[1].Contributors))
}

func TestSummarizeCountsWholeRoster(t *testing.T) {
	t.Parallel()

	projects := []content.Project{
		{ID: "geohub", Title: "GeoHub"},
		{ID: "geogallery", Title: "GeoGallery"},
	}
	collaborators := []content.Collaborator{
		{Name: "A", Projects: []content.ProjectRef{{Name: "GeoHub"}}},
		{Name: "B"},
		{Name: "C", Projects: []content.ProjectRef{{Name: "Unknown"}}},
	}

	got := Summarize(Rows(projects, collaborators), collaborators)
	require.Equal(t, Summary{Projects: 2, Collaborators: 3, Unstaffed: 1}, got)
}
