package catalog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"digitalgeosciences.com/geo-web/internal/content"
)

func sampleProjects() []content.Project {
	return []content.Project{
		{ID: "qemscan", Title: "QEMSCAN Pipeline", Description: "Automated mineralogy"},
		{ID: "rockvision", Title: "RockVision", Description: "Thin section classifier"},
		{ID: "geohub", Title: "GeoHub", Description: "Data catalog for geoscience"},
		{ID: "field2model", Title: "Field2Model", Description: "Field data to 3D models"},
	}
}

func ids(projects []content.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func manyProjects(n int) []content.Project {
	out := make([]content.Project, n)
	for i := range out {
		out[i] = content.Project{ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Project %d", i)}
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty query keeps order", query: "", want: []string{"qemscan", "rockvision", "geohub", "field2model"}},
		{name: "title match ignores case", query: "rock", want: []string{"rockvision"}},
		{name: "upper case query", query: "GEO", want: []string{"geohub"}},
		{name: "description match", query: "catalog", want: []string{"geohub"}},
		{name: "matches title or description", query: "model", want: []string{"field2model"}},
		{name: "no match", query: "zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleProjects(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Filter(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilterIsOrderPreservingSubset(t *testing.T) {
	all := sampleProjects()
	got := Filter(all, "o")
	j := 0
	for _, p := range got {
		for j < len(all) && all[j].ID != p.ID {
			j++
		}
		if j == len(all) {
			t.Fatalf("result %q is out of order or not in input", p.ID)
		}
		j++
	}
}

func TestWindowPagination(t *testing.T) {
	all := manyProjects(30)

	w := NewWindow()
	if got := len(w.Visible(all)); got != 12 {
		t.Fatalf("initial visible = %d, want 12", got)
	}
	if !w.HasMore(all) {
		t.Fatal("expected more after first page")
	}

	w = w.LoadMore()
	if got := len(w.Visible(all)); got != 24 {
		t.Fatalf("after one load more visible = %d, want 24", got)
	}

	w = w.LoadMore()
	if got := len(w.Visible(all)); got != 30 {
		t.Fatalf("after two load more visible = %d, want 30", got)
	}
	if w.HasMore(all) {
		t.Fatal("expected no more after all projects shown")
	}
}

func TestWindowSurvivesQueryChange(t *testing.T) {
	all := manyProjects(30)
	w := NewWindow().LoadMore()

	narrowed := Apply(all, "Project 1", w)
	// Project 1, 10..19
	if narrowed.Matched != 11 || len(narrowed.Visible) != 11 {
		t.Fatalf("matched=%d visible=%d, want 11/11", narrowed.Matched, len(narrowed.Visible))
	}

	cleared := Apply(all, "", narrowed.Window)
	if len(cleared.Visible) != 24 {
		t.Fatalf("visible after clearing query = %d, want 24", len(cleared.Visible))
	}
}

func TestApplyEmptyResult(t *testing.T) {
	res := Apply(sampleProjects(), "basalt", NewWindow())
	if !res.Empty() {
		t.Fatal("expected empty result")
	}
	if res.HasMore {
		t.Fatal("empty result cannot have more")
	}
	if res.Total != 4 {
		t.Fatalf("total = %d, want 4", res.Total)
	}
}

func TestParseWindow(t *testing.T) {
	tests := map[string]int{
		"":    12,
		"abc": 12,
		"5":   12,
		"-24": 12,
		"12":  12,
		"24":  24,
		" 36": 36,
	}
	for raw, want := range tests {
		if got := ParseWindow(raw).Count; got != want {
			t.Errorf("ParseWindow(%q) = %d, want %d", raw, got, want)
		}
	}
}
