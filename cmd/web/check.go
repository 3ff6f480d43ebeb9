package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/content"
)

var (
	checkOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	checkFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	checkSkip   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	checkTitle  = lipgloss.NewStyle().Bold(true).Underline(true)
	checkDetail = lipgloss.NewStyle().Faint(true).PaddingLeft(4)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every content document and project page",
	RunE: func(cmd *cobra.Command, args []string) error {
		contentLoader = content.NewLoader(cfg.Content.BaseURL)
		contentLoader.SetContentDir(cfg.Content.Dir)
		contentLoader.SetLogger(zap.NewNop())
		results := checkContent(cmd.Context())
		return printCheck(cmd.OutOrStdout(), results)
	},
}

// CheckResult is the outcome for one document or page.
type CheckResult struct {
	Name     string
	Err      error
	Optional bool
}

// checkContent loads and validates every document and detail page.
func checkContent(ctx context.Context) []CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}
	docs := []struct {
		name     string
		optional bool
		load     func(context.Context) error
	}{
		{content.SiteConfigPath, false, func(ctx context.Context) error { _, err := contentLoader.SiteConfig(ctx); return err }},
		{content.ObjectivesPath, false, func(ctx context.Context) error { _, err := contentLoader.Objectives(ctx); return err }},
		{content.ProjectsPath, false, func(ctx context.Context) error { _, err := contentLoader.Projects(ctx); return err }},
		{content.HowWeWorkPath, true, func(ctx context.Context) error { _, err := contentLoader.HowWeWork(ctx); return err }},
		{content.CollaboratorsPath, false, func(ctx context.Context) error { _, err := contentLoader.Collaborators(ctx); return err }},
		{content.JoinPath, false, func(ctx context.Context) error { _, err := contentLoader.Join(ctx); return err }},
	}
	results := make([]CheckResult, 0, len(docs))
	for _, d := range docs {
		err := d.load(ctx)
		results = append(results, CheckResult{Name: d.name, Err: err, Optional: d.optional && errors.Is(err, content.ErrNotFound)})
	}

	ids, err := detailPageIDs(ctx)
	if err != nil {
		return append(results, CheckResult{Name: content.ProjectsDir, Err: err})
	}
	sort.Strings(ids)
	for _, id := range ids {
		_, err := contentLoader.DetailPage(ctx, id)
		// a catalog entry without an authored page is a content gap, not an error
		results = append(results, CheckResult{
			Name:     content.ProjectsDir + "/" + id + ".md",
			Err:      err,
			Optional: errors.Is(err, content.ErrNotFound),
		})
	}
	return results
}

// printCheck writes the styled report and returns an error when any required
// document failed.
func printCheck(w io.Writer, results []CheckResult) error {
	fmt.Fprintln(w, checkTitle.Render("Content check"))
	failed := 0
	for _, r := range results {
		switch {
		case r.Err == nil:
			fmt.Fprintf(w, "%s %s\n", checkOK.Render("ok  "), r.Name)
		case r.Optional:
			fmt.Fprintf(w, "%s %s\n", checkSkip.Render("skip"), r.Name)
			fmt.Fprintln(w, checkDetail.Render(r.Err.Error()))
		default:
			failed++
			fmt.Fprintf(w, "%s %s\n", checkFail.Render("fail"), r.Name)
			var verr *content.ValidationError
			if errors.As(r.Err, &verr) {
				for _, f := range verr.Fields() {
					fmt.Fprintln(w, checkDetail.Render(f))
				}
				continue
			}
			fmt.Fprintln(w, checkDetail.Render(r.Err.Error()))
		}
	}
	if failed > 0 {
		return fmt.Errorf("content check: %d of %d failed", failed, len(results))
	}
	return nil
}
