package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digitalgeosciences.com/geo-web/internal/content"
	"digitalgeosciences.com/geo-web/internal/observability"
)

var (
	exportOut     string
	exportInclude []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the site to static files",
	Long: `Renders the home page, the projects and collaborators table, every
authored project page and a 404 page, then copies assets and content documents
so the site can be served by any static host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := observability.NewLogger(cfg.Dev)
		if err != nil {
			return err
		}
		if err := setup(cfg, l); err != nil {
			return err
		}
		report, err := exportSite(cmd.Context(), exportOut, exportInclude)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages and %d files to %s\n", report.Pages, report.Files, exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "dist", "output directory")
	exportCmd.Flags().StringSliceVar(&exportInclude, "include", []string{"**/*"}, "asset globs to copy, relative to the assets directory")
}

// ExportReport counts what an export wrote.
type ExportReport struct {
	Pages int
	Files int
}

// exportSite renders pages through the regular router so the static output
// matches what the server would answer.
func exportSite(ctx context.Context, out string, include []string) (ExportReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var report ExportReport
	if err := os.MkdirAll(out, 0o755); err != nil {
		return report, err
	}
	h := newRouter(0)

	ids, err := detailPageIDs(ctx)
	if err != nil {
		return report, err
	}
	pages := map[string]string{
		"/":        "index.html",
		rosterPath: path.Join(strings.TrimPrefix(rosterPath, "/"), "index.html"),
		"/404":     "404.html",
	}
	for _, id := range ids {
		pages["/projects/"+id] = path.Join("projects", id, "index.html")
	}

	routes := make([]string, 0, len(pages))
	for route := range pages {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	for _, route := range routes {
		req := httptest.NewRequest(http.MethodGet, route, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		want := http.StatusOK
		if route == "/404" {
			want = http.StatusNotFound
		}
		if rec.Code != want {
			if strings.HasPrefix(route, "/projects/") && rec.Code == http.StatusNotFound {
				logger.Warn("skipping project without an authored page", zap.String("route", route))
				continue
			}
			return report, fmt.Errorf("export %s: status %d", route, rec.Code)
		}
		if err := writeFile(filepath.Join(out, filepath.FromSlash(pages[route])), rec.Body.Bytes()); err != nil {
			return report, err
		}
		report.Pages++
	}

	for _, name := range content.DocumentPaths {
		raw, err := contentLoader.Raw(ctx, name)
		if err != nil {
			// optional documents may be absent
			continue
		}
		if err := writeFile(filepath.Join(out, content.DataDir, name), raw); err != nil {
			return report, err
		}
		report.Files++
	}

	n, err := copyAssets(filepath.Join(publicDir, "assets"), filepath.Join(out, "assets"), include)
	report.Files += n
	return report, err
}

// detailPageIDs lists the projects that may have a detail page: every id in
// projects.json plus every authored markdown file when content is local.
func detailPageIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	if doc, err := contentLoader.Projects(ctx); err == nil {
		for _, p := range doc.Projects {
			if p.URL == "" {
				seen[p.ID] = true
			}
		}
	}
	if !contentLoader.Remote() {
		matches, err := doublestar.Glob(os.DirFS(contentLoader.ContentDir()), content.ProjectsDir+"/*.md")
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			seen[strings.TrimSuffix(path.Base(m), ".md")] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func copyAssets(src, dst string, include []string) (int, error) {
	fsys := os.DirFS(src)
	copied := map[string]bool{}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return len(copied), fmt.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return len(copied), err
		}
		for _, m := range matches {
			if copied[m] {
				continue
			}
			if err := copyFile(fsys, m, filepath.Join(dst, filepath.FromSlash(m))); err != nil {
				return len(copied), err
			}
			copied[m] = true
		}
	}
	return len(copied), nil
}

func copyFile(fsys fs.FS, name, dst string) error {
	in, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	outFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, in); err != nil {
		_ = outFile.Close()
		return err
	}
	return outFile.Close()
}

func writeFile(dst string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}
