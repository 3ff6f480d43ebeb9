package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"
)

const defaultToolLabel = "Access Tool"

// DetailPage is a hand-authored project page rendered from markdown.
type DetailPage struct {
	ID        string
	Title     string
	Subtitle  string
	Icon      string
	ToolURL   string
	ToolLabel string
	Status    string
	UpdatedAt time.Time
	Body      template.HTML
	Sections  []Heading
}

// UnderDevelopment reports whether the page is flagged as work in progress.
func (p DetailPage) UnderDevelopment() bool {
	return strings.EqualFold(p.Status, "under-development")
}

// Heading is a table of contents entry.
type Heading struct {
	ID   string
	Text string
}

type detailFrontMatter struct {
	Title     string `yaml:"title"`
	Subtitle  string `yaml:"subtitle"`
	Icon      string `yaml:"icon"`
	ToolURL   string `yaml:"tool_url"`
	ToolLabel string `yaml:"tool_label"`
	Status    string `yaml:"status"`
	UpdatedAt string `yaml:"updated_at"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	detailPolicy = newDetailPolicy()
)

func newDetailPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("section", "div", "p", "span", "ul", "li")
	policy.AllowElements("section")
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// DetailPage loads projects/<id>.md. Unknown ids return ErrNotFound.
func (l *Loader) DetailPage(ctx context.Context, id string) (DetailPage, error) {
	id = sanitizeSlug(id)
	if id == "" || !projectIDPattern.MatchString(id) {
		return DetailPage{}, ErrNotFound
	}
	raw, err := l.read(ctx, path.Join(ProjectsDir, id+".md"))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Warn("detail page failed to load", zap.String("id", id), zap.Error(err))
		}
		return DetailPage{}, err
	}
	page, err := parseDetailPage(id, raw)
	if err != nil {
		l.logger.Warn("detail page failed to render", zap.String("id", id), zap.Error(err))
		return DetailPage{}, err
	}
	return page, nil
}

func parseDetailPage(id string, raw []byte) (DetailPage, error) {
	fm, body := splitFrontMatter(string(raw))
	front := detailFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return DetailPage{}, fmt.Errorf("content: parse front matter %s: %w", id, err)
		}
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return DetailPage{}, fmt.Errorf("content: render %s: %w", id, err)
	}
	safe := detailPolicy.SanitizeBytes(buf.Bytes())

	page := DetailPage{
		ID:        id,
		Title:     firstNonEmpty(strings.TrimSpace(front.Title), prettifySlug(id)),
		Subtitle:  strings.TrimSpace(front.Subtitle),
		Icon:      strings.TrimSpace(front.Icon),
		ToolURL:   strings.TrimSpace(front.ToolURL),
		ToolLabel: firstNonEmpty(strings.TrimSpace(front.ToolLabel), defaultToolLabel),
		Status:    strings.ToLower(strings.TrimSpace(front.Status)),
		UpdatedAt: parseContentDate(front.UpdatedAt),
		Body:      template.HTML(safe),
		Sections:  extractHeadings(safe),
	}
	return page, nil
}

// extractHeadings walks the rendered body and collects h2 headings that carry ids.
func extractHeadings(body []byte) []Heading {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var out []Heading
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.H2 {
			if id := attr(n, "id"); id != "" {
				out = append(out, Heading{ID: id, Text: strings.TrimSpace(textContent(n))})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
