package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultContentDir = "content"
	defaultCacheTTL   = 5 * time.Minute
	defaultTimeout    = 5 * time.Second
	maxDocumentBytes  = 4 << 20

	// DataDir is the directory under the content root holding JSON documents.
	DataDir = "data"
	// ProjectsDir is the directory under the content root holding detail pages.
	ProjectsDir = "projects"
)

var tracer = otel.Tracer("digitalgeosciences.com/geo-web/internal/content")

// Loader fetches content documents from a local directory or a remote base URL.
// Raw bytes are cached per resource path and shared by every consumer.
type Loader struct {
	baseURL    string
	contentDir string
	fsys       fs.FS
	http       *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]cacheEntry
	group singleflight.Group
	now   func() time.Time
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// NewLoader constructs a loader. When baseURL is empty, documents are read from
// the local content directory.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		contentDir: defaultContentDir,
		http:       &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		ttl:        defaultCacheTTL,
		items:      map[string]cacheEntry{},
		now:        time.Now,
	}
}

// SetContentDir configures the local content root and drops cached documents.
func (l *Loader) SetContentDir(dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	l.contentDir = dir
	l.fsys = nil
	l.Purge()
}

// ContentDir returns the configured local content root.
func (l *Loader) ContentDir() string {
	return l.contentDir
}

// SetFS overrides the local content root with an arbitrary filesystem (tests, embedded content).
func (l *Loader) SetFS(fsys fs.FS) {
	l.fsys = fsys
}

// SetCacheTTL overrides how long fetched documents stay cached.
func (l *Loader) SetCacheTTL(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	l.mu.Lock()
	l.ttl = d
	l.mu.Unlock()
}

// SetLogger sets the logger used to report load failures.
func (l *Loader) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.logger = logger
}

// SetHTTPClient overrides the client used for remote fetches.
func (l *Loader) SetHTTPClient(c *http.Client) {
	if c != nil {
		l.http = c
	}
}

// Remote reports whether documents come from a remote base URL.
func (l *Loader) Remote() bool {
	return l.baseURL != ""
}

// Load fetches the JSON document at path (relative to the data directory) and
// decodes it into dst. Any failure is wrapped with ErrNotLoaded and logged.
func (l *Loader) Load(ctx context.Context, name string, dst any) error {
	raw, err := l.Raw(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		l.logger.Warn("content document could not be decoded", zap.String("path", name), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrNotLoaded, name, err)
	}
	return nil
}

// Raw returns the bytes of a data document, from cache when fresh.
func (l *Loader) Raw(ctx context.Context, name string) ([]byte, error) {
	rel, ok := cleanKey(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotLoaded, name, ErrNotFound)
	}
	key, ok := cleanKey(path.Join(DataDir, rel))
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotLoaded, name, ErrNotFound)
	}
	raw, err := l.read(ctx, key)
	if err != nil {
		l.logger.Warn("content document failed to load", zap.String("path", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrNotLoaded, name, err)
	}
	return raw, nil
}

// Invalidate drops the cached entry for a content-root relative key.
func (l *Loader) Invalidate(key string) {
	key, ok := cleanKey(key)
	if !ok {
		return
	}
	l.mu.Lock()
	delete(l.items, key)
	l.mu.Unlock()
}

// Purge drops every cached entry.
func (l *Loader) Purge() {
	l.mu.Lock()
	l.items = map[string]cacheEntry{}
	l.mu.Unlock()
}

func (l *Loader) read(ctx context.Context, key string) ([]byte, error) {
	if body, ok := l.cached(key); ok {
		return body, nil
	}
	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := l.group.DoChan(key, func() (any, error) {
		if body, ok := l.cached(key); ok {
			return body, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fetchTimeout())
		defer cancel()
		body, err := l.fetch(fctx, key)
		if err != nil {
			return nil, err
		}
		l.store(key, body)
		return body, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) fetchTimeout() time.Duration {
	if l.http != nil && l.http.Timeout > 0 {
		return l.http.Timeout
	}
	return defaultTimeout
}

func (l *Loader) fetch(ctx context.Context, key string) (body []byte, err error) {
	ctx, span := tracer.Start(ctx, "content.load", trace.WithAttributes(
		attribute.String("content.path", key),
		attribute.Bool("content.remote", l.Remote()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	if l.Remote() {
		return l.fetchRemote(ctx, key)
	}
	return l.fetchLocal(key)
}

func (l *Loader) fetchLocal(key string) ([]byte, error) {
	fsys := l.fsys
	if fsys == nil {
		fsys = os.DirFS(l.contentDir)
	}
	body, err := fs.ReadFile(fsys, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

func (l *Loader) fetchRemote(ctx context.Context, key string) ([]byte, error) {
	endpoint, err := url.JoinPath(l.baseURL, strings.Split(key, "/")...)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/markdown;q=0.9, */*;q=0.1")
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("content: remote status %d for %s", resp.StatusCode, key)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}

func (l *Loader) cached(key string) ([]byte, bool) {
	l.mu.RLock()
	entry, ok := l.items[key]
	l.mu.RUnlock()
	if !ok || l.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (l *Loader) store(key string, body []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[key] = cacheEntry{body: body, expires: l.now().Add(l.ttl)}
}

// cleanKey normalises a content-root relative path and rejects traversal.
func cleanKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", false
	}
	clean := path.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || !fs.ValidPath(clean) {
		return "", false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return clean, true
}

func decode[T Validator](ctx context.Context, l *Loader, name string) (T, error) {
	var doc T
	if err := l.Load(ctx, name, &doc); err != nil {
		return doc, err
	}
	if err := doc.Validate(); err != nil {
		l.logger.Warn("content document failed validation", zap.String("path", name), zap.Error(err))
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrNotLoaded, err)
	}
	return doc, nil
}

// SiteConfig loads site-config.json.
func (l *Loader) SiteConfig(ctx context.Context) (SiteConfig, error) {
	return decode[SiteConfig](ctx, l, SiteConfigPath)
}

// Objectives loads objectives.json.
func (l *Loader) Objectives(ctx context.Context) (Objectives, error) {
	return decode[Objectives](ctx, l, ObjectivesPath)
}

// Projects loads projects.json.
func (l *Loader) Projects(ctx context.Context) (Projects, error) {
	return decode[Projects](ctx, l, ProjectsPath)
}

// Collaborators loads collaborators.json.
func (l *Loader) Collaborators(ctx context.Context) (Collaborators, error) {
	return decode[Collaborators](ctx, l, CollaboratorsPath)
}

// Join loads join.json.
func (l *Loader) Join(ctx context.Context) (Join, error) {
	return decode[Join](ctx, l, JoinPath)
}

// HowWeWork loads how-we-work.json.
func (l *Loader) HowWeWork(ctx context.Context) (HowWeWork, error) {
	return decode[HowWeWork](ctx, l, HowWeWorkPath)
}
