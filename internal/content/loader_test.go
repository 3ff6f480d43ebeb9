package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

const projectsFixture = `{
  "header": {"title": "Projects", "subtitle": "Open tools"},
  "projects": [
    {"id": "qemscan", "title": "QEMSCAN Pipeline", "description": "Automated mineralogy", "icon": "microscope"},
    {"id": "rockvision", "title": "RockVision", "description": "Thin section classifier", "icon": "eye"}
  ]
}`

func newMapLoader(files fstest.MapFS) *Loader {
	l := NewLoader("")
	l.SetFS(files)
	return l
}

func TestLoaderDecodesProjects(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"data/projects.json": {Data: []byte(projectsFixture)},
	})
	doc, err := l.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2)
	require.Equal(t, "QEMSCAN Pipeline", doc.Projects[0].Title)
	require.Equal(t, "/projects/rockvision", doc.Projects[1].Href())
}

func TestLoaderMissingDocumentIsNotLoaded(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{})
	_, err := l.Projects(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotLoaded))
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestLoaderMalformedDocumentIsNotLoaded(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"data/projects.json": {Data: []byte(`{"projects": [`)},
	})
	_, err := l.Projects(context.Background())
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoaderRejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"data/projects.json": {Data: []byte(`{"projects": [
			{"id": "geo hub", "title": "GeoHub"},
			{"id": "x", "title": "A"},
			{"id": "x", "title": "B"}
		]}`)},
	})
	_, err := l.Projects(context.Background())
	require.ErrorIs(t, err, ErrNotLoaded)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields(), 2)
}

func TestLoaderRejectsTraversal(t *testing.T) {
	t.Parallel()

	l := newMapLoader(fstest.MapFS{
		"secret.json": {Data: []byte(`{}`)},
	})
	_, err := l.Raw(context.Background(), "../secret.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderSharesOneFetchAcrossConsumers(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/projects.json" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(projectsFixture))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(srv.URL)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Projects(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, hits.Load())

	// a later consumer is served from cache
	_, err := l.Projects(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, hits.Load())
}

func TestLoaderRefetchesAfterTTL(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(projectsFixture))
	}))
	t.Cleanup(srv.Close)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLoader(srv.URL)
	l.now = func() time.Time { return now }
	l.SetCacheTTL(time.Minute)

	_, err := l.Projects(context.Background())
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = l.Projects(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(projectsFixture))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(srv.URL)
	_, err := l.Projects(context.Background())
	require.ErrorIs(t, err, ErrNotLoaded)

	doc, err := l.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2)
}

func TestLoaderRemoteNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	l := NewLoader(srv.URL)
	_, err := l.Join(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderInvalidateDropsEntry(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"data/projects.json": {Data: []byte(projectsFixture)},
	}
	l := newMapLoader(files)
	_, err := l.Projects(context.Background())
	require.NoError(t, err)

	files["data/projects.json"] = &fstest.MapFile{Data: []byte(`{"projects": []}`)}
	doc, err := l.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2, "served from cache until invalidated")

	l.Invalidate("data/projects.json")
	doc, err = l.Projects(context.Background())
	require.NoError(t, err)
	require.Empty(t, doc.Projects)
}

func TestLoaderReadsRepositoryContent(t *testing.T) {
	t.Parallel()

	l := NewLoader("")
	l.SetContentDir("../../content")
	ctx := context.Background()

	site, err := l.SiteConfig(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, site.Navigation)

	_, err = l.Objectives(ctx)
	require.NoError(t, err)
	_, err = l.Projects(ctx)
	require.NoError(t, err)
	_, err = l.Collaborators(ctx)
	require.NoError(t, err)
	_, err = l.Join(ctx)
	require.NoError(t, err)
	_, err = l.HowWeWork(ctx)
	require.NoError(t, err)
}

func TestLoaderSharedFetchSurvivesCallerCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(projectsFixture))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(srv.URL)
	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Projects(first)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := l.Projects(context.Background())
		second <- err
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-second)
	require.Equal(t, int32(1), calls.Load())
}
