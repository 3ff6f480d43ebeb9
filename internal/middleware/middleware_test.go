package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"digitalgeosciences.com/geo-web/internal/observability"
)

const token = "0123456789abcdef0123456789abcdef"

func TestCSRFIssuesCookieOnSafeRequests(t *testing.T) {
	var seen string
	h := CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFToken(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "csrf_token" {
		t.Fatalf("expected csrf_token cookie, got %+v", cookies)
	}
	if len(cookies[0].Value) != 32 || seen != cookies[0].Value {
		t.Fatalf("token mismatch: cookie=%q context=%q", cookies[0].Value, seen)
	}
	if cookies[0].SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", cookies[0].SameSite)
	}

	// an existing token is reused
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 || seen != token {
		t.Fatalf("expected existing token to be kept, got %q", seen)
	}
}

func TestCSRFRejectsMismatchedTokens(t *testing.T) {
	h := HTMX(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	withCookie := func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	}
	cases := map[string]func(r *http.Request){
		"no cookie": func(r *http.Request) { r.Header.Set("X-CSRF-Token", token) },
		"no token":  withCookie,
		"wrong header": func(r *http.Request) {
			withCookie(r)
			r.Header.Set("X-CSRF-Token", strings.Repeat("f", 32))
		},
	}
	for name, prepare := range cases {
		req := httptest.NewRequest(http.MethodPost, "/join", nil)
		req.Header.Set("HX-Request", "true")
		prepare(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", name, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s: expected JSON error for htmx, got %q", name, ct)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/join", strings.NewReader("csrf_token="+token))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("form field token: expected 204, got %d", rec.Code)
	}
}

func TestLoggerLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(HTMX)
	r.Use(Logger(zap.New(core)))
	r.Get("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		observability.FromContext(r.Context()).Info("inside")
		switch chi.URLParam(r, "id") {
		case "missing":
			http.NotFound(w, r)
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	})

	for _, id := range []string{"qemscan", "missing", "broken"} {
		req := httptest.NewRequest(http.MethodGet, "/projects/"+id, nil)
		req.Header.Set("HX-Request", "true")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	done := logs.FilterMessage("request completed").All()
	if len(done) != 3 {
		t.Fatalf("expected 3 request lines, got %d", len(done))
	}
	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, entry := range done {
		if entry.Level != wantLevels[i] {
			t.Errorf("entry %d: expected %v, got %v", i, wantLevels[i], entry.Level)
		}
		fields := entry.ContextMap()
		if fields["route"] != "/projects/{id}" {
			t.Errorf("entry %d: unexpected route %v", i, fields["route"])
		}
		if fields["htmx"] != true {
			t.Errorf("entry %d: expected htmx=true", i)
		}
	}
	if got := done[0].ContextMap()["bytes"]; got != int64(2) {
		t.Errorf("expected 2 bytes, got %v", got)
	}

	inside := logs.FilterMessage("inside").All()
	if len(inside) != 3 || inside[0].ContextMap()["path"] != "/projects/qemscan" {
		t.Fatalf("handler logger should carry request fields, got %+v", inside)
	}
}

func TestNotModified(t *testing.T) {
	etag := ETag([]byte(`{"projects":[]}`))
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", etag)
	}

	rec := httptest.NewRecorder()
	if NotModified(rec, httptest.NewRequest(http.MethodGet, "/data/projects.json", nil), etag) {
		t.Fatal("request without If-None-Match should not be 304")
	}
	if rec.Header().Get("ETag") != etag {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/data/projects.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	if !NotModified(rec, req, etag) || rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}
}

func TestAssetsWithCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := http.StripPrefix("/assets", AssetsWithCache(dir))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != AssetsCacheControl {
		t.Fatalf("unexpected Cache-Control %q", rec.Header().Get("Cache-Control"))
	}
	etag := rec.Header().Get("ETag")
	if etag != ETag([]byte("body{}")) {
		t.Fatalf("unexpected etag %q", etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rec.Code)
	}
}

func TestHTMXIgnoresHistoryRestore(t *testing.T) {
	var got bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IsHTMX(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/fragments/projects", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !got || rec.Header().Get("Vary") != "HX-Request" {
		t.Fatalf("expected htmx request with Vary header, got %v %q", got, rec.Header().Get("Vary"))
	}

	req.Header.Set("HX-History-Restore-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got {
		t.Fatal("history restore requests need the full page")
	}
}
