package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Cache policies for static responses.
const (
	AssetsCacheControl = "public, max-age=604800, stale-while-revalidate=86400"
	DataCacheControl   = "public, max-age=600"
)

// AssetsWithCache wraps a file server and applies Cache-Control, Vary, and ETag handling.
// Requests are expected with the mount prefix already stripped.
func AssetsWithCache(dir string) http.Handler {
	etags := precomputeETags(dir)
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", AssetsCacheControl)
		if et := etags[ensureLeadingSlash(r.URL.Path)]; et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		fs.ServeHTTP(w, r)
	})
}

// precomputeETags hashes every file under dir, keyed by URL path relative to dir.
func precomputeETags(dir string) map[string]string {
	etags := map[string]string{}
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()
		et, err := readerETag(f)
		if err != nil {
			return nil
		}
		if rel, err := filepath.Rel(dir, path); err == nil {
			// always use '/' separators for URLs
			etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	return etags
}

// ETag returns a weak ETag for b.
func ETag(b []byte) string {
	h := sha256.Sum256(b)
	return `W/"` + hex.EncodeToString(h[:]) + `"`
}

// NotModified sets the ETag and reports whether the request already holds it,
// in which case a 304 has been written.
func NotModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func readerETag(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
