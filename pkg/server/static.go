package server

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// StaticFileHandler serves the browser front end from a directory. Paths
// that name no file fall back to the index file so client-side routes load
// the app.
type StaticFileHandler struct {
	dir          string
	index        string
	cacheControl string
}

// NewStaticFileHandler creates a handler serving dir.
func NewStaticFileHandler(dir string) *StaticFileHandler {
	return &StaticFileHandler{
		dir:          dir,
		index:        "index.html",
		cacheControl: "public, max-age=3600",
	}
}

// SetCacheControl sets the Cache-Control header value.
func (h *StaticFileHandler) SetCacheControl(value string) {
	h.cacheControl = value
}

// ServeHTTP implements http.Handler.
func (h *StaticFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// path.Clean on a rooted path cannot climb above the root.
	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	fi, err := os.Stat(name)
	if err != nil || fi.IsDir() {
		name = filepath.Join(h.dir, h.index)
	}
	h.serveFile(w, r, name)
}

func (h *StaticFileHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := os.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}

	if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	if etag, err := fileHash(f); err == nil {
		w.Header().Set("ETag", `"`+etag+`"`)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// ServeContent handles ranges, If-None-Match and If-Modified-Since.
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// fileHash returns a short content hash for ETags.
func fileHash(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)[:8]), nil
}
