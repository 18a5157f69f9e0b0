package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServer_New(t *testing.T) {
	srv := New(Config{Addr: ":9090"}, http.NotFoundHandler())
	if srv.Addr() != ":9090" {
		t.Errorf("expected addr ':9090', got '%s'", srv.Addr())
	}
	if srv.Started() {
		t.Error("new server reports started")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Run = %v", err)
	}
}

func TestServer_Defaults(t *testing.T) {
	srv := New(Config{}, nil)
	if srv.Addr() != ":8080" {
		t.Errorf("expected default addr ':8080', got '%s'", srv.Addr())
	}
	if srv.server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v", srv.server.ReadTimeout)
	}
	if srv.grace != 10*time.Second {
		t.Errorf("shutdown timeout = %v", srv.grace)
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	srv := New(Config{Addr: "127.0.0.1:0"}, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for srv.Addr() == "127.0.0.1:0" {
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if err := srv.Run(ctx); err != ErrAlreadyStarted {
		t.Errorf("second Run() = %v, expected ErrAlreadyStarted", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunTLSMissingKey(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0", TLS: TLSConfig{CertFile: "server.crt"}}, nil)
	if err := srv.Run(context.Background()); err == nil {
		t.Error("expected an error for a certificate without a key")
	}
}

func TestTLSConfig_Enabled(t *testing.T) {
	if (TLSConfig{}).Enabled() {
		t.Error("empty TLSConfig reports enabled")
	}
	if !(TLSConfig{CertFile: "a", KeyFile: "b"}).Enabled() {
		t.Error("TLSConfig with files reports disabled")
	}
	if _, err := (TLSConfig{CertFile: "missing.crt", KeyFile: "missing.key"}).Build(); err == nil {
		t.Error("Build() with missing files succeeded")
	}
}

func TestStaticFileHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>desk</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewStaticFileHandler(dir)

	tests := []struct {
		name        string
		method      string
		path        string
		code        int
		contentType string
		body        string
	}{
		{"file", http.MethodGet, "/app.css", http.StatusOK, "text/css; charset=utf-8", "body{}"},
		{"root", http.MethodGet, "/", http.StatusOK, "text/html; charset=utf-8", "<html>desk</html>"},
		{"client route", http.MethodGet, "/desktop/settings", http.StatusOK, "text/html; charset=utf-8", "<html>desk</html>"},
		{"escape", http.MethodGet, "/../../etc/passwd", http.StatusOK, "text/html; charset=utf-8", "<html>desk</html>"},
		{"method", http.MethodPost, "/app.css", http.StatusMethodNotAllowed, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, w.Code)
			}
			if tt.contentType != "" && w.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("expected content-type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, w.Body.String())
			}
		})
	}
}

func TestStaticFileHandler_ETag(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := NewStaticFileHandler(dir)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag header")
	}
	if w.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("expected status %d, got %d", http.StatusNotModified, w.Code)
	}
}

func TestStaticFileHandler_NoIndex(t *testing.T) {
	h := NewStaticFileHandler(t.TempDir())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
