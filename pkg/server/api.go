package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/logging"
	"webdesk/pkg/metrics"
	"webdesk/pkg/session"
	"webdesk/pkg/store"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

// maxBodySize bounds request bodies, uploads included.
const maxBodySize = 32 << 20

// Options configures the API handler.
type Options struct {
	StaticDir      string        // front-end bundle served at /, if set
	RequestTimeout time.Duration // per-request deadline, 60s if zero
	Version        string        // reported by /health
}

// API serves the desktops of a hub over HTTP.
type API struct {
	hub     *session.Hub
	version string
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type ctxKey int

const desktopKey ctxKey = 0

// NewHandler returns the router for the desktop API.
func NewHandler(hub *session.Hub, opts Options) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	a := &API{hub: hub, version: opts.Version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", a.handleHealth)
	r.Get("/ready", a.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/users/{user}", func(r chi.Router) {
		r.Use(a.loadDesktop)

		// long-lived, so outside the request timeout
		r.Get("/terminals/{id}/ws", a.handleTerminalSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(opts.RequestTimeout))

			r.Get("/state", a.handleState)
			r.Put("/viewport", a.handleViewport)
			r.Post("/save", a.handleSave)

			r.Route("/windows", func(r chi.Router) {
				r.Get("/", a.handleListWindows)
				r.Post("/", a.handleOpenWindow)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", a.handleGetWindow)
					r.Delete("/", a.handleCloseWindow)
					r.Post("/{action}", a.handleWindowAction)
					r.Put("/size", a.handleResizeWindow)
					r.Put("/position", a.handleMoveWindow)
					r.Get("/props", a.handleWindowProps)
				})
			})

			r.Route("/terminals/{id}", func(r chi.Router) {
				r.Get("/", a.handleTranscript)
				r.Post("/exec", a.handleExec)
				r.Post("/complete", a.handleComplete)
				r.Post("/history/{direction}", a.handleHistory)
			})

			r.Get("/fs", a.handleReadFS)
			r.Put("/fs/file", a.handleSaveFile)
			r.Post("/fs/upload", a.handleUpload)
			r.Post("/files/open", a.handleOpenFile)

			r.Post("/apps", a.handleGenerateApp)
			r.Post("/apps/{id}/install", a.handleInstallApp)
			r.Delete("/apps/{id}", a.handleUninstallApp)
			r.Put("/apps/{id}/desktop", a.handleAddToDesktop)
			r.Delete("/apps/{id}/desktop", a.handleRemoveFromDesktop)
			r.Put("/icons/{id}", a.handleMoveIcon)

			r.Get("/preferences", a.handleGetPreferences)
			r.Put("/preferences", a.handleSetPreferences)
		})
	})

	if opts.StaticDir != "" {
		r.NotFound(NewStaticFileHandler(opts.StaticDir).ServeHTTP)
	}
	return r
}

// loadDesktop resolves the {user} parameter to a loaded desktop.
func (a *API) loadDesktop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := a.hub.Get(r.Context(), chi.URLParam(r, "user"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), desktopKey, d)))
	})
}

func desktopFrom(r *http.Request) *session.Desktop {
	return r.Context().Value(desktopKey).(*session.Desktop)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": a.version})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "desktops": len(a.hub.Users())})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Named("server").Debug("write response", zap.Error(err))
	}
}

// requestError is an error raised by the handlers themselves.
type requestError struct {
	code int
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{code: http.StatusBadRequest, msg: msg}
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.code
	case errors.Is(err, wm.ErrWindowNotFound),
		errors.Is(err, wm.ErrAppNotFound),
		errors.Is(err, vfs.ErrNotFound),
		errors.Is(err, session.ErrNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrExists),
		errors.Is(err, vfs.ErrNotEmpty),
		errors.Is(err, vfs.ErrSameFile),
		errors.Is(err, apps.ErrDuplicateApp),
		errors.Is(err, session.ErrAppNotInstalled),
		errors.Is(err, session.ErrNotOnDesktop):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidUser),
		errors.Is(err, vfs.ErrInvalid),
		errors.Is(err, vfs.ErrInvalidName),
		errors.Is(err, vfs.ErrNameTooLong),
		errors.Is(err, vfs.ErrNotDir),
		errors.Is(err, vfs.ErrIsDir),
		errors.Is(err, apps.ErrInvalidApp),
		errors.Is(err, session.ErrNotTerminal),
		errors.Is(err, session.ErrInvalidPreference):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error(), Code: code})
}
