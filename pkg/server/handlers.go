package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"webdesk/pkg/metrics"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, desktopFrom(r).State())
}

func (a *API) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req wm.Size
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, r, badRequest("viewport must be positive"))
		return
	}
	d := desktopFrom(r)
	d.SetViewport(req.Width, req.Height)
	writeJSON(w, http.StatusOK, d.State())
}

func (a *API) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := a.hub.Save(r.Context(), chi.URLParam(r, "user")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Windows

type openWindowRequest struct {
	AppID string `json:"appId"`
	wm.OpenOptions
}

type windowResponse struct {
	ID     string    `json:"id"`
	Window wm.Window `json:"window"`
}

func (a *API) respondWindow(w http.ResponseWriter, r *http.Request, code int, id string) {
	win, err := desktopFrom(r).Window(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, windowResponse{ID: id, Window: win})
}

func (a *API) handleListWindows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, desktopFrom(r).Windows())
}

func (a *API) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	var req openWindowRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.AppID == "" {
		writeError(w, r, badRequest("appId is required"))
		return
	}
	id, err := desktopFrom(r).OpenApp(req.AppID, req.OpenOptions)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.respondWindow(w, r, http.StatusCreated, id)
}

func (a *API) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	a.respondWindow(w, r, http.StatusOK, chi.URLParam(r, "id"))
}

func (a *API) handleCloseWindow(w http.ResponseWriter, r *http.Request) {
	if err := desktopFrom(r).Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleWindowAction(w http.ResponseWriter, r *http.Request) {
	d := desktopFrom(r)
	id := chi.URLParam(r, "id")

	var err error
	switch action := chi.URLParam(r, "action"); action {
	case "focus":
		err = d.Focus(id)
	case "minimize":
		err = d.Minimize(id)
	case "maximize":
		err = d.ToggleMaximize(id)
	case "taskbar":
		err = d.TaskbarClick(id)
	case "snap-left":
		err = d.Snap(id, wm.SnapLeft)
	case "snap-right":
		err = d.Snap(id, wm.SnapRight)
	default:
		err = badRequest("unknown window action " + action)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.respondWindow(w, r, http.StatusOK, id)
}

func (a *API) handleResizeWindow(w http.ResponseWriter, r *http.Request) {
	var req wm.Size
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := desktopFrom(r).Resize(id, req); err != nil {
		writeError(w, r, err)
		return
	}
	a.respondWindow(w, r, http.StatusOK, id)
}

func (a *API) handleMoveWindow(w http.ResponseWriter, r *http.Request) {
	var req wm.Point
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := desktopFrom(r).Move(id, req); err != nil {
		writeError(w, r, err)
		return
	}
	a.respondWindow(w, r, http.StatusOK, id)
}

func (a *API) handleWindowProps(w http.ResponseWriter, r *http.Request) {
	props, err := desktopFrom(r).Props(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// Terminals

type execRequest struct {
	Line  string `json:"line"`
	Async bool   `json:"async"`
}

type completeRequest struct {
	Input string `json:"input"`
}

type completeResponse struct {
	Line    string   `json:"line"`
	Matches []string `json:"matches,omitempty"`
}

type historyResponse struct {
	Line string `json:"line"`
	OK   bool   `json:"ok"`
}

func (a *API) handleTranscript(w http.ResponseWriter, r *http.Request) {
	tr, err := desktopFrom(r).Transcript(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (a *API) handleExec(w http.ResponseWriter, r *http.Request) {
	var req execRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d := desktopFrom(r)
	id := chi.URLParam(r, "id")

	code := http.StatusOK
	if req.Async {
		if err := d.Submit(id, req.Line); err != nil {
			writeError(w, r, err)
			return
		}
		code = http.StatusAccepted
	} else if err := d.Exec(r.Context(), id, req.Line); err != nil {
		writeError(w, r, err)
		return
	}

	tr, err := d.Transcript(id)
	if err != nil {
		// The chain closed its own window.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, code, tr)
}

func (a *API) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := desktopFrom(r).Complete(chi.URLParam(r, "id"), req.Input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse(c))
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	d := desktopFrom(r)
	id := chi.URLParam(r, "id")

	var (
		line string
		ok   bool
		err  error
	)
	switch dir := chi.URLParam(r, "direction"); dir {
	case "prev":
		line, ok, err = d.HistoryPrev(id)
	case "next":
		line, ok, err = d.HistoryNext(id)
	default:
		err = badRequest("unknown history direction " + dir)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Line: line, OK: ok})
}

// File system

type fsResponse struct {
	Path    string      `json:"path"`
	Type    string      `json:"type"`
	Content *string     `json:"content,omitempty"`
	Entries []vfs.Entry `json:"entries,omitempty"`
}

func (a *API) handleReadFS(w http.ResponseWriter, r *http.Request) {
	p := vfs.ResolvePath(r.URL.Query().Get("path"), vfs.Root)
	fs := desktopFrom(r).FileSystem()

	n, err := fs.Lookup(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := fsResponse{Path: p.String(), Type: n.Kind().String()}
	if n.IsDir() {
		if resp.Entries, err = fs.List(p); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		content := n.Content()
		resp.Content = &content
	}
	writeJSON(w, http.StatusOK, resp)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, badRequest("read body: " + err.Error())
	}
	if len(data) > maxBodySize {
		return nil, &requestError{code: http.StatusRequestEntityTooLarge, msg: "request body too large"}
	}
	return data, nil
}

func (a *API) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, badRequest("path is required"))
		return
	}
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := desktopFrom(r).SaveFile(path, string(data)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadResponse struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, name := q.Get("dir"), q.Get("name")
	if name == "" {
		writeError(w, r, badRequest("name is required"))
		return
	}
	data, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	chosen, err := desktopFrom(r).Upload(dir, name, vfs.EncodeContent(name, data))
	metrics.RecordUpload("api", err == nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p := vfs.ResolvePath(dir, vfs.Root).Join(chosen)
	writeJSON(w, http.StatusCreated, uploadResponse{Path: p.String(), Name: chosen})
}

func (a *API) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, badRequest("path is required"))
		return
	}
	id, err := desktopFrom(r).OpenFile(path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.respondWindow(w, r, http.StatusCreated, id)
}

// Apps, icons and preferences

type generateAppRequest struct {
	Name      string `json:"name"`
	Component string `json:"component"`
}

type iconRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type preferencesRequest struct {
	Wallpaper       *string             `json:"wallpaper"`
	AccentColor     *string             `json:"accentColor"`
	Theme           *string             `json:"theme"`
	TaskbarPosition *wm.TaskbarPosition `json:"taskbarPosition"`
}

func (a *API) handleGenerateApp(w http.ResponseWriter, r *http.Request) {
	var req generateAppRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	def, err := desktopFrom(r).AddGeneratedApp(req.Name, req.Component)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (a *API) appAction(fn func(id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, desktopFrom(r).State())
	}
}

func (a *API) handleInstallApp(w http.ResponseWriter, r *http.Request) {
	a.appAction(desktopFrom(r).InstallApp)(w, r)
}

func (a *API) handleUninstallApp(w http.ResponseWriter, r *http.Request) {
	a.appAction(desktopFrom(r).UninstallApp)(w, r)
}

func (a *API) handleAddToDesktop(w http.ResponseWriter, r *http.Request) {
	a.appAction(desktopFrom(r).AddToDesktop)(w, r)
}

func (a *API) handleRemoveFromDesktop(w http.ResponseWriter, r *http.Request) {
	a.appAction(desktopFrom(r).RemoveFromDesktop)(w, r)
}

func (a *API) handleMoveIcon(w http.ResponseWriter, r *http.Request) {
	var req iconRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cell, err := desktopFrom(r).MoveIcon(chi.URLParam(r, "id"), req.X, req.Y)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

func (a *API) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, desktopFrom(r).Preferences())
}

func (a *API) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d := desktopFrom(r)

	var err error
	if req.Wallpaper != nil {
		err = d.SetWallpaper(*req.Wallpaper)
	}
	if err == nil && req.AccentColor != nil {
		err = d.SetAccentColor(*req.AccentColor)
	}
	if err == nil && req.Theme != nil {
		err = d.SetTheme(*req.Theme)
	}
	if err == nil && req.TaskbarPosition != nil {
		err = d.SetTaskbarPosition(*req.TaskbarPosition)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Preferences())
}
