package session

import (
	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/metrics"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

// OpenApp opens a window for an app, or focuses the one already showing
// the same file. New terminal windows get a shell session and run their
// command, if any.
func (d *Desktop) OpenApp(appID string, opts wm.OpenOptions) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open(appID, opts)
}

func (d *Desktop) open(appID string, opts wm.OpenOptions) (string, error) {
	before := len(d.wm.Windows())
	id, err := d.wm.Open(appID, opts)
	if err != nil {
		return "", err
	}
	if len(d.wm.Windows()) == before {
		metrics.RecordWindowEvent("focus")
		return id, nil
	}

	metrics.RecordWindowEvent("open")
	d.windowsChanged()
	d.log.Debug("window opened", zap.String("app", appID), zap.String("window", id))

	if appID == apps.Terminal {
		d.terminals[id] = newTerminal(d.interp.NewSession(d, d.user))
		if opts.CommandToRun != "" {
			d.submit(id, opts.CommandToRun)
		}
	}
	return id, nil
}

// OpenFile opens the file at path with the app that handles it.
func (d *Desktop) OpenFile(path string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := vfs.ResolvePath(path, vfs.Root)
	content, err := d.fs.ReadFile(p)
	if err != nil {
		return "", err
	}
	appID, opts := apps.FileHandler(p.String(), content)
	return d.open(appID, opts)
}

// Close closes a window. Output of a chain still running in it is dropped.
func (d *Desktop) Close(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.wm.Close(id); err != nil {
		return err
	}
	delete(d.terminals, id)
	metrics.RecordWindowEvent("close")
	d.windowsChanged()
	d.log.Debug("window closed", zap.String("window", id))
	return nil
}

// windowsChanged updates the window gauge. The caller must hold d.mu.
func (d *Desktop) windowsChanged() {
	metrics.SetWindowsOpen(d.user, len(d.wm.Windows()))
}

// pruneTerminals drops terminal sessions whose window is gone. The caller
// must hold d.mu.
func (d *Desktop) pruneTerminals() {
	for id := range d.terminals {
		if _, err := d.wm.Get(id); err != nil {
			delete(d.terminals, id)
		}
	}
}

func (d *Desktop) event(name string, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	metrics.RecordWindowEvent(name)
	return nil
}

// Focus brings a window to the front.
func (d *Desktop) Focus(id string) error {
	return d.event("focus", func() error { return d.wm.Focus(id) })
}

// Minimize hides a window in the taskbar.
func (d *Desktop) Minimize(id string) error {
	return d.event("minimize", func() error { return d.wm.Minimize(id) })
}

// ToggleMaximize maximizes or restores a window.
func (d *Desktop) ToggleMaximize(id string) error {
	return d.event("maximize", func() error { return d.wm.ToggleMaximize(id) })
}

// Resize sets the size of a window.
func (d *Desktop) Resize(id string, size wm.Size) error {
	return d.event("resize", func() error { return d.wm.Resize(id, size) })
}

// Move sets the position of a window.
func (d *Desktop) Move(id string, pos wm.Point) error {
	return d.event("move", func() error { return d.wm.Move(id, pos) })
}

// Snap moves a window to one half of the screen.
func (d *Desktop) Snap(id string, pos wm.SnapPosition) error {
	return d.event("snap", func() error { return d.wm.Snap(id, pos) })
}

// TaskbarClick applies a click on a window's taskbar button.
func (d *Desktop) TaskbarClick(id string) error {
	return d.event("taskbar", func() error { return d.wm.TaskbarClick(id) })
}

// ActiveWindow returns the front-most visible window.
func (d *Desktop) ActiveWindow() (wm.Window, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wm.ActiveWindow()
}

// Window returns a copy of a window.
func (d *Desktop) Window(id string) (wm.Window, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wm.Get(id)
}

// Windows returns copies of the open windows in open order.
func (d *Desktop) Windows() []wm.Window {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wm.Windows()
}

// SetViewport records the screen size. Maximized windows are refitted and
// icons that fall outside the grid are placed again.
func (d *Desktop) SetViewport(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wm.SetViewport(width, height)
	grid := d.grid()
	kept := make(iconlayout.Positions, len(d.icons))
	for id, c := range d.icons {
		if c.Col < grid.Cols() && c.Row < grid.Rows() {
			kept[id] = c
		}
	}
	d.icons = iconlayout.AssignPositions(d.onDesktop, kept, grid)
}

// Props returns the props of a window's app, or nil when it takes none.
func (d *Desktop) Props(id string) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	win, err := d.wm.Get(id)
	if err != nil {
		return nil, err
	}
	return d.dispatch.Props(d.view(), win), nil
}

// view returns a copy of the state apps read. The caller must hold d.mu.
func (d *Desktop) view() *hostView {
	return &hostView{
		user:      d.user,
		fs:        d.fs,
		apps:      d.registry.All(),
		installed: append([]string(nil), d.installed...),
		onDesktop: append([]string(nil), d.onDesktop...),
		prefs:     d.prefs,
		windows:   d.wm.Windows(),
	}
}

// hostView is a frozen apps.Host.
type hostView struct {
	user      string
	fs        *vfs.Tree
	apps      []apps.Definition
	installed []string
	onDesktop []string
	prefs     apps.Preferences
	windows   []wm.Window
}

func (v *hostView) Username() string               { return v.user }
func (v *hostView) FileSystem() *vfs.Tree          { return v.fs }
func (v *hostView) Apps() []apps.Definition        { return v.apps }
func (v *hostView) InstalledApps() []string        { return v.installed }
func (v *hostView) DesktopApps() []string          { return v.onDesktop }
func (v *hostView) Preferences() apps.Preferences  { return v.prefs }
func (v *hostView) Windows() []wm.Window           { return v.windows }
