// Package session owns the state of each user's desktop.
//
// A Desktop holds the canonical file system snapshot, the window manager,
// the installed apps, the icon grid, the preferences and one terminal
// session per terminal window. Every mutation is a method guarded by the
// desktop mutex; readers get copies. A Hub keeps the loaded desktops keyed
// by username and persists them through a store.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/logging"
	"webdesk/pkg/metrics"
	"webdesk/pkg/shell"
	"webdesk/pkg/store"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

var (
	// ErrNotTerminal is returned for terminal operations on other windows.
	ErrNotTerminal = errors.New("session: window is not a terminal")
	// ErrAppNotInstalled is returned for desktop operations on apps that
	// are not installed.
	ErrAppNotInstalled = errors.New("session: app not installed")
	// ErrNotOnDesktop is returned when moving an icon that is not shown.
	ErrNotOnDesktop = errors.New("session: app not on desktop")
	// ErrInvalidPreference is returned for unsupported preference values.
	ErrInvalidPreference = errors.New("session: invalid preference")
)

// Config configures the desktops of a Hub.
type Config struct {
	Window    wm.Config
	IconSize  int
	Catalogue []apps.Definition // added to the built-in catalogue
}

// State is the view of a desktop rendered by front ends.
type State struct {
	User           string               `json:"user"`
	Windows        []wm.Window          `json:"windows"`
	ActiveWindowID string               `json:"activeWindowId,omitempty"`
	Apps           []apps.Definition    `json:"apps"`
	InstalledApps  []string             `json:"installedApps"`
	DesktopApps    []string             `json:"desktopApps"`
	IconPositions  iconlayout.Positions `json:"iconPositions"`
	Preferences    apps.Preferences     `json:"preferences"`
	Viewport       wm.Size              `json:"viewport"`
}

// Desktop is the state of one user's desktop.
type Desktop struct {
	mu   sync.RWMutex
	user string
	cfg  Config
	log  *zap.Logger

	interp    *shell.Interpreter
	registry  *apps.Registry
	dispatch  apps.Dispatch
	fs        *vfs.Tree
	wm        *wm.Manager
	installed []string
	onDesktop []string
	icons     iconlayout.Positions
	prefs     apps.Preferences
	terminals map[string]*terminal

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the desktop of user from a snapshot.
func New(user string, snap store.Snapshot, interp *shell.Interpreter, cfg Config) *Desktop {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Desktop{
		user:   user,
		cfg:    cfg,
		log:    logging.Named("session").With(zap.String("user", user)),
		interp: interp,
		ctx:    ctx,
		cancel: cancel,
	}
	d.restore(snap)
	return d
}

// User returns the owner of the desktop.
func (d *Desktop) User() string {
	return d.user
}

// Username implements apps.Host.
func (d *Desktop) Username() string {
	return d.user
}

// restore replaces the whole desktop state. Open windows are closed.
// The caller must hold d.mu or own d exclusively.
func (d *Desktop) restore(snap store.Snapshot) {
	d.registry = apps.NewRegistry(append(apps.Catalogue(), d.cfg.Catalogue...)...)
	for _, def := range snap.GeneratedApps {
		def.Generated = true
		if err := d.registry.Register(def); err != nil {
			d.log.Warn("skipping generated app", zap.String("app", def.ID), zap.Error(err))
		}
	}
	d.dispatch = apps.NewDispatch(d.registry)

	wcfg := d.cfg.Window
	wcfg.TaskbarPosition = snap.TaskbarPosition
	d.wm = wm.NewManager(wcfg, func(id string) (wm.App, bool) { return d.registry.Lookup(id) })
	d.terminals = make(map[string]*terminal)

	d.installed = d.known(snap.InstalledApps, nil)
	d.onDesktop = d.known(snap.DesktopApps, d.installed)
	d.icons = iconlayout.AssignPositions(d.onDesktop, snap.IconPositions, d.grid())

	d.fs = snap.FileSystem
	if d.fs == nil {
		d.fs = vfs.DefaultTree()
	}
	d.prefs = apps.Preferences{
		Wallpaper:       snap.Wallpaper,
		AccentColor:     snap.AccentColor,
		Theme:           snap.Theme,
		TaskbarPosition: d.wm.Config().TaskbarPosition,
	}

	metrics.SetTreeSize(d.user, d.fs.Root().Count())
	metrics.SetWindowsOpen(d.user, 0)
}

// known filters ids down to registered apps, dropping duplicates. When
// within is not nil only ids it contains are kept.
func (d *Desktop) known(ids, within []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := d.registry.Get(id); !ok {
			d.log.Warn("dropping unknown app", zap.String("app", id))
			continue
		}
		if within != nil && !contains(within, id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (d *Desktop) grid() iconlayout.Grid {
	cfg := d.cfg.Window
	if d.wm != nil {
		cfg = d.wm.Config()
	}
	return iconlayout.Grid{
		CellSize:      d.cfg.IconSize,
		Width:         cfg.Width,
		Height:        cfg.Height,
		TaskbarHeight: cfg.TaskbarHeight,
	}
}

// Snapshot returns the persistable state of the desktop.
func (d *Desktop) Snapshot() store.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var generated []apps.Definition
	for _, def := range d.registry.All() {
		if def.Generated {
			generated = append(generated, def)
		}
	}
	return store.Snapshot{
		Version:         store.Version,
		InstalledApps:   append([]string(nil), d.installed...),
		DesktopApps:     append([]string(nil), d.onDesktop...),
		GeneratedApps:   generated,
		Wallpaper:       d.prefs.Wallpaper,
		AccentColor:     d.prefs.AccentColor,
		IconPositions:   d.icons.Clone(),
		FileSystem:      d.fs,
		Theme:           d.prefs.Theme,
		TaskbarPosition: d.prefs.TaskbarPosition,
	}
}

// Restore replaces the desktop state with snap and closes every window.
func (d *Desktop) Restore(snap store.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.restore(snap)
	d.log.Info("desktop restored")
}

// State returns the view of the desktop rendered by front ends.
func (d *Desktop) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cfg := d.wm.Config()
	s := State{
		User:          d.user,
		Windows:       d.wm.Windows(),
		Apps:          d.registry.All(),
		InstalledApps: append([]string(nil), d.installed...),
		DesktopApps:   append([]string(nil), d.onDesktop...),
		IconPositions: d.icons.Clone(),
		Preferences:   d.prefs,
		Viewport:      wm.Size{Width: cfg.Width, Height: cfg.Height},
	}
	if win, ok := d.wm.ActiveWindow(); ok {
		s.ActiveWindowID = win.ID
	}
	return s
}

// Shutdown cancels running terminal chains and waits for them to finish.
func (d *Desktop) Shutdown() {
	d.cancel()
	d.wg.Wait()
}

// Wait blocks until every submitted terminal chain has finished.
func (d *Desktop) Wait() {
	d.wg.Wait()
}
