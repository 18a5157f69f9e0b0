package wm

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Manager manages the open windows of one desktop.
type Manager struct {
	mu      sync.RWMutex
	cfg     Config
	apps    AppLookup
	windows map[string]*Window
	order   []string // open order, oldest first
	nextPID int
}

// Config holds configuration for the window manager.
type Config struct {
	Width             int
	Height            int
	TaskbarHeight     int
	TaskbarPosition   TaskbarPosition
	CascadeOffset     int
	Origin            Point
	RenumberThreshold int
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Width:             1280,
		Height:            800,
		TaskbarHeight:     48,
		TaskbarPosition:   TaskbarBottom,
		CascadeOffset:     25,
		Origin:            Point{X: 50, Y: 50},
		RenumberThreshold: 1000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.TaskbarHeight < 0 {
		c.TaskbarHeight = 0
	}
	if c.TaskbarPosition != TaskbarTop {
		c.TaskbarPosition = TaskbarBottom
	}
	if c.CascadeOffset <= 0 {
		c.CascadeOffset = d.CascadeOffset
	}
	if c.Origin == (Point{}) {
		c.Origin = d.Origin
	}
	if c.RenumberThreshold <= 0 {
		c.RenumberThreshold = d.RenumberThreshold
	}
	return c
}

// fallbackSize is used for apps without a default size and for restoring a
// window that was never maximized.
var fallbackSize = Size{Width: 500, Height: 400}

// NewManager creates a new window manager. apps resolves the application ids
// given to Open.
func NewManager(cfg Config, apps AppLookup) *Manager {
	return &Manager{
		cfg:     cfg.withDefaults(),
		apps:    apps,
		windows: make(map[string]*Window),
		nextPID: 1,
	}
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// workArea returns the screen rectangle not covered by the taskbar.
func (m *Manager) workArea() (Point, Size) {
	top := 0
	if m.cfg.TaskbarPosition == TaskbarTop {
		top = m.cfg.TaskbarHeight
	}
	return Point{X: 0, Y: top}, Size{Width: m.cfg.Width, Height: m.cfg.Height - m.cfg.TaskbarHeight}
}

// Open opens a window for an application and returns its id. An existing
// window of the app is restored and focused instead; a file path narrows
// the match to windows showing that file. Multi-instance apps opened with a
// command always get a new window.
func (m *Manager) Open(appID string, opts OpenOptions) (string, error) {
	app, ok := m.apps(appID)
	if !ok {
		return "", ErrAppNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !(app.MultiInstanceWithCommand && opts.CommandToRun != "") {
		for _, id := range m.order {
			win := m.windows[id]
			if win.AppID == appID && (opts.FilePath == "" || win.FilePath == opts.FilePath) {
				if win.State == StateMinimized {
					win.State = win.RestoreState
				}
				m.focus(win)
				return id, nil
			}
		}
	}

	size := app.DefaultSize
	if size.Width <= 0 || size.Height <= 0 {
		size = fallbackSize
	}

	title := app.Name
	if opts.FilePath != "" {
		title = baseName(opts.FilePath) + " - " + app.Name
	}

	win := &Window{
		ID:             "win-" + uuid.NewString(),
		AppID:          appID,
		Title:          title,
		PID:            m.nextPID,
		Position:       m.cascade(size),
		Size:           size,
		State:          StateNormal,
		RestoreState:   StateNormal,
		FilePath:       opts.FilePath,
		InitialContent: opts.InitialContent,
		CommandToRun:   opts.CommandToRun,
	}
	m.nextPID++
	m.windows[win.ID] = win
	m.order = append(m.order, win.ID)
	m.focus(win)

	return win.ID, nil
}

// cascade places a new window diagonally below the most recently opened
// normal window, or at the origin when that would push its centre out of the
// work area.
func (m *Manager) cascade(size Size) Point {
	var last *Window
	for i := len(m.order) - 1; i >= 0; i-- {
		if w := m.windows[m.order[i]]; w.State == StateNormal {
			last = w
			break
		}
	}
	if last == nil {
		return m.cfg.Origin
	}

	pos := Point{X: last.Position.X + m.cfg.CascadeOffset, Y: last.Position.Y + m.cfg.CascadeOffset}
	origin, area := m.workArea()
	cx, cy := pos.X+size.Width/2, pos.Y+size.Height/2
	if cx < origin.X || cx > origin.X+area.Width || cy < origin.Y || cy > origin.Y+area.Height {
		return m.cfg.Origin
	}
	return pos
}

// baseName returns the last element of a slash separated path.
func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// Close closes and removes a window.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.windows[id]; !exists {
		return ErrWindowNotFound
	}
	m.remove(id)
	return nil
}

func (m *Manager) remove(id string) {
	delete(m.windows, id)
	for i, wid := range m.order {
		if wid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// CloseApp closes every window of an application and returns how many were
// closed.
func (m *Manager) CloseApp(appID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for _, id := range m.order {
		if m.windows[id].AppID == appID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		m.remove(id)
	}
	return len(ids)
}

// Get returns a copy of a window.
func (m *Manager) Get(id string) (Window, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	win, exists := m.windows[id]
	if !exists {
		return Window{}, ErrWindowNotFound
	}
	return win.clone(), nil
}

// ByPID returns a copy of the window with the given process id.
func (m *Manager) ByPID(pid int) (Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, win := range m.windows {
		if win.PID == pid {
			return win.clone(), true
		}
	}
	return Window{}, false
}

// Windows returns copies of all open windows in open order.
func (m *Manager) Windows() []Window {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.windows[id].clone())
	}
	return out
}

// Focus brings a window to the front.
func (m *Manager) Focus(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}
	m.focus(win)
	return nil
}

// focus gives win the highest z-index. When that would pass the renumber
// threshold all windows are compacted to 1..N keeping their order.
func (m *Manager) focus(win *Window) {
	top := 0
	for _, w := range m.windows {
		if w.ZIndex > top {
			top = w.ZIndex
		}
	}
	if top+1 <= m.cfg.RenumberThreshold {
		win.ZIndex = top + 1
		return
	}

	others := make([]*Window, 0, len(m.windows))
	for _, w := range m.windows {
		if w != win {
			others = append(others, w)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].ZIndex < others[j].ZIndex })
	for i, w := range others {
		w.ZIndex = i + 1
	}
	win.ZIndex = len(others) + 1
}

// Minimize hides a window in the taskbar. Its z-index is kept.
func (m *Manager) Minimize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}
	m.minimize(win)
	return nil
}

func (m *Manager) minimize(win *Window) {
	if win.State == StateMinimized {
		return
	}
	win.RestoreState = win.State
	win.State = StateMinimized
}

// Restore shows a minimized window again in the state it had before.
func (m *Manager) Restore(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}
	if win.State == StateMinimized {
		win.State = win.RestoreState
	}
	return nil
}

// ToggleMaximize maximizes a normal window or restores a maximized one to
// its previous geometry. A minimized window toggles the state it would be
// restored to. The window is always focused.
func (m *Manager) ToggleMaximize(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}

	state := win.State
	if state == StateMinimized {
		state = win.RestoreState
	}
	if state == StateMaximized {
		m.unmaximize(win)
	} else {
		m.maximize(win)
	}
	m.focus(win)
	return nil
}

func (m *Manager) maximize(win *Window) {
	pos, size := win.Position, win.Size
	win.PreviousPosition = &pos
	win.PreviousSize = &size

	win.Position, win.Size = m.workArea()
	win.State = StateMaximized
	win.RestoreState = StateMaximized
}

func (m *Manager) unmaximize(win *Window) {
	win.Position = m.cfg.Origin
	if win.PreviousPosition != nil {
		win.Position = *win.PreviousPosition
	}
	win.Size = fallbackSize
	if win.PreviousSize != nil {
		win.Size = *win.PreviousSize
	}
	win.State = StateNormal
	win.RestoreState = StateNormal
}

// Resize sets the size of a window.
func (m *Manager) Resize(id string, size Size) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}
	win.Size = size
	return nil
}

// Move sets the position of a window.
func (m *Manager) Move(id string, pos Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}
	win.Position = pos
	return nil
}

// Snap moves a window to the left or right half of the work area.
func (m *Manager) Snap(id string, position SnapPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}

	origin, area := m.workArea()
	half := area.Width / 2
	switch position {
	case SnapLeft:
		win.Position = origin
		win.Size = Size{Width: half, Height: area.Height}
	case SnapRight:
		win.Position = Point{X: origin.X + half, Y: origin.Y}
		win.Size = Size{Width: area.Width - half, Height: area.Height}
	}
	win.State = StateNormal
	win.RestoreState = StateNormal
	m.focus(win)
	return nil
}

// ActiveWindow returns the front-most window that is not minimized.
func (m *Manager) ActiveWindow() (Window, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if win := m.active(); win != nil {
		return win.clone(), true
	}
	return Window{}, false
}

func (m *Manager) active() *Window {
	var top *Window
	for _, w := range m.windows {
		if w.State == StateMinimized {
			continue
		}
		if top == nil || w.ZIndex > top.ZIndex {
			top = w
		}
	}
	return top
}

// TaskbarClick applies a click on a window's taskbar button: a minimized
// window is restored and focused, the active window is minimized, any other
// window is focused.
func (m *Manager) TaskbarClick(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, exists := m.windows[id]
	if !exists {
		return ErrWindowNotFound
	}

	switch {
	case win.State == StateMinimized:
		win.State = win.RestoreState
		m.focus(win)
	case m.active() == win:
		m.minimize(win)
	default:
		m.focus(win)
	}
	return nil
}

// SetViewport sets the screen dimensions. Maximized windows are refitted.
func (m *Manager) SetViewport(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if width > 0 {
		m.cfg.Width = width
	}
	if height > 0 {
		m.cfg.Height = height
	}
	m.refit()
}

// SetTaskbarPosition docks the taskbar to the top or bottom edge.
func (m *Manager) SetTaskbarPosition(p TaskbarPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p != TaskbarTop {
		p = TaskbarBottom
	}
	m.cfg.TaskbarPosition = p
	m.refit()
}

func (m *Manager) refit() {
	pos, size := m.workArea()
	for _, w := range m.windows {
		if w.State == StateMaximized || (w.State == StateMinimized && w.RestoreState == StateMaximized) {
			w.Position, w.Size = pos, size
		}
	}
}
