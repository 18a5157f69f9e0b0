package wm

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func testApps(appID string) (App, bool) {
	switch appID {
	case "editor":
		return App{ID: "editor", Name: "Text Editor", DefaultSize: Size{Width: 600, Height: 450}}, true
	case "terminal":
		return App{ID: "terminal", Name: "Terminal", DefaultSize: Size{Width: 640, Height: 400}, MultiInstanceWithCommand: true}, true
	case "calculator":
		return App{ID: "calculator", Name: "Calculator"}, true
	}
	return App{}, false
}

func newTestManager() *Manager {
	return NewManager(DefaultConfig(), testApps)
}

func mustOpen(t *testing.T, m *Manager, appID string, opts OpenOptions) string {
	t.Helper()
	id, err := m.Open(appID, opts)
	if err != nil {
		t.Fatalf("Open(%q): %v", appID, err)
	}
	return id
}

func mustGet(t *testing.T, m *Manager, id string) Window {
	t.Helper()
	win, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get(%q): %v", id, err)
	}
	return win
}

func TestWindowStateString(t *testing.T) {
	tests := []struct {
		state    WindowState
		expected string
	}{
		{StateNormal, "normal"},
		{StateMinimized, "minimized"},
		{StateMaximized, "maximized"},
		{WindowState(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("WindowState(%d).String() = %q, expected %q", tt.state, got, tt.expected)
		}
	}
}

func TestWindowStateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		S WindowState `json:"s"`
	}{StateMaximized})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"s":"maximized"}` {
		t.Errorf("got %s", b)
	}

	var s WindowState
	if err := s.UnmarshalText([]byte("minimized")); err != nil || s != StateMinimized {
		t.Errorf("UnmarshalText(minimized) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("fullscreen")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	win := Window{Position: Point{X: 100, Y: 100}, Size: Size{Width: 200, Height: 150}}

	tests := []struct {
		x, y     int
		expected bool
	}{
		{150, 175, true},  // Center
		{100, 100, true},  // Top-left corner
		{300, 250, true},  // Bottom-right corner
		{99, 100, false},  // Left edge
		{301, 100, false}, // Right edge
		{100, 99, false},  // Top edge
		{100, 251, false}, // Bottom edge
	}

	for _, tt := range tests {
		if got := win.Contains(Point{X: tt.x, Y: tt.y}); got != tt.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager(Config{TaskbarPosition: "left"}, testApps)
	cfg := m.Config()

	if cfg.Width != 1280 || cfg.Height != 800 {
		t.Errorf("expected 1280x800, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TaskbarPosition != TaskbarBottom {
		t.Errorf("expected bottom taskbar, got %q", cfg.TaskbarPosition)
	}
	if cfg.CascadeOffset != 25 || cfg.Origin != (Point{X: 50, Y: 50}) || cfg.RenumberThreshold != 1000 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestOpen(t *testing.T) {
	m := newTestManager()

	id := mustOpen(t, m, "editor", OpenOptions{FilePath: "/Documents/welcome.txt", InitialContent: "hi"})
	win := mustGet(t, m, id)

	if !strings.HasPrefix(id, "win-") {
		t.Errorf("expected id with win- prefix, got %q", id)
	}
	if win.Title != "welcome.txt - Text Editor" {
		t.Errorf("unexpected title %q", win.Title)
	}
	if win.Position != (Point{X: 50, Y: 50}) {
		t.Errorf("expected origin position, got %+v", win.Position)
	}
	if win.Size != (Size{Width: 600, Height: 450}) {
		t.Errorf("expected app default size, got %+v", win.Size)
	}
	if win.State != StateNormal || win.ZIndex != 1 || win.PID != 1 {
		t.Errorf("unexpected window %+v", win)
	}
	if win.InitialContent != "hi" {
		t.Errorf("expected initial content, got %q", win.InitialContent)
	}

	calc := mustGet(t, m, mustOpen(t, m, "calculator", OpenOptions{}))
	if calc.Title != "Calculator" {
		t.Errorf("unexpected title %q", calc.Title)
	}
	if calc.Size != fallbackSize {
		t.Errorf("expected fallback size, got %+v", calc.Size)
	}
	if calc.PID != 2 {
		t.Errorf("expected pid 2, got %d", calc.PID)
	}
}

func TestOpenUnknownApp(t *testing.T) {
	m := newTestManager()
	if _, err := m.Open("doom", OpenOptions{}); !errors.Is(err, ErrAppNotFound) {
		t.Errorf("expected ErrAppNotFound, got %v", err)
	}
	if len(m.Windows()) != 0 {
		t.Error("expected no windows")
	}
}

func TestOpenSingleton(t *testing.T) {
	m := newTestManager()

	first := mustOpen(t, m, "calculator", OpenOptions{})
	mustOpen(t, m, "editor", OpenOptions{})
	if err := m.Minimize(first); err != nil {
		t.Fatal(err)
	}

	again := mustOpen(t, m, "calculator", OpenOptions{})
	if again != first {
		t.Errorf("expected existing window %q, got %q", first, again)
	}
	win := mustGet(t, m, first)
	if win.State != StateNormal {
		t.Errorf("expected restored window, got %v", win.State)
	}
	if active, _ := m.ActiveWindow(); active.ID != first {
		t.Errorf("expected reopened window to be active, got %q", active.ID)
	}
	if n := len(m.Windows()); n != 2 {
		t.Errorf("expected 2 windows, got %d", n)
	}
}

func TestOpenDistinctFiles(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, "editor", OpenOptions{FilePath: "/a.txt"})
	b := mustOpen(t, m, "editor", OpenOptions{FilePath: "/b.txt"})
	if a == b {
		t.Fatal("expected two editor windows")
	}
	if err := m.Resize(a, Size{Width: 10, Height: 10}); err != nil {
		t.Fatal(err)
	}
	if win := mustGet(t, m, b); win.Size.Width == 10 {
		t.Error("editor windows share geometry")
	}
	if again := mustOpen(t, m, "editor", OpenOptions{FilePath: "/a.txt"}); again != a {
		t.Errorf("expected %q, got %q", a, again)
	}
}

func TestOpenWithoutFileFocusesAnyWindowOfApp(t *testing.T) {
	m := newTestManager()

	withFile := mustOpen(t, m, "editor", OpenOptions{FilePath: "/a.txt"})
	mustOpen(t, m, "calculator", OpenOptions{})
	if err := m.Minimize(withFile); err != nil {
		t.Fatal(err)
	}

	again := mustOpen(t, m, "editor", OpenOptions{})
	if again != withFile {
		t.Errorf("expected existing editor %q, got %q", withFile, again)
	}
	if n := len(m.Windows()); n != 2 {
		t.Errorf("expected 2 windows, got %d", n)
	}
	win := mustGet(t, m, withFile)
	if win.State != StateNormal || win.FilePath != "/a.txt" {
		t.Errorf("unexpected window %+v", win)
	}
	if active, _ := m.ActiveWindow(); active.ID != withFile {
		t.Errorf("expected %q to be active, got %q", withFile, active.ID)
	}
}

func TestOpenTerminalWithCommand(t *testing.T) {
	m := newTestManager()

	plain := mustOpen(t, m, "terminal", OpenOptions{})
	if again := mustOpen(t, m, "terminal", OpenOptions{}); again != plain {
		t.Errorf("plain terminal should be a singleton")
	}

	c1 := mustOpen(t, m, "terminal", OpenOptions{CommandToRun: "python /hello.py"})
	c2 := mustOpen(t, m, "terminal", OpenOptions{CommandToRun: "python /hello.py"})
	if c1 == c2 || c1 == plain {
		t.Errorf("terminals with a command should always be new windows")
	}
	if win := mustGet(t, m, c2); win.CommandToRun != "python /hello.py" {
		t.Errorf("unexpected command %q", win.CommandToRun)
	}
	if n := len(m.Windows()); n != 3 {
		t.Errorf("expected 3 windows, got %d", n)
	}
}

func TestCascade(t *testing.T) {
	m := newTestManager()

	a := mustGet(t, m, mustOpen(t, m, "editor", OpenOptions{FilePath: "/a"}))
	b := mustGet(t, m, mustOpen(t, m, "editor", OpenOptions{FilePath: "/b"}))
	c := mustGet(t, m, mustOpen(t, m, "calculator", OpenOptions{}))

	if a.Position != (Point{X: 50, Y: 50}) {
		t.Errorf("first window at %+v", a.Position)
	}
	if b.Position != (Point{X: 75, Y: 75}) {
		t.Errorf("second window at %+v", b.Position)
	}
	if c.Position != (Point{X: 100, Y: 100}) {
		t.Errorf("third window at %+v", c.Position)
	}
}

func TestCascadeSkipsNonNormal(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, "editor", OpenOptions{FilePath: "/a"})
	b := mustOpen(t, m, "editor", OpenOptions{FilePath: "/b"})
	if err := m.Minimize(b); err != nil {
		t.Fatal(err)
	}

	c := mustGet(t, m, mustOpen(t, m, "calculator", OpenOptions{}))
	if want := mustGet(t, m, a).Position; c.Position != (Point{X: want.X + 25, Y: want.Y + 25}) {
		t.Errorf("expected cascade from %q, got %+v", a, c.Position)
	}
}

func TestCascadeFallsBackToOrigin(t *testing.T) {
	m := NewManager(Config{Width: 400, Height: 400, TaskbarHeight: 48}, testApps)

	a := mustOpen(t, m, "calculator", OpenOptions{})
	if err := m.Move(a, Point{X: 200, Y: 200}); err != nil {
		t.Fatal(err)
	}

	b := mustGet(t, m, mustOpen(t, m, "editor", OpenOptions{}))
	if b.Position != (Point{X: 50, Y: 50}) {
		t.Errorf("expected origin, got %+v", b.Position)
	}
}

func TestFocus(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, "editor", OpenOptions{})
	b := mustOpen(t, m, "calculator", OpenOptions{})

	if err := m.Focus(a); err != nil {
		t.Fatal(err)
	}
	if z := mustGet(t, m, a).ZIndex; z != 3 {
		t.Errorf("expected z 3, got %d", z)
	}
	if z := mustGet(t, m, b).ZIndex; z != 2 {
		t.Errorf("expected z 2, got %d", z)
	}
	if err := m.Focus("win-missing"); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("expected ErrWindowNotFound, got %v", err)
	}
}

func TestFocusBoundedZIndex(t *testing.T) {
	m := newTestManager()

	ids := []string{
		mustOpen(t, m, "editor", OpenOptions{FilePath: "/a"}),
		mustOpen(t, m, "editor", OpenOptions{FilePath: "/b"}),
		mustOpen(t, m, "calculator", OpenOptions{}),
		mustOpen(t, m, "terminal", OpenOptions{}),
	}
	// stack holds the ids back to front.
	stack := append([]string(nil), ids...)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 3000; i++ {
		id := ids[rng.Intn(len(ids))]
		if err := m.Focus(id); err != nil {
			t.Fatal(err)
		}
		for j, s := range stack {
			if s == id {
				stack = append(stack[:j], stack[j+1:]...)
				break
			}
		}
		stack = append(stack, id)

		prev := 0
		for _, s := range stack {
			z := mustGet(t, m, s).ZIndex
			if z > 1000 {
				t.Fatalf("step %d: z-index %d above threshold", i, z)
			}
			if z <= prev {
				t.Fatalf("step %d: order not preserved", i)
			}
			prev = z
		}
	}
}

func TestFocusRenumbers(t *testing.T) {
	m := NewManager(Config{RenumberThreshold: 5}, testApps)

	a := mustOpen(t, m, "editor", OpenOptions{})
	b := mustOpen(t, m, "calculator", OpenOptions{})
	for i := 0; i < 3; i++ {
		if err := m.Focus(a); err != nil {
			t.Fatal(err)
		}
	}
	if z := mustGet(t, m, a).ZIndex; z != 5 {
		t.Fatalf("expected z 5 before renumbering, got %d", z)
	}

	if err := m.Focus(b); err != nil {
		t.Fatal(err)
	}
	if za, zb := mustGet(t, m, a).ZIndex, mustGet(t, m, b).ZIndex; za != 1 || zb != 2 {
		t.Errorf("expected compacted 1, 2; got %d, %d", za, zb)
	}
}

func TestMaximizeRestore(t *testing.T) {
	m := newTestManager()

	id := mustOpen(t, m, "editor", OpenOptions{})
	if err := m.Move(id, Point{X: 120, Y: 80}); err != nil {
		t.Fatal(err)
	}
	if err := m.Resize(id, Size{Width: 333, Height: 222}); err != nil {
		t.Fatal(err)
	}

	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}
	win := mustGet(t, m, id)
	if win.State != StateMaximized {
		t.Fatalf("expected maximized, got %v", win.State)
	}
	if win.Position != (Point{}) || win.Size != (Size{Width: 1280, Height: 752}) {
		t.Errorf("unexpected maximized geometry %+v %+v", win.Position, win.Size)
	}
	if win.PreviousPosition == nil || *win.PreviousPosition != (Point{X: 120, Y: 80}) {
		t.Errorf("previous position not recorded: %v", win.PreviousPosition)
	}

	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}
	win = mustGet(t, m, id)
	if win.State != StateNormal {
		t.Fatalf("expected normal, got %v", win.State)
	}
	if win.Position != (Point{X: 120, Y: 80}) || win.Size != (Size{Width: 333, Height: 222}) {
		t.Errorf("geometry not restored: %+v %+v", win.Position, win.Size)
	}
	if win.PreviousSize == nil {
		t.Error("previous size should be kept after restore")
	}
}

func TestMaximizeTopTaskbar(t *testing.T) {
	m := NewManager(Config{Width: 1000, Height: 700, TaskbarHeight: 40, TaskbarPosition: TaskbarTop}, testApps)

	id := mustOpen(t, m, "calculator", OpenOptions{})
	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}
	win := mustGet(t, m, id)
	if win.Position != (Point{X: 0, Y: 40}) || win.Size != (Size{Width: 1000, Height: 660}) {
		t.Errorf("unexpected geometry %+v %+v", win.Position, win.Size)
	}

	m.SetTaskbarPosition(TaskbarBottom)
	if win := mustGet(t, m, id); win.Position != (Point{}) {
		t.Errorf("maximized window not refitted: %+v", win.Position)
	}

	m.SetViewport(800, 600)
	if win := mustGet(t, m, id); win.Size != (Size{Width: 800, Height: 560}) {
		t.Errorf("maximized window not refitted: %+v", win.Size)
	}
}

func TestMinimizeKeepsMaximized(t *testing.T) {
	m := newTestManager()

	id := mustOpen(t, m, "calculator", OpenOptions{})
	before := mustGet(t, m, id)
	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}
	z := mustGet(t, m, id).ZIndex
	if err := m.Minimize(id); err != nil {
		t.Fatal(err)
	}

	win := mustGet(t, m, id)
	if win.State != StateMinimized || win.RestoreState != StateMaximized {
		t.Fatalf("unexpected state %v/%v", win.State, win.RestoreState)
	}
	if win.ZIndex != z {
		t.Errorf("minimize changed z-index from %d to %d", z, win.ZIndex)
	}

	if err := m.Restore(id); err != nil {
		t.Fatal(err)
	}
	if win := mustGet(t, m, id); win.State != StateMaximized {
		t.Errorf("expected maximized after restore, got %v", win.State)
	}

	if err := m.Minimize(id); err != nil {
		t.Fatal(err)
	}
	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}
	win = mustGet(t, m, id)
	if win.State != StateNormal || win.Position != before.Position || win.Size != before.Size {
		t.Errorf("expected restored normal window, got %+v", win)
	}
}

func TestTaskbarClick(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, "editor", OpenOptions{})
	b := mustOpen(t, m, "calculator", OpenOptions{})

	// b is active: clicking it minimizes.
	if err := m.TaskbarClick(b); err != nil {
		t.Fatal(err)
	}
	if win := mustGet(t, m, b); win.State != StateMinimized {
		t.Fatalf("expected minimized, got %v", win.State)
	}
	if active, ok := m.ActiveWindow(); !ok || active.ID != a {
		t.Errorf("expected %q active", a)
	}

	// minimized: clicking restores and focuses.
	if err := m.TaskbarClick(b); err != nil {
		t.Fatal(err)
	}
	if active, _ := m.ActiveWindow(); active.ID != b {
		t.Errorf("expected %q active", b)
	}

	// inactive: clicking focuses.
	if err := m.TaskbarClick(a); err != nil {
		t.Fatal(err)
	}
	if active, _ := m.ActiveWindow(); active.ID != a {
		t.Errorf("expected %q active", a)
	}
	if win := mustGet(t, m, a); win.State != StateNormal {
		t.Errorf("expected normal, got %v", win.State)
	}

	if err := m.TaskbarClick("nope"); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("expected ErrWindowNotFound, got %v", err)
	}
}

func TestActiveWindowNone(t *testing.T) {
	m := newTestManager()
	if _, ok := m.ActiveWindow(); ok {
		t.Error("expected no active window")
	}
	id := mustOpen(t, m, "calculator", OpenOptions{})
	if err := m.Minimize(id); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.ActiveWindow(); ok {
		t.Error("minimized windows are never active")
	}
}

func TestClose(t *testing.T) {
	m := newTestManager()

	a := mustOpen(t, m, "editor", OpenOptions{})
	b := mustOpen(t, m, "calculator", OpenOptions{})
	c := mustOpen(t, m, "terminal", OpenOptions{})

	if err := m.Close(b); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(b); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("expected ErrWindowNotFound, got %v", err)
	}
	if za, zc := mustGet(t, m, a).ZIndex, mustGet(t, m, c).ZIndex; za != 1 || zc != 3 {
		t.Errorf("close changed z-indices: %d, %d", za, zc)
	}
	if err := m.Close(b); !errors.Is(err, ErrWindowNotFound) {
		t.Errorf("expected ErrWindowNotFound, got %v", err)
	}

	wins := m.Windows()
	if len(wins) != 2 || wins[0].ID != a || wins[1].ID != c {
		t.Errorf("unexpected windows %v", wins)
	}
}

func TestCloseApp(t *testing.T) {
	m := newTestManager()

	mustOpen(t, m, "editor", OpenOptions{FilePath: "/a"})
	mustOpen(t, m, "editor", OpenOptions{FilePath: "/b"})
	calc := mustOpen(t, m, "calculator", OpenOptions{})

	if n := m.CloseApp("editor"); n != 2 {
		t.Errorf("expected 2 closed, got %d", n)
	}
	if wins := m.Windows(); len(wins) != 1 || wins[0].ID != calc {
		t.Errorf("unexpected windows %v", wins)
	}
	if n := m.CloseApp("editor"); n != 0 {
		t.Errorf("expected 0 closed, got %d", n)
	}
}

func TestByPID(t *testing.T) {
	m := newTestManager()
	id := mustOpen(t, m, "calculator", OpenOptions{})

	win, ok := m.ByPID(1)
	if !ok || win.ID != id {
		t.Errorf("ByPID(1) = %q, %v", win.ID, ok)
	}
	if _, ok := m.ByPID(42); ok {
		t.Error("expected no window for pid 42")
	}
}

func TestSnap(t *testing.T) {
	m := NewManager(Config{Width: 1001, Height: 800, TaskbarHeight: 48}, testApps)

	id := mustOpen(t, m, "editor", OpenOptions{})
	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}

	if err := m.Snap(id, SnapLeft); err != nil {
		t.Fatal(err)
	}
	win := mustGet(t, m, id)
	if win.State != StateNormal || win.Position != (Point{}) || win.Size != (Size{Width: 500, Height: 752}) {
		t.Errorf("unexpected left snap %+v", win)
	}

	if err := m.Snap(id, SnapRight); err != nil {
		t.Fatal(err)
	}
	win = mustGet(t, m, id)
	if win.Position != (Point{X: 500, Y: 0}) || win.Size != (Size{Width: 501, Height: 752}) {
		t.Errorf("unexpected right snap %+v %+v", win.Position, win.Size)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := newTestManager()
	id := mustOpen(t, m, "calculator", OpenOptions{})
	if err := m.ToggleMaximize(id); err != nil {
		t.Fatal(err)
	}

	win := mustGet(t, m, id)
	win.PreviousPosition.X = 999
	win.Title = "changed"

	again := mustGet(t, m, id)
	if again.PreviousPosition.X == 999 || again.Title == "changed" {
		t.Error("Get leaked internal state")
	}
}
