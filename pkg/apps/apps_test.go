package apps

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"webdesk/pkg/parser"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

type fakeHost struct {
	fs      *vfs.Tree
	prefs   Preferences
	windows []wm.Window
}

func (h *fakeHost) Username() string         { return "guest" }
func (h *fakeHost) FileSystem() *vfs.Tree    { return h.fs }
func (h *fakeHost) Apps() []Definition       { return Catalogue() }
func (h *fakeHost) InstalledApps() []string  { return DefaultInstalled() }
func (h *fakeHost) DesktopApps() []string    { return DefaultDesktop() }
func (h *fakeHost) Preferences() Preferences { return h.prefs }
func (h *fakeHost) Windows() []wm.Window     { return h.windows }

func TestDefaultCatalogue(t *testing.T) {
	r := Default()

	ids := []string{About, Terminal, AppStore, TicTacToe, Calculator, Editor, Browser,
		Settings, Explorer, ImageViewer, MusicPlayer, Minesweeper, SystemMonitor, SystemInfo}
	all := r.All()
	if len(all) != len(ids) {
		t.Fatalf("expected %d apps, got %d", len(ids), len(all))
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("app %d: expected %q, got %q", i, id, all[i].ID)
		}
	}

	for _, id := range append(DefaultInstalled(), DefaultDesktop()...) {
		if _, ok := r.Get(id); !ok {
			t.Errorf("default id %q not in catalogue", id)
		}
	}

	term, _ := r.Lookup(Terminal)
	if !term.MultiInstanceWithCommand {
		t.Error("terminal should be multi-instance with a command")
	}
	for _, d := range all {
		if d.ID != Terminal && d.MultiInstanceWithCommand {
			t.Errorf("%s should not be multi-instance", d.ID)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Definition{}); !errors.Is(err, ErrInvalidApp) {
		t.Errorf("expected ErrInvalidApp, got %v", err)
	}
	if err := r.Register(Definition{ID: "weather"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(Definition{ID: "weather"}); !errors.Is(err, ErrDuplicateApp) {
		t.Errorf("expected ErrDuplicateApp, got %v", err)
	}

	d, ok := r.Get("weather")
	if !ok || d.Name != "weather" {
		t.Errorf("Get = %+v, %v", d, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected lookup miss")
	}

	if !r.Remove("weather") {
		t.Error("expected Remove to report true")
	}
	if r.Remove("weather") {
		t.Error("expected Remove to report false")
	}
	if len(r.All()) != 0 {
		t.Error("expected empty registry")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := Default()
	all := r.All()
	all[0].Name = "changed"
	if d, _ := r.Get(all[0].ID); d.Name == "changed" {
		t.Error("All leaked internal state")
	}
}

func TestLoadCatalogue(t *testing.T) {
	src := `
- id: weather
  name: Weather
  component: Weather
  defaultSize: {width: 320, height: 240}
- id: notes
  name: Notes
  handles: [txt]
`
	defs, err := LoadCatalogue(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCatalogue: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].DefaultSize != (wm.Size{Width: 320, Height: 240}) {
		t.Errorf("unexpected size %+v", defs[0].DefaultSize)
	}
	if !reflect.DeepEqual(defs[1].Handles, []string{"txt"}) {
		t.Errorf("unexpected handles %v", defs[1].Handles)
	}

	if defs, err := LoadCatalogue(strings.NewReader("")); err != nil || defs != nil {
		t.Errorf("empty catalogue = %v, %v", defs, err)
	}
	if _, err := LoadCatalogue(strings.NewReader("- name: nameless\n")); !errors.Is(err, ErrInvalidApp) {
		t.Errorf("expected ErrInvalidApp, got %v", err)
	}
	if _, err := LoadCatalogue(strings.NewReader("id: [")); err == nil {
		t.Error("expected decode error")
	}
}

func TestFileHandler(t *testing.T) {
	tests := []struct {
		path, content string
		app           string
		opts          wm.OpenOptions
	}{
		{"/site/index.html", "<h1>x</h1>", Browser, wm.OpenOptions{FilePath: "/site/index.html"}},
		{"/Documents/hello.py", "print('x')", Terminal, wm.OpenOptions{CommandToRun: "python /Documents/hello.py"}},
		{"/Documents/script.js", "", Terminal, wm.OpenOptions{CommandToRun: "node /Documents/script.js"}},
		{"/My Files/run.py", "", Terminal, wm.OpenOptions{CommandToRun: "python '/My Files/run.py'"}},
		{"/Pictures/cat.png", "data:image/png;base64,AAAA", ImageViewer, wm.OpenOptions{FilePath: "/Pictures/cat.png"}},
		{"/Music/song.mp3", "data:audio/mpeg;base64,AAAA", MusicPlayer, wm.OpenOptions{FilePath: "/Music/song.mp3"}},
		{"/Pictures/background.jpg", "https://example.com/bg.jpg", Editor, wm.OpenOptions{FilePath: "/Pictures/background.jpg"}},
		{"/readme.md", "# hi", Editor, wm.OpenOptions{FilePath: "/readme.md"}},
		{"/INDEX.HTML", "", Browser, wm.OpenOptions{FilePath: "/INDEX.HTML"}},
	}

	for _, tt := range tests {
		app, opts := FileHandler(tt.path, tt.content)
		if app != tt.app || opts != tt.opts {
			t.Errorf("FileHandler(%q) = %s %+v, expected %s %+v", tt.path, app, opts, tt.app, tt.opts)
		}
	}
}

func TestFileHandlerQuotesAwkwardPaths(t *testing.T) {
	paths := []string{
		"/plain/run.py",
		"/My Files/run.py",
		"/it's/run.py",
		`/say "hi"/run.py`,
		`/it's "both"/run.py`,
		"/a&&b/run.py",
		"/out>x/run.py",
	}
	for _, path := range paths {
		_, opts := FileHandler(path, "")
		list, err := parser.ParseString(opts.CommandToRun)
		if err != nil {
			t.Errorf("%q: command %q does not parse: %v", path, opts.CommandToRun, err)
			continue
		}
		if len(list.Commands) != 1 {
			t.Errorf("%q: expected one command, got %d", path, len(list.Commands))
			continue
		}
		cmd := list.Commands[0]
		if args := cmd.Args(); len(args) != 1 || args[0] != path || cmd.Output() != nil {
			t.Errorf("%q: command %q gives args %q", path, opts.CommandToRun, args)
		}
	}
}

func TestDispatchProps(t *testing.T) {
	fs, err := vfs.DefaultTree().WriteFile(vfs.ResolvePath("/page.html", vfs.Root), "<p>hi</p>")
	if err != nil {
		t.Fatal(err)
	}
	host := &fakeHost{
		fs:      fs,
		prefs:   Preferences{Wallpaper: "w.jpg", AccentColor: "rose", Theme: "dark"},
		windows: []wm.Window{{ID: "win-1", AppID: Calculator}},
	}
	d := NewDispatch(Default())

	if p := d.Props(host, wm.Window{AppID: Calculator}); p != nil {
		t.Errorf("calculator props = %v, expected nil", p)
	}
	if p := d.Props(host, wm.Window{AppID: "unknown"}); p != nil {
		t.Errorf("unknown app props = %v, expected nil", p)
	}

	if p, ok := d.Props(host, wm.Window{AppID: Explorer}).(ExplorerProps); !ok || p.FileSystem != fs {
		t.Errorf("unexpected explorer props %#v", p)
	}
	if p := d.Props(host, wm.Window{AppID: Terminal, CommandToRun: "ls"}); p != (TerminalProps{CommandToRun: "ls"}) {
		t.Errorf("unexpected terminal props %#v", p)
	}

	editor := d.Props(host, wm.Window{AppID: Editor, FilePath: "/System/config.sys"}).(EditorProps)
	if editor.Content != "SYSTEM_BOOT=TRUE" || !editor.Exists {
		t.Errorf("unexpected editor props %#v", editor)
	}
	editor = d.Props(host, wm.Window{AppID: Editor, FilePath: "/new.txt", InitialContent: "draft"}).(EditorProps)
	if editor.Content != "draft" || editor.Exists {
		t.Errorf("unexpected editor props %#v", editor)
	}

	if p := d.Props(host, wm.Window{AppID: Browser, FilePath: "/page.html"}).(BrowserProps); p.HTML != "<p>hi</p>" {
		t.Errorf("unexpected browser props %#v", p)
	}

	settings := d.Props(host, wm.Window{AppID: Settings}).(SettingsProps)
	if settings.AccentColor != "rose" || len(settings.Wallpapers) != len(Wallpapers) {
		t.Errorf("unexpected settings props %#v", settings)
	}

	store := d.Props(host, wm.Window{AppID: AppStore}).(AppStoreProps)
	if len(store.AllApps) != len(Catalogue()) || !reflect.DeepEqual(store.InstalledAppIDs, DefaultInstalled()) {
		t.Errorf("unexpected app store props %#v", store)
	}

	monitor := d.Props(host, wm.Window{AppID: SystemMonitor}).(SystemMonitorProps)
	if len(monitor.Windows) != 1 {
		t.Errorf("unexpected monitor props %#v", monitor)
	}

	info := d.Props(host, wm.Window{AppID: SystemInfo}).(SystemInfoProps)
	if info != (SystemInfoProps{Username: "guest", Theme: "dark", Wallpaper: "w.jpg"}) {
		t.Errorf("unexpected info props %#v", info)
	}
}

func TestImageViewerReadsFile(t *testing.T) {
	fs, _, err := vfs.DefaultTree().Upload(vfs.ResolvePath("/Pictures", vfs.Root), "cat.png", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatal(err)
	}
	d := NewDispatch(Default())

	p := d.Props(&fakeHost{fs: fs}, wm.Window{AppID: ImageViewer, FilePath: "/Pictures/cat.png"}).(ImageViewerProps)
	if p.InitialContent != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected image props %#v", p)
	}
}

func TestDispatchGeneratedApp(t *testing.T) {
	r := Default()
	if err := r.Register(Definition{ID: "gen", Component: "Generated", Generated: true}); err != nil {
		t.Fatal(err)
	}
	d := NewDispatch(r)

	h, ok := d["gen"]
	if !ok || h.Component != "Generated" || h.Props != nil {
		t.Errorf("unexpected handler %+v", h)
	}
}
