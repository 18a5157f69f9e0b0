package apps

import "webdesk/pkg/wm"

// App ids of the built-in catalogue.
const (
	About         = "about"
	Terminal      = "terminal"
	AppStore      = "appstore"
	TicTacToe     = "tictactoe"
	Calculator    = "calculator"
	Editor        = "editor"
	Browser       = "browser"
	Settings      = "settings"
	Explorer      = "explorer"
	ImageViewer   = "imageviewer"
	MusicPlayer   = "musicplayer"
	Minesweeper   = "minesweeper"
	SystemMonitor = "systemmonitor"
	SystemInfo    = "systeminfo"
)

func size(w, h int) wm.Size { return wm.Size{Width: w, Height: h} }

// Catalogue returns the built-in app definitions.
func Catalogue() []Definition {
	return []Definition{
		{ID: About, Name: "About WebDesk", Icon: "icon-about", Component: "About", DefaultSize: size(400, 300)},
		{ID: Terminal, Name: "Terminal", Icon: "icon-terminal", Component: "Terminal", DefaultSize: size(600, 400), MultiInstanceWithCommand: true, Handles: []string{"py", "js"}},
		{ID: AppStore, Name: "App Store", Icon: "icon-appstore", Component: "AppStore", DefaultSize: size(700, 500)},
		{ID: TicTacToe, Name: "Tic-Tac-Toe", Icon: "icon-tictactoe", Component: "TicTacToe", DefaultSize: size(350, 450)},
		{ID: Calculator, Name: "Calculator", Icon: "icon-calculator", Component: "Calculator", DefaultSize: size(300, 400)},
		{ID: Editor, Name: "Text Editor", Icon: "icon-editor", Component: "TextEditor", DefaultSize: size(500, 600), Handles: []string{"txt", "md", "sys"}},
		{ID: Browser, Name: "Browser", Icon: "icon-browser", Component: "Browser", DefaultSize: size(800, 600), Handles: []string{"html"}},
		{ID: Settings, Name: "Personalization", Icon: "icon-settings", Component: "Settings", DefaultSize: size(500, 500)},
		{ID: Explorer, Name: "File Explorer", Icon: "icon-explorer", Component: "FileExplorer", DefaultSize: size(700, 500)},
		{ID: ImageViewer, Name: "Image Viewer", Icon: "icon-imageviewer", Component: "ImageViewer", DefaultSize: size(600, 500), Handles: []string{"png", "jpg", "jpeg", "gif"}},
		{ID: MusicPlayer, Name: "Music Player", Icon: "icon-musicplayer", Component: "MusicPlayer", DefaultSize: size(400, 500), Handles: []string{"mp3", "wav", "ogg"}},
		{ID: Minesweeper, Name: "Minesweeper", Icon: "icon-minesweeper", Component: "Minesweeper", DefaultSize: size(400, 480)},
		{ID: SystemMonitor, Name: "System Monitor", Icon: "icon-systemmonitor", Component: "SystemMonitor", DefaultSize: size(600, 450)},
		{ID: SystemInfo, Name: "System Info", Icon: "icon-systeminfo", Component: "SystemInfo", DefaultSize: size(450, 400)},
	}
}

// Default returns a registry holding the built-in catalogue.
func Default() *Registry {
	return NewRegistry(Catalogue()...)
}

// DefaultInstalled returns the ids installed on a new desktop.
func DefaultInstalled() []string {
	return []string{About, Terminal, Settings, AppStore, Explorer, Browser, Editor}
}

// DefaultDesktop returns the ids with an icon on a new desktop.
func DefaultDesktop() []string {
	return []string{Browser, Editor, Terminal, Settings, Explorer}
}

// Wallpapers lists the wallpapers offered by the settings app.
var Wallpapers = []string{
	"https://images.unsplash.com/photo-1488590528505-98d2b5aba04b?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1534972195531-d756b9bfa9f2?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1550745165-9bc0b252726a?q=80&w=2070&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1526374965328-7f61d4dc18c5?q=80&w=2070&auto=format&fit=crop",
}

// AccentColors lists the accent colours offered by the settings app.
var AccentColors = []string{"cyan", "rose", "emerald", "violet", "orange"}
