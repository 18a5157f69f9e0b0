package apps

import (
	"strings"

	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

// Preferences are the user's personalisation settings.
type Preferences struct {
	Wallpaper       string             `json:"wallpaper"`
	AccentColor     string             `json:"accentColor"`
	Theme           string             `json:"theme"`
	TaskbarPosition wm.TaskbarPosition `json:"taskbarPosition"`
}

// Host is the desktop state props are built from.
type Host interface {
	Username() string
	FileSystem() *vfs.Tree
	Apps() []Definition
	InstalledApps() []string
	DesktopApps() []string
	Preferences() Preferences
	Windows() []wm.Window
}

// ExplorerProps are the props of the file explorer.
type ExplorerProps struct {
	FileSystem *vfs.Tree `json:"fileSystem"`
}

// TerminalProps are the props of a terminal window.
type TerminalProps struct {
	CommandToRun string `json:"commandToRun,omitempty"`
}

// EditorProps are the props of the text editor. Content is the current file
// content, or the window's initial content when the file does not exist.
type EditorProps struct {
	FilePath string `json:"filePath,omitempty"`
	Content  string `json:"content"`
	Exists   bool   `json:"exists"`
}

// BrowserProps are the props of the browser.
type BrowserProps struct {
	FilePath string `json:"filePath,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// ImageViewerProps are the props of the image viewer.
type ImageViewerProps struct {
	FilePath       string `json:"filePath,omitempty"`
	InitialContent string `json:"initialContent,omitempty"`
}

// MusicPlayerProps are the props of the music player.
type MusicPlayerProps struct {
	FilePath       string `json:"filePath,omitempty"`
	InitialContent string `json:"initialContent,omitempty"`
}

// SettingsProps are the props of the personalisation app.
type SettingsProps struct {
	Preferences
	Wallpapers   []string `json:"wallpapers"`
	AccentColors []string `json:"accentColors"`
}

// AppStoreProps are the props of the app store.
type AppStoreProps struct {
	AllApps         []Definition `json:"allApps"`
	InstalledAppIDs []string     `json:"installedAppIds"`
	DesktopAppIDs   []string     `json:"desktopAppIds"`
}

// SystemMonitorProps are the props of the system monitor.
type SystemMonitorProps struct {
	Windows []wm.Window  `json:"openWindows"`
	Apps    []Definition `json:"apps"`
}

// SystemInfoProps are the props of the system info app.
type SystemInfoProps struct {
	Username  string `json:"username"`
	Theme     string `json:"theme"`
	Wallpaper string `json:"wallpaper"`
}

// PropsFunc builds the props of one window.
type PropsFunc func(h Host, w wm.Window) any

// Handler binds an app to its component and props builder.
type Handler struct {
	Component string
	Props     PropsFunc
}

// Dispatch maps app ids to their handler.
type Dispatch map[string]Handler

var propsByComponent = map[string]PropsFunc{
	"FileExplorer":  explorerProps,
	"Terminal":      terminalProps,
	"TextEditor":    editorProps,
	"Browser":       browserProps,
	"ImageViewer":   imageViewerProps,
	"MusicPlayer":   musicPlayerProps,
	"Settings":      settingsProps,
	"AppStore":      appStoreProps,
	"SystemMonitor": systemMonitorProps,
	"SystemInfo":    systemInfoProps,
}

// NewDispatch resolves the handler of every app in r.
func NewDispatch(r *Registry) Dispatch {
	d := make(Dispatch)
	for _, def := range r.All() {
		d[def.ID] = Handler{Component: def.Component, Props: propsByComponent[def.Component]}
	}
	return d
}

// Props returns the props of a window, or nil for apps without props.
func (d Dispatch) Props(h Host, w wm.Window) any {
	handler, ok := d[w.AppID]
	if !ok || handler.Props == nil {
		return nil
	}
	return handler.Props(h, w)
}

func explorerProps(h Host, _ wm.Window) any {
	return ExplorerProps{FileSystem: h.FileSystem()}
}

func terminalProps(_ Host, w wm.Window) any {
	return TerminalProps{CommandToRun: w.CommandToRun}
}

func editorProps(h Host, w wm.Window) any {
	props := EditorProps{FilePath: w.FilePath, Content: w.InitialContent}
	if w.FilePath == "" {
		return props
	}
	if content, err := h.FileSystem().ReadFile(vfs.ResolvePath(w.FilePath, vfs.Root)); err == nil {
		props.Content = content
		props.Exists = true
	}
	return props
}

func browserProps(h Host, w wm.Window) any {
	props := BrowserProps{FilePath: w.FilePath}
	if w.FilePath != "" {
		props.HTML, _ = h.FileSystem().ReadFile(vfs.ResolvePath(w.FilePath, vfs.Root))
	}
	return props
}

// fileContent returns the window's initial content, or the content of its
// file when none was given.
func fileContent(h Host, w wm.Window) string {
	if w.InitialContent != "" || w.FilePath == "" {
		return w.InitialContent
	}
	content, _ := h.FileSystem().ReadFile(vfs.ResolvePath(w.FilePath, vfs.Root))
	return content
}

func imageViewerProps(h Host, w wm.Window) any {
	return ImageViewerProps{FilePath: w.FilePath, InitialContent: fileContent(h, w)}
}

func musicPlayerProps(h Host, w wm.Window) any {
	return MusicPlayerProps{FilePath: w.FilePath, InitialContent: fileContent(h, w)}
}

func settingsProps(h Host, _ wm.Window) any {
	return SettingsProps{Preferences: h.Preferences(), Wallpapers: Wallpapers, AccentColors: AccentColors}
}

func appStoreProps(h Host, _ wm.Window) any {
	return AppStoreProps{AllApps: h.Apps(), InstalledAppIDs: h.InstalledApps(), DesktopAppIDs: h.DesktopApps()}
}

func systemMonitorProps(h Host, _ wm.Window) any {
	return SystemMonitorProps{Windows: h.Windows(), Apps: h.Apps()}
}

func systemInfoProps(h Host, _ wm.Window) any {
	p := h.Preferences()
	return SystemInfoProps{Username: h.Username(), Theme: p.Theme, Wallpaper: p.Wallpaper}
}

// FileHandler picks the app that opens a file from the file explorer and the
// options to open it with.
func FileHandler(path, content string) (string, wm.OpenOptions) {
	switch vfs.Ext(path) {
	case "html":
		return Browser, wm.OpenOptions{FilePath: path}
	case "py":
		return Terminal, wm.OpenOptions{CommandToRun: "python " + quote(path)}
	case "js":
		return Terminal, wm.OpenOptions{CommandToRun: "node " + quote(path)}
	}
	switch {
	case strings.HasPrefix(content, "data:image"):
		return ImageViewer, wm.OpenOptions{FilePath: path}
	case strings.HasPrefix(content, "data:audio"):
		return MusicPlayer, wm.OpenOptions{FilePath: path}
	}
	return Editor, wm.OpenOptions{FilePath: path}
}

// quote makes path a single word on a terminal command line. Single quotes
// inside the path are closed, given in double quotes and reopened.
func quote(path string) string {
	if !strings.ContainsAny(path, " \t'\"&><") {
		return path
	}
	return "'" + strings.ReplaceAll(path, "'", `'"'"'`) + "'"
}
