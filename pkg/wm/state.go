package wm

import "errors"

// WindowState represents the current state of a window.
type WindowState int

const (
	// StateNormal indicates the window is shown with its own geometry.
	StateNormal WindowState = iota
	// StateMinimized indicates the window is hidden in the taskbar.
	StateMinimized
	// StateMaximized indicates the window fills the work area.
	StateMaximized
)

// String returns a string representation of the window state.
func (s WindowState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s WindowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *WindowState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal", "":
		*s = StateNormal
	case "minimized":
		*s = StateMinimized
	case "maximized":
		*s = StateMaximized
	default:
		return ErrInvalidState
	}
	return nil
}

// TaskbarPosition is the screen edge the taskbar is docked to.
type TaskbarPosition string

const (
	TaskbarBottom TaskbarPosition = "bottom"
	TaskbarTop    TaskbarPosition = "top"
)

// Point is a screen position in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window represents an open application window.
type Window struct {
	ID               string      `json:"id"`
	AppID            string      `json:"appId"`
	Title            string      `json:"title"`
	PID              int         `json:"pid"`
	Position         Point       `json:"position"`
	Size             Size        `json:"size"`
	ZIndex           int         `json:"zIndex"`
	State            WindowState `json:"state"`
	RestoreState     WindowState `json:"restoreState"`
	PreviousPosition *Point      `json:"previousPosition,omitempty"`
	PreviousSize     *Size       `json:"previousSize,omitempty"`
	FilePath         string      `json:"filePath,omitempty"`
	InitialContent   string      `json:"initialContent,omitempty"`
	CommandToRun     string      `json:"commandToRun,omitempty"`
}

// Contains checks if a point is within the window frame.
func (w *Window) Contains(p Point) bool {
	return p.X >= w.Position.X && p.X <= w.Position.X+w.Size.Width &&
		p.Y >= w.Position.Y && p.Y <= w.Position.Y+w.Size.Height
}

// clone returns a copy that shares nothing with w.
func (w *Window) clone() Window {
	c := *w
	if w.PreviousPosition != nil {
		p := *w.PreviousPosition
		c.PreviousPosition = &p
	}
	if w.PreviousSize != nil {
		s := *w.PreviousSize
		c.PreviousSize = &s
	}
	return c
}

// App is what the manager needs to know about an application.
type App struct {
	ID          string
	Name        string
	DefaultSize Size
	// MultiInstanceWithCommand makes every open with a command create a new window.
	MultiInstanceWithCommand bool
}

// AppLookup resolves an application id.
type AppLookup func(appID string) (App, bool)

// OpenOptions are the per-window parameters given at open time.
type OpenOptions struct {
	FilePath       string `json:"filePath,omitempty"`
	InitialContent string `json:"initialContent,omitempty"`
	CommandToRun   string `json:"commandToRun,omitempty"`
}

// SnapPosition represents where a window should be snapped.
type SnapPosition int

const (
	// SnapLeft snaps to the left half of the work area.
	SnapLeft SnapPosition = iota
	// SnapRight snaps to the right half of the work area.
	SnapRight
)

// ErrWindowNotFound is returned when a window is not found.
var ErrWindowNotFound = errors.New("wm: window not found")

// ErrAppNotFound is returned when opening an unknown application.
var ErrAppNotFound = errors.New("wm: app not found")

// ErrInvalidState is returned when decoding an unknown window state.
var ErrInvalidState = errors.New("wm: invalid window state")
