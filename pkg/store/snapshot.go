package store

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/logging"
	"webdesk/pkg/vfs"
	"webdesk/pkg/wm"
)

// Version is the snapshot format written by Encode.
const Version = 1

// Default preference values.
const (
	DefaultAccentColor = "cyan"
	DefaultTheme       = "dark"
)

// Snapshot is the persisted state of one user's desktop.
type Snapshot struct {
	Version         int                  `json:"version"`
	InstalledApps   []string             `json:"installedApps"`
	DesktopApps     []string             `json:"desktopApps"`
	GeneratedApps   []apps.Definition    `json:"generatedApps,omitempty"`
	Wallpaper       string               `json:"wallpaper"`
	AccentColor     string               `json:"accentColor"`
	IconPositions   iconlayout.Positions `json:"iconPositions"`
	FileSystem      *vfs.Tree            `json:"fileSystem"`
	Theme           string               `json:"theme"`
	TaskbarPosition wm.TaskbarPosition   `json:"taskbarPosition"`
}

// DefaultSnapshot returns the state of a new desktop.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Version:         Version,
		InstalledApps:   apps.DefaultInstalled(),
		DesktopApps:     apps.DefaultDesktop(),
		Wallpaper:       apps.Wallpapers[0],
		AccentColor:     DefaultAccentColor,
		IconPositions:   iconlayout.Positions{},
		FileSystem:      vfs.DefaultTree(),
		Theme:           DefaultTheme,
		TaskbarPosition: wm.TaskbarBottom,
	}
}

// Encode serialises s.
func Encode(s Snapshot) ([]byte, error) {
	if s.FileSystem == nil {
		s.FileSystem = vfs.DefaultTree()
	}
	s.Version = Version
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("store: encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Absent or corrupt data, and absent or corrupt
// fields, fall back to the values of DefaultSnapshot one field at a time.
// Problems are logged and never returned.
func Decode(data []byte) Snapshot {
	log := logging.Named("store")
	s := DefaultSnapshot()
	if len(data) == 0 {
		return s
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		log.Warn("corrupt snapshot, using defaults", zap.Error(err))
		return s
	}

	// field decodes the named field into dst. It reports false when the
	// field is absent, null or of the wrong type.
	field := func(name string, dst any) bool {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return false
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			log.Warn("corrupt snapshot field, using default", zap.String("field", name), zap.Error(err))
			return false
		}
		return true
	}

	var list []string
	if field("installedApps", &list) {
		s.InstalledApps = list
	}
	list = nil
	if field("desktopApps", &list) {
		s.DesktopApps = list
	}
	var generated []apps.Definition
	if field("generatedApps", &generated) {
		s.GeneratedApps = generated
	}

	var str string
	if field("wallpaper", &str) && str != "" {
		s.Wallpaper = str
	}
	str = ""
	if field("accentColor", &str) && str != "" {
		s.AccentColor = str
	}
	str = ""
	if field("theme", &str) && (str == "light" || str == "dark") {
		s.Theme = str
	}
	var pos wm.TaskbarPosition
	if field("taskbarPosition", &pos) && pos == wm.TaskbarTop {
		s.TaskbarPosition = wm.TaskbarTop
	}

	var icons iconlayout.Positions
	if field("iconPositions", &icons) && icons != nil {
		s.IconPositions = icons
	}

	var t vfs.Tree
	if field("fileSystem", &t) {
		s.FileSystem = &t
	}
	return s
}
