package session

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/wm"
)

// Apps returns every registered app definition.
func (d *Desktop) Apps() []apps.Definition {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.registry.All()
}

// InstalledApps returns the ids of the installed apps.
func (d *Desktop) InstalledApps() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.installed...)
}

// DesktopApps returns the ids of the apps with a desktop icon.
func (d *Desktop) DesktopApps() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.onDesktop...)
}

// IconPositions returns the grid cell of every desktop icon.
func (d *Desktop) IconPositions() iconlayout.Positions {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.icons.Clone()
}

// InstallApp installs a registered app. Installing twice is a no-op.
func (d *Desktop) InstallApp(appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.registry.Get(appID); !ok {
		return wm.ErrAppNotFound
	}
	if contains(d.installed, appID) {
		return nil
	}
	d.installed = append(d.installed, appID)
	d.log.Info("app installed", zap.String("app", appID))
	return nil
}

// UninstallApp removes an app, closing its windows and its desktop icon.
func (d *Desktop) UninstallApp(appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !contains(d.installed, appID) {
		return ErrAppNotInstalled
	}
	d.installed = remove(d.installed, appID)
	d.onDesktop = remove(d.onDesktop, appID)
	delete(d.icons, appID)

	if n := d.wm.CloseApp(appID); n > 0 {
		d.pruneTerminals()
		d.windowsChanged()
	}
	d.log.Info("app uninstalled", zap.String("app", appID))
	return nil
}

// AddToDesktop shows an installed app's icon on the desktop.
func (d *Desktop) AddToDesktop(appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !contains(d.installed, appID) {
		return ErrAppNotInstalled
	}
	if contains(d.onDesktop, appID) {
		return nil
	}
	d.onDesktop = append(d.onDesktop, appID)
	d.icons = iconlayout.AssignPositions(d.onDesktop, d.icons, d.grid())
	return nil
}

// RemoveFromDesktop hides an app's desktop icon.
func (d *Desktop) RemoveFromDesktop(appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !contains(d.onDesktop, appID) {
		return ErrNotOnDesktop
	}
	d.onDesktop = remove(d.onDesktop, appID)
	delete(d.icons, appID)
	return nil
}

// MoveIcon drops an icon at pixel position x, y. The icon snaps to the
// nearest grid cell; an icon already there swaps into the vacated cell.
func (d *Desktop) MoveIcon(appID string, x, y int) (iconlayout.Cell, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, ok := d.icons[appID]
	if !ok {
		return iconlayout.Cell{}, ErrNotOnDesktop
	}
	to := iconlayout.Snap(d.grid(), x, y)
	for id, c := range d.icons {
		if id != appID && c == to {
			d.icons[id] = from
			break
		}
	}
	d.icons[appID] = to
	return to, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// AddGeneratedApp registers and installs an app created at runtime.
func (d *Desktop) AddGeneratedApp(name, component string) (apps.Definition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return apps.Definition{}, apps.ErrInvalidApp
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	def := apps.Definition{
		ID:          fmt.Sprintf("generated-%s-%d", strings.ToLower(whitespace.ReplaceAllString(name, "-")), time.Now().UnixMilli()),
		Name:        name,
		Icon:        "icon-placeholder",
		Component:   component,
		DefaultSize: wm.Size{Width: 500, Height: 400},
		Generated:   true,
	}
	if err := d.registry.Register(def); err != nil {
		return apps.Definition{}, err
	}
	d.dispatch = apps.NewDispatch(d.registry)
	d.installed = append(d.installed, def.ID)
	d.log.Info("generated app added", zap.String("app", def.ID))
	return def, nil
}

// Preferences returns the personalisation settings.
func (d *Desktop) Preferences() apps.Preferences {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.prefs
}

// SetWallpaper sets the wallpaper URL or data URI.
func (d *Desktop) SetWallpaper(wallpaper string) error {
	if wallpaper == "" {
		return fmt.Errorf("%w: empty wallpaper", ErrInvalidPreference)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefs.Wallpaper = wallpaper
	return nil
}

// SetAccentColor sets the accent colour.
func (d *Desktop) SetAccentColor(color string) error {
	if !contains(apps.AccentColors, color) {
		return fmt.Errorf("%w: accent color %q", ErrInvalidPreference, color)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefs.AccentColor = color
	return nil
}

// SetTheme sets the light or dark theme.
func (d *Desktop) SetTheme(theme string) error {
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("%w: theme %q", ErrInvalidPreference, theme)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefs.Theme = theme
	return nil
}

// SetTaskbarPosition docks the taskbar to the top or bottom edge.
func (d *Desktop) SetTaskbarPosition(p wm.TaskbarPosition) error {
	if p != wm.TaskbarTop && p != wm.TaskbarBottom {
		return fmt.Errorf("%w: taskbar position %q", ErrInvalidPreference, p)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wm.SetTaskbarPosition(p)
	d.prefs.TaskbarPosition = p
	return nil
}
