/*
Package wm provides window management for the WebDesk desktop.

This package implements the backend window management capabilities, including:
  - Window lifecycle (open, close) with one window per app and file
  - Window state tracking (normal, minimized, maximized) and restore geometry
  - Z-order with bounded z-indices
  - Cascade placement and half-screen snapping

The manager holds no rendering state; the browser front end draws the
windows it reports.

Example usage:

	manager := wm.NewManager(wm.DefaultConfig(), lookup)
	id, err := manager.Open("editor", wm.OpenOptions{FilePath: "/readme.md"})
	if err != nil {
		// handle error
	}
	err = manager.ToggleMaximize(id)
	if err != nil {
		// handle error
	}
*/
package wm
