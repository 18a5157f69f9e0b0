// Package apps holds the application catalogue of the desktop and the table
// that builds each app's props from desktop state.
//
// Apps are leaf collaborators: the registry only describes them (name, icon
// and component handles, default window size) and the dispatch table hands
// them the state they render.
package apps

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"webdesk/pkg/wm"
)

var (
	// ErrInvalidApp is returned when registering a definition without an id.
	ErrInvalidApp = errors.New("apps: invalid app definition")
	// ErrDuplicateApp is returned when registering an id that already exists.
	ErrDuplicateApp = errors.New("apps: app already registered")
)

// Definition describes an application.
type Definition struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Icon        string  `json:"icon" yaml:"icon"`
	Component   string  `json:"component" yaml:"component"`
	DefaultSize wm.Size `json:"defaultSize" yaml:"defaultSize"`
	// MultiInstanceWithCommand opens a new window for every command.
	MultiInstanceWithCommand bool     `json:"multiInstanceWithCommand,omitempty" yaml:"multiInstanceWithCommand"`
	Handles                  []string `json:"handles,omitempty" yaml:"handles"`
	Generated                bool     `json:"generated,omitempty" yaml:"generated"`
}

// window returns what the window manager needs to know about d.
func (d Definition) window() wm.App {
	return wm.App{
		ID:                       d.ID,
		Name:                     d.Name,
		DefaultSize:              d.DefaultSize,
		MultiInstanceWithCommand: d.MultiInstanceWithCommand,
	}
}

// Registry is an ordered, concurrency safe set of app definitions.
type Registry struct {
	mu   sync.RWMutex
	apps []Definition
}

// NewRegistry returns a registry holding defs. Later duplicates are ignored.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{}
	for _, d := range defs {
		_ = r.Register(d)
	}
	return r
}

func (r *Registry) index(id string) int {
	for i, d := range r.apps {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the definition of an app.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return r.apps[i], true
	}
	return Definition{}, false
}

// Lookup resolves an app for the window manager. It satisfies wm.AppLookup.
func (r *Registry) Lookup(id string) (wm.App, bool) {
	d, ok := r.Get(id)
	if !ok {
		return wm.App{}, false
	}
	return d.window(), true
}

// All returns every definition in registration order.
func (r *Registry) All() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Definition(nil), r.apps...)
}

// Register adds a definition.
func (r *Registry) Register(d Definition) error {
	if d.ID == "" {
		return ErrInvalidApp
	}
	if d.Name == "" {
		d.Name = d.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index(d.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateApp, d.ID)
	}
	r.apps = append(r.apps, d)
	return nil
}

// Remove deletes a definition and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return false
	}
	r.apps = append(r.apps[:i], r.apps[i+1:]...)
	return true
}

// LoadCatalogue decodes a YAML list of definitions.
func LoadCatalogue(rd io.Reader) ([]Definition, error) {
	var defs []Definition
	if err := yaml.NewDecoder(rd).Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("apps: decode catalogue: %w", err)
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, ErrInvalidApp
		}
	}
	return defs, nil
}
