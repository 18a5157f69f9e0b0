package session

import (
	"errors"

	"go.uber.org/zap"

	"webdesk/pkg/metrics"
	"webdesk/pkg/shell"
	"webdesk/pkg/vfs"
)

// errNilTree is returned when a transaction produces no tree.
var errNilTree = errors.New("session: transaction returned a nil tree")

// FileSystem returns the canonical file system snapshot.
func (d *Desktop) FileSystem() *vfs.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fs
}

// SetFileSystem installs t as the canonical snapshot.
func (d *Desktop) SetFileSystem(t *vfs.Tree) {
	if t == nil {
		panic("session: nil file system")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.install(t)
}

// Transact runs fn with the canonical snapshot and installs the tree it
// returns. Nothing is installed when fn fails.
func (d *Desktop) Transact(fn func(t *vfs.Tree) (*vfs.Tree, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := fn(d.fs)
	if err != nil {
		return err
	}
	if next == nil {
		return errNilTree
	}
	d.install(next)
	return nil
}

// install replaces the canonical tree. The caller must hold d.mu.
func (d *Desktop) install(t *vfs.Tree) {
	if t == d.fs {
		return
	}
	d.fs = t
	metrics.SetTreeSize(d.user, t.Root().Count())
}

// SaveFile writes content to the file at path, creating it if needed.
func (d *Desktop) SaveFile(path, content string) error {
	return d.Transact(func(t *vfs.Tree) (*vfs.Tree, error) {
		return t.WriteFile(vfs.ResolvePath(path, vfs.Root), content)
	})
}

// Upload stores content in the folder dir under name, renaming on
// collision, and returns the name used.
func (d *Desktop) Upload(dir, name, content string) (string, error) {
	var chosen string
	err := d.Transact(func(t *vfs.Tree) (*vfs.Tree, error) {
		next, n, err := t.Upload(vfs.ResolvePath(dir, vfs.Root), name, content)
		chosen = n
		return next, err
	})
	if err != nil {
		return "", err
	}
	d.log.Debug("file uploaded", zap.String("dir", dir), zap.String("name", chosen))
	return chosen, nil
}

// Processes implements shell.Host: one process per open window.
func (d *Desktop) Processes() []shell.Process {
	wins := d.Windows()
	procs := make([]shell.Process, 0, len(wins))
	for _, w := range wins {
		procs = append(procs, shell.Process{
			PID:      w.PID,
			WindowID: w.ID,
			AppID:    w.AppID,
			Title:    w.Title,
			State:    w.State.String(),
		})
	}
	return procs
}

// Kill implements shell.Host by closing the window behind pid.
func (d *Desktop) Kill(pid int) bool {
	d.mu.RLock()
	win, ok := d.wm.ByPID(pid)
	d.mu.RUnlock()
	if !ok {
		return false
	}
	return d.Close(win.ID) == nil
}
