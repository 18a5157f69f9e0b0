// Package inbox imports files dropped into a host directory into a virtual
// folder of a desktop.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"webdesk/pkg/logging"
	"webdesk/pkg/metrics"
	"webdesk/pkg/vfs"
)

// ErrAlreadyRunning is returned by Run on a watcher that is already running.
var ErrAlreadyRunning = errors.New("inbox: watcher already running")

// Destination receives imported files. Upload stores a new file in a
// virtual folder and returns the name it chose; SaveFile overwrites a file
// imported earlier. session.Desktop implements it.
type Destination interface {
	Upload(dir, name, content string) (string, error)
	SaveFile(path, content string) error
}

// Config describes one inbox.
type Config struct {
	Dir     string        // host directory to watch
	Target  string        // virtual folder receiving the files
	Remove  bool          // delete host files once imported
	Settle  time.Duration // quiet period before a changed file is read, 250ms if zero
	MaxSize int64         // larger files are skipped, 32 MiB if zero
}

func (c *Config) setDefaults() {
	if c.Target == "" {
		c.Target = "/Documents"
	}
	if c.Settle <= 0 {
		c.Settle = 250 * time.Millisecond
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 32 << 20
	}
}

// Import reports the outcome of one imported file.
type Import struct {
	Source string    // host path
	Path   string    // virtual path, empty on failure
	Err    error     // nil on success
	Time   time.Time // when the import finished
}

// Stats summarises the activity of a watcher.
type Stats struct {
	Imported     int
	Failed       int
	LastActivity time.Time
}

// Watcher funnels file events from Config.Dir into a Destination.
type Watcher struct {
	cfg  Config
	dest Destination
	log  *zap.Logger

	imports chan Import
	// host path -> virtual path of files imported and kept on the host;
	// touched only by the Run goroutine
	imported map[string]string

	mu      sync.Mutex
	running bool
	stats   Stats
}

// New returns a watcher for cfg. The directory must exist.
func New(cfg Config, dest Destination) (*Watcher, error) {
	cfg.setDefaults()

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox: %s is not a directory", cfg.Dir)
	}

	return &Watcher{
		cfg:     cfg,
		dest:    dest,
		log:     logging.Named("inbox").With(zap.String("dir", cfg.Dir), zap.String("target", cfg.Target)),
		imports:  make(chan Import, 16),
		imported: make(map[string]string),
	}, nil
}

// Imports delivers the outcome of every import. Events are dropped when
// nobody reads the channel.
func (w *Watcher) Imports() <-chan Import {
	return w.imports
}

// Stats returns the counters of the watcher.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Running reports whether Run is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run imports the files already present in the directory and then every
// file created or written until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", w.cfg.Dir, err)
	}
	w.log.Info("watching inbox")

	if err := w.importExisting(); err != nil {
		return err
	}

	pending := make(map[string]time.Time)
	tick := time.NewTicker(w.cfg.Settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("inbox stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				if !ignored(event.Name) {
					pending[event.Name] = time.Now()
				}
			}
			if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				delete(pending, event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))

		case now := <-tick.C:
			for _, path := range settled(pending, now, w.cfg.Settle) {
				delete(pending, path)
				w.importFile(path)
			}
		}
	}
}

// settled returns the pending paths that have been quiet for at least d,
// oldest first.
func settled(pending map[string]time.Time, now time.Time, d time.Duration) []string {
	var paths []string
	for path, at := range pending {
		if now.Sub(at) >= d {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		if pending[paths[i]].Equal(pending[paths[j]]) {
			return paths[i] < paths[j]
		}
		return pending[paths[i]].Before(pending[paths[j]])
	})
	return paths
}

func (w *Watcher) importExisting() error {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("inbox: read %s: %w", w.cfg.Dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(w.cfg.Dir, e.Name())
		if e.IsDir() || ignored(path) {
			continue
		}
		w.importFile(path)
	}
	return nil
}

// ignored skips hidden files and editor leftovers.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

func (w *Watcher) importFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.log.Warn("stat failed", zap.String("file", path), zap.Error(err))
		}
		return
	}
	if info.IsDir() {
		return
	}
	if info.Size() > w.cfg.MaxSize {
		w.finish(path, "", fmt.Errorf("inbox: %s exceeds %d bytes", filepath.Base(path), w.cfg.MaxSize))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.finish(path, "", err)
		return
	}

	name := filepath.Base(path)
	content := vfs.EncodeContent(name, data)

	// a file kept on the host and written again replaces its earlier import
	if target, ok := w.imported[path]; ok {
		if err := w.dest.SaveFile(target, content); err != nil {
			w.finish(path, "", err)
			return
		}
		w.finish(path, target, nil)
		return
	}

	chosen, err := w.dest.Upload(w.cfg.Target, name, content)
	if err != nil {
		w.finish(path, "", err)
		return
	}
	target := vfs.ResolvePath(w.cfg.Target, vfs.Root).Join(chosen).String()

	if w.cfg.Remove {
		if err := os.Remove(path); err != nil {
			w.log.Warn("remove imported file", zap.String("file", path), zap.Error(err))
		}
	} else {
		w.imported[path] = target
	}
	w.finish(path, target, nil)
}

func (w *Watcher) finish(source, path string, err error) {
	metrics.RecordUpload("inbox", err == nil)

	now := time.Now()
	w.mu.Lock()
	if err == nil {
		w.stats.Imported++
	} else {
		w.stats.Failed++
	}
	w.stats.LastActivity = now
	w.mu.Unlock()

	if err != nil {
		w.log.Warn("import failed", zap.String("file", source), zap.Error(err))
	} else {
		w.log.Info("file imported", zap.String("file", source), zap.String("path", path))
	}

	select {
	case w.imports <- Import{Source: source, Path: path, Err: err, Time: now}:
	default:
	}
}
