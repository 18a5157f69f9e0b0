package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"webdesk/pkg/logging"
	"webdesk/pkg/metrics"
	"webdesk/pkg/shell"
	"webdesk/pkg/store"
)

// ErrNotLoaded is returned when saving a desktop that was never loaded.
var ErrNotLoaded = errors.New("session: desktop not loaded")

// Hub keeps the loaded desktops keyed by username.
type Hub struct {
	mu       sync.Mutex
	desktops map[string]*Desktop
	store    store.Store
	interp   *shell.Interpreter
	cfg      Config
	log      *zap.Logger
}

// NewHub creates a hub that loads and saves desktops through st.
func NewHub(st store.Store, interp *shell.Interpreter, cfg Config) *Hub {
	return &Hub{
		desktops: make(map[string]*Desktop),
		store:    st,
		interp:   interp,
		cfg:      cfg,
		log:      logging.Named("hub"),
	}
}

// Interpreter returns the command interpreter shared by all desktops.
func (h *Hub) Interpreter() *shell.Interpreter {
	return h.interp
}

// Get returns the desktop of user, loading it on first use. A missing or
// unreadable snapshot yields a default desktop. The store is read without
// holding the hub lock, so a slow load only delays its own user.
func (h *Hub) Get(ctx context.Context, user string) (*Desktop, error) {
	if err := store.ValidateUser(user); err != nil {
		return nil, err
	}

	h.mu.Lock()
	d, ok := h.desktops[user]
	h.mu.Unlock()
	if ok {
		return d, nil
	}

	data, err := h.store.Load(ctx, user)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.log.Info("no snapshot, starting default desktop", zap.String("user", user))
	case err != nil:
		h.log.Warn("snapshot load failed, starting default desktop", zap.String("user", user), zap.Error(err))
		data = nil
	default:
		h.log.Info("snapshot loaded", zap.String("user", user), zap.Int("bytes", len(data)))
	}
	loaded := New(user, store.Decode(data), h.interp, h.cfg)

	h.mu.Lock()
	defer h.mu.Unlock()
	// a concurrent Get for the same user may have won
	if d, ok := h.desktops[user]; ok {
		loaded.Shutdown()
		return d, nil
	}
	h.desktops[user] = loaded
	metrics.SetDesktopsLoaded(len(h.desktops))
	return loaded, nil
}

// Users returns the usernames of the loaded desktops.
func (h *Hub) Users() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	users := make([]string, 0, len(h.desktops))
	for u := range h.desktops {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Save persists the desktop of user.
func (h *Hub) Save(ctx context.Context, user string) error {
	h.mu.Lock()
	d, ok := h.desktops[user]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, user)
	}
	return h.save(ctx, d)
}

func (h *Hub) save(ctx context.Context, d *Desktop) error {
	data, err := store.Encode(d.Snapshot())
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, d.User(), data); err != nil {
		h.log.Error("snapshot save failed", zap.String("user", d.User()), zap.Error(err))
		return fmt.Errorf("save %s: %w", d.User(), err)
	}
	h.log.Info("snapshot saved", zap.String("user", d.User()), zap.Int("bytes", len(data)))
	return nil
}

// SaveAll persists every loaded desktop.
func (h *Hub) SaveAll(ctx context.Context) error {
	var errs []error
	for _, user := range h.Users() {
		if err := h.Save(ctx, user); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops running terminal chains, saves every desktop and unloads
// them.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	desktops := make([]*Desktop, 0, len(h.desktops))
	for _, d := range h.desktops {
		desktops = append(desktops, d)
	}
	h.mu.Unlock()

	var errs []error
	for _, d := range desktops {
		d.Shutdown()
		if err := h.save(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}

	h.mu.Lock()
	h.desktops = make(map[string]*Desktop)
	h.mu.Unlock()
	metrics.SetDesktopsLoaded(0)
	return errors.Join(errs...)
}
