// Package store persists desktop snapshots keyed by username.
//
// Backends hold opaque bytes; Encode and Decode convert between bytes and
// Snapshot. Open selects a backend by driver name and instruments it with
// metrics.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"webdesk/pkg/logging"
	"webdesk/pkg/metrics"
)

var (
	// ErrNotFound is returned by Load when no snapshot exists for a user.
	ErrNotFound = errors.New("store: snapshot not found")
	// ErrInvalidUser is returned for usernames that cannot be used as keys.
	ErrInvalidUser = errors.New("store: invalid username")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Store loads and saves serialised snapshots.
type Store interface {
	Load(ctx context.Context, user string) ([]byte, error)
	Save(ctx context.Context, user string, data []byte) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string // memory, file, sqlite, postgres or s3
	DSN    string // directory for file, database path for sqlite, URL for postgres
	S3     S3Config
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "memory":
		cfg.Driver = "memory"
		s = NewMemory()
	case "file":
		s, err = NewFile(cfg.DSN)
	case "sqlite", "sqlite3":
		cfg.Driver = "sqlite"
		s, err = NewSQLite(cfg.DSN)
	case "postgres":
		s, err = NewPostgres(cfg.DSN)
	case "s3":
		s, err = NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	logging.Named("store").Info("snapshot store opened", zap.String("driver", cfg.Driver))
	return &instrumented{driver: cfg.Driver, next: s}, nil
}

// ValidateUser reports whether user can be used as a storage key.
func ValidateUser(user string) error {
	if user == "" || user == "." || user == ".." || len(user) > 64 ||
		strings.ContainsAny(user, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return nil
}

// instrumented records metrics for every operation of next.
type instrumented struct {
	driver string
	next   Store
}

func (s *instrumented) Load(ctx context.Context, user string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Load(ctx, user)
	metrics.RecordStoreOperation(s.driver, "load", time.Since(start), err == nil || errors.Is(err, ErrNotFound))
	return data, err
}

func (s *instrumented) Save(ctx context.Context, user string, data []byte) error {
	start := time.Now()
	err := s.next.Save(ctx, user, data)
	metrics.RecordStoreOperation(s.driver, "save", time.Since(start), err == nil)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
