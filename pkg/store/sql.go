package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect holds the statements that differ between SQL databases.
type dialect struct {
	driver string
	schema string
	load   string
	save   string
}

var sqliteDialect = dialect{
	driver: "sqlite3",
	schema: `
	CREATE TABLE IF NOT EXISTS snapshots (
		username TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	load: `SELECT data FROM snapshots WHERE username = ?`,
	save: `
	INSERT INTO snapshots (username, data, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(username) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
}

var postgresDialect = dialect{
	driver: "postgres",
	schema: `
	CREATE TABLE IF NOT EXISTS snapshots (
		username TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,
	load: `SELECT data FROM snapshots WHERE username = $1`,
	save: `
	INSERT INTO snapshots (username, data, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (username) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
}

// SQL keeps snapshots in a snapshots table.
type SQL struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLite opens (or creates) a SQLite database at path.
func NewSQLite(path string) (*SQL, error) {
	if path == "" {
		return nil, errors.New("store: sqlite driver needs a database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return openSQL(sqliteDialect, path)
}

// NewPostgres connects to a PostgreSQL database.
func NewPostgres(dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New("store: postgres driver needs a connection URL")
	}
	return openSQL(postgresDialect, dsn)
}

func openSQL(d dialect, dsn string) (*SQL, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d.driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	s := &SQL{db: db, dialect: d}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// init creates the database schema.
func (s *SQL) init() error {
	_, err := s.db.Exec(s.dialect.schema)
	return err
}

// Load returns the user's snapshot.
func (s *SQL) Load(ctx context.Context, user string) ([]byte, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, s.dialect.load, user).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return []byte(data), nil
}

// Save inserts or replaces the user's snapshot.
func (s *SQL) Save(ctx context.Context, user string, data []byte) error {
	if err := ValidateUser(user); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.save, user, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQL) Close() error {
	return s.db.Close()
}
