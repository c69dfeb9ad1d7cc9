package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// recordKey names the single persisted configuration record. The value is
// stored as opaque serialized text so the schema never changes with the
// config shape.
const recordKey = "resolver_config"

// SQLite is a Store backed by a SQLite key-value table.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if necessary) a SQLite-backed settings store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize settings schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

func (s *SQLite) Load(ctx context.Context) (ResolverConfig, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, recordKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ResolverConfig{}, ErrNotFound
	}
	if err != nil {
		return ResolverConfig{}, fmt.Errorf("load resolver config: %w", err)
	}

	var cfg ResolverConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return ResolverConfig{}, fmt.Errorf("decode resolver config: %w", err)
	}
	return cfg, nil
}

func (s *SQLite) Save(ctx context.Context, cfg ResolverConfig) error {
	value, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode resolver config: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		recordKey, string(value)); err != nil {
		return fmt.Errorf("save resolver config: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
