// Package sqlstore implements store.Store on database/sql, backed by SQLite
// (modernc.org/sqlite) or PostgreSQL (pgx).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/kilianp07/procsched/core/store"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = time.RFC3339Nano
)

// Config selects the database.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string `json:"driver"`
	// DSN is a file path or URI for SQLite, a connection string for
	// PostgreSQL.
	DSN string `json:"dsn"`
	// MaxOpenConns caps the connection pool; 0 keeps the driver default.
	MaxOpenConns int `json:"max_open_conns"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = SQLite.Name
	}
	if c.DSN == "" && c.Driver == SQLite.Name {
		c.DSN = "procsched.db"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if _, err := DialectFor(c.Driver); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("store dsn is required")
	}
	return nil
}

// Store is a store.Store on a SQL database.
type Store struct {
	db  *sql.DB
	d   Dialect
	gq  goqu.DialectWrapper
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to the database described by cfg and ensures the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.MaxOpenConns > 0:
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	case d.Name == SQLite.Name:
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases alive between calls.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, d: d, gq: d.goqu(), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, v, time.UTC)
}

func parseStamp(v string) (time.Time, error) {
	return time.Parse(stampLayout, v)
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return fmt.Errorf("rollback: %v (cause: %w)", rerr, err)
		}
		return err
	}
	return tx.Commit()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlBuilder is any goqu dataset.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// render turns a dataset into SQL and its placeholder arguments.
func render(ds sqlBuilder) (string, []any, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return query, args, nil
}

// exec runs an INSERT, UPDATE or DELETE dataset.
func exec(ctx context.Context, q querier, ds sqlBuilder) (sql.Result, error) {
	query, args, err := render(ds)
	if err != nil {
		return nil, err
	}
	return q.ExecContext(ctx, query, args...)
}
