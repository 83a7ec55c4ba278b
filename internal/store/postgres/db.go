package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// DefaultQueryTimeout bounds every single-statement repository call so a
// stuck query cannot pin a pool connection.
const DefaultQueryTimeout = 30 * time.Second

const defaultStatementTimeoutMS = 30_000

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// DB wraps the sql pool; repositories embed it for query access.
type DB struct {
	*sql.DB
}

type Config struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	StatementTimeoutMS int
}

func New(cfg Config) (*DB, error) {
	timeoutMS := cfg.StatementTimeoutMS
	if timeoutMS == 0 {
		timeoutMS = defaultStatementTimeoutMS
	}
	if timeoutMS < 0 {
		return nil, fmt.Errorf("statement timeout %d must not be negative", timeoutMS)
	}

	db, err := sql.Open("postgres", withStatementTimeout(cfg.URL, timeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	idle := cfg.ConnMaxIdleTime
	if idle <= 0 {
		idle = 2 * time.Minute
	}
	db.SetConnMaxIdleTime(idle)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// withStatementTimeout attaches statement_timeout as a connection option so
// every pooled connection carries it, not only the session that set it.
func withStatementTimeout(connURL string, timeoutMS int) string {
	opt := "options=" + url.QueryEscape("-c statement_timeout="+strconv.Itoa(timeoutMS))
	sep := "?"
	for _, r := range connURL {
		if r == '?' {
			sep = "&"
			break
		}
	}
	return connURL + sep + opt
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations applies every *.up.sql file under dir in lexical order,
// recording applied versions in schema_migrations so reruns are no-ops.
func (db *DB) RunMigrations(dir string) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		version := filepath.Base(path)
		applied, err := db.migrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := db.applyMigration(ctx, path, version); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) migrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}

func (db *DB) applyMigration(ctx context.Context, path, version string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	slog.Info("applying migration", "version", version)
	start := time.Now()

	execCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	// lock_timeout keeps a DDL statement from queueing forever behind a
	// long-running transaction.
	if _, err := db.ExecContext(execCtx, "SET lock_timeout = '10s'"); err != nil {
		return fmt.Errorf("set lock_timeout for migration %s: %w", version, err)
	}
	if _, err := db.ExecContext(execCtx, string(content)); err != nil {
		return fmt.Errorf("exec migration %s: %w", version, err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}

	slog.Info("migration applied", "version", version, "elapsed", time.Since(start).String())
	return nil
}
