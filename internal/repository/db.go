// Package repository persists the cumulative extraction table and the
// run ledger. Postgres backs shared deployments; SQLite backs local runs.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB wraps the sql handle with the dialect needed to rebind placeholders.
type DB struct {
	*sql.DB
	postgres bool
}

// Open connects to the database selected by the DSN scheme:
// postgres://... uses the pgx driver, anything else the pure-Go SQLite
// driver (file:..., :memory:).
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	driver, postgres := "sqlite", false
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver, postgres = "pgx", true
	}
	logger.Info("connecting to database", "driver", driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{DB: db, postgres: postgres}
	if err := d.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return d, nil
}

// rebind rewrites ? placeholders to $n for Postgres; SQLite takes ? as-is.
func (d *DB) rebind(q string) string {
	if !d.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS report_values (
			report_date  TEXT NOT NULL,
			quarter_key  TEXT NOT NULL,
			value        DOUBLE PRECISION NOT NULL,
			is_estimate  BOOLEAN NOT NULL,
			PRIMARY KEY (report_date, quarter_key)
		)`,
		`CREATE TABLE IF NOT EXISTS report_confidence (
			report_date  TEXT PRIMARY KEY,
			confidence   DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			id            TEXT PRIMARY KEY,
			started_at    TEXT NOT NULL,
			finished_at   TEXT,
			status        TEXT NOT NULL,
			images        INTEGER NOT NULL DEFAULT 0,
			records       INTEGER NOT NULL DEFAULT 0,
			error_message TEXT
		)`,
	}
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
