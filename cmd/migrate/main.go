// Command migrate applies the embedded PostgreSQL schema migrations.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"aititle/internal/infra"
	"aititle/internal/sqlinline"
)

const createVersionTable = `create table if not exists schema_migrations (
    version text primary key,
    applied_at timestamptz not null default now()
)`

func main() {
	var (
		dsnFlag string
		dryRun  bool
	)
	flag.StringVar(&dsnFlag, "dsn", "", "PostgreSQL connection string (fallbacks to DATABASE_URL)")
	flag.BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()

	dsn := strings.TrimSpace(dsnFlag)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := migrate(ctx, db, dryRun, logger)
	if err != nil {
		logger.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	logger.Info().Int("applied", applied).Bool("dry_run", dryRun).Msg("migrations complete")
}

func migrate(ctx context.Context, db *sql.DB, dryRun bool, logger infra.Logger) (int, error) {
	migrations, err := sqlinline.Migrations()
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	done := map[string]bool{}
	rows, err := db.QueryContext(ctx, `select version from schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		done[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		if dryRun {
			logger.Info().Str("version", m.Version).Msg("pending")
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return applied, fmt.Errorf("apply %s: %w", m.Version, err)
		}
		logger.Info().Str("version", m.Version).Msg("applied")
		applied++
	}
	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, m sqlinline.Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `insert into schema_migrations (version) values ($1)`, m.Version); err != nil {
		return err
	}
	return tx.Commit()
}
