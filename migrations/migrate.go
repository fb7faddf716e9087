// Package migrations holds the SQL schema and the runner that applies it.
package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lockID is the advisory lock key held while migrations run.
const lockID = 7462839

//go:embed *.sql
var files embed.FS

// Apply runs every pending migration in filename order. Each file is applied in
// its own transaction and recorded in schema_migrations with its checksum; a
// previously applied file whose content has changed is an error.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("[LOCK] failed to acquire connection for lock: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&locked); err != nil {
		return fmt.Errorf("[LOCK] failed to query advisory lock: %w", err)
	}
	if !locked {
		return errors.New("[LOCK] failed: another migrator is currently running")
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockID)
	log.Println("[LOCK] success")

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	names, err := discover()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := apply(ctx, conn, name); err != nil {
			return err
		}
	}
	return nil
}

func discover() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("[DISCOVER] failed to read migrations: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, ok := versionOf(e.Name())
		if !ok {
			return nil, fmt.Errorf("[DISCOVER] invalid migration filename %s, expected NNN_description.sql", e.Name())
		}
		if seen[version] {
			return nil, fmt.Errorf("[DISCOVER] duplicate version found: %s", version)
		}
		seen[version] = true
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func versionOf(filename string) (string, bool) {
	version, _, ok := strings.Cut(filename, "_")
	return version, ok && version != ""
}

func apply(ctx context.Context, conn *pgxpool.Conn, filename string) error {
	body, err := files.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", filename, err)
	}
	sum := sha256.Sum256(body)
	checksum := hex.EncodeToString(sum[:])
	version, _ := versionOf(filename)

	var existing string
	err = conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil && existing == checksum:
		log.Printf("[SKIP] %s", filename)
		return nil
	case err == nil:
		return fmt.Errorf("checksum mismatch for %s: recorded %s, file has %s", filename, existing, checksum)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("failed to query schema_migrations for %s: %w", filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum,
	); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", filename, err)
	}

	log.Printf("[APPLY] %s", filename)
	return nil
}
