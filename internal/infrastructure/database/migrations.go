package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// MigrationsFS is assigned by the top-level migrations package, which
// embeds the *.sql files. Keeping the embed there and the runner here
// avoids an import cycle and keeps this package schema-agnostic.
var MigrationsFS embed.FS

// MigrationsDir locates the SQL files inside MigrationsFS.
var MigrationsDir = "."

// Migration pairs the up and down SQL for one schema version. Version
// comes from the filename prefix (YYYYMMDD_HHMMSS), Name from the rest.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrate brings the schema up to date. Each pending migration runs in
// its own transaction, in version order. On failure everything already
// applied stays applied and the run stops; a later Migrate picks up at
// the failed version.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	pending, err := readMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if done[m.Version] {
			continue
		}
		if err := db.runMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown reverts the newest applied migration. Development and
// test helper; production only ever migrates forward.
func (db *DB) MigrateDown(ctx context.Context) error {
	var newest string
	err := db.QueryRowContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&newest)
	if err != nil {
		return nil //nolint:nilerr // empty table, nothing to revert
	}

	all, err := readMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	idx := slices.IndexFunc(all, func(m Migration) bool { return m.Version == newest })
	if idx < 0 {
		return fmt.Errorf("migration %s not found in filesystem", newest)
	}
	if all[idx].DownSQL == "" {
		return fmt.Errorf("migration %s has no down SQL", newest)
	}

	return db.inTx(ctx, func(tx txExecer) error {
		if _, err := tx.ExecContext(ctx, all[idx].DownSQL); err != nil {
			return fmt.Errorf("executing down SQL: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM schema_migrations WHERE version = ?", newest)
		if err != nil {
			return fmt.Errorf("removing migration record: %w", err)
		}
		return nil
	})
}

// appliedVersions reads the schema_migrations table into a set.
func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		set[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading migration versions: %w", err)
	}
	return set, nil
}

// runMigration executes one up migration and records it, atomically.
func (db *DB) runMigration(ctx context.Context, m Migration) error {
	return db.inTx(ctx, func(tx txExecer) error {
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("executing SQL: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			m.Version, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

// readMigrations collects the embedded *.up.sql / *.down.sql pairs,
// sorted oldest first. A missing embed or directory just means there is
// nothing to run.
func readMigrations() ([]Migration, error) {
	if MigrationsFS == (embed.FS{}) {
		return nil, nil
	}
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, nil //nolint:nilerr // directory absent means no migrations
	}

	byVersion := make(map[string]*Migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, up, ok := splitMigrationFile(e.Name())
		if !ok {
			continue
		}

		sql, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if up {
			m.UpSQL = string(sql)
		} else {
			m.DownSQL = string(sql)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %s has a down file but no up file", m.Version)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int {
		return strings.Compare(a.Version, b.Version)
	})
	return out, nil
}

// splitMigrationFile decomposes "20260301_120000_initial_schema.up.sql"
// into version "20260301_120000", name "initial_schema" and direction.
func splitMigrationFile(filename string) (version, name string, up, ok bool) {
	base, found := strings.CutSuffix(filename, ".sql")
	if !found {
		return "", "", false, false
	}

	switch {
	case strings.HasSuffix(base, ".up"):
		up = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		return "", "", false, false
	}
	version = parts[0] + "_" + parts[1]
	if len(parts) == 3 {
		name = parts[2]
	}
	return version, name, up, true
}
