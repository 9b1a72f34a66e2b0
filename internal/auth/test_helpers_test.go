package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite driver for tests
)

// testDB opens a throwaway SQLite file holding just the users table.
// A real file rather than :memory: so WAL journalling matches production.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "auth.db")
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	) STRICT`)
	if err != nil {
		t.Fatalf("creating users table: %v", err)
	}

	return db
}

// seedUser registers an account directly through the repository.
func seedUser(t *testing.T, repo UserRepository, username string) *User {
	t.Helper()

	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}
	u := &User{Username: username, PasswordHash: hash}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}
	return u
}
