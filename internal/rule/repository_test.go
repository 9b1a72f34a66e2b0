package rule

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite driver for tests
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "rule-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE automation_rules (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			device_id TEXT NOT NULL,
			condition TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL DEFAULT '',
			is_enabled INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return db
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	ru := &Rule{
		OwnerID:   "usr-alice",
		Name:      "Evening lights",
		DeviceID:  "dev-lamp1",
		Condition: "time >= 19:00",
		Action:    "ON",
	}
	if err := repo.Create(ctx, ru); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, ru.ID, "usr-alice")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.IsEnabled {
		t.Error("new rules should start enabled")
	}
	if got.Condition != "time >= 19:00" {
		t.Errorf("Condition = %q", got.Condition)
	}
}

func TestRepository_OwnerScoping(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	ru := &Rule{OwnerID: "usr-alice", Name: "Rule", DeviceID: "dev-1"}
	if err := repo.Create(ctx, ru); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := repo.GetByID(ctx, ru.ID, "usr-bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign GetByID() error = %v, want ErrNotFound", err)
	}
	if err := repo.SetEnabled(ctx, ru.ID, "usr-bob", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign SetEnabled() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, ru.ID, "usr-bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Delete() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_SetEnabledAndDelete(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	ru := &Rule{OwnerID: "usr-alice", Name: "Rule", DeviceID: "dev-1"}
	if err := repo.Create(ctx, ru); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.SetEnabled(ctx, ru.ID, "usr-alice", false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	got, err := repo.GetByID(ctx, ru.ID, "usr-alice")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.IsEnabled {
		t.Error("IsEnabled should be false after SetEnabled(false)")
	}

	if err := repo.Delete(ctx, ru.ID, "usr-alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, ru.ID, "usr-alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	rules, err := repo.List(ctx, "usr-alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("List() returned %d rules, want 0 after delete", len(rules))
	}
}
