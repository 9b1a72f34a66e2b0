package device

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite driver for tests
)

// testDB creates a temporary SQLite database with the devices and
// device_logs tables.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "device-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			room_id TEXT,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'OFF',
			is_online INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE device_logs (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			action TEXT NOT NULL,
			old_status TEXT NOT NULL DEFAULT '',
			new_status TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (device_id) REFERENCES devices(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return db
}

// testService wires a Service over a fresh test database with no
// external notifiers.
func testService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewService(NewRepository(db), NewLogRepository(db), nil, nil, nil, nil, nil)
	return svc, db
}

// countLogs returns the number of status_change rows for a device.
func countLogs(t *testing.T, db *sql.DB, deviceID string) int {
	t.Helper()
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM device_logs WHERE device_id = ? AND action = 'status_change'",
		deviceID).Scan(&n)
	if err != nil {
		t.Fatalf("counting logs: %v", err)
	}
	return n
}
