package scene

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite driver for tests

	"github.com/havenhome/haven-core/internal/device"
)

// testDB creates a temporary SQLite database with the scene, device and
// log tables.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "scene-test-*.db")
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

		CREATE TABLE scenes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE scene_bindings (
			id TEXT PRIMARY KEY,
			scene_id TEXT NOT NULL,
			device_id TEXT NOT NULL,
			target_state TEXT NOT NULL,
			target_value TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			FOREIGN KEY (scene_id) REFERENCES scenes(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating test schema: %v", err)
	}

	return db
}

type fixture struct {
	db       *sql.DB
	repo     *SQLiteRepository
	devices  *device.SQLiteRepository
	devSvc   *device.Service
	composer *Composer
	executor *Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)
	deviceRepo := device.NewRepository(db)
	devSvc := device.NewService(deviceRepo, device.NewLogRepository(db), nil, nil, nil, nil, nil)
	repo := NewRepository(db)
	return &fixture{
		db:       db,
		repo:     repo,
		devices:  deviceRepo,
		devSvc:   devSvc,
		composer: NewComposer(repo, deviceRepo, nil),
		executor: NewExecutor(repo, devSvc, nil, nil, nil),
	}
}

func (f *fixture) newDevice(t *testing.T, owner, name string, typ device.Type) *device.Device {
	t.Helper()
	d := &device.Device{OwnerID: owner, Name: name, Type: typ}
	if err := f.devices.Create(context.Background(), d); err != nil {
		t.Fatalf("creating device %q: %v", name, err)
	}
	return d
}

func (f *fixture) countBindings(t *testing.T, sceneID string) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow("SELECT COUNT(*) FROM scene_bindings WHERE scene_id = ?", sceneID).Scan(&n); err != nil {
		t.Fatalf("counting bindings: %v", err)
	}
	return n
}

func (f *fixture) countScenes(t *testing.T, owner string) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow("SELECT COUNT(*) FROM scenes WHERE owner_id = ?", owner).Scan(&n); err != nil {
		t.Fatalf("counting scenes: %v", err)
	}
	return n
}
