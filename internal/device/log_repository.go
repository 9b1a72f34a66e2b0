package device

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogRepository persists the append-only device audit trail. Rows are
// only ever inserted; there is no update or delete path.
type LogRepository interface {
	Create(ctx context.Context, l *Log) error
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]Log, error)
}

// SQLiteLogRepository implements LogRepository using SQLite.
type SQLiteLogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new SQLite-backed device log repository.
func NewLogRepository(db *sql.DB) *SQLiteLogRepository {
	return &SQLiteLogRepository{db: db}
}

// Create appends one audit row. The ID is generated if empty.
func (r *SQLiteLogRepository) Create(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = "log-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	l.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_logs (id, device_id, action, old_status, new_status, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.DeviceID, l.Action, l.OldStatus, l.NewStatus, l.Description, now,
	)
	if err != nil {
		return fmt.Errorf("creating device log: %w", err)
	}
	return nil
}

// ListByDevice returns a device's audit rows, newest first.
func (r *SQLiteLogRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Log, error) {
	if limit <= 0 {
		limit = 100 //nolint:mnd // default page size
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, action, old_status, new_status, description, created_at
		 FROM device_logs WHERE device_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing device logs: %w", err)
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var l Log
		var createdAt string
		if err := rows.Scan(&l.ID, &l.DeviceID, &l.Action, &l.OldStatus,
			&l.NewStatus, &l.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device log: %w", err)
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device logs: %w", err)
	}
	return logs, nil
}
