package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence. Reads and
// writes are owner-scoped; a mismatched owner behaves like a missing
// device.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id, ownerID string) (*Device, error)
	GetByIDAnyState(ctx context.Context, id, ownerID string) (*Device, error)
	List(ctx context.Context, ownerID string) ([]Device, error)
	ListByRoom(ctx context.Context, roomID, ownerID string) ([]Device, error)
	ListByIDs(ctx context.Context, ids []string, ownerID string) ([]Device, error)
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id, ownerID string) error
	SetStatus(ctx context.Context, id, ownerID, status string, isOnline bool) error
	ApplyState(ctx context.Context, id, ownerID, status string) error
	CompareAndSwapStatus(ctx context.Context, id, ownerID, from, to string) (bool, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed device repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, owner_id, room_id, name, type, status, is_online, is_active, created_at, updated_at"

// Create inserts a new device. The ID is generated if empty; status
// starts at OFF and the device starts online.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = "dev-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	d.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	d.UpdatedAt = d.CreatedAt
	d.Status = StatusOff
	d.IsOnline = true
	d.IsActive = true

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, owner_id, room_id, name, type, status, is_online, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, 1, ?, ?)`,
		d.ID, d.OwnerID, nullString(d.RoomID), d.Name, string(d.Type), d.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// GetByID retrieves an active device by ID, scoped to its owner.
func (r *SQLiteRepository) GetByID(ctx context.Context, id, ownerID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ? AND owner_id = ? AND is_active = 1",
		id, ownerID,
	)
	return scanDevice(row)
}

// GetByIDAnyState retrieves a device regardless of its is_active flag.
// Scene execution uses this so a soft-deleted device can be reinstated.
func (r *SQLiteRepository) GetByIDAnyState(ctx context.Context, id, ownerID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	return scanDevice(row)
}

// List returns all active devices for an owner, ordered by name.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]Device, error) {
	return r.queryDevices(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE owner_id = ? AND is_active = 1 ORDER BY name ASC",
		ownerID)
}

// ListByRoom returns the active devices in a room, scoped to the owner.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID, ownerID string) ([]Device, error) {
	return r.queryDevices(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE room_id = ? AND owner_id = ? AND is_active = 1 ORDER BY name ASC",
		roomID, ownerID)
}

// ListByIDs returns the active devices matching the given IDs, scoped to
// the owner. IDs that do not match simply produce no row.
func (r *SQLiteRepository) ListByIDs(ctx context.Context, ids []string, ownerID string) ([]Device, error) {
	if len(ids) == 0 {
		return []Device{}, nil
	}

	query := "SELECT " + deviceColumns + " FROM devices WHERE owner_id = ? AND is_active = 1 AND id IN (?" +
		repeatPlaceholder(len(ids)-1) + ")"
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}

	return r.queryDevices(ctx, query, args...)
}

// Update modifies a device's mutable fields (name, type, room), scoped
// to its owner.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, type = ?, room_id = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_active = 1`,
		d.Name, string(d.Type), nullString(d.RoomID), now, d.ID, d.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}
	return requireRow(result)
}

// Delete soft-deletes a device, scoped to its owner. A later ApplyState
// on the device reinstates it.
func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET is_active = 0, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
		now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRow(result)
}

// SetStatus writes a device's status and online flag, scoped to its
// owner. Active devices only; the direct path does not reinstate.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id, ownerID, status string, isOnline bool) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = ?, is_online = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_active = 1`,
		status, boolToInt(isOnline), now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("setting device status: %w", err)
	}
	return requireRow(result)
}

// ApplyState writes a device's status and reinstates the device if it
// was soft-deleted. This is the scene-execution write path.
func (r *SQLiteRepository) ApplyState(ctx context.Context, id, ownerID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = ?, is_active = 1, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		status, now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("applying device state: %w", err)
	}
	return requireRow(result)
}

// CompareAndSwapStatus sets status to `to` only if it still equals
// `from`. Returns false without error when the condition no longer
// holds (or the device is missing).
func (r *SQLiteRepository) CompareAndSwapStatus(ctx context.Context, id, ownerID, from, to string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND status = ? AND is_active = 1`,
		to, now, id, ownerID, from,
	)
	if err != nil {
		return false, fmt.Errorf("swapping device status: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return rows > 0, nil
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var d Device
	var roomID sql.NullString
	var typ string
	var isOnline, isActive int
	var createdAt, updatedAt string

	err := s.Scan(&d.ID, &d.OwnerID, &roomID, &d.Name, &typ, &d.Status,
		&isOnline, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}

	d.Type = Type(typ)
	d.IsOnline = isOnline != 0
	d.IsActive = isActive != 0
	if roomID.Valid {
		d.RoomID = roomID.String
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// Helper functions.

func requireRow(result sql.Result) error {
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func repeatPlaceholder(n int) string {
	return strings.Repeat(", ?", n)
}
