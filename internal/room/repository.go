package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for room persistence. All read and
// write operations are scoped to an owner; a mismatched owner behaves
// exactly like a missing room.
type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id, ownerID string) (*Room, error)
	List(ctx context.Context, ownerID string) ([]Room, error)
	Update(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id, ownerID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed room repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const roomColumns = "id, owner_id, name, description, floor, is_active, created_at, updated_at"

// Create inserts a new room. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rm *Room) error {
	if !IsValidName(rm.Name) {
		return ErrInvalidName
	}
	if rm.ID == "" {
		rm.ID = "rom-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rm.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	rm.UpdatedAt = rm.CreatedAt
	rm.IsActive = true

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (id, owner_id, name, description, floor, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		rm.ID, rm.OwnerID, rm.Name, rm.Description, rm.Floor, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}
	return nil
}

// GetByID retrieves an active room by ID, scoped to its owner.
func (r *SQLiteRepository) GetByID(ctx context.Context, id, ownerID string) (*Room, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ? AND owner_id = ? AND is_active = 1",
		id, ownerID,
	)
	rm, err := scanRoom(row)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// List returns all active rooms for an owner, ordered by floor then name.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE owner_id = ? AND is_active = 1 ORDER BY floor ASC, name ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

// Update modifies a room's mutable fields (name, description, floor),
// scoped to its owner.
func (r *SQLiteRepository) Update(ctx context.Context, rm *Room) error {
	if !IsValidName(rm.Name) {
		return ErrInvalidName
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rm.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, description = ?, floor = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_active = 1`,
		rm.Name, rm.Description, rm.Floor, now, rm.ID, rm.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a room, scoped to its owner. Devices assigned to
// the room keep their room_id; they simply point at an inactive room.
func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET is_active = 0, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
		now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(s scanner) (*Room, error) {
	var rm Room
	var isActive int
	var createdAt, updatedAt string

	err := s.Scan(&rm.ID, &rm.OwnerID, &rm.Name, &rm.Description, &rm.Floor,
		&isActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}

	rm.IsActive = isActive != 0
	rm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rm.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rm, nil
}
