package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for scene persistence. Writes that
// touch bindings are transactional: the scene row, its binding rows and
// the device-ownership checks commit or roll back together.
type Repository interface {
	CreateWithBindings(ctx context.Context, s *Scene, bindings []Binding) error
	ReplaceWithBindings(ctx context.Context, s *Scene, bindings []Binding) error
	GetByID(ctx context.Context, id, ownerID string) (*Scene, error)
	List(ctx context.Context, ownerID string) ([]Scene, error)
	ListBindings(ctx context.Context, sceneID string) ([]Binding, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed scene repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sceneColumns = "id, owner_id, name, description, icon, position, is_active, created_at, updated_at"

// CreateWithBindings inserts a scene and its bindings in one
// transaction. Every binding's device must belong to the scene's owner;
// the first miss aborts the transaction with ErrDeviceNotFound and
// nothing persists.
func (r *SQLiteRepository) CreateWithBindings(ctx context.Context, s *Scene, bindings []Binding) error {
	if s.ID == "" {
		s.ID = "scn-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	s.UpdatedAt = s.CreatedAt
	s.IsActive = true

	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO scenes (id, owner_id, name, description, icon, position, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			s.ID, s.OwnerID, s.Name, s.Description, s.Icon, s.Position, now, now,
		)
		if err != nil {
			return fmt.Errorf("creating scene: %w", err)
		}

		return r.insertBindings(ctx, tx, s.ID, s.OwnerID, bindings)
	})
}

// ReplaceWithBindings updates a scene's fields and replaces its entire
// binding set in one transaction. An empty set leaves the scene with
// zero bindings. Owner scoping applies: a foreign scene reads as
// missing and nothing is written.
func (r *SQLiteRepository) ReplaceWithBindings(ctx context.Context, s *Scene, bindings []Binding) error {
	now := time.Now().UTC().Format(time.RFC3339)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE scenes SET name = ?, description = ?, icon = ?, position = ?, updated_at = ?
			 WHERE id = ? AND owner_id = ? AND is_active = 1`,
			s.Name, s.Description, s.Icon, s.Position, now, s.ID, s.OwnerID,
		)
		if err != nil {
			return fmt.Errorf("updating scene: %w", err)
		}
		rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
		if rows == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM scene_bindings WHERE scene_id = ?", s.ID); err != nil {
			return fmt.Errorf("clearing scene bindings: %w", err)
		}

		return r.insertBindings(ctx, tx, s.ID, s.OwnerID, bindings)
	})
}

// insertBindings validates and inserts the binding rows inside tx.
// Device checks are owner-scoped but deliberately ignore is_active so a
// scene can be composed over a soft-deleted device (execution later
// reinstates it).
func (r *SQLiteRepository) insertBindings(ctx context.Context, tx *sql.Tx, sceneID, ownerID string, bindings []Binding) error {
	now := time.Now().UTC().Format(time.RFC3339)

	for i := range bindings {
		b := &bindings[i]

		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM devices WHERE id = ? AND owner_id = ?",
			b.DeviceID, ownerID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking bound device: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, b.DeviceID)
		}

		if b.ID == "" {
			b.ID = "bnd-" + uuid.NewString()[:8]
		}
		b.SceneID = sceneID
		b.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

		_, err = tx.ExecContext(ctx,
			`INSERT INTO scene_bindings (id, scene_id, device_id, target_state, target_value, position, is_active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
			b.ID, sceneID, b.DeviceID, b.TargetState, nullString(b.TargetValue), b.Position, now,
		)
		if err != nil {
			return fmt.Errorf("creating scene binding: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an active scene with its bindings, scoped to its
// owner.
func (r *SQLiteRepository) GetByID(ctx context.Context, id, ownerID string) (*Scene, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sceneColumns+" FROM scenes WHERE id = ? AND owner_id = ? AND is_active = 1",
		id, ownerID,
	)
	s, err := scanScene(row)
	if err != nil {
		return nil, err
	}

	s.Bindings, err = r.ListBindings(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all active scenes for an owner ordered by position, with
// bindings attached.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]Scene, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sceneColumns+" FROM scenes WHERE owner_id = ? AND is_active = 1 ORDER BY position ASC, name ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	defer rows.Close()

	scenes := []Scene{}
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenes: %w", err)
	}

	for i := range scenes {
		scenes[i].Bindings, err = r.ListBindings(ctx, scenes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return scenes, nil
}

// ListBindings returns a scene's bindings ordered by position
// ascending, ties broken by id. Execution relies on this ordering.
func (r *SQLiteRepository) ListBindings(ctx context.Context, sceneID string) ([]Binding, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scene_id, device_id, target_state, target_value, position, created_at
		 FROM scene_bindings WHERE scene_id = ? AND is_active = 1
		 ORDER BY position ASC, id ASC`,
		sceneID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scene bindings: %w", err)
	}
	defer rows.Close()

	bindings := []Binding{}
	for rows.Next() {
		var b Binding
		var targetValue sql.NullString
		var createdAt string
		if err := rows.Scan(&b.ID, &b.SceneID, &b.DeviceID, &b.TargetState,
			&targetValue, &b.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning scene binding: %w", err)
		}
		if targetValue.Valid {
			b.TargetValue = targetValue.String
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		bindings = append(bindings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene bindings: %w", err)
	}
	return bindings, nil
}

// Delete soft-deletes a scene, scoped to its owner. Binding rows stay
// in place; they become unreachable through the inactive scene.
func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE scenes SET is_active = 0, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
		now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting scene: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanScene(s scanner) (*Scene, error) {
	var sc Scene
	var isActive int
	var createdAt, updatedAt string

	err := s.Scan(&sc.ID, &sc.OwnerID, &sc.Name, &sc.Description, &sc.Icon,
		&sc.Position, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning scene: %w", err)
	}

	sc.IsActive = isActive != 0
	sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	sc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &sc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
