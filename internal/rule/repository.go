package rule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for automation rule persistence.
// Owner-scoped like every other resource store.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, id, ownerID string) (*Rule, error)
	List(ctx context.Context, ownerID string) ([]Rule, error)
	Update(ctx context.Context, r *Rule) error
	SetEnabled(ctx context.Context, id, ownerID string, enabled bool) error
	Delete(ctx context.Context, id, ownerID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed rule repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const ruleColumns = "id, owner_id, name, device_id, condition, action, is_enabled, is_active, created_at, updated_at"

// Create inserts a new rule. The ID is generated if empty; rules start
// enabled.
func (r *SQLiteRepository) Create(ctx context.Context, ru *Rule) error {
	if !IsValidName(ru.Name) {
		return ErrInvalidName
	}
	if ru.ID == "" {
		ru.ID = "rul-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ru.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	ru.UpdatedAt = ru.CreatedAt
	ru.IsEnabled = true
	ru.IsActive = true

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO automation_rules (id, owner_id, name, device_id, condition, action, is_enabled, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, 1, ?, ?)`,
		ru.ID, ru.OwnerID, ru.Name, ru.DeviceID, ru.Condition, ru.Action, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}
	return nil
}

// GetByID retrieves an active rule by ID, scoped to its owner.
func (r *SQLiteRepository) GetByID(ctx context.Context, id, ownerID string) (*Rule, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM automation_rules WHERE id = ? AND owner_id = ? AND is_active = 1",
		id, ownerID,
	)
	return scanRule(row)
}

// List returns all active rules for an owner, ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]Rule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM automation_rules WHERE owner_id = ? AND is_active = 1 ORDER BY created_at ASC, id ASC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		ru, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *ru)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

// Update modifies a rule's mutable fields, scoped to its owner.
func (r *SQLiteRepository) Update(ctx context.Context, ru *Rule) error {
	if !IsValidName(ru.Name) {
		return ErrInvalidName
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ru.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET name = ?, device_id = ?, condition = ?, action = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_active = 1`,
		ru.Name, ru.DeviceID, ru.Condition, ru.Action, now, ru.ID, ru.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}
	return requireRow(result)
}

// SetEnabled flips a rule's enabled flag, scoped to its owner.
func (r *SQLiteRepository) SetEnabled(ctx context.Context, id, ownerID string, enabled bool) error {
	now := time.Now().UTC().Format(time.RFC3339)

	v := 0
	if enabled {
		v = 1
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET is_enabled = ?, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
		v, now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("toggling rule: %w", err)
	}
	return requireRow(result)
}

// Delete soft-deletes a rule, scoped to its owner.
func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE automation_rules SET is_active = 0, updated_at = ? WHERE id = ? AND owner_id = ? AND is_active = 1`,
		now, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
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

func scanRule(s scanner) (*Rule, error) {
	var ru Rule
	var isEnabled, isActive int
	var createdAt, updatedAt string

	err := s.Scan(&ru.ID, &ru.OwnerID, &ru.Name, &ru.DeviceID, &ru.Condition,
		&ru.Action, &isEnabled, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning rule: %w", err)
	}

	ru.IsEnabled = isEnabled != 0
	ru.IsActive = isActive != 0
	ru.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	ru.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &ru, nil
}
