package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository is the persistence surface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// userColumns is the SELECT column list every user query shares, kept in
// one place so scanUserRow stays in sync with it.
const userColumns = "id, username, password_hash, is_active, created_at, updated_at"

// SQLiteUserRepository stores accounts in the users table.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps db in a SQLite-backed account store.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts an account, minting an ID when the caller left it blank.
// A username collision maps to ErrUsernameExists.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)`,
		user.ID, user.Username, user.PasswordHash,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetByID looks an account up by ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUserRow(row)
}

// GetByUsername looks an account up by username. Login resolves the
// caller through this before checking the password.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUserRow(row)
}

// UpdatePassword swaps the stored hash for id.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.touch(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now().UTC().Format(time.RFC3339), id)
}

// Deactivate disables an account. Login fails afterwards, but the rooms,
// devices and scenes the account owns stay where they are.
func (r *SQLiteUserRepository) Deactivate(ctx context.Context, id string) error {
	return r.touch(ctx,
		"UPDATE users SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), id)
}

// Count reports how many accounts exist, active or not.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

// touch runs an UPDATE that must hit exactly one row, translating a miss
// into ErrUserNotFound.
func (r *SQLiteUserRepository) touch(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // always succeeds on SQLite
		return ErrUserNotFound
	}
	return nil
}

// scanUserRow maps one row in userColumns order onto a User.
func scanUserRow(row *sql.Row) (*User, error) {
	var (
		u        User
		active   int
		created  string
		modified string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &active, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.IsActive = active != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)  //nolint:errcheck // stored by us in RFC3339
	u.UpdatedAt, _ = time.Parse(time.RFC3339, modified) //nolint:errcheck // stored by us in RFC3339

	return &u, nil
}
