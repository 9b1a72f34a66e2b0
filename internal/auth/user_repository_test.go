package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	u := seedUser(t, repo, "morgan")

	if u.ID == "" {
		t.Fatal("Create() left ID empty")
	}

	got, err := repo.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "morgan" {
		t.Errorf("Username = %q, want morgan", got.Username)
	}
	if !got.IsActive {
		t.Error("new accounts should start active")
	}
	if got.PasswordHash != u.PasswordHash {
		t.Error("stored hash does not round-trip")
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	u := seedUser(t, repo, "quinn")

	got, err := repo.GetByUsername(context.Background(), "quinn")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}

	if _, err := repo.GetByUsername(context.Background(), "nobody-here"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown username: error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	seedUser(t, repo, "taken")

	err := repo.Create(context.Background(), &User{Username: "taken", PasswordHash: "x"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("second Create() error = %v, want ErrUsernameExists", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	u := seedUser(t, repo, "rotator")

	newHash, err := HashPassword("fresh-passphrase")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), u.ID, newHash); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash != newHash {
		t.Error("hash was not replaced")
	}

	if err := repo.UpdatePassword(context.Background(), "usr-ghost", newHash); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Deactivate(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	u := seedUser(t, repo, "departing")

	if err := repo.Deactivate(context.Background(), u.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.IsActive {
		t.Error("account still active after Deactivate")
	}

	if err := repo.Deactivate(context.Background(), "usr-ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Count(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("Count() = %d on empty table, want 0", n)
	}

	for _, name := range []string{"ada", "grace", "edsger"} {
		seedUser(t, repo, name)
	}

	n, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
