package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
)

func TestUserUpsert_NewUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "orionmelt")

	if user.CreatedAtLocal.IsZero() {
		t.Error("Upsert() did not set CreatedAtLocal")
	}
	if user.AccessToken != "access-orionmelt" {
		t.Errorf("AccessToken = %q, want %q", user.AccessToken, "access-orionmelt")
	}
}

func TestUserUpsert_ExistingUser_UpdatesTokensOnly(t *testing.T) {
	db := newTestDB(t)
	first := createTestUser(t, db, "orionmelt")

	second := &model.User{
		Username:          "orionmelt",
		CreatedAtProvider: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAtLocal:    time.Now().Add(48 * time.Hour),
		AccessToken:       "new-access",
		RefreshToken:      "new-refresh",
	}
	if err := db.Upsert(context.Background(), second); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if second.AccessToken != "new-access" || second.RefreshToken != "new-refresh" {
		t.Errorf("tokens = (%q, %q), want (new-access, new-refresh)", second.AccessToken, second.RefreshToken)
	}
	if !second.CreatedAtLocal.Equal(first.CreatedAtLocal) {
		t.Errorf("CreatedAtLocal changed on update: got %v, want %v", second.CreatedAtLocal, first.CreatedAtLocal)
	}
	if !second.CreatedAtProvider.Equal(first.CreatedAtProvider) {
		t.Errorf("CreatedAtProvider changed on update: got %v, want %v", second.CreatedAtProvider, first.CreatedAtProvider)
	}
}

func TestUserGetByUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "orionmelt")

	found, err := db.GetByUsername(context.Background(), "orionmelt")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.Username != "orionmelt" {
		t.Errorf("Username = %q, want %q", found.Username, "orionmelt")
	}
	if found.RefreshToken != "refresh-orionmelt" {
		t.Errorf("RefreshToken = %q, want %q", found.RefreshToken, "refresh-orionmelt")
	}
}

func TestUserGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdateTokens(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "orionmelt")

	if err := db.UpdateTokens(context.Background(), "orionmelt", "a2", "r2"); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	found, err := db.GetByUsername(context.Background(), "orionmelt")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.AccessToken != "a2" || found.RefreshToken != "r2" {
		t.Errorf("tokens = (%q, %q), want (a2, r2)", found.AccessToken, found.RefreshToken)
	}
}

func TestUserUpdateTokens_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateTokens(context.Background(), "nobody", "a", "r")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateTokens() error = %v, want ErrNotFound", err)
	}
}
