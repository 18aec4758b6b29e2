package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/daily3me/daily3/internal/model"
)

// newTestDB returns a fresh in-memory database with migrations applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:          username,
		CreatedAtProvider: time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC),
		AccessToken:       "access-" + username,
		RefreshToken:      "refresh-" + username,
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPost(t *testing.T, db *DB, username string, postedAt time.Time) *model.Post {
	t.Helper()
	post := &model.Post{
		Username: username,
		PostedAt: postedAt,
		Item1:    "slept well",
		Item2:    "coded",
		Item3:    "read",
	}
	if err := db.Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	// A second run must find every version applied and do nothing.
	if err := db.migrate(context.Background()); err != nil {
		t.Fatalf("migrate() second run error = %v", err)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
