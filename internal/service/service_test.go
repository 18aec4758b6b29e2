package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/cache"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository/sqlite"
)

// Shared fixtures for the service tests. Repositories are real in-memory
// SQLite databases; the reddit side is faked.

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newFeedCache() *cache.Memory[[]model.Post] {
	return cache.NewMemory[[]model.Post](cache.Config{TTL: time.Hour, MaxSize: 4})
}

func seedUser(t *testing.T, db *sqlite.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, AccessToken: "sealed-a", RefreshToken: "sealed-r"}
	require.NoError(t, db.Upsert(context.Background(), u))
	return u
}

func seedPost(t *testing.T, db *sqlite.DB, username, item1 string, at time.Time) *model.Post {
	t.Helper()
	p := &model.Post{Username: username, PostedAt: at, Item1: item1, Item2: "b", Item3: "c"}
	require.NoError(t, db.Create(context.Background(), p))
	return p
}

// stubPublisher returns a canned result and records the post it was given.
type stubPublisher struct {
	result PublishResult
	calls  int
	token  *oauth2.Token
	post   model.Post
}

func (s *stubPublisher) Publish(_ context.Context, _ string, tok *oauth2.Token, post *model.Post) PublishResult {
	s.calls++
	s.token = tok
	s.post = *post
	return s.result
}

type fakeTokenKeeper struct {
	token   *oauth2.Token
	openErr error
	saved   []*oauth2.Token
}

func (f *fakeTokenKeeper) Open(*model.User) (*oauth2.Token, error) {
	return f.token, f.openErr
}

func (f *fakeTokenKeeper) Save(_ context.Context, _ string, tok *oauth2.Token) error {
	f.saved = append(f.saved, tok)
	return nil
}
