package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================

type fakeUsers struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	return u, nil
}

type fakeDailyPosts struct {
	posts map[string]*model.Post // key: username + "@" + date
}

func (f *fakeDailyPosts) GetForDate(_ context.Context, username, date string) (*model.Post, error) {
	p, ok := f.posts[username+"@"+date]
	if !ok {
		return nil, apperror.NotFound("post", username+"@"+date)
	}
	return p, nil
}

type fakeLogin struct{}

func (fakeLogin) AuthURL(state string) string {
	return "https://www.reddit.com/api/v1/authorize?state=" + state
}

var fixedNow = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T) (*Resolver, *fakeUsers) {
	t.Helper()
	users := &fakeUsers{users: map[string]*model.User{
		"spez": {Username: "spez"},
	}}
	posts := &fakeDailyPosts{posts: map[string]*model.Post{
		"spez@2024-03-09": {ID: "p1", Username: "spez", Item1: "slept well"},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	res := NewResolver(newTestSigner(t), users, posts, fakeLogin{}, logger)
	res.now = func() time.Time { return fixedNow }
	return res, users
}

func requestWithIdentity(t *testing.T, s *Signer, username string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	value, err := s.SignIdentity(username)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: IdentityCookie, Value: value})
	return r
}

// =========================================================================
// RESOLVE
// =========================================================================

func TestResolve_Anonymous(t *testing.T) {
	res, _ := newTestResolver(t)
	sess := &Session{}

	v := res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), sess)

	assert.False(t, v.Authenticated())
	assert.Empty(t, v.Username)
	require.NotEmpty(t, sess.State)
	assert.True(t, v.StateIssued)
	assert.Equal(t, "https://www.reddit.com/api/v1/authorize?state="+sess.State, v.LoginURL)
}

func TestResolve_ReusesState(t *testing.T) {
	res, _ := newTestResolver(t)
	sess := &Session{State: "existing-nonce"}

	v := res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), sess)

	assert.Equal(t, "existing-nonce", sess.State)
	assert.False(t, v.StateIssued)
	assert.Contains(t, v.LoginURL, "state=existing-nonce")
}

func TestResolve_SessionUser(t *testing.T) {
	res, _ := newTestResolver(t)

	v := res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), &Session{User: "spez"})

	require.True(t, v.Authenticated())
	assert.Equal(t, "spez", v.User.Username)
	assert.Empty(t, v.LoginURL)
	require.NotNil(t, v.Today)
	assert.Equal(t, "p1", v.Today.ID)
}

func TestResolve_IdentityCookie(t *testing.T) {
	res, _ := newTestResolver(t)
	sess := &Session{}

	v := res.Resolve(requestWithIdentity(t, res.signer, "spez"), sess)

	require.True(t, v.Authenticated())
	assert.Equal(t, "spez", v.User.Username)
	assert.Equal(t, "spez", sess.User, "cookie identity is copied into the session")
}

func TestResolve_TamperedIdentityCookie(t *testing.T) {
	res, _ := newTestResolver(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	value, _ := res.signer.SignIdentity("spez")
	r.AddCookie(&http.Cookie{Name: IdentityCookie, Value: tamperSegment(value, 2)})

	v := res.Resolve(r, &Session{})

	assert.False(t, v.Authenticated())
	assert.Empty(t, v.Username)
	assert.NotEmpty(t, v.LoginURL)
}

func TestResolve_UnknownUser(t *testing.T) {
	res, _ := newTestResolver(t)

	v := res.Resolve(requestWithIdentity(t, res.signer, "ghost"), &Session{})

	assert.False(t, v.Authenticated())
	assert.Equal(t, "ghost", v.Username)
	assert.NotEmpty(t, v.LoginURL)
}

func TestResolve_NoPostToday(t *testing.T) {
	res, _ := newTestResolver(t)
	res.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }

	v := res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), &Session{User: "spez"})

	assert.True(t, v.Authenticated())
	assert.Nil(t, v.Today)
}

func TestResolve_LookupErrorIsAnonymous(t *testing.T) {
	res, users := newTestResolver(t)
	users.err = errors.New("database is locked")

	v := res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), &Session{User: "spez"})

	assert.False(t, v.Authenticated())
	assert.NotEmpty(t, v.LoginURL)
}

func TestResolve_LogoutFlag(t *testing.T) {
	res, _ := newTestResolver(t)
	sess := &Session{Logout: true}

	v := res.Resolve(requestWithIdentity(t, res.signer, "spez"), sess)

	assert.False(t, v.Authenticated())
	assert.Empty(t, sess.User)
}

func TestResolve_Beta(t *testing.T) {
	res, _ := newTestResolver(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: BetaCookie, Value: "1"})
	sess := &Session{}
	v := res.Resolve(r, sess)
	assert.True(t, v.Beta)
	assert.True(t, sess.Beta)

	v = res.Resolve(httptest.NewRequest(http.MethodGet, "/", nil), &Session{Beta: true, BetaOff: true})
	assert.False(t, v.Beta)
}
