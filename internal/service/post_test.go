package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/auth"
	"github.com/daily3me/daily3/internal/reddit"
)

func TestPostService_CreatePublishedInvalidatesFeed(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "spez")
	feedCache := newFeedCache()
	feed := NewFeedService(db, db, db, feedCache, 50, discardLogger())

	// Warm the cache with the empty feed.
	views, err := feed.Home(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, views)
	require.Equal(t, 1, feedCache.Len())

	pub := &stubPublisher{result: PublishResult{Status: Published, Link: "https://redd.it/abc"}}
	svc := NewPostService(db, feedCache, pub, &fakeTokenKeeper{token: testToken}, false, discardLogger())

	post, res, err := svc.Create(context.Background(), user, PostInput{Item1: "  slept well ", Item2: "coded", Item3: "read"})
	require.NoError(t, err)

	assert.Equal(t, Published, res.Status)
	assert.Equal(t, "https://redd.it/abc", post.SourceLink)
	assert.Equal(t, "slept well", post.Item1, "items are trimmed")
	assert.Same(t, testToken, pub.token)
	assert.Equal(t, 0, feedCache.Len(), "feed slot deleted")

	views, err = feed.Home(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, post.ID, views[0].ID)
	assert.Equal(t, [3]string{"slept well", "coded", "read"}, views[0].Items())

	stored, err := db.ListByUser(context.Background(), "spez")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "exactly one post exists")
}

func TestPostService_ChallengeStillPersists(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "lowkarma")

	pub := &stubPublisher{result: PublishResult{Status: ChallengeRequired, Code: "E103", Message: CaptchaErrorText}}
	svc := NewPostService(db, newFeedCache(), pub, &fakeTokenKeeper{token: testToken}, false, discardLogger())

	post, res, err := svc.Create(context.Background(), user, PostInput{Item1: "a", Item2: "b", Item3: "c"})
	require.NoError(t, err)

	assert.Equal(t, ChallengeRequired, res.Status)
	assert.Equal(t, CaptchaErrorText, res.Message)
	assert.Empty(t, post.SourceLink)

	stored, err := db.GetByIDs(context.Background(), []string{post.ID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].SourceLink)
}

func TestPostService_Validation(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "spez")
	pub := &stubPublisher{}
	svc := NewPostService(db, newFeedCache(), pub, &fakeTokenKeeper{}, false, discardLogger())

	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"missing item1", PostInput{Item2: "b", Item3: "c"}, "item1"},
		{"blank item2", PostInput{Item1: "a", Item2: "   ", Item3: "c"}, "item2"},
		{"item3 too long", PostInput{Item1: "a", Item2: "b", Item3: strings.Repeat("x", MaxItemLength+1)}, "item3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(context.Background(), user, tt.in)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	assert.Zero(t, pub.calls, "invalid posts are never published")
	stored, err := db.ListByUser(context.Background(), "spez")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestPostService_MaxLengthCountsCharacters(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "spez")
	svc := NewPostService(db, newFeedCache(), &stubPublisher{result: PublishResult{Status: NoThread}}, &fakeTokenKeeper{}, false, discardLogger())

	// 500 multi-byte characters is more than 500 bytes but still allowed.
	_, _, err := svc.Create(context.Background(), user, PostInput{Item1: strings.Repeat("é", MaxItemLength), Item2: "b", Item3: "c"})
	assert.NoError(t, err)
}

func TestPostService_Anonymous(t *testing.T) {
	svc := NewPostService(newTestStore(t), newFeedCache(), &stubPublisher{}, &fakeTokenKeeper{}, false, discardLogger())

	_, _, err := svc.Create(context.Background(), nil, PostInput{Item1: "a", Item2: "b", Item3: "c"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestPostService_UnreadableTokensStillPersist(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "spez")
	pub := &stubPublisher{result: PublishResult{Status: AuthFailed, Code: "E102", Message: UnknownPostErrorText}}
	svc := NewPostService(db, newFeedCache(), pub, &fakeTokenKeeper{openErr: auth.ErrNoTokens}, false, discardLogger())

	post, res, err := svc.Create(context.Background(), user, PostInput{Item1: "a", Item2: "b", Item3: "c"})
	require.NoError(t, err)

	assert.Nil(t, pub.token)
	assert.Equal(t, AuthFailed, res.Status)
	assert.NotEmpty(t, post.ID)
}

func TestPostService_RefreshedTokenPersistence(t *testing.T) {
	fresh := &oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-1"}

	for _, persist := range []bool{false, true} {
		db := newTestStore(t)
		user := seedUser(t, db, "spez")
		keeper := &fakeTokenKeeper{token: testToken}
		pub := &stubPublisher{result: PublishResult{Status: Published, Link: "https://redd.it/x", RefreshedToken: fresh}}
		svc := NewPostService(db, newFeedCache(), pub, keeper, persist, discardLogger())

		_, res, err := svc.Create(context.Background(), user, PostInput{Item1: "a", Item2: "b", Item3: "c"})
		require.NoError(t, err)
		assert.Same(t, fresh, res.RefreshedToken)

		if persist {
			assert.Equal(t, []*oauth2.Token{fresh}, keeper.saved)
		} else {
			assert.Empty(t, keeper.saved)
		}
	}
}

// Items "slept well", "coded", "read" posted in thread mode while the
// subreddit has no stickied thread: the post is stored without a link and
// leads the home feed.
func TestPostService_EndToEndNoStickyThread(t *testing.T) {
	db := newTestStore(t)
	user := seedUser(t, db, "spez")
	seedPost(t, db, "spez", "yesterday", time.Now().Add(-24*time.Hour))

	api := &mockRedditAPI{}
	api.On("Me", mock.Anything).Return(&reddit.Account{Name: "spez"}, nil)
	api.On("NewLinks", mock.Anything, "mydaily3_sandbox", newLinksLimit).
		Return([]reddit.Link{{ID: "a1", Name: "t3_a1", Title: "just a post"}}, nil)

	publisher, err := NewPublisher(factoryFor(api, nil), &mockRefresher{}, "mydaily3_sandbox", ModeThread, discardLogger())
	require.NoError(t, err)

	feedCache := newFeedCache()
	feed := NewFeedService(db, db, db, feedCache, 50, discardLogger())
	_, err = feed.Home(context.Background(), user)
	require.NoError(t, err)

	svc := NewPostService(db, feedCache, publisher, &fakeTokenKeeper{token: testToken}, false, discardLogger())
	post, res, err := svc.Create(context.Background(), user, PostInput{Item1: "slept well", Item2: "coded", Item3: "read"})
	require.NoError(t, err)

	assert.Equal(t, NoThread, res.Status)
	assert.Empty(t, res.Message)
	assert.Empty(t, post.SourceLink)

	views, err := feed.Home(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, post.ID, views[0].ID)
	assert.Equal(t, "slept well", views[0].Item1)
	assert.Empty(t, views[0].SourceLink)
	api.AssertNotCalled(t, "Comment", mock.Anything, mock.Anything, mock.Anything)
}
