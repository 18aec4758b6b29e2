package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/cache"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

// FeedCacheKey is the single cache slot holding the home feed. It is
// deleted whenever a post is created.
const FeedCacheKey = "posts"

// DefaultFeedSize is how many posts the home feed shows.
const DefaultFeedSize = 50

// FeedService answers the read-only page queries: home feed, profiles and
// favorites. Every result is annotated for the viewer, who may be nil.
type FeedService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	favorites repository.FavoriteRepository
	feed      cache.Cache[[]model.Post]
	size      int
	logger    *slog.Logger
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	favorites repository.FavoriteRepository,
	feed cache.Cache[[]model.Post],
	size int,
	logger *slog.Logger,
) *FeedService {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &FeedService{
		posts:     posts,
		users:     users,
		favorites: favorites,
		feed:      feed,
		size:      size,
		logger:    logger,
	}
}

// Home returns the newest posts. The post list is served from the cache
// when present; the cached slice is never modified.
func (s *FeedService) Home(ctx context.Context, viewer *model.User) ([]model.PostView, error) {
	posts, err := s.feed.Get(FeedCacheKey)
	if errors.Is(err, cache.ErrMiss) {
		posts, err = s.posts.Recent(ctx, repository.ListOptions{Limit: s.size})
		if err != nil {
			return nil, fmt.Errorf("service/feed: loading recent posts: %w", err)
		}
		if err := s.feed.Set(FeedCacheKey, posts); err != nil {
			s.logger.Warn("filling feed cache", slog.Any("error", err))
		}
		s.logger.Debug("feed cache refilled", slog.Int("posts", len(posts)))
	} else if err != nil {
		return nil, fmt.Errorf("service/feed: reading feed cache: %w", err)
	}

	return s.annotate(ctx, posts, viewer)
}

// Profile returns a user and all their posts, newest first. An unknown
// username yields apperror.ErrNotFound.
func (s *FeedService) Profile(ctx context.Context, username string, viewer *model.User) (*model.User, []model.PostView, error) {
	profile, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.posts.ListByUser(ctx, profile.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("service/feed: listing posts of %s: %w", username, err)
	}

	views, err := s.annotate(ctx, posts, viewer)
	if err != nil {
		return nil, nil, err
	}
	return profile, views, nil
}

// Favorites returns every post the viewer favorited, most recently
// favorited first.
func (s *FeedService) Favorites(ctx context.Context, viewer *model.User) ([]model.PostView, error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("login required to list favorites")
	}

	ids, err := s.favorites.PostIDs(ctx, viewer.Username)
	if err != nil {
		return nil, fmt.Errorf("service/feed: listing favorites of %s: %w", viewer.Username, err)
	}
	posts, err := s.posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service/feed: loading favorite posts: %w", err)
	}

	views := make([]model.PostView, len(posts))
	for i, p := range posts {
		views[i] = model.PostView{Post: p, Faved: true}
	}
	return views, nil
}

// annotate copies posts into views and marks the viewer's favorites using
// one lookup of the viewer's favorite set.
func (s *FeedService) annotate(ctx context.Context, posts []model.Post, viewer *model.User) ([]model.PostView, error) {
	views := make([]model.PostView, len(posts))
	for i, p := range posts {
		views[i] = model.PostView{Post: p}
	}
	if viewer == nil || len(posts) == 0 {
		return views, nil
	}

	ids, err := s.favorites.PostIDs(ctx, viewer.Username)
	if err != nil {
		return nil, fmt.Errorf("service/feed: loading favorites of %s: %w", viewer.Username, err)
	}
	faved := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		faved[id] = struct{}{}
	}

	for i := range views {
		_, views[i].Faved = faved[views[i].ID]
	}
	return views, nil
}
