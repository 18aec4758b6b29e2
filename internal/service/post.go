package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/cache"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

// MaxItemLength is the longest accepted item, in characters.
const MaxItemLength = 500

// PostInput is the form submitted from the user panel.
type PostInput struct {
	Item1 string `validate:"required,max=500"`
	Item2 string `validate:"required,max=500"`
	Item3 string `validate:"required,max=500"`
}

// Publishing publishes a post to reddit.
type Publishing interface {
	Publish(ctx context.Context, username string, tok *oauth2.Token, post *model.Post) PublishResult
}

// TokenKeeper opens and saves a user's reddit tokens.
type TokenKeeper interface {
	Open(user *model.User) (*oauth2.Token, error)
	Save(ctx context.Context, username string, tok *oauth2.Token) error
}

// PostService creates posts and publishes them to reddit.
type PostService struct {
	posts     repository.PostRepository
	feed      cache.Cache[[]model.Post]
	publisher Publishing
	tokens    TokenKeeper
	validate  *validator.Validate
	logger    *slog.Logger

	// persistRefreshed writes a token pair refreshed during publishing back
	// to the user row. When false the refreshed pair is used for this
	// request only.
	persistRefreshed bool
}

func NewPostService(
	posts repository.PostRepository,
	feed cache.Cache[[]model.Post],
	publisher Publishing,
	tokens TokenKeeper,
	persistRefreshed bool,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:            posts,
		feed:             feed,
		publisher:        publisher,
		tokens:           tokens,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		logger:           logger,
		persistRefreshed: persistRefreshed,
	}
}

// Create validates in, publishes it to reddit and stores it.
//
// The post is stored whatever the publish outcome; SourceLink is only set
// when publishing succeeded. The returned PublishResult carries the flash
// message, if any. An error means nothing was stored.
func (s *PostService) Create(ctx context.Context, user *model.User, in PostInput) (*model.Post, PublishResult, error) {
	if user == nil {
		return nil, PublishResult{}, apperror.Unauthorized("login required to post")
	}

	in.Item1 = strings.TrimSpace(in.Item1)
	in.Item2 = strings.TrimSpace(in.Item2)
	in.Item3 = strings.TrimSpace(in.Item3)
	if err := s.validateInput(in); err != nil {
		return nil, PublishResult{}, err
	}

	post := &model.Post{
		Username: user.Username,
		Item1:    in.Item1,
		Item2:    in.Item2,
		Item3:    in.Item3,
	}

	tok, err := s.tokens.Open(user)
	if err != nil {
		s.logger.Warn("no usable reddit tokens", slog.String("username", user.Username), slog.Any("error", err))
		tok = nil
	}

	result := s.publisher.Publish(ctx, user.Username, tok, post)
	post.SourceLink = result.Link

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, result, fmt.Errorf("service/post: storing post for %s: %w", user.Username, err)
	}
	if err := s.feed.Delete(FeedCacheKey); err != nil {
		s.logger.Warn("invalidating feed cache", slog.Any("error", err))
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("username", user.Username),
		slog.String("publish", result.Status.String()),
	)

	if result.RefreshedToken != nil && s.persistRefreshed {
		if err := s.tokens.Save(ctx, user.Username, result.RefreshedToken); err != nil {
			s.logger.Error("saving refreshed tokens", slog.String("username", user.Username), slog.Any("error", err))
		}
	}

	return post, result, nil
}

func (s *PostService) validateInput(in PostInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("service/post: validating input: %w", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.ValidationFailed(field, "all three items are required")
	case "max":
		return apperror.ValidationFailed(field, fmt.Sprintf("items must be at most %d characters", MaxItemLength))
	default:
		return apperror.ValidationFailed(field, "invalid item")
	}
}
