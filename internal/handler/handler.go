// Package handler contains the HTTP handlers of Daily3.
//
// HANDLER RESPONSIBILITIES:
//  1. Read the request (path params, form values, the resolved Visitor)
//  2. Call the service layer
//  3. Render a page, a fragment or a plain-text reply
//
// Handlers never touch the database or reddit directly. The current user
// is read once per request with auth.VisitorFromContext and then passed
// explicitly to the services.
package handler

import (
	"context"
	"log/slog"

	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/service"
)

// FeedQuerier serves the read-only pages.
type FeedQuerier interface {
	Home(ctx context.Context, viewer *model.User) ([]model.PostView, error)
	Profile(ctx context.Context, username string, viewer *model.User) (*model.User, []model.PostView, error)
	Favorites(ctx context.Context, viewer *model.User) ([]model.PostView, error)
}

// PostCreator creates and publishes posts.
type PostCreator interface {
	Create(ctx context.Context, user *model.User, in service.PostInput) (*model.Post, service.PublishResult, error)
}

// FavoriteToggler flips favorites.
type FavoriteToggler interface {
	Toggle(ctx context.Context, user *model.User, postID string) (model.ToggleAction, error)
}

// LoginCompleter finishes the OAuth login.
type LoginCompleter interface {
	CompleteLogin(ctx context.Context, code string) (*model.User, error)
}

// Pinger reports datastore health for the warmup route.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of Handler.
type Deps struct {
	Feed      FeedQuerier
	Posts     PostCreator
	Favorites FavoriteToggler
	Logins    LoginCompleter
	Pinger    Pinger
	Renderer  *Renderer
	GAID      string
	Logger    *slog.Logger
}

// Handler serves every Daily3 route.
type Handler struct {
	feed      FeedQuerier
	posts     PostCreator
	favorites FavoriteToggler
	logins    LoginCompleter
	pinger    Pinger
	render    *Renderer
	gaID      string
	logger    *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		feed:      d.Feed,
		posts:     d.Posts,
		favorites: d.Favorites,
		logins:    d.Logins,
		pinger:    d.Pinger,
		render:    d.Renderer,
		gaID:      d.GAID,
		logger:    d.Logger,
	}
}
