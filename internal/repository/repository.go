// Package repository declares the datastore contracts used by the services.
// The only production implementation lives in repository/sqlite; tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/daily3me/daily3/internal/model"
)

// ListOptions bounds a list query. A zero Limit means the default.
type ListOptions struct {
	Limit int
}

// UserRepository stores reddit accounts keyed by username.
type UserRepository interface {
	// Upsert inserts the user, or updates the token columns if the username
	// already exists. CreatedAtLocal and CreatedAtProvider are never
	// overwritten on update. The stored record is copied back into user.
	Upsert(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateTokens(ctx context.Context, username, accessToken, refreshToken string) error
}

// PostRepository stores Daily3 posts. Posts are immutable once created.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByIDs(ctx context.Context, ids []string) ([]model.Post, error)
	// Recent returns posts newest first.
	Recent(ctx context.Context, opts ListOptions) ([]model.Post, error)
	ListByUser(ctx context.Context, username string) ([]model.Post, error)
	// GetForDate returns the user's post for a calendar date (model.DateLayout)
	// or apperror.ErrNotFound.
	GetForDate(ctx context.Context, username, date string) (*model.Post, error)
}

// FavoriteRepository stores the (user, post) favorite join.
type FavoriteRepository interface {
	// Toggle removes the favorite if present, otherwise creates it. It runs
	// in one transaction against a UNIQUE(user, post) constraint.
	Toggle(ctx context.Context, username, postID string) (model.ToggleAction, error)
	// PostIDs returns the ids of every post the user favorited, newest
	// favorite first.
	PostIDs(ctx context.Context, username string) ([]string, error)
}
