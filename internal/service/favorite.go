package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

type FavoriteService struct {
	favorites repository.FavoriteRepository
	logger    *slog.Logger
}

func NewFavoriteService(favorites repository.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, logger: logger}
}

// Toggle adds postID to the user's favorites, or removes it if it is
// already there. Unknown posts return apperror.ErrNotFound.
func (s *FavoriteService) Toggle(ctx context.Context, user *model.User, postID string) (model.ToggleAction, error) {
	if user == nil {
		return 0, apperror.Unauthorized("login required to favorite")
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return 0, apperror.ValidationFailed("post_id", "post id is required")
	}

	action, err := s.favorites.Toggle(ctx, user.Username, postID)
	if err != nil {
		return 0, fmt.Errorf("service/favorite: toggling %s for %s: %w", postID, user.Username, err)
	}

	s.logger.Info("favorite toggled",
		slog.String("username", user.Username),
		slog.String("postID", postID),
		slog.String("action", action.String()),
	)
	return action, nil
}
