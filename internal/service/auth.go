package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

// CodeExchanger completes the OAuth authorization code grant.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// TokenSealer turns a token pair into the values stored on the user row.
type TokenSealer interface {
	Seal(tok *oauth2.Token) (access, refresh string, err error)
}

// AuthService completes reddit logins.
//
//	AuthHandler → AuthService → CodeExchanger (reddit token endpoint)
//	                          → RedditAPI.Me   (who is this?)
//	                          → UserRepository (upsert)
type AuthService struct {
	users    repository.UserRepository
	exchange CodeExchanger
	newAPI   APIFactory
	sealer   TokenSealer
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	exchange CodeExchanger,
	newAPI APIFactory,
	sealer TokenSealer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		exchange: exchange,
		newAPI:   newAPI,
		sealer:   sealer,
		logger:   logger,
	}
}

// CompleteLogin exchanges code for tokens, identifies the reddit account
// and creates or updates the User.
//
// A returning user keeps their creation dates; only the token pair is
// replaced.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, errors.New("service/auth: empty authorization code")
	}

	tok, err := s.exchange.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	acct, err := s.newAPI(ctx, tok).Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: identifying reddit account: %w", err)
	}

	access, refresh, err := s.sealer.Seal(tok)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sealing tokens: %w", err)
	}

	user := &model.User{
		Username:          acct.Name,
		CreatedAtProvider: acct.Created(),
		AccessToken:       access,
		RefreshToken:      refresh,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", acct.Name, err)
	}

	s.logger.Info("user logged in via reddit", slog.String("username", user.Username))
	return user, nil
}
