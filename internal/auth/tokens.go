package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/model"
)

// ErrNoTokens means the user has no usable token pair on record, either
// because none was stored or because it was sealed under a different key.
var ErrNoTokens = errors.New("auth: no stored tokens")

// TokenWriter is the part of repository.UserRepository the store writes to.
type TokenWriter interface {
	UpdateTokens(ctx context.Context, username, accessToken, refreshToken string) error
}

// TokenStore keeps a user's reddit access/refresh pair on the User row,
// sealed at rest.
type TokenStore struct {
	users  TokenWriter
	sealer *Sealer
}

func NewTokenStore(users TokenWriter, sealer *Sealer) *TokenStore {
	return &TokenStore{users: users, sealer: sealer}
}

// Seal returns the column values for tok.
func (s *TokenStore) Seal(tok *oauth2.Token) (access, refresh string, err error) {
	if tok == nil {
		return "", "", nil
	}
	if access, err = s.sealer.Seal(tok.AccessToken); err != nil {
		return "", "", err
	}
	if refresh, err = s.sealer.Seal(tok.RefreshToken); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Open returns the token pair stored on user. The expiry is unknown, so the
// returned token is treated as valid until reddit says otherwise.
func (s *TokenStore) Open(user *model.User) (*oauth2.Token, error) {
	if user == nil || (user.AccessToken == "" && user.RefreshToken == "") {
		return nil, ErrNoTokens
	}

	access, err := s.sealer.Open(user.AccessToken)
	if err != nil {
		return nil, ErrNoTokens
	}
	refresh, err := s.sealer.Open(user.RefreshToken)
	if err != nil {
		return nil, ErrNoTokens
	}

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Save replaces the stored pair for username. Only the token columns change.
func (s *TokenStore) Save(ctx context.Context, username string, tok *oauth2.Token) error {
	access, refresh, err := s.Seal(tok)
	if err != nil {
		return err
	}
	if err := s.users.UpdateTokens(ctx, username, access, refresh); err != nil {
		return fmt.Errorf("auth: saving tokens for %s: %w", username, err)
	}
	return nil
}
