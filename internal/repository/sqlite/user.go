package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts a user or, when the username already exists, replaces the
// token pair only. The creation timestamps are immutable after the first
// insert; the row is read back into user so callers see the stored values.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	if user.CreatedAtLocal.IsZero() {
		user.CreatedAtLocal = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, created_at_provider, created_at_local, access_token, refresh_token)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		     access_token  = excluded.access_token,
		     refresh_token = excluded.refresh_token`,
		user.Username,
		user.CreatedAtProvider.UTC(),
		user.CreatedAtLocal.UTC(),
		user.AccessToken,
		user.RefreshToken,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.Username, err)
	}

	stored, err := db.GetByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// GetByUsername retrieves a user by key.
// Returns apperror.ErrNotFound if no user exists with that name.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var (
		u        model.User
		provider sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, created_at_provider, created_at_local, access_token, refresh_token
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&provider,
		&u.CreatedAtLocal,
		&u.AccessToken,
		&u.RefreshToken,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	if provider.Valid {
		u.CreatedAtProvider = provider.Time
	}

	return &u, nil
}

// UpdateTokens replaces the stored token pair for an existing user.
func (db *DB) UpdateTokens(ctx context.Context, username, accessToken, refreshToken string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET access_token = ?, refresh_token = ? WHERE username = ?`,
		accessToken, refreshToken, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating tokens for %s: %w", username, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", username)
	}
	return nil
}
