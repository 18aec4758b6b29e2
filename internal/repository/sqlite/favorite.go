package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// Toggle flips the favorite state of (username, postID).
//
// The DELETE runs first: if it removed a row the post was a favorite and we
// are done. Otherwise an INSERT OR IGNORE adds it. Both statements share one
// transaction and the table has UNIQUE(username, post_id), so two racing
// toggles can never leave duplicate rows behind.
func (db *DB) Toggle(ctx context.Context, username, postID string) (model.ToggleAction, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning favorite toggle: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE username = ? AND post_id = ?`,
		username, postID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: removing favorite %s/%s: %w", username, postID, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	action := model.FavoriteRemoved
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO favorites (id, username, post_id, favorited_at)
			 VALUES (?, ?, ?, ?)`,
			xid.New().String(), username, postID, time.Now().UTC(),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return 0, apperror.NotFound("post", postID)
			}
			return 0, fmt.Errorf("sqlite: adding favorite %s/%s: %w", username, postID, err)
		}
		action = model.FavoriteAdded
	}

	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperror.NotFound("post", postID)
		}
		return 0, fmt.Errorf("sqlite: committing favorite toggle: %w", err)
	}
	return action, nil
}

// PostIDs returns the ids of the posts username favorited, newest first.
func (db *DB) PostIDs(ctx context.Context, username string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id FROM favorites
		 WHERE username = ?
		 ORDER BY favorited_at DESC, id DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites of %s: %w", username, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return ids, nil
}
