package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/daily3me/daily3/internal/apperror"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

const postColumns = `id, posted_at, posted_date, username, item1, item2, item3, source_link`

// Create inserts a new post. ID, PostedAt and PostedDate are filled in
// here when the caller left them empty.
//
// xid ids start with a timestamp, so they also break ties between posts
// created within the same instant.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = xid.New().String()
	}
	if post.PostedAt.IsZero() {
		post.PostedAt = time.Now()
	}
	post.PostedAt = post.PostedAt.UTC()
	if post.PostedDate == "" {
		post.PostedDate = model.DateOf(post.PostedAt)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.PostedAt,
		post.PostedDate,
		post.Username,
		post.Item1,
		post.Item2,
		post.Item3,
		post.SourceLink,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", post.Username)
		}
		if isUniqueViolation(err) {
			return apperror.Conflict("post", post.ID)
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetByIDs batch-fetches posts. The result keeps the order of ids; unknown
// ids are skipped.
func (db *DB) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	found, err := db.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	posts := make([]model.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// Recent lists posts newest first.
func (db *DB) Recent(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	return db.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 ORDER BY posted_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// ListByUser returns every post by username, newest first.
func (db *DB) ListByUser(ctx context.Context, username string) ([]model.Post, error) {
	return db.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE username = ?
		 ORDER BY posted_at DESC, id DESC`,
		username,
	)
}

// GetForDate returns the user's post for the given calendar date.
func (db *DB) GetForDate(ctx context.Context, username, date string) (*model.Post, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE username = ? AND posted_date = ?
		 ORDER BY posted_at DESC LIMIT 1`,
		username, date,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", username+"@"+date)
		}
		return nil, fmt.Errorf("sqlite: getting post of %s for %s: %w", username, date, err)
	}
	return p, nil
}

func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(
		&p.ID,
		&p.PostedAt,
		&p.PostedDate,
		&p.Username,
		&p.Item1,
		&p.Item2,
		&p.Item3,
		&p.SourceLink,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
