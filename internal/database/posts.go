// SPDX-License-Identifier: AGPL-3.0-only
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CreatePostParams struct {
	ID        uuid.UUID
	URL       string
	Platform  string
	PostID    string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	var post Post
	err := q.db.GetContext(ctx, &post, `
		INSERT INTO posts (id, created_at, updated_at, url, platform, post_id, user_id, status, expires_at)
		VALUES ($1, now(), now(), $2, $3, $4, $5, 'pending', $6)
		RETURNING *`,
		arg.ID, arg.URL, arg.Platform, arg.PostID, arg.UserID, arg.ExpiresAt,
	)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (q *Queries) GetPostByID(ctx context.Context, id uuid.UUID) (Post, error) {
	var post Post
	err := q.db.GetContext(ctx, &post, `SELECT * FROM posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

type GetPostForUserParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetPostForUser(ctx context.Context, arg GetPostForUserParams) (Post, error) {
	var post Post
	err := q.db.GetContext(ctx, &post,
		`SELECT * FROM posts WHERE id = $1 AND user_id = $2`,
		arg.ID, arg.UserID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post for user: %w", err)
	}
	return post, nil
}

func (q *Queries) ListPostsForUser(ctx context.Context, userID uuid.UUID) ([]Post, error) {
	posts := []Post{}
	err := q.db.SelectContext(ctx, &posts,
		`SELECT * FROM posts WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (q *Queries) MarkPostProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET status = 'processing', started_at = now(), error_message = NULL, updated_at = now()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark post processing: %w", err)
	}
	return nil
}

type UpdatePostContentParams struct {
	ID               uuid.UUID
	Content          string
	Author           Author
	Metrics          Metrics
	TotalEngagements int
}

// UpdatePostContent persists the scrape snapshot before the per-engagement
// fan-out so partial progress is visible to pollers.
func (q *Queries) UpdatePostContent(ctx context.Context, arg UpdatePostContentParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET content = $2, author = $3, metrics = $4, total_engagements = $5, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.Content, arg.Author, arg.Metrics, arg.TotalEngagements,
	)
	if err != nil {
		return fmt.Errorf("update post content: %w", err)
	}
	return nil
}

type MarkPostCompletedParams struct {
	ID                    uuid.UUID
	ProcessedEngagements  int
	ProcessingTimeSeconds int
}

func (q *Queries) MarkPostCompleted(ctx context.Context, arg MarkPostCompletedParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET status = 'completed', processed_engagements = $2, processed_at = now(),
		    processing_time_seconds = $3, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.ProcessedEngagements, arg.ProcessingTimeSeconds,
	)
	if err != nil {
		return fmt.Errorf("mark post completed: %w", err)
	}
	return nil
}

type MarkPostFailedParams struct {
	ID           uuid.UUID
	ErrorMessage string
}

func (q *Queries) MarkPostFailed(ctx context.Context, arg MarkPostFailedParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE posts
		SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1`,
		arg.ID, arg.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("mark post failed: %w", err)
	}
	return nil
}

// ListStalePendingPosts returns pending posts whose async trigger never ran,
// so the background worker can pick them up.
func (q *Queries) ListStalePendingPosts(ctx context.Context, olderThan time.Time) ([]Post, error) {
	posts := []Post{}
	err := q.db.SelectContext(ctx, &posts,
		`SELECT * FROM posts WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`,
		olderThan,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale pending posts: %w", err)
	}
	return posts, nil
}

// DeleteExpiredPosts removes posts past their retention window. Leads
// belonging to them go via ON DELETE CASCADE.
func (q *Queries) DeleteExpiredPosts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM posts WHERE expires_at IS NOT NULL AND expires_at < now()`,
	)
	if err != nil {
		return fmt.Errorf("delete expired posts: %w", err)
	}
	return nil
}

func (q *Queries) DeleteExpiredLeads(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM leads WHERE expires_at IS NOT NULL AND expires_at < now()`,
	)
	if err != nil {
		return fmt.Errorf("delete expired leads: %w", err)
	}
	return nil
}
