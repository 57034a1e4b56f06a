package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inkwell/engagement-service/internal/models"
)

// CommentRepository handles database interactions for post comments.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new repository instance.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and returns the stored row.
func (r *CommentRepository) Create(ctx context.Context, siteID int64, postSlug, authorName, authorSiteSlug, content string) (*models.Comment, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO comments (site_id, post_slug, author_name, author_site_slug, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, siteID, postSlug, authorName, authorSiteSlug, content, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment ID: %w", err)
	}

	return &models.Comment{
		ID:             uint64(id),
		SiteID:         siteID,
		PostSlug:       postSlug,
		AuthorName:     authorName,
		AuthorSiteSlug: authorSiteSlug,
		Content:        content,
		CreatedAt:      now,
	}, nil
}

// Count returns the number of comments on a post.
func (r *CommentRepository) Count(ctx context.Context, siteID int64, postSlug string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments WHERE site_id = ? AND post_slug = ?
	`, siteID, postSlug).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return total, nil
}

// List returns one page of comments ordered newest first.
func (r *CommentRepository) List(ctx context.Context, siteID int64, postSlug string, page, perPage int) ([]models.Comment, error) {
	offset := (page - 1) * perPage
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, site_id, post_slug, author_name, author_site_slug, content, created_at
		FROM comments
		WHERE site_id = ? AND post_slug = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, siteID, postSlug, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.SiteID,
			&comment.PostSlug,
			&comment.AuthorName,
			&comment.AuthorSiteSlug,
			&comment.Content,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// Delete removes one comment within a tenant and reports whether a row was
// actually removed. Authorization is the caller's concern.
func (r *CommentRepository) Delete(ctx context.Context, siteID int64, id uint64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM comments WHERE site_id = ? AND id = ?
	`, siteID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// MoveToPost bulk-reassigns all comments from one slug to another when a post
// is renamed. The single UPDATE keeps the re-keying atomic.
func (r *CommentRepository) MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE comments SET post_slug = ? WHERE site_id = ? AND post_slug = ?
	`, toSlug, siteID, fromSlug)
	if err != nil {
		return 0, fmt.Errorf("failed to move comments: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
