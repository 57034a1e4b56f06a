package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"inkwell/engagement-service/internal/models"
)

// NotificationRepository handles database interactions for the in-app
// notification feed.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new repository instance.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification row and returns its ID.
func (r *NotificationRepository) Create(ctx context.Context, n *models.SiteNotification) (uint64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO site_notifications
			(site_id, event_type, post_slug, post_title, actor_name, actor_site_slug,
			 content_preview, reaction_key, reaction_label, target_path, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`,
		n.SiteID,
		n.EventType,
		n.PostSlug,
		n.PostTitle,
		n.ActorName,
		n.ActorSiteSlug,
		n.ContentPreview,
		n.ReactionKey,
		n.ReactionLabel,
		n.TargetPath,
		n.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get notification ID: %w", err)
	}

	n.ID = uint64(id)
	return n.ID, nil
}

// List retrieves notifications for a site along with the total count.
func (r *NotificationRepository) List(ctx context.Context, siteID int64, filter models.NotificationFilter) ([]models.SiteNotification, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100 // limit max page size
	}
	offset := (page - 1) * perPage

	whereClause := "site_id = ?"
	if filter.UnreadOnly {
		whereClause += " AND read_at IS NULL"
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM site_notifications WHERE %s`, whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, siteID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, site_id, event_type, post_slug, post_title, actor_name, actor_site_slug,
		       content_preview, reaction_key, reaction_label, target_path, created_at, read_at
		FROM site_notifications
		WHERE %s
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, siteID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.SiteNotification, 0)
	for rows.Next() {
		var n models.SiteNotification
		var readAt sql.NullTime

		if err := rows.Scan(
			&n.ID,
			&n.SiteID,
			&n.EventType,
			&n.PostSlug,
			&n.PostTitle,
			&n.ActorName,
			&n.ActorSiteSlug,
			&n.ContentPreview,
			&n.ReactionKey,
			&n.ReactionLabel,
			&n.TargetPath,
			&n.CreatedAt,
			&readAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}

		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, total, nil
}

// MarkRead marks the given notifications read. Already-read rows are left
// untouched, which makes the transition idempotent.
func (r *NotificationRepository) MarkRead(ctx context.Context, siteID int64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`
		UPDATE site_notifications
		SET read_at = NOW()
		WHERE site_id = ? AND read_at IS NULL AND id IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, siteID)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification for a site as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, siteID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE site_notifications
		SET read_at = NOW()
		WHERE site_id = ? AND read_at IS NULL
	`, siteID)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// TrimToRecent deletes everything but the most recent keep rows for a site.
func (r *NotificationRepository) TrimToRecent(ctx context.Context, siteID int64, keep int) (int64, error) {
	// MySQL cannot reference the target table in a subquery directly, so the
	// keeper set goes through a derived table.
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM site_notifications
		WHERE site_id = ? AND id NOT IN (
			SELECT id FROM (
				SELECT id FROM site_notifications
				WHERE site_id = ?
				ORDER BY id DESC
				LIMIT ?
			) keeper
		)
	`, siteID, siteID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim notifications: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
