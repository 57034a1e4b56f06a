package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PageViewRepository handles database interactions for per-resource view
// counters.
type PageViewRepository struct {
	db *sql.DB
}

// NewPageViewRepository creates a new repository instance.
func NewPageViewRepository(db *sql.DB) *PageViewRepository {
	return &PageViewRepository{db: db}
}

// IncrementAndGet adds one view atomically and returns the post-increment
// count. The upsert is the atomicity boundary; the read-back may observe
// further concurrent increments, which keeps the counter monotonic.
func (r *PageViewRepository) IncrementAndGet(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_views (site_id, resource_type, resource_key, view_count)
		VALUES (?, ?, ?, 1)
		ON DUPLICATE KEY UPDATE view_count = view_count + 1
	`, siteID, resourceType, resourceKey)
	if err != nil {
		return 0, fmt.Errorf("failed to increment page view: %w", err)
	}

	count, err := r.Get(ctx, siteID, resourceType, resourceKey)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Get returns the current count for one resource, 0 when no row exists.
func (r *PageViewRepository) Get(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT view_count FROM page_views
		WHERE site_id = ? AND resource_type = ? AND resource_key = ?
	`, siteID, resourceType, resourceKey).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read page view count: %w", err)
	}
	return count, nil
}

// GetCounts batch-reads counts for the given resource keys. Keys with no row
// are simply absent from the result map.
func (r *PageViewRepository) GetCounts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error) {
	if len(resourceKeys) == 0 {
		return map[string]int64{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(resourceKeys)), ",")
	query := fmt.Sprintf(`
		SELECT resource_key, view_count FROM page_views
		WHERE site_id = ? AND resource_type = ? AND resource_key IN (%s)
	`, placeholders)

	args := make([]interface{}, 0, len(resourceKeys)+2)
	args = append(args, siteID, resourceType)
	for _, key := range resourceKeys {
		args = append(args, key)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query page view counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64, len(resourceKeys))
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan page view count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page view counts: %w", err)
	}

	return counts, nil
}
