package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RateLimitRepository handles database interactions for fixed-window
// rate-limit state.
type RateLimitRepository struct {
	db *sql.DB
}

// NewRateLimitRepository creates a new repository instance.
func NewRateLimitRepository(db *sql.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// ConsumeWindow records one attempt for key and returns the post-update
// window state. The reset-or-increment decision happens inside a single
// upsert so concurrent consumers never lose updates: an expired window is
// reset to attempts = 1, an open window is incremented in place.
func (r *RateLimitRepository) ConsumeWindow(ctx context.Context, key string, nowMs, windowMs int64) (int64, int, error) {
	// Assignment order matters: attempts must be computed against the old
	// window_start_ms before window_start_ms itself is rewritten.
	query := `
		INSERT INTO rate_limit_windows (rate_key, window_start_ms, attempts)
		VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE
			attempts = IF(? - window_start_ms >= ?, 1, attempts + 1),
			window_start_ms = IF(? - window_start_ms >= ?, ?, window_start_ms)
	`

	_, err := r.db.ExecContext(ctx, query, key, nowMs, nowMs, windowMs, nowMs, windowMs, nowMs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to consume rate-limit window: %w", err)
	}

	var windowStartMs int64
	var attempts int
	err = r.db.QueryRowContext(ctx,
		`SELECT window_start_ms, attempts FROM rate_limit_windows WHERE rate_key = ?`, key,
	).Scan(&windowStartMs, &attempts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rate-limit window: %w", err)
	}

	return windowStartMs, attempts, nil
}

// Delete removes a window row outright, e.g. after a successful login.
func (r *RateLimitRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rate_limit_windows WHERE rate_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete rate-limit window: %w", err)
	}
	return nil
}

// DeleteStale removes windows untouched since cutoff and returns how many
// rows went away. The sweep is idempotent and commutative across instances.
func (r *RateLimitRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM rate_limit_windows WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale rate-limit windows: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}
