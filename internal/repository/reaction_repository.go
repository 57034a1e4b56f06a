package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number for unique-key violations.
const mysqlDuplicateEntry = 1062

// ReactionRepository handles database interactions for reaction toggle rows.
type ReactionRepository struct {
	db *sql.DB
}

// NewReactionRepository creates a new repository instance.
func NewReactionRepository(db *sql.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Deactivate removes the actor's row for one reaction key and reports whether
// a row actually existed.
func (r *ReactionRepository) Deactivate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM reactions
		WHERE site_id = ? AND post_slug = ? AND reaction_key = ? AND actor_token = ?
	`, siteID, postSlug, reactionKey, actorToken)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate reaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Activate inserts the actor's row for one reaction key. A duplicate-key
// violation means a concurrent activation won the race; the row exists either
// way, so it is not an error.
func (r *ReactionRepository) Activate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reactions (site_id, post_slug, reaction_key, actor_token, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, siteID, postSlug, reactionKey, actorToken)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil
		}
		return fmt.Errorf("failed to activate reaction: %w", err)
	}
	return nil
}

// CountsByKey aggregates active reaction rows per key for a post.
func (r *ReactionRepository) CountsByKey(ctx context.Context, siteID int64, postSlug string) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reaction_key, COUNT(*)
		FROM reactions
		WHERE site_id = ? AND post_slug = ?
		GROUP BY reaction_key
	`, siteID, postSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reaction count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction counts: %w", err)
	}

	return counts, nil
}

// SelectedKeys returns the reaction keys the given actor holds on a post.
func (r *ReactionRepository) SelectedKeys(ctx context.Context, siteID int64, postSlug, actorToken string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reaction_key
		FROM reactions
		WHERE site_id = ? AND post_slug = ? AND actor_token = ?
	`, siteID, postSlug, actorToken)
	if err != nil {
		return nil, fmt.Errorf("failed to query selected reactions: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan selected reaction: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating selected reactions: %w", err)
	}

	return keys, nil
}
