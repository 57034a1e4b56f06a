package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	pkgdb "inkwell/engagement-service/pkg/db"
)

// createStatements bootstrap every engagement table lazily and idempotently.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS rate_limit_windows (
		rate_key VARCHAR(180) NOT NULL,
		window_start_ms BIGINT NOT NULL,
		attempts INT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (rate_key)
	)`,
	`CREATE TABLE IF NOT EXISTS reactions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		site_id BIGINT NOT NULL,
		post_slug VARCHAR(200) NOT NULL,
		reaction_key VARCHAR(32) NOT NULL,
		actor_token VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_reactions_toggle (site_id, post_slug, reaction_key, actor_token),
		KEY idx_reactions_post (site_id, post_slug)
	)`,
	`CREATE TABLE IF NOT EXISTS page_views (
		site_id BIGINT NOT NULL,
		resource_type VARCHAR(8) NOT NULL,
		resource_key VARCHAR(200) NOT NULL,
		view_count BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (site_id, resource_type, resource_key)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		site_id BIGINT NOT NULL,
		post_slug VARCHAR(200) NOT NULL,
		author_name VARCHAR(60) NOT NULL,
		author_site_slug VARCHAR(60) NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_comments_post (site_id, post_slug, created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS site_notifications (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		site_id BIGINT NOT NULL,
		event_type VARCHAR(16) NOT NULL,
		post_slug VARCHAR(200) NOT NULL,
		post_title VARCHAR(120) NOT NULL DEFAULT '',
		actor_name VARCHAR(60) NOT NULL DEFAULT '',
		actor_site_slug VARCHAR(60) NOT NULL DEFAULT '',
		content_preview VARCHAR(320) NOT NULL DEFAULT '',
		reaction_key VARCHAR(32) NOT NULL DEFAULT '',
		reaction_label VARCHAR(32) NOT NULL DEFAULT '',
		target_path VARCHAR(300) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		read_at TIMESTAMP NULL DEFAULT NULL,
		PRIMARY KEY (id),
		KEY idx_site_notifications_site (site_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS site_telegram_settings (
		site_id BIGINT NOT NULL,
		enabled TINYINT(1) NOT NULL DEFAULT 0,
		notify_comments TINYINT(1) NOT NULL DEFAULT 1,
		notify_reactions TINYINT(1) NOT NULL DEFAULT 1,
		telegram_chat_id VARCHAR(64) NOT NULL DEFAULT '',
		telegram_bot_token_encrypted VARCHAR(512) NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (site_id)
	)`,
}

type schemaInit struct {
	once sync.Once
	err  error
}

// schemaReady memoizes bootstrap per *sql.DB handle so repeated calls are
// cheap no-ops for the process lifetime.
var schemaReady sync.Map // map[*sql.DB]*schemaInit

// EnsureSchema creates the engagement tables if absent. Idempotent and
// memoized per store handle; safe to call from every repository constructor
// or once from main.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	entry, _ := schemaReady.LoadOrStore(db, &schemaInit{})
	init := entry.(*schemaInit)
	init.once.Do(func() {
		for _, stmt := range createStatements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				init.err = fmt.Errorf("failed to bootstrap schema: %w", err)
				return
			}
		}
	})
	return init.err
}

// GuardSchemas declares the column contract every release expects. The schema
// guard validates it at startup instead of probing live schema per request.
func GuardSchemas() []pkgdb.TableSchema {
	return []pkgdb.TableSchema{
		{
			Name: "rate_limit_windows",
			Columns: []pkgdb.ColumnType{
				{Name: "rate_key", DataType: "varchar"},
				{Name: "window_start_ms", DataType: "bigint"},
				{Name: "attempts", DataType: "int"},
				{Name: "updated_at", DataType: "timestamp"},
			},
		},
		{
			Name: "reactions",
			Columns: []pkgdb.ColumnType{
				{Name: "site_id", DataType: "bigint"},
				{Name: "post_slug", DataType: "varchar"},
				{Name: "reaction_key", DataType: "varchar"},
				{Name: "actor_token", DataType: "varchar"},
				{Name: "created_at", DataType: "timestamp"},
			},
		},
		{
			Name: "page_views",
			Columns: []pkgdb.ColumnType{
				{Name: "site_id", DataType: "bigint"},
				{Name: "resource_type", DataType: "varchar"},
				{Name: "resource_key", DataType: "varchar"},
				{Name: "view_count", DataType: "bigint"},
			},
		},
		{
			Name: "comments",
			Columns: []pkgdb.ColumnType{
				{Name: "site_id", DataType: "bigint"},
				{Name: "post_slug", DataType: "varchar"},
				{Name: "author_name", DataType: "varchar"},
				{Name: "content", DataType: "text"},
				{Name: "created_at", DataType: "timestamp"},
			},
		},
		{
			Name: "site_notifications",
			Columns: []pkgdb.ColumnType{
				{Name: "site_id", DataType: "bigint"},
				{Name: "event_type", DataType: "varchar"},
				{Name: "post_slug", DataType: "varchar"},
				{Name: "content_preview", DataType: "varchar"},
				{Name: "target_path", DataType: "varchar"},
				{Name: "read_at", DataType: "timestamp", Nullable: true},
			},
		},
		{
			Name: "site_telegram_settings",
			Columns: []pkgdb.ColumnType{
				{Name: "site_id", DataType: "bigint"},
				{Name: "enabled", DataType: "tinyint"},
				{Name: "notify_comments", DataType: "tinyint"},
				{Name: "notify_reactions", DataType: "tinyint"},
				{Name: "telegram_chat_id", DataType: "varchar"},
				{Name: "telegram_bot_token_encrypted", DataType: "varchar"},
			},
		},
	}
}
