package repository

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell/engagement-service/internal/models"
)

// SettingsRepository handles database interactions for per-site Telegram
// notification settings.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new repository instance.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row for a site, or nil when none exists yet.
func (r *SettingsRepository) Get(ctx context.Context, siteID int64) (*models.TelegramSettings, error) {
	var s models.TelegramSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT site_id, enabled, notify_comments, notify_reactions,
		       telegram_chat_id, telegram_bot_token_encrypted, updated_at
		FROM site_telegram_settings
		WHERE site_id = ?
	`, siteID).Scan(
		&s.SiteID,
		&s.Enabled,
		&s.NotifyComments,
		&s.NotifyReactions,
		&s.ChatID,
		&s.BotTokenEncrypted,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get telegram settings: %w", err)
	}

	return &s, nil
}

// Upsert writes the full settings row for a site (one row per site).
func (r *SettingsRepository) Upsert(ctx context.Context, s *models.TelegramSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_telegram_settings
			(site_id, enabled, notify_comments, notify_reactions, telegram_chat_id, telegram_bot_token_encrypted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			enabled = VALUES(enabled),
			notify_comments = VALUES(notify_comments),
			notify_reactions = VALUES(notify_reactions),
			telegram_chat_id = VALUES(telegram_chat_id),
			telegram_bot_token_encrypted = VALUES(telegram_bot_token_encrypted)
	`,
		s.SiteID,
		s.Enabled,
		s.NotifyComments,
		s.NotifyReactions,
		s.ChatID,
		s.BotTokenEncrypted,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert telegram settings: %w", err)
	}
	return nil
}
