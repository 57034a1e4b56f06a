package models

import "time"

// TelegramSettings is the one-row-per-site notification relay configuration.
// The bot token is stored only in encrypted form; plaintext never persists.
type TelegramSettings struct {
	SiteID            int64     `json:"site_id"`
	Enabled           bool      `json:"enabled"`
	NotifyComments    bool      `json:"notify_comments"`
	NotifyReactions   bool      `json:"notify_reactions"`
	ChatID            string    `json:"telegram_chat_id,omitempty"`
	BotTokenEncrypted string    `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`

	// HasBotToken tells the dashboard a token is on file without exposing it.
	// BotToken is populated only on explicit includeSecret reads.
	HasBotToken bool   `json:"has_bot_token"`
	BotToken    string `json:"telegram_bot_token,omitempty"`
}

// TelegramSettingsPatch is a partial update. Nil pointers leave the stored
// value untouched. For BotToken: nil keeps the stored ciphertext, an empty
// string clears it, any other value is encrypted and stored.
type TelegramSettingsPatch struct {
	Enabled         *bool   `json:"enabled"`
	NotifyComments  *bool   `json:"notify_comments"`
	NotifyReactions *bool   `json:"notify_reactions"`
	ChatID          *string `json:"telegram_chat_id" validate:"omitempty,max=64"`
	BotToken        *string `json:"telegram_bot_token" validate:"omitempty,max=256"`
}
