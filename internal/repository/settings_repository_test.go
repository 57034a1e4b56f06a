package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/engagement-service/internal/models"
)

func TestSettingsGet(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
		expectNil   bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT site_id, enabled, notify_comments, notify_reactions`).
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows([]string{
						"site_id", "enabled", "notify_comments", "notify_reactions",
						"telegram_chat_id", "telegram_bot_token_encrypted", "updated_at",
					}).AddRow(int64(42), true, true, false, "-100123", "v1:abc:def", time.Now()))
			},
		},
		{
			name: "no row yet",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT site_id, enabled, notify_comments, notify_reactions`).
					WithArgs(int64(42)).
					WillReturnError(sql.ErrNoRows)
			},
			expectNil: true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT site_id, enabled, notify_comments, notify_reactions`).
					WillReturnError(sql.ErrConnDone)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewSettingsRepository(db)

			tt.setupMock(mock)

			settings, err := repo.Get(context.Background(), 42)

			if tt.expectError {
				assert.Error(t, err)
			} else if tt.expectNil {
				assert.NoError(t, err)
				assert.Nil(t, settings)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, settings)
				assert.Equal(t, int64(42), settings.SiteID)
				assert.True(t, settings.Enabled)
				assert.False(t, settings.NotifyReactions)
				assert.Equal(t, "-100123", settings.ChatID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSettingsUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	mock.ExpectExec(`INSERT INTO site_telegram_settings`).
		WithArgs(int64(42), true, true, true, "-100123", "v1:abc:def").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Upsert(context.Background(), &models.TelegramSettings{
		SiteID:            42,
		Enabled:           true,
		NotifyComments:    true,
		NotifyReactions:   true,
		ChatID:            "-100123",
		BotTokenEncrypted: "v1:abc:def",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
