package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/pkg/logger"
)

func newNotificationServer() (*http.ServeMux, *MockNotificationManager) {
	manager := new(MockNotificationManager)
	mux := http.NewServeMux()
	NewNotificationHandler(manager, logger.NewLogger("test")).Register(mux)
	return mux, manager
}

func TestNotificationListEndpoint(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("List", mock.Anything, int64(42), models.NotificationFilter{
		Page: 2, PerPage: 5, UnreadOnly: true,
	}).Return(&models.NotificationPage{
		Notifications: []models.SiteNotification{{ID: 11, EventType: "comment"}},
		Total:         6,
		Page:          2,
		PerPage:       5,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/42/notifications?page=2&per_page=5&unread=1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page models.NotificationPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(6), page.Total)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, uint64(11), page.Notifications[0].ID)
}

func TestMarkReadByIDs(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("MarkRead", mock.Anything, int64(42), []uint64{11, 12}).Return(nil)

	body := strings.NewReader(`{"ids":[11,12]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sites/42/notifications/read", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	manager.AssertExpectations(t)
}

func TestMarkReadAll(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("MarkAllRead", mock.Anything, int64(42)).Return(nil)

	body := strings.NewReader(`{"all":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sites/42/notifications/read", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	manager.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetSettingsMasksToken(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("GetSettings", mock.Anything, int64(42), false).
		Return(&models.TelegramSettings{
			SiteID:            42,
			Enabled:           true,
			ChatID:            "-100123",
			BotTokenEncrypted: "v1:abc:def",
			HasBotToken:       true,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/42/notify-settings", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// The ciphertext never leaves the service.
	assert.NotContains(t, rec.Body.String(), "v1:abc:def")
	assert.Contains(t, rec.Body.String(), `"has_bot_token":true`)
}

func TestGetSettingsIncludeSecretFlag(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("GetSettings", mock.Anything, int64(42), true).
		Return(&models.TelegramSettings{SiteID: 42, BotToken: "12345:bot-secret", HasBotToken: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sites/42/notify-settings?include_secret=1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "12345:bot-secret")
}

func TestUpdateSettings(t *testing.T) {
	mux, manager := newNotificationServer()

	manager.On("UpsertSettings", mock.Anything, int64(42), mock.MatchedBy(func(patch models.TelegramSettingsPatch) bool {
		return patch.Enabled != nil && *patch.Enabled &&
			patch.BotToken != nil && *patch.BotToken == "12345:bot-secret" &&
			patch.NotifyComments == nil
	})).Return(&models.TelegramSettings{SiteID: 42, Enabled: true, HasBotToken: true}, nil)

	body := strings.NewReader(`{"enabled":true,"telegram_bot_token":"12345:bot-secret"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/sites/42/notify-settings", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	manager.AssertExpectations(t)
}
