package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"inkwell/engagement-service/internal/models"
)

// MockRateLimitStore is a mock implementation of RateLimitStore
type MockRateLimitStore struct {
	mock.Mock
}

func (m *MockRateLimitStore) ConsumeWindow(ctx context.Context, key string, nowMs, windowMs int64) (int64, int, error) {
	args := m.Called(ctx, key, nowMs, windowMs)
	return args.Get(0).(int64), args.Int(1), args.Error(2)
}

func (m *MockRateLimitStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRateLimitStore) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockPageViewStore is a mock implementation of PageViewStore
type MockPageViewStore struct {
	mock.Mock
}

func (m *MockPageViewStore) IncrementAndGet(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPageViewStore) Get(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPageViewStore) GetCounts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockReactionStore is a mock implementation of ReactionStore
type MockReactionStore struct {
	mock.Mock
}

func (m *MockReactionStore) Deactivate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) (bool, error) {
	args := m.Called(ctx, siteID, postSlug, reactionKey, actorToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockReactionStore) Activate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) error {
	args := m.Called(ctx, siteID, postSlug, reactionKey, actorToken)
	return args.Error(0)
}

func (m *MockReactionStore) CountsByKey(ctx context.Context, siteID int64, postSlug string) (map[string]int64, error) {
	args := m.Called(ctx, siteID, postSlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockReactionStore) SelectedKeys(ctx context.Context, siteID int64, postSlug, actorToken string) ([]string, error) {
	args := m.Called(ctx, siteID, postSlug, actorToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockReactionCache is a mock implementation of ReactionCache
type MockReactionCache struct {
	mock.Mock
}

func (m *MockReactionCache) GetReactionCounts(ctx context.Context, siteID int64, postSlug string) (map[string]int64, bool) {
	args := m.Called(ctx, siteID, postSlug)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(map[string]int64), args.Bool(1)
}

func (m *MockReactionCache) SetReactionCounts(ctx context.Context, siteID int64, postSlug string, counts map[string]int64) {
	m.Called(ctx, siteID, postSlug, counts)
}

func (m *MockReactionCache) InvalidateReactionCounts(ctx context.Context, siteID int64, postSlug string) {
	m.Called(ctx, siteID, postSlug)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(siteID int64, event models.NotificationEvent) {
	m.Called(siteID, event)
}

// MockCommentStore is a mock implementation of CommentStore
type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) Create(ctx context.Context, siteID int64, postSlug, authorName, authorSiteSlug, content string) (*models.Comment, error) {
	args := m.Called(ctx, siteID, postSlug, authorName, authorSiteSlug, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentStore) Count(ctx context.Context, siteID int64, postSlug string) (int64, error) {
	args := m.Called(ctx, siteID, postSlug)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentStore) List(ctx context.Context, siteID int64, postSlug string, page, perPage int) ([]models.Comment, error) {
	args := m.Called(ctx, siteID, postSlug, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentStore) Delete(ctx context.Context, siteID int64, commentID uint64) (bool, error) {
	args := m.Called(ctx, siteID, commentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentStore) MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error) {
	args := m.Called(ctx, siteID, fromSlug, toSlug)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationStore is a mock implementation of NotificationStore
type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) Create(ctx context.Context, notification *models.SiteNotification) (uint64, error) {
	args := m.Called(ctx, notification)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockNotificationStore) List(ctx context.Context, siteID int64, filter models.NotificationFilter) ([]models.SiteNotification, int64, error) {
	args := m.Called(ctx, siteID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.SiteNotification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, siteID int64, ids []uint64) error {
	args := m.Called(ctx, siteID, ids)
	return args.Error(0)
}

func (m *MockNotificationStore) MarkAllRead(ctx context.Context, siteID int64) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *MockNotificationStore) TrimToRecent(ctx context.Context, siteID int64, keep int) (int64, error) {
	args := m.Called(ctx, siteID, keep)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingsStore is a mock implementation of SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Get(ctx context.Context, siteID int64) (*models.TelegramSettings, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramSettings), args.Error(1)
}

func (m *MockSettingsStore) Upsert(ctx context.Context, settings *models.TelegramSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockRelayChannel is a mock implementation of RelayChannel
type MockRelayChannel struct {
	mock.Mock
}

func (m *MockRelayChannel) Send(ctx context.Context, botToken, chatID, text string) error {
	args := m.Called(ctx, botToken, chatID, text)
	return args.Error(0)
}
