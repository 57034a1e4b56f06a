package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/internal/service"
)

// MockReactionToggler is a mock implementation of ReactionToggler
type MockReactionToggler struct {
	mock.Mock
}

func (m *MockReactionToggler) Toggle(ctx context.Context, input service.ToggleInput) (bool, error) {
	args := m.Called(ctx, input)
	return args.Bool(0), args.Error(1)
}

func (m *MockReactionToggler) Snapshot(ctx context.Context, siteID int64, postSlug, actorToken string) (models.ReactionSnapshot, error) {
	args := m.Called(ctx, siteID, postSlug, actorToken)
	return args.Get(0).(models.ReactionSnapshot), args.Error(1)
}

// MockCommentManager is a mock implementation of CommentManager
type MockCommentManager struct {
	mock.Mock
}

func (m *MockCommentManager) Create(ctx context.Context, input service.CreateInput) (*models.Comment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentManager) List(ctx context.Context, siteID int64, postSlug string, page, perPage int) (*models.CommentPage, error) {
	args := m.Called(ctx, siteID, postSlug, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentPage), args.Error(1)
}

func (m *MockCommentManager) Delete(ctx context.Context, siteID int64, commentID uint64) error {
	args := m.Called(ctx, siteID, commentID)
	return args.Error(0)
}

func (m *MockCommentManager) MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error) {
	args := m.Called(ctx, siteID, fromSlug, toSlug)
	return args.Get(0).(int64), args.Error(1)
}

// MockViewCounter is a mock implementation of ViewCounter
type MockViewCounter struct {
	mock.Mock
}

func (m *MockViewCounter) Increment(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockViewCounter) Count(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockViewCounter) Counts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error) {
	args := m.Called(ctx, siteID, resourceType, resourceKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// MockActorResolver is a mock implementation of ActorResolver
type MockActorResolver struct {
	mock.Mock
}

func (m *MockActorResolver) Resolve(ip, userAgent, cookieToken string) service.ActorResolution {
	args := m.Called(ip, userAgent, cookieToken)
	return args.Get(0).(service.ActorResolution)
}

// MockRateLimiter is a mock implementation of RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Consume(ctx context.Context, key string, window time.Duration, maxAttempts int) (models.RateLimitResult, error) {
	args := m.Called(ctx, key, window, maxAttempts)
	return args.Get(0).(models.RateLimitResult), args.Error(1)
}

// MockNotificationManager is a mock implementation of NotificationManager
type MockNotificationManager struct {
	mock.Mock
}

func (m *MockNotificationManager) List(ctx context.Context, siteID int64, filter models.NotificationFilter) (*models.NotificationPage, error) {
	args := m.Called(ctx, siteID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationPage), args.Error(1)
}

func (m *MockNotificationManager) MarkRead(ctx context.Context, siteID int64, ids []uint64) error {
	args := m.Called(ctx, siteID, ids)
	return args.Error(0)
}

func (m *MockNotificationManager) MarkAllRead(ctx context.Context, siteID int64) error {
	args := m.Called(ctx, siteID)
	return args.Error(0)
}

func (m *MockNotificationManager) GetSettings(ctx context.Context, siteID int64, includeSecret bool) (*models.TelegramSettings, error) {
	args := m.Called(ctx, siteID, includeSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramSettings), args.Error(1)
}

func (m *MockNotificationManager) UpsertSettings(ctx context.Context, siteID int64, patch models.TelegramSettingsPatch) (*models.TelegramSettings, error) {
	args := m.Called(ctx, siteID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramSettings), args.Error(1)
}
