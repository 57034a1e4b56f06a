package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/engagement-service/internal/errs"
)

func TestPageViewIncrement(t *testing.T) {
	tests := []struct {
		name          string
		resourceType  string
		resourceKey   string
		setupMock     func(*MockPageViewStore)
		expectedCount int64
		expectedErr   error
	}{
		{
			name:         "post view",
			resourceType: "post",
			resourceKey:  "hello-world",
			setupMock: func(store *MockPageViewStore) {
				store.On("IncrementAndGet", mock.Anything, int64(42), "post", "hello-world").
					Return(int64(12), nil)
			},
			expectedCount: 12,
		},
		{
			name:         "home view uses the fixed key",
			resourceType: "HOME",
			resourceKey:  "whatever-the-client-sent",
			setupMock: func(store *MockPageViewStore) {
				store.On("IncrementAndGet", mock.Anything, int64(42), "home", "home").
					Return(int64(3), nil)
			},
			expectedCount: 3,
		},
		{
			name:          "empty key is a silent no-op",
			resourceType:  "post",
			resourceKey:   "   ",
			setupMock:     func(store *MockPageViewStore) {},
			expectedCount: 0,
		},
		{
			name:         "unknown resource type",
			resourceType: "profile",
			resourceKey:  "hello-world",
			setupMock:    func(store *MockPageViewStore) {},
			expectedErr:  errs.ErrInvalidResourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockPageViewStore)
			tt.setupMock(store)
			svc := NewPageViewService(store)

			count, err := svc.Increment(context.Background(), 42, tt.resourceType, tt.resourceKey)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCount, count)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestPageViewCount(t *testing.T) {
	store := new(MockPageViewStore)
	store.On("Get", mock.Anything, int64(42), "post", "hello-world").
		Return(int64(7), nil)
	svc := NewPageViewService(store)

	count, err := svc.Count(context.Background(), 42, "post", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	store.AssertExpectations(t)
}

func TestPageViewCountsFiltersEmptyKeys(t *testing.T) {
	store := new(MockPageViewStore)
	store.On("GetCounts", mock.Anything, int64(42), "post", []string{"a", "b"}).
		Return(map[string]int64{"a": 4}, nil)
	svc := NewPageViewService(store)

	counts, err := svc.Counts(context.Background(), 42, "post", []string{"a", "", "  ", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 4}, counts)
	store.AssertExpectations(t)
}

func TestPageViewCountsRejectsBadType(t *testing.T) {
	svc := NewPageViewService(new(MockPageViewStore))

	_, err := svc.Counts(context.Background(), 42, "tag", []string{"a"})
	assert.ErrorIs(t, err, errs.ErrInvalidResourceType)
}
