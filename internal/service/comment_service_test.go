package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
)

func TestCommentServiceCreate(t *testing.T) {
	store := new(MockCommentStore)
	notifier := new(MockNotifier)

	created := &models.Comment{
		ID:         7,
		SiteID:     42,
		PostSlug:   "intro",
		AuthorName: "Bob",
		Content:    "Nice post!",
		CreatedAt:  time.Now().UTC(),
	}
	store.On("Create", mock.Anything, int64(42), "intro", "Bob", "", "Nice post!").
		Return(created, nil)
	notifier.On("Enqueue", int64(42), mock.MatchedBy(func(event models.NotificationEvent) bool {
		return event.EventType == models.EventTypeComment &&
			event.ActorName == "Bob" &&
			event.ContentPreview == "Nice post!" &&
			event.TargetPath == "/intro"
	})).Once()

	svc := NewCommentService(store, notifier)
	comment, err := svc.Create(context.Background(), CreateInput{
		SiteID:    42,
		SiteSlug:  "my-blog",
		PostSlug:  "intro",
		PostTitle: "Introducing my blog",
		Comment: models.CreateCommentInput{
			AuthorName: "  Bob  ",
			Content:    "Nice post!",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(7), comment.ID)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCommentServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input models.CreateCommentInput
	}{
		{"missing author", models.CreateCommentInput{Content: "hello"}},
		{"missing content", models.CreateCommentInput{AuthorName: "Bob"}},
		{"whitespace content", models.CreateCommentInput{AuthorName: "Bob", Content: "   "}},
		{"author too long", models.CreateCommentInput{AuthorName: strings.Repeat("x", 61), Content: "hello"}},
		{"content too long", models.CreateCommentInput{AuthorName: "Bob", Content: strings.Repeat("x", 4001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCommentStore)
			svc := NewCommentService(store, nil)

			_, err := svc.Create(context.Background(), CreateInput{
				SiteID:   42,
				PostSlug: "intro",
				Comment:  tt.input,
			})

			assert.ErrorIs(t, err, errs.ErrValidation)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything,
				mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCommentServiceListClampsPage(t *testing.T) {
	tests := []struct {
		name         string
		total        int64
		page         int
		perPage      int
		expectedPage int
		expectedPer  int
		expectedTP   int
	}{
		{"first page", 45, 1, 20, 1, 20, 3},
		{"page beyond the end clamps", 45, 99, 20, 3, 20, 3},
		{"zero page clamps to one", 45, 0, 20, 1, 20, 3},
		{"empty post still has one page", 0, 5, 20, 1, 20, 1},
		{"per page defaults", 10, 1, 0, 1, 20, 1},
		{"per page capped", 10, 1, 500, 1, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCommentStore)
			store.On("Count", mock.Anything, int64(42), "intro").
				Return(tt.total, nil)
			store.On("List", mock.Anything, int64(42), "intro", tt.expectedPage, tt.expectedPer).
				Return([]models.Comment{}, nil)

			svc := NewCommentService(store, nil)
			page, err := svc.List(context.Background(), 42, "intro", tt.page, tt.perPage)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPage, page.Page)
			assert.Equal(t, tt.expectedPer, page.PerPage)
			assert.Equal(t, tt.expectedTP, page.TotalPages)
			assert.Equal(t, tt.total, page.Total)
			store.AssertExpectations(t)
		})
	}
}

func TestCommentServiceDelete(t *testing.T) {
	store := new(MockCommentStore)
	store.On("Delete", mock.Anything, int64(42), uint64(7)).Return(true, nil)
	svc := NewCommentService(store, nil)

	assert.NoError(t, svc.Delete(context.Background(), 42, 7))
	store.AssertExpectations(t)
}

func TestCommentServiceDeleteNotFound(t *testing.T) {
	store := new(MockCommentStore)
	store.On("Delete", mock.Anything, int64(42), uint64(7)).Return(false, nil)
	svc := NewCommentService(store, nil)

	err := svc.Delete(context.Background(), 42, 7)
	assert.ErrorIs(t, err, errs.ErrCommentNotFound)
}

func TestCommentServiceMoveToPost(t *testing.T) {
	store := new(MockCommentStore)
	store.On("MoveToPost", mock.Anything, int64(42), "intro", "intro-renamed").
		Return(int64(3), nil)
	svc := NewCommentService(store, nil)

	moved, err := svc.MoveToPost(context.Background(), 42, "intro", "intro-renamed")
	require.NoError(t, err)
	assert.Equal(t, int64(3), moved)
}

func TestCommentServiceMoveToPostRejectsBadSlugs(t *testing.T) {
	svc := NewCommentService(new(MockCommentStore), nil)

	_, err := svc.MoveToPost(context.Background(), 42, "intro", "intro")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.MoveToPost(context.Background(), 42, "", "intro")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
