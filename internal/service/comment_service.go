package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
)

const (
	defaultCommentsPerPage = 20
	maxCommentsPerPage     = 100
)

// CommentStore abstracts the persisted comments.
type CommentStore interface {
	Create(ctx context.Context, siteID int64, postSlug, authorName, authorSiteSlug, content string) (*models.Comment, error)
	Count(ctx context.Context, siteID int64, postSlug string) (int64, error)
	List(ctx context.Context, siteID int64, postSlug string, page, perPage int) ([]models.Comment, error)
	Delete(ctx context.Context, siteID int64, commentID uint64) (bool, error)
	MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error)
}

// CreateInput carries one comment creation request. SiteSlug and PostTitle
// feed the notification message only.
type CreateInput struct {
	SiteID    int64
	SiteSlug  string
	PostSlug  string
	PostTitle string
	Comment   models.CreateCommentInput
}

// CommentService is the append-only comment store for posts.
type CommentService struct {
	store    CommentStore
	notifier Notifier
	validate *validator.Validate
}

// NewCommentService creates a comment service implementation.
func NewCommentService(store CommentStore, notifier Notifier) *CommentService {
	return &CommentService{
		store:    store,
		notifier: notifier,
		validate: validator.New(),
	}
}

// Create validates and stores a comment, then fires a notification event
// carrying a preview of the content.
func (s *CommentService) Create(ctx context.Context, input CreateInput) (*models.Comment, error) {
	input.Comment.AuthorName = strings.TrimSpace(input.Comment.AuthorName)
	input.Comment.AuthorSiteSlug = strings.TrimSpace(input.Comment.AuthorSiteSlug)
	input.Comment.Content = strings.TrimSpace(input.Comment.Content)

	if err := s.validate.Struct(input.Comment); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	comment, err := s.store.Create(ctx, input.SiteID, input.PostSlug,
		input.Comment.AuthorName, input.Comment.AuthorSiteSlug, input.Comment.Content)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Enqueue(input.SiteID, models.NotificationEvent{
			EventType:      models.EventTypeComment,
			SiteSlug:       input.SiteSlug,
			PostSlug:       input.PostSlug,
			PostTitle:      input.PostTitle,
			ActorName:      comment.AuthorName,
			ActorSiteSlug:  comment.AuthorSiteSlug,
			ContentPreview: comment.Content,
			TargetPath:     "/" + input.PostSlug,
		})
	}

	return comment, nil
}

// List returns one page of comments, newest first. Out-of-range pages clamp
// into [1, totalPages] rather than erroring.
func (s *CommentService) List(ctx context.Context, siteID int64, postSlug string, page, perPage int) (*models.CommentPage, error) {
	if perPage < 1 {
		perPage = defaultCommentsPerPage
	}
	if perPage > maxCommentsPerPage {
		perPage = maxCommentsPerPage
	}

	total, err := s.store.Count(ctx, siteID, postSlug)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	comments, err := s.store.List(ctx, siteID, postSlug, page, perPage)
	if err != nil {
		return nil, err
	}

	return &models.CommentPage{
		Comments:   comments,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// Delete removes one comment within the site's scope.
func (s *CommentService) Delete(ctx context.Context, siteID int64, commentID uint64) error {
	removed, err := s.store.Delete(ctx, siteID, commentID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.ErrCommentNotFound
	}
	return nil
}

// MoveToPost re-homes every comment of a renamed post onto its new slug.
func (s *CommentService) MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error) {
	fromSlug = strings.TrimSpace(fromSlug)
	toSlug = strings.TrimSpace(toSlug)
	if fromSlug == "" || toSlug == "" || fromSlug == toSlug {
		return 0, fmt.Errorf("%w: source and target slugs must differ and be non-empty", errs.ErrValidation)
	}
	return s.store.MoveToPost(ctx, siteID, fromSlug, toSlug)
}
