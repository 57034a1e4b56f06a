package models

import "time"

// Comment is one append-only comment on a post.
type Comment struct {
	ID             uint64    `json:"id"`
	SiteID         int64     `json:"site_id"`
	PostSlug       string    `json:"post_slug"`
	AuthorName     string    `json:"author_name"`
	AuthorSiteSlug string    `json:"author_site_slug,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommentPage is one page of comments ordered newest first.
type CommentPage struct {
	Comments   []Comment `json:"comments"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
}

// CreateCommentInput carries a validated comment creation request.
type CreateCommentInput struct {
	AuthorName     string `json:"author_name" validate:"required,max=60"`
	AuthorSiteSlug string `json:"author_site_slug" validate:"omitempty,max=60"`
	Content        string `json:"content" validate:"required,max=4000"`
}
