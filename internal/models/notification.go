package models

import "time"

// Notification event types.
const (
	EventTypeComment  = "comment"
	EventTypeReaction = "reaction"
)

// Field limits applied during event normalization.
const (
	MaxActorNameLength      = 60
	MaxPostTitleLength      = 120
	MaxContentPreviewLength = 320
)

// NotificationRetention is the approximate per-site row cap enforced by the
// probabilistic trim sweep.
const NotificationRetention = 800

// SiteNotification is one in-app notification row.
// read_at null means unread; read is terminal.
type SiteNotification struct {
	ID             uint64     `json:"id"`
	SiteID         int64      `json:"site_id"`
	EventType      string     `json:"event_type"`
	PostSlug       string     `json:"post_slug"`
	PostTitle      string     `json:"post_title"`
	ActorName      string     `json:"actor_name"`
	ActorSiteSlug  string     `json:"actor_site_slug,omitempty"`
	ContentPreview string     `json:"content_preview,omitempty"`
	ReactionKey    string     `json:"reaction_key,omitempty"`
	ReactionLabel  string     `json:"reaction_label,omitempty"`
	TargetPath     string     `json:"target_path,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// NotificationEvent is the raw event handed to the pipeline by the reaction
// engine and the comment store. Fields are normalized and truncated before
// persistence.
type NotificationEvent struct {
	EventType      string `validate:"required,oneof=comment reaction"`
	SiteSlug       string `validate:"omitempty,max=60"`
	PostSlug       string `validate:"required,max=200"`
	PostTitle      string
	ActorName      string
	ActorSiteSlug  string
	ContentPreview string
	ReactionKey    string
	TargetPath     string
}

// NotificationFilter controls notification listing.
type NotificationFilter struct {
	Page       int
	PerPage    int
	UnreadOnly bool
}

// NotificationPage is one page of notifications, newest first.
type NotificationPage struct {
	Notifications []SiteNotification `json:"notifications"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	PerPage       int                `json:"per_page"`
}
