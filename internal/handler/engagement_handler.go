package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/internal/service"
	"inkwell/engagement-service/pkg/logger"
)

// Per-action throttle budgets, keyed per client IP and site.
const (
	reactionWindow      = time.Minute
	reactionMaxAttempts = 30

	commentWindow      = 5 * time.Minute
	commentMaxAttempts = 5

	viewWindow = 10 * time.Minute
)

// ReactionToggler is the reaction engine surface the handler needs.
type ReactionToggler interface {
	Toggle(ctx context.Context, input service.ToggleInput) (bool, error)
	Snapshot(ctx context.Context, siteID int64, postSlug, actorToken string) (models.ReactionSnapshot, error)
}

// CommentManager is the comment store surface the handler needs.
type CommentManager interface {
	Create(ctx context.Context, input service.CreateInput) (*models.Comment, error)
	List(ctx context.Context, siteID int64, postSlug string, page, perPage int) (*models.CommentPage, error)
	Delete(ctx context.Context, siteID int64, commentID uint64) error
	MoveToPost(ctx context.Context, siteID int64, fromSlug, toSlug string) (int64, error)
}

// ViewCounter is the view counter surface the handler needs.
type ViewCounter interface {
	Increment(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error)
	Count(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error)
	Counts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error)
}

// ActorResolver derives reactor tokens for incoming requests.
type ActorResolver interface {
	Resolve(ip, userAgent, cookieToken string) service.ActorResolution
}

// RateLimiter is the throttle surface the handler needs.
type RateLimiter interface {
	Consume(ctx context.Context, key string, window time.Duration, maxAttempts int) (models.RateLimitResult, error)
}

// EngagementHandler serves the public engagement endpoints: reactions,
// comments and view counters.
type EngagementHandler struct {
	reactions ReactionToggler
	comments  CommentManager
	views     ViewCounter
	actors    ActorResolver
	limiter   RateLimiter
	log       *logger.Logger
}

// NewEngagementHandler creates an engagement handler.
func NewEngagementHandler(reactions ReactionToggler, comments CommentManager, views ViewCounter,
	actors ActorResolver, limiter RateLimiter, log *logger.Logger) *EngagementHandler {
	return &EngagementHandler{
		reactions: reactions,
		comments:  comments,
		views:     views,
		actors:    actors,
		limiter:   limiter,
		log:       log,
	}
}

// Register mounts the engagement routes on mux.
func (h *EngagementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sites/{siteID}/posts/{slug}/reactions", h.GetReactions)
	mux.HandleFunc("POST /api/sites/{siteID}/posts/{slug}/reactions", h.ToggleReaction)
	mux.HandleFunc("GET /api/sites/{siteID}/posts/{slug}/comments", h.ListComments)
	mux.HandleFunc("POST /api/sites/{siteID}/posts/{slug}/comments", h.CreateComment)
	mux.HandleFunc("DELETE /api/sites/{siteID}/comments/{commentID}", h.DeleteComment)
	mux.HandleFunc("POST /api/sites/{siteID}/comments/move", h.MoveComments)
	mux.HandleFunc("POST /api/sites/{siteID}/views", h.RecordView)
	mux.HandleFunc("GET /api/sites/{siteID}/views", h.GetViews)
}

// GetReactions returns the reaction snapshot for a post.
// GET /api/sites/{siteID}/posts/{slug}/reactions
func (h *EngagementHandler) GetReactions(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := r.PathValue("slug")

	// Reads resolve the actor from an existing cookie only; they never mint
	// a new identity.
	actorToken := ""
	if cookie := reactorCookieToken(r); cookie != "" {
		actorToken = h.actors.Resolve(clientIP(r), r.UserAgent(), cookie).Token
	}

	snapshot, err := h.reactions.Snapshot(r.Context(), siteID, slug, actorToken)
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("reaction snapshot failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type toggleReactionRequest struct {
	ReactionKey string `json:"reaction_key"`
	PostTitle   string `json:"post_title"`
	SiteSlug    string `json:"site_slug"`
}

type toggleReactionResponse struct {
	Active   bool                    `json:"active"`
	Snapshot models.ReactionSnapshot `json:"snapshot"`
}

// ToggleReaction flips the caller's reaction on a post.
// POST /api/sites/{siteID}/posts/{slug}/reactions
func (h *EngagementHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := r.PathValue("slug")

	var req toggleReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ip := clientIP(r)
	result, err := h.limiter.Consume(r.Context(), rateKey(ip, siteID, "react"), reactionWindow, reactionMaxAttempts)
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("rate limit check failed")
		writeServiceError(w, err)
		return
	}
	if !result.Allowed {
		writeRateLimited(w, result)
		return
	}

	actor := h.actors.Resolve(ip, r.UserAgent(), reactorCookieToken(r))
	if actor.ShouldSetCookie {
		setReactorCookie(w, actor.Token)
	}

	active, err := h.reactions.Toggle(r.Context(), service.ToggleInput{
		SiteID:      siteID,
		SiteSlug:    req.SiteSlug,
		PostSlug:    slug,
		PostTitle:   req.PostTitle,
		ReactionKey: req.ReactionKey,
		ActorToken:  actor.Token,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	snapshot, err := h.reactions.Snapshot(r.Context(), siteID, slug, actor.Token)
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("reaction snapshot failed")
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleReactionResponse{Active: active, Snapshot: snapshot})
}

// ListComments returns one page of comments for a post.
// GET /api/sites/{siteID}/posts/{slug}/comments
func (h *EngagementHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := r.PathValue("slug")

	page, err := h.comments.List(r.Context(), siteID, slug,
		queryInt(r, "page", 1), queryInt(r, "per_page", 0))
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("comment list failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type createCommentRequest struct {
	models.CreateCommentInput
	PostTitle string `json:"post_title"`
	SiteSlug  string `json:"site_slug"`
}

// CreateComment appends a comment to a post.
// POST /api/sites/{siteID}/posts/{slug}/comments
func (h *EngagementHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := r.PathValue("slug")

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.limiter.Consume(r.Context(), rateKey(clientIP(r), siteID, "comment"), commentWindow, commentMaxAttempts)
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("rate limit check failed")
		writeServiceError(w, err)
		return
	}
	if !result.Allowed {
		writeRateLimited(w, result)
		return
	}

	comment, err := h.comments.Create(r.Context(), service.CreateInput{
		SiteID:    siteID,
		SiteSlug:  req.SiteSlug,
		PostSlug:  slug,
		PostTitle: req.PostTitle,
		Comment:   req.CreateCommentInput,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes a comment. Caller authorization happens upstream at
// the platform gateway; this service only scopes the delete to the site.
// DELETE /api/sites/{siteID}/comments/{commentID}
func (h *EngagementHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	commentID, err := strconv.ParseUint(r.PathValue("commentID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.comments.Delete(r.Context(), siteID, commentID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type moveCommentsRequest struct {
	FromSlug string `json:"from_slug"`
	ToSlug   string `json:"to_slug"`
}

// MoveComments re-homes comments after a post slug rename.
// POST /api/sites/{siteID}/comments/move
func (h *EngagementHandler) MoveComments(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req moveCommentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	moved, err := h.comments.MoveToPost(r.Context(), siteID, req.FromSlug, req.ToSlug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"moved": moved})
}

type recordViewRequest struct {
	ResourceType string `json:"resource_type"`
	ResourceKey  string `json:"resource_key"`
}

type viewCountResponse struct {
	ViewCount int64 `json:"view_count"`
}

// RecordView bumps a view counter. Repeat views from the same IP within the
// throttle window do not increment but still return the current count.
// POST /api/sites/{siteID}/views
func (h *EngagementHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req recordViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := rateKey(clientIP(r), siteID, "view:"+req.ResourceType+":"+req.ResourceKey)
	result, err := h.limiter.Consume(r.Context(), key, viewWindow, 1)
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("rate limit check failed")
		writeServiceError(w, err)
		return
	}

	var count int64
	if result.Allowed {
		count, err = h.views.Increment(r.Context(), siteID, req.ResourceType, req.ResourceKey)
	} else {
		count, err = h.views.Count(r.Context(), siteID, req.ResourceType, req.ResourceKey)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCountResponse{ViewCount: count})
}

// GetViews batch-reads view counters.
// GET /api/sites/{siteID}/views?resource_type=post&keys=a,b
func (h *EngagementHandler) GetViews(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resourceType := r.URL.Query().Get("resource_type")
	var keys []string
	if raw := r.URL.Query().Get("keys"); raw != "" {
		keys = strings.Split(raw, ",")
	}

	counts, err := h.views.Counts(r.Context(), siteID, resourceType, keys)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]int64{"counts": counts})
}
