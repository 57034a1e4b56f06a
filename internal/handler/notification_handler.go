package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/pkg/logger"
)

// NotificationManager is the notification pipeline surface the handler needs.
type NotificationManager interface {
	List(ctx context.Context, siteID int64, filter models.NotificationFilter) (*models.NotificationPage, error)
	MarkRead(ctx context.Context, siteID int64, ids []uint64) error
	MarkAllRead(ctx context.Context, siteID int64) error
	GetSettings(ctx context.Context, siteID int64, includeSecret bool) (*models.TelegramSettings, error)
	UpsertSettings(ctx context.Context, siteID int64, patch models.TelegramSettingsPatch) (*models.TelegramSettings, error)
}

// NotificationHandler serves the site-owner dashboard endpoints:
// notification feed and relay settings. Owner authorization happens upstream
// at the platform gateway.
type NotificationHandler struct {
	notifications NotificationManager
	log           *logger.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications NotificationManager, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

// Register mounts the notification routes on mux.
func (h *NotificationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sites/{siteID}/notifications", h.List)
	mux.HandleFunc("POST /api/sites/{siteID}/notifications/read", h.MarkRead)
	mux.HandleFunc("GET /api/sites/{siteID}/notify-settings", h.GetSettings)
	mux.HandleFunc("PUT /api/sites/{siteID}/notify-settings", h.UpdateSettings)
}

// List returns one page of a site's notifications, newest first.
// GET /api/sites/{siteID}/notifications?page=1&per_page=10&unread=1
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.notifications.List(r.Context(), siteID, models.NotificationFilter{
		Page:       queryInt(r, "page", 1),
		PerPage:    queryInt(r, "per_page", 10),
		UnreadOnly: r.URL.Query().Get("unread") == "1",
	})
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("notification list failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type markReadRequest struct {
	IDs []uint64 `json:"ids"`
	All bool     `json:"all"`
}

// MarkRead marks notifications read, either a given set or all of them.
// POST /api/sites/{siteID}/notifications/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.All {
		err = h.notifications.MarkAllRead(r.Context(), siteID)
	} else {
		err = h.notifications.MarkRead(r.Context(), siteID, req.IDs)
	}
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("mark read failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetSettings returns the site's relay configuration. The stored bot token
// is only echoed back when explicitly requested.
// GET /api/sites/{siteID}/notify-settings?include_secret=1
func (h *NotificationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := h.notifications.GetSettings(r.Context(), siteID,
		r.URL.Query().Get("include_secret") == "1")
	if err != nil {
		h.log.WithSiteID(siteID).WithError(err).Error("settings read failed")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial update to the relay configuration.
// PUT /api/sites/{siteID}/notify-settings
func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	siteID, err := pathSiteID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch models.TelegramSettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.notifications.UpsertSettings(r.Context(), siteID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
