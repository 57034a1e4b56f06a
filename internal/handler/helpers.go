package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
)

// reactorCookieName holds the durable anonymous reactor token client-side.
const reactorCookieName = "inkwell_reactor"

const reactorCookieMaxAge = 365 * 24 * 60 * 60

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInvalidReactionKey),
		errors.Is(err, errs.ErrInvalidActorToken),
		errors.Is(err, errs.ErrInvalidResourceType),
		errors.Is(err, errs.ErrRateKeyTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeRateLimited answers a throttled request with a retry hint.
func writeRateLimited(w http.ResponseWriter, result models.RateLimitResult) {
	seconds := int(math.Ceil(result.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, "too many requests")
}

func pathSiteID(r *http.Request) (int64, error) {
	siteID, err := strconv.ParseInt(r.PathValue("siteID"), 10, 64)
	if err != nil || siteID < 1 {
		return 0, fmt.Errorf("invalid site id")
	}
	return siteID, nil
}

// clientIP extracts the originating address, trusting the left-most
// X-Forwarded-For entry set by the platform's edge proxy.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func reactorCookieToken(r *http.Request) string {
	cookie, err := r.Cookie(reactorCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setReactorCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     reactorCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   reactorCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// rateKey builds a throttle key scoped to the acting IP, the tenant and the
// action, truncated to the stored column size.
func rateKey(ip string, siteID int64, action string) string {
	key := fmt.Sprintf("%s:%d:%s", ip, siteID, action)
	if len(key) > models.MaxRateKeyLength {
		key = key[:models.MaxRateKeyLength]
	}
	return key
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
