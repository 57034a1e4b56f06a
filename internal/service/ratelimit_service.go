package service

import (
	"context"
	"math/rand"
	"time"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/pkg/logger"
)

const (
	// minRetryAfter floors the retry hint handed to throttled callers.
	minRetryAfter = time.Second
	// staleWindowAge is how long an untouched window row may linger before
	// the background sweep removes it.
	staleWindowAge = 24 * time.Hour
	// sweepProbability is the per-call chance of firing the stale sweep.
	sweepProbability = 0.01
)

// RateLimitStore abstracts the persisted fixed-window state.
type RateLimitStore interface {
	ConsumeWindow(ctx context.Context, key string, nowMs, windowMs int64) (int64, int, error)
	Delete(ctx context.Context, key string) error
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateLimitService is the fixed-window request throttle. Keys are
// caller-composed (client IP + tenant + action) so the same service throttles
// logins, comments, reactions and view increments with different budgets.
type RateLimitService struct {
	store RateLimitStore
	log   *logger.Logger

	// injectable for deterministic tests
	now    func() time.Time
	chance func() float64
}

// NewRateLimitService creates a rate limit service implementation.
func NewRateLimitService(store RateLimitStore, log *logger.Logger) *RateLimitService {
	return &RateLimitService{
		store:  store,
		log:    log,
		now:    time.Now,
		chance: rand.Float64,
	}
}

// Consume records one attempt for key and decides whether the caller may
// proceed. A fixed window permits bursts at window boundaries; that tradeoff
// keeps storage at one row per key.
func (s *RateLimitService) Consume(ctx context.Context, key string, window time.Duration, maxAttempts int) (models.RateLimitResult, error) {
	if len(key) == 0 || len(key) > models.MaxRateKeyLength {
		return models.RateLimitResult{}, errs.ErrRateKeyTooLong
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if window < time.Second {
		window = time.Second
	}

	nowMs := s.now().UnixMilli()
	windowMs := window.Milliseconds()

	windowStartMs, attempts, err := s.store.ConsumeWindow(ctx, key, nowMs, windowMs)
	if err != nil {
		return models.RateLimitResult{}, err
	}

	s.maybeSweep()

	result := models.RateLimitResult{
		Allowed:  attempts <= maxAttempts,
		Attempts: attempts,
	}
	if remaining := maxAttempts - attempts; remaining > 0 {
		result.Remaining = remaining
	}
	if !result.Allowed {
		retryAfter := time.Duration(windowMs-(nowMs-windowStartMs)) * time.Millisecond
		if retryAfter < minRetryAfter {
			retryAfter = minRetryAfter
		}
		result.RetryAfter = retryAfter
	}

	return result, nil
}

// Clear deletes a window row outright so the next attempt starts fresh,
// e.g. after a successful login.
func (s *RateLimitService) Clear(ctx context.Context, key string) error {
	if len(key) == 0 || len(key) > models.MaxRateKeyLength {
		return errs.ErrRateKeyTooLong
	}
	return s.store.Delete(ctx, key)
}

// maybeSweep fires the stale-row sweep on ~1% of calls, detached so the
// caller's response is never blocked on table maintenance.
func (s *RateLimitService) maybeSweep() {
	if s.chance() >= sweepProbability {
		return
	}

	cutoff := s.now().Add(-staleWindowAge)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.WithField("panic", r).Error("rate-limit sweep panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deleted, err := s.store.DeleteStale(ctx, cutoff)
		if err != nil {
			s.log.WithError(err).Warn("rate-limit sweep failed")
			return
		}
		if deleted > 0 {
			s.log.WithField("deleted", deleted).Debug("rate-limit sweep removed stale windows")
		}
	}()
}
