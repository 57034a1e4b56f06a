package service

import (
	"context"
	"strings"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
)

// PageViewStore abstracts the persisted view counters.
type PageViewStore interface {
	IncrementAndGet(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error)
	Get(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error)
	GetCounts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error)
}

// PageViewService counts page views per site resource. Counters are
// best-effort uniqueness at most: the HTTP layer throttles repeats per IP,
// the counter itself is monotonic.
type PageViewService struct {
	store PageViewStore
}

// NewPageViewService creates a page view service implementation.
func NewPageViewService(store PageViewStore) *PageViewService {
	return &PageViewService{store: store}
}

// Increment bumps the counter for one resource and returns the new value.
// An empty resource key is a silent no-op returning zero.
func (s *PageViewService) Increment(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	resourceType, resourceKey, err := normalizeViewResource(resourceType, resourceKey)
	if err != nil {
		return 0, err
	}
	if resourceKey == "" {
		return 0, nil
	}
	return s.store.IncrementAndGet(ctx, siteID, resourceType, resourceKey)
}

// Count returns the current counter without incrementing. Missing rows read
// as zero.
func (s *PageViewService) Count(ctx context.Context, siteID int64, resourceType, resourceKey string) (int64, error) {
	resourceType, resourceKey, err := normalizeViewResource(resourceType, resourceKey)
	if err != nil {
		return 0, err
	}
	if resourceKey == "" {
		return 0, nil
	}
	return s.store.Get(ctx, siteID, resourceType, resourceKey)
}

// Counts batch-reads counters for several resources of one type. Keys with
// no recorded views are absent from the result.
func (s *PageViewService) Counts(ctx context.Context, siteID int64, resourceType string, resourceKeys []string) (map[string]int64, error) {
	resourceType, ok := models.NormalizeResourceType(strings.TrimSpace(strings.ToLower(resourceType)))
	if !ok {
		return nil, errs.ErrInvalidResourceType
	}

	keys := make([]string, 0, len(resourceKeys))
	for _, k := range resourceKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return s.store.GetCounts(ctx, siteID, resourceType, keys)
}

func normalizeViewResource(resourceType, resourceKey string) (string, string, error) {
	resourceType, ok := models.NormalizeResourceType(strings.TrimSpace(strings.ToLower(resourceType)))
	if !ok {
		return "", "", errs.ErrInvalidResourceType
	}
	resourceKey = strings.TrimSpace(resourceKey)
	// The home counter always lives under one fixed key.
	if resourceType == models.ResourceTypeHome {
		resourceKey = models.ResourceTypeHome
	}
	return resourceType, resourceKey, nil
}
