package service

import (
	"context"
	"sort"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
)

// ReactionStore abstracts the persisted per-actor toggle rows.
type ReactionStore interface {
	Deactivate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) (bool, error)
	Activate(ctx context.Context, siteID int64, postSlug, reactionKey, actorToken string) error
	CountsByKey(ctx context.Context, siteID int64, postSlug string) (map[string]int64, error)
	SelectedKeys(ctx context.Context, siteID int64, postSlug, actorToken string) ([]string, error)
}

// ReactionCache is an optional read-through cache for aggregate counts.
type ReactionCache interface {
	GetReactionCounts(ctx context.Context, siteID int64, postSlug string) (map[string]int64, bool)
	SetReactionCounts(ctx context.Context, siteID int64, postSlug string, counts map[string]int64)
	InvalidateReactionCounts(ctx context.Context, siteID int64, postSlug string)
}

// Notifier hands events to the notification pipeline without blocking.
type Notifier interface {
	Enqueue(siteID int64, event models.NotificationEvent)
}

// ToggleInput carries one toggle request. SiteSlug and PostTitle feed the
// notification message only; they do not affect toggle state.
type ToggleInput struct {
	SiteID      int64
	SiteSlug    string
	PostSlug    string
	PostTitle   string
	ReactionKey string
	ActorToken  string
	ActorName   string
}

// ReactionService is the toggle engine over the fixed preset vocabulary.
type ReactionService struct {
	store    ReactionStore
	cache    ReactionCache
	notifier Notifier
}

// NewReactionService creates a reaction service implementation.
func NewReactionService(store ReactionStore, cache ReactionCache, notifier Notifier) *ReactionService {
	return &ReactionService{store: store, cache: cache, notifier: notifier}
}

// Toggle flips one actor's reaction flag and reports the resulting state.
// Activation fires a notification event; deactivation is silent.
func (s *ReactionService) Toggle(ctx context.Context, input ToggleInput) (bool, error) {
	if !models.IsValidReactionKey(input.ReactionKey) {
		return false, errs.ErrInvalidReactionKey
	}
	if !IsValidActorToken(input.ActorToken) {
		return false, errs.ErrInvalidActorToken
	}

	removed, err := s.store.Deactivate(ctx, input.SiteID, input.PostSlug, input.ReactionKey, input.ActorToken)
	if err != nil {
		return false, err
	}

	active := !removed
	if active {
		if err := s.store.Activate(ctx, input.SiteID, input.PostSlug, input.ReactionKey, input.ActorToken); err != nil {
			return false, err
		}
	}

	if s.cache != nil {
		s.cache.InvalidateReactionCounts(ctx, input.SiteID, input.PostSlug)
	}

	if active && s.notifier != nil {
		s.notifier.Enqueue(input.SiteID, models.NotificationEvent{
			EventType:   models.EventTypeReaction,
			SiteSlug:    input.SiteSlug,
			PostSlug:    input.PostSlug,
			PostTitle:   input.PostTitle,
			ActorName:   input.ActorName,
			ReactionKey: input.ReactionKey,
			TargetPath:  "/" + input.PostSlug,
		})
	}

	return active, nil
}

// Snapshot returns the aggregate view of a post for one actor: every preset
// with its count, ordered by count descending with vocabulary order breaking
// ties, plus the actor's own active keys.
func (s *ReactionService) Snapshot(ctx context.Context, siteID int64, postSlug, actorToken string) (models.ReactionSnapshot, error) {
	counts, err := s.counts(ctx, siteID, postSlug)
	if err != nil {
		return models.ReactionSnapshot{}, err
	}

	var selected []string
	if IsValidActorToken(actorToken) {
		selected, err = s.store.SelectedKeys(ctx, siteID, postSlug, actorToken)
		if err != nil {
			return models.ReactionSnapshot{}, err
		}
	}
	selectedSet := make(map[string]bool, len(selected))
	for _, key := range selected {
		selectedSet[key] = true
	}

	snapshot := models.ReactionSnapshot{
		Items:        make([]models.ReactionItem, 0, len(models.ReactionPresets)),
		SelectedKeys: make([]string, 0, len(selected)),
	}
	for _, preset := range models.ReactionPresets {
		count := counts[preset.Key]
		snapshot.Total += count
		snapshot.Items = append(snapshot.Items, models.ReactionItem{
			Key:      preset.Key,
			Icon:     preset.Icon,
			Label:    preset.Label,
			Count:    count,
			Selected: selectedSet[preset.Key],
		})
		if selectedSet[preset.Key] {
			snapshot.SelectedKeys = append(snapshot.SelectedKeys, preset.Key)
		}
	}

	// Items start in vocabulary order, so a stable sort on count alone
	// preserves that order among equals.
	sort.SliceStable(snapshot.Items, func(i, j int) bool {
		return snapshot.Items[i].Count > snapshot.Items[j].Count
	})

	return snapshot, nil
}

func (s *ReactionService) counts(ctx context.Context, siteID int64, postSlug string) (map[string]int64, error) {
	if s.cache != nil {
		if counts, ok := s.cache.GetReactionCounts(ctx, siteID, postSlug); ok {
			return counts, nil
		}
	}

	counts, err := s.store.CountsByKey(ctx, siteID, postSlug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetReactionCounts(ctx, siteID, postSlug, counts)
	}
	return counts, nil
}
