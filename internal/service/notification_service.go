package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"inkwell/engagement-service/internal/errs"
	"inkwell/engagement-service/internal/models"
	"inkwell/engagement-service/pkg/crypto"
	"inkwell/engagement-service/pkg/logger"
	"inkwell/engagement-service/pkg/metrics"
)

const (
	// trimProbability is the per-event chance of firing the retention trim.
	trimProbability = 0.02
	// processTimeout bounds one detached pipeline run, relay included.
	processTimeout = 10 * time.Second
)

// NotificationStore abstracts the persisted notification rows.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.SiteNotification) (uint64, error)
	List(ctx context.Context, siteID int64, filter models.NotificationFilter) ([]models.SiteNotification, int64, error)
	MarkRead(ctx context.Context, siteID int64, ids []uint64) error
	MarkAllRead(ctx context.Context, siteID int64) error
	TrimToRecent(ctx context.Context, siteID int64, keep int) (int64, error)
}

// SettingsStore abstracts the persisted per-site relay configuration.
type SettingsStore interface {
	Get(ctx context.Context, siteID int64) (*models.TelegramSettings, error)
	Upsert(ctx context.Context, settings *models.TelegramSettings) error
}

// NotificationService runs the fan-out pipeline: normalize an event, persist
// the in-app row, then relay to the site's chat channel when configured.
// The in-app row is written regardless of relay configuration or outcome.
type NotificationService struct {
	repo     NotificationStore
	settings SettingsStore
	relay    RelayChannel
	secrets  *crypto.SecretBox
	log      *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	baseDomain string

	// injectable for deterministic tests
	now    func() time.Time
	chance func() float64

	wg sync.WaitGroup
}

// NewNotificationService creates a notification service implementation.
// metrics may be nil.
func NewNotificationService(repo NotificationStore, settings SettingsStore, relay RelayChannel,
	secrets *crypto.SecretBox, baseDomain string, log *logger.Logger, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		repo:       repo,
		settings:   settings,
		relay:      relay,
		secrets:    secrets,
		log:        log,
		metrics:    m,
		validate:   validator.New(),
		baseDomain: baseDomain,
		now:        time.Now,
		chance:     rand.Float64,
	}
}

// Enqueue hands an event to the pipeline without blocking the caller. Errors
// are logged, never propagated; a failed notification must not fail the
// comment or reaction that produced it.
func (s *NotificationService) Enqueue(siteID int64, event models.NotificationEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.WithSiteID(siteID).WithField("panic", r).Error("notification pipeline panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		if err := s.Process(ctx, siteID, event); err != nil {
			s.log.WithSiteID(siteID).WithError(err).Warn("notification pipeline failed")
		}
	}()
}

// Wait blocks until every enqueued pipeline run has finished. Called on
// shutdown so in-flight deliveries are not cut off.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// Process runs the pipeline synchronously for one event.
func (s *NotificationService) Process(ctx context.Context, siteID int64, event models.NotificationEvent) error {
	if err := s.validate.Struct(event); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	row := s.buildRow(siteID, event)
	if _, err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("persisting notification: %w", err)
	}

	s.maybeTrim(ctx, siteID)

	if err := s.deliver(ctx, row, event.SiteSlug); err != nil {
		s.countRelay("error")
		return err
	}
	return nil
}

// buildRow normalizes and truncates an event into its stored form.
func (s *NotificationService) buildRow(siteID int64, event models.NotificationEvent) *models.SiteNotification {
	row := &models.SiteNotification{
		SiteID:        siteID,
		EventType:     event.EventType,
		PostSlug:      strings.TrimSpace(event.PostSlug),
		PostTitle:     truncateRunes(strings.TrimSpace(event.PostTitle), models.MaxPostTitleLength),
		ActorName:     truncateRunes(strings.TrimSpace(event.ActorName), models.MaxActorNameLength),
		ActorSiteSlug: truncateRunes(strings.TrimSpace(event.ActorSiteSlug), models.MaxActorNameLength),
		TargetPath:    sanitizeTargetPath(event.TargetPath),
		CreatedAt:     s.now().UTC(),
	}

	if row.ActorName == "" {
		row.ActorName = "Someone"
	}

	switch event.EventType {
	case models.EventTypeComment:
		row.ContentPreview = truncateRunes(strings.TrimSpace(event.ContentPreview), models.MaxContentPreviewLength)
	case models.EventTypeReaction:
		if preset, ok := models.PresetByKey(event.ReactionKey); ok {
			row.ReactionKey = preset.Key
			row.ReactionLabel = preset.Label
		}
	}

	return row
}

// deliver relays one stored notification when the site has a working,
// opted-in Telegram configuration. Missing or broken configuration is a
// silent skip, not an error.
func (s *NotificationService) deliver(ctx context.Context, row *models.SiteNotification, siteSlug string) error {
	settings, err := s.settings.Get(ctx, row.SiteID)
	if err != nil {
		return fmt.Errorf("loading relay settings: %w", err)
	}
	if settings == nil || !settings.Enabled {
		s.countRelay("skipped")
		return nil
	}
	if row.EventType == models.EventTypeComment && !settings.NotifyComments {
		s.countRelay("skipped")
		return nil
	}
	if row.EventType == models.EventTypeReaction && !settings.NotifyReactions {
		s.countRelay("skipped")
		return nil
	}
	if settings.ChatID == "" || settings.BotTokenEncrypted == "" {
		s.countRelay("skipped")
		return nil
	}

	botToken, err := s.secrets.Decrypt(settings.BotTokenEncrypted)
	if err != nil {
		// Undecryptable credentials disable the relay; the row is already
		// stored, so the site owner still sees the notification in-app.
		s.log.WithSiteID(row.SiteID).Warn("stored bot token does not decrypt, skipping relay")
		s.countRelay("skipped")
		return nil
	}

	if err := s.relay.Send(ctx, botToken, settings.ChatID, s.formatMessage(row, siteSlug)); err != nil {
		return fmt.Errorf("relaying notification: %w", err)
	}
	s.countRelay("ok")
	return nil
}

// formatMessage renders the chat text for one notification. Output is
// deterministic for a given row.
func (s *NotificationService) formatMessage(row *models.SiteNotification, siteSlug string) string {
	var b strings.Builder

	switch row.EventType {
	case models.EventTypeComment:
		fmt.Fprintf(&b, "💬 %s commented on \"%s\"", row.ActorName, row.PostTitle)
		if row.ContentPreview != "" {
			b.WriteString("\n\n")
			b.WriteString(row.ContentPreview)
		}
	case models.EventTypeReaction:
		icon := "✨"
		if preset, ok := models.PresetByKey(row.ReactionKey); ok {
			icon = preset.Icon
		}
		fmt.Fprintf(&b, "%s %s reacted with %s to \"%s\"", icon, row.ActorName, row.ReactionLabel, row.PostTitle)
	}

	if siteSlug != "" && row.TargetPath != "" {
		fmt.Fprintf(&b, "\n\nhttps://%s.%s%s", siteSlug, s.baseDomain, row.TargetPath)
	}
	fmt.Fprintf(&b, "\n%s", row.CreatedAt.Format(time.RFC3339))

	return b.String()
}

// maybeTrim enforces the per-site retention cap on ~2% of events. Trim
// failures are logged and never fail the pipeline.
func (s *NotificationService) maybeTrim(ctx context.Context, siteID int64) {
	if s.chance() >= trimProbability {
		return
	}
	trimmed, err := s.repo.TrimToRecent(ctx, siteID, models.NotificationRetention)
	if err != nil {
		s.log.WithSiteID(siteID).WithError(err).Warn("notification trim failed")
		return
	}
	if trimmed > 0 {
		s.log.WithSiteID(siteID).WithField("trimmed", trimmed).Debug("trimmed old notifications")
	}
}

// List returns one page of notifications, newest first.
func (s *NotificationService) List(ctx context.Context, siteID int64, filter models.NotificationFilter) (*models.NotificationPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 10
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	notifications, total, err := s.repo.List(ctx, siteID, filter)
	if err != nil {
		return nil, err
	}
	return &models.NotificationPage{
		Notifications: notifications,
		Total:         total,
		Page:          filter.Page,
		PerPage:       filter.PerPage,
	}, nil
}

// MarkRead marks the given notifications read. Read is terminal; rows
// already read keep their original read time.
func (s *NotificationService) MarkRead(ctx context.Context, siteID int64, ids []uint64) error {
	return s.repo.MarkRead(ctx, siteID, ids)
}

// MarkAllRead marks every unread notification of a site read.
func (s *NotificationService) MarkAllRead(ctx context.Context, siteID int64) error {
	return s.repo.MarkAllRead(ctx, siteID)
}

// GetSettings returns a site's relay configuration. Sites without a stored
// row get defaults with both event types opted in but the relay disabled.
// The plaintext bot token is included only when includeSecret is set.
func (s *NotificationService) GetSettings(ctx context.Context, siteID int64, includeSecret bool) (*models.TelegramSettings, error) {
	settings, err := s.settings.Get(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &models.TelegramSettings{
			SiteID:          siteID,
			NotifyComments:  true,
			NotifyReactions: true,
		}
	}

	settings.HasBotToken = settings.BotTokenEncrypted != ""
	if includeSecret && settings.HasBotToken {
		token, err := s.secrets.Decrypt(settings.BotTokenEncrypted)
		if err != nil {
			return nil, fmt.Errorf("decrypting stored bot token: %w", err)
		}
		settings.BotToken = token
	}
	return settings, nil
}

// UpsertSettings applies a partial update to a site's relay configuration.
// Bot token semantics: nil keeps the stored ciphertext, empty clears it,
// any other value is encrypted before storage.
func (s *NotificationService) UpsertSettings(ctx context.Context, siteID int64, patch models.TelegramSettingsPatch) (*models.TelegramSettings, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	current, err := s.GetSettings(ctx, siteID, false)
	if err != nil {
		return nil, err
	}

	if patch.Enabled != nil {
		current.Enabled = *patch.Enabled
	}
	if patch.NotifyComments != nil {
		current.NotifyComments = *patch.NotifyComments
	}
	if patch.NotifyReactions != nil {
		current.NotifyReactions = *patch.NotifyReactions
	}
	if patch.ChatID != nil {
		current.ChatID = strings.TrimSpace(*patch.ChatID)
	}
	if patch.BotToken != nil {
		token := strings.TrimSpace(*patch.BotToken)
		if token == "" {
			current.BotTokenEncrypted = ""
		} else {
			encrypted, err := s.secrets.Encrypt(token)
			if err != nil {
				return nil, fmt.Errorf("encrypting bot token: %w", err)
			}
			current.BotTokenEncrypted = encrypted
		}
	}

	if err := s.settings.Upsert(ctx, current); err != nil {
		return nil, err
	}

	current.HasBotToken = current.BotTokenEncrypted != ""
	current.BotToken = ""
	current.UpdatedAt = s.now().UTC()
	return current, nil
}

func (s *NotificationService) countRelay(outcome string) {
	if s.metrics != nil {
		s.metrics.RelayCounter.WithLabelValues(outcome).Inc()
	}
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// sanitizeTargetPath keeps only site-relative paths. Anything that could be
// scheme-relative or absolute is dropped.
func sanitizeTargetPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return ""
	}
	if strings.Contains(path, "://") {
		return ""
	}
	return path
}
