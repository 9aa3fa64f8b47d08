package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventalbum/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	store          domain.ObjectStore
	emailService   domain.EmailService
	observer       domain.MediaObserver
	logger         *slog.Logger
	publicBaseURL  string
	contextTimeout time.Duration
}

// NewEventService returns the organizer event service. publicBaseURL is the guest site
// root; an event's share link is publicBaseURL + "/" + slug.
func NewEventService(eventRepo domain.EventRepository,
	store domain.ObjectStore,
	emailService domain.EmailService,
	observer domain.MediaObserver,
	logger *slog.Logger,
	publicBaseURL string,
	timeout time.Duration,
) domain.EventService {
	if observer == nil {
		observer = domain.NoopObserver()
	}
	return &eventService{
		eventRepo:      eventRepo,
		store:          store,
		emailService:   emailService,
		observer:       observer,
		logger:         logger,
		publicBaseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		contextTimeout: timeout,
	}
}

// CreateEvent reserves the event's slug and stores it. The slug is normalized, or
// derived from the honoree names when empty. A taken slug yields domain.ErrConflict;
// the caller must pick another one.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, organizerEmail string) error {
	event.PartnerOneName = strings.TrimSpace(event.PartnerOneName)
	event.PartnerTwoName = strings.TrimSpace(event.PartnerTwoName)
	if event.PartnerOneName == "" || event.PartnerTwoName == "" {
		return fmt.Errorf("%w: both honoree names are required", domain.ErrValidationFailed)
	}
	if event.Slug == "" {
		event.Slug = DeriveSlug(event.PartnerOneName, event.PartnerTwoName)
	} else {
		event.Slug = NormalizeSlug(event.Slug)
	}
	if !validSlugLength(event.Slug) {
		return fmt.Errorf("%w: slug must have at least %d letters or digits", domain.ErrValidationFailed, minSlugLength)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// The unique index decides; Create reports a lost race as ErrConflict.
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("%w: %q", domain.ErrConflict, event.Slug)
		}
		return fmt.Errorf("create event: %w", err)
	}

	if organizerEmail != "" && s.emailService != nil {
		err := s.emailService.SendShareLink(ctx, &domain.ShareLinkEmailData{
			Email:          organizerEmail,
			PartnerOneName: event.PartnerOneName,
			PartnerTwoName: event.PartnerTwoName,
			ShareURL:       s.ShareURL(event),
			Slug:           event.Slug,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "share link email failed", "event_id", event.ID, "err", err)
		}
	}
	return nil
}

// SlugAvailable normalizes candidate and reports whether it is free right now.
// It is advisory only: CreateEvent is the authority.
func (s *eventService) SlugAvailable(ctx context.Context, candidate string) (string, bool, error) {
	slug := NormalizeSlug(candidate)
	if !validSlugLength(slug) {
		return slug, false, fmt.Errorf("%w: slug must have at least %d letters or digits", domain.ErrValidationFailed, minSlugLength)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	exists, err := s.eventRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return slug, false, fmt.Errorf("check slug: %w", err)
	}
	return slug, !exists, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetActiveEventBySlug resolves the guest page. Inactive events are reported as not found.
func (s *eventService) GetActiveEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, NormalizeSlug(slug), true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, ownerID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, update domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := authorizeOwner(event, ownerID); err != nil {
		return nil, err
	}
	if update.Empty() {
		return event, nil
	}
	updated, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event; the store cascades to its media items. The event's
// blobs are removed afterwards, so a failure here leaves only unreferenced blobs.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := authorizeOwner(event, ownerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := deleteEventBlobs(ctx, s.store, event.ID, "event_delete", s.observer, s.logger)
	if err != nil {
		return fmt.Errorf("delete event blobs: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", event.ID, "blobs_removed", n)
	return nil
}

// ShareURL is the guest link encoded in the event's QR code.
func (s *eventService) ShareURL(event *domain.Event) string {
	return s.publicBaseURL + "/" + event.Slug
}
