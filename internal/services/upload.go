package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventalbum/internal/domain"
)

// compensationTimeout bounds the blob delete that undoes a failed metadata insert.
const compensationTimeout = 10 * time.Second

type uploadService struct {
	eventRepo      domain.EventRepository
	mediaRepo      domain.MediaRepository
	store          domain.ObjectStore
	validator      *MediaValidator
	observer       domain.MediaObserver
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
	newSuffix      func() string
}

// NewUploadService returns the guest upload intake service.
func NewUploadService(eventRepo domain.EventRepository,
	mediaRepo domain.MediaRepository,
	store domain.ObjectStore,
	validator *MediaValidator,
	observer domain.MediaObserver,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UploadService {
	if observer == nil {
		observer = domain.NoopObserver()
	}
	return &uploadService{
		eventRepo:      eventRepo,
		mediaRepo:      mediaRepo,
		store:          store,
		validator:      validator,
		observer:       observer,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		newSuffix:      uuid.NewString,
	}
}

func (s *uploadService) Submit(ctx context.Context, in domain.UploadInput) (*domain.MediaItem, error) {
	start := time.Now()
	item, err := s.submit(ctx, in)
	var size int64
	if in.File != nil {
		size = in.File.Size
	}
	s.observer.RecordUpload(time.Since(start), size, err)
	return item, err
}

func (s *uploadService) submit(ctx context.Context, in domain.UploadInput) (*domain.MediaItem, error) {
	eventID := strings.TrimSpace(in.EventID)
	name := strings.TrimSpace(in.ContributorName)
	switch {
	case eventID == "":
		return nil, fmt.Errorf("%w: event id is required", domain.ErrValidationFailed)
	case name == "":
		return nil, fmt.Errorf("%w: contributor name is required", domain.ErrValidationFailed)
	case in.File == nil || in.File.Body == nil:
		return nil, fmt.Errorf("%w: file is required", domain.ErrValidationFailed)
	}
	if err := s.validator.Validate(in.File.FileInfo); err != nil {
		return nil, err
	}
	var message *string
	if in.Message != nil {
		if m := strings.TrimSpace(*in.Message); m != "" {
			message = &m
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrEventInactive
	}

	now := s.now().UTC()
	key := storageKey(event.ID, in.File.Name, in.File.MimeType, now, s.newSuffix())
	url, err := s.store.Put(ctx, key, in.File.Body, in.File.Size, normalizeMediaType(in.File.MimeType))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageWriteFailed, err)
	}

	item := domain.NewMediaItem(event.ID, name, message, url, now)
	if err := s.mediaRepo.Create(ctx, item); err != nil {
		s.removeUnrecordedBlob(ctx, key, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataWriteFailed, err)
	}
	return item, nil
}

// removeUnrecordedBlob deletes a blob whose metadata insert failed. It runs detached from
// ctx so a disconnected client still gets its blob cleaned up.
func (s *uploadService) removeUnrecordedBlob(ctx context.Context, key string, cause error) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	err := s.store.Delete(dctx, key)
	s.observer.RecordBlobDelete("compensation", err)
	if err != nil {
		s.logger.ErrorContext(ctx, "compensating blob delete failed, orphan left for sweep",
			"key", key, "insert_err", cause, "err", err)
		return
	}
	s.logger.WarnContext(ctx, "metadata insert failed, blob removed", "key", key, "err", cause)
}

func (s *uploadService) ListByEvent(ctx context.Context, eventID string) ([]*domain.MediaItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.mediaRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	if items == nil {
		items = []*domain.MediaItem{}
	}
	return items, nil
}

// DeleteAllForEvent clears an album: records first, then every blob under the event prefix.
func (s *uploadService) DeleteAllForEvent(ctx context.Context, eventID, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get event: %w", err)
	}
	if err := authorizeOwner(event, ownerID); err != nil {
		return 0, err
	}
	n, err := s.mediaRepo.DeleteByEvent(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("delete media: %w", err)
	}
	if _, err := deleteEventBlobs(ctx, s.store, event.ID, "bulk_delete", s.observer, s.logger); err != nil {
		return n, fmt.Errorf("delete media blobs: %w", err)
	}
	return n, nil
}
