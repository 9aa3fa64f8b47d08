package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventalbum/internal/domain"
)

type reconcileService struct {
	eventRepo   domain.EventRepository
	mediaRepo   domain.MediaRepository
	store       domain.ObjectStore
	observer    domain.MediaObserver
	logger      *slog.Logger
	gracePeriod time.Duration
	now         func() time.Time
}

// NewOrphanSweeper returns a sweeper that deletes blobs no media item references.
// Blobs younger than gracePeriod are kept so uploads still in flight are never removed.
func NewOrphanSweeper(eventRepo domain.EventRepository,
	mediaRepo domain.MediaRepository,
	store domain.ObjectStore,
	observer domain.MediaObserver,
	logger *slog.Logger,
	gracePeriod time.Duration,
) domain.OrphanSweeper {
	if observer == nil {
		observer = domain.NoopObserver()
	}
	return &reconcileService{
		eventRepo:   eventRepo,
		mediaRepo:   mediaRepo,
		store:       store,
		observer:    observer,
		logger:      logger,
		gracePeriod: gracePeriod,
		now:         time.Now,
	}
}

func (s *reconcileService) SweepEvent(ctx context.Context, eventID string) ([]string, error) {
	keys, err := s.store.List(ctx, eventPrefix(eventID))
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	items, err := s.mediaRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	referenced := make(map[string]struct{}, len(items))
	for _, item := range items {
		referenced[item.URL] = struct{}{}
	}

	cutoff := s.now().Add(-s.gracePeriod)
	var orphans []string
	for _, key := range keys {
		if _, ok := referenced[s.store.PublicURL(key)]; ok {
			continue
		}
		// Keys without an embedded timestamp were not written by intake; leave them alone.
		ts, ok := keyTimestamp(key)
		if !ok || ts.After(cutoff) {
			continue
		}
		orphans = append(orphans, key)
	}
	if len(orphans) == 0 {
		return nil, nil
	}
	if err := deleteBlobs(ctx, s.store, orphans, "orphan_sweep", s.observer, s.logger); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "orphan blobs removed", "event_id", eventID, "count", len(orphans))
	return orphans, nil
}

// SweepAll sweeps every event, continuing past per-event failures.
func (s *reconcileService) SweepAll(ctx context.Context) (int, error) {
	ids, err := s.eventRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}
	removed := 0
	var firstErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		orphans, err := s.SweepEvent(ctx, id)
		if err != nil {
			s.logger.ErrorContext(ctx, "orphan sweep failed", "event_id", id, "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("sweep event %s: %w", id, err)
			}
			continue
		}
		removed += len(orphans)
	}

	n, err := s.sweepDeletedEvents(ctx, ids)
	removed += n
	if err != nil && firstErr == nil {
		firstErr = err
	}
	return removed, firstErr
}

// sweepDeletedEvents removes blobs whose event no longer exists, e.g. when the blob
// cleanup after an event delete failed.
func (s *reconcileService) sweepDeletedEvents(ctx context.Context, liveIDs []string) (int, error) {
	live := make(map[string]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = struct{}{}
	}
	keys, err := s.store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}
	cutoff := s.now().Add(-s.gracePeriod)
	var orphans []string
	for _, key := range keys {
		eventID, _, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		if _, ok := live[eventID]; ok {
			continue
		}
		if ts, ok := keyTimestamp(key); !ok || ts.After(cutoff) {
			continue
		}
		orphans = append(orphans, key)
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	if err := deleteBlobs(ctx, s.store, orphans, "orphan_sweep", s.observer, s.logger); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "blobs of deleted events removed", "count", len(orphans))
	return len(orphans), nil
}
