package services

import (
	"archive/zip"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"eventalbum/internal/domain"
)

const defaultArchiveExtension = "jpg"

type archiveService struct {
	eventRepo    domain.EventRepository
	mediaRepo    domain.MediaRepository
	fetcher      domain.MediaFetcher
	observer     domain.MediaObserver
	logger       *slog.Logger
	fetchTimeout time.Duration
	maxItemBytes int64
	listTimeout  time.Duration
}

// NewArchiveService returns the bulk archive builder. fetchTimeout bounds each media
// download; maxItemBytes caps a single item's size (normally the upload ceiling).
func NewArchiveService(eventRepo domain.EventRepository,
	mediaRepo domain.MediaRepository,
	fetcher domain.MediaFetcher,
	observer domain.MediaObserver,
	logger *slog.Logger,
	fetchTimeout time.Duration,
	maxItemBytes int64,
	listTimeout time.Duration,
) domain.ArchiveService {
	if observer == nil {
		observer = domain.NoopObserver()
	}
	return &archiveService{
		eventRepo:    eventRepo,
		mediaRepo:    mediaRepo,
		fetcher:      fetcher,
		observer:     observer,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		maxItemBytes: maxItemBytes,
		listTimeout:  listTimeout,
	}
}

func (s *archiveService) BuildArchive(ctx context.Context, eventID string, dst domain.ArchiveDestination) (*domain.ArchiveResult, error) {
	start := time.Now()
	res, err := s.build(ctx, eventID, dst)
	var included, skipped int
	if res != nil {
		included, skipped = len(res.Included), len(res.Skipped)
	}
	s.observer.RecordArchive(time.Since(start), included, skipped, err)
	return res, err
}

func (s *archiveService) build(ctx context.Context, eventID string, dst domain.ArchiveDestination) (*domain.ArchiveResult, error) {
	event, items, err := s.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoMedia
	}

	// Ascending upload order so entry numbering is reproducible.
	slices.SortStableFunc(items, func(a, b *domain.MediaItem) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	res := &domain.ArchiveResult{Event: event}
	var zw *zip.Writer
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := s.fetch(ctx, item.URL)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.logger.WarnContext(ctx, "archive item skipped", "event_id", event.ID, "media_id", item.ID, "url", item.URL, "err", err)
			res.Skipped = append(res.Skipped, domain.SkippedItem{MediaID: item.ID, URL: item.URL, Reason: err.Error()})
			continue
		}

		if zw == nil {
			w, err := dst.Open(event)
			if err != nil {
				return res, fmt.Errorf("open archive destination: %w", err)
			}
			zw = newZipWriter(w)
		}
		name := ArchiveEntryName(len(res.Included)+1, item.ContributorName, item.URL)
		if err := writeEntry(zw, name, item.UploadedAt, data); err != nil {
			return res, fmt.Errorf("write archive entry %s: %w", name, err)
		}
		res.Included = append(res.Included, name)
	}

	if zw == nil {
		return res, domain.ErrAllFetchesFailed
	}
	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("finish archive: %w", err)
	}
	return res, nil
}

func (s *archiveService) load(ctx context.Context, eventID string) (*domain.Event, []*domain.MediaItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	items, err := s.mediaRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list media: %w", err)
	}
	return event, items, nil
}

func (s *archiveService) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	data, err := s.fetcher.Fetch(ctx, rawURL, s.maxItemBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageReadFailed, err)
	}
	return data, nil
}

func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})
	return zw
}

func writeEntry(zw *zip.Writer, name string, modified time.Time, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ArchiveEntryName returns "{seq}-{contributor}.{ext}" for an archive entry.
func ArchiveEntryName(seq int, contributorName, mediaURL string) string {
	return fmt.Sprintf("%d-%s.%s", seq, SanitizeContributorName(contributorName), extensionFromURL(mediaURL))
}

// SanitizeContributorName trims surrounding whitespace, then replaces every rune outside
// [A-Za-z0-9] with '_'. A name that is empty after trimming becomes "guest".
func SanitizeContributorName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "guest"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}

// extensionFromURL returns the extension of the URL path without the dot, ignoring the
// query string, or "jpg" when there is none.
func extensionFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return defaultArchiveExtension
	}
	return ext
}
