package domain

import (
	"context"
	"io"
)

// ArchiveDestination receives the archive bytes. Open is called at most once, right
// before the first entry is written, so a build that ends in ErrNoMedia or
// ErrAllFetchesFailed never opens it.
type ArchiveDestination interface {
	Open(event *Event) (io.Writer, error)
}

// SkippedItem is a media item left out of an archive because its bytes could not be fetched.
type SkippedItem struct {
	MediaID string `json:"media_id"`
	URL     string `json:"url"`
	Reason  string `json:"reason"`
}

// ArchiveResult summarises a finished archive build.
type ArchiveResult struct {
	Event    *Event
	Included []string
	Skipped  []SkippedItem
}

// MediaFetcher downloads the bytes behind a public media URL, refusing bodies over limit bytes.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string, limit int64) ([]byte, error)
}

// ArchiveService builds a single zip archive out of an event's album.
type ArchiveService interface {
	BuildArchive(ctx context.Context, eventID string, dst ArchiveDestination) (*ArchiveResult, error)
}

// QRRenderer turns a URL into a scannable PNG image.
type QRRenderer interface {
	Render(url string) ([]byte, error)
}

// OrphanSweeper removes blobs that no media item references.
type OrphanSweeper interface {
	SweepEvent(ctx context.Context, eventID string) (removed []string, err error)
	SweepAll(ctx context.Context) (removed int, err error)
}
