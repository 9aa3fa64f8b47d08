package domain

import (
	"context"
	"fmt"
	"io"
	"time"
)

// MediaItem is one guest contribution to an event album.
// swagger:model MediaItem
type MediaItem struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	ContributorName string    `json:"contributor_name"`
	Message         *string   `json:"message"`
	URL             string    `json:"url"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// NewMediaItem returns a new MediaItem. ID is set by the repository on create.
func NewMediaItem(eventID, contributorName string, message *string, url string, uploadedAt time.Time) *MediaItem {
	return &MediaItem{
		EventID:         eventID,
		ContributorName: contributorName,
		Message:         message,
		URL:             url,
		UploadedAt:      uploadedAt,
	}
}

// FileInfo is the metadata of an incoming upload that the media policy looks at.
type FileInfo struct {
	MimeType string
	Size     int64
	Name     string
}

// RejectionReason is the machine-readable reason a file was refused.
type RejectionReason string

const (
	RejectUnsupportedType RejectionReason = "unsupported_type"
	RejectTooLarge        RejectionReason = "too_large"
)

// RejectionError is returned by the media validator. It unwraps to ErrValidationFailed.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, e.Message)
}

func (e *RejectionError) Unwrap() error { return ErrValidationFailed }

// UploadFile is the file part of a guest submission.
type UploadFile struct {
	FileInfo
	Body io.Reader
}

// UploadInput is a single guest submission.
type UploadInput struct {
	EventID         string
	ContributorName string
	Message         *string
	File            *UploadFile
}

// MediaRepository defines the interface for media item storage.
type MediaRepository interface {
	Create(ctx context.Context, item *MediaItem) error
	// ListByEvent returns the event's items ordered newest first.
	ListByEvent(ctx context.Context, eventID string) ([]*MediaItem, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

// ObjectStore is the blob storage gateway. Keys are hierarchical and namespaced by event id.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	PublicURL(key string) string
}

// UploadService accepts guest uploads and serves the album listing.
type UploadService interface {
	Submit(ctx context.Context, in UploadInput) (*MediaItem, error)
	ListByEvent(ctx context.Context, eventID string) ([]*MediaItem, error)
	DeleteAllForEvent(ctx context.Context, eventID, ownerID string) (int64, error)
}

// MediaObserver receives intake and export measurements. Implementations must be nil-safe.
type MediaObserver interface {
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
	RecordArchive(duration time.Duration, included, skipped int, err error)
	RecordBlobDelete(reason string, err error)
}

type noopObserver struct{}

func (noopObserver) RecordUpload(time.Duration, int64, error)     {}
func (noopObserver) RecordArchive(time.Duration, int, int, error) {}
func (noopObserver) RecordBlobDelete(string, error)               {}

// NoopObserver returns a MediaObserver that drops every measurement.
func NoopObserver() MediaObserver { return noopObserver{} }
