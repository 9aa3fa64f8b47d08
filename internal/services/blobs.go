package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"eventalbum/internal/domain"
)

// blobDeleteConcurrency bounds parallel object deletions for one event.
const blobDeleteConcurrency = 8

// eventPrefix is the key prefix holding every blob of an event.
func eventPrefix(eventID string) string {
	return eventID + "/"
}

// storageKey builds "{eventID}/{unixMillis}_{random}{.ext}". The random part makes keys
// unique even for concurrent uploads of identically named files.
func storageKey(eventID, filename, contentType string, now time.Time, random string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !cleanExtension(ext) {
		ext = ""
		if mt := normalizeMediaType(contentType); mt != "" {
			if m := mimetype.Lookup(mt); m != nil {
				ext = m.Extension()
			}
		}
	}
	return fmt.Sprintf("%s%d_%s%s", eventPrefix(eventID), now.UnixMilli(), random, ext)
}

func cleanExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// keyTimestamp extracts the upload time embedded in a key built by storageKey.
func keyTimestamp(key string) (time.Time, bool) {
	base := key[strings.LastIndexByte(key, '/')+1:]
	millis, _, ok := strings.Cut(base, "_")
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// deleteBlobs removes keys from the store with bounded parallelism. Every key is attempted;
// the first error is returned.
func deleteBlobs(ctx context.Context, store domain.ObjectStore, keys []string, reason string, observer domain.MediaObserver, logger *slog.Logger) error {
	dctx := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(blobDeleteConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			err := store.Delete(dctx, key)
			observer.RecordBlobDelete(reason, err)
			if err != nil {
				logger.ErrorContext(ctx, "blob delete failed", "key", key, "reason", reason, "err", err)
				return fmt.Errorf("delete %s: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// deleteEventBlobs removes every blob under the event's prefix.
func deleteEventBlobs(ctx context.Context, store domain.ObjectStore, eventID, reason string, observer domain.MediaObserver, logger *slog.Logger) (int, error) {
	keys, err := store.List(ctx, eventPrefix(eventID))
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}
	if err := deleteBlobs(ctx, store, keys, reason, observer, logger); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// authorizeOwner rejects callers that do not own the event. Events without an owner are open.
func authorizeOwner(event *domain.Event, ownerID string) error {
	if event.OwnerID != "" && event.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}
