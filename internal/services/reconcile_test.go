package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventalbum/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweeper(events *fakeEventRepo, media *fakeMediaRepo, store *fakeObjectStore, now time.Time) *reconcileService {
	s := NewOrphanSweeper(events, media, store, nil, testLogger, time.Hour).(*reconcileService)
	s.now = func() time.Time { return now }
	return s
}

func putBlob(t *testing.T, store *fakeObjectStore, key string) {
	t.Helper()
	_, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "image/jpeg")
	require.NoError(t, err)
}

func TestOrphanSweeper_SweepEvent(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour).UnixMilli()
	recent := now.Add(-5 * time.Minute).UnixMilli()

	events := newFakeEventRepo()
	media := newFakeMediaRepo()
	store := newFakeObjectStore()
	e := events.add(&domain.Event{Slug: "elif-can"})

	referenced := fmt.Sprintf("%s/%d_ref.jpg", e.ID, old)
	orphan := fmt.Sprintf("%s/%d_orphan.jpg", e.ID, old)
	inFlight := fmt.Sprintf("%s/%d_inflight.jpg", e.ID, recent)
	foreign := e.ID + "/cover.jpg"
	for _, k := range []string{referenced, orphan, inFlight, foreign} {
		putBlob(t, store, k)
	}
	media.add(&domain.MediaItem{EventID: e.ID, URL: store.PublicURL(referenced)})

	s := newTestSweeper(events, media, store, now)
	removed, err := s.SweepEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, removed)
	assert.ElementsMatch(t, []string{referenced, inFlight, foreign}, store.keys())
}

func TestOrphanSweeper_SweepEvent_NothingToDo(t *testing.T) {
	s := newTestSweeper(newFakeEventRepo(), newFakeMediaRepo(), newFakeObjectStore(), time.Now())
	removed, err := s.SweepEvent(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestOrphanSweeper_SweepAll(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-3 * time.Hour).UnixMilli()

	events := newFakeEventRepo()
	media := newFakeMediaRepo()
	store := newFakeObjectStore()
	a := events.add(&domain.Event{Slug: "a-event"})
	b := events.add(&domain.Event{Slug: "b-event"})

	kept := fmt.Sprintf("%s/%d_kept.jpg", a.ID, old)
	putBlob(t, store, kept)
	media.add(&domain.MediaItem{EventID: a.ID, URL: store.PublicURL(kept)})
	putBlob(t, store, fmt.Sprintf("%s/%d_lost.jpg", a.ID, old))
	putBlob(t, store, fmt.Sprintf("%s/%d_lost.png", b.ID, old))
	// Left behind by an event whose blob cleanup failed.
	putBlob(t, store, fmt.Sprintf("ev-gone/%d_x.jpg", old))
	putBlob(t, store, "README.txt")

	s := newTestSweeper(events, media, store, now)
	n, err := s.SweepAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.ElementsMatch(t, []string{kept, "README.txt"}, store.keys())
}

func TestOrphanSweeper_SweepAll_ContinuesPastFailures(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	media := newFakeMediaRepo()
	store := newFakeObjectStore()
	e := events.add(&domain.Event{Slug: "elif-can"})
	putBlob(t, store, fmt.Sprintf("%s/%d_a.jpg", e.ID, now.Add(-2*time.Hour).UnixMilli()))
	media.listErr = errors.New("db down")

	s := newTestSweeper(events, media, store, now)
	n, err := s.SweepAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), e.ID)
	assert.Equal(t, 0, n)
	assert.Len(t, store.keys(), 1)
}
