package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventalbum/internal/domain"
)

// testLogger discards output so tests don't assert on log lines.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventRepo is an in-memory EventRepository. Delete cascades into media when set.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	nextID    int
	media     *fakeMediaRepo
	createErr error
	getErr    error
	getCalls  int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

// add stores an event directly and returns it.
func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Slug == e.Slug {
			return domain.ErrConflict
		}
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.byID {
		if e.Slug == slug && (!activeOnly || e.IsActive) {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	_, err := f.GetBySlug(ctx, slug, false)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeEventRepo) List(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.byID {
		if ownerID == "" || e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	start := min(params.Offset(), total)
	end := total
	if params.Limit() > 0 {
		end = min(start+params.Limit(), total)
	}
	return out[start:end], total, nil
}

func (f *fakeEventRepo) ListIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.IsActive != nil {
		e.IsActive = *u.IsActive
	}
	if u.CoverImageURL != nil {
		e.CoverImageURL = u.CoverImageURL
	}
	if u.ProfileImageURL != nil {
		e.ProfileImageURL = u.ProfileImageURL
	}
	if u.BackgroundImageURL != nil {
		e.BackgroundImageURL = u.BackgroundImageURL
	}
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	if _, ok := f.byID[id]; !ok {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.mu.Unlock()
	if f.media != nil {
		_, _ = f.media.DeleteByEvent(ctx, id)
	}
	return nil
}

// fakeMediaRepo is an in-memory MediaRepository.
type fakeMediaRepo struct {
	mu         sync.Mutex
	items      []*domain.MediaItem
	nextID     int
	createErr  error
	createHook func(ctx context.Context) error
	listErr    error
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{nextID: 1}
}

func (f *fakeMediaRepo) add(item *domain.MediaItem) *domain.MediaItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	if item.ID == "" {
		item.ID = fmt.Sprintf("m-%d", f.nextID)
		f.nextID++
	}
	f.items = append(f.items, item)
	return item
}

func (f *fakeMediaRepo) Create(ctx context.Context, item *domain.MediaItem) error {
	if f.createHook != nil {
		if err := f.createHook(ctx); err != nil {
			return err
		}
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.add(item)
	return nil
}

func (f *fakeMediaRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.MediaItem
	for _, it := range f.items {
		if it.EventID == eventID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeMediaRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var n int64
	for _, it := range f.items {
		if it.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}

func (f *fakeMediaRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// fakeObjectStore is an in-memory ObjectStore.
type fakeObjectStore struct {
	mu            sync.Mutex
	objects       map[string][]byte
	contentTypes  map[string]string
	putErr        error
	deleteErr     error
	listErr       error
	puts          int
	deleted       []string
	deleteCtxErrs []error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte), contentTypes: make(map[string]string)}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	f.puts++
	putErr := f.putErr
	f.mu.Unlock()
	if putErr != nil {
		return "", putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.objects[key]; exists {
		return "", fmt.Errorf("key %s already exists", key)
	}
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return f.PublicURL(key), nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCtxErrs = append(f.deleteCtxErrs, ctx.Err())
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.test/media/" + key
}

func (f *fakeObjectStore) keys() []string {
	keys, _ := f.List(context.Background(), "")
	return keys
}

// fakeFetcher serves bytes per URL. URLs in failing return an error; URLs in hanging
// block until the context ends.
type fakeFetcher struct {
	mu       sync.Mutex
	bodies   map[string][]byte
	failing  map[string]bool
	hanging  map[string]bool
	limits   []int64
	cancelOn string
	cancel   context.CancelFunc
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	f.mu.Lock()
	f.limits = append(f.limits, limit)
	f.mu.Unlock()
	if f.cancel != nil && url == f.cancelOn {
		f.cancel()
		return nil, ctx.Err()
	}
	if f.hanging[url] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failing[url] {
		return nil, errors.New("connection refused")
	}
	data, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("status 404")
	}
	return data, nil
}

// memDestination collects archive bytes in memory.
type memDestination struct {
	buf    bytes.Buffer
	opened int
	event  *domain.Event
	err    error
}

func (d *memDestination) Open(event *domain.Event) (io.Writer, error) {
	d.opened++
	d.event = event
	if d.err != nil {
		return nil, d.err
	}
	return &d.buf, nil
}

// recordingObserver counts observer calls.
type recordingObserver struct {
	mu           sync.Mutex
	uploads      int
	uploadErrs   int
	archives     int
	lastIncluded int
	lastSkipped  int
	blobDeletes  map[string]int
}

func (o *recordingObserver) RecordUpload(_ time.Duration, _ int64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uploads++
	if err != nil {
		o.uploadErrs++
	}
}

func (o *recordingObserver) RecordArchive(_ time.Duration, included, skipped int, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.archives++
	o.lastIncluded, o.lastSkipped = included, skipped
}

func (o *recordingObserver) RecordBlobDelete(reason string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.blobDeletes == nil {
		o.blobDeletes = make(map[string]int)
	}
	o.blobDeletes[reason]++
}

// fakeEmailService records share link emails.
type fakeEmailService struct {
	sent []*domain.ShareLinkEmailData
	err  error
}

func (f *fakeEmailService) SendShareLink(ctx context.Context, data *domain.ShareLinkEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
