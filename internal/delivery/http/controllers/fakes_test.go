package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/delivery/http/middleware"
	"eventalbum/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testTime = time.Date(2026, 9, 12, 21, 30, 0, 0, time.UTC)

var testOrganizer = &domain.Organizer{ID: "org-1", Email: "org@example.com"}

func withOrganizer(r *http.Request) *http.Request {
	return r.WithContext(middleware.SetOrganizer(r.Context(), testOrganizer))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

// decodeData re-decodes envelope.Data into dest.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, dest))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events          map[string]*domain.Event
	createErr       error
	getErr          error
	listErr         error
	updateErr       error
	deleteErr       error
	slugErr         error
	takenSlugs      map[string]bool
	listResult      []*domain.Event
	listTotal       int
	lastCreate      *domain.Event
	lastEmail       string
	lastOwnerID     string
	lastParams      domain.PaginationParams
	lastUpdate      domain.EventUpdate
	lastDeletedID   string
	lastSlugRequest string
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event, organizerEmail string) error {
	f.lastCreate = event
	f.lastEmail = organizerEmail
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = "ev-created"
	if event.Slug == "" {
		event.Slug = "derived-slug"
	}
	return nil
}

func (f *fakeEventService) SlugAvailable(_ context.Context, candidate string) (string, bool, error) {
	f.lastSlugRequest = candidate
	if f.slugErr != nil {
		return candidate, false, f.slugErr
	}
	return candidate, !f.takenSlugs[candidate], nil
}

func (f *fakeEventService) GetEventByID(_ context.Context, eventID string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventService) GetActiveEventBySlug(_ context.Context, slug string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.events {
		if e.Slug == slug && e.IsActive {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventService) ListEvents(_ context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastOwnerID = ownerID
	f.lastParams = params
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, ownerID string, update domain.EventUpdate) (*domain.Event, error) {
	f.lastOwnerID = ownerID
	f.lastUpdate = update
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if update.IsActive != nil {
		e.IsActive = *update.IsActive
	}
	return e, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, ownerID string) error {
	f.lastOwnerID = ownerID
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.lastDeletedID = eventID
	return nil
}

func (f *fakeEventService) ShareURL(event *domain.Event) string {
	return "https://album.test/" + event.Slug
}

// fakeUploadService implements domain.UploadService.
type fakeUploadService struct {
	submitErr   error
	lastInput   domain.UploadInput
	lastBody    []byte
	listResult  []*domain.MediaItem
	listErr     error
	deleteCount int64
	deleteErr   error
	lastOwnerID string
}

func (f *fakeUploadService) Submit(_ context.Context, in domain.UploadInput) (*domain.MediaItem, error) {
	f.lastInput = in
	if in.File != nil {
		f.lastBody, _ = io.ReadAll(in.File.Body)
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	item := domain.NewMediaItem(in.EventID, in.ContributorName, in.Message, "https://cdn.test/media/"+in.EventID+"/1_x.jpg", testTime)
	item.ID = "m-1"
	return item, nil
}

func (f *fakeUploadService) ListByEvent(_ context.Context, _ string) ([]*domain.MediaItem, error) {
	return f.listResult, f.listErr
}

func (f *fakeUploadService) DeleteAllForEvent(_ context.Context, _ string, ownerID string) (int64, error) {
	f.lastOwnerID = ownerID
	return f.deleteCount, f.deleteErr
}

// fakeArchiveService writes entries through the destination like the real builder.
type fakeArchiveService struct {
	payload []byte
	result  *domain.ArchiveResult
	// errBeforeOpen is returned without touching the destination.
	errBeforeOpen error
	// errAfterOpen is returned after the destination was opened and written to.
	errAfterOpen error
}

func (f *fakeArchiveService) BuildArchive(_ context.Context, eventID string, dst domain.ArchiveDestination) (*domain.ArchiveResult, error) {
	if f.errBeforeOpen != nil {
		return nil, f.errBeforeOpen
	}
	w, err := dst.Open(&domain.Event{ID: eventID, Slug: "ayse-mehmet"})
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(f.payload); err != nil {
		return nil, err
	}
	if f.errAfterOpen != nil {
		return f.result, f.errAfterOpen
	}
	return f.result, nil
}

// fakeQRRenderer implements domain.QRRenderer.
type fakeQRRenderer struct {
	png     []byte
	err     error
	lastURL string
}

func (f *fakeQRRenderer) Render(url string) ([]byte, error) {
	f.lastURL = url
	if f.err != nil {
		return nil, f.err
	}
	if url == "" {
		return nil, domain.ErrEncodingFailed
	}
	return f.png, nil
}
