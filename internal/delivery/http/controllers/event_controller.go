package controllers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/domain"
)

// dateLayout is the accepted form of event_date besides RFC 3339.
const dateLayout = "2006-01-02"

// CreateEventRequest is the request body for POST /events. Slug is optional and is
// derived from the honoree names when omitted.
type CreateEventRequest struct {
	Slug               string  `json:"slug"`
	PartnerOneName     string  `json:"partner_one_name"`
	PartnerTwoName     string  `json:"partner_two_name"`
	EventDate          string  `json:"event_date"`
	CoverImageURL      *string `json:"cover_image_url"`
	ProfileImageURL    *string `json:"profile_image_url"`
	BackgroundImageURL *string `json:"background_image_url"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.PartnerOneName) == "" {
		errs = append(errs, "partner_one_name is required")
	}
	if strings.TrimSpace(c.PartnerTwoName) == "" {
		errs = append(errs, "partner_two_name is required")
	}
	if c.EventDate == "" {
		errs = append(errs, "event_date is required")
	} else if _, err := parseEventDate(c.EventDate); err != nil {
		errs = append(errs, "event_date must be YYYY-MM-DD or RFC 3339")
	}
	errs = append(errs, validateImageURLs(c.CoverImageURL, c.ProfileImageURL, c.BackgroundImageURL)...)
	return errs
}

func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func validateImageURLs(urls ...*string) []string {
	var errs []string
	for _, u := range urls {
		if u == nil || *u == "" {
			continue
		}
		parsed, err := url.Parse(*u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, "image urls must be absolute http(s) urls")
			break
		}
	}
	return errs
}

// EventResponse is an event together with its guest share link.
type EventResponse struct {
	*domain.Event
	ShareURL string `json:"share_url"`
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the data payload for GET /events.
type ListEventsResponse struct {
	Items      []EventResponse        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// SlugAvailabilityResponse is the data payload for GET /events/slug-availability.
type SlugAvailabilityResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) view(event *domain.Event) EventResponse {
	return EventResponse{Event: event, ShareURL: c.Service.ShareURL(event)}
}

// CreateEvent godoc
// @Summary Create an event album
// @Description Reserves the slug (derived from the honoree names when omitted) and creates the album. The authenticated organizer becomes the owner and is emailed the share link.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event and its share_url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (slug taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	date, _ := parseEventDate(req.EventDate)
	event := domain.NewEvent(req.Slug, req.PartnerOneName, req.PartnerTwoName, date, org.ID, time.Now().UTC())
	event.CoverImageURL = nonEmpty(req.CoverImageURL)
	event.ProfileImageURL = nonEmpty(req.ProfileImageURL)
	event.BackgroundImageURL = nonEmpty(req.BackgroundImageURL)
	if err := c.Service.CreateEvent(r.Context(), event, org.Email); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, c.view(event))
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// ListEvents godoc
// @Summary List my events
// @Description Returns the organizer's events, newest first, paginated.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	params, err := helpers.ParsePagination(r)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	events, total, err := c.Service.ListEvents(r.Context(), org.ID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	items := make([]EventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, c.view(e))
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: items, Pagination: meta})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	event, err := ownedEvent(r, c.Service, eventID, org)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(event))
}

// GetEventBySlug godoc
// @Summary Resolve a guest link
// @Description Public. Returns the active event behind a share-link slug; inactive events are not found.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /albums/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing slug")
		return
	}
	event, err := c.Service.GetActiveEventBySlug(r.Context(), slug)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	// Guests never see who owns the album.
	public := *event
	public.OwnerID = ""
	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(&public))
}

// SlugAvailability godoc
// @Summary Check whether a slug is free
// @Description Normalizes the candidate and reports whether it is currently unused. Advisory only; creating the event decides.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug query string true "Slug candidate"
// @Success 200 {object} helpers.APIResponse "data contains slug and available"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/slug-availability [get]
func (c *EventController) SlugAvailability(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOrganizer(w, r); !ok {
		return
	}
	slug, available, err := c.Service.SlugAvailable(r.Context(), r.URL.Query().Get("slug"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SlugAvailabilityResponse{Slug: slug, Available: available})
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional;
// omitted fields are unchanged and an empty image url clears the image.
type UpdateEventRequest struct {
	IsActive           *bool   `json:"is_active"`
	CoverImageURL      *string `json:"cover_image_url"`
	ProfileImageURL    *string `json:"profile_image_url"`
	BackgroundImageURL *string `json:"background_image_url"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	return validateImageURLs(u.CoverImageURL, u.ProfileImageURL, u.BackgroundImageURL)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Opens or closes the album for uploads and sets its images. Only the event owner can update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, org.ID, domain.EventUpdate{
		IsActive:           req.IsActive,
		CoverImageURL:      req.CoverImageURL,
		ProfileImageURL:    req.ProfileImageURL,
		BackgroundImageURL: req.BackgroundImageURL,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its media records, then every stored file of the event. Only the event owner can delete.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, org.ID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
