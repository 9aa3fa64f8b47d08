package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/delivery/http/middleware"
	"eventalbum/internal/domain"
)

// writeServiceError maps a service error to its status code and stable error code.
// Client errors carry the service message; infrastructure errors are logged and
// answered with a generic message.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var rejection *domain.RejectionError
	switch {
	case errors.As(err, &rejection):
		helpers.WriteAPIError(w, http.StatusBadRequest, &helpers.APIError{
			Code:    helpers.ErrCodeValidationFailed,
			Message: rejection.Message,
			Reason:  string(rejection.Reason),
		})
	case errors.Is(err, domain.ErrValidationFailed):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrEncodingFailed):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeEncodingFailed, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNoMedia):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNoMedia, "event has no media")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrEventInactive):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventInactive, "event is not accepting uploads")
	case errors.Is(err, domain.ErrStorageWriteFailed):
		logFailure(logger, r, err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeStorageWriteFailed, "could not store the file")
	case errors.Is(err, domain.ErrMetadataWriteFailed):
		logFailure(logger, r, err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeMetadataWriteFailed, "could not save the upload")
	case errors.Is(err, domain.ErrAllFetchesFailed):
		logFailure(logger, r, err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeAllFetchesFailed, "no media could be fetched")
	default:
		logFailure(logger, r, err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

func logFailure(logger *slog.Logger, r *http.Request, err error) {
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
}

// requireOrganizer returns the authenticated organizer or writes 401.
func requireOrganizer(w http.ResponseWriter, r *http.Request) (*domain.Organizer, bool) {
	org, ok := middleware.OrganizerFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return org, true
}

// ownedEvent loads an event and checks that the organizer may manage it.
func ownedEvent(r *http.Request, events domain.EventService, eventID string, org *domain.Organizer) (*domain.Event, error) {
	event, err := events.GetEventByID(r.Context(), eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != "" && event.OwnerID != org.ID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
