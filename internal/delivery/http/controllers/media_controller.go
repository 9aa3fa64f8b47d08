package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/domain"
)

const (
	// multipartMemory is the part of a multipart body kept in memory; the rest spills to disk.
	multipartMemory = 8 << 20
	// multipartOverhead is the allowance for form fields and boundaries on top of the file ceiling.
	multipartOverhead = 1 << 20
)

// DeleteMediaResponse is the response body for DELETE /events/{eventID}/media.
type DeleteMediaResponse struct {
	Deleted int64 `json:"deleted"`
}

// UploadMediaSuccessResponse is the success response envelope for POST /media (201).
type UploadMediaSuccessResponse struct {
	Data  *domain.MediaItem `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMediaSuccessResponse is the success response envelope for GET /media/{eventID} (200).
type ListMediaSuccessResponse struct {
	Data  []*domain.MediaItem `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type MediaController struct {
	Logger         *slog.Logger
	Service        domain.UploadService
	MaxUploadBytes int64
}

func NewMediaController(logger *slog.Logger, svc domain.UploadService, maxUploadBytes int64) *MediaController {
	return &MediaController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
	}
}

// UploadMedia godoc
// @Summary Upload a photo to an event album
// @Description Guest upload. The file is stored first, then its record; a failed record removes the stored file.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param eventId formData string true "Event ID"
// @Param contributorName formData string true "Name shown next to the photo"
// @Param message formData string false "Optional message for the couple"
// @Param file formData file true "Image file (jpeg, png, webp)"
// @Success 201 {object} controllers.UploadMediaSuccessResponse "data contains the created media item"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed (error.reason: unsupported_type | too_large)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_inactive"
// @Failure 500 {object} helpers.APIResponse "error.code: storage_write_failed | metadata_write_failed"
// @Router /media [post]
func (c *MediaController) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			helpers.WriteAPIError(w, http.StatusBadRequest, &helpers.APIError{
				Code:    helpers.ErrCodeValidationFailed,
				Message: "file is too large",
				Reason:  string(domain.RejectTooLarge),
			})
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := domain.UploadInput{
		EventID:         r.FormValue("eventId"),
		ContributorName: r.FormValue("contributorName"),
	}
	if vals, ok := r.MultipartForm.Value["message"]; ok && len(vals) > 0 {
		msg := vals[0]
		in.Message = &msg
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// File stays nil; Submit rejects it.
	case err != nil:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid file part")
		return
	default:
		defer file.Close()
		contentType, err := partContentType(file, header)
		if err != nil {
			logFailure(c.Logger, r, err)
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read file")
			return
		}
		in.File = &domain.UploadFile{
			FileInfo: domain.FileInfo{MimeType: contentType, Size: header.Size, Name: header.Filename},
			Body:     file,
		}
	}

	item, err := c.Service.Submit(r.Context(), in)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, item)
}

// partContentType returns the declared content type of a file part, sniffing the
// content when the client sent none or a generic one. The file is rewound afterwards.
func partContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") {
		return declared, nil
	}
	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}

// ListMedia godoc
// @Summary List an event's media
// @Description Returns every media item of the event, newest first.
// @Tags media
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListMediaSuccessResponse "data contains the media items"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /media/{eventID} [get]
func (c *MediaController) ListMedia(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	items, err := c.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if items == nil {
		items = []*domain.MediaItem{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// DeleteEventMedia godoc
// @Summary Delete all media of an event
// @Description Removes every media record of the event, then every stored file under it. Only the event owner can do this.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.deleted is the number of removed records"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/media [delete]
func (c *MediaController) DeleteEventMedia(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	n, err := c.Service.DeleteAllForEvent(r.Context(), eventID, org.ID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteMediaResponse{Deleted: n})
}
