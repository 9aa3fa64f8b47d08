package controllers

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/domain"
)

// Trailers sent after the archive body.
const (
	trailerIncluded = "X-Archive-Included"
	trailerSkipped  = "X-Archive-Skipped"
)

// CreateArchiveRequest is the request body for POST /archive.
type CreateArchiveRequest struct {
	EventID string `json:"eventId"`
}

// Validate implements Validator.
func (c CreateArchiveRequest) Validate() []string {
	var errs []string
	if c.EventID == "" {
		errs = append(errs, "eventId is required")
	}
	return errs
}

type ArchiveController struct {
	Logger   *slog.Logger
	Events   domain.EventService
	Archives domain.ArchiveService
}

func NewArchiveController(logger *slog.Logger, events domain.EventService, archives domain.ArchiveService) *ArchiveController {
	return &ArchiveController{
		Logger:   logger,
		Events:   events,
		Archives: archives,
	}
}

// CreateArchive godoc
// @Summary Download every photo of an event as a zip
// @Description Streams a zip with one entry per fetchable media item, named "{n}-{contributor}.{ext}" in upload order. Items that cannot be fetched are skipped; the counts are sent in the X-Archive-Included and X-Archive-Skipped trailers. Only the event owner can download.
// @Tags media
// @Accept json
// @Produce application/zip
// @Security BearerAuth
// @Param body body CreateArchiveRequest true "Event to archive"
// @Success 200 {file} file "zip archive"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found | no_media"
// @Failure 500 {object} helpers.APIResponse "error.code: all_fetches_failed | internal_error"
// @Router /archive [post]
func (c *ArchiveController) CreateArchive(w http.ResponseWriter, r *http.Request) {
	var req CreateArchiveRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	if _, err := ownedEvent(r, c.Events, req.EventID, org); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	dst := &httpArchiveDestination{w: w}
	result, err := c.Archives.BuildArchive(r.Context(), req.EventID, dst)
	if err != nil {
		if !dst.opened {
			writeServiceError(c.Logger, w, r, err)
			return
		}
		// Headers are out; abort so the client sees a broken transfer, not a truncated zip.
		c.Logger.ErrorContext(r.Context(), "archive aborted", "path", r.URL.Path, "event_id", req.EventID, "err", err)
		panic(http.ErrAbortHandler)
	}
	w.Header().Set(trailerIncluded, strconv.Itoa(len(result.Included)))
	w.Header().Set(trailerSkipped, strconv.Itoa(len(result.Skipped)))
}

// httpArchiveDestination writes the archive straight into the response.
// Headers are committed on Open, which the builder calls before the first entry.
type httpArchiveDestination struct {
	w      http.ResponseWriter
	opened bool
}

func (d *httpArchiveDestination) Open(event *domain.Event) (io.Writer, error) {
	h := d.w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("%s-photos.zip", event.Slug),
	}))
	h.Set("Trailer", trailerIncluded+", "+trailerSkipped)
	h.Set("Cache-Control", "no-store")
	d.w.WriteHeader(http.StatusOK)
	d.opened = true
	return d.w, nil
}
