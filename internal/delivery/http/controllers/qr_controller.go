package controllers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"

	"eventalbum/internal/delivery/http/helpers"
	"eventalbum/internal/domain"
)

const pngDataURIPrefix = "data:image/png;base64,"

// CreateQRRequest is the request body for POST /qr.
type CreateQRRequest struct {
	URL string `json:"url"`
}

// CreateQRResponse is the response body for POST /qr.
type CreateQRResponse struct {
	QRImageDataURI string `json:"qrImageDataUri"`
}

// CreateQRSuccessResponse is the success response envelope for POST /qr (200).
type CreateQRSuccessResponse struct {
	Data  CreateQRResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type QRController struct {
	Logger   *slog.Logger
	Renderer domain.QRRenderer
	Events   domain.EventService
}

func NewQRController(logger *slog.Logger, renderer domain.QRRenderer, events domain.EventService) *QRController {
	return &QRController{
		Logger:   logger,
		Renderer: renderer,
		Events:   events,
	}
}

// CreateQR godoc
// @Summary Render a QR code for a link
// @Description Returns an 800px black-on-white PNG QR code for the url as a data URI.
// @Tags qr
// @Accept json
// @Produce json
// @Param body body CreateQRRequest true "Link to encode"
// @Success 200 {object} controllers.CreateQRSuccessResponse "data.qrImageDataUri is a data:image/png;base64 URI"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | encoding_failed"
// @Router /qr [post]
func (c *QRController) CreateQR(w http.ResponseWriter, r *http.Request) {
	var req CreateQRRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	png, err := c.Renderer.Render(req.URL)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CreateQRResponse{
		QRImageDataURI: pngDataURIPrefix + base64.StdEncoding.EncodeToString(png),
	})
}

// GetEventQR godoc
// @Summary QR code for an event's share link
// @Description Renders the guest share link of the event as a PNG. Only the event owner can fetch it.
// @Tags qr
// @Produce image/png
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {file} file "PNG image"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/qr [get]
func (c *QRController) GetEventQR(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	org, ok := requireOrganizer(w, r)
	if !ok {
		return
	}
	event, err := ownedEvent(r, c.Events, eventID, org)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	png, err := c.Renderer.Render(c.Events.ShareURL(event))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
