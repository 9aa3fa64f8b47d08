package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventalbum/internal/delivery/http/controllers"
	"eventalbum/internal/delivery/http/helpers"
)

// RouterDeps groups what NewRouter mounts. Metrics may be nil.
type RouterDeps struct {
	Events      *controllers.EventController
	Media       *controllers.MediaController
	Archives    *controllers.ArchiveController
	QR          *controllers.QRController
	RequireAuth func(http.HandlerFunc) http.HandlerFunc
	Metrics     http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	auth := d.RequireAuth

	// Guest routes
	mux.HandleFunc("GET /albums/{slug}", d.Events.GetEventBySlug)
	mux.HandleFunc("POST /media", d.Media.UploadMedia)
	mux.HandleFunc("GET /media/{eventID}", d.Media.ListMedia)
	mux.HandleFunc("POST /qr", d.QR.CreateQR)

	// Organizer routes
	mux.HandleFunc("GET /events", auth(d.Events.ListEvents))
	mux.HandleFunc("POST /events", auth(d.Events.CreateEvent))
	mux.HandleFunc("GET /events/slug-availability", auth(d.Events.SlugAvailability))
	mux.HandleFunc("GET /events/{eventID}", auth(d.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(d.Events.DeleteEvent))
	mux.HandleFunc("DELETE /events/{eventID}/media", auth(d.Media.DeleteEventMedia))
	mux.HandleFunc("GET /events/{eventID}/qr", auth(d.QR.GetEventQR))
	mux.HandleFunc("POST /archive", auth(d.Archives.CreateArchive))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
