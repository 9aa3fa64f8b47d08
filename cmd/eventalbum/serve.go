package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventalbum/internal/adapters/auth"
	"eventalbum/internal/adapters/metrics"
	"eventalbum/internal/adapters/qr"
	deliveryhttp "eventalbum/internal/delivery/http"
	"eventalbum/internal/delivery/http/controllers"
	"eventalbum/internal/delivery/http/middleware"
	"eventalbum/internal/domain"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	var verifier domain.TokenVerifier
	if a.cfg.AuthJWTSecret != "" {
		verifier = auth.NewJWTVerifier(a.cfg.AuthJWTSecret)
	}
	qrRenderer := qr.NewRenderer()

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Events:      controllers.NewEventController(logger, a.events),
		Media:       controllers.NewMediaController(logger, a.uploads, a.validator.MaxBytes()),
		Archives:    controllers.NewArchiveController(logger, a.events, a.archives),
		QR:          controllers.NewQRController(logger, qrRenderer, a.events),
		RequireAuth: middleware.RequireAuth(verifier, logger),
		Metrics:     metrics.Handler(),
	})
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(a.cfg.CORSAllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: archive downloads stream for as long as the fetches take.
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", a.cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
