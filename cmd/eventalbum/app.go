package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"eventalbum/config"
	"eventalbum/internal/adapters/email"
	"eventalbum/internal/adapters/mediafetch"
	"eventalbum/internal/adapters/metrics"
	"eventalbum/internal/adapters/objectstore"
	"eventalbum/internal/domain"
	"eventalbum/internal/repository/postgres"
	"eventalbum/internal/services"
)

// app holds the wired adapters and services shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	observer *metrics.Observer

	eventRepo domain.EventRepository
	mediaRepo domain.MediaRepository
	store     domain.ObjectStore

	validator *services.MediaValidator
	events    domain.EventService
	uploads   domain.UploadService
	archives  domain.ArchiveService
	sweeper   domain.OrphanSweeper
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		PublicBaseURL:   cfg.S3.PublicBaseURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object store: %w", err)
	}

	mailer, err := email.NewMailer(ctx, email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("email templates: %w", err)
	}

	observer, err := metrics.NewObserver("", nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		observer:  observer,
		eventRepo: postgres.NewEventRepository(db),
		mediaRepo: postgres.NewMediaRepository(db),
		store:     store,
		validator: services.NewMediaValidator(cfg.MediaMaxBytes, cfg.MediaExtraTypes...),
	}
	a.events = services.NewEventService(a.eventRepo, a.store, services.NewEmailService(mailer, renderer),
		observer, logger, cfg.PublicBaseURL, cfg.RequestTimeout)
	a.uploads = services.NewUploadService(a.eventRepo, a.mediaRepo, a.store, a.validator,
		observer, logger, cfg.RequestTimeout)
	a.archives = services.NewArchiveService(a.eventRepo, a.mediaRepo, mediafetch.NewHTTPFetcher(nil),
		observer, logger, cfg.ArchiveFetchTimeout, a.validator.MaxBytes(), cfg.RequestTimeout)
	a.sweeper = services.NewOrphanSweeper(a.eventRepo, a.mediaRepo, a.store, observer, logger, cfg.OrphanGracePeriod)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
