package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventalbum/internal/domain"
)

const defaultNamespace = "eventalbum"

// Observer exports media pipeline metrics to Prometheus.
type Observer struct {
	operationDuration *promclient.HistogramVec
	operationErrors   *promclient.CounterVec
	uploadBytes       promclient.Counter
	archiveItems      *promclient.CounterVec
	blobDeletes       *promclient.CounterVec
}

// NewObserver registers upload/archive/blob-delete metrics on reg (the default
// registerer when nil). Registering twice reuses the existing collectors.
func NewObserver(namespace string, reg promclient.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}
	o := &Observer{}
	var err error
	if o.operationDuration, err = register(reg, promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of media uploads and archive builds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})); err != nil {
		return nil, err
	}
	if o.operationErrors, err = register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Failed media operations by error kind.",
	}, []string{"operation", "kind"})); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, promclient.NewCounter(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative payload size accepted by upload intake.",
	})); err != nil {
		return nil, err
	}
	if o.archiveItems, err = register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "archive_items_total",
		Help:      "Media items processed by archive builds.",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if o.blobDeletes, err = register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "blob_deletes_total",
		Help:      "Object store deletions by reason and result.",
	}, []string{"reason", "result"})); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpload tracks upload duration, size, and failures.
func (o *Observer) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues("upload", errorKind(err)).Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *Observer) RecordArchive(duration time.Duration, included, skipped int, err error) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues("archive").Observe(duration.Seconds())
	o.archiveItems.WithLabelValues("included").Add(float64(included))
	o.archiveItems.WithLabelValues("skipped").Add(float64(skipped))
	if err != nil {
		o.operationErrors.WithLabelValues("archive", errorKind(err)).Inc()
	}
}

func (o *Observer) RecordBlobDelete(reason string, err error) {
	if o == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.blobDeletes.WithLabelValues(reason, result).Inc()
}

// errorKind keeps label cardinality bounded by mapping errors to their sentinel.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEventInactive):
		return "event_inactive"
	case errors.Is(err, domain.ErrStorageWriteFailed):
		return "storage_write_failed"
	case errors.Is(err, domain.ErrMetadataWriteFailed):
		return "metadata_write_failed"
	case errors.Is(err, domain.ErrNoMedia):
		return "no_media"
	case errors.Is(err, domain.ErrAllFetchesFailed):
		return "all_fetches_failed"
	default:
		return "internal"
	}
}

var _ domain.MediaObserver = (*Observer)(nil)
