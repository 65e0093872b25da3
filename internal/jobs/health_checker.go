package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"recordlookup/internal/catalog"
	"recordlookup/internal/metrics"
	"recordlookup/internal/models"
	"recordlookup/internal/opendata"
)

// Dataset check states.
const (
	StatusUnknown = "unknown"
	StatusUp      = "up"
	StatusDown    = "down"
)

// Querier runs filtered queries against the open-data API.
type Querier interface {
	Query(ctx context.Context, q opendata.Query) ([]models.Record, error)
}

// HealthChecker periodically queries every catalog endpoint for a single row.
// Results are reported through readiness and the dataset_up gauge; lookups never consult them.
type HealthChecker struct {
	catalog  *catalog.Catalog
	client   Querier
	interval time.Duration
	delay    time.Duration

	mu     sync.RWMutex
	status map[string]string
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker(cat *catalog.Catalog, client Querier, interval time.Duration) *HealthChecker {
	status := make(map[string]string)
	for _, d := range checkedDatasets(cat) {
		status[d.ID] = StatusUnknown
	}
	return &HealthChecker{
		catalog:  cat,
		client:   client,
		interval: interval,
		delay:    time.Second,
		status:   status,
	}
}

// Start begins the background check loop and blocks until ctx is done.
func (h *HealthChecker) Start(ctx context.Context) {
	slog.Info("dataset checker started", "interval", h.interval)

	// Run immediately on start
	h.CheckAll(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dataset checker stopped")
			return
		case <-ticker.C:
			h.CheckAll(ctx)
		}
	}
}

// CheckAll checks every dataset once.
func (h *HealthChecker) CheckAll(ctx context.Context) {
	for i, d := range checkedDatasets(h.catalog) {
		if i > 0 && h.delay > 0 {
			// Spread checks out to stay under the API's throttling limits
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.delay):
			}
		}
		if ctx.Err() != nil {
			return
		}

		_, err := h.client.Query(ctx, opendata.Query{Endpoint: d.Endpoint, Limit: 1})
		up := err == nil
		if !up {
			slog.Warn("dataset check failed", "dataset", d.ID, "endpoint", d.Endpoint, "error", err)
		}
		h.set(d.ID, up)
	}
}

// Statuses returns the last known state of every checked dataset.
func (h *HealthChecker) Statuses() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string, len(h.status))
	for id, s := range h.status {
		out[id] = s
	}
	return out
}

func (h *HealthChecker) set(id string, up bool) {
	metrics.SetDatasetUp(id, up)

	h.mu.Lock()
	defer h.mu.Unlock()
	if up {
		h.status[id] = StatusUp
	} else {
		h.status[id] = StatusDown
	}
}

// checkedDatasets lists the fleet dataset followed by the officer datasets.
func checkedDatasets(cat *catalog.Catalog) []*models.Dataset {
	return append([]*models.Dataset{cat.Fleet()}, cat.Datasets()...)
}
