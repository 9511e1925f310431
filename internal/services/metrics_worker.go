package services

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/j-alexander-acosta/explorador-chileno/backend/internal/metrics"
)

const defaultMetricsInterval = 5 * time.Minute

// MetricsWorker periodically refreshes the discovery-ledger gauges so the
// /metrics endpoint stays close to the database without a query per scrape.
type MetricsWorker struct {
	db       *gorm.DB
	interval time.Duration

	mu          sync.RWMutex
	lastRefresh time.Time
	refreshes   int
}

// WorkerStatus reports the refresh loop's progress for the admin endpoint.
type WorkerStatus struct {
	LastRefresh time.Time `json:"last_refresh"`
	NextRefresh time.Time `json:"next_refresh"`
	Refreshes   int       `json:"refreshes"`
}

func NewMetricsWorker(db *gorm.DB) *MetricsWorker {
	return &MetricsWorker{db: db, interval: defaultMetricsInterval}
}

// Start runs the refresh loop until the context is cancelled.
// One refresh fires immediately so gauges are populated at startup.
func (w *MetricsWorker) Start(ctx context.Context) {
	log.Printf("Metrics worker started: refreshing ledger gauges every %s", w.interval)

	w.Refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Metrics worker stopping...")
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}

// Refresh recomputes the ledger gauges from the database.
func (w *MetricsWorker) Refresh() {
	metrics.UpdateLedgerMetrics(w.db)

	w.mu.Lock()
	w.lastRefresh = time.Now()
	w.refreshes++
	w.mu.Unlock()
}

// Status returns the current refresh status.
func (w *MetricsWorker) Status() WorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WorkerStatus{
		LastRefresh: w.lastRefresh,
		NextRefresh: w.lastRefresh.Add(w.interval),
		Refreshes:   w.refreshes,
	}
}
