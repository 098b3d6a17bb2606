/*
monitor.go - Background overdue-lot monitor

PURPOSE:
  Periodically scans every vendor's open lots and flags those older than
  a configurable age threshold. Overdue lots mean issued wire that has
  not come back as finished goods; the scan result feeds the
  /api/overdue endpoint and the log.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Recomputes lots from the transaction log on every pass
  - Keeps only the latest scan result, guarded by a mutex

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - ThresholdDays: Lot age that counts as overdue (default: 30)

USAGE:
  monitor := NewOverdueMonitor(store, logger)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: GetOverdueLots endpoint
  - ledger/reconcile.go: OpenLots
*/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wiretrade/wire-ledger/ledger"
)

// OverdueLot is one open lot past the age threshold, with its vendor.
type OverdueLot struct {
	Vendor       string `json:"vendor"`
	LotID        string `json:"wire_id"`
	Wire         string `json:"wire_name"`
	OutDate      string `json:"out_date"`
	RemainingQty string `json:"remaining_qty"`
	Days         int    `json:"days"`
}

// OverdueMonitor periodically flags open lots older than ThresholdDays.
type OverdueMonitor struct {
	Store         ledger.Store
	Log           *logrus.Logger
	CheckInterval time.Duration
	ThresholdDays int

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup

	mu        sync.Mutex
	lastScan  []OverdueLot
	scannedAt time.Time
}

// NewOverdueMonitor creates a monitor with default interval and threshold.
func NewOverdueMonitor(store ledger.Store, log *logrus.Logger) *OverdueMonitor {
	if log == nil {
		log = logrus.New()
	}
	return &OverdueMonitor{
		Store:         store,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		ThresholdDays: 30,
		stop:          make(chan bool),
	}
}

// Start begins the background scan loop.
func (om *OverdueMonitor) Start() {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.ticker = time.NewTicker(om.CheckInterval)
	om.wg.Add(1)

	go om.run()

	om.Log.WithField("interval", om.CheckInterval).Info("Overdue monitor started")
}

// Stop stops the background scan loop.
func (om *OverdueMonitor) Stop() {
	om.mu.Lock()
	ticker := om.ticker
	om.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(om.stop)
		om.wg.Wait()
		om.Log.Info("Overdue monitor stopped")
	}
}

func (om *OverdueMonitor) run() {
	defer om.wg.Done()

	// Scan immediately on start
	om.Scan(context.Background(), time.Now())

	for {
		select {
		case <-om.ticker.C:
			om.Scan(context.Background(), time.Now())
		case <-om.stop:
			return
		}
	}
}

// Scan recomputes overdue lots across all vendors and records the result.
func (om *OverdueMonitor) Scan(ctx context.Context, now time.Time) []OverdueLot {
	vendors, err := om.Store.ListVendors(ctx)
	if err != nil {
		om.Log.WithError(err).Error("Overdue scan: failed to list vendors")
		return nil
	}

	var overdue []OverdueLot
	for _, v := range vendors {
		txs, err := om.Store.ListTransactionsByVendor(ctx, v.Name)
		if err != nil {
			om.Log.WithError(err).WithField("vendor", v.Name).
				Error("Overdue scan: failed to list transactions")
			continue
		}

		for _, lot := range ledger.OpenLots(txs, v.Name) {
			days := lot.AgeDays(now)
			if days < om.ThresholdDays {
				continue
			}
			overdue = append(overdue, OverdueLot{
				Vendor:       v.Name,
				LotID:        lot.ID,
				Wire:         lot.Wire,
				OutDate:      lot.OutDate.Format("2006-01-02"),
				RemainingQty: lot.RemainingQty.StringFixed(3),
				Days:         days,
			})
		}
	}

	om.mu.Lock()
	om.lastScan = overdue
	om.scannedAt = now
	om.mu.Unlock()

	if len(overdue) > 0 {
		om.Log.WithFields(logrus.Fields{
			"count":     len(overdue),
			"threshold": om.ThresholdDays,
		}).Warn("Overdue lots detected")
	}
	return overdue
}

// Snapshot returns the latest scan result and its timestamp.
func (om *OverdueMonitor) Snapshot() ([]OverdueLot, time.Time) {
	om.mu.Lock()
	defer om.mu.Unlock()

	out := make([]OverdueLot, len(om.lastScan))
	copy(out, om.lastScan)
	return out, om.scannedAt
}

// =============================================================================
// HTTP HANDLER
// =============================================================================

// GetOverdueLots runs a fresh scan and returns lots past the age threshold.
func (h *Handler) GetOverdueLots(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		writeJSON(w, http.StatusOK, []OverdueLot{})
		return
	}
	overdue := h.monitor.Scan(r.Context(), h.now())
	if overdue == nil {
		overdue = []OverdueLot{}
	}
	writeJSON(w, http.StatusOK, overdue)
}
