/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates wires, vendors,
	transactions, and payments that demonstrate specific features.

AVAILABLE SCENARIOS:

	starter-stock:  Single vendor, one wire, partial return in flight
	multi-vendor:   Several vendors and wires with interleaved lots
	settled-books:  Fully returned lots with payments near the payable

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Register wires and payal types
 3. Create vendors with per-wire rate assignments
 4. Record OUT issues and IN returns with explicit dates
 5. Optionally record payments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "multi-vendor"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: transaction and payment handlers
  - server.go: /api/scenarios routes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiretrade/wire-ledger/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-stock",
		Name:        "Starter Stock",
		Description: "Single vendor holding one wire with a partial return in flight",
		Category:    "inventory",
	},
	{
		ID:          "multi-vendor",
		Name:        "Multi-Vendor",
		Description: "Several vendors and wires with interleaved open lots",
		Category:    "inventory",
	},
	{
		ID:          "settled-books",
		Name:        "Settled Books",
		Description: "Fully returned lots with payments close to the payable",
		Category:    "payments",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "starter-stock":
		err = h.loadStarterStockScenario(ctx)
	case "multi-vendor":
		err = h.loadMultiVendorScenario(ctx)
	case "settled-books":
		err = h.loadSettledBooksScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStarterStockScenario(ctx context.Context) error {
	if err := h.seedWire(ctx, "22mm", map[string]string{"Silver": "90", "Gold": "140"}); err != nil {
		return err
	}
	if err := h.seedVendor(ctx, "Sharma Traders", "98200 11223",
		assign("22mm", "Silver", "100"), assign("22mm", "Gold", "150")); err != nil {
		return err
	}

	// One 12 kg issue with a 4.5 kg Silver return against it.
	days := scenarioDays(h.now())
	txs := []ledger.Transaction{
		outTxn("Sharma Traders", "22mm", "12", days(-20)),
		inTxn("Sharma Traders", "22mm", "Silver", "4.5", "450.00", days(-6)),
	}
	return h.seedTransactions(ctx, txs)
}

func (h *Handler) loadMultiVendorScenario(ctx context.Context) error {
	if err := h.seedWire(ctx, "22mm", map[string]string{"Silver": "90", "Gold": "140"}); err != nil {
		return err
	}
	if err := h.seedWire(ctx, "18mm", map[string]string{"Silver": "70"}); err != nil {
		return err
	}

	if err := h.seedVendor(ctx, "Sharma Traders", "98200 11223",
		assign("22mm", "Silver", "100"), assign("22mm", "Gold", "150")); err != nil {
		return err
	}
	if err := h.seedVendor(ctx, "Mehta & Sons", "98330 55667",
		assign("22mm", "Silver", "95"), assign("18mm", "Silver", "80")); err != nil {
		return err
	}
	if err := h.seedVendor(ctx, "Patel Works", "90040 99001",
		assign("18mm", "Silver", "82")); err != nil {
		return err
	}

	// Interleaved issues so each vendor carries open lots of mixed age.
	days := scenarioDays(h.now())
	txs := []ledger.Transaction{
		outTxn("Sharma Traders", "22mm", "10", days(-40)),
		outTxn("Mehta & Sons", "22mm", "8", days(-35)),
		outTxn("Mehta & Sons", "18mm", "15", days(-30)),
		outTxn("Patel Works", "18mm", "6", days(-25)),
		outTxn("Sharma Traders", "22mm", "5", days(-18)),
		inTxn("Sharma Traders", "22mm", "Silver", "7", "700.00", days(-12)),
		inTxn("Mehta & Sons", "18mm", "Silver", "9.25", "740.00", days(-10)),
		inTxn("Patel Works", "18mm", "Silver", "6", "492.00", days(-4)),
	}
	if err := h.seedTransactions(ctx, txs); err != nil {
		return err
	}

	p := ledger.Payment{
		Vendor:    "Mehta & Sons",
		PayalType: ledger.PayalAll,
		Amount:    decimal.RequireFromString("500"),
		Date:      days(-8),
		Notes:     "Advance against 18mm returns",
	}
	return h.Store.SavePayment(ctx, &p)
}

func (h *Handler) loadSettledBooksScenario(ctx context.Context) error {
	if err := h.seedWire(ctx, "22mm", map[string]string{"Silver": "90"}); err != nil {
		return err
	}
	if err := h.seedVendor(ctx, "Sharma Traders", "98200 11223",
		assign("22mm", "Silver", "100")); err != nil {
		return err
	}

	// Everything issued has come back; payments nearly settle the payable.
	days := scenarioDays(h.now())
	txs := []ledger.Transaction{
		outTxn("Sharma Traders", "22mm", "10", days(-60)),
		inTxn("Sharma Traders", "22mm", "Silver", "6", "600.00", days(-45)),
		inTxn("Sharma Traders", "22mm", "Silver", "4", "400.00", days(-30)),
	}
	if err := h.seedTransactions(ctx, txs); err != nil {
		return err
	}

	payments := []ledger.Payment{
		{
			Vendor:    "Sharma Traders",
			PayalType: ledger.PayalAll,
			Amount:    decimal.RequireFromString("600"),
			Date:      days(-20),
			Notes:     "First settlement",
		},
		{
			Vendor:    "Sharma Traders",
			WireName:  "22mm",
			PayalType: "Silver",
			Amount:    decimal.RequireFromString("350"),
			Date:      days(-5),
			Notes:     "Balance on Silver returns",
		},
	}
	for i := range payments {
		if err := h.Store.SavePayment(ctx, &payments[i]); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedWire(ctx context.Context, name string, payals map[string]string) error {
	if err := h.Store.SaveWire(ctx, name); err != nil {
		return err
	}
	for payal, price := range payals {
		if err := h.Store.SavePayalType(ctx, name, payal, decimal.RequireFromString(price)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedVendor(ctx context.Context, name, phone string, assignments ...ledger.WireAssignment) error {
	return h.Store.SaveVendor(ctx, ledger.Vendor{
		Name:          name,
		Phone:         phone,
		AssignedWires: assignments,
	})
}

func (h *Handler) seedTransactions(ctx context.Context, txs []ledger.Transaction) error {
	for i := range txs {
		if err := h.Store.SaveTransaction(ctx, &txs[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(wire, payal, rate string) ledger.WireAssignment {
	return ledger.WireAssignment{
		WireName:   wire,
		PayalType:  payal,
		PricePerKg: decimal.RequireFromString(rate),
	}
}

// scenarioDays anchors scenario dates relative to the handler clock so demo
// data always lands in the recent past.
func scenarioDays(now time.Time) func(offset int) time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return func(offset int) time.Time {
		return base.AddDate(0, 0, offset)
	}
}

func outTxn(vendor, item, qty string, date time.Time) ledger.Transaction {
	return ledger.Transaction{
		Type:   ledger.TxOut,
		Vendor: vendor,
		Item:   item,
		Qty:    decimal.RequireFromString(qty),
		Date:   date,
	}
}

func inTxn(vendor, item, payal, qty, price string, date time.Time) ledger.Transaction {
	return ledger.Transaction{
		Type:      ledger.TxIn,
		Vendor:    vendor,
		Item:      item,
		PayalType: payal,
		Qty:       decimal.RequireFromString(qty),
		Price:     decimal.RequireFromString(price),
		Date:      date,
	}
}
