/*
handlers.go - HTTP API handlers for the wire-trading ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Transactions:
    GET    /api/transactions           List (filter by type/vendor)
    POST   /api/transactions           Record OUT or IN movement
    DELETE /api/transactions/{id}      Delete by stable id

  Vendors:
    GET    /api/vendors                List with rate tables
    POST   /api/vendors                Create vendor
    PUT    /api/vendors/{name}         Update vendor
    DELETE /api/vendors/{name}         Delete vendor
    POST   /api/vendors/{name}/wires   Assign wire+payal+rate
    DELETE /api/vendors/{name}/wires   Unassign wire+payal

  Ledger views:
    GET    /api/vendors/{name}/ledger         Reconciled rows (?wire=)
    GET    /api/vendors/{name}/ledger/export  CSV download
    GET    /api/vendors/{name}/lots           Open lots
    GET    /api/availability                  Positive (vendor,item) balances
    GET    /api/availability/export           CSV download
    GET    /api/overdue                       Open lots past the age threshold

  Payments:
    GET    /api/vendors/{name}/statement      Aggregated payment position
    GET    /api/vendors/{name}/payments       Payment history
    POST   /api/vendors/{name}/payments       Record (capped at balance)
    DELETE /api/payments/{id}

  Catalogue:
    GET    /api/wires                  Wire catalogue with payal labels
    POST   /api/wires                  Register a wire
    DELETE /api/wires/{name}
    POST   /api/wires/{name}/payals    Add/update payal label
    DELETE /api/wires/{name}/payals/{payal}

  Print audit:
    GET    /api/print-status
    POST   /api/print-status
    DELETE /api/print-status
    DELETE /api/print-status/{vendor}/{page}

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (reconciler, availability, aggregator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unknown references
  - 404: Resource not found
  - 409: Duplicate, insufficient inventory, payment over balance
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/wiretrade/wire-ledger/export"
	"github.com/wiretrade/wire-ledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store ledger.Store

	// currentScenario tracks the demo scenario last loaded, if any.
	currentScenario string

	// monitor backs the overdue-lot endpoint when attached.
	monitor *OverdueMonitor

	// now is swappable for tests.
	now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store ledger.Store) *Handler {
	return &Handler{
		Store: store,
		now:   time.Now,
	}
}

// AttachMonitor wires an overdue-lot monitor into the handler.
func (h *Handler) AttachMonitor(m *OverdueMonitor) {
	h.monitor = m
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns transactions, optionally filtered by type and vendor.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		txs []ledger.Transaction
		err error
	)
	switch {
	case r.URL.Query().Get("vendor") != "":
		txs, err = h.Store.ListTransactionsByVendor(ctx, r.URL.Query().Get("vendor"))
	case r.URL.Query().Get("type") != "":
		t := ledger.TxType(r.URL.Query().Get("type"))
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid type filter (use OUT or IN)", nil)
			return
		}
		txs, err = h.Store.ListTransactionsByType(ctx, t)
	default:
		txs, err = h.Store.ListTransactions(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction records a new OUT or IN movement.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	qty, err := resolveQty(req.Qty, req.Weight)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}

	price := decimal.Zero
	if req.Price != "" {
		price, err = decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid price", err)
			return
		}
	}

	tx := ledger.Transaction{
		Type:      ledger.TxType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Vendor:    req.Vendor,
		Item:      req.Item,
		PayalType: req.PayalType,
		Qty:       qty,
		Price:     price,
	}
	if req.Date != "" {
		tx.Date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}
	tx = ledger.NormalizeTransaction(tx, h.now())

	vendors, chart, err := h.loadReferenceData(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reference data", err)
		return
	}
	if err := ledger.ValidateTransaction(tx, vendors, chart); err != nil {
		writeError(w, statusFor(err), "Invalid transaction", err)
		return
	}

	// IN movements cannot return more than what is out with the vendor.
	if tx.Type == ledger.TxIn {
		all, err := h.Store.ListTransactions(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check inventory", err)
			return
		}
		if err := ledger.CheckAvailable(all, tx.Vendor, tx.Item, tx.Qty); err != nil {
			writeError(w, statusFor(err), "Insufficient inventory", err)
			return
		}
	}

	if err := h.Store.SaveTransaction(ctx, &tx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// DeleteTransaction removes a transaction by id.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// VENDOR HANDLERS
// =============================================================================

// ListVendors returns all vendors with their rate tables.
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.Store.ListVendors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list vendors", err)
		return
	}

	dtos := make([]VendorDTO, len(vendors))
	for i, v := range vendors {
		dtos[i] = toVendorDTO(v)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateVendor creates a new vendor.
func (h *Handler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	h.saveVendor(w, r, "")
}

// UpdateVendor updates an existing vendor.
func (h *Handler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	h.saveVendor(w, r, pathParam(r, "name"))
}

func (h *Handler) saveVendor(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	var req SaveVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if name == "" {
		name = req.Name
	}

	v := ledger.Vendor{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	for _, aw := range req.AssignedWires {
		rate, err := decimal.NewFromString(aw.PricePerKg)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid rate for %s/%s", aw.WireName, aw.PayalType), err)
			return
		}
		v.AssignedWires = append(v.AssignedWires, ledger.WireAssignment{
			WireName:   aw.WireName,
			PayalType:  aw.PayalType,
			PricePerKg: rate,
		})
	}

	if err := ledger.ValidateVendor(v); err != nil {
		writeError(w, statusFor(err), "Invalid vendor", err)
		return
	}
	if err := h.Store.SaveVendor(ctx, v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save vendor", err)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, toVendorDTO(v))
}

// DeleteVendor removes a vendor and its rate table.
func (h *Handler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if err := h.Store.DeleteVendor(r.Context(), name); err != nil {
		writeError(w, statusFor(err), "Failed to delete vendor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignWire adds or updates one rate-table row on a vendor.
func (h *Handler) AssignWire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := pathParam(r, "name")

	var req AssignWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rate, err := decimal.NewFromString(req.PricePerKg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price_per_kg", err)
		return
	}
	if req.WireName == "" || req.PayalType == "" {
		writeError(w, http.StatusBadRequest, "wire_name and payal_type are required", nil)
		return
	}

	v, err := h.Store.GetVendor(ctx, name)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load vendor", err)
		return
	}

	// Replace in place if the (wire, payal) pair is already assigned.
	updated := false
	for i, aw := range v.AssignedWires {
		if aw.WireName == req.WireName && aw.PayalType == req.PayalType {
			v.AssignedWires[i].PricePerKg = rate
			updated = true
			break
		}
	}
	if !updated {
		v.AssignedWires = append(v.AssignedWires, ledger.WireAssignment{
			WireName:   req.WireName,
			PayalType:  req.PayalType,
			PricePerKg: rate,
		})
	}

	if err := h.Store.SaveVendor(ctx, *v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorDTO(*v))
}

// UnassignWire removes one rate-table row from a vendor.
func (h *Handler) UnassignWire(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := pathParam(r, "name")

	var req UnassignWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	v, err := h.Store.GetVendor(ctx, name)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load vendor", err)
		return
	}

	kept := v.AssignedWires[:0]
	removed := false
	for _, aw := range v.AssignedWires {
		if aw.WireName == req.WireName && aw.PayalType == req.PayalType {
			removed = true
			continue
		}
		kept = append(kept, aw)
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Wire assignment not found", nil)
		return
	}
	v.AssignedWires = kept

	if err := h.Store.SaveVendor(ctx, *v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save vendor", err)
		return
	}
	writeJSON(w, http.StatusOK, toVendorDTO(*v))
}

// =============================================================================
// LEDGER VIEW HANDLERS
// =============================================================================

// GetLedger returns a vendor's reconciled ledger rows.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.reconciledRows(w, r)
	if !ok {
		return
	}

	dtos := make([]ReconciledRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toReconciledRowDTO(row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportLedger streams a vendor's reconciled ledger as CSV.
func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.reconciledRows(w, r)
	if !ok {
		return
	}

	name := export.FileName(pathParam(r, "name"), h.now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteLedger(w, rows); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}

func (h *Handler) reconciledRows(w http.ResponseWriter, r *http.Request) ([]ledger.ReconciledRow, bool) {
	ctx := r.Context()
	name := pathParam(r, "name")

	if _, err := h.Store.GetVendor(ctx, name); err != nil {
		writeError(w, statusFor(err), "Failed to load vendor", err)
		return nil, false
	}

	txs, err := h.Store.ListTransactionsByVendor(ctx, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return nil, false
	}

	if wire := r.URL.Query().Get("wire"); wire != "" {
		return ledger.ReconcileWire(txs, wire), true
	}
	return ledger.Reconcile(txs), true
}

// GetLots returns a vendor's open (pending or partial) lots.
func (h *Handler) GetLots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := pathParam(r, "name")

	txs, err := h.Store.ListTransactionsByVendor(ctx, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	now := h.now()
	lots := ledger.OpenLots(txs, name)
	dtos := make([]LotDTO, len(lots))
	for i, l := range lots {
		dtos[i] = LotDTO{
			LotID:        l.ID,
			Wire:         l.Wire,
			OutDate:      l.OutDate.Format("2006-01-02"),
			Qty:          l.Qty.StringFixed(3),
			RemainingQty: l.RemainingQty.StringFixed(3),
			Days:         l.AgeDays(now),
			Status:       string(l.Status),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAvailability returns every (vendor, item) pair with stock still out.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	items, ok := h.availability(w, r)
	if !ok {
		return
	}

	dtos := make([]AvailabilityDTO, len(items))
	for i, it := range items {
		dtos[i] = AvailabilityDTO{
			Vendor:    it.Vendor,
			Item:      it.Item,
			TotalOut:  it.TotalOut.StringFixed(3),
			TotalIn:   it.TotalIn.StringFixed(3),
			Available: it.Available.StringFixed(3),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportAvailability streams the availability table as CSV.
func (h *Handler) ExportAvailability(w http.ResponseWriter, r *http.Request) {
	items, ok := h.availability(w, r)
	if !ok {
		return
	}

	name := fmt.Sprintf("availability_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	export.WriteAvailability(w, items)
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) ([]ledger.ItemAvailability, bool) {
	txs, err := h.Store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return nil, false
	}
	items := ledger.Availability(txs)
	if vendor := r.URL.Query().Get("vendor"); vendor != "" {
		kept := items[:0]
		for _, it := range items {
			if it.Vendor == vendor {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	return items, true
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// GetStatement returns a vendor's aggregated payment position.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	stmt, _, ok := h.buildStatement(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(stmt))
}

// ListPayments returns a vendor's payment history.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	payments, err := h.Store.ListPaymentsByVendor(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment, capped at the vendor's live remaining balance.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := pathParam(r, "name")

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	p := ledger.Payment{
		Vendor:    name,
		WireName:  strings.TrimSpace(req.WireName),
		PayalType: strings.TrimSpace(req.PayalType),
		Amount:    amount,
		Notes:     strings.TrimSpace(req.Notes),
	}
	if p.PayalType == "" {
		p.PayalType = ledger.PayalAll
	}
	if req.Date != "" {
		p.Date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	} else {
		p.Date = h.now()
	}

	if err := ledger.ValidatePaymentRecord(p); err != nil {
		writeError(w, statusFor(err), "Invalid payment", err)
		return
	}

	stmt, _, ok := h.buildStatement(w, r)
	if !ok {
		return
	}
	if err := ledger.ValidatePayment(stmt, amount); err != nil {
		writeError(w, statusFor(err), "Payment rejected", err)
		return
	}

	if err := h.Store.SavePayment(ctx, &p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// DeletePayment removes a payment by id.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeletePayment(r.Context(), id); err != nil {
		writeError(w, statusFor(err), "Failed to delete payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) buildStatement(w http.ResponseWriter, r *http.Request) (ledger.VendorStatement, *ledger.Vendor, bool) {
	ctx := r.Context()
	name := pathParam(r, "name")

	v, err := h.Store.GetVendor(ctx, name)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load vendor", err)
		return ledger.VendorStatement{}, nil, false
	}

	txs, err := h.Store.ListTransactionsByVendor(ctx, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return ledger.VendorStatement{}, nil, false
	}
	payments, err := h.Store.ListPaymentsByVendor(ctx, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return ledger.VendorStatement{}, nil, false
	}

	return ledger.BuildStatement(*v, txs, payments), v, true
}

// =============================================================================
// WIRE CATALOGUE HANDLERS
// =============================================================================

// ListWires returns the wire catalogue with recognized payal labels.
func (h *Handler) ListWires(w http.ResponseWriter, r *http.Request) {
	chart, err := h.Store.GetPriceChart(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load price chart", err)
		return
	}

	dtos := make([]WireDTO, 0, len(chart))
	for wire, payals := range chart {
		dto := WireDTO{Name: wire, Payals: make(map[string]string, len(payals))}
		for payal, price := range payals {
			dto.Payals[payal] = price.StringFixed(2)
		}
		dtos = append(dtos, dto)
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Name < dtos[j].Name })
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWire registers a new wire gauge in the catalogue.
func (h *Handler) CreateWire(w http.ResponseWriter, r *http.Request) {
	var req CreateWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Wire name is required", nil)
		return
	}

	if err := h.Store.SaveWire(r.Context(), name); err != nil {
		writeError(w, statusFor(err), "Failed to save wire", err)
		return
	}
	writeJSON(w, http.StatusCreated, WireDTO{Name: name, Payals: map[string]string{}})
}

// DeleteWire removes a wire and its payal labels from the catalogue.
func (h *Handler) DeleteWire(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if err := h.Store.DeleteWire(r.Context(), name); err != nil {
		writeError(w, statusFor(err), "Failed to delete wire", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SavePayal adds or updates a payal label on a wire.
func (h *Handler) SavePayal(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")

	var req SavePayalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	payal := strings.TrimSpace(req.PayalType)
	if payal == "" {
		writeError(w, http.StatusBadRequest, "payal_type is required", nil)
		return
	}

	price := decimal.Zero
	if req.LegacyPrice != "" {
		var err error
		price, err = decimal.NewFromString(req.LegacyPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid legacy_price", err)
			return
		}
	}

	if err := h.Store.SavePayalType(r.Context(), name, payal, price); err != nil {
		writeError(w, statusFor(err), "Failed to save payal type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePayal removes a payal label from a wire.
func (h *Handler) DeletePayal(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	payal := pathParam(r, "payal")
	if err := h.Store.DeletePayalType(r.Context(), name, payal); err != nil {
		writeError(w, statusFor(err), "Failed to delete payal type", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PRINT STATUS HANDLERS
// =============================================================================

// ListPrintStatuses returns every recorded print mark.
func (h *Handler) ListPrintStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.ListPrintStatuses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list print statuses", err)
		return
	}

	dtos := make([]PrintStatusDTO, len(statuses))
	for i, s := range statuses {
		dtos[i] = PrintStatusDTO{
			VendorName: s.VendorName,
			PageNumber: s.PageNumber,
			PrintedAt:  s.PrintedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MarkPrinted marks one vendor page as printed.
func (h *Handler) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	var req MarkPrintedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.VendorName == "" || req.PageNumber < 1 {
		writeError(w, http.StatusBadRequest, "vendor_name and a positive page_number are required", nil)
		return
	}

	if err := h.Store.MarkPagePrinted(r.Context(), req.VendorName, req.PageNumber); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark page printed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPrinted removes one print mark.
func (h *Handler) ClearPrinted(w http.ResponseWriter, r *http.Request) {
	vendor := pathParam(r, "vendor")
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid page number", err)
		return
	}
	if err := h.Store.ClearPagePrinted(r.Context(), vendor, page); err != nil {
		writeError(w, statusFor(err), "Failed to clear print mark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearAllPrinted removes every print mark.
func (h *Handler) ClearAllPrinted(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearAllPrinted(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear print marks", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadReferenceData(r *http.Request) (map[string]ledger.Vendor, ledger.PriceChart, error) {
	ctx := r.Context()

	list, err := h.Store.ListVendors(ctx)
	if err != nil {
		return nil, nil, err
	}
	vendors := make(map[string]ledger.Vendor, len(list))
	for _, v := range list {
		vendors[v.Name] = v
	}

	chart, err := h.Store.GetPriceChart(ctx)
	if err != nil {
		return nil, nil, err
	}
	return vendors, chart, nil
}

// resolveQty reconciles the qty field with the historical weight field.
// Clients may send either; if both are present they must agree.
func resolveQty(qtyStr, weightStr string) (decimal.Decimal, error) {
	if qtyStr == "" && weightStr == "" {
		return decimal.Zero, fmt.Errorf("qty is required")
	}
	if qtyStr == "" {
		qtyStr = weightStr
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return decimal.Zero, err
	}
	if weightStr != "" && weightStr != qtyStr {
		weight, err := decimal.NewFromString(weightStr)
		if err != nil {
			return decimal.Zero, err
		}
		if !weight.Equal(qty) {
			return decimal.Zero, fmt.Errorf("qty %s and weight %s disagree", qty, weight)
		}
	}
	return qty, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicate),
		errors.Is(err, ledger.ErrInsufficientInventory),
		errors.Is(err, ledger.ErrPaymentExceedsBalance):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidTransaction),
		errors.Is(err, ledger.ErrVendorNotFound),
		errors.Is(err, ledger.ErrItemNotFound),
		errors.Is(err, ledger.ErrUnknownPayalType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// pathParam returns a URL path parameter with percent-encoding undone.
// Vendor and wire names carry spaces, which arrive escaped in the route.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
