/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMAL FIELDS:
  Weights and money cross the wire as JSON strings ("12.500", "8400.00"),
  never floats. This is the presentation boundary: weights are fixed to 3
  decimal places, money to 2. Inside the core everything stays unrounded.

LEGACY FIELDS:
  CreateTransactionRequest still accepts the historical weight field
  alongside qty. When both are supplied they must be numerically identical;
  the stored record keeps a single quantity.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/wiretrade/wire-ledger/ledger"
)

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a stored transaction in API responses.
type TransactionDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Vendor    string `json:"vendor"`
	Item      string `json:"item"`
	PayalType string `json:"payal_type,omitempty"`
	Qty       string `json:"qty"`
	Price     string `json:"price"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
}

// CreateTransactionRequest is the request to record an OUT or IN movement.
// Qty and Weight are redundant by history; see the package comment.
type CreateTransactionRequest struct {
	Type      string `json:"type"`
	Vendor    string `json:"vendor"`
	Item      string `json:"item"`
	PayalType string `json:"payal_type,omitempty"`
	Qty       string `json:"qty,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Price     string `json:"price,omitempty"`
	Date      string `json:"date,omitempty"` // YYYY-MM-DD
}

// =============================================================================
// RECONCILED LEDGER
// =============================================================================

// LotDeductionDTO records an IN row's draw from one lot.
type LotDeductionDTO struct {
	LotID string `json:"lot_id"`
	Qty   string `json:"qty"`
}

// ReconciledRowDTO is one row of a vendor's reconciled ledger.
type ReconciledRowDTO struct {
	SrNo           int               `json:"sr_no"`
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Vendor         string            `json:"vendor"`
	Item           string            `json:"item"`
	PayalType      string            `json:"payal_type,omitempty"`
	Date           string            `json:"date"`
	LotID          string            `json:"lot_id,omitempty"`
	LotDeductions  []LotDeductionDTO `json:"lot_deductions,omitempty"`
	LabourCharges  string            `json:"labour_charges,omitempty"`
	QtyOut         string            `json:"qty_out,omitempty"`
	QtyIn          string            `json:"qty_in,omitempty"`
	RunningBalance string            `json:"running_balance"`
	LotStatus      string            `json:"lot_status"`
}

// LotDTO is one open lot in the wire summary.
type LotDTO struct {
	LotID        string `json:"lot_id"`
	Wire         string `json:"wire"`
	OutDate      string `json:"out_date"`
	Qty          string `json:"qty"`
	RemainingQty string `json:"remaining_qty"`
	Days         int    `json:"days"`
	Status       string `json:"status"`
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// AvailabilityDTO is one (vendor, item) tuple with positive availability.
type AvailabilityDTO struct {
	Vendor    string `json:"vendor"`
	Item      string `json:"item"`
	TotalOut  string `json:"total_out"`
	TotalIn   string `json:"total_in"`
	Available string `json:"available"`
}

// =============================================================================
// VENDORS
// =============================================================================

// WireAssignmentDTO is one row of a vendor's rate table.
type WireAssignmentDTO struct {
	WireName   string `json:"wire_name"`
	PayalType  string `json:"payal_type"`
	PricePerKg string `json:"price_per_kg"`
}

// VendorDTO represents a vendor in API responses.
type VendorDTO struct {
	Name          string              `json:"name"`
	Phone         string              `json:"phone,omitempty"`
	Address       string              `json:"address,omitempty"`
	AssignedWires []WireAssignmentDTO `json:"assigned_wires"`
}

// SaveVendorRequest creates or updates a vendor.
type SaveVendorRequest struct {
	Name          string              `json:"name"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	AssignedWires []WireAssignmentDTO `json:"assigned_wires,omitempty"`
}

// AssignWireRequest adds or updates one rate-table row on a vendor.
type AssignWireRequest struct {
	WireName   string `json:"wire_name"`
	PayalType  string `json:"payal_type"`
	PricePerKg string `json:"price_per_kg"`
}

// UnassignWireRequest removes one rate-table row from a vendor.
type UnassignWireRequest struct {
	WireName  string `json:"wire_name"`
	PayalType string `json:"payal_type"`
}

// =============================================================================
// WIRE CATALOGUE
// =============================================================================

// WireDTO is one catalogue wire with its recognized payal labels.
type WireDTO struct {
	Name   string            `json:"name"`
	Payals map[string]string `json:"payals"` // payal label -> legacy price
}

// CreateWireRequest registers a new wire gauge.
type CreateWireRequest struct {
	Name string `json:"name"`
}

// SavePayalRequest adds or updates a payal label on a wire.
type SavePayalRequest struct {
	PayalType   string `json:"payal_type"`
	LegacyPrice string `json:"legacy_price,omitempty"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID        string `json:"id"`
	Vendor    string `json:"vendor"`
	WireName  string `json:"wire_name,omitempty"`
	PayalType string `json:"payal_type"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
}

// CreatePaymentRequest records a payment against a vendor's balance.
type CreatePaymentRequest struct {
	WireName  string `json:"wire_name,omitempty"`
	PayalType string `json:"payal_type,omitempty"` // defaults to "All"
	Amount    string `json:"amount"`
	Date      string `json:"date,omitempty"` // YYYY-MM-DD
	Notes     string `json:"notes,omitempty"`
}

// PayalBreakdownDTO is one payal slice of a statement breakdown.
type PayalBreakdownDTO struct {
	PayalType        string `json:"payal_type"`
	TotalIn          string `json:"total_in"`
	TotalPayable     string `json:"total_payable"`
	TotalPaid        string `json:"total_paid"`
	RemainingBalance string `json:"remaining_balance"`
}

// WireBreakdownDTO groups the payal breakdowns of one wire.
type WireBreakdownDTO struct {
	WireName         string              `json:"wire_name"`
	Payals           []PayalBreakdownDTO `json:"payals"`
	TotalPayable     string              `json:"total_payable"`
	TotalPaid        string              `json:"total_paid"`
	RemainingBalance string              `json:"remaining_balance"`
}

// StatementDTO is a vendor's aggregated payment position.
type StatementDTO struct {
	Vendor           string             `json:"vendor"`
	TotalPayable     string             `json:"total_payable"`
	TotalPaid        string             `json:"total_paid"`
	RemainingBalance string             `json:"remaining_balance"`
	Wires            []WireBreakdownDTO `json:"wires"`
}

// =============================================================================
// PRINT STATUS
// =============================================================================

// PrintStatusDTO is one print-audit mark.
type PrintStatusDTO struct {
	VendorName string `json:"vendor_name"`
	PageNumber int    `json:"page_number"`
	PrintedAt  string `json:"printed_at"`
}

// MarkPrintedRequest marks one vendor page as printed.
type MarkPrintedRequest struct {
	VendorName string `json:"vendor_name"`
	PageNumber int    `json:"page_number"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        tx.ID,
		Type:      string(tx.Type),
		Vendor:    tx.Vendor,
		Item:      tx.Item,
		PayalType: tx.PayalType,
		Qty:       tx.Qty.StringFixed(3),
		Price:     tx.Price.StringFixed(2),
		Date:      tx.Date.Format("2006-01-02"),
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

func toReconciledRowDTO(row ledger.ReconciledRow) ReconciledRowDTO {
	dto := ReconciledRowDTO{
		SrNo:           row.SrNo,
		ID:             row.ID,
		Type:           string(row.Type),
		Vendor:         row.Vendor,
		Item:           row.Item,
		PayalType:      row.PayalType,
		Date:           row.EffectiveDate().Format("2006-01-02"),
		LotID:          row.LotID,
		RunningBalance: row.RunningBalance.StringFixed(3),
		LotStatus:      string(row.LotStatus),
	}
	switch row.Type {
	case ledger.TxOut:
		dto.QtyOut = row.Qty.StringFixed(3)
	case ledger.TxIn:
		dto.QtyIn = row.Qty.StringFixed(3)
		if row.Price.IsPositive() {
			dto.LabourCharges = row.Price.StringFixed(2)
		}
	}
	for _, d := range row.LotDeductions {
		dto.LotDeductions = append(dto.LotDeductions, LotDeductionDTO{
			LotID: d.LotID,
			Qty:   d.Qty.StringFixed(3),
		})
	}
	return dto
}

func toVendorDTO(v ledger.Vendor) VendorDTO {
	dto := VendorDTO{
		Name:          v.Name,
		Phone:         v.Phone,
		Address:       v.Address,
		AssignedWires: make([]WireAssignmentDTO, len(v.AssignedWires)),
	}
	for i, aw := range v.AssignedWires {
		dto.AssignedWires[i] = WireAssignmentDTO{
			WireName:   aw.WireName,
			PayalType:  aw.PayalType,
			PricePerKg: aw.PricePerKg.StringFixed(2),
		}
	}
	return dto
}

func toStatementDTO(stmt ledger.VendorStatement) StatementDTO {
	dto := StatementDTO{
		Vendor:           stmt.Vendor,
		TotalPayable:     stmt.TotalPayable.StringFixed(2),
		TotalPaid:        stmt.TotalPaid.StringFixed(2),
		RemainingBalance: stmt.RemainingBalance.StringFixed(2),
	}
	for _, wb := range stmt.Wires {
		wireDTO := WireBreakdownDTO{
			WireName:         wb.WireName,
			TotalPayable:     wb.TotalPayable.StringFixed(2),
			TotalPaid:        wb.TotalPaid.StringFixed(2),
			RemainingBalance: wb.RemainingBalance.StringFixed(2),
		}
		for _, pb := range wb.Payals {
			wireDTO.Payals = append(wireDTO.Payals, PayalBreakdownDTO{
				PayalType:        pb.PayalType,
				TotalIn:          pb.TotalIn.StringFixed(3),
				TotalPayable:     pb.TotalPayable.StringFixed(2),
				TotalPaid:        pb.TotalPaid.StringFixed(2),
				RemainingBalance: pb.RemainingBalance.StringFixed(2),
			})
		}
		dto.Wires = append(dto.Wires, wireDTO)
	}
	return dto
}

func toPaymentDTO(p ledger.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        p.ID,
		Vendor:    p.Vendor,
		WireName:  p.WireName,
		PayalType: p.PayalType,
		Amount:    p.Amount.StringFixed(2),
		Date:      p.Date.Format("2006-01-02"),
		Notes:     p.Notes,
	}
}
