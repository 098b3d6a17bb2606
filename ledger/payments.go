/*
payments.go - Vendor payment aggregation

PURPOSE:
  Combines a vendor's IN transactions, the vendor's own per-kg rate table,
  and recorded payments into a statement: total payable, total paid,
  remaining balance, and a per-wire per-payal breakdown for display.

PRICING RULE:
  The rate for an IN transaction is looked up EXCLUSIVELY in the vendor's
  AssignedWires. There is no fallback to the global price chart; every
  vendor negotiates independently. An IN transaction whose payal type is
  missing or "Unknown" contributes zero to the payable sum and is excluded
  from the breakdown entirely. That exclusion is the documented business
  rule, not a silent failure.

NUMERIC SEMANTICS:
  decimal all the way through. Rounding to 2 places happens at the DTO/CSV
  boundary, never between intermediate sums.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATEMENT STRUCTURES
// =============================================================================

// PayalBreakdown is the payable/paid/remaining triple for one payal type
// of one wire.
type PayalBreakdown struct {
	PayalType        string
	TotalIn          decimal.Decimal // kilograms returned in this finish
	TotalPayable     decimal.Decimal
	TotalPaid        decimal.Decimal // payments recorded against this wire+payal
	RemainingBalance decimal.Decimal
}

// WireBreakdown groups the payal breakdowns of one wire.
type WireBreakdown struct {
	WireName         string
	Payals           []PayalBreakdown
	TotalPayable     decimal.Decimal
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
}

// VendorStatement is the aggregated payment position of one vendor.
//
// Vendor-level payments (PayalType "All") count toward TotalPaid but are
// not attributed to any wire breakdown; the per-wire figures therefore sum
// to at most the vendor totals, never more.
type VendorStatement struct {
	Vendor           string
	TotalPayable     decimal.Decimal
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
	Wires            []WireBreakdown
}

// =============================================================================
// AGGREGATION
// =============================================================================

// BuildStatement computes a vendor's live payment position. inTxs should be
// the vendor's IN transactions; OUT rows and other vendors' rows are
// ignored defensively. payments are the vendor's recorded payments.
func BuildStatement(vendor Vendor, inTxs []Transaction, payments []Payment) VendorStatement {
	stmt := VendorStatement{Vendor: vendor.Name}

	type key struct{ wire, payal string }
	payable := make(map[key]*PayalBreakdown)

	for _, tx := range inTxs {
		if tx.Type != TxIn || tx.Vendor != vendor.Name {
			continue
		}
		payal := tx.PayalType
		if payal == "" || payal == PayalUnknown {
			// Excluded from payment aggregation by business rule.
			continue
		}
		k := key{tx.Item, payal}
		entry := payable[k]
		if entry == nil {
			entry = &PayalBreakdown{PayalType: payal}
			payable[k] = entry
		}
		entry.TotalIn = entry.TotalIn.Add(tx.Qty)
		if rate, ok := vendor.Rate(tx.Item, payal); ok {
			entry.TotalPayable = entry.TotalPayable.Add(tx.Qty.Mul(rate))
		}
	}

	// Attribute payments: specific wire+payal payments land in their
	// breakdown, vendor-level ("All") payments only in the vendor totals.
	for _, p := range payments {
		if p.Vendor != vendor.Name {
			continue
		}
		stmt.TotalPaid = stmt.TotalPaid.Add(p.Amount)
		if p.PayalType == "" || p.PayalType == PayalAll {
			continue
		}
		if entry := payable[key{p.WireName, p.PayalType}]; entry != nil {
			entry.TotalPaid = entry.TotalPaid.Add(p.Amount)
		}
	}

	// Assemble per-wire groups in deterministic order.
	wires := make(map[string]*WireBreakdown)
	var wireNames []string
	for k, entry := range payable {
		entry.RemainingBalance = entry.TotalPayable.Sub(entry.TotalPaid)
		wb := wires[k.wire]
		if wb == nil {
			wb = &WireBreakdown{WireName: k.wire}
			wires[k.wire] = wb
			wireNames = append(wireNames, k.wire)
		}
		wb.Payals = append(wb.Payals, *entry)
		wb.TotalPayable = wb.TotalPayable.Add(entry.TotalPayable)
		wb.TotalPaid = wb.TotalPaid.Add(entry.TotalPaid)
		stmt.TotalPayable = stmt.TotalPayable.Add(entry.TotalPayable)
	}
	sort.Strings(wireNames)
	for _, name := range wireNames {
		wb := wires[name]
		wb.RemainingBalance = wb.TotalPayable.Sub(wb.TotalPaid)
		sort.Slice(wb.Payals, func(i, j int) bool {
			return wb.Payals[i].PayalType < wb.Payals[j].PayalType
		})
		stmt.Wires = append(stmt.Wires, *wb)
	}

	stmt.RemainingBalance = stmt.TotalPayable.Sub(stmt.TotalPaid)
	return stmt
}

// =============================================================================
// PAYMENT VALIDATION
// =============================================================================

// ValidatePayment checks a proposed payment amount against the vendor's
// live statement. The amount must be strictly positive and must not exceed
// the remaining balance. The statement must be freshly computed by the
// caller; this function never consults a cached snapshot.
func ValidatePayment(stmt VendorStatement, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "payment amount must be positive"}
	}
	if amount.GreaterThan(stmt.RemainingBalance) {
		return &PaymentExceedsBalanceError{
			Vendor:    stmt.Vendor,
			Payable:   stmt.TotalPayable,
			Paid:      stmt.TotalPaid,
			Remaining: stmt.RemainingBalance,
			Requested: amount,
		}
	}
	return nil
}
