/*
validate.go - Ingestion validation and normalization

PURPOSE:
  Everything malformed is rejected here, before a transaction reaches the
  reconciler. The reconciler itself assumes clean input and never drops
  rows mid-pass.

NORMALIZATION:
  The historical record shape carried qty AND weight (required identical)
  and a chain of date fields (inDate/outDate/createdAt). Both collapse to
  canonical fields exactly once, at this boundary. Consumers never see the
  fallback chains.
*/
package ledger

import (
	"strings"
	"time"
)

// NormalizeTransaction fills derived fields on a transaction ahead of
// validation: trims name keys, resolves the effective date, and stamps
// CreatedAt when the caller left it zero.
func NormalizeTransaction(tx Transaction, now time.Time) Transaction {
	tx.Vendor = strings.TrimSpace(tx.Vendor)
	tx.Item = strings.TrimSpace(tx.Item)
	tx.PayalType = strings.TrimSpace(tx.PayalType)
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	if tx.Date.IsZero() {
		tx.Date = dateOnly(tx.CreatedAt)
	}
	if tx.Type == TxOut {
		// The ledger ignores a payal label on OUT rows; drop it so the
		// stored record is canonical.
		tx.PayalType = ""
	}
	return tx
}

// ValidateTransaction checks a normalized transaction against the vendor
// registry and wire catalogue. Returns a typed error carrying the failing
// field and transaction context; nil when the transaction is well-formed.
//
// vendors and chart may be consulted only for existence; no pricing is
// validated here (pricing is the payment aggregator's concern).
func ValidateTransaction(tx Transaction, vendors map[string]Vendor, chart PriceChart) error {
	if !tx.Type.Valid() {
		return &ValidationError{Field: "type", Message: "must be OUT or IN", TxID: tx.ID}
	}
	if tx.Vendor == "" {
		return &ValidationError{Field: "vendor", Message: "required", TxID: tx.ID}
	}
	if tx.Item == "" {
		return &ValidationError{Field: "item", Message: "required", TxID: tx.ID}
	}
	if !tx.Qty.IsPositive() {
		return &ValidationError{Field: "qty", Message: "must be a positive weight in kg", TxID: tx.ID}
	}
	if tx.Qty.Exponent() < -3 {
		return &ValidationError{Field: "qty", Message: "at most 3 decimal places of a kg", TxID: tx.ID}
	}

	if _, ok := vendors[tx.Vendor]; !ok {
		return &ReferenceError{Kind: "vendor", Name: tx.Vendor, TxID: tx.ID}
	}
	if _, ok := chart[tx.Item]; !ok {
		return &ReferenceError{Kind: "item", Name: tx.Item, Vendor: tx.Vendor, TxID: tx.ID}
	}

	switch tx.Type {
	case TxOut:
		if !tx.Price.IsZero() {
			return &ValidationError{Field: "price", Message: "must be zero on OUT", TxID: tx.ID}
		}
	case TxIn:
		if tx.PayalType == "" {
			return &ValidationError{Field: "payalType", Message: "required on IN", TxID: tx.ID}
		}
		if tx.PayalType != PayalUnknown && !chart.HasPayal(tx.Item, tx.PayalType) {
			return &ValidationError{Field: "payalType",
				Message: "not a recognized payal type for " + tx.Item, TxID: tx.ID}
		}
		if tx.Price.IsNegative() {
			return &ValidationError{Field: "price", Message: "must not be negative", TxID: tx.ID}
		}
	}

	return nil
}

// ValidateVendor checks a vendor record before it is stored: the name key
// must be present and the assigned-wire table must be unique per
// (wire, payal) with positive rates.
func ValidateVendor(v Vendor) error {
	if strings.TrimSpace(v.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	seen := make(map[string]bool)
	for _, aw := range v.AssignedWires {
		if aw.WireName == "" || aw.PayalType == "" {
			return &ValidationError{Field: "assignedWires", Message: "wire name and payal type required"}
		}
		if aw.PricePerKg.IsNegative() {
			return &ValidationError{Field: "assignedWires",
				Message: "rate for " + aw.WireName + "/" + aw.PayalType + " must not be negative"}
		}
		k := aw.WireName + "\x00" + aw.PayalType
		if seen[k] {
			return &ValidationError{Field: "assignedWires",
				Message: "duplicate assignment for " + aw.WireName + "/" + aw.PayalType}
		}
		seen[k] = true
	}
	return nil
}

// ValidatePaymentRecord checks the structural fields of a payment before
// the balance cap is applied (see ValidatePayment for the cap).
func ValidatePaymentRecord(p Payment) error {
	if strings.TrimSpace(p.Vendor) == "" {
		return &ValidationError{Field: "vendor", Message: "required"}
	}
	if !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "payment amount must be positive"}
	}
	return nil
}
