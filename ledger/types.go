/*
Package ledger is the core of the wire-trading inventory and payment system.

PURPOSE:
  Vendors are loaned raw wire stock (OUT transactions) and return finished
  goods by weight (IN transactions). This package holds the domain types and
  the three computations of record over them:

  - Reconciliation: FIFO matching of OUT lots against later IN returns,
    per vendor per wire, with running balances and lot statuses
    (reconcile.go)
  - Availability: how much of each wire is still out with each vendor
    (availability.go)
  - Payment aggregation: payable vs. paid per vendor, priced from the
    vendor's own per-kg rate table (payments.go)

DESIGN PRINCIPLES:
  1. Precision: all weights and money use decimal.Decimal. Rounding happens
     only at presentation boundaries, never between intermediate sums.
  2. Purity: the computations are side-effect-free passes over a snapshot
     fetched from the Store. No package-level mutable state.
  3. Normalization once: the historical qty/weight duality and the
     inDate/outDate/createdAt fallback chain collapse to single canonical
     fields at ingestion (validate.go), not in every consumer.

SEE ALSO:
  - store.go: persistence interface the computations read from
  - errors.go: sentinel and structured error types
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - Immutable fact once stored
// =============================================================================

// TxType classifies a transaction: material issued to a vendor (OUT) or
// finished goods returned by the vendor (IN).
type TxType string

const (
	TxOut TxType = "OUT"
	TxIn  TxType = "IN"
)

// Valid reports whether t is one of the two known transaction types.
func (t TxType) Valid() bool { return t == TxOut || t == TxIn }

// Transaction is a single OUT or IN movement of wire stock.
//
// Qty is the canonical weight in kilograms. The source system carried both
// a qty and a weight field that were required to be numerically identical;
// they are collapsed into Qty at the API boundary (see validate.go).
//
// Date is the user-supplied calendar date of the movement, distinct from
// CreatedAt which records when the row was stored. Date drives chronological
// ordering; CreatedAt breaks ties between same-date entries.
type Transaction struct {
	ID        string
	Type      TxType
	Vendor    string
	Item      string // wire gauge label, e.g. "22mm"
	PayalType string // finish/design category; meaningful on IN only
	Qty       decimal.Decimal
	Price     decimal.Decimal // IN: total payable for this return; OUT: zero
	Date      time.Time
	CreatedAt time.Time
}

// EffectiveDate returns the date used for chronological ordering: the
// user-supplied transaction date, falling back to the creation timestamp
// when no date was recorded.
func (t Transaction) EffectiveDate() time.Time {
	if t.Date.IsZero() {
		return t.CreatedAt
	}
	return t.Date
}

// =============================================================================
// VENDOR - Mutable entity with a private rate table
// =============================================================================

// WireAssignment is one row of a vendor's negotiated rate table: the per-kg
// labour rate this vendor is paid for returning the given wire in the given
// finish. Unique per (WireName, PayalType) within a vendor.
type WireAssignment struct {
	WireName   string
	PayalType  string
	PricePerKg decimal.Decimal
}

// Vendor is keyed by name. A vendor's price for a wire+payal combination is
// defined only by its own AssignedWires; there is no fallback to the global
// price chart. Every vendor negotiates independently.
type Vendor struct {
	Name          string
	Phone         string
	Address       string
	AssignedWires []WireAssignment
}

// Rate looks up the vendor's per-kg rate for a wire+payal combination.
// The second return is false when the vendor has no such assignment.
func (v Vendor) Rate(wireName, payalType string) (decimal.Decimal, bool) {
	for _, aw := range v.AssignedWires {
		if aw.WireName == wireName && aw.PayalType == payalType {
			return aw.PricePerKg, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// WIRE CATALOGUE - Recognized wires and payal labels
// =============================================================================

// PayalUnknown marks an IN transaction whose finish category was never
// recorded. Such transactions are excluded from payment aggregation
// (they contribute zero, by documented business rule, not by omission).
const PayalUnknown = "Unknown"

// PriceChart maps wire name -> payal type -> legacy global price.
// It is a catalogue of recognized labels, not a pricing source of truth:
// current flows only consult it for "which payal types exist for this wire".
// The legacy price is carried for the historical data but never used to
// price an IN transaction.
type PriceChart map[string]map[string]decimal.Decimal

// PayalTypes returns the recognized payal labels for a wire, in no
// particular order. Nil when the wire is not in the catalogue.
func (pc PriceChart) PayalTypes(wireName string) []string {
	payals := pc[wireName]
	if payals == nil {
		return nil
	}
	labels := make([]string, 0, len(payals))
	for label := range payals {
		labels = append(labels, label)
	}
	return labels
}

// HasPayal reports whether the catalogue recognizes the payal label for
// the given wire.
func (pc PriceChart) HasPayal(wireName, payalType string) bool {
	payals, ok := pc[wireName]
	if !ok {
		return false
	}
	_, ok = payals[payalType]
	return ok
}

// =============================================================================
// PAYMENT - Money paid to a vendor against their outstanding balance
// =============================================================================

// PayalAll marks a payment recorded against the vendor as a whole rather
// than a specific wire+payal slice of their statement.
const PayalAll = "All"

type Payment struct {
	ID        string
	Vendor    string
	WireName  string // empty or a specific wire
	PayalType string // PayalAll for vendor-level payments
	Amount    decimal.Decimal
	Date      time.Time
	Notes     string
}

// =============================================================================
// LOT - Derived FIFO batch, never persisted
// =============================================================================

// LotStatus describes how much of an OUT batch has been returned.
type LotStatus string

const (
	LotPending   LotStatus = "pending"   // no IN applied yet
	LotPartial   LotStatus = "partial"   // some but not all returned
	LotCompleted LotStatus = "completed" // fully returned
)

// Lot is a traceable batch created implicitly for every OUT transaction and
// depleted by subsequent IN transactions for the same vendor+wire in FIFO
// order. The ID is "S-" plus the zero-padded serial number of the OUT row
// in the reconciled sequence.
type Lot struct {
	ID           string
	Vendor       string
	Wire         string
	Qty          decimal.Decimal
	RemainingQty decimal.Decimal
	OutDate      time.Time
	Status       LotStatus
}

// AgeDays returns whole days elapsed since the lot's OUT date, rounded up.
// Used by the open-lot summary to flag stock that has been with a vendor
// too long.
func (l Lot) AgeDays(now time.Time) int {
	d := now.Sub(l.OutDate)
	days := int(d.Hours() / 24)
	if d > time.Duration(days)*24*time.Hour {
		days++
	}
	if days < 0 {
		return 0
	}
	return days
}

// =============================================================================
// PRINT STATUS - Print-audit marks for paginated ledger pages
// =============================================================================

// PrintStatus records that a particular page of a vendor's reconciled
// ledger was printed. Keyed by (VendorName, PageNumber); consumed by the
// presentation layer's print-audit checkbox. Page numbers key off the
// stable serial numbers the reconciler assigns.
type PrintStatus struct {
	VendorName string
	PageNumber int
	PrintedAt  time.Time
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// dateOnly truncates a timestamp to its calendar date (UTC midnight).
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
