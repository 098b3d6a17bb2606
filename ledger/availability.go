/*
availability.go - Derived view of wire still out with each vendor

PURPOSE:
  Answers "how much of wire X from vendor Y is currently available to be
  imported". Computed over ALL transactions (not vendor-filtered) in a
  single pass. Gates new IN entries: the server-side check here is
  authoritative, any client-side check is a UX hint only.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ItemAvailability is one (vendor, item) tuple with a positive outstanding
// weight. Available is always TotalOut minus TotalIn.
type ItemAvailability struct {
	Vendor    string
	Item      string
	TotalOut  decimal.Decimal
	TotalIn   decimal.Decimal
	Available decimal.Decimal
}

// Availability accumulates OUT and IN quantities per (vendor, item) and
// returns only the tuples with weight still available. Tuples are ordered
// by vendor then item so output is deterministic for a given snapshot.
func Availability(txs []Transaction) []ItemAvailability {
	type key struct{ vendor, item string }
	acc := make(map[key]*ItemAvailability)

	for _, tx := range txs {
		k := key{tx.Vendor, tx.Item}
		entry := acc[k]
		if entry == nil {
			entry = &ItemAvailability{Vendor: tx.Vendor, Item: tx.Item}
			acc[k] = entry
		}
		switch tx.Type {
		case TxOut:
			entry.TotalOut = entry.TotalOut.Add(tx.Qty)
		case TxIn:
			entry.TotalIn = entry.TotalIn.Add(tx.Qty)
		}
	}

	var result []ItemAvailability
	for _, entry := range acc {
		entry.Available = entry.TotalOut.Sub(entry.TotalIn)
		if entry.Available.IsPositive() {
			result = append(result, *entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Vendor != result[j].Vendor {
			return result[i].Vendor < result[j].Vendor
		}
		return result[i].Item < result[j].Item
	})
	return result
}

// CheckAvailable verifies that qty kilograms of item can still be imported
// from vendor. Returns an *InsufficientInventoryError (with the available
// weight, zero when the pair has never been exported) when it cannot.
func CheckAvailable(txs []Transaction, vendor, item string, qty decimal.Decimal) error {
	for _, entry := range Availability(txs) {
		if entry.Vendor == vendor && entry.Item == item {
			if qty.GreaterThan(entry.Available) {
				return &InsufficientInventoryError{
					Vendor:    vendor,
					Item:      item,
					Available: entry.Available,
					Requested: qty,
				}
			}
			return nil
		}
	}
	return &InsufficientInventoryError{
		Vendor:    vendor,
		Item:      item,
		Available: decimal.Zero,
		Requested: qty,
	}
}
