/*
reconcile.go - FIFO batch matching of OUT lots against IN returns

PURPOSE:
  The ledger reconciliation algorithm. Given a snapshot of transactions it
  sorts them chronologically, assigns a traceable lot id to every OUT batch,
  drains lots first-in-first-out as IN transactions arrive, attaches a
  per-vendor running balance to every row, and classifies each row as
  pending, partial, or completed.

SORT RULE:
  Calendar transaction date first (date-only comparison), then CreatedAt
  ascending for entries sharing the same date. An earlier revision of the
  system sorted purely by CreatedAt; the two rules produce different lot
  assignments on backdated data and are NOT interchangeable. This package
  uses the calendar-date rule because it matches user-facing expectations
  ("what happened on which date").

GUARANTEES:
  - Deterministic: same snapshot in, byte-identical rows out.
  - Conservation: total OUT minus total IN for a vendor+wire equals the sum
    of that pair's remaining lot quantities.
  - No lot's remaining quantity ever goes negative; an IN that exceeds all
    open lots is absorbed silently and simply drives the running balance
    lower (over-returns are a business reality, not an error).

MALFORMED INPUT:
  The reconciler assumes validated input (see validate.go). Transactions
  are rejected at ingestion, never dropped mid-reconciliation.
*/
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECONCILED ROW - Reconciler output
// =============================================================================

// LotDeduction records how much a single IN transaction took from one lot.
type LotDeduction struct {
	LotID string
	Qty   decimal.Decimal
}

// ReconciledRow augments one transaction with its place in the FIFO
// reconciliation: serial number, lot linkage, running balance, and status.
type ReconciledRow struct {
	Transaction

	// SrNo is the 1-based position of the row in the full sorted sequence.
	// It is stable for a given snapshot and is the key the presentation
	// layer's pagination and print-audit features hang off.
	SrNo int

	// LotID is the row's lot linkage. For OUT rows it is the lot this batch
	// created (S-<zero-padded SrNo>). For IN rows it is the comma-joined
	// list of lot ids the return was applied to, oldest first.
	LotID string

	// LotDeductions details, for IN rows, how much was taken from each lot.
	LotDeductions []LotDeduction

	// RunningBalance is the vendor's cumulative OUT-minus-IN weight after
	// this row, across all of the vendor's wires.
	RunningBalance decimal.Decimal

	// LotStatus is backfilled after the pass: an OUT row is completed when
	// its lot fully drained, an IN row is completed only when every lot it
	// touched is completed (else partial).
	LotStatus LotStatus
}

// lotID formats the traceable batch identifier for an OUT row.
func lotID(srNo int) string { return fmt.Sprintf("S-%06d", srNo) }

// =============================================================================
// RECONCILE - The FIFO pass
// =============================================================================

// Reconcile runs the FIFO reconciliation over a snapshot of transactions.
// Callers normally pass one vendor's transactions; passing several vendors'
// is valid and keeps each vendor's queues and balances independent.
//
// The input slice is not modified.
func Reconcile(txs []Transaction) []ReconciledRow {
	rows := make([]ReconciledRow, len(txs))
	for i, tx := range txs {
		rows[i] = ReconciledRow{Transaction: tx}
	}
	sortRows(rows)

	type lotEntry struct {
		id        string
		remaining decimal.Decimal
	}

	balances := make(map[string]decimal.Decimal)   // vendor -> running balance
	queues := make(map[string][]*lotEntry)         // vendor+wire -> FIFO queue
	completed := make(map[string]bool)             // lot id -> fully drained

	for i := range rows {
		row := &rows[i]
		row.SrNo = i + 1
		qKey := row.Vendor + "\x00" + row.Item

		switch row.Type {
		case TxOut:
			id := lotID(row.SrNo)
			row.LotID = id
			queues[qKey] = append(queues[qKey], &lotEntry{id: id, remaining: row.Qty})
			balances[row.Vendor] = balances[row.Vendor].Add(row.Qty)

		case TxIn:
			need := row.Qty
			for _, lot := range queues[qKey] {
				if !need.IsPositive() {
					break
				}
				if !lot.remaining.IsPositive() {
					continue
				}
				deduction := decimal.Min(lot.remaining, need)
				lot.remaining = lot.remaining.Sub(deduction)
				need = need.Sub(deduction)
				row.LotDeductions = append(row.LotDeductions, LotDeduction{LotID: lot.id, Qty: deduction})
				if lot.remaining.IsZero() {
					completed[lot.id] = true
				}
			}
			// Excess need beyond open lots is absorbed: it still reduces
			// the running balance below.
			ids := make([]string, len(row.LotDeductions))
			for j, d := range row.LotDeductions {
				ids[j] = d.LotID
			}
			row.LotID = strings.Join(ids, ", ")
			balances[row.Vendor] = balances[row.Vendor].Sub(row.Qty)
		}

		row.RunningBalance = balances[row.Vendor]
	}

	// Backfill statuses now that the full pass is known.
	for i := range rows {
		row := &rows[i]
		switch row.Type {
		case TxOut:
			if completed[row.LotID] {
				row.LotStatus = LotCompleted
			} else {
				row.LotStatus = LotPending
			}
		case TxIn:
			row.LotStatus = LotCompleted
			for _, d := range row.LotDeductions {
				if !completed[d.LotID] {
					row.LotStatus = LotPartial
					break
				}
			}
		}
	}

	return rows
}

// sortRows orders rows by calendar date, breaking same-date ties by
// CreatedAt ascending so entries added later appear below earlier ones.
// The sort is stable so storage order decides between identical timestamps.
func sortRows(rows []ReconciledRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := dateOnly(rows[i].EffectiveDate()), dateOnly(rows[j].EffectiveDate())
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
}

// =============================================================================
// WIRE-FILTERED VIEW
// =============================================================================

// ReconcileWire reconciles the snapshot and then restricts the rows to one
// wire, recomputing running balances per (vendor, wire) instead of per
// vendor. This mirrors the ledger table's behavior under a wire filter:
// serial numbers and lot assignments keep their full-sequence values, only
// the balance column is rescoped.
func ReconcileWire(txs []Transaction, wire string) []ReconciledRow {
	all := Reconcile(txs)
	var filtered []ReconciledRow
	balances := make(map[string]decimal.Decimal) // vendor+wire -> balance
	for _, row := range all {
		if row.Item != wire {
			continue
		}
		key := row.Vendor + "\x00" + row.Item
		switch row.Type {
		case TxOut:
			balances[key] = balances[key].Add(row.Qty)
		case TxIn:
			balances[key] = balances[key].Sub(row.Qty)
		}
		row.RunningBalance = balances[key]
		filtered = append(filtered, row)
	}
	return filtered
}

// =============================================================================
// OPEN LOTS - The "wire summary" sidebar
// =============================================================================

// OpenLots reports every lot of the given vendor that still has weight
// outstanding, newest OUT date first. Callers compute age at display time
// via Lot.AgeDays. One reconciliation pass; deductions are replayed against
// each vendor lot to find what remains.
func OpenLots(txs []Transaction, vendor string) []Lot {
	rows := Reconcile(txs)

	drained := make(map[string]decimal.Decimal) // lot id -> total deducted
	for _, row := range rows {
		for _, d := range row.LotDeductions {
			drained[d.LotID] = drained[d.LotID].Add(d.Qty)
		}
	}

	var lots []Lot
	for _, row := range rows {
		if row.Vendor != vendor || row.Type != TxOut {
			continue
		}
		remaining := row.Qty.Sub(drained[row.LotID])
		if !remaining.IsPositive() {
			continue
		}
		status := LotPartial
		if remaining.Equal(row.Qty) {
			status = LotPending
		}
		lots = append(lots, Lot{
			ID:           row.LotID,
			Vendor:       row.Vendor,
			Wire:         row.Item,
			Qty:          row.Qty,
			RemainingQty: remaining,
			OutDate:      row.EffectiveDate(),
			Status:       status,
		})
	}
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].OutDate.After(lots[j].OutDate)
	})
	return lots
}
