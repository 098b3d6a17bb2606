/*
store.go - Persistence interface for the ledger's collaborator

PURPOSE:
  The core computations run over in-memory snapshots fetched from an
  external persistence service. This interface is the shape of that
  collaborator. Implementations:

  - ledger/store.Memory:  mutex-guarded maps, for tests and dev runs
  - store/sqlite.Store:   SQLite-backed production store

DELETION:
  Deletes are by stable id (or by key for keyed records), never by array
  position. Index-based deletion is fragile under concurrent refresh and
  does not exist in this interface.

ERRORS:
  Lookups for missing records return ErrNotFound; key collisions on create
  return ErrDuplicate. Transport-level failures wrap ErrStoreUnavailable.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransactionStore persists raw OUT/IN transaction records.
type TransactionStore interface {
	// SaveTransaction persists a transaction, assigning ID and CreatedAt
	// if unset. Transactions are immutable once stored.
	SaveTransaction(ctx context.Context, tx *Transaction) error

	// ListTransactions returns all transactions in storage order.
	// Reconciliation ordering is the reconciler's job, not the store's.
	ListTransactions(ctx context.Context) ([]Transaction, error)

	// ListTransactionsByType returns all OUT or all IN transactions.
	ListTransactionsByType(ctx context.Context, t TxType) ([]Transaction, error)

	// ListTransactionsByVendor returns one vendor's transactions.
	ListTransactionsByVendor(ctx context.Context, vendor string) ([]Transaction, error)

	// DeleteTransaction removes a transaction by its stable id.
	DeleteTransaction(ctx context.Context, id string) error
}

// VendorStore persists vendor records with their wire-assignment tables.
type VendorStore interface {
	SaveVendor(ctx context.Context, v Vendor) error
	GetVendor(ctx context.Context, name string) (*Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	DeleteVendor(ctx context.Context, name string) error
}

// CatalogueStore persists the wire/payal-type catalogue.
type CatalogueStore interface {
	// GetPriceChart returns the full wire -> payal -> legacy-price mapping.
	GetPriceChart(ctx context.Context) (PriceChart, error)

	// SaveWire registers a wire name with no payal types yet.
	SaveWire(ctx context.Context, wireName string) error

	// DeleteWire removes a wire and its payal labels.
	DeleteWire(ctx context.Context, wireName string) error

	// SavePayalType adds or updates a payal label (and its legacy price)
	// on a wire.
	SavePayalType(ctx context.Context, wireName, payalType string, legacyPrice decimal.Decimal) error

	// DeletePayalType removes one payal label from a wire.
	DeletePayalType(ctx context.Context, wireName, payalType string) error
}

// PaymentStore persists payment records.
type PaymentStore interface {
	SavePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context) ([]Payment, error)
	ListPaymentsByVendor(ctx context.Context, vendor string) ([]Payment, error)
	DeletePayment(ctx context.Context, id string) error
}

// PrintStatusStore persists print-audit marks for paginated ledger pages.
type PrintStatusStore interface {
	MarkPagePrinted(ctx context.Context, vendor string, page int) error
	ListPrintStatuses(ctx context.Context) ([]PrintStatus, error)
	ClearPagePrinted(ctx context.Context, vendor string, page int) error
	ClearAllPrinted(ctx context.Context) error
}

// Store is the full collaborator surface the HTTP layer is wired against.
type Store interface {
	TransactionStore
	VendorStore
	CatalogueStore
	PaymentStore
	PrintStatusStore

	// Reset wipes all stored records. Used by the demo scenario loader;
	// never called in normal operation.
	Reset(ctx context.Context) error
}
