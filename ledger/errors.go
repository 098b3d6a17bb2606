/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All error types in one place. Callers branch with errors.Is/errors.As;
  the structured types carry enough context (vendor, item, transaction id)
  to render a precise user-facing message.

ERROR CATEGORIES:
  1. Validation errors  - malformed transactions/vendors/payments, rejected
                          at ingestion before they reach the core
  2. Reference errors   - a transaction names a vendor or item that does
                          not exist in the catalogue
  3. Inventory errors   - an IN request exceeds what is available
  4. Payment errors     - a payment exceeds the outstanding balance
  5. Store errors       - the persistence collaborator failed to respond
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTransaction is the root of all ingestion validation failures.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrVendorNotFound is returned when a transaction or payment references
	// a vendor not present in the store.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrItemNotFound is returned when a transaction references a wire not
	// present in the catalogue.
	ErrItemNotFound = errors.New("wire item not found")

	// ErrUnknownPayalType is returned when an IN transaction carries a payal
	// label the wire's catalogue does not recognize.
	ErrUnknownPayalType = errors.New("unknown payal type")

	// ErrInsufficientInventory is returned when a requested IN weight exceeds
	// the computed availability for that vendor+item.
	ErrInsufficientInventory = errors.New("insufficient inventory")

	// ErrPaymentExceedsBalance is returned when a proposed payment is larger
	// than the vendor's live remaining balance.
	ErrPaymentExceedsBalance = errors.New("payment exceeds remaining balance")

	// ErrStoreUnavailable is returned when the persistence collaborator
	// failed to respond. The in-flight action aborts; no automatic retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is the generic missing-record error for store lookups.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when creating a record whose key already
	// exists (vendor name, wire name, wire+payal assignment).
	ErrDuplicate = errors.New("already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a malformed or missing required field on a
// transaction, vendor, or payment. Rejected immediately, never partially
// applied.
type ValidationError struct {
	Field   string
	Message string
	TxID    string // set when the failure is tied to a specific transaction
}

func (e *ValidationError) Error() string {
	if e.TxID != "" {
		return fmt.Sprintf("validation failed on %s: %s (tx: %s)", e.Field, e.Message, e.TxID)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTransaction }

// ReferenceError describes a transaction that names a vendor or item not
// present in the catalogue. The surrounding system decides whether to
// prompt creation of the missing resource or abort.
type ReferenceError struct {
	Kind   string // "vendor" or "item"
	Name   string
	Vendor string // set for item references, to locate the failing row
	TxID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q referenced by transaction %s", e.Kind, e.Name, e.TxID)
}

func (e *ReferenceError) Unwrap() error {
	if e.Kind == "vendor" {
		return ErrVendorNotFound
	}
	return ErrItemNotFound
}

// InsufficientInventoryError reports an IN request that exceeds the
// vendor+item availability.
type InsufficientInventoryError struct {
	Vendor    string
	Item      string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("only %s kg of %q from %q available, requested %s kg",
		e.Available, e.Item, e.Vendor, e.Requested)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

// PaymentExceedsBalanceError reports a payment larger than the vendor's
// live remaining balance.
type PaymentExceedsBalanceError struct {
	Vendor    string
	Payable   decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *PaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment %s exceeds remaining balance %s for vendor %q (payable %s, paid %s)",
		e.Requested.StringFixed(2), e.Remaining.StringFixed(2), e.Vendor,
		e.Payable.StringFixed(2), e.Paid.StringFixed(2))
}

func (e *PaymentExceedsBalanceError) Unwrap() error { return ErrPaymentExceedsBalance }
