/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.Store (transactions, vendors, wire catalogue, payments,
  print statuses) using SQLite. The same patterns apply to PostgreSQL with
  minor dialect changes.

KEY TABLES:
  transactions:  raw OUT/IN movement records (immutable once stored,
                 removable only by stable id)
  vendors:       vendor master records
  vendor_wires:  per-vendor rate table, unique per (vendor, wire, payal)
  wires:         wire catalogue
  wire_payals:   recognized payal labels per wire (+ legacy global price)
  payments:      money paid to vendors
  print_status:  print-audit marks keyed (vendor, page)

NUMERIC STORAGE:
  Decimal columns (qty, price, amounts, rates) are stored as TEXT and
  parsed with shopspring/decimal on read. SQLite REAL would reintroduce
  the floating-point drift the domain rules out.

WAL MODE:
  Opened with WAL and foreign keys on, matching the usual single-writer,
  many-readers deployment.

USAGE:
  store, err := sqlite.New("./data/ledger.db")   // or ":memory:"
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/wiretrade/wire-ledger/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		tx_type TEXT NOT NULL CHECK (tx_type IN ('OUT','IN')),
		vendor TEXT NOT NULL,
		item TEXT NOT NULL,
		payal_type TEXT NOT NULL DEFAULT '',
		qty TEXT NOT NULL,
		price TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_vendor
		ON transactions(vendor);
	CREATE INDEX IF NOT EXISTS idx_transactions_type
		ON transactions(tx_type);
	CREATE INDEX IF NOT EXISTS idx_transactions_vendor_item
		ON transactions(vendor, item);

	CREATE TABLE IF NOT EXISTS vendors (
		name TEXT PRIMARY KEY,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS vendor_wires (
		vendor_name TEXT NOT NULL REFERENCES vendors(name) ON DELETE CASCADE,
		wire_name TEXT NOT NULL,
		payal_type TEXT NOT NULL,
		price_per_kg TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (vendor_name, wire_name, payal_type)
	);

	CREATE TABLE IF NOT EXISTS wires (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS wire_payals (
		wire_name TEXT NOT NULL REFERENCES wires(name) ON DELETE CASCADE,
		payal_type TEXT NOT NULL,
		legacy_price TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (wire_name, payal_type)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		wire_name TEXT NOT NULL DEFAULT '',
		payal_type TEXT NOT NULL DEFAULT 'All',
		amount TEXT NOT NULL,
		pay_date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_payments_vendor
		ON payments(vendor);

	CREATE TABLE IF NOT EXISTS print_status (
		vendor_name TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		printed_at TEXT NOT NULL,
		PRIMARY KEY (vendor_name, page_number)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Store) SaveTransaction(ctx context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, tx_type, vendor, item, payal_type, qty, price, tx_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Vendor, tx.Item, tx.PayalType,
		tx.Qty.String(), tx.Price.String(),
		tx.Date.UTC().Format(time.RFC3339), tx.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, tx_type, vendor, item, payal_type, qty, price, tx_date, created_at
		 FROM transactions ORDER BY created_at`)
}

func (s *Store) ListTransactionsByType(ctx context.Context, t ledger.TxType) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, tx_type, vendor, item, payal_type, qty, price, tx_date, created_at
		 FROM transactions WHERE tx_type = ? ORDER BY created_at`, string(t))
}

func (s *Store) ListTransactionsByVendor(ctx context.Context, vendor string) ([]ledger.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, tx_type, vendor, item, payal_type, qty, price, tx_date, created_at
		 FROM transactions WHERE vendor = ? ORDER BY created_at`, vendor)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res, "transaction "+id)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var tx ledger.Transaction
		var txType, qty, price, date, created string
		if err := rows.Scan(&tx.ID, &txType, &tx.Vendor, &tx.Item, &tx.PayalType,
			&qty, &price, &date, &created); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Type = ledger.TxType(txType)
		if tx.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("bad qty %q on transaction %s: %w", qty, tx.ID, err)
		}
		if tx.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("bad price %q on transaction %s: %w", price, tx.ID, err)
		}
		if tx.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("bad date %q on transaction %s: %w", date, tx.ID, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("bad created_at %q on transaction %s: %w", created, tx.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// VENDORS
// =============================================================================

// SaveVendor upserts the vendor record and replaces its rate table
// atomically.
func (s *Store) SaveVendor(ctx context.Context, v ledger.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO vendors (name, phone, address) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET phone = excluded.phone, address = excluded.address`,
		v.Name, v.Phone, v.Address)
	if err != nil {
		return fmt.Errorf("failed to save vendor: %w", err)
	}

	if _, err = dbTx.ExecContext(ctx, `DELETE FROM vendor_wires WHERE vendor_name = ?`, v.Name); err != nil {
		return fmt.Errorf("failed to clear vendor wires: %w", err)
	}
	for i, aw := range v.AssignedWires {
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO vendor_wires (vendor_name, wire_name, payal_type, price_per_kg, position)
			VALUES (?, ?, ?, ?, ?)`,
			v.Name, aw.WireName, aw.PayalType, aw.PricePerKg.String(), i)
		if err != nil {
			return fmt.Errorf("failed to save wire assignment: %w", err)
		}
	}

	return dbTx.Commit()
}

func (s *Store) GetVendor(ctx context.Context, name string) (*ledger.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v ledger.Vendor
	err := s.db.QueryRowContext(ctx,
		`SELECT name, phone, address FROM vendors WHERE name = ?`, name).
		Scan(&v.Name, &v.Phone, &v.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vendor %s: %w", name, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	if v.AssignedWires, err = s.loadAssignments(ctx, name); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]ledger.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name, phone, address FROM vendors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []ledger.Vendor
	for rows.Next() {
		var v ledger.Vendor
		if err := rows.Scan(&v.Name, &v.Phone, &v.Address); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range vendors {
		if vendors[i].AssignedWires, err = s.loadAssignments(ctx, vendors[i].Name); err != nil {
			return nil, err
		}
	}
	return vendors, nil
}

func (s *Store) DeleteVendor(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM vendors WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}
	return requireAffected(res, "vendor "+name)
}

func (s *Store) loadAssignments(ctx context.Context, vendor string) ([]ledger.WireAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wire_name, payal_type, price_per_kg
		FROM vendor_wires WHERE vendor_name = ? ORDER BY position`, vendor)
	if err != nil {
		return nil, fmt.Errorf("failed to load wire assignments: %w", err)
	}
	defer rows.Close()

	var assignments []ledger.WireAssignment
	for rows.Next() {
		var aw ledger.WireAssignment
		var rate string
		if err := rows.Scan(&aw.WireName, &aw.PayalType, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan wire assignment: %w", err)
		}
		if aw.PricePerKg, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("bad rate %q for vendor %s: %w", rate, vendor, err)
		}
		assignments = append(assignments, aw)
	}
	return assignments, rows.Err()
}

// =============================================================================
// WIRE CATALOGUE
// =============================================================================

func (s *Store) GetPriceChart(ctx context.Context) (ledger.PriceChart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chart := make(ledger.PriceChart)

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM wires`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wires: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan wire: %w", err)
		}
		chart[name] = make(map[string]decimal.Decimal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, `SELECT wire_name, payal_type, legacy_price FROM wire_payals`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payal types: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var wire, payal, price string
		if err := prows.Scan(&wire, &payal, &price); err != nil {
			return nil, fmt.Errorf("failed to scan payal type: %w", err)
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("bad legacy price %q for %s/%s: %w", price, wire, payal, err)
		}
		if chart[wire] == nil {
			chart[wire] = make(map[string]decimal.Decimal)
		}
		chart[wire][payal] = d
	}
	return chart, prows.Err()
}

func (s *Store) SaveWire(ctx context.Context, wireName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO wires (name) VALUES (?)`, wireName)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("wire %s: %w", wireName, ledger.ErrDuplicate)
		}
		return fmt.Errorf("failed to save wire: %w", err)
	}
	return nil
}

func (s *Store) DeleteWire(ctx context.Context, wireName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM wires WHERE name = ?`, wireName)
	if err != nil {
		return fmt.Errorf("failed to delete wire: %w", err)
	}
	return requireAffected(res, "wire "+wireName)
}

func (s *Store) SavePayalType(ctx context.Context, wireName, payalType string, legacyPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wires WHERE name = ?`, wireName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check wire: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("wire %s: %w", wireName, ledger.ErrNotFound)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wire_payals (wire_name, payal_type, legacy_price) VALUES (?, ?, ?)
		ON CONFLICT(wire_name, payal_type) DO UPDATE SET legacy_price = excluded.legacy_price`,
		wireName, payalType, legacyPrice.String())
	if err != nil {
		return fmt.Errorf("failed to save payal type: %w", err)
	}
	return nil
}

func (s *Store) DeletePayalType(ctx context.Context, wireName, payalType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wire_payals WHERE wire_name = ? AND payal_type = ?`, wireName, payalType)
	if err != nil {
		return fmt.Errorf("failed to delete payal type: %w", err)
	}
	return requireAffected(res, "payal "+payalType+" on "+wireName)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) SavePayment(ctx context.Context, p *ledger.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.PayalType == "" {
		p.PayalType = ledger.PayalAll
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, vendor, wire_name, payal_type, amount, pay_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Vendor, p.WireName, p.PayalType, p.Amount.String(),
		p.Date.UTC().Format(time.RFC3339), p.Notes)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context) ([]ledger.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT id, vendor, wire_name, payal_type, amount, pay_date, notes
		 FROM payments ORDER BY pay_date`)
}

func (s *Store) ListPaymentsByVendor(ctx context.Context, vendor string) ([]ledger.Payment, error) {
	return s.queryPayments(ctx,
		`SELECT id, vendor, wire_name, payal_type, amount, pay_date, notes
		 FROM payments WHERE vendor = ? ORDER BY pay_date`, vendor)
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireAffected(res, "payment "+id)
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]ledger.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []ledger.Payment
	for rows.Next() {
		var p ledger.Payment
		var amount, date string
		if err := rows.Scan(&p.ID, &p.Vendor, &p.WireName, &p.PayalType, &amount, &date, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount %q on payment %s: %w", amount, p.ID, err)
		}
		if p.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("bad date %q on payment %s: %w", date, p.ID, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// PRINT STATUS
// =============================================================================

func (s *Store) MarkPagePrinted(ctx context.Context, vendor string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO print_status (vendor_name, page_number, printed_at) VALUES (?, ?, ?)
		ON CONFLICT(vendor_name, page_number) DO UPDATE SET printed_at = excluded.printed_at`,
		vendor, page, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to mark page printed: %w", err)
	}
	return nil
}

func (s *Store) ListPrintStatuses(ctx context.Context) ([]ledger.PrintStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor_name, page_number, printed_at FROM print_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to list print statuses: %w", err)
	}
	defer rows.Close()

	var statuses []ledger.PrintStatus
	for rows.Next() {
		var ps ledger.PrintStatus
		var printed string
		if err := rows.Scan(&ps.VendorName, &ps.PageNumber, &printed); err != nil {
			return nil, fmt.Errorf("failed to scan print status: %w", err)
		}
		if ps.PrintedAt, err = time.Parse(time.RFC3339, printed); err != nil {
			return nil, fmt.Errorf("bad printed_at %q: %w", printed, err)
		}
		statuses = append(statuses, ps)
	}
	return statuses, rows.Err()
}

func (s *Store) ClearPagePrinted(ctx context.Context, vendor string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM print_status WHERE vendor_name = ? AND page_number = ?`, vendor, page)
	if err != nil {
		return fmt.Errorf("failed to clear print status: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("print status %s page %d", vendor, page))
}

func (s *Store) ClearAllPrinted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM print_status`); err != nil {
		return fmt.Errorf("failed to clear print statuses: %w", err)
	}
	return nil
}

// =============================================================================
// RESET
// =============================================================================

// Reset wipes all stored records.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"transactions", "vendor_wires", "vendors",
		"wire_payals", "wires", "payments", "print_status",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// requireAffected converts a zero-row DELETE into ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ledger.ErrNotFound)
	}
	return nil
}
