// Package store provides an in-memory Store implementation for tests and
// development runs. Production uses store/sqlite.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wiretrade/wire-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions []ledger.Transaction
	vendors      map[string]ledger.Vendor
	chart        ledger.PriceChart
	payments     []ledger.Payment
	printed      map[string]ledger.PrintStatus // "vendor\x00page"

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		vendors: make(map[string]ledger.Vendor),
		chart:   make(ledger.PriceChart),
		printed: make(map[string]ledger.PrintStatus),
		now:     time.Now,
	}
}

// SetClock overrides the store's clock. Test hook.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (m *Memory) SaveTransaction(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = m.now()
	}
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Transaction, len(m.transactions))
	copy(result, m.transactions)
	return result, nil
}

func (m *Memory) ListTransactionsByType(_ context.Context, t ledger.TxType) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.transactions {
		if tx.Type == t {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) ListTransactionsByVendor(_ context.Context, vendor string) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.transactions {
		if tx.Vendor == vendor {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.transactions {
		if tx.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, ledger.ErrNotFound)
}

// =============================================================================
// VENDORS
// =============================================================================

func (m *Memory) SaveVendor(_ context.Context, v ledger.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vendors[v.Name] = cloneVendor(v)
	return nil
}

func (m *Memory) GetVendor(_ context.Context, name string) (*ledger.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vendors[name]
	if !ok {
		return nil, fmt.Errorf("vendor %s: %w", name, ledger.ErrNotFound)
	}
	out := cloneVendor(v)
	return &out, nil
}

func (m *Memory) ListVendors(_ context.Context) ([]ledger.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		result = append(result, cloneVendor(v))
	}
	sortVendors(result)
	return result, nil
}

func (m *Memory) DeleteVendor(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vendors[name]; !ok {
		return fmt.Errorf("vendor %s: %w", name, ledger.ErrNotFound)
	}
	delete(m.vendors, name)
	return nil
}

func cloneVendor(v ledger.Vendor) ledger.Vendor {
	out := v
	out.AssignedWires = make([]ledger.WireAssignment, len(v.AssignedWires))
	copy(out.AssignedWires, v.AssignedWires)
	return out
}

func sortVendors(vs []ledger.Vendor) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Name < vs[j].Name })
}

// =============================================================================
// WIRE CATALOGUE
// =============================================================================

func (m *Memory) GetPriceChart(_ context.Context) (ledger.PriceChart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chart := make(ledger.PriceChart, len(m.chart))
	for wire, payals := range m.chart {
		chart[wire] = make(map[string]decimal.Decimal, len(payals))
		for payal, price := range payals {
			chart[wire][payal] = price
		}
	}
	return chart, nil
}

func (m *Memory) SaveWire(_ context.Context, wireName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chart[wireName]; ok {
		return fmt.Errorf("wire %s: %w", wireName, ledger.ErrDuplicate)
	}
	m.chart[wireName] = make(map[string]decimal.Decimal)
	return nil
}

func (m *Memory) DeleteWire(_ context.Context, wireName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chart[wireName]; !ok {
		return fmt.Errorf("wire %s: %w", wireName, ledger.ErrNotFound)
	}
	delete(m.chart, wireName)
	return nil
}

func (m *Memory) SavePayalType(_ context.Context, wireName, payalType string, legacyPrice decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payals, ok := m.chart[wireName]
	if !ok {
		return fmt.Errorf("wire %s: %w", wireName, ledger.ErrNotFound)
	}
	payals[payalType] = legacyPrice
	return nil
}

func (m *Memory) DeletePayalType(_ context.Context, wireName, payalType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	payals, ok := m.chart[wireName]
	if !ok {
		return fmt.Errorf("wire %s: %w", wireName, ledger.ErrNotFound)
	}
	if _, ok := payals[payalType]; !ok {
		return fmt.Errorf("payal %s on %s: %w", payalType, wireName, ledger.ErrNotFound)
	}
	delete(payals, payalType)
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) SavePayment(_ context.Context, p *ledger.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = m.now()
	}
	m.payments = append(m.payments, *p)
	return nil
}

func (m *Memory) ListPayments(_ context.Context) ([]ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Payment, len(m.payments))
	copy(result, m.payments)
	return result, nil
}

func (m *Memory) ListPaymentsByVendor(_ context.Context, vendor string) ([]ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Payment
	for _, p := range m.payments {
		if p.Vendor == vendor {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) DeletePayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.payments {
		if p.ID == id {
			m.payments = append(m.payments[:i], m.payments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("payment %s: %w", id, ledger.ErrNotFound)
}

// =============================================================================
// PRINT STATUS
// =============================================================================

func printKey(vendor string, page int) string {
	return fmt.Sprintf("%s\x00%d", vendor, page)
}

func (m *Memory) MarkPagePrinted(_ context.Context, vendor string, page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.printed[printKey(vendor, page)] = ledger.PrintStatus{
		VendorName: vendor,
		PageNumber: page,
		PrintedAt:  m.now(),
	}
	return nil
}

func (m *Memory) ListPrintStatuses(_ context.Context) ([]ledger.PrintStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.PrintStatus, 0, len(m.printed))
	for _, ps := range m.printed {
		result = append(result, ps)
	}
	return result, nil
}

func (m *Memory) ClearPagePrinted(_ context.Context, vendor string, page int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := printKey(vendor, page)
	if _, ok := m.printed[k]; !ok {
		return fmt.Errorf("print status %s page %d: %w", vendor, page, ledger.ErrNotFound)
	}
	delete(m.printed, k)
	return nil
}

func (m *Memory) ClearAllPrinted(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.printed = make(map[string]ledger.PrintStatus)
	return nil
}

// =============================================================================
// RESET
// =============================================================================

// Reset wipes all stored records.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = nil
	m.vendors = make(map[string]ledger.Vendor)
	m.chart = make(ledger.PriceChart)
	m.payments = nil
	m.printed = make(map[string]ledger.PrintStatus)
	return nil
}
