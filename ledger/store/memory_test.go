package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretrade/wire-ledger/ledger"
	"github.com/wiretrade/wire-ledger/ledger/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMemory_SaveTransaction_AssignsIDAndCreatedAt(t *testing.T) {
	m := store.NewMemory()
	fixed := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return fixed })
	ctx := context.Background()

	tx := ledger.Transaction{
		Type:   ledger.TxOut,
		Vendor: "Acme Exports",
		Item:   "22mm",
		Qty:    dec("5"),
	}
	require.NoError(t, m.SaveTransaction(ctx, &tx))
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, fixed, tx.CreatedAt)

	listed, err := m.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tx.ID, listed[0].ID)
}

func TestMemory_TransactionFilters(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, tx := range []ledger.Transaction{
		{ID: "o1", Type: ledger.TxOut, Vendor: "Acme Exports", Item: "22mm", Qty: dec("5")},
		{ID: "i1", Type: ledger.TxIn, Vendor: "Acme Exports", Item: "22mm", PayalType: "Silver", Qty: dec("2")},
		{ID: "o2", Type: ledger.TxOut, Vendor: "Beta Traders", Item: "18mm", Qty: dec("7")},
	} {
		tx := tx
		require.NoError(t, m.SaveTransaction(ctx, &tx))
	}

	outs, err := m.ListTransactionsByType(ctx, ledger.TxOut)
	require.NoError(t, err)
	assert.Len(t, outs, 2)

	acme, err := m.ListTransactionsByVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	assert.Len(t, acme, 2)
}

func TestMemory_DeleteTransaction_NotFound(t *testing.T) {
	m := store.NewMemory()
	err := m.DeleteTransaction(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemory_Vendors_RoundTripAndIsolation(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	v := ledger.Vendor{
		Name: "Acme Exports",
		AssignedWires: []ledger.WireAssignment{
			{WireName: "22mm", PayalType: "Silver", PricePerKg: dec("100")},
		},
	}
	require.NoError(t, m.SaveVendor(ctx, v))

	got, err := m.GetVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	require.Len(t, got.AssignedWires, 1)

	// Mutating the returned copy must not affect the stored record
	got.AssignedWires[0].PricePerKg = dec("999")
	again, err := m.GetVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	assert.True(t, again.AssignedWires[0].PricePerKg.Equal(dec("100")))

	_, err = m.GetVendor(ctx, "Ghost")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemory_ListVendors_Sorted(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveVendor(ctx, ledger.Vendor{Name: "Zeta"}))
	require.NoError(t, m.SaveVendor(ctx, ledger.Vendor{Name: "Acme"}))

	vendors, err := m.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "Acme", vendors[0].Name)
	assert.Equal(t, "Zeta", vendors[1].Name)
}

func TestMemory_WireCatalogue(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveWire(ctx, "22mm"))
	assert.ErrorIs(t, m.SaveWire(ctx, "22mm"), ledger.ErrDuplicate)

	require.NoError(t, m.SavePayalType(ctx, "22mm", "Silver", dec("90")))
	assert.ErrorIs(t, m.SavePayalType(ctx, "99mm", "Silver", dec("90")), ledger.ErrNotFound)

	chart, err := m.GetPriceChart(ctx)
	require.NoError(t, err)
	assert.True(t, chart.HasPayal("22mm", "Silver"))

	// Returned chart is a copy
	chart["22mm"]["Gold"] = dec("1")
	fresh, err := m.GetPriceChart(ctx)
	require.NoError(t, err)
	assert.False(t, fresh.HasPayal("22mm", "Gold"))

	require.NoError(t, m.DeletePayalType(ctx, "22mm", "Silver"))
	assert.ErrorIs(t, m.DeletePayalType(ctx, "22mm", "Silver"), ledger.ErrNotFound)

	require.NoError(t, m.DeleteWire(ctx, "22mm"))
	assert.ErrorIs(t, m.DeleteWire(ctx, "22mm"), ledger.ErrNotFound)
}

func TestMemory_Payments(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	p := ledger.Payment{Vendor: "Acme Exports", PayalType: ledger.PayalAll, Amount: dec("200")}
	require.NoError(t, m.SavePayment(ctx, &p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.Date.IsZero())

	acme, err := m.ListPaymentsByVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	assert.Len(t, acme, 1)

	require.NoError(t, m.DeletePayment(ctx, p.ID))
	assert.ErrorIs(t, m.DeletePayment(ctx, p.ID), ledger.ErrNotFound)
}

func TestMemory_PrintStatus(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.MarkPagePrinted(ctx, "Acme Exports", 1))
	require.NoError(t, m.MarkPagePrinted(ctx, "Acme Exports", 2))

	// Re-marking the same page is an upsert, not a duplicate
	require.NoError(t, m.MarkPagePrinted(ctx, "Acme Exports", 1))

	statuses, err := m.ListPrintStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	require.NoError(t, m.ClearPagePrinted(ctx, "Acme Exports", 1))
	assert.ErrorIs(t, m.ClearPagePrinted(ctx, "Acme Exports", 1), ledger.ErrNotFound)

	require.NoError(t, m.ClearAllPrinted(ctx))
	statuses, err = m.ListPrintStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestMemory_Reset(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveWire(ctx, "22mm"))
	require.NoError(t, m.SaveVendor(ctx, ledger.Vendor{Name: "Acme Exports"}))
	tx := ledger.Transaction{Type: ledger.TxOut, Vendor: "Acme Exports", Item: "22mm", Qty: dec("5")}
	require.NoError(t, m.SaveTransaction(ctx, &tx))
	require.NoError(t, m.MarkPagePrinted(ctx, "Acme Exports", 1))

	require.NoError(t, m.Reset(ctx))

	txs, err := m.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	vendors, err := m.ListVendors(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	chart, err := m.GetPriceChart(ctx)
	require.NoError(t, err)
	assert.Empty(t, chart)

	statuses, err := m.ListPrintStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
