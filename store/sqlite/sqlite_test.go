package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretrade/wire-ledger/ledger"
	"github.com/wiretrade/wire-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLite_Transaction_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := ledger.Transaction{
		Type:      ledger.TxIn,
		Vendor:    "Acme Exports",
		Item:      "22mm",
		PayalType: "Silver",
		Qty:       dec("12.375"),
		Price:     dec("40.50"),
		Date:      time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTransaction(ctx, &tx))
	assert.NotEmpty(t, tx.ID)

	listed, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	got := listed[0]
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, ledger.TxIn, got.Type)
	assert.Equal(t, "Silver", got.PayalType)
	// Decimals survive storage exactly, no float drift
	assert.True(t, got.Qty.Equal(dec("12.375")))
	assert.True(t, got.Price.Equal(dec("40.50")))
	assert.True(t, got.Date.Equal(tx.Date))
	assert.True(t, got.CreatedAt.Equal(tx.CreatedAt))
}

func TestSQLite_Transaction_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		typ    ledger.TxType
		vendor string
	}{
		{ledger.TxOut, "Acme Exports"},
		{ledger.TxIn, "Acme Exports"},
		{ledger.TxOut, "Beta Traders"},
	} {
		tx := ledger.Transaction{
			Type:      spec.typ,
			Vendor:    spec.vendor,
			Item:      "22mm",
			PayalType: "Silver",
			Qty:       dec("1"),
			Price:     dec("0"),
			Date:      base,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SaveTransaction(ctx, &tx))
	}

	outs, err := store.ListTransactionsByType(ctx, ledger.TxOut)
	require.NoError(t, err)
	assert.Len(t, outs, 2)

	acme, err := store.ListTransactionsByVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	assert.Len(t, acme, 2)
}

func TestSQLite_DeleteTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme Exports", Item: "22mm",
		Qty: dec("5"), Price: dec("0"),
		Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTransaction(ctx, &tx))

	require.NoError(t, store.DeleteTransaction(ctx, tx.ID))
	assert.ErrorIs(t, store.DeleteTransaction(ctx, tx.ID), ledger.ErrNotFound)

	listed, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// =============================================================================
// VENDORS
// =============================================================================

func TestSQLite_Vendor_UpsertReplacesRateTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := ledger.Vendor{
		Name:    "Acme Exports",
		Phone:   "555-0101",
		Address: "12 Harbor Rd",
		AssignedWires: []ledger.WireAssignment{
			{WireName: "22mm", PayalType: "Silver", PricePerKg: dec("100")},
			{WireName: "22mm", PayalType: "Gold", PricePerKg: dec("150")},
		},
	}
	require.NoError(t, store.SaveVendor(ctx, v))

	// Second save with a trimmed rate table replaces, not appends
	v.AssignedWires = v.AssignedWires[:1]
	v.AssignedWires[0].PricePerKg = dec("110")
	require.NoError(t, store.SaveVendor(ctx, v))

	got, err := store.GetVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	assert.Equal(t, "555-0101", got.Phone)
	require.Len(t, got.AssignedWires, 1)
	assert.True(t, got.AssignedWires[0].PricePerKg.Equal(dec("110")))
}

func TestSQLite_Vendor_AssignmentOrderPreserved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := ledger.Vendor{
		Name: "Acme Exports",
		AssignedWires: []ledger.WireAssignment{
			{WireName: "30mm", PayalType: "Silver", PricePerKg: dec("1")},
			{WireName: "18mm", PayalType: "Silver", PricePerKg: dec("2")},
			{WireName: "22mm", PayalType: "Gold", PricePerKg: dec("3")},
		},
	}
	require.NoError(t, store.SaveVendor(ctx, v))

	got, err := store.GetVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	require.Len(t, got.AssignedWires, 3)
	assert.Equal(t, "30mm", got.AssignedWires[0].WireName)
	assert.Equal(t, "18mm", got.AssignedWires[1].WireName)
	assert.Equal(t, "22mm", got.AssignedWires[2].WireName)
}

func TestSQLite_Vendor_NotFoundAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetVendor(ctx, "Ghost")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, store.SaveVendor(ctx, ledger.Vendor{
		Name: "Acme Exports",
		AssignedWires: []ledger.WireAssignment{
			{WireName: "22mm", PayalType: "Silver", PricePerKg: dec("100")},
		},
	}))
	require.NoError(t, store.DeleteVendor(ctx, "Acme Exports"))
	assert.ErrorIs(t, store.DeleteVendor(ctx, "Acme Exports"), ledger.ErrNotFound)

	// Cascade removed the rate table rows too
	vendors, err := store.ListVendors(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)
}

// =============================================================================
// WIRE CATALOGUE
// =============================================================================

func TestSQLite_WireCatalogue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWire(ctx, "22mm"))
	assert.ErrorIs(t, store.SaveWire(ctx, "22mm"), ledger.ErrDuplicate)

	require.NoError(t, store.SavePayalType(ctx, "22mm", "Silver", dec("90")))
	require.NoError(t, store.SavePayalType(ctx, "22mm", "Silver", dec("95"))) // upsert
	assert.ErrorIs(t, store.SavePayalType(ctx, "99mm", "Silver", dec("1")), ledger.ErrNotFound)

	chart, err := store.GetPriceChart(ctx)
	require.NoError(t, err)
	require.True(t, chart.HasPayal("22mm", "Silver"))
	assert.True(t, chart["22mm"]["Silver"].Equal(dec("95")))

	require.NoError(t, store.DeletePayalType(ctx, "22mm", "Silver"))
	assert.ErrorIs(t, store.DeletePayalType(ctx, "22mm", "Silver"), ledger.ErrNotFound)

	// A wire with no payals still shows in the chart
	chart, err = store.GetPriceChart(ctx)
	require.NoError(t, err)
	_, ok := chart["22mm"]
	assert.True(t, ok)

	require.NoError(t, store.DeleteWire(ctx, "22mm"))
	assert.ErrorIs(t, store.DeleteWire(ctx, "22mm"), ledger.ErrNotFound)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestSQLite_Payments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := ledger.Payment{
		Vendor: "Acme Exports",
		Amount: dec("450.25"),
		Date:   time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		Notes:  "February settlement",
	}
	require.NoError(t, store.SavePayment(ctx, &p))
	assert.NotEmpty(t, p.ID)
	// Empty payal defaults to the vendor-level marker
	assert.Equal(t, ledger.PayalAll, p.PayalType)

	listed, err := store.ListPaymentsByVendor(ctx, "Acme Exports")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Amount.Equal(dec("450.25")))
	assert.Equal(t, "February settlement", listed[0].Notes)

	require.NoError(t, store.DeletePayment(ctx, p.ID))
	assert.ErrorIs(t, store.DeletePayment(ctx, p.ID), ledger.ErrNotFound)
}

// =============================================================================
// PRINT STATUS
// =============================================================================

func TestSQLite_PrintStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPagePrinted(ctx, "Acme Exports", 1))
	require.NoError(t, store.MarkPagePrinted(ctx, "Acme Exports", 2))
	require.NoError(t, store.MarkPagePrinted(ctx, "Acme Exports", 1)) // upsert

	statuses, err := store.ListPrintStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	require.NoError(t, store.ClearPagePrinted(ctx, "Acme Exports", 2))
	assert.ErrorIs(t, store.ClearPagePrinted(ctx, "Acme Exports", 2), ledger.ErrNotFound)

	require.NoError(t, store.ClearAllPrinted(ctx))
	statuses, err = store.ListPrintStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestSQLite_Reset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveWire(ctx, "22mm"))
	require.NoError(t, s.SaveVendor(ctx, ledger.Vendor{Name: "Acme Exports"}))
	tx := ledger.Transaction{Type: ledger.TxOut, Vendor: "Acme Exports", Item: "22mm", Qty: dec("5")}
	require.NoError(t, s.SaveTransaction(ctx, &tx))

	require.NoError(t, s.Reset(ctx))

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	vendors, err := s.ListVendors(ctx)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	chart, err := s.GetPriceChart(ctx)
	require.NoError(t, err)
	assert.Empty(t, chart)
}
