package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretrade/wire-ledger/ledger"
)

func TestAvailability_OnlyPositiveTuples(t *testing.T) {
	// GIVEN: One pair fully returned, one pair still out
	// WHEN: Computing availability
	// THEN: Only the open pair is reported

	txs := []ledger.Transaction{
		outTx("t1", "Acme Exports", "22mm", "8", day(1)),
		inTx("t2", "Acme Exports", "22mm", "Silver", "8", day(2)),
		outTx("t3", "Acme Exports", "18mm", "5", day(3)),
	}

	items := ledger.Availability(txs)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Exports", items[0].Vendor)
	assert.Equal(t, "18mm", items[0].Item)
	assert.True(t, items[0].Available.Equal(dec("5")))
}

func TestAvailability_SortedByVendorThenItem(t *testing.T) {
	txs := []ledger.Transaction{
		outTx("t1", "Beta Traders", "22mm", "1", day(1)),
		outTx("t2", "Acme Exports", "30mm", "1", day(1)),
		outTx("t3", "Acme Exports", "18mm", "1", day(1)),
	}

	items := ledger.Availability(txs)
	require.Len(t, items, 3)
	assert.Equal(t, "18mm", items[0].Item)
	assert.Equal(t, "30mm", items[1].Item)
	assert.Equal(t, "Beta Traders", items[2].Vendor)
}

func TestAvailability_NetsAcrossManyTransactions(t *testing.T) {
	// GIVEN: Repeated OUT and IN for the same pair
	// WHEN: Computing availability
	// THEN: The pair nets to a single tuple

	txs := []ledger.Transaction{
		outTx("t1", "Acme Exports", "22mm", "10", day(1)),
		inTx("t2", "Acme Exports", "22mm", "Silver", "3", day(2)),
		outTx("t3", "Acme Exports", "22mm", "4", day(3)),
		inTx("t4", "Acme Exports", "22mm", "Gold", "5.5", day(4)),
	}

	items := ledger.Availability(txs)
	require.Len(t, items, 1)
	assert.True(t, items[0].TotalOut.Equal(dec("14")))
	assert.True(t, items[0].TotalIn.Equal(dec("8.5")))
	assert.True(t, items[0].Available.Equal(dec("5.5")))
}

func TestCheckAvailable_WithinBalance(t *testing.T) {
	txs := []ledger.Transaction{
		outTx("t1", "Acme Exports", "22mm", "10", day(1)),
	}
	assert.NoError(t, ledger.CheckAvailable(txs, "Acme Exports", "22mm", dec("10")))
	assert.NoError(t, ledger.CheckAvailable(txs, "Acme Exports", "22mm", dec("2.5")))
}

func TestCheckAvailable_ExceedsBalance(t *testing.T) {
	// GIVEN: 10kg out
	// WHEN: Trying to import 11kg
	// THEN: Typed error carrying the available weight

	txs := []ledger.Transaction{
		outTx("t1", "Acme Exports", "22mm", "10", day(1)),
	}

	err := ledger.CheckAvailable(txs, "Acme Exports", "22mm", dec("11"))
	require.Error(t, err)

	var invErr *ledger.InsufficientInventoryError
	require.ErrorAs(t, err, &invErr)
	assert.True(t, invErr.Available.Equal(dec("10")))
	assert.True(t, invErr.Requested.Equal(dec("11")))
	assert.ErrorIs(t, err, ledger.ErrInsufficientInventory)
}

func TestCheckAvailable_NeverExported(t *testing.T) {
	// GIVEN: No OUT for the pair
	// WHEN: Trying to import
	// THEN: Rejected with zero available, not a missing-tuple panic

	err := ledger.CheckAvailable(nil, "Acme Exports", "22mm", dec("1"))
	require.Error(t, err)

	var invErr *ledger.InsufficientInventoryError
	require.ErrorAs(t, err, &invErr)
	assert.True(t, invErr.Available.IsZero())
}
