/*
monitor_test.go - Tests for the overdue-lot monitor

Tests for:
- Scan flags only lots at or past the age threshold
- Drained lots are never flagged
- The overdue endpoint serves the scan result
*/
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretrade/wire-ledger/ledger"
	"github.com/wiretrade/wire-ledger/ledger/store"
)

func TestOverdueMonitor_Scan(t *testing.T) {
	// GIVEN one stale lot, one fresh lot, and one fully returned lot
	_, mem := newTestServer(t)
	ctx := context.Background()
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

	stale := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme", Item: "22mm",
		Qty: decimal.NewFromInt(10), Date: now.AddDate(0, 0, -45),
	}
	fresh := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme", Item: "22mm",
		Qty: decimal.NewFromInt(5), Date: now.AddDate(0, 0, -3),
	}
	returned := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme", Item: "22mm",
		Qty: decimal.NewFromInt(10), Date: now.AddDate(0, 0, -60),
	}
	back := ledger.Transaction{
		Type: ledger.TxIn, Vendor: "Acme", Item: "22mm", PayalType: "Silver",
		Qty: decimal.NewFromInt(15), Price: decimal.NewFromInt(1500),
		Date: now.AddDate(0, 0, -44),
	}
	for _, tx := range []*ledger.Transaction{&returned, &stale, &fresh, &back} {
		require.NoError(t, mem.SaveTransaction(ctx, tx))
	}

	// WHEN scanning with a 30-day threshold
	monitor := NewOverdueMonitor(mem, nil)
	overdue := monitor.Scan(ctx, now)

	// THEN only the stale half-returned lot is flagged: the IN drains the
	// 60-day lot fully and the 45-day lot partially, the fresh lot is
	// under the threshold
	require.Len(t, overdue, 1)
	assert.Equal(t, "Acme", overdue[0].Vendor)
	assert.Equal(t, 45, overdue[0].Days)

	// AND the snapshot reflects the scan
	snap, at := monitor.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, now, at)
}

func TestGetOverdueLots_Endpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

	tx := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme", Item: "22mm",
		Qty: decimal.NewFromInt(8), Date: now.AddDate(0, 0, -40),
	}
	require.NoError(t, mem.SaveTransaction(ctx, &tx))

	// Endpoint without a monitor attached returns an empty list
	resp, err := http.Get(srv.URL + "/api/overdue")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeJSON[[]OverdueLot](t, resp))
}

func TestGetOverdueLots_WithMonitorAttached(t *testing.T) {
	mem := store.NewMemory()
	h := NewHandler(mem)
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	h.AttachMonitor(NewOverdueMonitor(mem, nil))

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	require.NoError(t, mem.SaveVendor(ctx, ledger.Vendor{Name: "Acme"}))
	tx := ledger.Transaction{
		Type: ledger.TxOut, Vendor: "Acme", Item: "22mm",
		Qty: decimal.NewFromInt(8), Date: now.AddDate(0, 0, -40),
	}
	require.NoError(t, mem.SaveTransaction(ctx, &tx))

	resp, err := http.Get(srv.URL + "/api/overdue")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	overdue := decodeJSON[[]OverdueLot](t, resp)
	require.Len(t, overdue, 1)
	assert.Equal(t, "8.000", overdue[0].RemainingQty)
	assert.Equal(t, 40, overdue[0].Days)
}
