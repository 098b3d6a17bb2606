package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiretrade/wire-ledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func acmeVendor() ledger.Vendor {
	return ledger.Vendor{
		Name: "Acme Exports",
		AssignedWires: []ledger.WireAssignment{
			{WireName: "22mm", PayalType: "Silver", PricePerKg: dec("100")},
			{WireName: "22mm", PayalType: "Gold", PricePerKg: dec("150")},
			{WireName: "18mm", PayalType: "Silver", PricePerKg: dec("80")},
		},
	}
}

func payment(id, vendor, wire, payal, amount string) ledger.Payment {
	return ledger.Payment{
		ID:        id,
		Vendor:    vendor,
		WireName:  wire,
		PayalType: payal,
		Amount:    dec(amount),
		Date:      day(10),
	}
}

// =============================================================================
// STATEMENT AGGREGATION
// =============================================================================

func TestBuildStatement_PayableFromVendorRates(t *testing.T) {
	// GIVEN: 6kg Silver at 100/kg and 2kg Gold at 150/kg on 22mm
	// WHEN: Building the statement
	// THEN: Payable is 600 + 300 = 900 with both payals in the breakdown

	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "22mm", "Silver", "6", day(2)),
		inTx("t2", "Acme Exports", "22mm", "Gold", "2", day(3)),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, nil)
	assert.True(t, stmt.TotalPayable.Equal(dec("900")), "got %s", stmt.TotalPayable)
	assert.True(t, stmt.TotalPaid.IsZero())
	assert.True(t, stmt.RemainingBalance.Equal(dec("900")))

	require.Len(t, stmt.Wires, 1)
	wire := stmt.Wires[0]
	assert.Equal(t, "22mm", wire.WireName)
	require.Len(t, wire.Payals, 2)
	// Sorted: Gold before Silver
	assert.Equal(t, "Gold", wire.Payals[0].PayalType)
	assert.True(t, wire.Payals[0].TotalPayable.Equal(dec("300")))
	assert.Equal(t, "Silver", wire.Payals[1].PayalType)
	assert.True(t, wire.Payals[1].TotalPayable.Equal(dec("600")))
}

func TestBuildStatement_UnknownPayal_ExcludedNotError(t *testing.T) {
	// GIVEN: IN rows with empty and "Unknown" payal labels
	// WHEN: Building the statement
	// THEN: They contribute zero and appear in no breakdown

	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "22mm", "Silver", "5", day(2)),
		inTx("t2", "Acme Exports", "22mm", ledger.PayalUnknown, "3", day(3)),
		inTx("t3", "Acme Exports", "22mm", "", "2", day(4)),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, nil)
	assert.True(t, stmt.TotalPayable.Equal(dec("500")))

	require.Len(t, stmt.Wires, 1)
	require.Len(t, stmt.Wires[0].Payals, 1)
	assert.Equal(t, "Silver", stmt.Wires[0].Payals[0].PayalType)
}

func TestBuildStatement_NoRateAssigned_ZeroPayable(t *testing.T) {
	// GIVEN: An IN in a payal the vendor has no negotiated rate for
	// WHEN: Building the statement
	// THEN: The weight shows in the breakdown but contributes no payable;
	//       there is no fallback to any global chart price

	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "18mm", "Gold", "4", day(2)),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, nil)
	assert.True(t, stmt.TotalPayable.IsZero())

	require.Len(t, stmt.Wires, 1)
	require.Len(t, stmt.Wires[0].Payals, 1)
	assert.True(t, stmt.Wires[0].Payals[0].TotalIn.Equal(dec("4")))
	assert.True(t, stmt.Wires[0].Payals[0].TotalPayable.IsZero())
}

func TestBuildStatement_OtherVendorsRows_Ignored(t *testing.T) {
	ins := []ledger.Transaction{
		inTx("t1", "Beta Traders", "22mm", "Silver", "5", day(2)),
	}
	pays := []ledger.Payment{
		payment("p1", "Beta Traders", "", ledger.PayalAll, "100"),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, pays)
	assert.True(t, stmt.TotalPayable.IsZero())
	assert.True(t, stmt.TotalPaid.IsZero())
	assert.Empty(t, stmt.Wires)
}

func TestBuildStatement_VendorLevelPayment_NotAttributedToWire(t *testing.T) {
	// GIVEN: A payment recorded against the vendor as a whole
	// WHEN: Building the statement
	// THEN: It counts in the vendor totals but no wire breakdown

	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "22mm", "Silver", "6", day(2)),
	}
	pays := []ledger.Payment{
		payment("p1", "Acme Exports", "", ledger.PayalAll, "200"),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, pays)
	assert.True(t, stmt.TotalPaid.Equal(dec("200")))
	assert.True(t, stmt.RemainingBalance.Equal(dec("400")))

	require.Len(t, stmt.Wires, 1)
	assert.True(t, stmt.Wires[0].TotalPaid.IsZero())
}

func TestBuildStatement_SpecificPayment_LandsInBreakdown(t *testing.T) {
	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "22mm", "Silver", "6", day(2)),
	}
	pays := []ledger.Payment{
		payment("p1", "Acme Exports", "22mm", "Silver", "250"),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, pays)
	require.Len(t, stmt.Wires, 1)
	require.Len(t, stmt.Wires[0].Payals, 1)
	pb := stmt.Wires[0].Payals[0]
	assert.True(t, pb.TotalPaid.Equal(dec("250")))
	assert.True(t, pb.RemainingBalance.Equal(dec("350")))
}

// =============================================================================
// PAYMENT CAP
// =============================================================================

func TestValidatePayment_CapAtRemainingBalance(t *testing.T) {
	// GIVEN: Payable 1000, already paid 400
	// WHEN: Submitting 700 and then 600
	// THEN: 700 is rejected, 600 is accepted and zeroes the balance

	ins := []ledger.Transaction{
		inTx("t1", "Acme Exports", "22mm", "Silver", "10", day(2)), // 1000
	}
	pays := []ledger.Payment{
		payment("p1", "Acme Exports", "", ledger.PayalAll, "400"),
	}

	stmt := ledger.BuildStatement(acmeVendor(), ins, pays)
	require.True(t, stmt.RemainingBalance.Equal(dec("600")))

	err := ledger.ValidatePayment(stmt, dec("700"))
	require.Error(t, err)
	var capErr *ledger.PaymentExceedsBalanceError
	require.ErrorAs(t, err, &capErr)
	assert.True(t, capErr.Remaining.Equal(dec("600")))
	assert.ErrorIs(t, err, ledger.ErrPaymentExceedsBalance)

	require.NoError(t, ledger.ValidatePayment(stmt, dec("600")))

	pays = append(pays, payment("p2", "Acme Exports", "", ledger.PayalAll, "600"))
	after := ledger.BuildStatement(acmeVendor(), ins, pays)
	assert.True(t, after.RemainingBalance.IsZero())
}

func TestValidatePayment_NonPositiveRejected(t *testing.T) {
	stmt := ledger.VendorStatement{Vendor: "Acme Exports", RemainingBalance: dec("100")}

	assert.ErrorIs(t, ledger.ValidatePayment(stmt, dec("0")), ledger.ErrInvalidTransaction)
	assert.ErrorIs(t, ledger.ValidatePayment(stmt, dec("-5")), ledger.ErrInvalidTransaction)
}
