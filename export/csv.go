// Package export renders reconciled ledger data as CSV for download.
// The column layout mirrors the vendor transaction table: serial number,
// date, wire, design, wire id, labour charges, out/in quantities, and the
// running balance. Weights are fixed to 3 decimal places and money to 2 —
// this is the presentation boundary where rounding is allowed.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"github.com/wiretrade/wire-ledger/ledger"
)

var log = logrus.New()

// SetLogger replaces the package logger with a configured one.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ledgerCSVRow maps one reconciled row to CSV columns.
type ledgerCSVRow struct {
	SrNo          int    `csv:"Sr. No"`
	Date          string `csv:"Date"`
	Wire          string `csv:"Wire Items"`
	Design        string `csv:"Design"`
	WireID        string `csv:"Wire ID"`
	LabourCharges string `csv:"Labour Charges"`
	QtyOut        string `csv:"Qty. (Out)"`
	QtyIn         string `csv:"Qty. (In)"`
	OutIn         string `csv:"Out/In"`
	Balance       string `csv:"Balance (OUT - IN)"`
	LotStatus     string `csv:"Status"`
}

// WriteLedger writes reconciled rows as CSV.
func WriteLedger(w io.Writer, rows []ledger.ReconciledRow) error {
	log.WithField("rows", len(rows)).Info("Exporting ledger CSV")

	csvRows := make([]ledgerCSVRow, len(rows))
	for i, row := range rows {
		out := ledgerCSVRow{
			SrNo:      row.SrNo,
			Date:      row.EffectiveDate().Format("02/01/2006"),
			Wire:      row.Item,
			Design:    row.PayalType,
			WireID:    row.LotID,
			OutIn:     outIn(row.Type),
			Balance:   row.RunningBalance.StringFixed(3),
			LotStatus: string(row.LotStatus),
		}
		switch row.Type {
		case ledger.TxOut:
			out.QtyOut = row.Qty.StringFixed(3)
		case ledger.TxIn:
			out.QtyIn = row.Qty.StringFixed(3)
			if row.Price.IsPositive() {
				out.LabourCharges = row.Price.StringFixed(2)
			}
		}
		csvRows[i] = out
	}

	if err := gocsv.Marshal(&csvRows, w); err != nil {
		log.WithError(err).Error("Failed to write ledger CSV")
		return fmt.Errorf("error writing ledger CSV: %w", err)
	}
	return nil
}

// availabilityCSVRow maps one availability tuple to CSV columns.
type availabilityCSVRow struct {
	Vendor    string `csv:"Vendor"`
	Item      string `csv:"Wire"`
	TotalOut  string `csv:"Total Out (kg)"`
	TotalIn   string `csv:"Total In (kg)"`
	Available string `csv:"Available (kg)"`
}

// WriteAvailability writes the availability summary as CSV.
func WriteAvailability(w io.Writer, items []ledger.ItemAvailability) error {
	csvRows := make([]availabilityCSVRow, len(items))
	for i, item := range items {
		csvRows[i] = availabilityCSVRow{
			Vendor:    item.Vendor,
			Item:      item.Item,
			TotalOut:  item.TotalOut.StringFixed(3),
			TotalIn:   item.TotalIn.StringFixed(3),
			Available: item.Available.StringFixed(3),
		}
	}
	if err := gocsv.Marshal(&csvRows, w); err != nil {
		return fmt.Errorf("error writing availability CSV: %w", err)
	}
	return nil
}

func outIn(t ledger.TxType) string {
	if t == ledger.TxOut {
		return "Out"
	}
	return "In"
}

// FileName builds a download file name for a vendor's ledger export,
// matching the front-end's naming convention.
func FileName(vendor string, now time.Time) string {
	if vendor == "" {
		return fmt.Sprintf("all_vendors_transactions_%s.csv", now.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s_transactions_%s.csv", vendor, now.Format("2006-01-02"))
}
