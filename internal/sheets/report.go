// Package sheets exports monthly balance reports to spreadsheets.
package sheets

import (
	"context"
	"fmt"
	"math"

	"churchledger/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the contents of one month's report with rows.
	ReportWriter interface {
		WriteReport(ctx context.Context, month string, rows [][]any) (ref string, err error)
	}

	// BalanceSource provides per-service balances; *services.BalanceService
	// implements it.
	BalanceSource interface {
		Balances(ctx context.Context, query core.BalanceQuery) ([]core.ServiceBalance, error)
	}
)

// Header is the first row of every report.
var Header = []any{"Date", "Service Type", "Total Giving", "Approved Expenses", "Balance"}

// SheetName is the tab a month's report lives in.
func SheetName(month string) string {
	return "Report " + month
}

// BalanceRows lays out balances as a header, one row per service and a
// closing totals row.
func BalanceRows(balances []core.ServiceBalance) [][]any {
	rows := make([][]any, 0, len(balances)+2)
	rows = append(rows, Header)

	var giving, expenses, balance float64
	for _, b := range balances {
		rows = append(rows, []any{b.Date, b.ServiceType, cents(b.TotalGiving), cents(b.TotalExpenses), cents(b.Balance)})
		giving += b.TotalGiving
		expenses += b.TotalExpenses
		balance += b.Balance
	}
	return append(rows, []any{"Total", "", cents(giving), cents(expenses), cents(balance)})
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Result describes a finished export.
type Result struct {
	Month string
	Ref   string
	// Services is the number of balance rows, excluding header and totals.
	Services int
}

// Exporter writes a month's balances through a ReportWriter.
type Exporter struct {
	balances BalanceSource
	writer   ReportWriter
}

func NewExporter(balances BalanceSource, writer ReportWriter) *Exporter {
	return &Exporter{balances: balances, writer: writer}
}

// Export reads the balances of month (YYYY-MM) and writes the report.
func (e *Exporter) Export(ctx context.Context, month string) (Result, error) {
	month, err := core.ParseMonth(month)
	if err != nil {
		return Result{}, err
	}

	balances, err := e.balances.Balances(ctx, core.BalanceQuery{MonthPrefix: month})
	if err != nil {
		return Result{}, fmt.Errorf("load balances for %s: %w", month, err)
	}

	ref, err := e.writer.WriteReport(ctx, month, BalanceRows(balances))
	if err != nil {
		return Result{}, fmt.Errorf("write report %s: %w", month, err)
	}
	return Result{Month: month, Ref: ref, Services: len(balances)}, nil
}
