// Package memory keeps exported reports in process, for dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"churchledger/internal/sheets"
)

type Writer struct {
	mu      sync.Mutex
	reports map[string][][]any
}

func NewWriter() *Writer {
	return &Writer{reports: make(map[string][][]any)}
}

var _ sheets.ReportWriter = (*Writer)(nil)

// WriteReport replaces the stored report for month and returns a synthetic
// reference.
func (w *Writer) WriteReport(_ context.Context, month string, rows [][]any) (string, error) {
	copied := make([][]any, len(rows))
	for i, r := range rows {
		copied[i] = append([]any(nil), r...)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports[month] = copied
	return "mem:" + sheets.SheetName(month), nil
}

// Report returns the rows last written for month.
func (w *Writer) Report(month string) [][]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reports[month]
}

// Months lists the months with a stored report, sorted.
func (w *Writer) Months() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.reports))
	for m := range w.reports {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
