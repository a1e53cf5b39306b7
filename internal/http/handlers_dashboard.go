package http

import (
	"bytes"
	"encoding/csv"
	"net/http"

	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/services"
)

type reportsPage struct {
	Month  string
	Report services.Report
}

// dashboardPage adds the account list pastors manage from the dashboard.
type dashboardPage struct {
	core.DashboardSummary
	Accounts []core.User
}

var csvHeader = []string{"Date", "Service Type", "Total Giving", "Approved Expenses", "Balance"}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Dashboard.Summary(r.Context())
	if err != nil {
		serverError(w, r, log.OpRead, err)
		return
	}
	page := dashboardPage{DashboardSummary: sum}
	if actor(r).Role == core.RolePastor {
		page.Accounts, err = s.Users.List(r.Context())
		if err != nil {
			serverError(w, r, log.OpRead, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "dashboard.html", view{Title: "Dashboard", Data: page})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	report, err := s.Balances.Report(r.Context())
	if err != nil {
		serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "reports.html", view{
		Title: "Reports",
		Data:  reportsPage{Month: core.CurrentMonth(s.Now()), Report: report},
	})
}

// handleDownloadCSV exports the balance rows of one month.
func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query(), s.Now())
	if err != nil {
		BadRequestError("Invalid month, expected YYYY-MM.").Write(w, r)
		return
	}

	rows, err := s.Balances.Balances(r.Context(), core.BalanceQuery{MonthPrefix: month})
	if err != nil {
		serverError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.UseCRLF = true
	_ = cw.Write(csvHeader)
	for _, b := range rows {
		_ = cw.Write([]string{
			b.Date,
			b.ServiceType,
			core.FormatMoney(b.TotalGiving),
			core.FormatMoney(b.TotalExpenses),
			core.FormatMoney(b.Balance),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		serverError(w, r, log.OpExport, err)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentReports).InfoContext(r.Context(), "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldMonth, month,
		"rows", len(rows))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=church_report_"+month+".csv")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
