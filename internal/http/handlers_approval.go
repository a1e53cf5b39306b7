package http

import (
	"fmt"
	"net/http"

	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/services"
)

type approvalPage struct {
	Pending  []core.Expense
	Balances []core.ServiceBalance
}

func (s *Server) handleApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := s.Approvals.Pending(r.Context())
	if err != nil {
		serverError(w, r, log.OpList, err)
		return
	}
	balances, err := s.Balances.Balances(r.Context(), core.BalanceQuery{Limit: services.ApprovalBalanceLimit})
	if err != nil {
		serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "approve_expenses.html", view{
		Title: "Approve expenses",
		Data:  approvalPage{Pending: pending, Balances: balances},
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	resp := Redirect("/expenses/approve")

	id, err := parsePositiveInt(r.PostForm.Get("expense_id"))
	if err != nil {
		resp.Danger("Invalid form submission.").Write(w, r)
		return
	}

	approver := actor(r)
	outcome, err := s.Approvals.Approve(r.Context(), approver, id)
	if err != nil {
		serverError(w, r, log.OpApprove, err)
		return
	}

	switch outcome {
	case core.OutcomeApproved:
		resp.Success(fmt.Sprintf("Expense approved by %s.", approver.Name))
	case core.OutcomeAlreadyApproved:
		resp.Flash(FlashWarning, fmt.Sprintf("Expense #%d was already approved.", id))
	default:
		resp.Danger(fmt.Sprintf("Expense #%d not found.", id))
	}
	resp.Write(w, r)
}
