package services

import (
	"context"
	"fmt"

	"churchledger/internal/amqp"
	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
	"churchledger/internal/storage"
)

// ApprovalService moves expenses from pending to approved. Approval is
// one-way and attributed to exactly one approver.
type ApprovalService struct {
	store *storage.Store
	notifier
}

func NewApprovalService(store *storage.Store, events EventPublisher, m *metrics.Metrics) *ApprovalService {
	return &ApprovalService{store: store, notifier: notifier{events: events, metrics: m}}
}

// Approve marks expense id approved by approver. Unknown ids and already
// approved expenses are reported through the outcome and change nothing.
func (s *ApprovalService) Approve(ctx context.Context, approver core.User, id int64) (core.ApprovalOutcome, error) {
	var (
		outcome core.ApprovalOutcome
		expense core.Expense
	)
	err := s.store.Tx(ctx, func(q *storage.Queries) error {
		changed, err := q.ApproveExpense(ctx, id, approver.Name)
		if err != nil {
			return err
		}
		if changed {
			outcome = core.OutcomeApproved
			expense, err = q.GetExpense(ctx, id)
			return err
		}
		exists, err := q.ExpenseExists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			outcome = core.OutcomeAlreadyApproved
		} else {
			outcome = core.OutcomeNotFound
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("approve expense %d: %w", id, err)
	}

	s.metrics.ApprovalAttempt(outcome.String())
	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Expense approval",
		log.FieldExpenseID, id,
		log.FieldOutcome, outcome.String(),
		log.FieldUserID, approver.ID)

	if outcome == core.OutcomeApproved {
		e := amqp.NewLedgerEvent(amqp.EventExpenseApproved, approver.Name)
		e.RecordID, e.Date, e.ServiceType, e.Amount = expense.ID, expense.Date, expense.ServiceType, expense.Amount
		s.publish(ctx, e)
	}
	return outcome, nil
}

// Pending lists expenses awaiting approval, newest first.
func (s *ApprovalService) Pending(ctx context.Context) ([]core.Expense, error) {
	var rows []core.Expense
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		rows, err = q.PendingExpenses(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("pending expenses: %w", err)
	}
	return rows, nil
}
