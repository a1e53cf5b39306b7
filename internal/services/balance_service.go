package services

import (
	"context"
	"fmt"

	"churchledger/internal/core"
	"churchledger/internal/storage"
)

// Row limits of the balance call sites.
const (
	DashboardBalanceLimit = 1
	ApprovalBalanceLimit  = 5
)

// BalanceService produces per-service balance reports from stored giving
// and approved expenses. Every call re-reads storage.
type BalanceService struct {
	store *storage.Store
}

func NewBalanceService(store *storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// Balances returns balance rows newest first, filtered by query.
func (s *BalanceService) Balances(ctx context.Context, query core.BalanceQuery) ([]core.ServiceBalance, error) {
	var out []core.ServiceBalance
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		out, err = balances(ctx, q, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	return out, nil
}

func balances(ctx context.Context, q *storage.Queries, query core.BalanceQuery) ([]core.ServiceBalance, error) {
	groups, err := q.GivingGroups(ctx, query)
	if err != nil {
		return nil, err
	}
	return core.ComputeBalances(ctx, groups, q)
}

// Report is everything the reports page shows.
type Report struct {
	Attendance       []core.Attendance
	GivingGroups     []core.GivingGroup
	ApprovedExpenses []core.Expense
	Balances         []core.ServiceBalance
}

// Report gathers the full history on one connection.
func (s *BalanceService) Report(ctx context.Context) (Report, error) {
	var r Report
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		if r.Attendance, err = q.ListAttendance(ctx, 0); err != nil {
			return err
		}
		if r.GivingGroups, err = q.GivingGroups(ctx, core.BalanceQuery{}); err != nil {
			return err
		}
		if r.ApprovedExpenses, err = q.ApprovedExpenses(ctx); err != nil {
			return err
		}
		r.Balances, err = core.ComputeBalances(ctx, r.GivingGroups, q)
		return err
	})
	if err != nil {
		return Report{}, fmt.Errorf("report: %w", err)
	}
	return r, nil
}
