package services

import (
	"context"
	"fmt"

	"churchledger/internal/core"
	"churchledger/internal/storage"
)

type DashboardService struct {
	store *storage.Store
}

func NewDashboardService(store *storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary collects dashboard counters, the latest balance and recent
// activity using a single connection.
func (s *DashboardService) Summary(ctx context.Context) (core.DashboardSummary, error) {
	var sum core.DashboardSummary
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		if sum.TotalMembers, err = q.CountMembers(ctx); err != nil {
			return err
		}
		if sum.TotalUsers, err = q.CountUsers(ctx); err != nil {
			return err
		}
		if sum.AttendanceRecords, err = q.CountAttendance(ctx); err != nil {
			return err
		}
		if sum.TotalGiving, err = q.TotalGiving(ctx); err != nil {
			return err
		}
		if sum.PendingExpenses, err = q.CountPendingExpenses(ctx); err != nil {
			return err
		}
		if sum.ApprovedExpensesTotal, err = q.SumApprovedExpenses(ctx); err != nil {
			return err
		}
		if sum.RecentAttendance, err = q.ListAttendance(ctx, RecentEntries); err != nil {
			return err
		}
		if sum.RecentGiving, err = q.ListGiving(ctx, RecentEntries); err != nil {
			return err
		}
		if sum.RecentExpenses, err = q.RecentExpenses(ctx, RecentEntries); err != nil {
			return err
		}
		if len(sum.RecentAttendance) > 0 {
			sum.LastAttendanceTotal = sum.RecentAttendance[0].Total
			sum.LastAttendanceDate = sum.RecentAttendance[0].Date
		}
		if len(sum.RecentGiving) > 0 {
			sum.LastGivingTotal = sum.RecentGiving[0].Total()
			sum.LastGivingDate = sum.RecentGiving[0].Date
		}

		latest, err := balances(ctx, q, core.BalanceQuery{Limit: DashboardBalanceLimit})
		if err != nil {
			return err
		}
		if len(latest) > 0 {
			sum.Latest = &latest[0]
		}
		return nil
	})
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return sum, nil
}
