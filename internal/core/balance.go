package core

import (
	"context"
	"fmt"
)

// GivingGroup is the sum of giving rows sharing a (date, service type) key.
type GivingGroup struct {
	Date        string
	ServiceType string
	Tithe       float64
	Offering    float64
	Special     float64
}

// Total sums the three giving components.
func (g GivingGroup) Total() float64 {
	return g.Tithe + g.Offering + g.Special
}

// ServiceBalance is one row of the balance report.
type ServiceBalance struct {
	Date          string
	ServiceType   string
	TotalGiving   float64
	TotalExpenses float64
	Balance       float64
}

// BalanceQuery selects which giving groups enter the report. MonthPrefix
// keeps dates starting with a YYYY-MM token and Limit keeps the N most
// recent groups; zero values disable each filter.
type BalanceQuery struct {
	MonthPrefix string
	Limit       int
}

// ApprovedExpenseTotaler looks up the summed amount of approved expenses for
// one date and service type. Service types compare case-insensitively and
// no match is 0.
type ApprovedExpenseTotaler interface {
	ApprovedExpenseTotal(ctx context.Context, date, serviceType string) (float64, error)
}

// ApprovedExpenseTotalFunc adapts a function to ApprovedExpenseTotaler.
type ApprovedExpenseTotalFunc func(ctx context.Context, date, serviceType string) (float64, error)

func (f ApprovedExpenseTotalFunc) ApprovedExpenseTotal(ctx context.Context, date, serviceType string) (float64, error) {
	return f(ctx, date, serviceType)
}

// ComputeBalances turns giving groups into balance rows, keeping input order.
// balance = tithe + offering + special - approved expenses for the same
// date and service type.
func ComputeBalances(ctx context.Context, groups []GivingGroup, expenses ApprovedExpenseTotaler) ([]ServiceBalance, error) {
	balances := make([]ServiceBalance, 0, len(groups))
	for _, g := range groups {
		spent, err := expenses.ApprovedExpenseTotal(ctx, g.Date, NormalizeServiceType(g.ServiceType))
		if err != nil {
			return nil, fmt.Errorf("approved expenses for %s %q: %w", g.Date, g.ServiceType, err)
		}
		giving := g.Total()
		balances = append(balances, ServiceBalance{
			Date:          g.Date,
			ServiceType:   g.ServiceType,
			TotalGiving:   giving,
			TotalExpenses: spent,
			Balance:       giving - spent,
		})
	}
	return balances, nil
}
