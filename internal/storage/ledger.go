package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"churchledger/internal/core"
)

const createAttendance = `INSERT INTO attendance_summary (date, service_type, male, female, children, total)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateAttendance(ctx context.Context, a core.Attendance) (int64, error) {
	id, err := q.insert(ctx, createAttendance, a.Date, a.ServiceType, a.Male, a.Female, a.Children, a.Total)
	if err != nil {
		return 0, fmt.Errorf("create attendance: %w", err)
	}
	return id, nil
}

const listAttendance = `SELECT id, date, service_type, male, female, children, total
FROM attendance_summary ORDER BY date DESC, id DESC`

// ListAttendance returns the newest rows first; limit <= 0 returns all.
func (q *Queries) ListAttendance(ctx context.Context, limit int) ([]core.Attendance, error) {
	query, args := withLimit(listAttendance, nil, limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []core.Attendance
	for rows.Next() {
		var a core.Attendance
		if err := rows.Scan(&a.ID, &a.Date, &a.ServiceType, &a.Male, &a.Female, &a.Children, &a.Total); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const countAttendance = `SELECT COUNT(*) FROM attendance_summary`

func (q *Queries) CountAttendance(ctx context.Context) (int64, error) {
	n, err := q.count(ctx, countAttendance)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return n, nil
}

const createGiving = `INSERT INTO giving_summary (date, service_type, tithe, offering, special, entered_by)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`

func (q *Queries) CreateGiving(ctx context.Context, g core.Giving) (int64, error) {
	id, err := q.insert(ctx, createGiving, g.Date, g.ServiceType, g.Tithe, g.Offering, g.Special, g.EnteredBy)
	if err != nil {
		return 0, fmt.Errorf("create giving: %w", err)
	}
	return id, nil
}

const listGiving = `SELECT id, date, service_type, COALESCE(tithe, 0), COALESCE(offering, 0), COALESCE(special, 0), entered_by
FROM giving_summary ORDER BY date DESC, id DESC`

func (q *Queries) ListGiving(ctx context.Context, limit int) ([]core.Giving, error) {
	query, args := withLimit(listGiving, nil, limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list giving: %w", err)
	}
	defer rows.Close()

	var out []core.Giving
	for rows.Next() {
		var g core.Giving
		if err := rows.Scan(&g.ID, &g.Date, &g.ServiceType, &g.Tithe, &g.Offering, &g.Special, &g.EnteredBy); err != nil {
			return nil, fmt.Errorf("scan giving: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

const givingGroups = `SELECT date, LOWER(service_type),
    COALESCE(SUM(tithe), 0), COALESCE(SUM(offering), 0), COALESCE(SUM(special), 0)
FROM giving_summary`

// GivingGroups sums giving per (date, service type), newest first. Service
// types group case-insensitively.
func (q *Queries) GivingGroups(ctx context.Context, filter core.BalanceQuery) ([]core.GivingGroup, error) {
	query := givingGroups
	var args []any
	if filter.MonthPrefix != "" {
		query += "\nWHERE date LIKE ?"
		args = append(args, filter.MonthPrefix+"%")
	}
	query += "\nGROUP BY date, LOWER(service_type)\nORDER BY date DESC, MAX(id) DESC"
	query, args = withLimit(query, args, filter.Limit)

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("giving groups: %w", err)
	}
	defer rows.Close()

	var out []core.GivingGroup
	for rows.Next() {
		var g core.GivingGroup
		if err := rows.Scan(&g.Date, &g.ServiceType, &g.Tithe, &g.Offering, &g.Special); err != nil {
			return nil, fmt.Errorf("scan giving group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

const totalGiving = `SELECT COALESCE(SUM(COALESCE(tithe, 0) + COALESCE(offering, 0) + COALESCE(special, 0)), 0) FROM giving_summary`

func (q *Queries) TotalGiving(ctx context.Context) (float64, error) {
	total, err := q.sum(ctx, totalGiving)
	if err != nil {
		return 0, fmt.Errorf("total giving: %w", err)
	}
	return total, nil
}

const createExpense = `INSERT INTO expenses (date, service_type, category, amount, payment_method, description, paid_by, approved, approved_by)
VALUES (?, ?, ?, ?, ?, ?, ?, 0, '') RETURNING id`

// CreateExpense inserts an unapproved expense.
func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := q.insert(ctx, createExpense, e.Date, e.ServiceType, e.Category, e.Amount, string(e.PaymentMethod), e.Description, e.PaidBy)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	return id, nil
}

const expenseColumns = `id, date, service_type, category, amount, payment_method, description, paid_by, approved, approved_by`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e        core.Expense
		method   string
		approved int64
	)
	if err := row.Scan(&e.ID, &e.Date, &e.ServiceType, &e.Category, &e.Amount, &method, &e.Description, &e.PaidBy, &approved, &e.ApprovedBy); err != nil {
		return core.Expense{}, err
	}
	e.PaymentMethod = core.PaymentMethod(method)
	e.Approved = approved != 0
	return e, nil
}

func (q *Queries) listExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(q.queryRow(ctx, getExpense, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

const recentExpenses = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY date DESC, id DESC`

func (q *Queries) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	query, args := withLimit(recentExpenses, nil, limit)
	out, err := q.listExpenses(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	return out, nil
}

const pendingExpenses = `SELECT ` + expenseColumns + ` FROM expenses WHERE approved = 0 ORDER BY date DESC, id DESC`

func (q *Queries) PendingExpenses(ctx context.Context) ([]core.Expense, error) {
	out, err := q.listExpenses(ctx, pendingExpenses)
	if err != nil {
		return nil, fmt.Errorf("pending expenses: %w", err)
	}
	return out, nil
}

const approvedExpenses = `SELECT ` + expenseColumns + ` FROM expenses WHERE approved = 1 ORDER BY date DESC, service_type, id DESC`

func (q *Queries) ApprovedExpenses(ctx context.Context) ([]core.Expense, error) {
	out, err := q.listExpenses(ctx, approvedExpenses)
	if err != nil {
		return nil, fmt.Errorf("approved expenses: %w", err)
	}
	return out, nil
}

const approvedExpenseTotal = `SELECT COALESCE(SUM(amount), 0) FROM expenses
WHERE date = ? AND LOWER(service_type) = ? AND approved = 1`

// ApprovedExpenseTotal implements core.ApprovedExpenseTotaler.
func (q *Queries) ApprovedExpenseTotal(ctx context.Context, date, serviceType string) (float64, error) {
	total, err := q.sum(ctx, approvedExpenseTotal, date, core.NormalizeServiceType(serviceType))
	if err != nil {
		return 0, fmt.Errorf("approved expense total: %w", err)
	}
	return total, nil
}

const countPendingExpenses = `SELECT COUNT(*) FROM expenses WHERE approved = 0`

func (q *Queries) CountPendingExpenses(ctx context.Context) (int64, error) {
	n, err := q.count(ctx, countPendingExpenses)
	if err != nil {
		return 0, fmt.Errorf("count pending expenses: %w", err)
	}
	return n, nil
}

const sumApprovedExpenses = `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE approved = 1`

func (q *Queries) SumApprovedExpenses(ctx context.Context) (float64, error) {
	total, err := q.sum(ctx, sumApprovedExpenses)
	if err != nil {
		return 0, fmt.Errorf("sum approved expenses: %w", err)
	}
	return total, nil
}

const approveExpense = `UPDATE expenses SET approved = 1, approved_by = ? WHERE id = ? AND approved = 0`

// ApproveExpense flips a pending expense to approved and reports whether a
// row changed. Approved rows are never touched again.
func (q *Queries) ApproveExpense(ctx context.Context, id int64, approver string) (bool, error) {
	res, err := q.exec(ctx, approveExpense, approver, id)
	if err != nil {
		return false, fmt.Errorf("approve expense %d: %w", id, err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const expenseExists = `SELECT COUNT(*) FROM expenses WHERE id = ?`

func (q *Queries) ExpenseExists(ctx context.Context, id int64) (bool, error) {
	n, err := q.count(ctx, expenseExists, id)
	if err != nil {
		return false, fmt.Errorf("expense exists %d: %w", id, err)
	}
	return n > 0, nil
}

// ClearTable deletes rows from one ledger table, narrowed by exact date
// and case-insensitive service type when those are set. It returns the
// number of deleted rows.
func (q *Queries) ClearTable(ctx context.Context, table Table, date, serviceType string) (int64, error) {
	if !table.valid() {
		return 0, fmt.Errorf("clear: unknown table %q", table)
	}
	var (
		conds []string
		args  []any
	)
	if date = strings.TrimSpace(date); date != "" {
		conds = append(conds, "date = ?")
		args = append(args, date)
	}
	if serviceType = core.NormalizeServiceType(serviceType); serviceType != "" {
		conds = append(conds, "LOWER(service_type) = ?")
		args = append(args, serviceType)
	}
	query := "DELETE FROM " + string(table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	return affected(res)
}

// Table names a ledger table that may be bulk-cleared.
type Table string

const (
	TableAttendance Table = "attendance_summary"
	TableGiving     Table = "giving_summary"
	TableExpenses   Table = "expenses"
)

func (t Table) valid() bool {
	switch t {
	case TableAttendance, TableGiving, TableExpenses:
		return true
	}
	return false
}

func withLimit(query string, args []any, limit int) (string, []any) {
	if limit <= 0 {
		return query, args
	}
	return query + "\nLIMIT ?", append(args, limit)
}
