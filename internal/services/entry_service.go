package services

import (
	"context"
	"fmt"
	"strings"

	"churchledger/internal/amqp"
	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
	"churchledger/internal/storage"
)

// RecentEntries is how many rows the entry forms list under themselves.
const RecentEntries = 5

// AttendanceInput carries the raw form values of an attendance entry.
type AttendanceInput struct {
	Date        string
	ServiceType string
	Male        string
	Female      string
	Children    string
}

// GivingInput carries the raw form values of a giving entry.
type GivingInput struct {
	Date        string
	ServiceType string
	Tithe       string
	Offering    string
	Special     string
}

// ExpenseInput carries the raw form values of an expense entry.
type ExpenseInput struct {
	Date          string
	ServiceType   string
	Category      string
	Amount        string
	PaymentMethod string
	Description   string
}

// EntryService validates and records attendance, giving and expenses.
// Each call writes at most one row.
type EntryService struct {
	store *storage.Store
	notifier
}

func NewEntryService(store *storage.Store, events EventPublisher, m *metrics.Metrics) *EntryService {
	return &EntryService{store: store, notifier: notifier{events: events, metrics: m}}
}

// RecordAttendance stores counts for one service. Malformed counts become 0
// and the total is derived from the three counts.
func (s *EntryService) RecordAttendance(ctx context.Context, actor core.User, in AttendanceInput) (core.Attendance, error) {
	a := core.Attendance{
		Date:        strings.TrimSpace(in.Date),
		ServiceType: strings.TrimSpace(in.ServiceType),
		Male:        core.ParseCount(in.Male),
		Female:      core.ParseCount(in.Female),
		Children:    core.ParseCount(in.Children),
	}
	a.Total = a.Male + a.Female + a.Children
	if err := a.Validate(); err != nil {
		return core.Attendance{}, err
	}

	err := s.store.Session(ctx, func(q *storage.Queries) error {
		id, err := q.CreateAttendance(ctx, a)
		a.ID = id
		return err
	})
	if err != nil {
		return core.Attendance{}, fmt.Errorf("record attendance: %w", err)
	}

	s.metrics.EntryRecorded("attendance")
	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Attendance recorded",
		log.NewFields().WithEntry(a.Date, a.ServiceType).WithActor(actor.ID, actor.Role.String()).ToSlice()...)

	e := amqp.NewLedgerEvent(amqp.EventAttendanceRecorded, actor.Name)
	e.RecordID, e.Date, e.ServiceType = a.ID, a.Date, a.ServiceType
	e.Details = map[string]string{"total": fmt.Sprint(a.Total)}
	s.publish(ctx, e)

	return a, nil
}

// RecordGiving stores one giving entry under a lower-cased service type.
func (s *EntryService) RecordGiving(ctx context.Context, actor core.User, in GivingInput) (core.Giving, error) {
	g := core.Giving{
		Date:        strings.TrimSpace(in.Date),
		ServiceType: core.NormalizeServiceType(in.ServiceType),
		Tithe:       core.ParseAmount(in.Tithe),
		Offering:    core.ParseAmount(in.Offering),
		Special:     core.ParseAmount(in.Special),
		EnteredBy:   actor.Name,
	}
	if err := g.Validate(); err != nil {
		return core.Giving{}, err
	}

	err := s.store.Session(ctx, func(q *storage.Queries) error {
		id, err := q.CreateGiving(ctx, g)
		g.ID = id
		return err
	})
	if err != nil {
		return core.Giving{}, fmt.Errorf("record giving: %w", err)
	}

	s.metrics.EntryRecorded("giving")
	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Giving recorded",
		log.NewFields().WithEntry(g.Date, g.ServiceType).WithActor(actor.ID, actor.Role.String()).ToSlice()...)

	e := amqp.NewLedgerEvent(amqp.EventGivingRecorded, actor.Name)
	e.RecordID, e.Date, e.ServiceType, e.Amount = g.ID, g.Date, g.ServiceType, g.Total()
	s.publish(ctx, e)

	return g, nil
}

// AddExpense stores an unapproved expense paid by actor.
func (s *EntryService) AddExpense(ctx context.Context, actor core.User, in ExpenseInput) (core.Expense, error) {
	e := core.Expense{
		Date:          strings.TrimSpace(in.Date),
		ServiceType:   core.NormalizeServiceType(in.ServiceType),
		Category:      strings.TrimSpace(in.Category),
		Amount:        core.ParseAmount(in.Amount),
		PaymentMethod: core.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod))),
		Description:   strings.TrimSpace(in.Description),
		PaidBy:        actor.Name,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	err := s.store.Session(ctx, func(q *storage.Queries) error {
		id, err := q.CreateExpense(ctx, e)
		e.ID = id
		return err
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.metrics.EntryRecorded("expense")
	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Expense added",
		log.NewFields().WithEntry(e.Date, e.ServiceType).WithActor(actor.ID, actor.Role.String()).ToSlice()...)

	ev := amqp.NewLedgerEvent(amqp.EventExpenseCreated, actor.Name)
	ev.RecordID, ev.Date, ev.ServiceType, ev.Amount = e.ID, e.Date, e.ServiceType, e.Amount
	ev.Details = map[string]string{"category": e.Category, "payment_method": string(e.PaymentMethod)}
	s.publish(ctx, ev)

	return e, nil
}

// RecentAttendance lists the newest attendance rows.
func (s *EntryService) RecentAttendance(ctx context.Context) ([]core.Attendance, error) {
	var rows []core.Attendance
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		rows, err = q.ListAttendance(ctx, RecentEntries)
		return err
	})
	return rows, err
}

// RecentGiving lists the newest giving rows.
func (s *EntryService) RecentGiving(ctx context.Context) ([]core.Giving, error) {
	var rows []core.Giving
	err := s.store.Session(ctx, func(q *storage.Queries) error {
		var err error
		rows, err = q.ListGiving(ctx, RecentEntries)
		return err
	})
	return rows, err
}
