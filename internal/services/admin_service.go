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

// Cleared kinds, in the order they are purged.
const (
	KindAttendance = "attendance"
	KindGiving     = "giving"
	KindExpenses   = "expenses"
)

type AdminService struct {
	store *storage.Store
	notifier
}

func NewAdminService(store *storage.Store, events EventPublisher, m *metrics.Metrics) *AdminService {
	return &AdminService{store: store, notifier: notifier{events: events, metrics: m}}
}

// ClearData deletes the selected ledger tables in one transaction and
// returns the kinds it cleared. Nothing is deleted when req selects no table
// or when any deletion fails.
func (s *AdminService) ClearData(ctx context.Context, actor core.User, req core.ClearRequest) ([]string, error) {
	if req.Empty() {
		return nil, nil
	}
	req.Date = strings.TrimSpace(req.Date)
	req.ServiceType = core.NormalizeServiceType(req.ServiceType)
	if req.Date != "" {
		if err := core.ValidateDate(req.Date); err != nil {
			return nil, err
		}
	}

	targets := []struct {
		selected bool
		table    storage.Table
		kind     string
	}{
		{req.Attendance, storage.TableAttendance, KindAttendance},
		{req.Giving, storage.TableGiving, KindGiving},
		{req.Expenses, storage.TableExpenses, KindExpenses},
	}

	var cleared []string
	var rows int64
	err := s.store.Tx(ctx, func(q *storage.Queries) error {
		for _, t := range targets {
			if !t.selected {
				continue
			}
			n, err := q.ClearTable(ctx, t.table, req.Date, req.ServiceType)
			if err != nil {
				return err
			}
			rows += n
			cleared = append(cleared, t.kind)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear data: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).WarnContext(ctx, "Ledger data cleared",
		log.FieldOperation, log.OpClear,
		"kinds", strings.Join(cleared, ","),
		"rows", rows,
		log.FieldDate, req.Date,
		log.FieldServiceType, req.ServiceType,
		log.FieldUserID, actor.ID)

	e := amqp.NewLedgerEvent(amqp.EventDataCleared, actor.Name)
	e.Date, e.ServiceType = req.Date, req.ServiceType
	e.Details = map[string]string{"kinds": strings.Join(cleared, ","), "rows": fmt.Sprint(rows)}
	s.publish(ctx, e)

	return cleared, nil
}
