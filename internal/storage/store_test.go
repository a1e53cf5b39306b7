package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"churchledger/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "church.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"
	if got := rebind(DriverSQLite, q); got != q {
		t.Fatalf("sqlite query rewritten: %q", got)
	}
	want := "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3"
	if got := rebind(DriverPostgres, q); got != want {
		t.Fatalf("rebind = %q, want %q", got, want)
	}
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "church.db")
	ctx := context.Background()

	first, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	version, dirty, err := second.SchemaVersion()
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("version = %d dirty = %v, want 1 clean", version, dirty)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Session(ctx, func(q *Queries) error {
		id, err := q.CreateUser(ctx, core.User{Name: "Mary Finance", Email: "finance@church.com", PasswordHash: "h", Role: core.RoleFinance, Active: true})
		if err != nil {
			return err
		}

		if _, err := q.CreateUser(ctx, core.User{Name: "Dup", Email: "finance@church.com", Role: core.RoleUsher, Active: true}); !errors.Is(err, ErrDuplicate) {
			t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
		}

		u, err := q.GetUserByEmail(ctx, "FINANCE@church.com")
		if err != nil {
			return err
		}
		if u.ID != id || u.Role != core.RoleFinance || !u.Active || u.PasswordHash != "h" {
			t.Errorf("unexpected user %+v", u)
		}

		u.Name = "Mary F."
		u.PasswordHash = ""
		u.Active = false
		if err := q.UpdateUser(ctx, u); err != nil {
			return err
		}
		got, err := q.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if got.Name != "Mary F." || got.Active || got.PasswordHash != "h" {
			t.Errorf("update lost fields: %+v", got)
		}

		if err := q.PromoteUser(ctx, "finance@church.com"); err != nil {
			return err
		}
		got, _ = q.GetUser(ctx, id)
		if got.Role != core.RoleAdmin || !got.Active {
			t.Errorf("promote: %+v", got)
		}
		if err := q.PromoteUser(ctx, "nobody@church.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("promote missing: got %v", err)
		}

		if err := q.DeleteUser(ctx, id); err != nil {
			return err
		}
		if _, err := q.GetUser(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("after delete: got %v, want ErrNotFound", err)
		}
		if err := q.DeleteUser(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete: got %v, want ErrNotFound", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
}

func TestMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Session(ctx, func(q *Queries) error {
		id, err := q.CreateMember(ctx, core.Member{Name: "Ann", Active: true})
		if err != nil {
			return err
		}
		if _, err := q.CreateMember(ctx, core.Member{Name: "Bob", Active: true}); err != nil {
			return err
		}
		if err := q.ToggleMember(ctx, id); err != nil {
			return err
		}
		members, err := q.ListMembers(ctx)
		if err != nil {
			return err
		}
		if len(members) != 2 || members[0].Name != "Ann" || members[0].Active {
			t.Errorf("unexpected members %+v", members)
		}
		if err := q.ToggleMember(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("toggle missing: got %v", err)
		}
		n, err := q.CountMembers(ctx)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("count = %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
}

func seedGiving(t *testing.T, q *Queries, rows ...core.Giving) {
	t.Helper()
	for _, g := range rows {
		if _, err := q.CreateGiving(context.Background(), g); err != nil {
			t.Fatalf("seed giving: %v", err)
		}
	}
}

func TestGivingGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Session(ctx, func(q *Queries) error {
		seedGiving(t, q,
			core.Giving{Date: "2024-04-28", ServiceType: "sunday", Tithe: 10},
			core.Giving{Date: "2024-05-05", ServiceType: "sunday", Tithe: 60, Offering: 20},
			core.Giving{Date: "2024-05-05", ServiceType: "Sunday", Tithe: 40, Offering: 30},
			core.Giving{Date: "2024-05-05", ServiceType: "midweek", Special: 5},
			core.Giving{Date: "2024-05-12", ServiceType: "sunday", Offering: 7},
		)

		all, err := q.GivingGroups(ctx, core.BalanceQuery{})
		if err != nil {
			return err
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 groups, got %d: %+v", len(all), all)
		}
		if all[0].Date != "2024-05-12" || all[3].Date != "2024-04-28" {
			t.Errorf("not newest first: %+v", all)
		}
		// Same date: the group with the most recent row comes first.
		if all[1].ServiceType != "midweek" || all[2].ServiceType != "sunday" {
			t.Errorf("tie order: %+v", all[1:3])
		}
		if all[2].Tithe != 100 || all[2].Offering != 50 {
			t.Errorf("case-insensitive grouping failed: %+v", all[2])
		}

		may, err := q.GivingGroups(ctx, core.BalanceQuery{MonthPrefix: "2024-05"})
		if err != nil {
			return err
		}
		if len(may) != 3 {
			t.Errorf("month filter: %+v", may)
		}
		for _, g := range may {
			if g.Date[:7] != "2024-05" {
				t.Errorf("leaked %s", g.Date)
			}
		}

		latest, err := q.GivingGroups(ctx, core.BalanceQuery{MonthPrefix: "2024-05", Limit: 1})
		if err != nil {
			return err
		}
		if len(latest) != 1 || latest[0].Date != "2024-05-12" {
			t.Errorf("month+limit: %+v", latest)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
}

func TestApprovedExpenseTotalAndApproval(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Tx(ctx, func(q *Queries) error {
		id, err := q.CreateExpense(ctx, core.Expense{Date: "2024-05-05", ServiceType: "Sunday", Category: "fuel", Amount: 30, PaymentMethod: core.PaymentCash, PaidBy: "Mary"})
		if err != nil {
			return err
		}
		if _, err := q.CreateExpense(ctx, core.Expense{Date: "2024-05-05", ServiceType: "sunday", Category: "food", Amount: 99, PaymentMethod: core.PaymentCash}); err != nil {
			return err
		}

		total, err := q.ApprovedExpenseTotal(ctx, "2024-05-05", "SUNDAY")
		if err != nil {
			return err
		}
		if total != 0 {
			t.Errorf("pending expenses counted: %v", total)
		}

		ok, err := q.ApproveExpense(ctx, id, "Pastor Paul")
		if err != nil || !ok {
			t.Fatalf("approve: %v %v", ok, err)
		}
		ok, err = q.ApproveExpense(ctx, id, "Someone Else")
		if err != nil || ok {
			t.Fatalf("second approve changed a row: %v %v", ok, err)
		}
		e, err := q.GetExpense(ctx, id)
		if err != nil {
			return err
		}
		if !e.Approved || e.ApprovedBy != "Pastor Paul" {
			t.Errorf("approval not recorded once: %+v", e)
		}

		total, err = q.ApprovedExpenseTotal(ctx, "2024-05-05", "sunday")
		if err != nil {
			return err
		}
		if total != 30 {
			t.Errorf("approved total = %v, want 30", total)
		}

		exists, err := q.ExpenseExists(ctx, 7777)
		if err != nil {
			return err
		}
		if exists {
			t.Error("expense 7777 should not exist")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Tx(ctx, func(q *Queries) error {
		if _, err := q.CreateAttendance(ctx, core.Attendance{Date: "2024-05-05", ServiceType: "sunday", Total: 3}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_ = s.Session(ctx, func(q *Queries) error {
		n, err := q.CountAttendance(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Errorf("rolled back insert persisted: %d rows", n)
		}
		return nil
	})
}

func TestClearTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Tx(ctx, func(q *Queries) error {
		seedGiving(t, q,
			core.Giving{Date: "2024-05-05", ServiceType: "sunday"},
			core.Giving{Date: "2024-05-05", ServiceType: "midweek"},
			core.Giving{Date: "2024-05-12", ServiceType: "Sunday"},
		)

		n, err := q.ClearTable(ctx, TableGiving, "", " SUNDAY ")
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("service type filter deleted %d rows, want 2", n)
		}

		n, err = q.ClearTable(ctx, TableGiving, "2024-05-06", "")
		if err != nil {
			return err
		}
		if n != 0 {
			t.Errorf("date filter deleted %d rows, want 0", n)
		}

		n, err = q.ClearTable(ctx, TableGiving, "", "")
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("unfiltered clear deleted %d rows, want 1", n)
		}

		if _, err := q.ClearTable(ctx, Table("users"), "", ""); err == nil {
			t.Error("clearing users must be refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}
