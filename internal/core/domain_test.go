package core

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{" Pastor ", RolePastor, true},
		{"USHER", RoleUsher, true},
		{"finance", RoleFinance, true},
		{"treasurer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidRole) {
			t.Fatalf("ParseRole(%q) expected ErrInvalidRole, got %v", tc.in, err)
		}
	}
}

func TestRoleIn(t *testing.T) {
	if !RoleUsher.In(RoleAdmin, RoleUsher) {
		t.Fatal("usher should be in {admin, usher}")
	}
	if RoleUsher.In(RoleFinance) {
		t.Fatal("usher should not be in {finance}")
	}
	if RoleUsher.In() {
		t.Fatal("no role is in the empty set")
	}
}

func TestNormalizeServiceType(t *testing.T) {
	if got := NormalizeServiceType("  Sunday Service "); got != "sunday service" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeServiceType("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestAttendanceValidate(t *testing.T) {
	if err := (Attendance{Date: "2024-05-05", ServiceType: "Sunday"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Attendance{
		{Date: "", ServiceType: "Sunday"},
		{Date: "05/05/2024", ServiceType: "Sunday"},
		{Date: "2024-02-30", ServiceType: "Sunday"},
		{Date: "2024-05-05", ServiceType: "  "},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGivingValidate(t *testing.T) {
	err := (Giving{Date: "2024-05-05", ServiceType: "   "}).Validate()
	if !errors.Is(err, ErrEmptyServiceType) {
		t.Fatalf("expected ErrEmptyServiceType, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "service_type" {
		t.Fatalf("expected ValidationError on service_type, got %#v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:          "2024-05-05",
		ServiceType:   "sunday",
		Category:      "utilities",
		Amount:        30,
		PaymentMethod: PaymentCash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	blank := good
	blank.ServiceType = " "
	err := blank.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Service Type is required for expense entry." {
		t.Fatalf("unexpected message %q", verr.Message)
	}

	bads := []func(*Expense){
		func(e *Expense) { e.Date = "" },
		func(e *Expense) { e.Category = "" },
		func(e *Expense) { e.PaymentMethod = "bitcoin" },
	}
	for i, mutate := range bads {
		e := good
		mutate(&e)
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestUserValidate(t *testing.T) {
	good := User{Name: "Mary", Email: "mary@church.com", Role: RoleFinance}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []User{
		{Name: "", Email: "a@b.c", Role: RoleAdmin},
		{Name: "A", Email: "", Role: RoleAdmin},
		{Name: "A", Email: "nope", Role: RoleAdmin},
		{Name: "A", Email: "a@b.c", Role: "bishop"},
	}
	for i, u := range bads {
		if err := u.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMemberValidate(t *testing.T) {
	if err := (Member{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Member{Name: "Ann", JoinedDate: "yesterday"}).Validate(); err == nil {
		t.Fatal("expected error for malformed joined date")
	}
	if err := (Member{Name: "Ann"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestClearRequestEmpty(t *testing.T) {
	if !(ClearRequest{Date: "2024-05-05"}).Empty() {
		t.Fatal("filters alone select nothing")
	}
	if (ClearRequest{Giving: true}).Empty() {
		t.Fatal("giving selected")
	}
}
