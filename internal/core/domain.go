package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and form format of every ledger date.
const DateLayout = "2006-01-02"

const (
	RoleAdmin   Role = "admin"
	RolePastor  Role = "pastor"
	RoleUsher   Role = "usher"
	RoleFinance Role = "finance"
)

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCheque   PaymentMethod = "cheque"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleAdmin, RolePastor, RoleUsher, RoleFinance}

// PaymentMethods lists accepted expense payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer, PaymentCheque}

type (
	Role string

	PaymentMethod string

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		Role         Role
		Active       bool
	}

	Member struct {
		ID         int64
		Name       string
		Email      string
		Phone      string
		JoinedDate string
		Active     bool
	}

	Attendance struct {
		ID          int64
		Date        string
		ServiceType string
		Male        int
		Female      int
		Children    int
		Total       int
	}

	Giving struct {
		ID          int64
		Date        string
		ServiceType string
		Tithe       float64
		Offering    float64
		Special     float64
		EnteredBy   string
	}

	Expense struct {
		ID            int64
		Date          string
		ServiceType   string
		Category      string
		Amount        float64
		PaymentMethod PaymentMethod
		Description   string
		PaidBy        string
		Approved      bool
		ApprovedBy    string
	}
)

var (
	ErrEmptyDate            = errors.New("date is required")
	ErrInvalidDate          = errors.New("date must be in YYYY-MM-DD format")
	ErrEmptyServiceType     = errors.New("service type is required")
	ErrEmptyCategory        = errors.New("category is required")
	ErrEmptyName            = errors.New("name is required")
	ErrEmptyEmail           = errors.New("email is required")
	ErrInvalidEmail         = errors.New("email is invalid")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidMonth         = errors.New("month must be in YYYY-MM format")
)

// ValidationError marks a rejected submission. Handlers render Message to the user.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error, message string) error {
	if message == "" {
		message = strings.ToUpper(err.Error()[:1]) + err.Error()[1:] + "."
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// ParseRole maps a form value onto one of the fixed roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the four fixed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePastor, RoleUsher, RoleFinance:
		return true
	}
	return false
}

// In reports whether r is a member of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParsePaymentMethod accepts cash, transfer or cheque in any casing.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentTransfer, PaymentCheque:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

// NormalizeServiceType is the canonical form used for storage and matching.
func NormalizeServiceType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return invalid("date", ErrEmptyDate, "")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return invalid("date", ErrInvalidDate, "")
	}
	return nil
}

func (a Attendance) Validate() error {
	if err := ValidateDate(a.Date); err != nil {
		return err
	}
	if strings.TrimSpace(a.ServiceType) == "" {
		return invalid("service_type", ErrEmptyServiceType, "Service Type is required for attendance entry.")
	}
	return nil
}

// Total sums the three giving components.
func (g Giving) Total() float64 {
	return g.Tithe + g.Offering + g.Special
}

func (g Giving) Validate() error {
	if err := ValidateDate(g.Date); err != nil {
		return err
	}
	if NormalizeServiceType(g.ServiceType) == "" {
		return invalid("service_type", ErrEmptyServiceType, "Service Type is required for giving entry.")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := ValidateDate(e.Date); err != nil {
		return err
	}
	if NormalizeServiceType(e.ServiceType) == "" {
		return invalid("service_type", ErrEmptyServiceType, "Service Type is required for expense entry.")
	}
	if strings.TrimSpace(e.Category) == "" {
		return invalid("category", ErrEmptyCategory, "")
	}
	if _, err := ParsePaymentMethod(string(e.PaymentMethod)); err != nil {
		return invalid("payment_method", err, "Payment method must be cash, transfer or cheque.")
	}
	return nil
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return invalid("name", ErrEmptyName, "")
	}
	if m.JoinedDate != "" {
		if err := ValidateDate(m.JoinedDate); err != nil {
			return err
		}
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return invalid("name", ErrEmptyName, "")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return invalid("email", ErrEmptyEmail, "")
	}
	if at := strings.Index(email, "@"); at < 1 || at == len(email)-1 {
		return invalid("email", ErrInvalidEmail, "")
	}
	if !u.Role.Valid() {
		return invalid("role", ErrInvalidRole, "Role must be admin, pastor, usher or finance.")
	}
	return nil
}
