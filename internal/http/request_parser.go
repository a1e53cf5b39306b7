// Package http provides HTTP server and handler implementations.
//
// This file turns request forms and query strings into service inputs.
// Values are sanitized here; validation happens in the services.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"churchledger/internal/core"
	"churchledger/internal/services"
)

var errInvalidID = errors.New("invalid id")

// ParseMonthParam reads the month query parameter, defaulting to the month
// of now when absent.
func ParseMonthParam(query url.Values, now time.Time) (string, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.CurrentMonth(now), nil
	}
	return core.ParseMonth(v)
}

// ParseID reads a positive integer path value.
func ParseID(r *http.Request, name string) (int64, error) {
	return parsePositiveInt(r.PathValue(name))
}

func parsePositiveInt(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// FormValues copies the named fields, sanitized, for re-rendering a form.
func FormValues(form url.Values, fields ...string) url.Values {
	out := make(url.Values, len(fields))
	for _, f := range fields {
		out.Set(f, sanitizeInput(form.Get(f)))
	}
	return out
}

// formBool follows HTML checkbox semantics: any non-empty value other than
// an explicit false means checked.
func formBool(form url.Values, key string) bool {
	switch strings.ToLower(strings.TrimSpace(form.Get(key))) {
	case "", "0", "false", "off", "n", "no":
		return false
	}
	return true
}

var (
	attendanceFields = []string{"date", "service_type", "male", "female", "children"}
	givingFields     = []string{"date", "service_type", "tithe", "offering", "special"}
	expenseFields    = []string{"date", "service_type", "category", "amount", "payment_method", "description"}
	userFields       = []string{"name", "email", "role", "active"}
	memberFields     = []string{"name", "email", "phone", "joined_date"}
)

func attendanceInput(form url.Values) services.AttendanceInput {
	return services.AttendanceInput{
		Date:        sanitizeInput(form.Get("date")),
		ServiceType: sanitizeInput(form.Get("service_type")),
		Male:        sanitizeInput(form.Get("male")),
		Female:      sanitizeInput(form.Get("female")),
		Children:    sanitizeInput(form.Get("children")),
	}
}

func givingInput(form url.Values) services.GivingInput {
	return services.GivingInput{
		Date:        sanitizeInput(form.Get("date")),
		ServiceType: sanitizeInput(form.Get("service_type")),
		Tithe:       sanitizeInput(form.Get("tithe")),
		Offering:    sanitizeInput(form.Get("offering")),
		Special:     sanitizeInput(form.Get("special")),
	}
}

func expenseInput(form url.Values) services.ExpenseInput {
	return services.ExpenseInput{
		Date:          sanitizeInput(form.Get("date")),
		ServiceType:   sanitizeInput(form.Get("service_type")),
		Category:      sanitizeInput(form.Get("category")),
		Amount:        sanitizeInput(form.Get("amount")),
		PaymentMethod: sanitizeInput(form.Get("payment_method")),
		Description:   sanitizeInput(form.Get("description")),
	}
}

// userInput reads the user form. The status select posts "1" or "0" and
// defaults to active.
func userInput(form url.Values) services.UserInput {
	return services.UserInput{
		Name:     sanitizeInput(form.Get("name")),
		Email:    sanitizeInput(form.Get("email")),
		Password: form.Get("password"),
		Role:     sanitizeInput(form.Get("role")),
		Active:   strings.TrimSpace(form.Get("active")) != "0",
	}
}

func memberInput(form url.Values) services.MemberInput {
	return services.MemberInput{
		Name:       sanitizeInput(form.Get("name")),
		Email:      sanitizeInput(form.Get("email")),
		Phone:      sanitizeInput(form.Get("phone")),
		JoinedDate: sanitizeInput(form.Get("joined_date")),
	}
}

func clearRequest(form url.Values) core.ClearRequest {
	return core.ClearRequest{
		Attendance:  formBool(form, "delete_attendance"),
		Giving:      formBool(form, "delete_giving"),
		Expenses:    formBool(form, "delete_expenses"),
		Date:        sanitizeInput(form.Get("filter_date")),
		ServiceType: sanitizeInput(form.Get("filter_service_type")),
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *ResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Malformed form submission.")
	}
	return nil
}
