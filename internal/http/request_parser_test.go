package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParam(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		want    string
		wantErr bool
	}{
		{name: "absent defaults to current month", query: url.Values{}, want: "2024-05"},
		{name: "blank defaults to current month", query: url.Values{"month": {"  "}}, want: "2024-05"},
		{name: "explicit month", query: url.Values{"month": {"2023-12"}}, want: "2023-12"},
		{name: "month name rejected", query: url.Values{"month": {"May"}}, wantErr: true},
		{name: "single digit month rejected", query: url.Values{"month": {"2024-5"}}, wantErr: true},
		{name: "month 13 rejected", query: url.Values{"month": {"2024-13"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParam(tt.query, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthParam() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMonthParam() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/members/x/toggle", nil)
			r.SetPathValue("id", tt.value)
			got, err := ParseID(r, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormValues(t *testing.T) {
	form := url.Values{
		"date":         {" 2024-05-05 "},
		"service_type": {"Sun\x00day"},
		"ignored":      {"x"},
	}
	got := FormValues(form, "date", "service_type", "male")

	if got.Get("date") != "2024-05-05" {
		t.Errorf("date = %q", got.Get("date"))
	}
	if got.Get("service_type") != "Sunday" {
		t.Errorf("service_type = %q", got.Get("service_type"))
	}
	if _, ok := got["male"]; !ok {
		t.Error("missing fields should still be present")
	}
	if _, ok := got["ignored"]; ok {
		t.Error("unlisted fields should be dropped")
	}
}

func TestFormBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{"off", false},
		{"y", true},
		{"on", true},
		{"1", true},
	}

	for _, tt := range tests {
		form := url.Values{"delete_giving": {tt.value}}
		if got := formBool(form, "delete_giving"); got != tt.want {
			t.Errorf("formBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestUserInput_ActiveDefault(t *testing.T) {
	if !userInput(url.Values{"name": {"A"}}).Active {
		t.Error("missing active field should default to active")
	}
	if userInput(url.Values{"active": {"0"}}).Active {
		t.Error(`active "0" should be inactive`)
	}
}

func TestClearRequest(t *testing.T) {
	req := clearRequest(url.Values{
		"delete_attendance":   {"y"},
		"delete_expenses":     {"on"},
		"filter_date":         {" 2024-05-05 "},
		"filter_service_type": {" SUNDAY "},
	})

	if !req.Attendance || req.Giving || !req.Expenses {
		t.Errorf("kinds = %+v", req)
	}
	if req.Date != "2024-05-05" || req.ServiceType != "SUNDAY" {
		t.Errorf("filters = %q %q", req.Date, req.ServiceType)
	}
}

func TestParseFormOrFail(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/giving", strings.NewReader("tithe=%zz"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := ParseFormOrFail(r)
	if resp == nil {
		t.Fatal("expected error response for malformed body")
	}
	rec := httptest.NewRecorder()
	resp.Write(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/giving", strings.NewReader("tithe=10"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := ParseFormOrFail(r); resp != nil {
		t.Error("valid form should parse")
	}
	if r.PostForm.Get("tithe") != "10" {
		t.Errorf("tithe = %q", r.PostForm.Get("tithe"))
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"line\nbreak", "line\nbreak"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleList(t *testing.T) {
	if got := titleList([]string{"attendance", "giving", "expenses"}); got != "Attendance, Giving, Expenses" {
		t.Errorf("titleList = %q", got)
	}
	if got := titleList(nil); got != "" {
		t.Errorf("titleList(nil) = %q", got)
	}
}
