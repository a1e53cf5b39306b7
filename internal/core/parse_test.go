package core

import (
	"math"
	"testing"
	"time"
)

func TestParseCount(t *testing.T) {
	cases := map[string]int{
		"10":  10,
		" 8 ": 8,
		"":    0,
		"abc": 0,
		"3.5": 0,
		"1e3": 0,
		"007": 7,
	}
	for in, want := range cases {
		if got := ParseCount(in); got != want {
			t.Errorf("ParseCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"100":   100,
		"50.25": 50.25,
		" 0.5 ": 0.5,
		"":      0,
		"ten":   0,
		"1,000": 0,
		"NaN":   0,
		"+Inf":  0,
	}
	for in, want := range cases {
		if got := ParseAmount(in); got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	if got, err := ParseMonth("2024-05"); err != nil || got != "2024-05" {
		t.Fatalf("ParseMonth valid = %q, %v", got, err)
	}
	for _, bad := range []string{"", "2024-5", "2024-13", "May 2024", "2024-05%", "2024-05-01"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Errorf("ParseMonth(%q) expected error", bad)
		}
	}
}

func TestCurrentMonth(t *testing.T) {
	now := time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC)
	if got := CurrentMonth(now); got != "2024-05" {
		t.Fatalf("CurrentMonth = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{120, "120.00"},
		{150.5, "150.50"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-0.5, "-0.50"},
		{-1234, "-1,234.00"},
		{999.999, "1,000.00"},
		{math.Copysign(0, -1), "0.00"},
		{-0.001, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
