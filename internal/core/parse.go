package core

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ParseCount parses a head count. Blank or malformed input yields 0.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ParseAmount parses a monetary amount. Blank, malformed or non-finite
// input yields 0.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseMonth validates a YYYY-MM month token.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 {
		return "", ErrInvalidMonth
	}
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", ErrInvalidMonth
	}
	return s, nil
}

// CurrentMonth returns now as a YYYY-MM token.
func CurrentMonth(now time.Time) string {
	return now.Format("2006-01")
}

// FormatMoney renders v with two decimals and comma thousands separators,
// e.g. 1234.5 -> "1,234.50" and -0.5 -> "-0.50".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	digits := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	whole, frac, _ := strings.Cut(digits, ".")

	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return digits
	}
	out := humanize.BigComma(n) + "." + frac
	if v < 0 && out != "0.00" {
		return "-" + out
	}
	return out
}
