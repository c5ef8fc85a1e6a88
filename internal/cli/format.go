// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCompact formats an amount with human-readable suffixes.
// e.g., 1234 -> "1.2K", 465700 -> "465.7K", 1234567 -> "1.2M"
func FormatCompact(n float64) string {
	abs := math.Abs(n)

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", n/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", n/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", n/1_000)
	default:
		return strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	}
}

// FormatMoney formats a currency amount with thousands separators and at
// most two decimals, trailing zeros dropped.
// e.g., 92500 -> "$92,500", -1234.5 -> "-$1,234.5"
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + FormatMoney(-v)
	}
	v = math.Round(v*100) / 100
	whole := math.Trunc(v)
	s := "$" + FormatNumber(int64(whole))

	frac := math.Round((v - whole) * 100)
	if frac == 0 {
		return s
	}
	return s + "." + strings.TrimRight(fmt.Sprintf("%02d", int(frac)), "0")
}

// FormatMoneyShort formats a currency amount compactly: "$465.7K".
func FormatMoneyShort(v float64) string {
	if v < 0 {
		return "-$" + FormatCompact(-v)
	}
	return "$" + FormatCompact(v)
}

// FormatSignedMoney prefixes a "+" on non-negative amounts.
func FormatSignedMoney(v float64) string {
	if v >= 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatMonths formats a runway length in months with one decimal.
// Non-finite or negative values mean the company is not burning cash.
func FormatMonths(m float64) string {
	if math.IsInf(m, 0) || math.IsNaN(m) || m < 0 {
		return "not burning"
	}
	return fmt.Sprintf("%.1f months", m)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatChange formats a percentage change that is already on a 0-100
// scale, with an explicit sign: "+12%", "-3.5%".
func FormatChange(pct float64) string {
	s := strconv.FormatFloat(math.Abs(pct), 'f', -1, 64)
	if pct < 0 {
		return "-" + s + "%"
	}
	return "+" + s + "%"
}

// FormatDate formats a date as a short month and day: "Jul 3".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2")
}
