// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCompact formats a count with human-readable suffixes.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M"
func FormatCompact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatEuros formats a euro amount. Whole amounts from 100 up drop the cents.
func FormatEuros(amount float64) string {
	if amount < 0 {
		return "-" + FormatEuros(-amount)
	}
	if amount >= 100 {
		return "€" + FormatNumber(int64(math.Round(amount)))
	}
	return fmt.Sprintf("€%.2f", amount)
}

// FormatDays formats a duration as days and hours.
// e.g., 50h -> "2d 2h", 5h -> "5h"
func FormatDays(d time.Duration) string {
	if d <= 0 {
		return "0h"
	}
	hours := int64(d / time.Hour)
	days, rem := hours/24, hours%24

	switch {
	case days > 0 && rem > 0:
		return fmt.Sprintf("%dd %dh", days, rem)
	case days > 0:
		return fmt.Sprintf("%dd", days)
	default:
		return fmt.Sprintf("%dh", rem)
	}
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

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats the difference between two amounts with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatEuros(delta)
	}
	return "-" + FormatEuros(-delta)
}

// FormatDate formats a simulated timestamp for tables.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Mon 02 Jan 15:04")
}
