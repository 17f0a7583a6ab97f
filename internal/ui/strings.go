package ui

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// truncate shortens a string to limit runes, adding an ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// padRight pads value with spaces to width runes, truncating when longer.
func padRight(value string, width int) string {
	value = truncate(value, width)
	if n := width - len([]rune(value)); n > 0 {
		return value + strings.Repeat(" ", n)
	}
	return value
}

// padLeft right-aligns value in width runes.
func padLeft(value string, width int) string {
	value = truncate(value, width)
	if n := width - len([]rune(value)); n > 0 {
		return strings.Repeat(" ", n) + value
	}
	return value
}

// formatMoney renders an amount in pesos with thousands separators:
// 1234.5 -> "$1.234,50".
func formatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String()
	if frac != "00" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// formatTimestamp renders an API timestamp as local "02/01 15:04". Values
// that do not parse are returned as-is.
func formatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("02/01 15:04")
}

// humanizeSince renders how long ago t was in a compact form.
func humanizeSince(t, now time.Time) string {
	if t.IsZero() {
		return "nunca"
	}
	d := now.Sub(t)
	switch {
	case d < 5*time.Second:
		return "ahora"
	case d < time.Minute:
		return itoa(int(d/time.Second)) + "s"
	case d < time.Hour:
		return itoa(int(d/time.Minute)) + "m"
	default:
		return itoa(int(d/time.Hour)) + "h"
	}
}
