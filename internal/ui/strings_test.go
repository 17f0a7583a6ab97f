package ui

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0"},
		{"1200", "$1.200"},
		{"1234.5", "$1.234,50"},
		{"1000000", "$1.000.000"},
		{"-15.25", "-$15,25"},
	}
	for _, tt := range tests {
		if got := formatMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("formatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Milanesa napolitana", 8); got != "Milanes…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Puré", 8); got != "Puré" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := padRight("Puré", 6); got != "Puré  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padLeft("7", 3); got != "  7" {
		t.Fatalf("padLeft = %q", got)
	}
}

func TestHumanizeSince(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{time.Second, "ahora"},
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
	}
	for _, tt := range tests {
		if got := humanizeSince(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("humanizeSince(%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := humanizeSince(time.Time{}, now); got != "nunca" {
		t.Errorf("zero time = %q", got)
	}
}

func TestFormatTimestampPassesThroughGarbage(t *testing.T) {
	if got := formatTimestamp("ayer"); got != "ayer" {
		t.Fatalf("formatTimestamp = %q", got)
	}
	if got := formatTimestamp(""); got != "" {
		t.Fatalf("formatTimestamp empty = %q", got)
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		total, selected, visible int
		start, end               int
	}{
		{5, 0, 10, 0, 5},
		{20, 0, 5, 0, 5},
		{20, 7, 5, 3, 8},
		{20, 19, 5, 15, 20},
	}
	for _, tt := range tests {
		start, end := scrollWindow(tt.total, tt.selected, tt.visible)
		if start != tt.start || end != tt.end {
			t.Errorf("scrollWindow(%d, %d, %d) = %d, %d", tt.total, tt.selected, tt.visible, start, end)
		}
	}
}
