package ui

import (
	"strconv"
	"time"
)

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which secondary columns are hidden.
	LayoutCompactWidth = 100

	// LayoutSummaryWidth is the minimum width to show the shift summary
	// beside the orders table.
	LayoutSummaryWidth = 140
)

// Timing constants.
const (
	// DefaultUIInterval is how often the header and toasts refresh.
	DefaultUIInterval = time.Second

	// ToastDuration is how long a notification stays on screen.
	ToastDuration = 4 * time.Second

	// MutationTimeout bounds a single write issued from the UI.
	MutationTimeout = 15 * time.Second
)

// Activity view limits.
const (
	// ActivityLineLimit is how many log lines the activity view keeps.
	ActivityLineLimit = 500
)

func itoa(n int) string { return strconv.Itoa(n) }
