package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the order summary beside
	// the service list.
	LayoutWideWidth = 130
)

// Activity view limits.
const (
	// LogTailLines is how many log lines the Activity view reads.
	LogTailLines = 200
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// CheckoutTimeout bounds each booking/payment API round trip.
	CheckoutTimeout = 20 * time.Second

	// StatusTTL is how long a transient status message stays in the header.
	StatusTTL = 5 * time.Second
)
