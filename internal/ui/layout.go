package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which secondary columns are
	// dropped.
	LayoutCompactWidth = 90

	// LayoutChartsSideBySide is the minimum width to place the dashboard
	// charts next to each other.
	LayoutChartsSideBySide = 140
)

const (
	// DefaultUIInterval is how often the screen re-reads the stores.
	DefaultUIInterval = 500 * time.Millisecond

	// LogTailLines is how many log lines the Logs view reads.
	LogTailLines = 2000

	// chromeLines is the space taken by header, tabs, status and footer.
	chromeLines = 4
)
