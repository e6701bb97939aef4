package tui

import (
	"fmt"
	"time"

	"github.com/tempoapp/tempo/internal/track"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewEntries
	viewProjects
	viewReports
)

var viewNames = []string{"Dashboard", "Entries", "Projects", "Reports"}

// --- Messages ---

type timerStartedMsg struct{}

type timerStoppedMsg struct {
	entry *track.TimeEntry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHoursMs(ms int64) string {
	return fmt.Sprintf("%.1fh", float64(ms)/3_600_000)
}

func sameDay(a, b time.Time) bool {
	al, bl := a.Local(), b.Local()
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// truncate shortens s to at most n runes, ending in "..." when cut.
// Counting runes keeps multi-byte text from being cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
