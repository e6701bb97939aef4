package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tempoapp/tempo/internal/config"
	"github.com/tempoapp/tempo/internal/track"
)

// barPalette colors chart segments by project, cycling when projects
// outnumber colors.
var barPalette = []lipgloss.Color{
	"#7C6CF0", "#34C77B", "#F2A33C", "#7AA2F7", "#E05555", "#2EC4B6", "#9B59B6", "#E8889C",
}

type reportsModel struct {
	tracker *track.Tracker
	cfg     *config.Config
	width   int
	height  int

	offset int // weeks back from the current one (0 = current)

	chart barchart.Model
}

func newReportsModel(tr *track.Tracker, cfg *config.Config) reportsModel {
	return reportsModel{
		tracker: tr,
		cfg:     cfg,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.rebuild()
}

// weekRange returns the half-open [start, end) of the week r.offset weeks
// back. The week boundary follows the configured week end day.
func (r reportsModel) weekRange(now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Day after the week end is the week start.
	weekStart := time.Monday
	if r.cfg != nil && r.cfg.WeekEndsOn == "saturday" {
		weekStart = time.Sunday
	}

	back := int(today.Weekday() - weekStart)
	if back < 0 {
		back += 7
	}
	start := today.AddDate(0, 0, -back-7*r.offset)
	return start, start.AddDate(0, 0, 7)
}

// dayTotal is one project's time within a single day of the report window.
type dayTotal struct {
	day       time.Time
	projectID int64
	totalMs   int64
	count     int
}

func (r reportsModel) summarize() []dayTotal {
	from, to := r.weekRange(time.Now())

	type dayKey struct {
		day       string
		projectID int64
	}
	totals := map[dayKey]*dayTotal{}
	var order []dayKey

	for _, e := range r.tracker.Entries().All() {
		start := e.Start.Local()
		if start.Before(from) || !start.Before(to) {
			continue
		}
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		k := dayKey{day: day.Format("2006-01-02"), projectID: e.ProjectID}
		t, ok := totals[k]
		if !ok {
			t = &dayTotal{day: day, projectID: e.ProjectID}
			totals[k] = t
			order = append(order, k)
		}
		ms := e.Duration
		if e.Active {
			ms += r.tracker.ElapsedMs()
		}
		t.totalMs += ms
		t.count++
	}

	out := make([]dayTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Left):
		r.offset++
		r.rebuild()
	case key.Matches(keyMsg, keys.Right):
		if r.offset > 0 {
			r.offset--
			r.rebuild()
		}
	case key.Matches(keyMsg, keys.Week):
		if r.cfg.WeekEndsOn == "saturday" {
			r.cfg.WeekEndsOn = "sunday"
		} else {
			r.cfg.WeekEndsOn = "saturday"
		}
		r.rebuild()
		day := r.cfg.WeekEndsOn
		if err := r.cfg.Save(); err != nil {
			return r, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Could not save config: %v", err), isError: true}
			}
		}
		return r, func() tea.Msg {
			return statusMsg{text: "Week now ends on " + day}
		}
	}
	return r, nil
}

// projectStyle assigns each project a stable palette color by its position
// in the project list.
func (r reportsModel) projectStyle(projectID int64) lipgloss.Style {
	for i, p := range r.tracker.Projects().All() {
		if p.ID == projectID {
			return lipgloss.NewStyle().Foreground(barPalette[i%len(barPalette)])
		}
	}
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func (r *reportsModel) rebuild() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.weekRange(time.Now())
	summaries := r.summarize()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		var values []barchart.BarValue
		for _, s := range summaries {
			if !s.day.Equal(d) {
				continue
			}
			name := "?"
			if p := r.tracker.Projects().ByID(s.projectID); p != nil {
				name = p.Name
			}
			values = append(values, barchart.BarValue{
				Name:  name,
				Value: float64(s.totalMs) / 3_600_000,
				Style: r.projectStyle(s.projectID),
			})
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	from, to := r.weekRange(time.Now())
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Week"), "  ", dateLabel,
	)

	chartView := r.chart.View()
	tableView := r.renderSummaryTable(w)
	legend := r.renderLegend()
	nav := mutedStyle.Render("  ←/→: previous / next week  w: week ends " + r.cfg.WeekEndsOn)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	summaries := r.summarize()
	if len(summaries) == 0 {
		return mutedStyle.Render("  No data for this week")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %8s", "Date", "Project", "Duration", "Entries"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	var weekTotal int64
	for _, s := range summaries {
		weekTotal += s.totalMs
		name := "?"
		if p := r.tracker.Projects().ByID(s.projectID); p != nil {
			name = p.Name
		}
		dot := r.projectStyle(s.projectID).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %8d",
			s.day.Format("2006-01-02"), dot, name, formatMs(s.totalMs), s.count,
		))
	}

	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s", "Total", " ", "", formatMs(weekTotal)))

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[int64]bool)
	var items []string
	for _, s := range r.summarize() {
		if seen[s.projectID] {
			continue
		}
		seen[s.projectID] = true
		name := "?"
		if p := r.tracker.Projects().ByID(s.projectID); p != nil {
			name = p.Name
		}
		items = append(items, r.projectStyle(s.projectID).Render("●")+" "+name)
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
