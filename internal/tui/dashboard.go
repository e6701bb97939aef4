package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tempoapp/tempo/internal/track"
)

type dashboardModel struct {
	tracker *track.Tracker
	width   int
	height  int

	// Project picker state, used when no resume target exists and the
	// user has more than one project.
	picking      bool
	pickerCursor int
}

func newDashboardModel(tr *track.Tracker) dashboardModel {
	return dashboardModel{tracker: tr}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// View re-reads elapsed time from the tracker; nothing to do here.
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Toggle):
			return d.toggle()

		case key.Matches(msg, keys.Resume):
			if d.tracker.Running() {
				return d, nil
			}
			return d.toggle()
		}
	}
	return d, nil
}

func (d dashboardModel) toggle() (dashboardModel, tea.Cmd) {
	if d.tracker.Running() {
		d.tracker.Stop()
		entry := d.tracker.LastUsedEntry()
		return d, func() tea.Msg { return timerStoppedMsg{entry: entry} }
	}

	if d.tracker.CanResume() {
		d.tracker.Toggle()
		return d, func() tea.Msg { return timerStartedMsg{} }
	}

	projects := d.tracker.Projects().All()
	switch len(projects) {
	case 0:
		return d, func() tea.Msg {
			return statusMsg{text: "No projects yet. Press 3 to create one.", isError: true}
		}
	case 1:
		d.tracker.StartOnProject(projects[0].ID)
		return d, func() tea.Msg { return timerStartedMsg{} }
	default:
		d.picking = true
		d.pickerCursor = 0
		return d, nil
	}
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	projects := d.tracker.Projects().All()
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(projects)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(projects) {
			d.tracker.StartOnProject(projects[d.pickerCursor].ID)
			return d, func() tea.Msg { return timerStartedMsg{} }
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderTodayPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderProjectPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.tracker.Running() {
		timeDisplay := timerRunningStyle.Width(w - 6).Render(formatMs(d.tracker.ElapsedMs()))
		indicator := successStyle.Render("●  RUNNING")

		var projectLine string
		if entry := d.tracker.LastUsedEntry(); entry != nil {
			if p := d.tracker.Projects().ByID(entry.ProjectID); p != nil {
				projectLine = highlightStyle.Render(p.Name)
			}
			if entry.Note != "" {
				projectLine += mutedStyle.Render("  " + entry.Note)
			}
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			projectLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  STOPPED")

	hint := mutedStyle.Render("Press space to start tracking")
	if d.tracker.CanResume() {
		if entry := d.tracker.LastUsedEntry(); entry != nil && d.tracker.Projects().Exists(entry.ProjectID) {
			p := d.tracker.Projects().ByID(entry.ProjectID)
			hint = mutedStyle.Render("Press space to resume " + p.Name)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

// todayRow is one project's accumulated time for the current local day.
type todayRow struct {
	name    string
	totalMs int64
	count   int
}

func (d dashboardModel) todaySummary(now time.Time) ([]todayRow, int64) {
	perProject := map[int64]*todayRow{}
	var order []int64
	var total int64

	for _, e := range d.tracker.Entries().All() {
		if !sameDay(e.Start, now) {
			continue
		}
		ms := e.Duration
		if e.Active {
			ms += d.tracker.ElapsedMs()
		}
		total += ms
		row, ok := perProject[e.ProjectID]
		if !ok {
			name := "?"
			if p := d.tracker.Projects().ByID(e.ProjectID); p != nil {
				name = p.Name
			}
			row = &todayRow{name: name}
			perProject[e.ProjectID] = row
			order = append(order, e.ProjectID)
		}
		row.totalMs += ms
		row.count++
	}

	rows := make([]todayRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *perProject[id])
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].totalMs > rows[j].totalMs })
	return rows, total
}

func (d dashboardModel) renderTodayPanel(w int) string {
	summary, total := d.todaySummary(time.Now())

	title := titleStyle.Render("Today")
	header := fmt.Sprintf("%s  %s", title, highlightStyle.Render(formatMs(total)))

	if len(summary) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No entries today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, s := range summary {
		row := fmt.Sprintf("  %-20s %s  (%d entries)",
			s.name,
			formatMs(s.totalMs),
			s.count,
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")

	entries := d.tracker.Entries().All()
	if len(entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.After(entries[j].Start) })
	if len(entries) > 5 {
		entries = entries[:5]
	}

	var rows []string
	rows = append(rows, title)
	for _, e := range entries {
		pName := "?"
		if p := d.tracker.Projects().ByID(e.ProjectID); p != nil {
			pName = p.Name
		}
		dur := formatMs(e.Duration)
		status := "✓"
		if e.Active {
			status = "●"
			dur = "running"
		}
		row := fmt.Sprintf("  %s %s  %-16s %s", status, e.Start.Local().Format("15:04"), pName, dur)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderProjectPicker(w int) string {
	title := titleStyle.Render("Select Project")

	var rows []string
	rows = append(rows, title)
	for i, p := range d.tracker.Projects().All() {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+p.Name))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
