package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tempoapp/tempo/internal/backup"
	"github.com/tempoapp/tempo/internal/config"
	"github.com/tempoapp/tempo/internal/track"
)

// App is the root Bubble Tea model.
type App struct {
	tracker *track.Tracker
	cfg     *config.Config
	width   int
	height  int

	activeView viewState
	showHelp   bool
	ticking    bool

	dashboard dashboardModel
	entries   entriesModel
	projects  projectsModel
	reports   reportsModel

	help   help.Model
	status string
}

func NewApp(tr *track.Tracker, cfg *config.Config) App {
	h := help.New()
	h.ShowAll = false

	return App{
		tracker:    tr,
		cfg:        cfg,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(tr),
		entries:    newEntriesModel(tr),
		projects:   newProjectsModel(tr),
		reports:    newReportsModel(tr, cfg),
		help:       h,
	}
}

// Run launches the TUI.
func Run(tr *track.Tracker, cfg *config.Config) error {
	p := tea.NewProgram(NewApp(tr, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	// A timer left running by the previous session resumes ticking.
	if a.tracker.Running() {
		a.ticking = true
		return tickCmd()
	}
	return nil
}

// tickCmd drives the elapsed-time display. It is re-armed only while the
// timer runs, so the tick stops as soon as the timer does.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.entries.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// If a child view is capturing input (form or picker), delegate.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			return a, a.doExport()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewEntries
			var cmd tea.Cmd
			a.entries, cmd = a.entries.enter()
			return a, cmd
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProjects
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			a.reports.rebuild()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			switch a.activeView {
			case viewEntries:
				var cmd tea.Cmd
				a.entries, cmd = a.entries.enter()
				return a, cmd
			case viewReports:
				a.reports.rebuild()
			}
			return a, nil
		}

	case tickMsg:
		if !a.tracker.Running() {
			a.ticking = false
			return a, nil
		}
		return a, tickCmd()

	case timerStartedMsg:
		a.status = "Timer started"
		if !a.ticking {
			a.ticking = true
			return a, tickCmd()
		}
		return a, nil

	case timerStoppedMsg:
		if msg.entry != nil {
			a.status = "Stopped at " + formatMs(msg.entry.Duration)
		} else {
			a.status = "Timer stopped"
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewEntries:
		a.entries, cmd = a.entries.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewEntries:
		return a.entries.capturing()
	case viewProjects:
		return a.projects.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewEntries:
		content = a.entries.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tempo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	if a.tracker.Running() {
		timerInfo = successStyle.Render(" ● " + formatMs(a.tracker.ElapsedMs()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) doExport() tea.Cmd {
	tr := a.tracker
	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		path := filepath.Join(home, fmt.Sprintf("tempo-backup-%s.json", time.Now().Format("2006-01-02")))
		if err := backup.Export(tr, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
