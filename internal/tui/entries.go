package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/tempoapp/tempo/internal/track"
)

type entriesModel struct {
	tracker *track.Tracker
	width   int
	height  int

	cursor int

	// Note editor state
	formActive bool
	form       *huh.Form
	formNote   *string
	editingID  int64

	// Move-to-project picker state
	moving       bool
	movingID     int64
	pickerCursor int
}

func newEntriesModel(tr *track.Tracker) entriesModel {
	note := ""
	return entriesModel{
		tracker:  tr,
		formNote: &note,
	}
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m entriesModel) capturing() bool {
	return m.formActive || m.moving
}

// sorted returns entries newest first, the order the list renders in.
func (m entriesModel) sorted() []track.TimeEntry {
	entries := m.tracker.Entries().All()
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.After(entries[j].Start) })
	return entries
}

// enter is called when the view becomes active. A just-created entry is
// flagged for note editing exactly once; opening the editor consumes the
// flag.
func (m entriesModel) enter() (entriesModel, tea.Cmd) {
	for i, e := range m.sorted() {
		if e.AutoEdit {
			m.cursor = i
			m.tracker.Entries().ClearAutoEdit(e.ID)
			return m.showNoteForm(e.ID, e.Note)
		}
	}
	return m, nil
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.moving {
		return m.updateMovePicker(keyMsg)
	}

	entries := m.sorted()

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, keys.Resume), key.Matches(keyMsg, keys.Enter):
		if m.cursor < len(entries) {
			e := entries[m.cursor]
			if e.Active {
				return m, nil
			}
			if !m.tracker.Projects().Exists(e.ProjectID) {
				return m, func() tea.Msg {
					return statusMsg{text: "Project no longer exists", isError: true}
				}
			}
			m.tracker.ResumeEntry(e)
			return m, func() tea.Msg { return timerStartedMsg{} }
		}

	case key.Matches(keyMsg, keys.Delete):
		if m.cursor < len(entries) {
			e := entries[m.cursor]
			m.tracker.DeleteEntry(e.ID)
			if m.cursor >= len(entries)-1 {
				m.cursor = max(0, len(entries)-2)
			}
			return m, func() tea.Msg { return statusMsg{text: "Entry deleted"} }
		}

	case key.Matches(keyMsg, keys.Note):
		if m.cursor < len(entries) {
			e := entries[m.cursor]
			m.tracker.Entries().ClearAutoEdit(e.ID)
			return m.showNoteForm(e.ID, e.Note)
		}

	case key.Matches(keyMsg, keys.Move):
		if m.cursor < len(entries) && len(m.tracker.Projects().All()) > 0 {
			m.moving = true
			m.movingID = entries[m.cursor].ID
			m.pickerCursor = 0
		}
	}
	return m, nil
}

func (m entriesModel) updateMovePicker(msg tea.KeyMsg) (entriesModel, tea.Cmd) {
	projects := m.tracker.Projects().All()
	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < len(projects)-1 {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.moving = false
		if m.pickerCursor < len(projects) {
			p := projects[m.pickerCursor]
			m.tracker.ChangeEntryProject(m.movingID, p.ID)
			return m, func() tea.Msg {
				return statusMsg{text: "Moved to " + p.Name}
			}
		}
	case key.Matches(msg, keys.Back):
		m.moving = false
	}
	return m, nil
}

func (m entriesModel) showNoteForm(id int64, note string) (entriesModel, tea.Cmd) {
	*m.formNote = note
	m.editingID = id

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Note").Value(m.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		note := *m.formNote
		m.tracker.Entries().Update(m.editingID, func(e *track.TimeEntry) {
			e.Note = note
		})
		return m, nil
	}

	return m, cmd
}

func (m entriesModel) view() string {
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Edit Note"), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	w := m.width - 4

	if m.moving {
		return m.renderMovePicker(w)
	}

	title := titleStyle.Render("Entries")
	entries := m.sorted()

	if len(entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No entries yet. Start the timer on the dashboard."),
		)
		return panelStyle.Width(w).Render(content)
	}

	visible := min(len(entries), max(1, m.height-6))

	// Keep the cursor in the window.
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(entries), start+visible)

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i := start; i < end; i++ {
		e := entries[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		pName := "?"
		if p := m.tracker.Projects().ByID(e.ProjectID); p != nil {
			pName = p.Name
		}

		dur := formatMs(e.Duration)
		status := " "
		if e.Active {
			status = successStyle.Render("●")
			dur = formatMs(e.Duration + m.tracker.ElapsedMs())
		}

		note := truncate(e.Note, 24)

		row := style.Render(fmt.Sprintf("%s%s %s  %-16s %8s", cursor, status,
			e.Start.Local().Format("Jan 02 15:04"), pName, dur))
		if note != "" {
			row += mutedStyle.Render("  " + note)
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  r/enter: resume  e: note  m: move  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m entriesModel) renderMovePicker(w int) string {
	title := titleStyle.Render("Move Entry To")

	var rows []string
	rows = append(rows, title)
	for i, p := range m.tracker.Projects().All() {
		cursor := "  "
		style := normalItemStyle
		if i == m.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+p.Name))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
