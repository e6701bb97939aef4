package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/tempoapp/tempo/internal/track"
)

type projectsModel struct {
	tracker *track.Tracker
	width   int
	height  int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "rename"

	// Form field pointer (survives value copies)
	formName *string

	editingID int64
}

func newProjectsModel(tr *track.Tracker) projectsModel {
	name := ""
	return projectsModel{
		tracker:  tr,
		formName: &name,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	projects := p.tracker.Projects().All()

	switch {
	case key.Matches(keyMsg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if p.cursor < len(projects)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, keys.MoveUp):
		if p.cursor > 0 {
			p.tracker.Projects().Reorder(p.cursor, p.cursor-1)
			p.cursor--
		}
	case key.Matches(keyMsg, keys.MoveDn):
		if p.cursor < len(projects)-1 {
			p.tracker.Projects().Reorder(p.cursor, p.cursor+1)
			p.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return p.showProjectForm("new", 0, "")
	case key.Matches(keyMsg, keys.Note):
		if p.cursor < len(projects) {
			proj := projects[p.cursor]
			return p.showProjectForm("rename", proj.ID, proj.Name)
		}
	case key.Matches(keyMsg, keys.Delete):
		if p.cursor < len(projects) {
			proj := projects[p.cursor]
			wasRunning := p.tracker.Running()
			p.tracker.DeleteProject(proj.ID)
			if p.cursor >= len(projects)-1 {
				p.cursor = max(0, len(projects)-2)
			}
			text := fmt.Sprintf("Deleted %s and its entries", proj.Name)
			if wasRunning && !p.tracker.Running() {
				text += " (timer stopped)"
			}
			return p, func() tea.Msg { return statusMsg{text: text} }
		}
	}
	return p, nil
}

func (p projectsModel) showProjectForm(formType string, id int64, name string) (projectsModel, tea.Cmd) {
	*p.formName = name
	p.formType = formType
	p.editingID = id

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		switch p.formType {
		case "new":
			proj := p.tracker.Projects().Add(*p.formName)
			return p, func() tea.Msg {
				return statusMsg{text: "Created " + proj.Name}
			}
		case "rename":
			p.tracker.Projects().Rename(p.editingID, *p.formName)
		}
		return p, nil
	}

	return p, cmd
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "rename" {
			title = titleStyle.Render("Rename Project")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	w := p.width - 4
	title := titleStyle.Render("Projects")

	projects := p.tracker.Projects().All()
	if len(projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	runningProjectID := int64(0)
	if p.tracker.Running() {
		if entry := p.tracker.LastUsedEntry(); entry != nil {
			runningProjectID = entry.ProjectID
		}
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, proj := range projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := " "
		if proj.ID == runningProjectID {
			marker = successStyle.Render("●")
		}
		count := len(p.tracker.Entries().ForProject(proj.ID))
		row := style.Render(fmt.Sprintf("%s%s %-24s", cursor, marker, proj.Name)) +
			mutedStyle.Render(fmt.Sprintf(" %d entries", count))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: rename  d: delete  K/J: reorder"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
