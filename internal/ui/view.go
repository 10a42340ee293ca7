package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/notify"
	"taskdeck/internal/output"
	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

const progressWidth = 30

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	if m.mode == modeForm && m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		b.WriteString(m.renderHelp(m.keys.editorHelp()))
	} else {
		b.WriteString(m.renderFilters())
		b.WriteString("\n\n")
		b.WriteString(m.renderTaskList())
		b.WriteString("\n")
		if m.mode == modeConfirmDelete {
			if t, ok := m.board.Task(m.pendingDelete); ok {
				b.WriteString(m.styles.errorText.Render(fmt.Sprintf("Delete %q? y/n", t.Title)))
				b.WriteString("\n")
			}
		}
		b.WriteString(m.renderHelp(m.keys.listHelp()))
	}

	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n\n")
		b.WriteString(toasts)
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.title.Render("taskdeck")
	user := ""
	if m.sess.User.Name != "" {
		user = m.styles.muted.Render("  Welcome back, " + m.sess.User.Name)
	}
	busy := ""
	if m.loading {
		busy = "  " + m.spinner.View()
	}
	return title + user + busy
}

func (m Model) renderStats() string {
	s := m.board.Stats()
	card := func(label string, value int) string {
		return m.styles.card.Render(m.styles.muted.Render(label) + "\n" + m.styles.cardValue.Render(fmt.Sprint(value)))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Tasks", s.Total),
		card("Completed", s.Completed),
		card("In Progress", s.InProgress),
		card("Overdue", s.Overdue),
	)
	rate := fmt.Sprintf("Pending %d   Completion %s  %s", s.Pending, output.FormatRate(s.CompletionRate), m.progressBar(s.CompletionRate))
	return cards + "\n" + rate
}

func (m Model) progressBar(rate float64) string {
	filled := int(math.Round(rate / 100 * progressWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	return m.styles.bar.Render(strings.Repeat("█", filled)) +
		m.styles.barEmpty.Render(strings.Repeat("░", progressWidth-filled))
}

func (m Model) renderFilters() string {
	c := m.board.Criteria()
	show := func(label, value string) string {
		if value == "" {
			value = "All"
		}
		return m.styles.muted.Render(label+": ") + value
	}
	parts := []string{
		show("Status", string(c.Status)),
		show("Category", string(c.Category)),
		show("Priority", string(c.Priority)),
	}
	search := m.search.View()
	if m.mode != modeSearch {
		search = show("Search", c.Search)
	}
	out := strings.Join(parts, "   ") + "\n" + search
	if c.Active() {
		out += m.styles.muted.Render(fmt.Sprintf("   (%d of %d tasks)", len(m.board.Visible()), len(m.board.Tasks())))
	}
	return out
}

func (m Model) renderTaskList() string {
	visible := m.board.Visible()
	if len(visible) == 0 {
		if m.board.Criteria().Active() {
			return m.styles.muted.Render("No tasks match the current filters. Press x to clear them.")
		}
		if m.loading {
			return m.styles.muted.Render("Loading tasks...")
		}
		return m.styles.muted.Render("No tasks yet. Press a to add one.")
	}

	now := m.now()
	var b strings.Builder
	for i, t := range visible {
		cursor := "  "
		rowStyle := m.styles.row
		if i == m.cursor {
			cursor = "> "
			rowStyle = m.styles.selected
		}

		status := string(m.board.DisplayedStatus(t.ID))
		if m.board.StatusBusy(t.ID) {
			status = m.spinner.View() + status
		}
		title := t.Title
		if t.Status == service.StatusCompleted {
			title = m.styles.completed.Render(title)
		} else {
			title = rowStyle.Render(title)
		}

		line := cursor + fmt.Sprintf("%-13s ", status) + title + "  " +
			m.priorityStyle(t.Priority).Render(string(t.Priority)) + "  " +
			m.styles.muted.Render(string(t.Category))

		switch output.Badge(t, now) {
		case output.BadgeOverdue:
			line += "  " + m.styles.overdue.Render("Overdue")
		case output.BadgeDueSoon:
			line += "  " + m.styles.dueSoon.Render("Due Soon")
		}
		if t.DueDate != nil {
			line += "  " + m.styles.muted.Render("due "+t.DueDate.Format(service.DateLayout))
		}
		if tags := output.TagSummary(t.Tags); tags != "" {
			line += "  " + m.styles.tag.Render(tags)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == m.cursor && strings.TrimSpace(t.Description) != "" {
			b.WriteString("    " + m.styles.muted.Render(t.Description) + "\n")
		}
		if i == m.cursor && t.WasEdited() && !t.UpdatedAt.IsZero() {
			b.WriteString("    " + m.styles.muted.Render("Updated "+t.UpdatedAt.Format(output.TimestampLayout)) + "\n")
		}
	}
	return b.String()
}

func (m Model) priorityStyle(p service.Priority) lipgloss.Style {
	if s, ok := m.styles.priority[p]; ok {
		return s
	}
	return m.styles.row
}

func (m Model) renderForm() string {
	f := m.form
	vals := f.editor.Form()

	heading := "Create New Task"
	if !f.editor.IsNew() {
		heading = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(heading))
	b.WriteString("\n\n")
	for fl := field(0); fl < fieldCount; fl++ {
		label := m.styles.label.Render(fieldLabels[fl])
		if fl == f.focus {
			label = m.styles.focused.Render(fieldLabels[fl])
		}
		var value string
		switch fl {
		case fieldTitle:
			value = f.title.View()
		case fieldDescription:
			value = f.description.View()
		case fieldDueDate:
			value = f.due.View()
		case fieldPriority:
			value = selector(string(vals.Priority), fl == f.focus)
		case fieldStatus:
			value = selector(string(vals.Status), fl == f.focus)
		case fieldCategory:
			value = selector(string(vals.Category), fl == f.focus)
		case fieldTags:
			tags := make([]string, 0, len(vals.Tags))
			for _, t := range vals.Tags {
				tags = append(tags, m.styles.tag.Render("#"+t))
			}
			value = strings.Join(tags, " ")
			if value != "" {
				value += " "
			}
			value += f.tag.View()
		}
		b.WriteString(label + " " + value + "\n")
	}

	if f.saving {
		b.WriteString("\n" + m.spinner.View() + " Saving...")
	} else if err := f.editor.Err(); err != nil {
		b.WriteString("\n" + m.styles.errorText.Render(tasks.Message(err)))
	}
	return m.styles.form.Render(b.String())
}

func selector(value string, focused bool) string {
	if focused {
		return "< " + value + " >"
	}
	return value
}

func (m Model) renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.help.Render(strings.Join(parts, " • "))
}

func (m Model) renderToasts() string {
	var lines []string
	for _, n := range m.notes.Active() {
		style := m.styles.toastOK
		if n.Kind == notify.KindError {
			style = m.styles.toastErr
		}
		lines = append(lines, style.Render(n.Text))
	}
	return strings.Join(lines, "\n")
}
