package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrPromptCancelled is returned when the user leaves a prompt with esc or
// ctrl+c.
var ErrPromptCancelled = errors.New("cancelled")

// PromptField is one line of a Prompt.
type PromptField struct {
	Label  string
	Value  string
	Secret bool
}

type promptModel struct {
	title     string
	labels    []string
	inputs    []textinput.Model
	focus     int
	done      bool
	cancelled bool
}

func newPrompt(title string, fields []PromptField) promptModel {
	m := promptModel{title: title}
	for _, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 40
		ti.SetValue(f.Value)
		ti.CursorEnd()
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, ti)
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.focus == len(m.inputs)-1 {
			m.done = true
			return m, tea.Quit
		}
		return m, m.move(1)
	case tea.KeyTab, tea.KeyDown:
		return m, m.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.move(-1)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return m, cmd
}

func (m *promptModel) move(step int) tea.Cmd {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = ((m.focus+step)%n + n) % n
	return m.inputs[m.focus].Focus()
}

func (m promptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	label := lipgloss.NewStyle().Width(10)
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.title))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		b.WriteString(label.Render(m.labels[i]) + " " + in.View() + "\n")
	}
	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render("enter next • esc cancel"))
	return b.String()
}

func (m promptModel) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

// Prompt asks for every field in one small form and returns the values in
// field order.
func Prompt(ctx context.Context, title string, fields []PromptField, opts ...tea.ProgramOption) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(newPrompt(title, fields), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrPromptCancelled
		}
		return nil, err
	}
	m := final.(promptModel)
	if m.cancelled {
		return nil, ErrPromptCancelled
	}
	return m.values(), nil
}
