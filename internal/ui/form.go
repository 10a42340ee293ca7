package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldDueDate
	fieldPriority
	fieldStatus
	fieldCategory
	fieldTags
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Due date", "Priority", "Status", "Category", "Tags"}

// form binds text inputs to a tasks.Editor. The editor owns the values; the
// inputs only hold what is being typed.
type form struct {
	editor *tasks.Editor
	focus  field
	saving bool

	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	tag         textinput.Model
}

func newForm(t *service.Task) *form {
	ed := tasks.NewEditor(t)
	vals := ed.Form()

	f := &form{
		editor:      ed,
		title:       newInput("What needs to be done?", 200),
		description: newInput("Details (optional)", 1000),
		due:         newInput("YYYY-MM-DD (optional)", 10),
		tag:         newInput("Type a tag and press enter", 40),
	}
	f.title.SetValue(vals.Title)
	f.description.SetValue(vals.Description)
	f.due.SetValue(vals.DueDate)
	f.title.CursorEnd()
	f.description.CursorEnd()
	f.due.CursorEnd()
	f.title.Focus()
	return f
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	return ti
}

func (f *form) input(fl field) *textinput.Model {
	switch fl {
	case fieldTitle:
		return &f.title
	case fieldDescription:
		return &f.description
	case fieldDueDate:
		return &f.due
	case fieldTags:
		return &f.tag
	default:
		return nil
	}
}

func (f *form) setFocus(fl field) tea.Cmd {
	if in := f.input(f.focus); in != nil {
		in.Blur()
	}
	f.focus = (fl + fieldCount) % fieldCount
	if in := f.input(f.focus); in != nil {
		return in.Focus()
	}
	return nil
}

// update handles a key while the form is open. Submit and cancel are handled
// by the model.
func (f *form) update(keys keyMap, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.NextField):
		return f.setFocus(f.focus + 1)
	case key.Matches(msg, keys.PrevField):
		return f.setFocus(f.focus - 1)
	}

	if f.focus == fieldPriority || f.focus == fieldStatus || f.focus == fieldCategory {
		step := 0
		switch {
		case key.Matches(msg, keys.Right):
			step = 1
		case key.Matches(msg, keys.Left):
			step = -1
		}
		if step != 0 {
			f.cycle(step)
		}
		return nil
	}

	if f.focus == fieldTags {
		switch {
		case key.Matches(msg, keys.AddTag):
			f.editor.AddTag(f.tag.Value())
			f.tag.SetValue("")
			return nil
		case key.Matches(msg, keys.DropTag) && f.tag.Value() == "":
			if tags := f.editor.Form().Tags; len(tags) > 0 {
				f.editor.RemoveTag(tags[len(tags)-1])
			}
			return nil
		}
	}

	in := f.input(f.focus)
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	switch f.focus {
	case fieldTitle:
		f.editor.SetTitle(in.Value())
	case fieldDescription:
		f.editor.SetDescription(in.Value())
	case fieldDueDate:
		f.editor.SetDueDate(in.Value())
	}
	return cmd
}

func (f *form) cycle(step int) {
	vals := f.editor.Form()
	switch f.focus {
	case fieldPriority:
		f.editor.SetPriority(cycleValue(service.Priorities, vals.Priority, step))
	case fieldStatus:
		f.editor.SetStatus(cycleValue(service.Statuses, vals.Status, step))
	case fieldCategory:
		f.editor.SetCategory(cycleValue(service.Categories, vals.Category, step))
	}
}

// cycleValue returns the option step places from cur, wrapping around.
func cycleValue[T comparable](options []T, cur T, step int) T {
	i := 0
	for j, o := range options {
		if o == cur {
			i = j
			break
		}
	}
	n := len(options)
	return options[((i+step)%n+n)%n]
}

// cycleFilter steps through "" (any) followed by every option.
func cycleFilter[T comparable](options []T, cur T) T {
	var zero T
	if cur == zero {
		return options[0]
	}
	for j, o := range options {
		if o == cur {
			if j+1 < len(options) {
				return options[j+1]
			}
			return zero
		}
	}
	return zero
}
