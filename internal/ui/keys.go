package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Search   key.Binding
	Status   key.Binding
	Category key.Binding
	Priority key.Binding
	Clear    key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Refresh  key.Binding
	Theme    key.Binding
	Quit     key.Binding

	SetPending    key.Binding
	SetInProgress key.Binding
	SetCompleted  key.Binding

	// Editor
	NextField key.Binding
	PrevField key.Binding
	Left      key.Binding
	Right     key.Binding
	AddTag    key.Binding
	DropTag   key.Binding
	Submit    key.Binding
	Cancel    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category filter")),
		Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		New:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		SetPending:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "pending")),
		SetInProgress: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "in progress")),
		SetCompleted:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),

		NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous option")),
		Right:     key.NewBinding(key.WithKeys("right", " "), key.WithHelp("→", "next option")),
		AddTag:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add tag")),
		DropTag:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "remove last tag")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// listHelp is the key summary shown under the task list.
func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.New, k.Edit, k.Delete, k.SetPending, k.SetInProgress, k.SetCompleted,
		k.Search, k.Status, k.Category, k.Priority, k.Clear, k.Refresh, k.Theme, k.Quit}
}

func (k keyMap) editorHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Right, k.AddTag, k.Submit, k.Cancel}
}
