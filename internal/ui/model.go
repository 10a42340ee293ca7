// Package ui implements the interactive dashboard: the task list with its
// filters and stats, the task form, status quick-updates and notifications.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/notify"
	"taskdeck/internal/service"
	"taskdeck/internal/session"
	"taskdeck/internal/tasks"
)

// toastRefresh is how often expired notifications are pruned from view.
const toastRefresh = 500 * time.Millisecond

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

type (
	refreshedMsg struct{ err error }
	savedMsg     struct{ err error }
	statusMsg    struct {
		id  string
		err error
	}
	deletedMsg struct {
		id  string
		err error
	}
	tickMsg time.Time
)

// Options configures the dashboard.
type Options struct {
	Board   *tasks.Board
	Notes   *notify.Queue
	Session *session.Context

	// SaveTheme persists a theme change; nil keeps it for this run only.
	SaveTheme func(theme string) error

	// Now is the clock for due-date badges (for testing).
	Now func() time.Time
}

// Model is the dashboard's Bubble Tea model.
type Model struct {
	ctx       context.Context
	board     *tasks.Board
	notes     *notify.Queue
	sess      *session.Context
	saveTheme func(string) error
	now       func() time.Time

	keys    keyMap
	styles  styles
	theme   string
	mode    mode
	cursor  int
	search  textinput.Model
	form    *form
	spinner spinner.Model
	loading bool

	pendingDelete string
	width         int
	height        int
}

// New creates the dashboard model. ctx bounds every network call it makes.
func New(ctx context.Context, opts Options) Model {
	if opts.Notes == nil {
		opts.Notes = notify.NewQueue()
	}
	if opts.Session == nil {
		opts.Session = &session.Context{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	theme := opts.Session.Theme
	if theme != config.ThemeDark {
		theme = config.ThemeLight
	}

	search := textinput.New()
	search.Placeholder = "Search title or description"
	search.CharLimit = 100
	search.Width = 40
	search.Prompt = "/ "

	return Model{
		ctx:       ctx,
		board:     opts.Board,
		notes:     opts.Notes,
		sess:      opts.Session,
		saveTheme: opts.SaveTheme,
		now:       opts.Now,
		keys:      defaultKeys(),
		styles:    newStyles(theme),
		theme:     theme,
		search:    search,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading:   true,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.spinner.Tick, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.notes.Active()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.loading = false
		m.clampCursor()
		return m, nil

	case savedMsg:
		if m.form == nil {
			return m, nil
		}
		m.form.saving = false
		if msg.err == nil {
			m.form = nil
			m.mode = modeList
			m.clampCursor()
		} else if errors.Is(msg.err, tasks.ErrTitleRequired) {
			m.notes.Error(tasks.MsgTitleRequired)
		}
		return m, nil

	case statusMsg, deletedMsg:
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.board.Visible()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.board.Criteria().Search)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Status):
		c := m.board.Criteria()
		c.Status = cycleFilter(service.Statuses, c.Status)
		m.board.SetCriteria(c)
		m.clampCursor()
	case key.Matches(msg, m.keys.Category):
		c := m.board.Criteria()
		c.Category = cycleFilter(service.Categories, c.Category)
		m.board.SetCriteria(c)
		m.clampCursor()
	case key.Matches(msg, m.keys.Priority):
		c := m.board.Criteria()
		c.Priority = cycleFilter(service.Priorities, c.Priority)
		m.board.SetCriteria(c)
		m.clampCursor()
	case key.Matches(msg, m.keys.Clear):
		m.board.ClearFilters()
		m.search.SetValue("")
		m.clampCursor()

	case key.Matches(msg, m.keys.New):
		m.form = newForm(nil)
		m.mode = modeForm
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.form = newForm(&t)
			m.mode = modeForm
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.SetPending):
		return m.changeStatus(service.StatusPending)
	case key.Matches(msg, m.keys.SetInProgress):
		return m.changeStatus(service.StatusInProgress)
	case key.Matches(msg, m.keys.SetCompleted):
		return m.changeStatus(service.StatusCompleted)

	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.pendingDelete = t.ID
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.refreshCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.board.SetSearch(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.saving {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.form = nil
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m, m.form.update(m.keys, msg)
}

// submit validates synchronously so a rejected form never dispatches a save.
func (m Model) submit() (tea.Model, tea.Cmd) {
	ed := m.form.editor
	if _, err := ed.Input(); err != nil {
		m.notes.Error(tasks.Message(err))
		return m, nil
	}
	m.form.saving = true
	ctx, save := m.ctx, m.board.Saver(ed.TaskID())
	return m, tea.Batch(func() tea.Msg {
		return savedMsg{err: ed.Submit(ctx, save)}
	}, m.spinner.Tick)
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDelete
	m.pendingDelete = ""
	m.mode = modeList
	if !key.Matches(msg, m.keys.Confirm) || id == "" {
		return m, nil
	}
	ctx, board := m.ctx, m.board
	return m, func() tea.Msg {
		return deletedMsg{id: id, err: board.Delete(ctx, id)}
	}
}

func (m Model) changeStatus(next service.Status) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok || m.board.StatusBusy(t.ID) || t.Status == next {
		return m, nil
	}
	ctx, board, id := m.ctx, m.board, t.ID
	return m, tea.Batch(func() tea.Msg {
		return statusMsg{id: id, err: board.ChangeStatus(ctx, id, next)}
	}, m.spinner.Tick)
}

func (m *Model) toggleTheme() {
	if m.theme == config.ThemeDark {
		m.theme = config.ThemeLight
	} else {
		m.theme = config.ThemeDark
	}
	m.styles = newStyles(m.theme)
	m.sess.Theme = m.theme
	if m.saveTheme != nil {
		if err := m.saveTheme(m.theme); err != nil {
			logging.From(m.ctx).Warn("failed to save theme", "err", err)
		}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, board := m.ctx, m.board
	return func() tea.Msg {
		return refreshedMsg{err: board.Refresh(ctx)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(toastRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) selected() (service.Task, bool) {
	visible := m.board.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return service.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.board.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
