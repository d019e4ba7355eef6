// Package tui is the terminal chat client. It drives the same chat controller
// as the browser page and draws the transcript and the pending field with
// bubbletea.
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashureev/agentchat/internal/agentapi"
	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/convlog"
	"github.com/ashureev/agentchat/internal/domain"
	"github.com/ashureev/agentchat/internal/widget"
)

// Options configures a terminal session.
type Options struct {
	Logger          *slog.Logger
	ConversationLog convlog.Logger
}

// Messages for tea updates.
type (
	viewMsg   chat.View
	scrollMsg struct{}
	doneMsg   struct{ err error }
)

// Model is the bubbletea model for one conversation.
type Model struct {
	ctx     context.Context
	ctrl    *chat.Controller
	changes chan tea.Msg

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   styles

	view      chat.View
	control   *widget.Control
	selection *widget.Selection
	cursor    int
	alert     string
	busy      bool

	width  int
	height int
	ready  bool
}

// New starts a session against backend and returns its model. ctx bounds
// every agent call.
func New(ctx context.Context, backend agentapi.Backend, opts Options) Model {
	changes := make(chan tea.Msg, 32)
	push := func(msg tea.Msg) {
		select {
		case changes <- msg:
		default:
		}
	}

	ctrl := chat.NewController(backend, chat.Options{
		Logger:          opts.Logger,
		ConversationLog: opts.ConversationLog,
		Channel:         "tui",
		OnChange:        func(v chat.View) { push(viewMsg(v)) },
		OnScroll:        func() { push(scrollMsg{}) },
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		changes: changes,
		input:   ti,
		spinner: sp,
		styles:  defaultStyles(),
	}
	ctrl.Start()
	m.apply(ctrl.Snapshot())
	return m
}

// Init starts the cursor, the spinner and the controller listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.listen(),
	)
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.changes:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-headerHeight-footerHeight, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		}
		m.input.Width = max(msg.Width-4, 1)
		m.refresh()
		return m, nil

	case viewMsg:
		m.apply(chat.View(msg))
		return m, m.listen()

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, m.listen()

	case doneMsg:
		m.busy = false
		m.apply(m.ctrl.Snapshot())
		if msg.err != nil {
			m.alert = chat.Describe(msg.err, m.view.Notice)
			if m.view.Notice != "" {
				m.ctrl.DismissNotice()
			}
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy && !m.view.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.busy || m.view.Loading {
		return m, nil
	}
	if m.selection != nil {
		return m.handleOptionKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		m.alert = ""
		if m.control != nil {
			return m.answer(widget.Build(m.view.Field, []string{m.input.Value()}))
		}
		text := m.input.Value()
		m.input.Reset()
		return m.send(func(ctx context.Context) error {
			return m.ctrl.SubmitText(ctx, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleOptionKey drives a checkbox or radio list: up/down move, space
// toggles and enter submits. Enter on a radio list picks the highlighted
// option.
func (m Model) handleOptionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.selection.Options()
	switch msg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case tea.KeySpace:
		if len(options) > 0 {
			m.selection.Toggle(options[m.cursor])
		}
	case tea.KeyEnter:
		m.alert = ""
		if !m.control.Multiple && len(options) > 0 {
			m.selection.Toggle(options[m.cursor])
		}
		return m.answer(widget.BuildSelection(m.view.Field, m.selection))
	}
	m.refresh()
	return m, nil
}

// answer submits a built field answer. Validation errors are shown without
// contacting the agent.
func (m Model) answer(value domain.InputField, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.alert = chat.Describe(err, "")
		m.refresh()
		return m, nil
	}
	return m.send(func(ctx context.Context) error {
		return m.ctrl.SubmitField(ctx, value)
	})
}

// send runs fn off the update loop and keeps the spinner going meanwhile.
func (m Model) send(fn func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx := m.ctx
	return m, tea.Batch(
		func() tea.Msg { return doneMsg{err: fn(ctx)} },
		m.spinner.Tick,
	)
}

// apply adopts a controller snapshot. A new interrupt resets the field
// controls.
func (m *Model) apply(v chat.View) {
	grew := len(v.History) != len(m.view.History)
	newField := v.InterruptID != m.view.InterruptID
	m.view = v

	if newField {
		m.control, m.selection, m.cursor = nil, nil, 0
		m.input.Reset()
		m.input.CharLimit = 0
		if v.Field != nil {
			if control, err := widget.For(v.Field); err == nil {
				m.control = &control
				m.selection = widget.NewSelection(control)
				m.input.CharLimit = control.MaxLength
			}
		}
	}

	m.input.Placeholder = v.Placeholder
	if m.control != nil && m.control.Placeholder != "" {
		m.input.Placeholder = m.control.Placeholder
	}

	m.refresh()
	if grew {
		m.viewport.GotoBottom()
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// Run starts the terminal client and blocks until the user quits or ctx is
// done.
func Run(ctx context.Context, backend agentapi.Backend, opts Options) error {
	p := tea.NewProgram(New(ctx, backend, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
