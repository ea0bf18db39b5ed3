package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/proximity-alarm/internal/display"
	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
	"github.com/oshokin/proximity-alarm/internal/logger"
)

// Raw readings injected by the n and f keys.
const (
	nearReading = 0
	farReading  = 5
)

// Controller is the part of the reactor service the UI drives.
type Controller interface {
	SetActive(ctx context.Context, active bool) error
	PushSample(ctx context.Context, raw float64) error
}

// stateMsg carries a new display revision.
type stateMsg proximity.DisplayState

// resultMsg reports the outcome of a controller call.
type resultMsg struct {
	// action names the call for the notice line.
	action string
	// err is nil on success.
	err error
}

// lifecycle orders activation requests. Commands run on their own
// goroutines, so each one applies the most recent request rather than
// the value it was created with.
type lifecycle struct {
	// apply serialises controller calls.
	apply sync.Mutex
	// desired is the latest requested state.
	desired atomic.Bool
}

// Model is the bubbletea model of the reactor screen.
type Model struct {
	// ctx bounds controller calls and carries the logger.
	ctx context.Context //nolint:containedctx // bubbletea commands run without a caller context.
	// controller receives lifecycle changes and injected samples.
	controller Controller
	// updates delivers display revisions.
	updates <-chan proximity.DisplayState
	// state is the last display revision received.
	state proximity.DisplayState
	// active mirrors the last lifecycle request.
	active bool
	// lifecycle is shared by every copy of the model.
	lifecycle *lifecycle
	// notice is the last controller error, empty when the last call succeeded.
	notice string
	// width is the terminal width.
	width int
}

// New creates a model reading revisions from updates.
func New(ctx context.Context, controller Controller, updates <-chan proximity.DisplayState) Model {
	return Model{
		ctx:        ctx,
		controller: controller,
		updates:    updates,
		state:      proximity.InitialDisplayState(),
		active:     true,
		lifecycle:  new(lifecycle),
	}
}

// Init activates the reactor and starts following the store.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.setActive(true))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = proximity.DisplayState(msg)

		return m, m.waitForState()
	case tea.FocusMsg:
		m.active = true

		return m, m.setActive(true)
	case tea.BlurMsg:
		m.active = false

		return m, m.setActive(false)
	case resultMsg:
		m.notice = ""
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s: %v", msg.action, msg.err)
		}

		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil
	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

// onKey handles keyboard shortcuts.
func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "p":
		m.active = !m.active

		return m, m.setActive(m.active)
	case "n":
		return m, m.push(nearReading)
	case "f":
		return m, m.push(farReading)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(m.state.Text))
	b.WriteString("\n")
	b.WriteString(pictureStyle.Render(picture(m.state.Image)))
	b.WriteString("\n\n")

	if m.active {
		b.WriteString(activeStyle.Render("● listening"))
	} else {
		b.WriteString(pausedStyle.Render("○ paused"))
	}

	if m.notice != "" {
		b.WriteString("  ")
		b.WriteString(noticeStyle.Render(m.notice))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n near · f far · p pause/resume · q quit"))

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}

	return b.String()
}

// waitForState blocks until the next display revision.
func (m Model) waitForState() tea.Cmd {
	updates := m.updates

	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}

		return stateMsg(state)
	}
}

// setActive records the request and returns a command applying the
// latest one. Out-of-order commands converge on the last request.
func (m Model) setActive(active bool) tea.Cmd {
	ctx, controller, requests := m.ctx, m.controller, m.lifecycle

	requests.desired.Store(active)

	return func() tea.Msg {
		requests.apply.Lock()
		defer requests.apply.Unlock()

		want := requests.desired.Load()

		action := "pause"
		if want {
			action = "resume"
		}

		err := controller.SetActive(ctx, want)
		if err != nil {
			logger.WarnKV(ctx, "Lifecycle change failed", "action", action, "error", err)
		}

		return resultMsg{action: action, err: err}
	}
}

// push injects a raw reading through the controller.
func (m Model) push(raw float64) tea.Cmd {
	ctx, controller := m.ctx, m.controller

	return func() tea.Msg {
		return resultMsg{action: "inject", err: controller.PushSample(ctx, raw)}
	}
}

// Run shows the UI until the user quits or ctx is canceled.
func Run(ctx context.Context, controller Controller, store *display.Store) error {
	updates, stop := store.Watch()
	defer stop()

	program := tea.NewProgram(
		New(ctx, controller, updates),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	return nil
}
