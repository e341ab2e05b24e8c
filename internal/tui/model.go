// Package tui is the live view: a ticking timer with an editable label, the
// log list and a totals row.
package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/tracker"
)

type tickMsg time.Time

type eventMsg tracker.Event

type doneMsg struct {
	op  tracker.Operation
	err error
}

// Model renders the tracker and turns key presses into tracker operations.
type Model struct {
	tracker *tracker.Tracker
	config  *config.Config

	state    domain.TimerState
	elapsed  time.Duration
	logs     []domain.LogEntry
	summary  domain.Summary
	stale    tracker.StaleCaches
	selected int
	status   string
	width    int
}

// NewModel creates a model showing tr's current state.
func NewModel(tr *tracker.Tracker, cfg *config.Config) *Model {
	m := &Model{
		tracker: tr,
		config:  cfg,
		width:   80,
	}
	m.sync()
	return m
}

// Run shows the live view until the user quits or ctx is cancelled.
func Run(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, opts ...tea.ProgramOption) error {
	m := NewModel(tr, cfg)
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)...)

	// Events can fire from inside Update (label edits), so never block the loop.
	tr.SetObserver(func(e tracker.Event) {
		go p.Send(eventMsg(e))
	})
	defer tr.SetObserver(nil)

	_, err := p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.config.Sync.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.sync()
		return m, m.tick()
	case eventMsg:
		if msg.Kind == tracker.EventFailed {
			m.report(msg.Op, msg.Err)
		}
		m.sync()
		return m, nil
	case doneMsg:
		if msg.err != nil {
			m.report(msg.op, msg.err)
		}
		m.sync()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

// sync copies the tracker's state into the model.
func (m *Model) sync() {
	m.state = m.tracker.State()
	m.elapsed = m.tracker.Elapsed()
	m.logs = m.tracker.Logs()
	m.summary = m.tracker.Summary()
	m.stale = m.tracker.Stale()
	if m.selected >= len(m.logs) {
		m.selected = max(len(m.logs)-1, 0)
	}
}

func (m *Model) report(op tracker.Operation, err error) {
	m.status = fmt.Sprintf("%s: %s", op, errors.GetUserMessage(err))
}

func (m *Model) running() (domain.Running, bool) {
	r, ok := m.state.(domain.Running)
	return r, ok
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		if _, ok := m.running(); ok {
			return m, m.end()
		}
		return m, m.start()
	case tea.KeyCtrlE:
		return m, m.end()
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case tea.KeyDown:
		if m.selected < len(m.logs)-1 {
			m.selected++
		}
		return m, nil
	case tea.KeyCtrlD, tea.KeyDelete:
		return m, m.deleteSelected()
	case tea.KeyCtrlR:
		return m, m.refresh()
	case tea.KeyBackspace:
		if r, ok := m.running(); ok && r.Label != "" {
			runes := []rune(r.Label)
			m.editLabel(string(runes[:len(runes)-1]))
		}
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		if r, ok := m.running(); ok {
			m.editLabel(r.Label + printable(msg.Runes))
			return m, nil
		}
		return m.handleIdleKey(msg.String())
	}
	return m, nil
}

// handleIdleKey maps single-letter commands, which only apply while no label is being typed.
func (m *Model) handleIdleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "s":
		return m, m.start()
	case "d":
		return m, m.deleteSelected()
	case "r":
		return m, m.refresh()
	case "k":
		return m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyUp})
	case "j":
		return m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	}
	return m, nil
}

func printable(runes []rune) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, string(runes))
}

func (m *Model) editLabel(label string) {
	if err := m.tracker.EditLabel(label); err != nil {
		m.report(tracker.OpLabel, err)
		return
	}
	m.status = ""
	m.sync()
}

// run performs a tracker operation off the event loop.
func (m *Model) run(op tracker.Operation, fn func(ctx context.Context) error) tea.Cmd {
	m.status = ""
	timeout := m.config.Sync.RemoteTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return doneMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) start() tea.Cmd {
	return m.run(tracker.OpStart, m.tracker.Start)
}

func (m *Model) end() tea.Cmd {
	return m.run(tracker.OpEnd, func(ctx context.Context) error {
		_, err := m.tracker.End(ctx)
		return err
	})
}

func (m *Model) deleteSelected() tea.Cmd {
	if m.selected >= len(m.logs) {
		return nil
	}
	key := m.logs[m.selected].Key
	return m.run(tracker.OpDeleteLog, func(ctx context.Context) error {
		return m.tracker.DeleteLog(ctx, key)
	})
}

func (m *Model) refresh() tea.Cmd {
	return m.run(tracker.OpRefresh, func(ctx context.Context) error {
		if err := m.tracker.RefreshActiveTimer(ctx); err != nil {
			return err
		}
		return m.tracker.RefreshLogs(ctx)
	})
}
