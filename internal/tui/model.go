// Package tui renders a live terminal view of a progress tree. It is a pure
// display adapter: it subscribes to a watcher's update streams and reads
// snapshots, never mutating the tree itself.
package tui

import (
	pbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/worktally/worktally/internal/observe"
	"github.com/worktally/worktally/internal/progress"
)

// taskState is the display state of one child tracker.
type taskState struct {
	key       string
	completed int64
	total     int64
	fraction  float64
}

// taggedUpdate routes a watcher update to the node it belongs to.
type taggedUpdate struct {
	key    string // empty for the root
	update observe.Update
}

// progressMsg delivers one taggedUpdate into the bubbletea loop.
type progressMsg taggedUpdate

// doneMsg signals that the simulated operation finished and the view should
// exit after the final frame.
type doneMsg struct{}

// Model is the bubbletea model for the progress display.
type Model struct {
	watcher   *observe.Watcher[string]
	operation string

	bar     pbar.Model
	tasks   []*taskState
	byKey   map[string]*taskState
	rootFra float64
	width   int
	done    bool

	updates chan taggedUpdate
	subs    []*observe.Subscription
}

// New builds a Model over the watcher, subscribing to the root's continuous
// fraction and to each task's fraction, completed, and total streams.
func New(w *observe.Watcher[string]) Model {
	m := Model{
		watcher: w,
		bar:     pbar.New(pbar.WithDefaultGradient()),
		byKey:   make(map[string]*taskState),
		width:   80,
		updates: make(chan taggedUpdate, 64),
	}

	if desc, ok := w.Tree().Metadata(progress.MetaDescription); ok {
		if s, isString := desc.(string); isString {
			m.operation = s
		}
	}

	for _, key := range w.Keys() {
		snap, ok := w.Child(key)
		if !ok {
			continue
		}
		state := &taskState{
			key:       key,
			completed: snap.Completed,
			total:     snap.Total,
			fraction:  snap.Fraction,
		}
		m.tasks = append(m.tasks, state)
		m.byKey[key] = state

		for _, prop := range []observe.Property{
			observe.PropertyFraction,
			observe.PropertyCompleted,
			observe.PropertyTotal,
		} {
			m.forward(key, w.WatchTask(key, prop))
		}
	}
	m.rootFra = w.Root().Fraction
	m.forward("", w.WatchRoot(observe.PropertyFraction))

	return m
}

// forward pumps one subscription into the merged update channel.
func (m *Model) forward(key string, sub *observe.Subscription) {
	m.subs = append(m.subs, sub)
	go func() {
		for u := range sub.Updates() {
			m.updates <- taggedUpdate{key: key, update: u}
		}
	}()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 10
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}

	case progressMsg:
		cmds := []tea.Cmd{waitForUpdate(m.updates)}
		if msg.key == "" {
			if msg.update.Property == observe.PropertyFraction {
				m.rootFra = msg.update.Fraction
				cmds = append(cmds, m.bar.SetPercent(clampFraction(m.rootFra)))
				if m.rootFra >= 1.0 && !m.done {
					m.done = true
					cmds = append(cmds, func() tea.Msg { return doneMsg{} })
				}
			}
		} else if state, ok := m.byKey[msg.key]; ok {
			switch msg.update.Property {
			case observe.PropertyFraction:
				state.fraction = msg.update.Fraction
			case observe.PropertyCompleted:
				state.completed = msg.update.Units
			case observe.PropertyTotal:
				state.total = msg.update.Units
			}
		}
		return m, tea.Batch(cmds...)

	case doneMsg:
		m.cancel()
		return m, tea.Quit

	case pbar.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(pbar.Model)
		return m, cmd
	}

	return m, nil
}

// waitForUpdate blocks for the next merged update.
func waitForUpdate(ch <-chan taggedUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(u)
	}
}

// cancel tears down every subscription. Delivery stops; the tree is
// untouched.
func (m *Model) cancel() {
	for _, sub := range m.subs {
		sub.Cancel()
	}
}

// Run starts the bubbletea program and blocks until the view exits.
func Run(w *observe.Watcher[string]) error {
	_, err := tea.NewProgram(New(w)).Run()
	return err
}
