package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type refreshMsg struct{}
type displayDoneMsg struct{}
type tickMsg time.Time

// LiveDisplay owns the terminal. It runs a bubbletea program on its own
// goroutine; every cross-goroutine redraw request goes through program.Send,
// which is the only bridge into the owning loop.
type LiveDisplay struct {
	prog *tea.Program
}

// NewLiveDisplay builds the live display for a presenter. Run must be called
// on the goroutine that should own the terminal.
func NewLiveDisplay(p *Presenter, out io.Writer, opts Options) *LiveDisplay {
	model := liveModel{
		presenter: p,
		persist:   opts.PersistLive,
		interval:  tickInterval(opts),
		width:     80,
		height:    24,
		keys: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	// Key input comes from the terminal, never stdin: stdin may be the
	// event stream itself.
	prog := tea.NewProgram(model, tea.WithOutput(out), tea.WithInputTTY())
	return &LiveDisplay{prog: prog}
}

func tickInterval(opts Options) time.Duration {
	if opts.ReduceMotion {
		return 250 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// Run blocks until the run completes or the user quits.
func (d *LiveDisplay) Run() error {
	_, err := d.prog.Run()
	return err
}

// Refresh requests a repaint; safe from any goroutine.
func (d *LiveDisplay) Refresh() { d.prog.Send(refreshMsg{}) }

// Done tells the display the run is over.
func (d *LiveDisplay) Done() { d.prog.Send(displayDoneMsg{}) }

// Kill tears the program down without waiting; used on signal.
func (d *LiveDisplay) Kill() { d.prog.Kill() }

type liveModel struct {
	presenter *Presenter
	vp        viewport.Model
	keys      key.Binding

	width    int
	height   int
	ready    bool
	done     bool
	persist  bool
	interval time.Duration
	frame    string
}

func (m liveModel) Init() tea.Cmd {
	return m.tick()
}

func (m liveModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-1)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 1
		}
		m.repaint()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys) {
			return m, tea.Quit
		}
		if m.ready {
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		m.repaint()
		if m.done {
			return m, nil
		}
		return m, m.tick()

	case refreshMsg:
		m.repaint()
		return m, nil

	case displayDoneMsg:
		m.done = true
		m.repaint()
		if m.persist {
			return m, tea.Quit
		}
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)
	}
	return m, nil
}

func (m *liveModel) repaint() {
	m.frame = m.presenter.Frame(m.width)
	if m.ready {
		atBottom := m.vp.AtBottom()
		m.vp.SetContent(m.frame)
		if atBottom {
			m.vp.GotoBottom()
		}
	}
}

func (m liveModel) View() string {
	if !m.ready {
		return m.frame
	}
	return m.vp.View()
}
