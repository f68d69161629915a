// Package tui renders a live terminal view of one streaming agent run:
// header, transcript, step tree, and per-context panels, refreshed while
// events arrive. State lives in internal/run; this package only decides what
// and when to draw.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"runview/internal/run"
)

// Options is the presenter configuration surface.
type Options struct {
	Verbose        bool
	Theme          string
	UseEmoji       bool
	PersistLive    bool
	HeaderRules    bool
	ShowToolPanels bool
	ReduceMotion   bool
	MaxSteps       int
	BufferCap      int
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		Theme:       string(ThemeDark),
		UseEmoji:    true,
		PersistLive: true,
	}
}

// WithEnv applies RUNVIEW_* environment overrides on top of o.
func (o Options) WithEnv() Options {
	if v := os.Getenv("RUNVIEW_THEME"); v != "" {
		o.Theme = v
	}
	if boolEnv("RUNVIEW_VERBOSE") {
		o.Verbose = true
	}
	if boolEnv("RUNVIEW_NO_EMOJI") {
		o.UseEmoji = false
	}
	if v := os.Getenv("RUNVIEW_PERSIST_LIVE"); v == "0" || strings.EqualFold(v, "false") {
		o.PersistLive = false
	}
	if boolEnv("RUNVIEW_HEADER_RULES") {
		o.HeaderRules = true
	}
	if boolEnv("RUNVIEW_TOOL_PANELS") {
		o.ShowToolPanels = true
	}
	if boolEnv("RUNVIEW_REDUCE_MOTION") {
		o.ReduceMotion = true
	}
	return o
}

func boolEnv(name string) bool {
	v := os.Getenv(name)
	return v == "1" || strings.EqualFold(v, "true")
}

// Display is the live output surface the presenter drives. Refresh may be
// called from any goroutine; implementations marshal to their owning
// goroutine themselves.
type Display interface {
	Refresh()
	Done()
}

// toolPanel is the optional per-invocation detail panel for delegated tool
// calls.
type toolPanel struct {
	title  string
	status string
	chunks []string
}

// Presenter owns all run state and turns incoming events into frame updates.
// OnStart, OnEvent, and OnComplete are safe to call from any goroutine.
type Presenter struct {
	mu sync.Mutex

	opts  Options
	theme Theme
	md    *MarkdownRenderer

	steps  *run.StepRegistry
	buf    *run.TextAccumulator
	panels *run.PanelTracker
	stats  *run.RunStats

	toolPanels map[string]*toolPanel
	toolOrder  []string

	headerText    string
	lastHeader    string
	statusText    string
	input         string
	rootContextID string

	started   bool
	completed bool

	ruleOut io.Writer
	display Display
}

// NewPresenter creates a presenter with the given options (after env
// overrides, see Options.WithEnv).
func NewPresenter(opts Options) *Presenter {
	theme := NewTheme(opts.Theme)
	return &Presenter{
		opts:       opts,
		theme:      theme,
		md:         NewMarkdownRenderer(theme),
		steps:      run.NewStepRegistry(opts.MaxSteps),
		buf:        run.NewTextAccumulator(opts.BufferCap),
		panels:     run.NewPanelTracker(opts.BufferCap),
		stats:      run.NewRunStats(),
		toolPanels: map[string]*toolPanel{},
		ruleOut:    io.Discard,
	}
}

// SetDisplay attaches the live output surface. A nil display is valid; the
// presenter then only accumulates state (used headless and in tests).
func (p *Presenter) SetDisplay(d Display) {
	p.mu.Lock()
	p.display = d
	p.mu.Unlock()
}

// SetRuleWriter directs header rule lines to w (they are printed outside the
// live area).
func (p *Presenter) SetRuleWriter(w io.Writer) {
	p.mu.Lock()
	if w != nil {
		p.ruleOut = w
	}
	p.mu.Unlock()
}

// SetRootContext pins the root context id instead of inferring it from the
// first content event.
func (p *Presenter) SetRootContext(contextID string) {
	p.mu.Lock()
	p.rootContextID = contextID
	p.mu.Unlock()
}

// OnStart enters the started state and records header information.
func (p *Presenter) OnStart(meta run.StartMeta) {
	p.mu.Lock()
	p.started = true
	p.completed = false
	p.stats = run.NewRunStats()
	p.input = meta.Input

	var b strings.Builder
	if p.opts.UseEmoji {
		b.WriteString("🤖 ")
	}
	name := meta.AgentName
	if name == "" {
		name = "agent"
	}
	b.WriteString(name)
	if meta.Model != "" {
		b.WriteString(" · ")
		b.WriteString(meta.Model)
	}
	if meta.RunID != "" {
		b.WriteString(" · run ")
		b.WriteString(meta.RunID)
	}
	p.headerText = b.String()
	p.printHeaderOnce(p.headerText)
	p.mu.Unlock()
	p.requestRefresh()
}

// printHeaderOnce emits a separator rule for the header text, at most once
// per distinct text. Caller holds the lock.
func (p *Presenter) printHeaderOnce(text string) {
	if text == p.lastHeader {
		return
	}
	p.lastHeader = text
	if !p.opts.HeaderRules {
		return
	}
	rule := p.theme.HeaderRule.Render(strings.Repeat("─", 8) + " " + text)
	fmt.Fprintln(p.ruleOut, rule)
}

// OnEvent dispatches one decoded event. Unrecognized and artifact events are
// swallowed without mutating state; nothing here panics outward.
func (p *Presenter) OnEvent(ev run.Event) {
	p.mu.Lock()
	switch ev.Kind {
	case run.EventToolStart:
		for _, call := range ev.Calls {
			p.startCall(ev.TaskID, ev.ContextID, call)
		}
	case run.EventToolFinish:
		p.finishCall(ev)
	case run.EventContent:
		p.appendContent(ev.ContextID, ev.Content)
	case run.EventStatus:
		p.statusText = ev.Status
	case run.EventArtifact, run.EventUnrecognized:
		// Acknowledged and discarded.
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.requestRefresh()
}

func stepKindFor(name string) string {
	if run.IsDelegation(name) {
		return run.KindDelegate
	}
	return run.KindTool
}

func (p *Presenter) startCall(taskID, contextID string, call run.ToolCall) {
	kind := stepKindFor(call.Name)
	step := p.steps.StartOrGet(taskID, contextID, kind, call.Name, "", call.Args)
	if p.opts.ShowToolPanels && kind == run.KindDelegate {
		p.toolPanels[step.ID] = &toolPanel{
			title:  "Tool: " + call.Name,
			status: run.StatusRunning,
		}
		p.toolOrder = append(p.toolOrder, step.ID)
	}
}

func (p *Presenter) finishCall(ev run.Event) {
	kind := stepKindFor(ev.Name)
	step := p.steps.Finish(ev.TaskID, ev.ContextID, kind, ev.Name, ev.Output, ev.DurationSec)

	if tp, ok := p.toolPanels[step.ID]; ok {
		tp.status = run.StatusFinished
		if ev.Output != "" {
			tp.chunks = append(tp.chunks, run.PrettyOut(ev.Output, 400))
		}
	}

	// Delegation routing: a leading "[worker] " tag sends the remainder to
	// the delegation's own context panel instead of the parent transcript.
	if kind == run.KindDelegate {
		if worker, rest, ok := run.SplitWorkerTag(ev.Output); ok {
			panel := p.panels.Ensure(run.DelegationContextID(ev.ContextID, ev.Name), worker, run.KindDelegate)
			panel.Buf.Append(rest)
		}
	}
}

func (p *Presenter) appendContent(contextID, content string) {
	if p.rootContextID == "" {
		p.rootContextID = contextID
	}
	if contextID == "" || contextID == p.rootContextID {
		p.buf.Append(content)
		return
	}
	panel := p.panels.Ensure(contextID, "", run.KindDelegate)
	panel.Buf.Append(content)
}

// OnComplete appends the trailing chunk, finishes every panel, stops the
// clock, and performs one last render.
func (p *Presenter) OnComplete(final string, stats *run.RunStats) {
	p.mu.Lock()
	p.buf.Append(final)
	p.panels.FinishAll()
	for _, tp := range p.toolPanels {
		tp.status = run.StatusFinished
	}
	if stats != nil {
		p.stats = stats
	}
	p.stats.Stop()
	p.completed = true
	d := p.display
	p.mu.Unlock()

	if d != nil {
		d.Refresh()
		d.Done()
	}
}

func (p *Presenter) requestRefresh() {
	p.mu.Lock()
	d := p.display
	p.mu.Unlock()
	if d != nil {
		d.Refresh()
	}
}

// Completed reports whether the run has finished.
func (p *Presenter) Completed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// Transcript returns the raw root transcript text.
func (p *Presenter) Transcript() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

// PanelText returns the raw transcript of a context panel, or "".
func (p *Presenter) PanelText(contextID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if panel := p.panels.Get(contextID); panel != nil {
		return panel.Buf.String()
	}
	return ""
}

// Steps exposes the registry for frame composition and tests.
func (p *Presenter) Steps() *run.StepRegistry {
	return p.steps
}
