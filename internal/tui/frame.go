package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/truncate"

	"runview/internal/run"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Frame composes the full live view at the given width. It never panics: a
// failure inside frame composition degrades to the raw transcript so the run
// keeps rendering.
func (p *Presenter) Frame(width int) (frame string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			frame = p.buf.String()
		}
	}()

	if width < 40 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(p.titleLine(width))
	b.WriteString("\n")

	if p.input != "" && p.opts.Verbose {
		b.WriteString(p.theme.Muted.Render(truncate.StringWithTail("Input: "+p.input, uint(width), "…")))
		b.WriteString("\n")
	}
	if p.statusText != "" && !p.completed {
		b.WriteString(p.theme.Muted.Render(p.statusText))
		b.WriteString("\n")
	}

	if !p.buf.Empty() {
		b.WriteString("\n")
		b.WriteString(p.md.Render(run.NormalizeMarkdown(p.buf.String()), width))
		b.WriteString("\n")
	}

	if tree := p.stepTree(width); tree != "" {
		b.WriteString("\n")
		b.WriteString(tree)
	}

	for _, panel := range p.panels.Ordered() {
		b.WriteString("\n")
		b.WriteString(p.contextPanel(panel, width))
		b.WriteString("\n")
	}

	for _, id := range p.toolOrder {
		tp := p.toolPanels[id]
		if tp == nil {
			continue
		}
		b.WriteString("\n")
		b.WriteString(p.detailPanel(tp, width))
		b.WriteString("\n")
	}

	if p.completed {
		if footer := p.footerLine(); footer != "" {
			b.WriteString("\n")
			b.WriteString(footer)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// titleLine combines the header text with a busy indicator and live counts
// of running delegations and tools.
func (p *Presenter) titleLine(width int) string {
	header := p.headerText
	if header == "" {
		header = "run"
	}

	var marks []string
	if n := p.steps.RunningCount(run.KindDelegate); n > 0 {
		marks = append(marks, fmt.Sprintf("delegating (%d)", n))
	}
	if n := p.steps.RunningCount(run.KindTool); n > 0 {
		marks = append(marks, fmt.Sprintf("tools (%d)", n))
	}

	var indicator string
	if p.completed || !p.steps.HasRunning() {
		indicator = p.theme.StepFinished.Render(p.mark("✓", "ok"))
	} else {
		indicator = p.theme.Spinner.Render(p.spinner())
	}

	line := indicator + " " + p.theme.Title.Render(header)
	if len(marks) > 0 {
		line += " " + p.theme.Muted.Render("— "+strings.Join(marks, ", "))
	}
	return truncate.StringWithTail(line, uint(width), "…")
}

// spinner picks the frame from wall-clock time so the indicator rotates even
// between state changes.
func (p *Presenter) spinner() string {
	if p.opts.ReduceMotion {
		return spinnerFrames[0]
	}
	elapsed := time.Since(p.stats.StartedAt)
	return spinnerFrames[int(elapsed/spinnerInterval)%len(spinnerFrames)]
}

func (p *Presenter) mark(emoji, plain string) string {
	if p.opts.UseEmoji {
		return emoji
	}
	return plain
}

// stepTree renders the step registry: one line per step, children indented
// under their parents, args included in verbose mode.
func (p *Presenter) stepTree(width int) string {
	roots := p.steps.Roots()
	if len(roots) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.theme.PanelTitle.Render("Steps"))
	b.WriteString("\n")
	for _, id := range roots {
		p.writeStepLine(&b, id, 0, width)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Presenter) writeStepLine(b *strings.Builder, id string, depth, width int) {
	step := p.steps.Get(id)
	if step == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	bullet := "• "
	if depth > 0 {
		bullet = "└ "
	}
	style := p.theme.StepRunning
	if !step.Running() {
		style = p.theme.StepFinished
	}
	line := indent + bullet + p.steps.Summary(id, p.opts.Verbose)
	b.WriteString(style.Render(truncate.StringWithTail(line, uint(width), "…")))
	b.WriteString("\n")
	for _, child := range p.steps.Children(id) {
		p.writeStepLine(b, child, depth+1, width)
	}
}

func (p *Presenter) contextPanel(panel *run.Panel, width int) string {
	title := panel.Title
	if panel.Status == run.StatusRunning {
		title += " " + p.spinner()
	} else {
		title += " " + p.mark("✓", "(finished)")
	}
	body := p.md.Render(run.NormalizeMarkdown(panel.Buf.String()), width-4)
	content := p.theme.PanelTitle.Render(title) + "\n" + body
	return p.theme.Panel.Width(width - 2).Render(content)
}

func (p *Presenter) detailPanel(tp *toolPanel, width int) string {
	title := tp.title + " (" + tp.status + ")"
	body := strings.Join(tp.chunks, "\n")
	content := p.theme.PanelTitle.Render(title)
	if body != "" {
		content += "\n" + body
	}
	return p.theme.Panel.Width(width - 2).Render(content)
}

func (p *Presenter) footerLine() string {
	d, ok := p.stats.Duration()
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprintf("done in %s", d.Round(10*time.Millisecond))}
	for _, key := range []string{"input_tokens", "output_tokens", "cost"} {
		if v, ok := p.stats.Usage[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return p.theme.Footer.Render(strings.Join(parts, " · "))
}
