package run

import "strings"

// Panel is the independent transcript kept for one execution context: the
// root run or one delegated sub-worker.
type Panel struct {
	ContextID string
	Title     string
	Kind      string
	Status    string
	Buf       *TextAccumulator
}

// PanelTracker lazily creates panels keyed by context id and tracks their
// lifecycle. Panels are independent of each other; only creation order is
// remembered for display.
type PanelTracker struct {
	panels map[string]*Panel
	order  []string
	bufCap int
}

// NewPanelTracker creates a tracker whose panels use the given buffer cap.
func NewPanelTracker(bufCap int) *PanelTracker {
	return &PanelTracker{panels: map[string]*Panel{}, bufCap: bufCap}
}

// Ensure returns the panel for a context id, creating it on first use.
// Title and kind only apply at creation time.
func (t *PanelTracker) Ensure(contextID, title, kind string) *Panel {
	if p, ok := t.panels[contextID]; ok {
		return p
	}
	if title == "" {
		title = contextID
	}
	p := &Panel{
		ContextID: contextID,
		Title:     title,
		Kind:      kind,
		Status:    StatusRunning,
		Buf:       NewTextAccumulator(t.bufCap),
	}
	t.panels[contextID] = p
	t.order = append(t.order, contextID)
	return p
}

// Get returns the panel for a context id, or nil.
func (t *PanelTracker) Get(contextID string) *Panel {
	return t.panels[contextID]
}

// MarkFinished marks one panel finished. Unknown ids are ignored.
func (t *PanelTracker) MarkFinished(contextID string) {
	if p, ok := t.panels[contextID]; ok {
		p.Status = StatusFinished
	}
}

// FinishAll marks every panel finished; used at run completion.
func (t *PanelTracker) FinishAll() {
	for _, p := range t.panels {
		p.Status = StatusFinished
	}
}

// Ordered returns panels in creation order.
func (t *PanelTracker) Ordered() []*Panel {
	out := make([]*Panel, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.panels[id])
	}
	return out
}

// Len returns the number of tracked panels.
func (t *PanelTracker) Len() int { return len(t.order) }

// delegationMarkers are the naming conventions that identify a tool as a
// hand-off to a sub-worker.
var delegationMarkers = []string{
	"delegate",
	"spawn",
	"sub_agent",
	"sub-agent",
	"subagent",
	"handoff",
}

// IsDelegation classifies a tool name as a delegation by case-insensitive
// substring matching against a short allow-list. Empty names never are.
func IsDelegation(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, marker := range delegationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SplitWorkerTag splits a leading bracketed worker tag off a delegation
// output: "[math_specialist] The answer" -> ("math_specialist",
// "The answer", true). Outputs without the tag are ordinary tool output.
func SplitWorkerTag(output string) (worker, rest string, ok bool) {
	s := strings.TrimSpace(output)
	if !strings.HasPrefix(s, "[") {
		return "", "", false
	}
	end := strings.Index(s, "]")
	if end <= 1 {
		return "", "", false
	}
	worker = strings.TrimSpace(s[1:end])
	if worker == "" {
		return "", "", false
	}
	return worker, strings.TrimSpace(s[end+1:]), true
}

// DelegationContextID derives the synthetic context id a delegation's output
// is routed to.
func DelegationContextID(parentContext, toolName string) string {
	return parentContext + "_delegation_" + toolName
}
