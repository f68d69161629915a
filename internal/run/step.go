// Package run holds the state model for one streaming agent execution:
// step identity and matching, transcript buffers, per-context panels,
// delegation routing, and run statistics. Everything here is a pure state
// container; presentation lives in internal/tui.
package run

import (
	"fmt"
	"strings"
	"time"
)

// Step statuses. A step only ever moves running -> finished.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Step kinds tracked by the registry.
const (
	KindTool     = "tool"
	KindDelegate = "delegate"
)

// DefaultMaxSteps bounds how many steps the registry remembers.
const DefaultMaxSteps = 200

// Step is one tracked unit of work: a tool call or a delegation.
type Step struct {
	ID        string
	Kind      string
	Name      string
	Status    string
	Args      map[string]any
	Output    string
	ParentID  string
	TaskID    string
	ContextID string
	StartedAt time.Time

	// DurationMS is -1 until the step finishes.
	DurationMS int64
}

func newStep(id, kind, name string) *Step {
	return &Step{
		ID:         id,
		Kind:       kind,
		Name:       name,
		Status:     StatusRunning,
		Args:       map[string]any{},
		StartedAt:  time.Now(),
		DurationMS: -1,
	}
}

// Finish marks the step finished. durationSec is the duration reported by the
// event source in seconds; pass a negative value to fall back to wall-clock
// time since the step started. Finishing an already finished step is a no-op.
func (s *Step) Finish(output string, durationSec float64) {
	if s.Status == StatusFinished {
		return
	}
	s.Status = StatusFinished
	s.Output = output
	if durationSec >= 0 {
		s.DurationMS = int64(durationSec * 1000)
	} else {
		ms := time.Since(s.StartedAt).Milliseconds()
		if ms < 1 {
			ms = 1
		}
		s.DurationMS = ms
	}
}

// Running reports whether the step is still in flight.
func (s *Step) Running() bool { return s.Status == StatusRunning }

// StepRegistry allocates stable step identities, matches finish signals back
// to in-flight steps, tracks parent/child links, and prunes old finished
// entries so memory stays bounded for arbitrarily long runs.
type StepRegistry struct {
	byID     map[string]*Step
	order    []string
	children map[string][]string
	slots    map[string]int
	maxSteps int
}

// NewStepRegistry creates a registry remembering at most maxSteps steps.
// Non-positive maxSteps selects DefaultMaxSteps.
func NewStepRegistry(maxSteps int) *StepRegistry {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &StepRegistry{
		byID:     map[string]*Step{},
		children: map[string][]string{},
		slots:    map[string]int{},
		maxSteps: maxSteps,
	}
}

func stepKey(taskID, contextID, kind, name string) string {
	return taskID + "::" + contextID + "::" + kind + "::" + name
}

// MakeID builds the deterministic step identity for a key and slot.
func MakeID(taskID, contextID, kind, name string, slot int) string {
	return fmt.Sprintf("%s::%d", stepKey(taskID, contextID, kind, name), slot)
}

func (r *StepRegistry) allocSlot(taskID, contextID, kind, name string) int {
	key := stepKey(taskID, contextID, kind, name)
	r.slots[key]++
	return r.slots[key]
}

// StartOrGet always allocates the next slot for the key and registers a fresh
// running step. Two calls with identical arguments yield two distinct steps
// whose ids differ only by the trailing slot number.
func (r *StepRegistry) StartOrGet(taskID, contextID, kind, name, parentID string, args map[string]any) *Step {
	slot := r.allocSlot(taskID, contextID, kind, name)
	s := newStep(MakeID(taskID, contextID, kind, name, slot), kind, name)
	s.TaskID = taskID
	s.ContextID = contextID
	if args != nil {
		s.Args = args
	}
	if parentID != "" {
		s.ParentID = parentID
		r.children[parentID] = append(r.children[parentID], s.ID)
	}
	r.byID[s.ID] = s
	r.order = append(r.order, s.ID)
	return s
}

// FindRunning returns the most recently started step for the key that is
// still running, or nil.
func (r *StepRegistry) FindRunning(taskID, contextID, kind, name string) *Step {
	key := stepKey(taskID, contextID, kind, name)
	last := r.slots[key]
	for slot := last; slot >= 1; slot-- {
		if s, ok := r.byID[MakeID(taskID, contextID, kind, name, slot)]; ok && s.Running() {
			return s
		}
	}
	return nil
}

// Finish locates the matching running step and finishes it. A finish with no
// matching start is not an error: a step is synthesized and finished on the
// spot, so Finish always returns a finished step. Pruning runs afterwards.
func (r *StepRegistry) Finish(taskID, contextID, kind, name, output string, durationSec float64) *Step {
	s := r.FindRunning(taskID, contextID, kind, name)
	if s == nil {
		s = r.StartOrGet(taskID, contextID, kind, name, "", nil)
	}
	s.Finish(output, durationSec)
	r.prune()
	return s
}

// ChildCount returns how many direct children a step has.
func (r *StepRegistry) ChildCount(stepID string) int {
	return len(r.children[stepID])
}

// Children returns the ordered child ids of a step.
func (r *StepRegistry) Children(stepID string) []string {
	return r.children[stepID]
}

// Get returns the step for an id, or nil.
func (r *StepRegistry) Get(stepID string) *Step {
	return r.byID[stepID]
}

// Len returns the number of remembered steps.
func (r *StepRegistry) Len() int { return len(r.order) }

// Ordered returns step ids in creation order.
func (r *StepRegistry) Ordered() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Roots returns creation-ordered ids of steps without a remembered parent.
func (r *StepRegistry) Roots() []string {
	var roots []string
	for _, id := range r.order {
		s := r.byID[id]
		if s.ParentID == "" || r.byID[s.ParentID] == nil {
			roots = append(roots, id)
		}
	}
	return roots
}

// RunningCount counts running steps, optionally filtered by kind ("" = all).
func (r *StepRegistry) RunningCount(kind string) int {
	n := 0
	for _, s := range r.byID {
		if s.Running() && (kind == "" || s.Kind == kind) {
			n++
		}
	}
	return n
}

// HasRunning reports whether any step is still running.
func (r *StepRegistry) HasRunning() bool { return r.RunningCount("") > 0 }

// Summary renders a one-line human summary for a step. Verbose mode appends
// the pretty-printed arguments.
func (r *StepRegistry) Summary(stepID string, verbose bool) string {
	s := r.byID[stepID]
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(" (")
	b.WriteString(s.Status)
	b.WriteString(")")
	if s.DurationMS >= 0 {
		fmt.Fprintf(&b, " %dms", s.DurationMS)
	}
	if verbose && len(s.Args) > 0 {
		b.WriteString(" ")
		b.WriteString(PrettyArgs(s.Args, 120))
	}
	return b.String()
}

func (r *StepRegistry) hasRunningDescendant(stepID string) bool {
	for _, child := range r.children[stepID] {
		s := r.byID[child]
		if s == nil {
			continue
		}
		if s.Running() || r.hasRunningDescendant(child) {
			return true
		}
	}
	return false
}

// prune evicts the oldest finished steps with no running descendants until
// the registry is back under maxSteps. Running steps and ancestors of running
// steps are never evicted, even if that leaves the registry temporarily over
// the ceiling.
func (r *StepRegistry) prune() {
	if len(r.order) <= r.maxSteps {
		return
	}
	kept := r.order[:0]
	excess := len(r.order) - r.maxSteps
	for _, id := range r.order {
		s := r.byID[id]
		if excess > 0 && s != nil && !s.Running() && !r.hasRunningDescendant(id) {
			r.evict(id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

func (r *StepRegistry) evict(id string) {
	s := r.byID[id]
	if s == nil {
		return
	}
	delete(r.byID, id)
	if s.ParentID != "" {
		siblings := r.children[s.ParentID]
		for i, sib := range siblings {
			if sib == id {
				r.children[s.ParentID] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	delete(r.children, id)
}
