package run

import "encoding/json"

// StartMeta is the header information delivered by the run's start signal.
type StartMeta struct {
	AgentName string
	Model     string
	RunID     string
	Input     string
}

// EventKind discriminates the closed set of event shapes the renderer
// understands. Anything else decodes to EventUnrecognized and is swallowed
// without mutating state.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventToolStart
	EventToolFinish
	EventContent
	EventStatus
	EventArtifact
)

// ToolCall is one tool invocation inside a tool-call-start payload.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Event is the strongly-typed form of one wire event, decoded once at the
// boundary so the rest of the core never re-inspects raw fields.
type Event struct {
	Kind      EventKind
	TaskID    string
	ContextID string

	// Tool start: one or more calls opened by this step.
	Calls []ToolCall

	// Tool finish.
	Name        string
	Args        map[string]any
	Output      string
	DurationSec float64 // negative when the source did not report one

	// Content delta.
	Content string

	// Status text.
	Status string
}

// ParseEvent decodes one wire event from JSON. Malformed JSON yields an
// Unrecognized event rather than an error; the never-crash contract lives at
// this boundary.
func ParseEvent(data []byte) Event {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{Kind: EventUnrecognized, DurationSec: -1}
	}
	return DecodeEvent(raw)
}

// DecodeEvent classifies a loosely-typed wire event into the tagged form.
func DecodeEvent(raw map[string]any) Event {
	ev := Event{Kind: EventUnrecognized, DurationSec: -1}
	if raw == nil {
		return ev
	}
	ev.TaskID = str(raw["task_id"])
	ev.ContextID = str(raw["context_id"])

	meta, _ := raw["metadata"].(map[string]any)
	kind := ""
	if meta != nil {
		kind = str(meta["kind"])
	}

	switch kind {
	case "agent_step":
		info, _ := meta["tool_info"].(map[string]any)
		if info == nil {
			return ev
		}
		if calls := decodeToolCalls(info["tool_calls"]); len(calls) > 0 {
			ev.Kind = EventToolStart
			ev.Calls = calls
			return ev
		}
		name := str(info["name"])
		if name == "" {
			return ev
		}
		if _, ok := info["output"]; !ok {
			return ev
		}
		ev.Kind = EventToolFinish
		ev.Name = name
		ev.Output = str(info["output"])
		ev.Args, _ = info["args"].(map[string]any)
		if d, ok := num(info["duration"]); ok {
			ev.DurationSec = d
		}
		return ev

	case "status":
		ev.Kind = EventStatus
		ev.Status = str(raw["status"])
		if ev.Status == "" {
			ev.Status = str(raw["content"])
		}
		return ev

	case "artifact":
		ev.Kind = EventArtifact
		return ev
	}

	// Implicit content event when a top-level content field is present.
	if c, ok := raw["content"].(string); ok && c != "" {
		ev.Kind = EventContent
		ev.Content = c
	}
	return ev
}

func decodeToolCalls(v any) []ToolCall {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var calls []ToolCall
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := str(m["name"])
		if name == "" {
			continue
		}
		args, _ := m["args"].(map[string]any)
		calls = append(calls, ToolCall{Name: name, Args: args})
	}
	return calls
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
