// Package source feeds the presenter from an external event transport. Each
// source decodes wire JSON once at the boundary into the tagged event type;
// nothing downstream re-inspects raw fields.
package source

import (
	"encoding/json"
	"time"

	"runview/internal/run"
)

// Handler consumes one run's lifecycle. The tui.Presenter implements it.
type Handler interface {
	OnStart(meta run.StartMeta)
	OnEvent(ev run.Event)
	OnComplete(final string, stats *run.RunStats)
}

// envelope is the top-level wire framing: run lifecycle markers wrap the
// plain run events.
type envelope struct {
	Kind      string         `json:"kind"`
	AgentName string         `json:"agent_name"`
	Model     string         `json:"model"`
	RunID     string         `json:"run_id"`
	Input     string         `json:"input"`
	Final     string         `json:"final"`
	Usage     map[string]any `json:"usage"`
}

const (
	kindRunStart    = "run_start"
	kindRunComplete = "run_complete"
)

// streamState tracks what one connection has seen so far.
type streamState struct {
	startedAt time.Time
}

// dispatch routes one wire message to the handler and reports whether the
// run completed. Anything that is not a lifecycle marker is decoded as a run
// event; malformed input degrades to an unrecognized event, which the
// handler swallows.
func dispatch(h Handler, data []byte, state *streamState) (done bool) {
	if state.startedAt.IsZero() {
		state.startedAt = time.Now()
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		switch env.Kind {
		case kindRunStart:
			h.OnStart(run.StartMeta{
				AgentName: env.AgentName,
				Model:     env.Model,
				RunID:     env.RunID,
				Input:     env.Input,
			})
			return false
		case kindRunComplete:
			stats := run.NewRunStats()
			stats.StartedAt = state.startedAt
			if env.Usage != nil {
				stats.Usage = env.Usage
			}
			h.OnComplete(env.Final, stats)
			return true
		}
	}
	h.OnEvent(run.ParseEvent(data))
	return false
}
