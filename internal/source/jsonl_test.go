package source

import (
	"context"
	"strings"
	"testing"

	"runview/internal/run"
)

// recorder captures the handler calls a stream produces.
type recorder struct {
	starts    []run.StartMeta
	events    []run.Event
	completes int
	final     string
	stats     *run.RunStats
}

func (r *recorder) OnStart(meta run.StartMeta) { r.starts = append(r.starts, meta) }
func (r *recorder) OnEvent(ev run.Event)       { r.events = append(r.events, ev) }
func (r *recorder) OnComplete(final string, stats *run.RunStats) {
	r.completes++
	r.final = final
	r.stats = stats
}

func TestJSONLStreamFullRun(t *testing.T) {
	feed := strings.Join([]string{
		`{"kind":"run_start","agent_name":"MathAgent","model":"m1","run_id":"r1"}`,
		`{"metadata":{"kind":"agent_step","tool_info":{"tool_calls":[{"name":"calculator","args":{"expression":"2+2"}}]}},"task_id":"t1","context_id":"c1"}`,
		`{"content":"I'll calculate 2+2.","context_id":"c1"}`,
		`{"metadata":{"kind":"agent_step","tool_info":{"name":"calculator","output":"4","duration":0.2}},"task_id":"t1","context_id":"c1"}`,
		`{"kind":"run_complete","final":" The answer is 4.","usage":{"input_tokens":10}}`,
	}, "\n")

	rec := &recorder{}
	if err := NewJSONL(strings.NewReader(feed), nil).Stream(context.Background(), rec); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if len(rec.starts) != 1 || rec.starts[0].AgentName != "MathAgent" {
		t.Fatalf("starts = %+v", rec.starts)
	}
	if len(rec.events) != 3 {
		t.Fatalf("events = %d, want 3", len(rec.events))
	}
	if rec.events[0].Kind != run.EventToolStart || rec.events[1].Kind != run.EventContent || rec.events[2].Kind != run.EventToolFinish {
		t.Fatalf("event kinds = %v %v %v", rec.events[0].Kind, rec.events[1].Kind, rec.events[2].Kind)
	}
	if rec.completes != 1 || rec.final != " The answer is 4." {
		t.Fatalf("completes=%d final=%q", rec.completes, rec.final)
	}
	if rec.stats == nil || rec.stats.Usage["input_tokens"] != float64(10) {
		t.Fatalf("stats = %+v", rec.stats)
	}
}

func TestJSONLStreamSynthesizesCompletionOnEOF(t *testing.T) {
	feed := `{"content":"partial","context_id":"c1"}`

	rec := &recorder{}
	if err := NewJSONL(strings.NewReader(feed), nil).Stream(context.Background(), rec); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if rec.completes != 1 {
		t.Fatalf("completes = %d, want synthesized completion", rec.completes)
	}
	if rec.stats != nil {
		t.Fatalf("synthesized completion should carry nil stats")
	}
}

func TestJSONLStreamMalformedLinesBecomeUnrecognized(t *testing.T) {
	feed := strings.Join([]string{
		`{not json at all`,
		``,
		`{"content":"ok","context_id":"c1"}`,
	}, "\n")

	rec := &recorder{}
	if err := NewJSONL(strings.NewReader(feed), nil).Stream(context.Background(), rec); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2 (blank lines skipped)", len(rec.events))
	}
	if rec.events[0].Kind != run.EventUnrecognized {
		t.Fatalf("malformed line kind = %v, want EventUnrecognized", rec.events[0].Kind)
	}
	if rec.events[1].Kind != run.EventContent {
		t.Fatalf("good line kind = %v, want EventContent", rec.events[1].Kind)
	}
}

func TestJSONLStreamHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := `{"content":"never","context_id":"c1"}`
	err := NewJSONL(strings.NewReader(feed), nil).Stream(ctx, &recorder{})
	if err == nil {
		t.Fatalf("canceled context should surface an error")
	}
}
