package source

import (
	"bufio"
	"context"
	"io"
	"strings"

	"runview/internal/app"
)

// JSONL reads newline-delimited JSON events from a reader (stdin, a file, a
// pipe) and drives a Handler until the stream ends or the run completes.
type JSONL struct {
	r   io.Reader
	log *app.Logger
}

// NewJSONL wraps a reader. log may be nil.
func NewJSONL(r io.Reader, log *app.Logger) *JSONL {
	if log == nil {
		log = app.NewLogger(nil)
	}
	return &JSONL{r: r, log: log}
}

// Stream delivers events to h in arrival order. A run_complete marker ends
// the stream; EOF without one synthesizes an empty completion so the
// presenter always reaches its final state.
func (s *JSONL) Stream(ctx context.Context, h Handler) error {
	state := &streamState{}
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if dispatch(h, []byte(line), state) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("stream read failed", map[string]any{"error": err.Error()})
		return err
	}
	// Source dried up without a completion marker.
	h.OnComplete("", nil)
	return nil
}
