package source

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"runview/internal/app"
)

// WebSocket consumes a run's event stream from a websocket endpoint.
type WebSocket struct {
	url string
	log *app.Logger
}

// NewWebSocket points at a ws:// or wss:// endpoint. log may be nil.
func NewWebSocket(url string, log *app.Logger) *WebSocket {
	if log == nil {
		log = app.NewLogger(nil)
	}
	return &WebSocket{url: url, log: log}
}

// Stream connects and delivers messages to h until the run completes, the
// peer closes, or ctx is canceled.
func (s *WebSocket) Stream(ctx context.Context, h Handler) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller cancels.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	state := &streamState{}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.OnComplete("", nil)
				return nil
			}
			s.log.Error("websocket read failed", map[string]any{"error": err.Error()})
			return err
		}
		if dispatch(h, data, state) {
			return nil
		}
	}
}
