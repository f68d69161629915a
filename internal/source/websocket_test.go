package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func wsServer(t *testing.T, lines []string, closeNormally bool) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, line := range lines {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
		if closeNormally {
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			// Let the client read the close frame before the server hangs up.
			_ = conn.SetReadDeadline(deadline)
			_, _, _ = conn.ReadMessage()
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketStreamDeliversRun(t *testing.T) {
	url := wsServer(t, []string{
		`{"kind":"run_start","agent_name":"WSAgent","run_id":"r1"}`,
		`{"content":"hello","context_id":"c1"}`,
		`{"kind":"run_complete","final":" world"}`,
	}, false)

	rec := &recorder{}
	if err := NewWebSocket(url, nil).Stream(context.Background(), rec); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if len(rec.starts) != 1 || rec.starts[0].AgentName != "WSAgent" {
		t.Fatalf("starts = %+v", rec.starts)
	}
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	if rec.completes != 1 || rec.final != " world" {
		t.Fatalf("completes=%d final=%q", rec.completes, rec.final)
	}
}

func TestWebSocketStreamNormalCloseSynthesizesCompletion(t *testing.T) {
	url := wsServer(t, []string{
		`{"content":"partial","context_id":"c1"}`,
	}, true)

	rec := &recorder{}
	if err := NewWebSocket(url, nil).Stream(context.Background(), rec); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if rec.completes != 1 {
		t.Fatalf("completes = %d, want synthesized completion on normal close", rec.completes)
	}
}

func TestWebSocketStreamDialFailure(t *testing.T) {
	err := NewWebSocket("ws://127.0.0.1:1/never", nil).Stream(context.Background(), &recorder{})
	if err == nil {
		t.Fatalf("expected dial error")
	}
}
