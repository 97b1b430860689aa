package progress

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"legendemer/internal/domain"
)

func TestHubDeliversToSubscribersOfTheSameRequest(t *testing.T) {
	hub := NewHub()
	mine, cancelMine := hub.Subscribe("a")
	defer cancelMine()
	other, cancelOther := hub.Subscribe("b")
	defer cancelOther()

	hub.Observe(domain.ProgressEvent{RequestID: "a", State: domain.StateGenerating})

	select {
	case e := <-mine:
		if e.State != domain.StateGenerating {
			t.Fatalf("state = %q", e.State)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	select {
	case e := <-other:
		t.Fatalf("unexpected event for other request: %+v", e)
	default:
	}

	last, ok := hub.Last("a")
	if !ok || last.State != domain.StateGenerating {
		t.Fatalf("Last = %+v, %v", last, ok)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("a")
	if hub.Subscribers("a") != 1 {
		t.Fatalf("subscribers = %d, want 1", hub.Subscribers("a"))
	}
	cancel()
	cancel()
	if hub.Subscribers("a") != 0 {
		t.Fatalf("subscribers = %d, want 0", hub.Subscribers("a"))
	}
}

func TestHubNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("a")
	defer cancel()
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			hub.Observe(domain.ProgressEvent{RequestID: "a", State: domain.StatePolling, Attempt: i + 1})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked on a full subscriber")
	}
}

func TestHubDeliversTerminalEventToFullSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("a")
	defer cancel()
	for i := 0; i < subscriberBuffer+3; i++ {
		hub.Observe(domain.ProgressEvent{RequestID: "a", State: domain.StatePolling, Attempt: i + 1})
	}
	hub.Observe(domain.ProgressEvent{RequestID: "a", State: domain.StateDone})

	var last domain.ProgressEvent
	for n := len(ch); n > 0; n-- {
		last = <-ch
	}
	if last.State != domain.StateDone {
		t.Fatalf("last delivered state = %q, want done", last.State)
	}
}

func TestStreamerSendsEventsUntilTerminal(t *testing.T) {
	hub := NewHub()
	streamer := NewStreamer(hub, nil, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamer.Serve(w, r, "req-9", func(e domain.ProgressEvent) string {
			return "state:" + string(e.State)
		})
	}))
	defer srv.Close()

	hub.Observe(domain.ProgressEvent{RequestID: "req-9", State: domain.StateEnriching})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Frame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read last event: %v", err)
	}
	if first.State != domain.StateEnriching || first.Message != "state:enriching" {
		t.Fatalf("first frame = %+v", first)
	}

	// wait for the subscription before publishing
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("req-9") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Observe(domain.ProgressEvent{RequestID: "req-9", State: domain.StateDone})

	var second Frame
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read done event: %v", err)
	}
	if second.State != domain.StateDone {
		t.Fatalf("second frame = %+v", second)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal closure, got %v", err)
	}
}

func TestStreamerRejectsUnknownOrigin(t *testing.T) {
	streamer := NewStreamer(NewHub(), []string{"https://legende.example"}, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamer.Serve(w, r, "x", nil)
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("response = %+v, want 403", resp)
	}
}
