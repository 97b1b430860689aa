package progress

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"legendemer/internal/domain"
	"legendemer/internal/infra"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Frame is the JSON message written to the socket.
type Frame struct {
	domain.ProgressEvent
	Message string `json:"message"`
}

// Describer renders the human readable message of an event.
type Describer func(domain.ProgressEvent) string

// Streamer upgrades progress requests to websockets.
type Streamer struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *infra.Logger
}

// NewStreamer accepts connections from the allowed origins. An empty list
// accepts any origin.
func NewStreamer(hub *Hub, allowedOrigins []string, logger *infra.Logger) *Streamer {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allow[origin] = struct{}{}
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Streamer{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allow) == 0 || origin == "" {
					return true
				}
				_, ok := allow[origin]
				return ok
			},
		},
	}
}

// Serve streams the events of requestID until a terminal state is sent or the
// client goes away.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, requestID string, describe Describer) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("progress: upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe(requestID)
	defer unsubscribe()

	gone := make(chan struct{})
	go s.readPump(conn, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if last, ok := s.hub.Last(requestID); ok {
		if !s.write(conn, last, describe) || last.State.Terminal() {
			s.close(conn)
			return
		}
	}

	for {
		select {
		case event := <-events:
			if !s.write(conn, event, describe) {
				return
			}
			if event.State.Terminal() {
				s.close(conn)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Streamer) write(conn *websocket.Conn, event domain.ProgressEvent, describe Describer) bool {
	frame := Frame{ProgressEvent: event}
	if describe != nil {
		frame.Message = describe(event)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		s.logger.Debug().Err(err).Str("request_id", event.RequestID).Msg("progress: write failed")
		return false
	}
	return true
}

func (s *Streamer) close(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

// readPump drains client frames so pongs and close messages are processed.
func (s *Streamer) readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
