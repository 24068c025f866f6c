package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.contracts/pkg/record"
)

const defaultWriteTimeout = 5 * time.Second

// WebSocketSink streams records as text frames to a WebSocket
// endpoint. The connection is dialed on first delivery and
// redialed after a failed write.
type WebSocketSink struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketSink creates a sink for url.
func NewWebSocketSink(url string) *WebSocketSink {
	return &WebSocketSink{url: url, dialer: websocket.DefaultDialer}
}

func (s *WebSocketSink) Name() string { return "websocket" }

func (s *WebSocketSink) Deliver(ctx context.Context, rec *record.FunctionTestRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return deliveryError(s.Name(), rec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			return deliveryError(s.Name(), rec, fmt.Errorf("dial %s: %w", s.url, err))
		}
		s.conn = conn
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}
	_ = s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		return deliveryError(s.Name(), rec, err)
	}
	return nil
}

// Close sends a close frame and closes the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	werr := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	cerr := s.conn.Close()
	s.conn = nil
	if errors.Is(werr, websocket.ErrCloseSent) {
		werr = nil
	}
	return errors.Join(werr, cerr)
}
