package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.contracts/pkg/logging"
)

// Message kinds written to stream clients.
const (
	KindDashboard = "dashboard"
	KindEvent     = "event"
)

// Message is one frame of the live stream.
type Message struct {
	Kind      string     `json:"kind"`
	Event     *Event     `json:"event,omitempty"`
	Dashboard *Dashboard `json:"dashboard,omitempty"`
}

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// StreamServer streams lifecycle events to WebSocket clients
// and serves the dashboard as JSON.
type StreamServer struct {
	mu        sync.RWMutex
	collector *EventCollector
	dashboard *Dashboard
	logger    logging.Logger
	clients   map[chan []byte]struct{}
	addr      string
	server    *http.Server
	upgrader  websocket.Upgrader
	attach    sync.Once
}

// NewStreamServer creates a stream server for collector.
func NewStreamServer(
	addr string,
	collector *EventCollector,
	dashboard *Dashboard,
	logger logging.Logger,
) *StreamServer {
	return &StreamServer{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		logger:    logging.OrNull(logger),
		clients:   make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler of the server and subscribes
// it to the collector on first use.
func (s *StreamServer) Handler() http.Handler {
	s.attach.Do(func() {
		s.collector.OnEvent(func(event Event) {
			s.dashboard.UpdateFromEvent(event)
			data, err := json.Marshal(Message{Kind: KindEvent, Event: &event})
			if err != nil {
				return
			}
			s.broadcast(data)
		})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is cancelled.
func (s *StreamServer) Start(ctx context.Context) error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.server
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *StreamServer) Stop(ctx context.Context) error {
	s.mu.RLock()
	server := s.server
	s.mu.RUnlock()
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// Clients returns the number of connected stream clients.
func (s *StreamServer) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *StreamServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("stream upgrade failed", logging.ErrorField(err))
		return
	}
	defer conn.Close()

	ch := make(chan []byte, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	snap, err := json.Marshal(Message{Kind: KindDashboard, Dashboard: s.dashboard.Snapshot()})
	if err == nil {
		if err := s.write(conn, snap); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case data := <-ch:
			if err := s.write(conn, data); err != nil {
				s.logger.Debug("stream client dropped", logging.ErrorField(err))
				return
			}
		}
	}
}

func (s *StreamServer) write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *StreamServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.dashboard.Snapshot())
}

func (s *StreamServer) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			// Client too slow, skip
		}
	}
}
