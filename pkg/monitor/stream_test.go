package monitor

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream(t *testing.T) (*StreamServer, *EventCollector, *httptest.Server) {
	t.Helper()
	c := NewEventCollector(0)
	s := NewStreamServer("", c, NewDashboard("run-1"), nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, c, srv
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestStreamServer_Health(t *testing.T) {
	_, _, srv := newTestStream(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestStreamServer_Dashboard(t *testing.T) {
	_, c, srv := newTestStream(t)
	c.Emit(Event{Type: EventInvoked, Function: "greet"})

	resp, err := http.Get(srv.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var d Dashboard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
	assert.Equal(t, "run-1", d.RunID)
	assert.Equal(t, 1, d.Functions["greet"].Calls)
}

func TestStreamServer_Events(t *testing.T) {
	s, c, srv := newTestStream(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, KindDashboard, first.Kind)
	require.NotNil(t, first.Dashboard)
	assert.Equal(t, 1, s.Clients())

	c.Emit(Event{Type: EventReported, RecordID: "r-1", Function: "greet", Passed: true})

	msg := readMessage(t, conn)
	assert.Equal(t, KindEvent, msg.Kind)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "r-1", msg.Event.RecordID)
	assert.True(t, msg.Event.Passed)
}

func TestStreamServer_ClientDisconnect(t *testing.T) {
	s, _, srv := newTestStream(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return s.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestStreamServer_UpgradeRequired(t *testing.T) {
	_, _, srv := newTestStream(t)
	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamServer_StopWithoutStart(t *testing.T) {
	s := NewStreamServer(":0", NewEventCollector(0), NewDashboard("x"), nil)
	assert.NoError(t, s.Stop(t.Context()))
}
