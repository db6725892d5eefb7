package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"setlist/internal/core/port"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRunner records invocations and answers from a canned result map.
type MockRunner struct {
	mu      sync.Mutex
	calls   []string
	results map[string]port.Result
}

func (m *MockRunner) Run(_ context.Context, action string, _ any) port.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, action)
	if result, ok := m.results[action]; ok {
		return result
	}
	return port.Result{}
}

func (m *MockRunner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))

	return frame
}

func TestRequestResponseCorrelation(t *testing.T) {
	runner := &MockRunner{results: map[string]port.Result{
		"orderPush": {Success: true, Data: "order-1"},
	}}
	controller := NewController(runner)
	server := httptest.NewServer(controller)
	defer server.Close()

	conn := dial(t, server)

	err := conn.WriteJSON(Request{
		Type:      "request",
		Action:    "orderPush",
		Args:      json.RawMessage(`{"songId":1,"difficulty":3}`),
		RequestID: "req-42",
	})
	require.NoError(t, err)

	frame := readFrame(t, conn)
	assert.Equal(t, "response", frame["type"])
	assert.Equal(t, "orderPush", frame["action"])
	assert.Equal(t, true, frame["success"])
	assert.Equal(t, "order-1", frame["data"])
	assert.Equal(t, "req-42", frame["requestId"])
}

func TestFailedCommandAnswersUnsuccessful(t *testing.T) {
	runner := &MockRunner{}
	controller := NewController(runner)
	server := httptest.NewServer(controller)
	defer server.Close()

	conn := dial(t, server)

	require.NoError(t, conn.WriteJSON(Request{
		Type:      "request",
		Action:    "noSuchAction",
		RequestID: "req-1",
	}))

	frame := readFrame(t, conn)
	assert.Equal(t, false, frame["success"])
	assert.Equal(t, "req-1", frame["requestId"])
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	runner := &MockRunner{results: map[string]port.Result{
		"orderComplete": {Success: true},
	}}
	controller := NewController(runner)
	server := httptest.NewServer(controller)
	defer server.Close()

	conn := dial(t, server)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(Request{
		Type:      "request",
		Action:    "orderComplete",
		RequestID: "req-2",
	}))

	frame := readFrame(t, conn)
	assert.Equal(t, "orderComplete", frame["action"])
	assert.Equal(t, "req-2", frame["requestId"])
	assert.Equal(t, []string{"orderComplete"}, runner.Calls())
}

func TestDispatchAllReachesEveryClient(t *testing.T) {
	controller := NewController(&MockRunner{})
	server := httptest.NewServer(controller)
	defer server.Close()

	first := dial(t, server)
	second := dial(t, server)

	require.Eventually(t, func() bool {
		controller.mu.Lock()
		defer controller.mu.Unlock()
		return len(controller.clients) == 2
	}, 2*time.Second, 10*time.Millisecond)

	controller.DispatchAll(port.ClientCommand{Action: "setOrderList", Args: []any{}})

	for _, conn := range []*websocket.Conn{first, second} {
		frame := readFrame(t, conn)
		assert.Equal(t, "request", frame["type"])
		assert.Equal(t, "setOrderList", frame["action"])
		assert.Equal(t, []any{}, frame["args"])
		assert.NotContains(t, frame, "requestId")
	}
}

func TestDispatchToAbsentClientIsNoOp(t *testing.T) {
	controller := NewController(&MockRunner{})

	controller.Dispatch("no-such-client", port.ClientCommand{Action: "setOrderList"})
}

func TestNewClientListener(t *testing.T) {
	controller := NewController(&MockRunner{})
	server := httptest.NewServer(controller)
	defer server.Close()

	var mu sync.Mutex
	var connected []string
	remove := controller.AddNewClientListener(func(clientID string) {
		mu.Lock()
		connected = append(connected, clientID)
		mu.Unlock()
	})

	dial(t, server)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(connected) == 1
	}, 2*time.Second, 10*time.Millisecond)

	remove()
	dial(t, server)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, connected, 1)
}
