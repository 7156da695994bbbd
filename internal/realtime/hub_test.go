package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/orbtao/connectify/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	hub    *Hub
	srv    *httptest.Server
	events chan Event
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{
		hub:    NewHub(logger.Discard()),
		events: make(chan Event, 8),
	}
	upgrader := websocket.Upgrader{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.hub.Serve(r.Context(), conn, r.URL.Query().Get("room"), func(c *Client, ev Event) {
			ts.events <- ev
			if ev.Type == "echo" {
				c.Send("echo", ev.Data)
			}
		})
	}))
	t.Cleanup(func() {
		ts.hub.Close()
		ts.srv.Close()
	})
	return ts
}

func (ts *testServer) dial(t *testing.T, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHub_EmitReachesEveryConnectionInRoom(t *testing.T) {
	ts := newTestServer(t)
	a1 := ts.dial(t, "alice")
	a2 := ts.dial(t, "alice")
	b := ts.dial(t, "bob")

	require.Eventually(t, func() bool {
		return ts.hub.Online("alice") == 2 && ts.hub.Online("bob") == 1
	}, 2*time.Second, 10*time.Millisecond)

	ts.hub.Emit("alice", "message", map[string]string{"content": "hi"})

	for _, conn := range []*websocket.Conn{a1, a2} {
		ev := readEvent(t, conn)
		assert.Equal(t, "message", ev.Type)
		assert.JSONEq(t, `{"content":"hi"}`, string(ev.Data))
	}

	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "bob is not in alice's room")
}

func TestHub_InboundEvents(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "echo", "data": map[string]bool{"isTyping": true}}))

	select {
	case ev := <-ts.events:
		assert.Equal(t, "echo", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	ev := readEvent(t, conn)
	assert.Equal(t, "echo", ev.Type)
	var data map[string]bool
	require.NoError(t, json.Unmarshal(ev.Data, &data))
	assert.True(t, data["isTyping"])
}

func TestHub_LeaveOnDisconnect(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t, "carol")
	require.Eventually(t, func() bool { return ts.hub.Online("carol") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return ts.hub.Online("carol") == 0 }, 2*time.Second, 10*time.Millisecond)

	// emitting into an empty room is a no-op
	ts.hub.Emit("carol", "message", "bye")
}

func TestHub_ServeStopsOnContextCancel(t *testing.T) {
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(ctx, conn, "dave", nil)
		close(done)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Online("dave") == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Zero(t, hub.Online("dave"))
}

func TestClient_EnqueueDropsWhenFull(t *testing.T) {
	c := &Client{send: make(chan []byte, 1), done: make(chan struct{})}
	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")))
}
