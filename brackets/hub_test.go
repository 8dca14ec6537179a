package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, room string) *Client {
	return &Client{Hub: h, Send: make(chan []byte, 4), Room: room}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	go h.Run(ctx)

	room := RoomForTournament("t1")
	inRoom := newTestClient(h, room)
	elsewhere := newTestClient(h, RoomForTournament("t2"))
	h.Register <- inRoom
	h.Register <- elsewhere
	require.Eventually(t, func() bool { return h.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	h.BroadcastToRoom(room, WebSocketMessage{Type: "STATUS_CHANGED", Payload: map[string]string{"status": "In Progress"}, RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "STATUS_CHANGED", msg.Type)
		assert.Equal(t, room, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, elsewhere.Send)
}

func TestHub_UnregisterClosesRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	go h.Run(ctx)

	room := RoomForTournament("t1")
	c := newTestClient(h, room)
	h.Register <- c
	h.Unregister <- c

	require.Eventually(t, func() bool { return h.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)

	// Broadcasting to an empty room is a no-op.
	h.BroadcastToRoom(room, WebSocketMessage{Type: "MATCH_UPDATED"})
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, RoomForTournament("t1"))
	h.Register <- c
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, h.RoomSize(RoomForTournament("t1")))
}

func TestHub_JoinAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	assert.True(t, h.Join(newTestClient(h, RoomForTournament("t1"))))
	cancel()
	<-stopped

	joined := make(chan bool, 1)
	go func() { joined <- h.Join(newTestClient(h, RoomForTournament("t1"))) }()
	select {
	case ok := <-joined:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Join blocked on a stopped hub")
	}
}

func TestHub_SkipsFullClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	go h.Run(ctx)

	room := RoomForTournament("busy")
	c := &Client{Hub: h, Send: make(chan []byte, 1), Room: room}
	h.Register <- c
	require.Eventually(t, func() bool { return h.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	h.BroadcastToRoom(room, WebSocketMessage{Type: "first"})
	h.BroadcastToRoom(room, WebSocketMessage{Type: "second"})

	assert.Len(t, c.Send, 1)
}
