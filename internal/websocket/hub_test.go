package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, nil)
	go h.Run()
	return h
}

func register(h *Hub, userID uuid.UUID) *Client {
	c := newClient(h, nil, userID, 0, nil)
	h.register <- c
	return c
}

func waitConnected(t *testing.T, h *Hub, userID uuid.UUID, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Connected(userID) == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestHubSendReachesEveryDeviceOfUser(t *testing.T) {
	h := startHub(t)
	alice := uuid.New()
	bob := uuid.New()

	a1 := register(h, alice)
	a2 := register(h, alice)
	b1 := register(h, bob)
	waitConnected(t, h, alice, 2)
	waitConnected(t, h, bob, 1)

	h.Send(alice, "upload_progress", map[string]interface{}{"percent": 36})

	for _, c := range []*Client{a1, a2} {
		msg := receive(t, c)
		assert.Equal(t, "upload_progress", msg["type"])
		assert.Equal(t, float64(36), msg["data"].(map[string]interface{})["percent"])
	}
	assert.Len(t, b1.Send, 0)
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	c1 := register(h, user)
	c2 := register(h, user)
	waitConnected(t, h, user, 2)

	h.unregister <- c1
	waitConnected(t, h, user, 1)

	h.Send(user, "ping", nil)
	receive(t, c2)
	assert.Len(t, c1.Send, 0)

	h.unregister <- c2
	waitConnected(t, h, user, 0)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	c := register(h, user)
	waitConnected(t, h, user, 1)

	for i := 0; i < sendBuffer; i++ {
		h.Send(user, "tick", i)
	}
	h.Send(user, "tick", "overflow")

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("slow client was not closed")
	}
	assert.False(t, c.Enqueue([]byte("late")))
}

func TestHubSkipsOwnClusterMessages(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	c := register(h, user)
	waitConnected(t, h, user, 1)

	own, _ := json.Marshal(clusterMessage{Origin: h.instanceID, TargetUserID: user.String(), Message: json.RawMessage(`{"type":"x"}`)})
	h.handleCluster(own)
	assert.Len(t, c.Send, 0)

	remote, _ := json.Marshal(clusterMessage{Origin: "other", TargetUserID: user.String(), Message: json.RawMessage(`{"type":"x"}`)})
	h.handleCluster(remote)
	assert.Equal(t, "x", receive(t, c)["type"])
}
