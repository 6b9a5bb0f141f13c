package progress

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	router := gin.New()
	router.GET("/ws", WSHandler(hub, zerolog.Nop()))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// first frame is the welcome message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, welcome, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(welcome), "welcome")

	// wait for the hub to register the client, then broadcast
	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.BroadcastJSON(map[string]any{"type": "import.progress", "current": 3, "total": 9})

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "import.progress", got["type"])
	assert.Equal(t, float64(3), got["current"])
}

func TestHubDropsDeadClients(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	router := gin.New()
	router.GET("/ws", WSHandler(hub, zerolog.Nop()))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Stats().Clients == 1 },
		2*time.Second, 10*time.Millisecond)

	_ = conn.Close()

	// the handler notices the closed socket and removes the client
	require.Eventually(t, func() bool { return hub.Stats().Clients == 0 },
		2*time.Second, 10*time.Millisecond)
}
