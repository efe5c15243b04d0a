package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const secret = "test-secret-test-secret-test-secret"

func signed(t *testing.T, sub string, role types.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": string(role),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newClient(hub *Hub, userID string, role types.Role) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Hub:    hub,
		Send:   make(chan []byte, 8),
		Rooms:  make(map[string]bool),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestBroadcastToRoles(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	gestao := newClient(hub, "u1", types.RoleGestao)
	producao := newClient(hub, "u2", types.RoleProducao)
	hub.Register(gestao)
	hub.Register(producao)

	assert.Equal(t, 1, hub.RoomSize(RoleRoom(types.RoleGestao)))
	assert.Equal(t, 1, hub.RoomSize(UserRoom("u2")))

	b := NewBroadcaster(hub)
	b.BroadcastToRoles([]types.Role{types.RoleGestao, types.RoleAdmin}, MessageNotification, map[string]any{"titulo": "x"})

	msg := receive(t, gestao)
	assert.Equal(t, MessageNotification, msg.Type)
	assert.Equal(t, "x", msg.Payload["titulo"])

	b.SendToUser("u2", MessagePong, nil)
	assert.Equal(t, MessagePong, receive(t, producao).Type)

	cancel()
	<-done

	_, open := <-gestao.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ConnectedClients())
}

func TestClientCannotJoinRoleRooms(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newClient(hub, "u1", types.RoleProducao)

	c.handleMessage([]byte(`{"action":"join","room":"role:ADMIN"}`))
	assert.Equal(t, 0, hub.RoomSize("role:ADMIN"))

	c.handleMessage([]byte(`{"action":"join","room":"projeto:1"}`))
	assert.Equal(t, 1, hub.RoomSize("projeto:1"))
	assert.Equal(t, MessageAck, receive(t, c).Type)
}

func TestHandleWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	gin.SetMode(gin.TestMode)

	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	router := gin.New()
	router.GET("/api/ws", NewHandler(hub, secret).HandleWebSocket)
	srv := httptest.NewServer(router)

	resp, err := http.Get(srv.URL + "/api/ws?token=bad")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + signed(t, "u9", types.RoleAdmin)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.RoomSize(RoleRoom(types.RoleAdmin)) == 1 }, 2*time.Second, 10*time.Millisecond)

	NewBroadcaster(hub).BroadcastToRoles([]types.Role{types.RoleAdmin}, MessageDailyAlerts, map[string]any{"total": 2})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), string(MessageDailyAlerts))

	conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	srv.Close()
}
