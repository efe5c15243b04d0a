package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/socket"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifyRolesReachesRoleRoom(t *testing.T) {
	hub := socket.NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &socket.Client{
		UserID: "u1",
		Role:   types.RoleComercial,
		Hub:    hub,
		Send:   make(chan []byte, 4),
		Rooms:  map[string]bool{},
	}
	hub.Register(client)

	svc := NewService(socket.NewBroadcaster(hub), zap.NewNop())
	alert := ProjectStatusChanged("p1", "Cozinha", types.StatusAssembly, types.StatusEdgeBanding)
	require.NoError(t, svc.NotifyRoles(ctx, []types.Role{types.RoleComercial}, alert))

	select {
	case data := <-client.Send:
		var msg socket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, socket.MessageProjectStatusChanged, msg.Type)
		assert.Equal(t, "/projetos/p1", msg.Payload["link"])
		assert.Equal(t, "Cozinha: MONTAGEM → FITAGEM", msg.Payload["mensagem"])
	case <-time.After(2 * time.Second):
		t.Fatal("alert not delivered")
	}
}

func TestNotifyRolesWithoutBroadcaster(t *testing.T) {
	var svc *Service
	err := svc.NotifyRoles(context.Background(), types.AllRoles, Alert{})
	assert.ErrorIs(t, err, ErrNoBroadcaster)
}
