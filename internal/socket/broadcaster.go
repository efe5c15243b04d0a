package socket

import "github.com/camarpe/camarpe-backend/internal/types"

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// BroadcastToRoles sends one message to the room of each role. A user holds
// a single role, so nobody receives it twice.
func (b *Broadcaster) BroadcastToRoles(roles []types.Role, msgType MessageType, payload map[string]any) {
	for _, role := range roles {
		b.hub.SendToRoom(RoleRoom(role), msgType, payload, "")
	}
}

// SendToUser sends a message to every connection of one user.
func (b *Broadcaster) SendToUser(userID string, msgType MessageType, payload map[string]any) {
	b.hub.SendToRoom(UserRoom(userID), msgType, payload, "")
}

// OnlineByRole reports how many connections are in each role room.
func (b *Broadcaster) OnlineByRole() map[types.Role]int {
	out := make(map[types.Role]int, len(types.ValidRoles))
	for _, role := range types.ValidRoles {
		out[role] = b.hub.RoomSize(RoleRoom(role))
	}
	return out
}
