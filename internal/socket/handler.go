// internal/socket/handler.go
package socket

import (
	"net/http"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler handles WebSocket connections
type Handler struct {
	Hub       *Hub
	JWTSecret string
	upgrader  websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowedOrigins empty accepts
// any origin.
func NewHandler(hub *Hub, jwtSecret string, allowedOrigins ...string) *Handler {
	return &Handler{
		Hub:       hub,
		JWTSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket upgrades the request. Browsers cannot set headers on a
// websocket handshake, so the session token comes in the query string.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token não informado"})
		return
	}

	userID, role, err := h.parseToken(tokenString)
	if err != nil {
		h.Hub.log.Debug("websocket token rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.Hub, userID, role, conn)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) parseToken(tokenString string) (string, types.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", "", jwt.ErrTokenInvalidSubject
	}
	role, _ := claims["role"].(string)
	return userID, types.Role(role), nil
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, userID string, role types.Role, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		Role:     role,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    make(map[string]bool),
		lastPing: time.Now(),
	}
}
