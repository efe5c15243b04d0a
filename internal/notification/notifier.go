// Package notification pushes alerts to connected users by role.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/camarpe/camarpe-backend/internal/socket"
	"github.com/camarpe/camarpe-backend/internal/types"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notifier.go -destination=mocks/notifier_mock.go -package=mocks

// Notification types
const (
	TypeProjectStatusChanged = "project_status_changed"
	TypeProjectCreated       = "project_created"
	TypeDailyAlerts          = "avisos_diarios"
)

// Alert is one push message.
type Alert struct {
	Type    string         `json:"tipo"`
	Title   string         `json:"titulo"`
	Message string         `json:"mensagem"`
	Link    string         `json:"link,omitempty"`
	Data    map[string]any `json:"dados,omitempty"`
}

type Notifier interface {
	NotifyRoles(ctx context.Context, roles []types.Role, alert Alert) error
}

var ErrNoBroadcaster = errors.New("notification: broadcaster not configured")

// Service handles sending notifications
type Service struct {
	broadcaster *socket.Broadcaster
	log         *zap.Logger
}

func NewService(broadcaster *socket.Broadcaster, log *zap.Logger) *Service {
	return &Service{
		broadcaster: broadcaster,
		log:         log.With(zap.String("component", "notification")),
	}
}

// NotifyRoles fans the alert out to the role rooms. Delivery is fire and
// forget; only a missing broadcaster or a cancelled context is reported.
func (s *Service) NotifyRoles(ctx context.Context, roles []types.Role, alert Alert) error {
	if s == nil || s.broadcaster == nil {
		return ErrNoBroadcaster
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := map[string]any{
		"tipo":      alert.Type,
		"titulo":    alert.Title,
		"mensagem":  alert.Message,
		"createdAt": time.Now(),
	}
	if alert.Link != "" {
		payload["link"] = alert.Link
	}
	if len(alert.Data) > 0 {
		payload["dados"] = alert.Data
	}

	s.broadcaster.BroadcastToRoles(roles, messageTypeFor(alert.Type), payload)
	s.log.Debug("alert sent", zap.String("type", alert.Type), zap.Int("roles", len(roles)))
	return nil
}

func messageTypeFor(alertType string) socket.MessageType {
	switch alertType {
	case TypeProjectStatusChanged:
		return socket.MessageProjectStatusChanged
	case TypeProjectCreated:
		return socket.MessageProjectCreated
	case TypeDailyAlerts:
		return socket.MessageDailyAlerts
	default:
		return socket.MessageNotification
	}
}

// ProjectStatusChanged builds the alert sent after a production move.
func ProjectStatusChanged(projectID, projectName string, from, to types.ProductionStatus) Alert {
	return Alert{
		Type:    TypeProjectStatusChanged,
		Title:   "Status de produção alterado",
		Message: projectName + ": " + string(from) + " → " + string(to),
		Link:    "/projetos/" + projectID,
		Data: map[string]any{
			"projetoId": projectID,
			"de":        string(from),
			"para":      string(to),
		},
	}
}

// LeadConverted builds the alert sent when a lead becomes a project.
func LeadConverted(projectID, projectName, leadName string) Alert {
	return Alert{
		Type:    TypeProjectCreated,
		Title:   "Lead converteu em projeto",
		Message: leadName + " virou projeto.",
		Link:    "/projetos/" + projectID,
		Data:    map[string]any{"projetoId": projectID, "nome": projectName},
	}
}

// DailyDigest builds the morning summary pushed to management.
func DailyDigest(summary string) Alert {
	return Alert{
		Type:    TypeDailyAlerts,
		Title:   "Avisos do dia - Camarpe",
		Message: summary,
		Link:    "/dashboard",
	}
}
