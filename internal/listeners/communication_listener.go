package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"staffhub/internal/entities"
	"staffhub/internal/events"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/websocket"
)

type DashboardInvalidator interface {
	Invalidate(ctx context.Context)
}

type Broadcaster interface {
	Broadcast(payload interface{}, messageType string) error
}

// CommunicationListener сбрасывает кеш дашборда и оповещает подключённых
// клиентов об изменениях в журнале сообщений.
type CommunicationListener struct {
	dashboard DashboardInvalidator
	hub       Broadcaster
	logger    *zap.Logger
}

func NewCommunicationListener(dashboard DashboardInvalidator, hub Broadcaster, logger *zap.Logger) *CommunicationListener {
	return &CommunicationListener{dashboard: dashboard, hub: hub, logger: logger}
}

func (l *CommunicationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.CommunicationSentName, l.handle)
	bus.Subscribe(events.CommunicationReadName, l.handle)
	bus.Subscribe(events.CommunicationStatusName, l.handle)
	l.logger.Info("CommunicationListener подписан на события журнала сообщений")
}

func (l *CommunicationListener) handle(ctx context.Context, event eventbus.Event) error {
	var (
		messageType string
		payload     websocket.CommunicationPayload
	)
	switch e := event.(type) {
	case events.CommunicationSentEvent:
		messageType = websocket.TypeCommunicationSent
		payload = toPayload(e.EventID.String(), e.Log)
		payload.OccurredAt = e.OccurredAt
	case events.CommunicationReadEvent:
		messageType = websocket.TypeCommunicationRead
		payload = toPayload(e.EventID.String(), e.Log)
		payload.OccurredAt = e.OccurredAt
	case events.CommunicationStatusEvent:
		messageType = websocket.TypeDashboardStale
		payload = toPayload(e.EventID.String(), e.Log)
		payload.OccurredAt = e.OccurredAt
	default:
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	l.dashboard.Invalidate(ctx)

	if l.hub == nil {
		return nil
	}
	if err := l.hub.Broadcast(payload, messageType); err != nil {
		return fmt.Errorf("ошибка рассылки %s: %w", messageType, err)
	}
	l.logger.Debug("Событие журнала сообщений отправлено клиентам",
		zap.String("type", messageType),
		zap.Uint64("communication_id", payload.CommunicationID),
	)
	return nil
}

func toPayload(eventID string, log entities.CommunicationLog) websocket.CommunicationPayload {
	return websocket.CommunicationPayload{
		EventID:         eventID,
		CommunicationID: log.ID,
		MessageID:       log.MessageID.String(),
		CompanyID:       log.CompanyID,
		EmployeeID:      log.EmployeeID,
		Channel:         log.Channel,
		Status:          log.Status,
		Fallback:        log.Fallback,
	}
}
