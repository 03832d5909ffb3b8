package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"staffhub/internal/entities"
	"staffhub/internal/events"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/websocket"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

type sentMessage struct {
	payload     websocket.CommunicationPayload
	messageType string
}

type recordingHub struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (h *recordingHub) Broadcast(payload interface{}, messageType string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, sentMessage{payload: payload.(websocket.CommunicationPayload), messageType: messageType})
	return nil
}

func TestCommunicationListener_BroadcastsAndInvalidates(t *testing.T) {
	bus := eventbus.New(zap.NewNop())
	dashboard := &countingInvalidator{}
	hub := &recordingHub{}
	NewCommunicationListener(dashboard, hub, zap.NewNop()).Register(bus)

	at := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	log := entities.CommunicationLog{ID: 3, MessageID: uuid.New(), CompanyID: 1, EmployeeID: 10, Channel: "telegram", Status: "sent"}
	bus.Publish(context.Background(), events.CommunicationSentEvent{EventID: uuid.New(), Log: log, OccurredAt: at})
	bus.Wait()

	log.Status = "read"
	bus.Publish(context.Background(), events.CommunicationReadEvent{EventID: uuid.New(), Log: log, OccurredAt: at})
	bus.Wait()

	assert.Equal(t, 2, dashboard.calls)
	require.Len(t, hub.messages, 2)
	assert.Equal(t, websocket.TypeCommunicationSent, hub.messages[0].messageType)
	assert.Equal(t, websocket.TypeCommunicationRead, hub.messages[1].messageType)
	assert.Equal(t, uint64(3), hub.messages[1].payload.CommunicationID)
	assert.Equal(t, "read", hub.messages[1].payload.Status)
	assert.Equal(t, at, hub.messages[1].payload.OccurredAt)
}

func TestCommunicationListener_WithoutHub(t *testing.T) {
	dashboard := &countingInvalidator{}
	l := NewCommunicationListener(dashboard, nil, zap.NewNop())

	err := l.handle(context.Background(), events.CommunicationStatusEvent{EventID: uuid.New(), Previous: "draft"})
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.calls)
}
