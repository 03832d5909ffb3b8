package events

import (
	"time"

	"github.com/google/uuid"

	"staffhub/internal/entities"
)

const (
	CommunicationSentName   = "communication.sent"
	CommunicationReadName   = "communication.read"
	CommunicationStatusName = "communication.status"
)

// CommunicationSentEvent возникает после записи сообщения в журнал.
type CommunicationSentEvent struct {
	EventID    uuid.UUID
	Log        entities.CommunicationLog
	OccurredAt time.Time
}

func (e CommunicationSentEvent) Name() string { return CommunicationSentName }

type CommunicationReadEvent struct {
	EventID    uuid.UUID
	Log        entities.CommunicationLog
	OccurredAt time.Time
}

func (e CommunicationReadEvent) Name() string { return CommunicationReadName }

// CommunicationStatusEvent - ручная смена статуса (например, draft -> scheduled).
type CommunicationStatusEvent struct {
	EventID    uuid.UUID
	Log        entities.CommunicationLog
	Previous   string
	OccurredAt time.Time
}

func (e CommunicationStatusEvent) Name() string { return CommunicationStatusName }
