package websocket

import "time"

const (
	TypeCommunicationSent = "communication_sent"
	TypeCommunicationRead = "communication_read"
	TypeDashboardStale    = "dashboard_stale"
)

// Envelope - конверт сообщения: тип подсказывает фронтенду, что обновить.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type CommunicationPayload struct {
	EventID         string    `json:"eventId"`
	CommunicationID uint64    `json:"communicationId"`
	MessageID       string    `json:"messageId"`
	CompanyID       uint64    `json:"companyId"`
	EmployeeID      uint64    `json:"employeeId"`
	Channel         string    `json:"channel"`
	Status          string    `json:"status"`
	Fallback        bool      `json:"fallback"`
	OccurredAt      time.Time `json:"occurredAt"`
}
