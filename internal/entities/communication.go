package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusRead      = "read"
	MessageStatusScheduled = "scheduled"
	MessageStatusDraft     = "draft"
)

type CommunicationLog struct {
	ID          uint64     `json:"id" db:"id"`
	MessageID   uuid.UUID  `json:"message_id" db:"message_id"`
	CompanyID   uint64     `json:"company_id" db:"company_id"`
	EmployeeID  uint64     `json:"employee_id" db:"employee_id"`
	SenderID    *uuid.UUID `json:"sender_id,omitempty" db:"sender_id"`
	Channel     string     `json:"channel" db:"channel"`
	Address     string     `json:"address" db:"address"`
	Fallback    bool       `json:"fallback" db:"fallback"`
	Status      string     `json:"status" db:"status"`
	Subject     *string    `json:"subject,omitempty" db:"subject"`
	Body        string     `json:"body" db:"body"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt      *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// StatusCounts - число сообщений компании по статусам. Read входит в Sent:
// прочитанное сообщение было отправлено.
type StatusCounts struct {
	CompanyID uint64 `db:"company_id"`
	Sent      int64  `db:"sent"`
	Read      int64  `db:"read"`
	Scheduled int64  `db:"scheduled"`
	Draft     int64  `db:"draft"`
}
