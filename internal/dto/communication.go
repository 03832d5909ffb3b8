package dto

import "time"

type SendCommunicationDTO struct {
	EmployeeIDs []uint64   `json:"employee_ids" validate:"required,min=1,max=500,dive,gt=0"`
	Subject     *string    `json:"subject" validate:"omitempty,max=200"`
	Body        string     `json:"body" validate:"required,min=1,max=5000"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Draft       bool       `json:"draft"`
}

// ScheduledAt обязателен (и в будущем) при переводе в scheduled, иначе игнорируется.
type UpdateCommunicationStatusDTO struct {
	Status      string     `json:"status" validate:"required,message_status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type CommunicationDTO struct {
	ID          uint64     `json:"id"`
	MessageID   string     `json:"message_id"`
	CompanyID   uint64     `json:"company_id"`
	EmployeeID  uint64     `json:"employee_id"`
	Channel     string     `json:"channel"`
	Address     string     `json:"address"`
	Fallback    bool       `json:"fallback"`
	Status      string     `json:"status"`
	Subject     *string    `json:"subject"`
	Body        string     `json:"body"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	SentAt      *time.Time `json:"sent_at"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SendFailureDTO struct {
	EmployeeID uint64 `json:"employee_id"`
	Error      string `json:"error"`
}

type SendResultDTO struct {
	Created []CommunicationDTO `json:"created"`
	Failed  []SendFailureDTO   `json:"failed"`
}
