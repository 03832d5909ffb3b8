package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateEmployeeDTO struct {
	CompanyID       uint64  `json:"company_id" validate:"required,gt=0"`
	AuthUserID      *string `json:"auth_user_id" validate:"omitempty,uuid"`
	FullName        string  `json:"full_name" validate:"required,min=2,max=150"`
	Email           *string `json:"email" validate:"omitempty,custom_email"`
	Department      *string `json:"department" validate:"omitempty,max=100"`
	Position        *string `json:"position" validate:"omitempty,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,phone_e164"`
	TelegramHandle  *string `json:"telegram_handle" validate:"omitempty,max=64"`
	EmailSubscribed *bool   `json:"email_subscribed"`
}

// UpdateEmployeeDTO - частичное обновление. Переданный null очищает поле.
type UpdateEmployeeDTO struct {
	CompanyID       null.Uint64 `json:"company_id" validate:"omitempty,gt=0"`
	FullName        null.String `json:"full_name" validate:"omitempty,min=2,max=150"`
	Email           null.String `json:"email" validate:"omitempty,custom_email"`
	Department      null.String `json:"department" validate:"omitempty,max=100"`
	Position        null.String `json:"position" validate:"omitempty,max=100"`
	Phone           null.String `json:"phone" validate:"omitempty,phone_e164"`
	TelegramHandle  null.String `json:"telegram_handle" validate:"omitempty,max=64"`
	EmailSubscribed null.Bool   `json:"email_subscribed"`
}

type SetActiveDTO struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type EmployeeDTO struct {
	ID              uint64           `json:"id"`
	Company         *ShortCompanyDTO `json:"company"`
	AuthUserID      *string          `json:"auth_user_id"`
	FullName        string           `json:"full_name"`
	Email           *string          `json:"email"`
	Department      *string          `json:"department"`
	Position        *string          `json:"position"`
	Phone           *string          `json:"phone"`
	TelegramHandle  *string          `json:"telegram_handle"`
	EmailSubscribed bool             `json:"email_subscribed"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type ChannelPreviewDTO struct {
	EmployeeID uint64   `json:"employee_id"`
	Order      []string `json:"order"`
	Channel    string   `json:"channel"`
	Address    string   `json:"address"`
	Fallback   bool     `json:"fallback"`
	Reason     string   `json:"reason"`
}

// ImportRowFailure - строка таблицы, которую не удалось импортировать. Line - номер строки в файле.
type ImportRowFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResultDTO struct {
	Processed int                `json:"processed"`
	Created   int                `json:"created"`
	Failed    []ImportRowFailure `json:"failed"`
}

type LegacyImportFailure struct {
	EmployeeID uint64 `json:"employee_id"`
	Error      string `json:"error"`
}

type LegacyImportResultDTO struct {
	Processed int                   `json:"processed"`
	Updated   int                   `json:"updated"`
	Failed    []LegacyImportFailure `json:"failed"`
}
