package entities

import (
	"github.com/google/uuid"

	"staffhub/pkg/types"
)

type Employee struct {
	ID              uint64     `json:"id" db:"id"`
	CompanyID       uint64     `json:"company_id" db:"company_id"`
	AuthUserID      *uuid.UUID `json:"auth_user_id,omitempty" db:"auth_user_id"`
	FullName        string     `json:"full_name" db:"full_name"`
	Email           *string    `json:"email,omitempty" db:"email"`
	Department      *string    `json:"department,omitempty" db:"department"`
	Position        *string    `json:"position,omitempty" db:"position"`
	Phone           *string    `json:"phone,omitempty" db:"phone"`
	TelegramHandle  *string    `json:"telegram_handle,omitempty" db:"telegram_handle"`
	EmailSubscribed bool       `json:"email_subscribed" db:"email_subscribed"`
	IsActive        bool       `json:"is_active" db:"is_active"`

	// Старый JSON-блоб с атрибутами; очищается после ImportLegacyAttributes.
	LegacyAttributes *string `json:"-" db:"legacy_attributes"`

	CompanyName *string `json:"-" db:"company_name"`

	types.BaseEntity
}
