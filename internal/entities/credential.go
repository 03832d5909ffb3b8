package entities

import (
	"time"

	"github.com/google/uuid"

	"staffhub/pkg/types"
)

// Credential - OAuth-токены пользователя для стороннего сервиса.
// Токены хранятся зашифрованными.
type Credential struct {
	ID           uint64     `db:"id"`
	UserID       uuid.UUID  `db:"user_id"`
	Provider     string     `db:"provider"`
	AccessToken  string     `db:"access_token"`
	RefreshToken *string    `db:"refresh_token"`
	Scope        *string    `db:"scope"`
	ExpiresAt    *time.Time `db:"expires_at"`

	types.BaseEntity
}
