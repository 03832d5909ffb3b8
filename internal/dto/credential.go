package dto

import "time"

type SaveCredentialDTO struct {
	AccessToken  string     `json:"access_token" validate:"required"`
	RefreshToken *string    `json:"refresh_token"`
	Scope        *string    `json:"scope" validate:"omitempty,max=500"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// CredentialStatusDTO не содержит самих токенов.
type CredentialStatusDTO struct {
	Provider  string     `json:"provider"`
	Connected bool       `json:"connected"`
	Expired   bool       `json:"expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Scope     *string    `json:"scope,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
