package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type SignUpDTO struct {
	Email     string  `json:"email" validate:"required,custom_email"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	FullName  string  `json:"full_name" validate:"omitempty,min=2,max=150"`
	CompanyID *uint64 `json:"company_id" validate:"omitempty,gt=0"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,custom_email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthUserDTO struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	AppRole      string     `json:"app_role,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	BannedUntil  *time.Time `json:"banned_until,omitempty"`
}

type SessionDTO struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
	User         *AuthUserDTO `json:"user"`
	Employee     *EmployeeDTO `json:"employee,omitempty"`
	// Подтверждение email ещё не пройдено, сессии нет.
	ConfirmationPending bool `json:"confirmation_pending,omitempty"`
}

type MeDTO struct {
	User     AuthUserDTO  `json:"user"`
	Employee *EmployeeDTO `json:"employee"`
	IsAdmin  bool         `json:"is_admin"`
}

type AdminUpdateUserDTO struct {
	Email    null.String `json:"email" validate:"omitempty,custom_email"`
	Password null.String `json:"password" validate:"omitempty,min=6,max=72"`
	AppRole  null.String `json:"app_role" validate:"omitempty,oneof=admin user"`
	Banned   null.Bool   `json:"banned"`
}
