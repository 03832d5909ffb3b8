package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateCompanyDTO struct {
	Name          string   `json:"name" validate:"required,min=2,max=150"`
	Industry      *string  `json:"industry" validate:"omitempty,max=100"`
	Status        string   `json:"status" validate:"omitempty,company_status"`
	FallbackOrder []string `json:"fallback_order" validate:"omitempty,max=4,dive,channel"`
}

type UpdateCompanyDTO struct {
	Name     null.String `json:"name" validate:"omitempty,min=2,max=150"`
	Industry null.String `json:"industry" validate:"omitempty,max=100"`
	Status   null.String `json:"status" validate:"omitempty,company_status"`
}

type CompanyDTO struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Industry      *string   `json:"industry"`
	Status        string    `json:"status"`
	FallbackOrder []string  `json:"fallback_order"`
	EmployeeCount *int64    `json:"employee_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ShortCompanyDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// FallbackOrderDTO - пустой список сбрасывает порядок к порядку по умолчанию.
type FallbackOrderDTO struct {
	Order []string `json:"order" validate:"max=4,dive,channel"`
}

type FallbackDTO struct {
	CompanyID uint64   `json:"company_id"`
	Order     []string `json:"order"`
	Effective []string `json:"effective"`
	IsDefault bool     `json:"is_default"`
}

type CompanyEmployeeCountDTO struct {
	CompanyID   uint64 `json:"company_id"`
	CompanyName string `json:"company_name"`
	Employees   int64  `json:"employees"`
}
