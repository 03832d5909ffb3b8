package entities

import (
	"staffhub/pkg/types"
)

const (
	CompanyStatusActive   = "active"
	CompanyStatusInactive = "inactive"
)

type Company struct {
	ID            uint64   `json:"id" db:"id"`
	Name          string   `json:"name" db:"name"`
	Industry      *string  `json:"industry,omitempty" db:"industry"`
	Status        string   `json:"status" db:"status"`
	FallbackOrder []string `json:"fallback_order,omitempty" db:"fallback_order"`

	types.BaseEntity
}

// CompanyWithCount - компания вместе с числом сотрудников (результат JOIN).
type CompanyWithCount struct {
	Company
	EmployeeCount int64 `db:"employee_count"`
}
