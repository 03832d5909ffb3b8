package dto

import "time"

type CreateAnalysisDTO struct {
	CompanyID       uint64   `json:"company_id" validate:"required,gt=0"`
	CommunicationID *uint64  `json:"communication_id" validate:"omitempty,gt=0"`
	Sentiment       float64  `json:"sentiment" validate:"gte=-1,lte=1"`
	Category        *string  `json:"category" validate:"omitempty,max=100"`
	Summary         *string  `json:"summary" validate:"omitempty,max=2000"`
	Keywords        []string `json:"keywords" validate:"omitempty,max=50,dive,min=1,max=64"`
}

type AnalysisDTO struct {
	ID              uint64    `json:"id"`
	CompanyID       uint64    `json:"company_id"`
	CommunicationID *uint64   `json:"communication_id"`
	Sentiment       float64   `json:"sentiment"`
	Category        *string   `json:"category"`
	Summary         *string   `json:"summary"`
	Keywords        []string  `json:"keywords"`
	CreatedAt       time.Time `json:"created_at"`
}
