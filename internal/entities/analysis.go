package entities

import "time"

type MessageAnalysis struct {
	ID              uint64    `json:"id" db:"id"`
	CompanyID       uint64    `json:"company_id" db:"company_id"`
	CommunicationID *uint64   `json:"communication_id,omitempty" db:"communication_id"`
	Sentiment       float64   `json:"sentiment" db:"sentiment"`
	Category        *string   `json:"category,omitempty" db:"category"`
	Summary         *string   `json:"summary,omitempty" db:"summary"`
	Keywords        []string  `json:"keywords" db:"keywords"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
