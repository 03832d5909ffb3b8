package dto

import (
	"time"

	"staffhub/pkg/engagement"
)

type MessageCountsDTO struct {
	Sent      int64 `json:"sent"`
	Read      int64 `json:"read"`
	Scheduled int64 `json:"scheduled"`
	Draft     int64 `json:"draft"`
}

type CompanyStatsDTO struct {
	CompanyID   uint64             `json:"company_id"`
	CompanyName string             `json:"company_name"`
	Status      string             `json:"status"`
	Employees   int64              `json:"employees"`
	Messages    MessageCountsDTO   `json:"messages"`
	Engagement  engagement.Summary `json:"engagement"`
}

type OverviewDTO struct {
	Companies       int                `json:"companies"`
	ActiveCompanies int                `json:"active_companies"`
	Employees       int64              `json:"employees"`
	Messages        MessageCountsDTO   `json:"messages"`
	Engagement      engagement.Summary `json:"engagement"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
