package dto

import "time"

type MetaDTO struct {
	Version    string          `json:"version"`
	BuildTime  time.Time       `json:"build_time"`
	BackendURL string          `json:"backend_url"`
	Degraded   bool            `json:"degraded"`
	Features   map[string]bool `json:"features"`
}

type HealthDTO struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
