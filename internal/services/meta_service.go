package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/pkg/buildinfo"
	"staffhub/pkg/config"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type MetaService struct {
	cfg     *config.Config
	info    buildinfo.Info
	checks  map[string]Pinger
	logger  *zap.Logger
	timeout time.Duration
}

func NewMetaService(cfg *config.Config, startedAt time.Time, checks map[string]Pinger, logger *zap.Logger) *MetaService {
	return &MetaService{
		cfg:     cfg,
		info:    buildinfo.From(cfg, startedAt),
		checks:  checks,
		logger:  logger,
		timeout: 3 * time.Second,
	}
}

func (s *MetaService) Meta() dto.MetaDTO {
	features := make(map[string]bool, len(s.cfg.Features))
	for name, enabled := range s.cfg.Features {
		features[name] = enabled
	}
	return dto.MetaDTO{
		Version:    s.info.Version,
		BuildTime:  s.info.BuildTime,
		BackendURL: s.info.BackendURL,
		Degraded:   s.cfg.Degraded(),
		Features:   features,
	}
}

// Health опрашивает зависимости. Статус "degraded", если хотя бы одна недоступна.
func (s *MetaService) Health(ctx context.Context) dto.HealthDTO {
	health := dto.HealthDTO{Status: "ok", Services: make(map[string]string, len(s.checks))}
	for name, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := check.Ping(checkCtx)
		cancel()
		if err != nil {
			s.logger.Warn("Зависимость недоступна", zap.String("service", name), zap.Error(err))
			health.Services[name] = "down"
			health.Status = "degraded"
			continue
		}
		health.Services[name] = "up"
	}
	return health
}
