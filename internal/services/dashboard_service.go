package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	"staffhub/pkg/constants"
	"staffhub/pkg/engagement"
)

var tracer = otel.Tracer("staffhub/services")

type DashboardServiceInterface interface {
	CompanyStats(ctx context.Context) ([]dto.CompanyStatsDTO, error)
	Overview(ctx context.Context) (*dto.OverviewDTO, error)
	Invalidate(ctx context.Context)
}

type DashboardService struct {
	companyRepo  repositories.CompanyRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	commRepo     repositories.CommunicationRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	ttl          time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewDashboardService(
	companyRepo repositories.CompanyRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	commRepo repositories.CommunicationRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		commRepo:     commRepo,
		cacheRepo:    cacheRepo,
		ttl:          ttl,
		now:          time.Now,
		logger:       logger,
	}
}

// cacheGet возвращает true, если значение найдено и разобрано. Ошибки кеша
// не мешают построить дашборд из базы.
func (s *DashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cacheRepo == nil || s.ttl <= 0 {
		return false
	}
	cached, err := s.cacheRepo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			s.logger.Warn("Ошибка чтения кеша дашборда", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("Повреждённое значение в кеше дашборда", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cacheRepo == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cacheRepo.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Ошибка записи кеша дашборда", zap.String("key", key), zap.Error(err))
	}
}

// generation читает номер поколения кеша. Поколение фиксируется до расчёта,
// поэтому значение, посчитанное во время сброса, ляжет под устаревший ключ.
// false - кешем пользоваться нельзя.
func (s *DashboardService) generation(ctx context.Context) (int64, bool) {
	if s.cacheRepo == nil || s.ttl <= 0 {
		return 0, false
	}
	raw, err := s.cacheRepo.Get(ctx, constants.CacheKeyDashboardGeneration)
	if errors.Is(err, repositories.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("Ошибка чтения поколения кеша дашборда", zap.Error(err))
		return 0, false
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("Повреждённое поколение кеша дашборда", zap.String("value", raw), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// Invalidate сбрасывает закешированные показатели после изменения журнала сообщений.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cacheRepo == nil {
		return
	}
	gen, err := s.cacheRepo.Incr(ctx, constants.CacheKeyDashboardGeneration)
	if err != nil {
		s.logger.Warn("Ошибка сброса кеша дашборда", zap.Error(err))
		return
	}
	s.logger.Debug("Кеш дашборда сброшен", zap.Int64("generation", gen))
}

func (s *DashboardService) CompanyStats(ctx context.Context) ([]dto.CompanyStatsDTO, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.CompanyStats")
	defer span.End()

	gen, cacheable := s.generation(ctx)
	stats, err := s.companyStats(ctx, gen, cacheable)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return stats, nil
}

func (s *DashboardService) companyStats(ctx context.Context, gen int64, cacheable bool) ([]dto.CompanyStatsDTO, error) {
	span := trace.SpanFromContext(ctx)
	key := fmt.Sprintf(constants.CacheKeyDashboardCompanies, gen)

	var stats []dto.CompanyStatsDTO
	hit := cacheable && s.cacheGet(ctx, key, &stats)
	span.SetAttributes(attribute.Bool("cache.companies.hit", hit), attribute.Int64("cache.generation", gen))
	if hit {
		return stats, nil
	}

	stats, err := s.buildCompanyStats(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cacheSet(ctx, key, stats)
	}
	return stats, nil
}

func (s *DashboardService) buildCompanyStats(ctx context.Context) ([]dto.CompanyStatsDTO, error) {
	var (
		companies []entities.Company
		employees map[uint64]int64
		counts    []entities.StatusCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		companies, err = s.companyRepo.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		employees, err = s.employeeRepo.CountByCompany(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.commRepo.StatusCounts(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Ошибка загрузки показателей дашборда", zap.Error(err))
		return nil, err
	}

	byCompany := make(map[uint64]entities.StatusCounts, len(counts))
	for _, c := range counts {
		byCompany[c.CompanyID] = c
	}

	stats := make([]dto.CompanyStatsDTO, 0, len(companies))
	for _, c := range companies {
		sc := byCompany[c.ID]
		stats = append(stats, dto.CompanyStatsDTO{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			Status:      c.Status,
			Employees:   employees[c.ID],
			Messages: dto.MessageCountsDTO{
				Sent:      sc.Sent,
				Read:      sc.Read,
				Scheduled: sc.Scheduled,
				Draft:     sc.Draft,
			},
			Engagement: engagement.Summarize(sc.Sent, sc.Read),
		})
	}
	return stats, nil
}

func (s *DashboardService) Overview(ctx context.Context) (*dto.OverviewDTO, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Overview")
	defer span.End()

	gen, cacheable := s.generation(ctx)
	key := fmt.Sprintf(constants.CacheKeyDashboardOverview, gen)

	var overview dto.OverviewDTO
	if cacheable && s.cacheGet(ctx, key, &overview) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &overview, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	stats, err := s.companyStats(ctx, gen, cacheable)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	overview = Summarize(stats, s.now())
	if cacheable {
		s.cacheSet(ctx, key, overview)
	}
	return &overview, nil
}

// Summarize сводит показатели компаний в общий обзор.
func Summarize(stats []dto.CompanyStatsDTO, now time.Time) dto.OverviewDTO {
	overview := dto.OverviewDTO{Companies: len(stats), GeneratedAt: now.UTC()}
	summaries := make([]engagement.Summary, 0, len(stats))
	for _, st := range stats {
		if st.Status == entities.CompanyStatusActive {
			overview.ActiveCompanies++
		}
		overview.Employees += st.Employees
		overview.Messages.Sent += st.Messages.Sent
		overview.Messages.Read += st.Messages.Read
		overview.Messages.Scheduled += st.Messages.Scheduled
		overview.Messages.Draft += st.Messages.Draft
		summaries = append(summaries, st.Engagement)
	}
	overview.Engagement = engagement.Merge(summaries...)
	return overview
}
