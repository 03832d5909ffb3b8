package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/events"
	"staffhub/internal/repositories"
	"staffhub/pkg/channel"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/eventbus"
	"staffhub/pkg/types"
	"staffhub/pkg/utils"
)

type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type CommunicationServiceInterface interface {
	Send(ctx context.Context, payload dto.SendCommunicationDTO) (*dto.SendResultDTO, error)
	Preview(ctx context.Context, employeeID uint64) (*dto.ChannelPreviewDTO, error)
	FindCommunication(ctx context.Context, id uint64) (*dto.CommunicationDTO, error)
	MarkRead(ctx context.Context, id uint64) (*dto.CommunicationDTO, error)
	UpdateStatus(ctx context.Context, id uint64, payload dto.UpdateCommunicationStatusDTO) (*dto.CommunicationDTO, error)
	GetCommunications(ctx context.Context, filter types.Filter) ([]dto.CommunicationDTO, uint64, error)
}

// Разрешённые ручные переходы статусов.
var statusTransitions = map[string][]string{
	entities.MessageStatusDraft:     {entities.MessageStatusScheduled, entities.MessageStatusSent},
	entities.MessageStatusScheduled: {entities.MessageStatusDraft, entities.MessageStatusSent},
	entities.MessageStatusSent:      {entities.MessageStatusRead},
}

type CommunicationService struct {
	commRepo     repositories.CommunicationRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	companyRepo  repositories.CompanyRepositoryInterface
	dispatcher   Dispatcher
	publisher    EventPublisher
	now          func() time.Time
	logger       *zap.Logger
}

func NewCommunicationService(
	commRepo repositories.CommunicationRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	dispatcher Dispatcher,
	publisher EventPublisher,
	logger *zap.Logger,
) *CommunicationService {
	return &CommunicationService{
		commRepo:     commRepo,
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		dispatcher:   dispatcher,
		publisher:    publisher,
		now:          time.Now,
		logger:       logger,
	}
}

func communicationToDTO(l *entities.CommunicationLog) *dto.CommunicationDTO {
	return &dto.CommunicationDTO{
		ID:          l.ID,
		MessageID:   l.MessageID.String(),
		CompanyID:   l.CompanyID,
		EmployeeID:  l.EmployeeID,
		Channel:     l.Channel,
		Address:     l.Address,
		Fallback:    l.Fallback,
		Status:      l.Status,
		Subject:     l.Subject,
		Body:        l.Body,
		ScheduledAt: l.ScheduledAt,
		SentAt:      l.SentAt,
		ReadAt:      l.ReadAt,
		CreatedAt:   l.CreatedAt,
	}
}

func contactOf(e *entities.Employee) channel.Contact {
	return channel.Contact{
		Phone:           utils.SafeDeref(e.Phone),
		TelegramHandle:  utils.SafeDeref(e.TelegramHandle),
		Email:           utils.SafeDeref(e.Email),
		EmailSubscribed: e.EmailSubscribed,
	}
}

// companyOrder возвращает порядок каналов компании. Некорректные значения,
// попавшие в базу в обход API, игнорируются.
func (s *CommunicationService) companyOrder(ctx context.Context, companyID uint64, cache map[uint64][]channel.Channel) ([]channel.Channel, error) {
	if order, ok := cache[companyID]; ok {
		return order, nil
	}
	company, err := s.companyRepo.FindCompany(ctx, companyID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Компания не найдена")
		}
		return nil, err
	}
	order, err := channel.ParseOrder(company.FallbackOrder)
	if err != nil {
		s.logger.Warn("Некорректный порядок каналов компании, используется порядок по умолчанию",
			zap.Uint64("company_id", companyID), zap.Error(err))
		order = nil
	}
	cache[companyID] = order
	return order, nil
}

func (s *CommunicationService) findEmployee(ctx context.Context, id uint64) (*entities.Employee, error) {
	e, err := s.employeeRepo.FindEmployee(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Сотрудник не найден")
		}
		return nil, err
	}
	return e, nil
}

func (s *CommunicationService) Preview(ctx context.Context, employeeID uint64) (*dto.ChannelPreviewDTO, error) {
	e, err := s.findEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	order, err := s.companyOrder(ctx, e.CompanyID, map[uint64][]channel.Channel{})
	if err != nil {
		return nil, err
	}
	sel := channel.Select(order, contactOf(e))
	return &dto.ChannelPreviewDTO{
		EmployeeID: e.ID,
		Order:      channel.Strings(order),
		Channel:    sel.Channel.String(),
		Address:    sel.Address,
		Fallback:   sel.Fallback,
		Reason:     sel.Reason,
	}, nil
}

// initialStatus: черновик, отложенное (время в будущем) или отправленное сразу.
func initialStatus(payload dto.SendCommunicationDTO, now time.Time) string {
	switch {
	case payload.Draft:
		return entities.MessageStatusDraft
	case payload.ScheduledAt != nil && payload.ScheduledAt.After(now):
		return entities.MessageStatusScheduled
	default:
		return entities.MessageStatusSent
	}
}

// Send записывает сообщение для каждого сотрудника, выбирая канал по порядку
// компании. Ошибка по одному сотруднику не прерывает отправку остальным.
func (s *CommunicationService) Send(ctx context.Context, payload dto.SendCommunicationDTO) (*dto.SendResultDTO, error) {
	now := s.now()
	status := initialStatus(payload, now)
	messageID := uuid.New()

	var senderID *uuid.UUID
	if id, err := utils.GetUserIDFromCtx(ctx); err == nil {
		senderID = &id
	}

	logger := s.logger.With(zap.String("message_id", messageID.String()), zap.String("status", status))
	result := &dto.SendResultDTO{Created: []dto.CommunicationDTO{}, Failed: []dto.SendFailureDTO{}}
	orders := make(map[uint64][]channel.Channel)
	seen := make(map[uint64]bool, len(payload.EmployeeIDs))

	for _, employeeID := range payload.EmployeeIDs {
		if seen[employeeID] {
			continue
		}
		seen[employeeID] = true

		l, err := s.sendOne(ctx, employeeID, payload, status, messageID, senderID, now, orders)
		if err != nil {
			logger.Warn("Сообщение сотруднику не записано", zap.Uint64("employee_id", employeeID), zap.Error(err))
			result.Failed = append(result.Failed, dto.SendFailureDTO{EmployeeID: employeeID, Error: errorMessage(err)})
			continue
		}
		result.Created = append(result.Created, *communicationToDTO(l))
	}

	logger.Info("Рассылка обработана", zap.Int("created", len(result.Created)), zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *CommunicationService) sendOne(
	ctx context.Context,
	employeeID uint64,
	payload dto.SendCommunicationDTO,
	status string,
	messageID uuid.UUID,
	senderID *uuid.UUID,
	now time.Time,
	orders map[uint64][]channel.Channel,
) (*entities.CommunicationLog, error) {
	e, err := s.findEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, apperrors.NewValidationError("сотрудник %d неактивен", employeeID)
	}
	order, err := s.companyOrder(ctx, e.CompanyID, orders)
	if err != nil {
		return nil, err
	}
	sel := channel.Select(order, contactOf(e))

	l := entities.CommunicationLog{
		MessageID:  messageID,
		CompanyID:  e.CompanyID,
		EmployeeID: e.ID,
		SenderID:   senderID,
		Channel:    sel.Channel.String(),
		Address:    sel.Address,
		Fallback:   sel.Fallback,
		Status:     status,
		Subject:    utils.NilIfBlank(utils.SafeDeref(payload.Subject)),
		Body:       payload.Body,
		CreatedAt:  now,
	}
	switch status {
	case entities.MessageStatusSent:
		l.SentAt = &now
	case entities.MessageStatusScheduled:
		l.ScheduledAt = payload.ScheduledAt
	}

	id, err := s.commRepo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	l.ID = id

	if status == entities.MessageStatusSent {
		s.deliver(ctx, l, now)
	}
	return &l, nil
}

func (s *CommunicationService) deliver(ctx context.Context, l entities.CommunicationLog, at time.Time) {
	if err := s.dispatcher.Dispatch(ctx, l); err != nil {
		s.logger.Error("Ошибка передачи сообщения в канал", zap.Uint64("communication_id", l.ID), zap.Error(err))
	}
	s.publisher.Publish(ctx, events.CommunicationSentEvent{EventID: uuid.New(), Log: l, OccurredAt: at})
}

func (s *CommunicationService) find(ctx context.Context, id uint64) (*entities.CommunicationLog, error) {
	l, err := s.commRepo.Find(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Сообщение не найдено")
		}
		return nil, err
	}
	return l, nil
}

func (s *CommunicationService) FindCommunication(ctx context.Context, id uint64) (*dto.CommunicationDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return communicationToDTO(l), nil
}

// MarkRead идемпотентна: повторная отметка возвращает уже прочитанное сообщение.
func (s *CommunicationService) MarkRead(ctx context.Context, id uint64) (*dto.CommunicationDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == entities.MessageStatusRead {
		return communicationToDTO(l), nil
	}
	if l.Status != entities.MessageStatusSent {
		return nil, apperrors.NewValidationError("прочитанным можно отметить только отправленное сообщение (текущий статус: %s)", l.Status)
	}
	return s.transition(ctx, l, entities.MessageStatusRead, nil)
}

func (s *CommunicationService) UpdateStatus(ctx context.Context, id uint64, payload dto.UpdateCommunicationStatusDTO) (*dto.CommunicationDTO, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var scheduledAt *time.Time
	if payload.Status == entities.MessageStatusScheduled {
		if payload.ScheduledAt == nil || !payload.ScheduledAt.After(s.now()) {
			return nil, apperrors.NewValidationError("для отложенной отправки нужно время в будущем (scheduled_at)")
		}
		at := payload.ScheduledAt.UTC()
		scheduledAt = &at
	}

	if l.Status == payload.Status {
		// Повторный scheduled с новым временем - перенос отправки.
		if scheduledAt == nil || (l.ScheduledAt != nil && l.ScheduledAt.Equal(*scheduledAt)) {
			return communicationToDTO(l), nil
		}
	} else if !transitionAllowed(l.Status, payload.Status) {
		return nil, apperrors.NewValidationError("переход статуса %s -> %s недопустим", l.Status, payload.Status)
	}
	return s.transition(ctx, l, payload.Status, scheduledAt)
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *CommunicationService) transition(ctx context.Context, l *entities.CommunicationLog, status string, scheduledAt *time.Time) (*dto.CommunicationDTO, error) {
	now := s.now()
	previous := l.Status
	if err := s.commRepo.UpdateStatus(ctx, l.ID, status, now, scheduledAt); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Сообщение не найдено")
		}
		s.logger.Error("Ошибка смены статуса сообщения", zap.Uint64("id", l.ID), zap.String("status", status), zap.Error(err))
		return nil, err
	}

	l.Status = status
	switch status {
	case entities.MessageStatusRead:
		l.ReadAt = &now
		if l.SentAt == nil {
			l.SentAt = &now
		}
		s.publisher.Publish(ctx, events.CommunicationReadEvent{EventID: uuid.New(), Log: *l, OccurredAt: now})
	case entities.MessageStatusSent:
		l.SentAt = &now
		l.ReadAt = nil
		s.deliver(ctx, *l, now)
	default:
		l.SentAt = nil
		l.ReadAt = nil
		l.ScheduledAt = scheduledAt
		s.publisher.Publish(ctx, events.CommunicationStatusEvent{EventID: uuid.New(), Log: *l, Previous: previous, OccurredAt: now})
	}

	s.logger.Info("Статус сообщения изменён",
		zap.Uint64("id", l.ID),
		zap.String("from", previous),
		zap.String("to", status),
	)
	return communicationToDTO(l), nil
}

func (s *CommunicationService) GetCommunications(ctx context.Context, filter types.Filter) ([]dto.CommunicationDTO, uint64, error) {
	logs, total, err := s.commRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении журнала сообщений", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CommunicationDTO, 0, len(logs))
	for i := range logs {
		result = append(result, *communicationToDTO(&logs[i]))
	}
	return result, total, nil
}

func errorMessage(err error) string {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}
