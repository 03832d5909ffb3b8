package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/phone"
	"staffhub/pkg/types"
	"staffhub/pkg/utils"
)

const legacyImportBatch = 200

type EmployeeServiceInterface interface {
	GetEmployees(ctx context.Context, filter types.Filter) ([]dto.EmployeeDTO, uint64, error)
	FindEmployee(ctx context.Context, id uint64) (*dto.EmployeeDTO, error)
	CreateEmployee(ctx context.Context, payload dto.CreateEmployeeDTO) (*dto.EmployeeDTO, error)
	UpdateEmployee(ctx context.Context, id uint64, payload dto.UpdateEmployeeDTO, rawBody []byte) (*dto.EmployeeDTO, error)
	SetActive(ctx context.Context, id uint64, active bool) (*dto.EmployeeDTO, error)
	ImportRows(ctx context.Context, companyID uint64, rows []EmployeeRow) (*dto.ImportResultDTO, error)
	ImportLegacyAttributes(ctx context.Context) (*dto.LegacyImportResultDTO, error)
}

// EmployeeRow - строка импорта сотрудников из таблицы.
type EmployeeRow struct {
	Line           int
	FullName       string
	Email          string
	Department     string
	Position       string
	Phone          string
	TelegramHandle string
}

type EmployeeService struct {
	employeeRepo repositories.EmployeeRepositoryInterface
	companyRepo  repositories.CompanyRepositoryInterface
	txManager    repositories.TxManagerInterface
	phones       *phone.Normalizer
	logger       *zap.Logger
}

func NewEmployeeService(
	employeeRepo repositories.EmployeeRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	txManager repositories.TxManagerInterface,
	phones *phone.Normalizer,
	logger *zap.Logger,
) EmployeeServiceInterface {
	if phones == nil {
		phones = phone.NewNormalizer(phone.DefaultRegion)
	}
	return &EmployeeService{
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		txManager:    txManager,
		phones:       phones,
		logger:       logger,
	}
}

func employeeToDTO(e *entities.Employee) *dto.EmployeeDTO {
	d := &dto.EmployeeDTO{
		ID:              e.ID,
		FullName:        e.FullName,
		Email:           e.Email,
		Department:      e.Department,
		Position:        e.Position,
		Phone:           e.Phone,
		TelegramHandle:  e.TelegramHandle,
		EmailSubscribed: e.EmailSubscribed,
		IsActive:        e.IsActive,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.AuthUserID != nil {
		id := e.AuthUserID.String()
		d.AuthUserID = &id
	}
	if e.CompanyID > 0 {
		d.Company = &dto.ShortCompanyDTO{ID: e.CompanyID, Name: utils.SafeDeref(e.CompanyName)}
	}
	return d
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func normalizeHandle(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

func (s *EmployeeService) GetEmployees(ctx context.Context, filter types.Filter) ([]dto.EmployeeDTO, uint64, error) {
	employees, total, err := s.employeeRepo.GetEmployees(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка сотрудников", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.EmployeeDTO, 0, len(employees))
	for i := range employees {
		result = append(result, *employeeToDTO(&employees[i]))
	}
	return result, total, nil
}

func (s *EmployeeService) FindEmployee(ctx context.Context, id uint64) (*dto.EmployeeDTO, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return employeeToDTO(e), nil
}

func (s *EmployeeService) find(ctx context.Context, id uint64) (*entities.Employee, error) {
	e, err := s.employeeRepo.FindEmployee(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Сотрудник не найден")
		}
		s.logger.Error("Ошибка при поиске сотрудника", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) ensureCompany(ctx context.Context, companyID uint64) error {
	if _, err := s.companyRepo.FindCompany(ctx, companyID); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return apperrors.NewNotFoundError("Компания не найдена")
		}
		return err
	}
	return nil
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, payload dto.CreateEmployeeDTO) (*dto.EmployeeDTO, error) {
	if err := s.ensureCompany(ctx, payload.CompanyID); err != nil {
		return nil, err
	}
	phoneNumber, err := s.phones.Normalize(utils.SafeDeref(payload.Phone))
	if err != nil {
		return nil, apperrors.NewValidationError("неверный формат телефона")
	}

	e := entities.Employee{
		CompanyID:       payload.CompanyID,
		FullName:        strings.TrimSpace(payload.FullName),
		Email:           utils.NilIfBlank(normalizeEmail(utils.SafeDeref(payload.Email))),
		Department:      utils.NilIfBlank(utils.SafeDeref(payload.Department)),
		Position:        utils.NilIfBlank(utils.SafeDeref(payload.Position)),
		Phone:           utils.NilIfBlank(phoneNumber),
		TelegramHandle:  utils.NilIfBlank(normalizeHandle(utils.SafeDeref(payload.TelegramHandle))),
		EmailSubscribed: true,
		IsActive:        true,
	}
	if payload.EmailSubscribed != nil {
		e.EmailSubscribed = *payload.EmailSubscribed
	}
	if payload.AuthUserID != nil && *payload.AuthUserID != "" {
		authID, err := uuid.Parse(*payload.AuthUserID)
		if err != nil {
			return nil, apperrors.NewValidationError("auth_user_id должен быть UUID")
		}
		e.AuthUserID = &authID
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		id, txErr = s.employeeRepo.CreateEmployee(ctx, tx, e)
		return txErr
	})
	if err != nil {
		s.logger.Error("Ошибка при создании сотрудника", zap.Uint64("company_id", e.CompanyID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Сотрудник создан", zap.Uint64("id", id), zap.Uint64("company_id", e.CompanyID))
	return s.FindEmployee(ctx, id)
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uint64, payload dto.UpdateEmployeeDTO, rawBody []byte) (*dto.EmployeeDTO, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	sent, err := utils.SentFields(rawBody)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if _, ok := sent["company_id"]; ok {
		if !payload.CompanyID.Valid {
			return nil, apperrors.NewValidationError("сотрудник должен принадлежать компании")
		}
		if err := s.ensureCompany(ctx, payload.CompanyID.Uint64); err != nil {
			return nil, err
		}
		changes["company_id"] = payload.CompanyID.Uint64
	}
	if _, ok := sent["full_name"]; ok {
		name := strings.TrimSpace(payload.FullName.String)
		if !payload.FullName.Valid || name == "" {
			return nil, apperrors.NewValidationError("ФИО сотрудника не может быть пустым")
		}
		changes["full_name"] = name
	}
	utils.PatchNullString(changes, sent, "email", "email", payload.Email, normalizeEmail)
	utils.PatchNullString(changes, sent, "department", "department", payload.Department, nil)
	utils.PatchNullString(changes, sent, "position", "position", payload.Position, nil)
	if _, ok := sent["phone"]; ok && payload.Phone.Valid && strings.TrimSpace(payload.Phone.String) != "" {
		if !s.phones.Valid(payload.Phone.String) {
			return nil, apperrors.NewValidationError("неверный формат телефона")
		}
	}
	utils.PatchNullString(changes, sent, "phone", "phone", payload.Phone, s.phones.Format)
	utils.PatchNullString(changes, sent, "telegram_handle", "telegram_handle", payload.TelegramHandle, normalizeHandle)
	utils.PatchNullBool(changes, sent, "email_subscribed", "email_subscribed", payload.EmailSubscribed)

	if len(changes) > 0 {
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return s.employeeRepo.UpdateEmployee(ctx, tx, id, changes)
		})
		if err != nil {
			s.logger.Error("Ошибка при обновлении сотрудника", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Info("Сотрудник обновлён", zap.Uint64("id", id), zap.Strings("fields", keys(changes)))
	}
	return s.FindEmployee(ctx, id)
}

func (s *EmployeeService) SetActive(ctx context.Context, id uint64, active bool) (*dto.EmployeeDTO, error) {
	if err := s.employeeRepo.SetActive(ctx, id, active); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Сотрудник не найден")
		}
		return nil, err
	}
	s.logger.Info("Изменён статус активности сотрудника", zap.Uint64("id", id), zap.Bool("active", active))
	return s.FindEmployee(ctx, id)
}

// ImportRows создаёт сотрудников компании из строк таблицы. Ошибка в строке не
// прерывает импорт, она попадает в Failed с номером строки файла.
func (s *EmployeeService) ImportRows(ctx context.Context, companyID uint64, rows []EmployeeRow) (*dto.ImportResultDTO, error) {
	if err := s.ensureCompany(ctx, companyID); err != nil {
		return nil, err
	}
	result := &dto.ImportResultDTO{Failed: []dto.ImportRowFailure{}}
	for _, row := range rows {
		result.Processed++
		name := strings.TrimSpace(row.FullName)
		if name == "" {
			result.Failed = append(result.Failed, dto.ImportRowFailure{Line: row.Line, Error: "пустое ФИО"})
			continue
		}
		phoneNumber, err := s.phones.Normalize(row.Phone)
		if err != nil {
			result.Failed = append(result.Failed, dto.ImportRowFailure{Line: row.Line, Error: "неверный формат телефона"})
			continue
		}
		e := entities.Employee{
			CompanyID:       companyID,
			FullName:        name,
			Email:           utils.NilIfBlank(normalizeEmail(row.Email)),
			Department:      utils.NilIfBlank(row.Department),
			Position:        utils.NilIfBlank(row.Position),
			Phone:           utils.NilIfBlank(phoneNumber),
			TelegramHandle:  utils.NilIfBlank(normalizeHandle(row.TelegramHandle)),
			EmailSubscribed: true,
			IsActive:        true,
		}
		if _, err := s.employeeRepo.CreateEmployee(ctx, nil, e); err != nil {
			result.Failed = append(result.Failed, dto.ImportRowFailure{Line: row.Line, Error: err.Error()})
			continue
		}
		result.Created++
	}
	s.logger.Info("Импорт сотрудников завершён",
		zap.Uint64("company_id", companyID),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// legacyAttributes - известные ключи старого JSON-блоба с атрибутами сотрудника.
type legacyAttributes struct {
	Phone           *string `json:"phone"`
	Mobile          *string `json:"mobile"`
	WhatsApp        *string `json:"whatsapp"`
	Telegram        *string `json:"telegram"`
	TelegramHandle  *string `json:"telegram_handle"`
	Department      *string `json:"department"`
	Area            *string `json:"area"`
	Position        *string `json:"position"`
	Cargo           *string `json:"cargo"`
	EmailSubscribed *bool   `json:"email_subscribed"`
	Subscribed      *bool   `json:"subscribed"`
}

func firstNonBlank(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// ParseLegacyAttributes разбирает старый блоб в набор изменений колонок.
// Уже заполненные типизированные поля не перезаписываются.
func ParseLegacyAttributes(e entities.Employee, phones *phone.Normalizer) (map[string]interface{}, error) {
	changes := map[string]interface{}{"legacy_attributes": nil}
	raw := strings.TrimSpace(utils.SafeDeref(e.LegacyAttributes))
	if raw == "" || raw == "null" || raw == "{}" {
		return changes, nil
	}

	var attrs legacyAttributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("неверный JSON атрибутов: %w", err)
	}

	if e.Phone == nil {
		number, err := phones.Normalize(firstNonBlank(attrs.Phone, attrs.Mobile, attrs.WhatsApp))
		if err != nil {
			return nil, err
		}
		if number != "" {
			changes["phone"] = number
		}
	}
	if e.TelegramHandle == nil {
		if handle := normalizeHandle(firstNonBlank(attrs.TelegramHandle, attrs.Telegram)); handle != "" {
			changes["telegram_handle"] = handle
		}
	}
	if e.Department == nil {
		if dep := firstNonBlank(attrs.Department, attrs.Area); dep != "" {
			changes["department"] = dep
		}
	}
	if e.Position == nil {
		if pos := firstNonBlank(attrs.Position, attrs.Cargo); pos != "" {
			changes["position"] = pos
		}
	}
	switch {
	case attrs.EmailSubscribed != nil:
		changes["email_subscribed"] = *attrs.EmailSubscribed
	case attrs.Subscribed != nil:
		changes["email_subscribed"] = *attrs.Subscribed
	}
	return changes, nil
}

// ImportLegacyAttributes однократно переносит старые JSON-атрибуты в типизированные
// колонки. Успешно разобранный блоб очищается, поэтому повторный запуск безопасен.
func (s *EmployeeService) ImportLegacyAttributes(ctx context.Context) (*dto.LegacyImportResultDTO, error) {
	result := &dto.LegacyImportResultDTO{Failed: []dto.LegacyImportFailure{}}
	failed := make(map[uint64]bool)

	for {
		batch, err := s.employeeRepo.ListWithLegacyAttributes(ctx, legacyImportBatch+uint64(len(failed)))
		if err != nil {
			s.logger.Error("Ошибка чтения сотрудников со старыми атрибутами", zap.Error(err))
			return nil, err
		}
		progressed := false
		for _, e := range batch {
			if failed[e.ID] {
				continue
			}
			progressed = true
			result.Processed++

			changes, err := ParseLegacyAttributes(e, s.phones)
			if err == nil {
				err = s.employeeRepo.UpdateEmployee(ctx, nil, e.ID, changes)
			}
			if err != nil {
				failed[e.ID] = true
				result.Failed = append(result.Failed, dto.LegacyImportFailure{EmployeeID: e.ID, Error: err.Error()})
				s.logger.Warn("Не удалось перенести атрибуты сотрудника", zap.Uint64("id", e.ID), zap.Error(err))
				continue
			}
			result.Updated++
		}
		if !progressed {
			break
		}
	}

	s.logger.Info("Перенос старых атрибутов завершён",
		zap.Int("processed", result.Processed),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}
