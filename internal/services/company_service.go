package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	"staffhub/pkg/channel"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
	"staffhub/pkg/utils"
)

type CompanyServiceInterface interface {
	GetCompanies(ctx context.Context, filter types.Filter) ([]dto.CompanyDTO, uint64, error)
	FindCompany(ctx context.Context, id uint64) (*dto.CompanyDTO, error)
	CreateCompany(ctx context.Context, payload dto.CreateCompanyDTO) (*dto.CompanyDTO, error)
	UpdateCompany(ctx context.Context, id uint64, payload dto.UpdateCompanyDTO, rawBody []byte) (*dto.CompanyDTO, error)
	GetFallbackOrder(ctx context.Context, id uint64) (*dto.FallbackDTO, error)
	SetFallbackOrder(ctx context.Context, id uint64, payload dto.FallbackOrderDTO) (*dto.FallbackDTO, error)
	EmployeeCounts(ctx context.Context) ([]dto.CompanyEmployeeCountDTO, error)
}

type CompanyService struct {
	companyRepo  repositories.CompanyRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	txManager    repositories.TxManagerInterface
	logger       *zap.Logger
}

func NewCompanyService(
	companyRepo repositories.CompanyRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) CompanyServiceInterface {
	return &CompanyService{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

func companyToDTO(c *entities.Company) *dto.CompanyDTO {
	order := c.FallbackOrder
	if order == nil {
		order = []string{}
	}
	return &dto.CompanyDTO{
		ID:            c.ID,
		Name:          c.Name,
		Industry:      c.Industry,
		Status:        c.Status,
		FallbackOrder: order,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (s *CompanyService) GetCompanies(ctx context.Context, filter types.Filter) ([]dto.CompanyDTO, uint64, error) {
	companies, total, err := s.companyRepo.GetCompanies(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении списка компаний", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.CompanyDTO, 0, len(companies))
	for i := range companies {
		d := companyToDTO(&companies[i].Company)
		count := companies[i].EmployeeCount
		d.EmployeeCount = &count
		result = append(result, *d)
	}
	return result, total, nil
}

func (s *CompanyService) FindCompany(ctx context.Context, id uint64) (*dto.CompanyDTO, error) {
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.employeeRepo.CountForCompany(ctx, id, true)
	if err != nil {
		s.logger.Error("Ошибка подсчёта сотрудников компании", zap.Uint64("company_id", id), zap.Error(err))
		return nil, err
	}
	d := companyToDTO(company)
	d.EmployeeCount = &count
	return d, nil
}

func (s *CompanyService) find(ctx context.Context, id uint64) (*entities.Company, error) {
	company, err := s.companyRepo.FindCompany(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Компания не найдена")
		}
		s.logger.Error("Ошибка при поиске компании", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) CreateCompany(ctx context.Context, payload dto.CreateCompanyDTO) (*dto.CompanyDTO, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("название компании обязательно")
	}
	exists, err := s.companyRepo.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("Компания с таким названием уже существует", nil)
	}

	order, err := channel.ParseOrder(payload.FallbackOrder)
	if err != nil {
		return nil, err
	}
	status := payload.Status
	if status == "" {
		status = entities.CompanyStatusActive
	}

	company := entities.Company{
		Name:          name,
		Industry:      utils.NilIfBlank(utils.SafeDeref(payload.Industry)),
		Status:        status,
		FallbackOrder: channel.Strings(order),
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var txErr error
		id, txErr = s.companyRepo.CreateCompany(ctx, tx, company)
		return txErr
	})
	if err != nil {
		s.logger.Error("Ошибка при создании компании", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Компания создана", zap.Uint64("id", id), zap.String("name", name))
	return s.FindCompany(ctx, id)
}

func (s *CompanyService) UpdateCompany(ctx context.Context, id uint64, payload dto.UpdateCompanyDTO, rawBody []byte) (*dto.CompanyDTO, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	sent, err := utils.SentFields(rawBody)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	if _, ok := sent["name"]; ok {
		name := strings.TrimSpace(payload.Name.String)
		if !payload.Name.Valid || name == "" {
			return nil, apperrors.NewValidationError("название компании не может быть пустым")
		}
		exists, err := s.companyRepo.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflictError("Компания с таким названием уже существует", nil)
		}
		changes["name"] = name
	}
	utils.PatchNullString(changes, sent, "industry", "industry", payload.Industry, nil)
	if _, ok := sent["status"]; ok {
		if !payload.Status.Valid {
			return nil, apperrors.NewValidationError("статус компании не может быть пустым")
		}
		changes["status"] = payload.Status.String
	}

	if len(changes) > 0 {
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return s.companyRepo.UpdateCompany(ctx, tx, id, changes)
		})
		if err != nil {
			s.logger.Error("Ошибка при обновлении компании", zap.Uint64("id", id), zap.Error(err))
			return nil, err
		}
		s.logger.Info("Компания обновлена", zap.Uint64("id", id), zap.Strings("fields", keys(changes)))
	}
	return s.FindCompany(ctx, id)
}

func fallbackToDTO(c *entities.Company) *dto.FallbackDTO {
	order, _ := channel.ParseOrder(c.FallbackOrder)
	effective := order
	if len(effective) == 0 {
		effective = channel.DefaultOrder
	}
	return &dto.FallbackDTO{
		CompanyID: c.ID,
		Order:     channel.Strings(order),
		Effective: channel.Strings(effective),
		IsDefault: len(order) == 0,
	}
}

func (s *CompanyService) GetFallbackOrder(ctx context.Context, id uint64) (*dto.FallbackDTO, error) {
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return fallbackToDTO(company), nil
}

func (s *CompanyService) SetFallbackOrder(ctx context.Context, id uint64, payload dto.FallbackOrderDTO) (*dto.FallbackDTO, error) {
	order, err := channel.ParseOrder(payload.Order)
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.UpdateFallbackOrder(ctx, id, channel.Strings(order)); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFoundError("Компания не найдена")
		}
		s.logger.Error("Ошибка при сохранении порядка каналов", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Порядок каналов обновлён", zap.Uint64("id", id), zap.Strings("order", channel.Strings(order)))
	return s.GetFallbackOrder(ctx, id)
}

// EmployeeCounts возвращает число активных сотрудников для каждой компании,
// включая компании без сотрудников.
func (s *CompanyService) EmployeeCounts(ctx context.Context) ([]dto.CompanyEmployeeCountDTO, error) {
	companies, err := s.companyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.employeeRepo.CountByCompany(ctx, true)
	if err != nil {
		s.logger.Error("Ошибка подсчёта сотрудников по компаниям", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CompanyEmployeeCountDTO, 0, len(companies))
	for _, c := range companies {
		result = append(result, dto.CompanyEmployeeCountDTO{
			CompanyID:   c.ID,
			CompanyName: c.Name,
			Employees:   counts[c.ID],
		})
	}
	return result, nil
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
