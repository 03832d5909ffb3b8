package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

type CompanyController struct {
	companyService services.CompanyServiceInterface
	logger         *zap.Logger
}

func NewCompanyController(companyService services.CompanyServiceInterface, logger *zap.Logger) *CompanyController {
	return &CompanyController{companyService: companyService, logger: logger}
}

func (c *CompanyController) GetCompanies(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.companyService.GetCompanies(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetCompanies: ошибка при получении списка компаний", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список компаний успешно получен", http.StatusOK, total)
}

func (c *CompanyController) FindCompany(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.FindCompany(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Warn("FindCompany: компания не получена", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Компания успешно найдена", http.StatusOK)
}

func (c *CompanyController) CreateCompany(ctx echo.Context) error {
	var payload dto.CreateCompanyDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreateCompany: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.CreateCompany(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("CreateCompany: ошибка при создании компании", zap.Any("payload", payload), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Компания успешно создана", http.StatusCreated)
}

func (c *CompanyController) UpdateCompany(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateCompanyDTO
	raw, err := bindWithRaw(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.UpdateCompany(ctx.Request().Context(), id, payload, raw)
	if err != nil {
		c.logger.Error("UpdateCompany: ошибка при обновлении компании", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Компания успешно обновлена", http.StatusOK)
}

func (c *CompanyController) GetFallbackOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.GetFallbackOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Порядок каналов получен", http.StatusOK)
}

func (c *CompanyController) SetFallbackOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.FallbackOrderDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.SetFallbackOrder(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Warn("SetFallbackOrder: порядок каналов не сохранён", zap.Uint64("id", id), zap.Strings("order", payload.Order), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Порядок каналов сохранён", http.StatusOK)
}

func (c *CompanyController) EmployeeCounts(ctx echo.Context) error {
	res, err := c.companyService.EmployeeCounts(ctx.Request().Context())
	if err != nil {
		c.logger.Error("EmployeeCounts: ошибка подсчёта сотрудников", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Количество сотрудников по компаниям получено", http.StatusOK)
}
