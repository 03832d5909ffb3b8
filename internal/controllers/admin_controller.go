package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

const (
	defaultUsersPage    = 1
	defaultUsersPerPage = 50
)

type AdminController struct {
	authService     services.AuthServiceInterface
	employeeService services.EmployeeServiceInterface
	logger          *zap.Logger
}

func NewAdminController(authService services.AuthServiceInterface, employeeService services.EmployeeServiceInterface, logger *zap.Logger) *AdminController {
	return &AdminController{authService: authService, employeeService: employeeService, logger: logger}
}

func (c *AdminController) ListUsers(ctx echo.Context) error {
	page := queryInt(ctx, "page", defaultUsersPage)
	perPage := queryInt(ctx, "per_page", defaultUsersPerPage)

	res, err := c.authService.ListUsers(ctx.Request().Context(), page, perPage)
	if err != nil {
		c.logger.Error("ListUsers: ошибка получения пользователей", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список пользователей получен", http.StatusOK)
}

func (c *AdminController) UpdateUser(ctx echo.Context) error {
	id := ctx.Param("id")

	var payload dto.AdminUpdateUserDTO
	raw, err := bindWithRaw(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.authService.UpdateUser(ctx.Request().Context(), id, payload, raw)
	if err != nil {
		c.logger.Error("UpdateUser: пользователь не обновлён", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Пользователь обновлён", http.StatusOK)
}

func (c *AdminController) DeleteUser(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := c.authService.DeleteUser(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteUser: пользователь не удалён", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Пользователь удалён", http.StatusOK)
}

// ImportLegacyAttributes переносит устаревший JSON сотрудников в типизированные поля.
func (c *AdminController) ImportLegacyAttributes(ctx echo.Context) error {
	res, err := c.employeeService.ImportLegacyAttributes(ctx.Request().Context())
	if err != nil {
		c.logger.Error("ImportLegacyAttributes: ошибка переноса", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Перенос атрибутов завершён", http.StatusOK)
}

func queryInt(ctx echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
