package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/utils"
)

var dashboardExportHeaders = []string{
	"ID", "Компания", "Статус", "Сотрудники", "Отправлено", "Прочитано", "Запланировано", "Черновики", "Доля прочтения", "Оценка", "Уровень",
}

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(dashboardService services.DashboardServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

func (c *DashboardController) Overview(ctx echo.Context) error {
	res, err := c.dashboardService.Overview(ctx.Request().Context())
	if err != nil {
		c.logger.Error("Overview: ошибка построения сводки", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сводка получена", http.StatusOK)
}

func (c *DashboardController) CompanyStats(ctx echo.Context) error {
	res, err := c.dashboardService.CompanyStats(ctx.Request().Context())
	if err != nil {
		c.logger.Error("CompanyStats: ошибка построения статистики", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статистика по компаниям получена", http.StatusOK)
}

func (c *DashboardController) Export(ctx echo.Context) error {
	if format := ctx.QueryParam("format"); format != "" && format != "xlsx" {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError(fmt.Sprintf("Неподдерживаемый формат: %q", format)), c.logger)
	}

	stats, err := c.dashboardService.CompanyStats(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rows := make([][]interface{}, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, companyStatsToRow(s))
	}
	fileName := fmt.Sprintf("dashboard_%s.xlsx", time.Now().Format("2006-01-02"))
	return writeXLSX(ctx, "Вовлечённость", dashboardExportHeaders, rows, fileName)
}

func companyStatsToRow(s dto.CompanyStatsDTO) []interface{} {
	return []interface{}{
		s.CompanyID, s.CompanyName, s.Status, s.Employees,
		s.Messages.Sent, s.Messages.Read, s.Messages.Scheduled, s.Messages.Draft,
		s.Engagement.Ratio, s.Engagement.Score, string(s.Engagement.Band),
	}
}
