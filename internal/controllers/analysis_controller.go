package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

type AnalysisController struct {
	analysisService services.AnalysisServiceInterface
	logger          *zap.Logger
}

func NewAnalysisController(analysisService services.AnalysisServiceInterface, logger *zap.Logger) *AnalysisController {
	return &AnalysisController{analysisService: analysisService, logger: logger}
}

func (c *AnalysisController) SaveAnalysis(ctx echo.Context) error {
	var payload dto.CreateAnalysisDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.analysisService.SaveMessageAnalysis(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("SaveAnalysis: ошибка сохранения анализа", zap.Uint64("company_id", payload.CompanyID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анализ сообщения сохранён", http.StatusCreated)
}

func (c *AnalysisController) GetAnalyses(ctx echo.Context) error {
	companyID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.analysisService.GetAnalyses(ctx.Request().Context(), companyID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анализы сообщений получены", http.StatusOK, total)
}
