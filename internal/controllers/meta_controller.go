package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

type MetaController struct {
	metaService *services.MetaService
	logger      *zap.Logger
}

func NewMetaController(metaService *services.MetaService, logger *zap.Logger) *MetaController {
	return &MetaController{metaService: metaService, logger: logger}
}

func (c *MetaController) Meta(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, c.metaService.Meta(), "Сведения о сборке", http.StatusOK)
}

func (c *MetaController) Health(ctx echo.Context) error {
	res := c.metaService.Health(ctx.Request().Context())
	if res.Status != "ok" {
		c.logger.Warn("Health: сервис работает в деградированном режиме", zap.Any("services", res.Services))
		return ctx.JSON(http.StatusServiceUnavailable, utils.HTTPResponse{Status: false, Body: res, Message: "Сервис работает с ограничениями"})
	}
	return utils.SuccessResponse(ctx, res, "Сервис работает", http.StatusOK)
}
