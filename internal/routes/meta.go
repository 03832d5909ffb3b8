package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runMetaRouter(api *echo.Group, metaService *services.MetaService, logger *zap.Logger) {
	ctrl := controllers.NewMetaController(metaService, logger)
	api.GET("/meta", ctrl.Meta)
	api.GET("/health", ctrl.Health)
}
