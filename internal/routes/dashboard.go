package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runDashboardRouter(secureGroup *echo.Group, dashboardService services.DashboardServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewDashboardController(dashboardService, logger)

	secureGroup.GET("/dashboard", ctrl.Overview)
	secureGroup.GET("/dashboard/companies", ctrl.CompanyStats)
	secureGroup.GET("/dashboard/export", ctrl.Export)
}
