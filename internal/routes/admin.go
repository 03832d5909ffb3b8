package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runAdminRouter(adminGroup *echo.Group, authService services.AuthServiceInterface, employeeService services.EmployeeServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewAdminController(authService, employeeService, logger)

	adminGroup.GET("/users", ctrl.ListUsers)
	adminGroup.PUT("/user/:id", ctrl.UpdateUser)
	adminGroup.DELETE("/user/:id", ctrl.DeleteUser)
	adminGroup.POST("/employees/legacy-import", ctrl.ImportLegacyAttributes)
}
