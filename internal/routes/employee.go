package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
	"staffhub/pkg/filestorage"
)

func runEmployeeRouter(secureGroup *echo.Group, employeeService services.EmployeeServiceInterface, communicationService services.CommunicationServiceInterface, archive filestorage.Storage, logger *zap.Logger) {
	ctrl := controllers.NewEmployeeController(employeeService, archive, logger)
	commCtrl := controllers.NewCommunicationController(communicationService, logger)

	secureGroup.GET("/employees", ctrl.GetEmployees)
	secureGroup.GET("/employees/export", ctrl.ExportEmployees)
	secureGroup.POST("/employees/import", ctrl.ImportEmployees)
	secureGroup.GET("/employee/:id", ctrl.FindEmployee)
	secureGroup.POST("/employee", ctrl.CreateEmployee)
	secureGroup.PUT("/employee/:id", ctrl.UpdateEmployee)
	secureGroup.PUT("/employee/:id/active", ctrl.SetActive)
	secureGroup.GET("/employee/:id/channel", commCtrl.PreviewChannel)
}
