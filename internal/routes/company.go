package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runCompanyRouter(secureGroup *echo.Group, companyService services.CompanyServiceInterface, analysisService services.AnalysisServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewCompanyController(companyService, logger)
	analysisCtrl := controllers.NewAnalysisController(analysisService, logger)

	secureGroup.GET("/companies", ctrl.GetCompanies)
	secureGroup.GET("/companies/employee-counts", ctrl.EmployeeCounts)
	secureGroup.GET("/company/:id", ctrl.FindCompany)
	secureGroup.POST("/company", ctrl.CreateCompany)
	secureGroup.PUT("/company/:id", ctrl.UpdateCompany)
	secureGroup.GET("/company/:id/fallback", ctrl.GetFallbackOrder)
	secureGroup.PUT("/company/:id/fallback", ctrl.SetFallbackOrder)
	secureGroup.GET("/company/:id/analyses", analysisCtrl.GetAnalyses)
}
