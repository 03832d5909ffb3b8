package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runCommunicationRouter(secureGroup *echo.Group, communicationService services.CommunicationServiceInterface, analysisService services.AnalysisServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewCommunicationController(communicationService, logger)
	analysisCtrl := controllers.NewAnalysisController(analysisService, logger)

	secureGroup.POST("/communications", ctrl.Send)
	secureGroup.GET("/communications", ctrl.GetCommunications)
	secureGroup.GET("/communication/:id", ctrl.FindCommunication)
	secureGroup.PUT("/communication/:id/read", ctrl.MarkRead)
	secureGroup.PUT("/communication/:id/status", ctrl.UpdateStatus)
	secureGroup.POST("/analyses", analysisCtrl.SaveAnalysis)
}
