package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runCredentialRouter(secureGroup *echo.Group, credentialService services.CredentialServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewCredentialController(credentialService, logger)

	secureGroup.GET("/credentials/:provider", ctrl.Status)
	secureGroup.PUT("/credentials/:provider", ctrl.Save)
	secureGroup.DELETE("/credentials/:provider", ctrl.Delete)
}
