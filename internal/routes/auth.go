package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/internal/services"
)

func runAuthRouter(api, secureGroup *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	ctrl := controllers.NewAuthController(authService, logger)

	api.POST("/auth/signup", ctrl.SignUp)
	api.POST("/auth/login", ctrl.Login)
	api.POST("/auth/refresh", ctrl.Refresh)

	secureGroup.GET("/auth/me", ctrl.Me)
	secureGroup.POST("/auth/logout", ctrl.Logout)
}
