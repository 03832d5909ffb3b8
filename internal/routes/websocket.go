package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/controllers"
	"staffhub/pkg/service"
	"staffhub/pkg/websocket"
)

func runWebSocketRouter(api *echo.Group, hub *websocket.Hub, jwtSvc service.JWTService, allowedOrigins []string, logger *zap.Logger) {
	ctrl := controllers.NewWebSocketController(hub, jwtSvc, allowedOrigins, logger)
	api.GET("/ws", ctrl.ServeWs)
}
