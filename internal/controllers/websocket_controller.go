package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/service"
	"staffhub/pkg/utils"
	appwebsocket "staffhub/pkg/websocket"
)

type WebSocketController struct {
	hub        *appwebsocket.Hub
	jwtService service.JWTService
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewWebSocketController принимает список разрешённых Origin; пустой список
// разрешает любой источник.
func NewWebSocketController(hub *appwebsocket.Hub, jwtService service.JWTService, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketController{
		hub:        hub,
		jwtService: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
		logger: logger,
	}
}

// ServeWs - браузер не умеет передавать заголовки при апгрейде, поэтому токен
// приходит в query-параметре token.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusUnauthorized, "Токен не передан", apperrors.ErrUnauthorized, nil), c.logger)
	}

	claims, err := c.jwtService.ValidateToken(tokenString)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	userID, err := claims.UserID()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusUnauthorized, "Некорректный subject токена", apperrors.ErrUnauthorized, nil), c.logger)
	}

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, userID)
	if !c.hub.Register(client) {
		_ = conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключён", zap.String("user_id", userID.String()))
	return nil
}
