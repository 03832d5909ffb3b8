package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

// CredentialController хранит токены внешних провайдеров текущего пользователя.
type CredentialController struct {
	credentialService services.CredentialServiceInterface
	logger            *zap.Logger
}

func NewCredentialController(credentialService services.CredentialServiceInterface, logger *zap.Logger) *CredentialController {
	return &CredentialController{credentialService: credentialService, logger: logger}
}

func (c *CredentialController) Status(ctx echo.Context) error {
	res, err := c.credentialService.Status(ctx.Request().Context(), ctx.Param("provider"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус подключения получен", http.StatusOK)
}

func (c *CredentialController) Save(ctx echo.Context) error {
	var payload dto.SaveCredentialDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	provider := ctx.Param("provider")
	res, err := c.credentialService.Save(ctx.Request().Context(), provider, payload)
	if err != nil {
		c.logger.Error("Save: токен провайдера не сохранён", zap.String("provider", provider), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Подключение сохранено", http.StatusOK)
}

func (c *CredentialController) Delete(ctx echo.Context) error {
	if err := c.credentialService.Delete(ctx.Request().Context(), ctx.Param("provider")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Подключение удалено", http.StatusOK)
}
