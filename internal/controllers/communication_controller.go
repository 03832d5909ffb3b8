package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

type CommunicationController struct {
	communicationService services.CommunicationServiceInterface
	logger               *zap.Logger
}

func NewCommunicationController(communicationService services.CommunicationServiceInterface, logger *zap.Logger) *CommunicationController {
	return &CommunicationController{communicationService: communicationService, logger: logger}
}

func (c *CommunicationController) Send(ctx echo.Context) error {
	var payload dto.SendCommunicationDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("Send: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.communicationService.Send(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("Send: ошибка отправки сообщения", zap.Int("recipients", len(payload.EmployeeIDs)), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	code := http.StatusCreated
	if len(res.Created) == 0 {
		code = http.StatusUnprocessableEntity
	}
	return utils.SuccessResponse(ctx, res, "Сообщение обработано", code)
}

func (c *CommunicationController) GetCommunications(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.communicationService.GetCommunications(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetCommunications: ошибка при получении журнала", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Журнал сообщений получен", http.StatusOK, total)
}

func (c *CommunicationController) FindCommunication(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.communicationService.FindCommunication(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сообщение найдено", http.StatusOK)
}

func (c *CommunicationController) MarkRead(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.communicationService.MarkRead(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Warn("MarkRead: статус не изменён", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сообщение отмечено как прочитанное", http.StatusOK)
}

func (c *CommunicationController) UpdateStatus(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateCommunicationStatusDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.communicationService.UpdateStatus(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Warn("UpdateStatus: статус не изменён", zap.Uint64("id", id), zap.String("status", payload.Status), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Статус сообщения обновлён", http.StatusOK)
}

// PreviewChannel показывает, в какой канал ушло бы сообщение сотруднику.
func (c *CommunicationController) PreviewChannel(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.communicationService.Preview(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Канал доставки определён", http.StatusOK)
}
