package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/services"
	"staffhub/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) SignUp(c echo.Context) error {
	var payload dto.SignUpDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("SignUp: некорректные данные", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.SignUp(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Error("SignUp: ошибка регистрации", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	message := "Регистрация прошла успешно"
	if res.ConfirmationPending {
		message = "Регистрация прошла успешно, подтвердите email"
	}
	return utils.SuccessResponse(c, res, message, http.StatusCreated)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(c, &payload); err != nil {
		ctrl.logger.Warn("Login: некорректные данные", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: ошибка авторизации", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Авторизация прошла успешно", http.StatusOK)
}

func (ctrl *AuthController) Refresh(c echo.Context) error {
	var payload dto.RefreshDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Refresh(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Refresh: не удалось обновить сессию", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Сессия обновлена", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context()); err != nil {
		ctrl.logger.Error("Logout: ошибка выхода", zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Выход выполнен", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	res, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Профиль получен", http.StatusOK)
}
