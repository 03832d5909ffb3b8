package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffhub/pkg/contextkeys"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/service"
	"staffhub/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth проверяет токен сервиса идентификации и кладёт claims в контекст.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			m.logger.Warn("AuthMiddleware: некорректный заголовок Authorization", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := WithClaims(c.Request().Context(), claims, tokenString)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: пользователь аутентифицирован",
			zap.String("sub", claims.Subject),
			zap.String("role", claims.Role),
		)
		return next(c)
	}
}

// RequireAdmin пропускает только service_role или роль приложения admin.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := utils.GetClaimsFromContext(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if !claims.IsAdmin() {
			m.logger.Warn("Доступ к административному маршруту запрещён", zap.String("sub", claims.Subject))
			return utils.ErrorResponse(c, apperrors.NewHttpError(403, "Недостаточно прав", apperrors.ErrForbidden, nil), m.logger)
		}
		return next(c)
	}
}

// WithClaims записывает claims, идентификатор пользователя и исходный токен в контекст.
func WithClaims(ctx context.Context, claims *service.IdentityClaims, token string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.ClaimsKey, claims)
	ctx = context.WithValue(ctx, contextkeys.TokenKey, token)
	if id, err := uuid.Parse(claims.Subject); err == nil {
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, id)
	}
	return ctx
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}
