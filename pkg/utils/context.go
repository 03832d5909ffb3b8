package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"staffhub/pkg/contextkeys"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/service"
)

func ContextWithTimeout(ctx echo.Context, timeout int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), time.Duration(timeout)*time.Second)
}

func GetClaimsFromContext(ctx context.Context) (*service.IdentityClaims, error) {
	claims, ok := ctx.Value(contextkeys.ClaimsKey).(*service.IdentityClaims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// GetUserIDFromCtx возвращает идентификатор пользователя сервиса идентификации.
func GetUserIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func GetAccessTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(contextkeys.TokenKey).(string)
	return token
}

func GetRequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.RequestIDKey).(string)
	return id
}
