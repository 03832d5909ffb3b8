package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/pkg/service"
	"staffhub/pkg/utils"
)

func setup(t *testing.T) (*echo.Echo, service.JWTService) {
	t.Helper()
	jwtSvc := service.NewJWTService("test-secret-test-secret-test-secret", time.Hour, zap.NewNop())
	auth := NewAuthMiddleware(jwtSvc, zap.NewNop())

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, err := utils.GetUserIDFromCtx(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id.String())
	}, auth.Auth)
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, auth.Auth, auth.RequireAdmin)
	return e, jwtSvc
}

func do(e *echo.Echo, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e, jwtSvc := setup(t)
	sub := uuid.New()
	token, err := jwtSvc.GenerateToken(sub.String(), "ana@acme.cl", "")
	require.NoError(t, err)

	rec := do(e, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sub.String(), rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Bearer garbage").Code)
}

func TestRequireAdmin(t *testing.T) {
	e, jwtSvc := setup(t)

	user, err := jwtSvc.GenerateToken(uuid.NewString(), "ana@acme.cl", "")
	require.NoError(t, err)
	admin, err := jwtSvc.GenerateToken(uuid.NewString(), "root@acme.cl", service.AppRoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(e, "/admin", "Bearer "+user).Code)
	assert.Equal(t, http.StatusNoContent, do(e, "/admin", "Bearer "+admin).Code)
}
