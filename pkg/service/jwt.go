package service

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "staffhub/pkg/errors"
)

const (
	RoleAuthenticated = "authenticated"
	RoleService       = "service_role"
	AppRoleAdmin      = "admin"
)

type AppMetadata struct {
	Provider string `json:"provider,omitempty"`
	Role     string `json:"role,omitempty"`
}

// IdentityClaims - claims токена, выпущенного сервисом идентификации.
type IdentityClaims struct {
	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role"`
	AppMetadata AppMetadata `json:"app_metadata"`
	SessionID   string      `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *IdentityClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// IsAdmin - сервисный ключ или роль приложения admin.
func (c *IdentityClaims) IsAdmin() bool {
	return c.Role == RoleService || c.AppMetadata.Role == AppRoleAdmin
}

type JWTService interface {
	GenerateToken(subject, email, appRole string) (string, error)
	ValidateToken(tokenString string) (*IdentityClaims, error)
	GetTokenTTL() time.Duration
}

type jwtService struct {
	SecretKey string
	TokenExp  time.Duration
	logger    *zap.Logger
}

func NewJWTService(secretKey string, tokenExp time.Duration, logger *zap.Logger) JWTService {
	return &jwtService{
		SecretKey: secretKey,
		TokenExp:  tokenExp,
		logger:    logger,
	}
}

// GenerateToken выпускает токен в формате сервиса идентификации. Нужен для
// скриптов и локального стенда.
func (service *jwtService) GenerateToken(subject, email, appRole string) (string, error) {
	now := time.Now()
	role := RoleAuthenticated
	if appRole == RoleService {
		role, appRole = RoleService, ""
	}
	claims := &IdentityClaims{
		Email:       email,
		Role:        role,
		AppMetadata: AppMetadata{Provider: "email", Role: appRole},
		SessionID:   uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{RoleAuthenticated},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.TokenExp)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(service.SecretKey))
}

func (s *jwtService) GetTokenTTL() time.Duration {
	return s.TokenExp
}

func (service *jwtService) ValidateToken(tokenString string) (*IdentityClaims, error) {
	if service.SecretKey == "" {
		return nil, apperrors.NewConfigurationError("секрет подписи токенов не задан", "BACKEND_JWT_SECRET")
	}
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, apperrors.ErrInvalidSigningMethod
		}
	})

	if err != nil {
		service.logger.Debug("Ошибка парсинга или проверки подписи токена", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
			return nil, apperrors.ErrTokenNotYetValid
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Role == RoleService {
		return claims, nil
	}
	if _, err := claims.UserID(); err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
