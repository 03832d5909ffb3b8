package services

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/utils"
)

var providerName = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

// Sealer шифрует и расшифровывает токены. Реализуется secretbox.Box.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(encoded string) (string, error)
}

type CredentialServiceInterface interface {
	Save(ctx context.Context, provider string, payload dto.SaveCredentialDTO) (*dto.CredentialStatusDTO, error)
	Status(ctx context.Context, provider string) (*dto.CredentialStatusDTO, error)
	Delete(ctx context.Context, provider string) error
	AccessToken(ctx context.Context, userID uuid.UUID, provider string) (string, error)
}

type CredentialService struct {
	repo   repositories.CredentialRepositoryInterface
	box    Sealer
	now    func() time.Time
	logger *zap.Logger
}

func NewCredentialService(repo repositories.CredentialRepositoryInterface, box Sealer, logger *zap.Logger) *CredentialService {
	return &CredentialService{repo: repo, box: box, now: time.Now, logger: logger}
}

func (s *CredentialService) owner(ctx context.Context, provider string) (uuid.UUID, error) {
	if !providerName.MatchString(provider) {
		return uuid.Nil, apperrors.NewValidationError("недопустимое имя провайдера: %q", provider)
	}
	if s.box == nil {
		return uuid.Nil, apperrors.NewConfigurationError("ключ шифрования учётных данных не задан", "CREDENTIAL_ENCRYPTION_KEY")
	}
	return utils.GetUserIDFromCtx(ctx)
}

func (s *CredentialService) Save(ctx context.Context, provider string, payload dto.SaveCredentialDTO) (*dto.CredentialStatusDTO, error) {
	userID, err := s.owner(ctx, provider)
	if err != nil {
		return nil, err
	}

	access, err := s.box.Seal(payload.AccessToken)
	if err != nil {
		return nil, err
	}
	c := entities.Credential{
		UserID:      userID,
		Provider:    provider,
		AccessToken: access,
		Scope:       utils.NilIfBlank(utils.SafeDeref(payload.Scope)),
		ExpiresAt:   payload.ExpiresAt,
	}
	if payload.RefreshToken != nil && *payload.RefreshToken != "" {
		refresh, err := s.box.Seal(*payload.RefreshToken)
		if err != nil {
			return nil, err
		}
		c.RefreshToken = &refresh
	}

	if err := s.repo.Upsert(ctx, c); err != nil {
		s.logger.Error("Ошибка сохранения учётных данных", zap.String("provider", provider), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Учётные данные сохранены", zap.String("provider", provider), zap.String("user_id", userID.String()))
	return s.Status(ctx, provider)
}

// Status сообщает только наличие и срок действия токена, сами токены не возвращаются.
func (s *CredentialService) Status(ctx context.Context, provider string) (*dto.CredentialStatusDTO, error) {
	userID, err := s.owner(ctx, provider)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Find(ctx, userID, provider)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return &dto.CredentialStatusDTO{Provider: provider}, nil
		}
		return nil, err
	}
	updatedAt := c.UpdatedAt
	return &dto.CredentialStatusDTO{
		Provider:  provider,
		Connected: true,
		Expired:   c.ExpiresAt != nil && !c.ExpiresAt.After(s.now()),
		ExpiresAt: c.ExpiresAt,
		Scope:     c.Scope,
		UpdatedAt: &updatedAt,
	}, nil
}

func (s *CredentialService) Delete(ctx context.Context, provider string) error {
	userID, err := s.owner(ctx, provider)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, userID, provider)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFoundError("Учётные данные не найдены")
	}
	s.logger.Info("Учётные данные удалены", zap.String("provider", provider), zap.String("user_id", userID.String()))
	return nil
}

// AccessToken возвращает расшифрованный токен для обращения к стороннему сервису.
func (s *CredentialService) AccessToken(ctx context.Context, userID uuid.UUID, provider string) (string, error) {
	if s.box == nil {
		return "", apperrors.NewConfigurationError("ключ шифрования учётных данных не задан", "CREDENTIAL_ENCRYPTION_KEY")
	}
	c, err := s.repo.Find(ctx, userID, provider)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return "", apperrors.NewNotFoundError("Учётные данные не найдены")
		}
		return "", err
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(s.now()) {
		return "", apperrors.NewHttpError(http.StatusUnauthorized, "Срок действия токена провайдера истёк", apperrors.ErrTokenExpired, nil)
	}
	return s.box.Open(c.AccessToken)
}
