package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	"staffhub/pkg/config"
	"staffhub/pkg/constants"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/service"
	"staffhub/pkg/utils"
)

// Бан "навсегда" в формате длительности сервиса идентификации.
const permanentBan = "876000h"

// IdentityProvider - операции сервиса идентификации, которые использует приложение.
type IdentityProvider interface {
	SignUp(ctx context.Context, req backend.SignUpRequest) (*backend.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*backend.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ListUsers(ctx context.Context, page, perPage int) ([]backend.AuthUser, error)
	UpdateUser(ctx context.Context, id string, attrs backend.AdminUserAttributes) (*backend.AuthUser, error)
	DeleteUser(ctx context.Context, id string) error
}

type AuthServiceInterface interface {
	SignUp(ctx context.Context, payload dto.SignUpDTO) (*dto.SessionDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.SessionDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.SessionDTO, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*dto.MeDTO, error)
	ListUsers(ctx context.Context, page, perPage int) ([]dto.AuthUserDTO, error)
	UpdateUser(ctx context.Context, id string, payload dto.AdminUpdateUserDTO, rawBody []byte) (*dto.AuthUserDTO, error)
	DeleteUser(ctx context.Context, id string) error
}

type AuthService struct {
	identity     IdentityProvider
	employeeRepo repositories.EmployeeRepositoryInterface
	companyRepo  repositories.CompanyRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	cfg          *config.AuthConfig
	logger       *zap.Logger
}

func NewAuthService(
	identity IdentityProvider,
	employeeRepo repositories.EmployeeRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cfg *config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		identity:     identity,
		employeeRepo: employeeRepo,
		companyRepo:  companyRepo,
		cacheRepo:    cacheRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

func authUserToDTO(u *backend.AuthUser) *dto.AuthUserDTO {
	if u == nil {
		return nil
	}
	createdAt := u.CreatedAt
	d := &dto.AuthUserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		AppRole:      u.AppRole(),
		LastSignInAt: u.LastSignInAt,
		BannedUntil:  u.BannedUntil,
	}
	if !createdAt.IsZero() {
		d.CreatedAt = &createdAt
	}
	return d
}

func (s *AuthService) sessionToDTO(ctx context.Context, session *backend.Session) *dto.SessionDTO {
	d := &dto.SessionDTO{
		AccessToken:         session.AccessToken,
		RefreshToken:        session.RefreshToken,
		ExpiresIn:           session.ExpiresIn,
		User:                authUserToDTO(session.User),
		ConfirmationPending: session.AccessToken == "",
	}
	if session.User != nil {
		d.Employee = s.employeeProfile(ctx, session.User.ID)
	}
	return d
}

// employeeProfile возвращает профиль сотрудника, связанного с пользователем.
// Пользователь без профиля - нормальная ситуация (например, администратор).
func (s *AuthService) employeeProfile(ctx context.Context, userID string) *dto.EmployeeDTO {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	e, err := s.employeeRepo.FindByAuthUserID(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			s.logger.Warn("Не удалось загрузить профиль сотрудника", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return employeeToDTO(e)
}

func (s *AuthService) SignUp(ctx context.Context, payload dto.SignUpDTO) (*dto.SessionDTO, error) {
	email := normalizeEmail(payload.Email)
	if payload.CompanyID != nil {
		if _, err := s.companyRepo.FindCompany(ctx, *payload.CompanyID); err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return nil, apperrors.NewNotFoundError("Компания не найдена")
			}
			return nil, err
		}
	}

	req := backend.SignUpRequest{Email: email, Password: payload.Password}
	if name := strings.TrimSpace(payload.FullName); name != "" {
		req.Data = map[string]interface{}{"full_name": name}
	}
	session, err := s.identity.SignUp(ctx, req)
	if err != nil {
		s.logger.Warn("Ошибка регистрации", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if payload.CompanyID != nil && session.User != nil {
		s.linkEmployee(ctx, session.User, *payload.CompanyID, payload.FullName)
	}
	s.logger.Info("Пользователь зарегистрирован", zap.String("email", email))
	return s.sessionToDTO(ctx, session), nil
}

func (s *AuthService) linkEmployee(ctx context.Context, user *backend.AuthUser, companyID uint64, fullName string) {
	authID, err := uuid.Parse(user.ID)
	if err != nil {
		return
	}
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = user.Email
	}
	email := normalizeEmail(user.Email)
	_, err = s.employeeRepo.CreateEmployee(ctx, nil, entities.Employee{
		CompanyID:       companyID,
		AuthUserID:      &authID,
		FullName:        name,
		Email:           utils.NilIfBlank(email),
		EmailSubscribed: true,
		IsActive:        true,
	})
	if err != nil {
		s.logger.Error("Не удалось создать профиль сотрудника после регистрации",
			zap.String("user_id", user.ID), zap.Uint64("company_id", companyID), zap.Error(err))
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.SessionDTO, error) {
	email := normalizeEmail(payload.Email)
	logger := s.logger.With(zap.String("email", email))

	if err := s.checkLockout(ctx, email); err != nil {
		logger.Warn("Попытка входа в заблокированный аккаунт")
		return nil, err
	}

	session, err := s.identity.SignInWithPassword(ctx, email, payload.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.handleFailedLoginAttempt(ctx, email)
			logger.Warn("Неверный пароль")
		} else {
			logger.Error("Ошибка входа", zap.Error(err))
		}
		return nil, err
	}

	s.resetLoginAttempts(ctx, email)
	logger.Info("Успешный вход")
	return s.sessionToDTO(ctx, session), nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.SessionDTO, error) {
	session, err := s.identity.RefreshSession(ctx, payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	return s.sessionToDTO(ctx, session), nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	token := utils.GetAccessTokenFromCtx(ctx)
	if token == "" {
		return apperrors.ErrUnauthorized
	}
	return s.identity.SignOut(ctx, token)
}

func (s *AuthService) Me(ctx context.Context) (*dto.MeDTO, error) {
	claims, err := utils.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	me := &dto.MeDTO{
		User: dto.AuthUserDTO{
			ID:      claims.Subject,
			Email:   claims.Email,
			Role:    claims.Role,
			AppRole: claims.AppMetadata.Role,
		},
		IsAdmin: claims.IsAdmin(),
	}
	if claims.Role != service.RoleService {
		me.Employee = s.employeeProfile(ctx, claims.Subject)
	}
	return me, nil
}

func lockoutKey(email string) string  { return fmt.Sprintf(constants.CacheKeyLockout, email) }
func attemptsKey(email string) string { return fmt.Sprintf(constants.CacheKeyLoginAttempts, email) }

func (s *AuthService) checkLockout(ctx context.Context, email string) error {
	if s.cacheRepo == nil {
		return nil
	}
	if _, err := s.cacheRepo.Get(ctx, lockoutKey(email)); err == nil {
		return apperrors.NewHttpError(http.StatusTooManyRequests,
			"Слишком много неудачных попыток входа, попробуйте позже", apperrors.ErrAccountLocked, nil)
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, email string) {
	if s.cacheRepo == nil || s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey(email))
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		s.cacheRepo.Expire(ctx, attemptsKey(email), s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		s.cacheRepo.Set(ctx, lockoutKey(email), "locked", s.cfg.LockoutDuration)
		s.cacheRepo.Del(ctx, attemptsKey(email))
		s.logger.Warn("Аккаунт временно заблокирован", zap.String("email", email), zap.Duration("duration", s.cfg.LockoutDuration))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, email string) {
	if s.cacheRepo == nil {
		return
	}
	s.cacheRepo.Del(ctx, attemptsKey(email), lockoutKey(email))
}

func (s *AuthService) ListUsers(ctx context.Context, page, perPage int) ([]dto.AuthUserDTO, error) {
	users, err := s.identity.ListUsers(ctx, page, perPage)
	if err != nil {
		s.logger.Error("Ошибка получения списка пользователей", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AuthUserDTO, 0, len(users))
	for i := range users {
		result = append(result, *authUserToDTO(&users[i]))
	}
	return result, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, payload dto.AdminUpdateUserDTO, rawBody []byte) (*dto.AuthUserDTO, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("неверный идентификатор пользователя")
	}
	sent, err := utils.SentFields(rawBody)
	if err != nil {
		return nil, err
	}

	var attrs backend.AdminUserAttributes
	changed := false
	if payload.Email.Valid {
		email := normalizeEmail(payload.Email.String)
		attrs.Email = &email
		changed = true
	}
	if payload.Password.Valid {
		attrs.Password = &payload.Password.String
		changed = true
	}
	if _, ok := sent["app_role"]; ok {
		// null снимает роль приложения
		attrs.AppMetadata = map[string]interface{}{"role": nil}
		if payload.AppRole.Valid {
			attrs.AppMetadata["role"] = payload.AppRole.String
		}
		changed = true
	}
	if payload.Banned.Valid {
		duration := "none"
		if payload.Banned.Bool {
			duration = permanentBan
		}
		attrs.BanDuration = &duration
		changed = true
	}
	if !changed {
		return nil, apperrors.NewValidationError("нет полей для обновления")
	}

	user, err := s.identity.UpdateUser(ctx, id, attrs)
	if err != nil {
		s.logger.Error("Ошибка обновления пользователя", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Пользователь обновлён администратором", zap.String("user_id", id))
	return authUserToDTO(user), nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	authID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NewValidationError("неверный идентификатор пользователя")
	}
	if err := s.identity.DeleteUser(ctx, id); err != nil {
		s.logger.Error("Ошибка удаления пользователя", zap.String("user_id", id), zap.Error(err))
		return err
	}

	// Профиль сотрудника остаётся, но теряет связь с пользователем.
	if e, err := s.employeeRepo.FindByAuthUserID(ctx, authID); err == nil {
		if err := s.employeeRepo.UpdateEmployee(ctx, nil, e.ID, map[string]interface{}{"auth_user_id": nil}); err != nil {
			s.logger.Warn("Не удалось отвязать профиль сотрудника", zap.Uint64("employee_id", e.ID), zap.Error(err))
		}
	}
	actor, _ := utils.GetUserIDFromCtx(ctx)
	s.logger.Info("Пользователь удалён", zap.String("user_id", id), zap.String("by", actor.String()))
	return nil
}
