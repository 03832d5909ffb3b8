package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	apperrors "staffhub/pkg/errors"
)

const tokenPath = "/auth/v1/token"

// AuthUser - пользователь сервиса идентификации.
type AuthUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	Role         string                 `json:"role,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	LastSignInAt *time.Time             `json:"last_sign_in_at,omitempty"`
	BannedUntil  *time.Time             `json:"banned_until,omitempty"`
}

// AppRole - роль приложения из app_metadata.role.
func (u AuthUser) AppRole() string {
	if role, ok := u.AppMetadata["role"].(string); ok {
		return role
	}
	return ""
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
}

type SignUpRequest struct {
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type AdminUserAttributes struct {
	Email        *string                `json:"email,omitempty"`
	Password     *string                `json:"password,omitempty"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	BanDuration  *string                `json:"ban_duration,omitempty"`
}

// AuthAPI - HTTP-клиент сервиса идентификации. Публичные методы используют
// anon-ключ, административные - service-ключ.
type AuthAPI struct {
	baseURL    string
	anonKey    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAuthAPI(baseURL, anonKey, serviceKey string, httpClient *http.Client, logger *zap.Logger) *AuthAPI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &AuthAPI{
		baseURL:    baseURL,
		anonKey:    anonKey,
		serviceKey: serviceKey,
		httpClient: httpClient,
		logger:     logger.Named("identity"),
	}
}

func (a *AuthAPI) Available() bool { return a != nil && a.baseURL != "" && a.anonKey != "" }

func (a *AuthAPI) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	raw, err := a.do(ctx, http.MethodPost, "/auth/v1/signup", nil, req, a.anonKey, "")
	if err != nil {
		return nil, err
	}
	// При включённом подтверждении email сервис возвращает только пользователя.
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа signup: %w", err)
	}
	if session.AccessToken == "" {
		var user AuthUser
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("ошибка разбора пользователя signup: %w", err)
		}
		session.User = &user
	}
	return &session, nil
}

func (a *AuthAPI) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}
	return a.session(ctx, query, body)
}

func (a *AuthAPI) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}
	return a.session(ctx, query, body)
}

func (a *AuthAPI) session(ctx context.Context, query url.Values, body interface{}) (*Session, error) {
	raw, err := a.do(ctx, http.MethodPost, tokenPath, query, body, a.anonKey, "")
	if err != nil {
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("ошибка разбора сессии: %w", err)
	}
	return &session, nil
}

// GetUser возвращает пользователя по его access-токену.
func (a *AuthAPI) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	raw, err := a.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, a.anonKey, accessToken)
	if err != nil {
		return nil, err
	}
	var user AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("ошибка разбора пользователя: %w", err)
	}
	return &user, nil
}

func (a *AuthAPI) SignOut(ctx context.Context, accessToken string) error {
	_, err := a.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, a.anonKey, accessToken)
	return err
}

func (a *AuthAPI) ListUsers(ctx context.Context, page, perPage int) ([]AuthUser, error) {
	if err := a.requireServiceKey(); err != nil {
		return nil, err
	}
	query := url.Values{"page": {strconv.Itoa(page)}, "per_page": {strconv.Itoa(perPage)}}
	raw, err := a.do(ctx, http.MethodGet, "/auth/v1/admin/users", query, nil, a.serviceKey, a.serviceKey)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Users []AuthUser `json:"users"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("ошибка разбора списка пользователей: %w", err)
	}
	if resp.Users == nil {
		resp.Users = []AuthUser{}
	}
	return resp.Users, nil
}

func (a *AuthAPI) UpdateUser(ctx context.Context, id string, attrs AdminUserAttributes) (*AuthUser, error) {
	if err := a.requireServiceKey(); err != nil {
		return nil, err
	}
	raw, err := a.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(id), nil, attrs, a.serviceKey, a.serviceKey)
	if err != nil {
		return nil, err
	}
	var user AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("ошибка разбора пользователя: %w", err)
	}
	return &user, nil
}

func (a *AuthAPI) DeleteUser(ctx context.Context, id string) error {
	if err := a.requireServiceKey(); err != nil {
		return err
	}
	_, err := a.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+url.PathEscape(id), nil, nil, a.serviceKey, a.serviceKey)
	return err
}

func (a *AuthAPI) requireServiceKey() error {
	if a.serviceKey == "" {
		return apperrors.NewConfigurationError("service-ключ не задан, административные операции недоступны", "BACKEND_SERVICE_KEY")
	}
	return nil
}

type identityError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e identityError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (a *AuthAPI) do(ctx context.Context, method, path string, query url.Values, payload interface{}, apiKey, bearer string) ([]byte, error) {
	if a.baseURL == "" || apiKey == "" {
		return nil, apperrors.NewUpstreamError("Сервис аутентификации не настроен", apperrors.ErrBackendUnavailable)
	}

	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации JSON: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Сервис аутентификации недоступен", zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewUpstreamError("Сервис аутентификации недоступен", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Ошибка чтения ответа сервиса аутентификации", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	var idErr identityError
	_ = json.Unmarshal(raw, &idErr)
	message := idErr.text()
	if message == "" {
		message = resp.Status
	}
	a.logger.Debug("Ошибка сервиса аутентификации",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)

	// Неверный пароль возможен только при входе по паролю. 401 на остальных
	// путях означает отклонённый токен пользователя или service-ключ.
	passwordGrant := path == tokenPath && query.Get("grant_type") == "password"
	switch {
	case passwordGrant && (resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusBadRequest && idErr.Error == "invalid_grant" ||
		idErr.ErrorCode == "invalid_credentials"):
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Неверный email или пароль", apperrors.ErrInvalidCredentials, nil)
	case resp.StatusCode == http.StatusUnauthorized && bearer != "" && bearer == a.serviceKey:
		a.logger.Error("Сервис аутентификации отклонил service-ключ", zap.String("path", path))
		return nil, apperrors.NewConfigurationError("service-ключ отклонён сервисом аутентификации", "BACKEND_SERVICE_KEY")
	case resp.StatusCode == http.StatusUnauthorized,
		path == tokenPath && resp.StatusCode == http.StatusBadRequest && idErr.Error == "invalid_grant":
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Сессия недействительна или истекла", apperrors.ErrUnauthorized, nil)
	case resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.NewHttpError(http.StatusForbidden, message, apperrors.ErrForbidden, nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFoundError("Пользователь не найден")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.NewHttpError(http.StatusTooManyRequests, "Слишком много запросов к сервису аутентификации", nil, nil)
	case resp.StatusCode == http.StatusUnprocessableEntity, resp.StatusCode == http.StatusBadRequest:
		return nil, apperrors.NewHttpError(http.StatusBadRequest, message, apperrors.ErrBadRequest, nil)
	case resp.StatusCode == http.StatusConflict:
		return nil, apperrors.NewConflictError(message, nil)
	}
	return nil, apperrors.NewUpstreamError("Сервис аутентификации вернул ошибку", fmt.Errorf("%s: %s", resp.Status, message))
}
