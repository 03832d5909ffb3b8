package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrAccountLocked      = fmt.Errorf("аккаунт временно заблокирован")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Общие
	ErrNotFound           = fmt.Errorf("запись не найдена")
	ErrBadRequest         = fmt.Errorf("неверный запрос")
	ErrBackendUnavailable = fmt.Errorf("сервис данных недоступен")
)

// Kind - категория ошибки, по которой принимается решение о коде ответа.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindUpstream
	KindConfiguration
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream_unavailable"
	case KindConfiguration:
		return "configuration"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HttpError несёт код ответа, сообщение для пользователя и исходную ошибку.
type HttpError struct {
	Code    int
	Kind    Kind
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Kind: kindForCode(code), Message: message, Err: err, Context: ctx}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message, Err: ErrBadRequest}
}

func NewValidationError(format string, args ...interface{}) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Kind: KindNotFound, Message: message, Err: ErrNotFound}
}

func NewUpstreamError(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusBadGateway, Kind: KindUpstream, Message: message, Err: err}
}

func NewConfigurationError(message string, missing ...string) *HttpError {
	e := &HttpError{Code: http.StatusInternalServerError, Kind: KindConfiguration, Message: message}
	if len(missing) > 0 {
		e.Context = map[string]interface{}{"missing": missing}
	}
	return e
}

func NewConflictError(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusConflict, Kind: KindConflict, Message: message, Err: err}
}

// KindOf классифицирует любую ошибку, в том числе обёрнутую.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBadRequest):
		return KindValidation
	case errors.Is(err, ErrBackendUnavailable):
		return KindUpstream
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountLocked):
		return KindUnauthorized
	}
	return KindInternal
}

// StatusCode возвращает HTTP-код для ошибки.
func StatusCode(err error) int {
	var httpErr *HttpError
	if errors.As(err, &httpErr) && httpErr.Code != 0 {
		return httpErr.Code
	}
	if errors.Is(err, ErrAccountLocked) {
		return http.StatusTooManyRequests
	}
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func kindForCode(code int) Kind {
	switch {
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusConflict:
		return KindConflict
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return KindUpstream
	case code >= 400 && code < 500:
		return KindValidation
	}
	return KindInternal
}
