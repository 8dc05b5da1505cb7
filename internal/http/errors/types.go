// Package errors define el error estándar de las respuestas HTTP del dashboard
// y del twin del API: {code, message, detail}.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // usado para el header
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError convierte un error genérico en AppError. Errores del cliente HTTP se
// traducen con FromUpstream; el resto es 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if up := FromUpstream(err); up != nil {
		return up
	}
	return ErrInternalServerError.WithCause(err)
}

// FromUpstream traduce errores del API remoto. nil si err no vino del cliente HTTP.
func FromUpstream(err error) *AppError {
	if errors.Is(err, httpclient.ErrTimeout) {
		return ErrUpstreamTimeout.WithCause(err)
	}
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return nil
	}
	switch he.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest.WithDetail(he.Message()).WithCause(err)
	case http.StatusUnauthorized:
		return ErrUnauthorized.WithCause(err)
	case http.StatusForbidden:
		return ErrForbidden.WithCause(err)
	case http.StatusNotFound:
		return ErrNotFound.WithCause(err)
	case http.StatusConflict:
		return ErrConflict.WithDetail(he.Message()).WithCause(err)
	case http.StatusTooManyRequests:
		return ErrTooManyRequests.WithCause(err)
	default:
		return ErrBadGateway.WithDetail(err.Error()).WithCause(err)
	}
}

// WithDetail devuelve una COPIA con detail.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidFormat = &AppError{
		Code:       "INVALID_FORMAT",
		Message:    "El formato de uno o más campos es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "Uno de los parámetros de la URL o Query String es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "El cuerpo de la solicitud excede el tamaño máximo permitido.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401 / 403
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "La sesión expiró. Iniciá sesión nuevamente.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidAPIKey = &AppError{
		Code:       "INVALID_API_KEY",
		Message:    "La API key es inválida o fue revocada.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tenés permisos para esta operación.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 409 / 429
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrWorkspaceNotFound = &AppError{
		Code:       "WORKSPACE_NOT_FOUND",
		Message:    "El workspace no existe o no tenés acceso.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrEmailNotFound = &AppError{
		Code:       "EMAIL_NOT_FOUND",
		Message:    "Email not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrConfigurationNotFound = &AppError{
		Code:       "CONFIGURATION_NOT_FOUND",
		Message:    "La configuración de email no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMemberNotFound = &AppError{
		Code:       "MEMBER_NOT_FOUND",
		Message:    "El miembro no existe en este workspace.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAPIKeyNotFound = &AppError{
		Code:       "API_KEY_NOT_FOUND",
		Message:    "La API key no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método no permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "El recurso ya existe o está en un estado incompatible.",
		HTTPStatus: http.StatusConflict,
	}

	ErrTooManyRequests = &AppError{
		Code:       "TOO_MANY_REQUESTS",
		Message:    "Demasiados envíos. Probá de nuevo en unos minutos.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error inesperado.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBadGateway = &AppError{
		Code:       "BAD_GATEWAY",
		Message:    "El API de Email EZ devolvió un error.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrUpstreamTimeout = &AppError{
		Code:       "UPSTREAM_TIMEOUT",
		Message:    "El API de Email EZ no respondió a tiempo.",
		HTTPStatus: http.StatusGatewayTimeout,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "Servicio no disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
