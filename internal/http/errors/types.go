package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError error estándar de la capa HTTP.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
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

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// FromError convierte un error genérico en AppError; si no lo es, 500
// conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail devuelve una COPIA con detail seteado.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa seteada.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithStatus devuelve una COPIA con otro status HTTP.
func (e *AppError) WithStatus(status int) *AppError {
	newErr := *e
	newErr.HTTPStatus = status
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

	ErrProvider = &AppError{
		Code:       "PROVIDER_ERROR",
		Message:    "El proveedor de identidad rechazó la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "El cuerpo de la solicitud excede el tamaño máximo permitido.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401
var (
	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "El token ha expirado.",
		Detail:     "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "El token es inválido o está malformado.",
		Detail:     "Invalid token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "No se encontró el token de autenticación.",
		Detail:     "Not authenticated",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403
var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tiene permisos para realizar esta acción.",
		Detail:     "Forbidden",
		HTTPStatus: http.StatusForbidden,
	}

	ErrSuperuserRequired = &AppError{
		Code:       "SUPERUSER_REQUIRED",
		Message:    "La operación requiere privilegios de superusuario.",
		Detail:     "Only superuser can do that",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405 / 409
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "El usuario no existe.",
		Detail:     "User not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAudioNotFound = &AppError{
		Code:       "AUDIO_NOT_FOUND",
		Message:    "El archivo de audio no existe.",
		Detail:     "Audio file not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrAlreadyExists = &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    "El recurso ya existe.",
		Detail:     "File already exists",
		HTTPStatus: http.StatusConflict,
	}
)

// 429 / 5xx
var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Demasiadas solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "El servicio no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
