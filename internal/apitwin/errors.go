package apitwin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// validationResponse es el 400 con errores por campo. "errors" lo lee
// httpclient.HTTPError.FieldErrors del lado del dashboard.
type validationResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Errors  map[string]string `json:"errors"`
}

// mapStoreError traduce errores del store a la respuesta HTTP del API real.
func mapStoreError(err error) *httperrors.AppError {
	switch {
	case errors.Is(err, store.ErrWorkspaceNotFound):
		return httperrors.ErrWorkspaceNotFound
	case errors.Is(err, store.ErrConfigurationNotFound):
		return httperrors.ErrConfigurationNotFound
	case errors.Is(err, store.ErrEmailNotFound):
		return httperrors.ErrEmailNotFound
	case errors.Is(err, store.ErrMemberNotFound):
		return httperrors.ErrMemberNotFound
	case errors.Is(err, store.ErrAPIKeyNotFound):
		return httperrors.ErrAPIKeyNotFound
	case errors.Is(err, store.ErrForbidden):
		return httperrors.ErrForbidden
	case errors.Is(err, store.ErrConflict):
		return httperrors.ErrConflict
	case errors.Is(err, store.ErrInvalidAPIKey):
		return httperrors.ErrInvalidAPIKey
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}

// storeErrorBody devuelve el status para err. Con FieldErrors appErr es nil y
// body trae la respuesta de validación; si no, el body es el propio appErr.
func storeErrorBody(err error) (status int, body any, appErr *httperrors.AppError) {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusBadRequest, validationResponse{
			Code:    "VALIDATION_FAILED",
			Message: "One or more validation errors occurred.",
			Detail:  fe.Error(),
			Errors:  fe,
		}, nil
	}
	appErr = mapStoreError(err)
	return appErr.HTTPStatus, nil, appErr
}

// writeStoreError escribe err; los FieldErrors salen como 400 con detalle por campo.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, body, appErr := storeErrorBody(err)
	if appErr == nil {
		httperrors.WriteJSON(w, status, body)
		return
	}
	if status >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("store operation failed", logger.Layer("controller"), logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}

// AsHTTPError convierte un error del store en el *httpclient.HTTPError que el
// cliente recibiría del twin por HTTP. Errores no mapeados se devuelven tal cual.
func AsHTTPError(method, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	status, body, appErr := storeErrorBody(err)
	if status >= http.StatusInternalServerError {
		return err
	}
	if appErr != nil {
		body = appErr
	}
	b, mErr := json.Marshal(body)
	if mErr != nil {
		return err
	}
	return &httpclient.HTTPError{
		StatusCode: status,
		StatusText: http.StatusText(status),
		Method:     method,
		Endpoint:   endpoint,
		Body:       b,
	}
}
