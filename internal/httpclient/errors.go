package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrTimeout se devuelve (envuelto) cuando el request supera el timeout del cliente.
	// Se distingue de un error de red genérico con errors.Is(err, ErrTimeout).
	ErrTimeout = errors.New("request timeout")

	// ErrNoToken lo devuelven las TokenSource que no tienen credencial disponible.
	ErrNoToken = errors.New("no bearer token available")
)

// HTTPError representa una respuesta no-2xx del API.
// El body se conserva crudo; Message intenta extraer un texto legible.
type HTTPError struct {
	StatusCode int
	StatusText string
	Method     string
	Endpoint   string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// Message devuelve message/detail/title del body JSON (formatos ProblemDetails y
// {code,message}), o el body como texto si es corto. "" si no hay nada útil.
func (e *HTTPError) Message() string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		for _, s := range []string{body.Message, body.Detail, body.Title} {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
		return ""
	}
	if s := strings.TrimSpace(string(e.Body)); len(s) <= 200 {
		return s
	}
	return ""
}

// FieldErrors extrae el mapa "errors" de una respuesta de validación. Acepta
// {"campo": "msg"} y el formato ProblemDetails {"campo": ["msg", ...]}; con
// varios mensajes se queda con el primero. nil si el body no trae errores.
func (e *HTTPError) FieldErrors() map[string]string {
	var body struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil || len(body.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(body.Errors))
	for field, raw := range body.Errors {
		var one string
		if json.Unmarshal(raw, &one) == nil {
			out[lowerFirst(field)] = one
			continue
		}
		var many []string
		if json.Unmarshal(raw, &many) == nil && len(many) > 0 {
			out[lowerFirst(field)] = many[0]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// lowerFirst normaliza "SmtpPort" (ProblemDetails) a "smtpPort".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func newHTTPError(resp *http.Response, method, endpoint string, body []byte) *HTTPError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		StatusText: text,
		Method:     method,
		Endpoint:   endpoint,
		Body:       body,
	}
}

// StatusCode devuelve el status HTTP si err envuelve un *HTTPError, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// IsNotFound reporta si err es un 404 del API.
func IsNotFound(err error) bool { return StatusCode(err) == http.StatusNotFound }

// IsUnauthorized reporta si err es un 401 o 403 del API.
func IsUnauthorized(err error) bool {
	s := StatusCode(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}
