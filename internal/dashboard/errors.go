package dashboard

import (
	"errors"
	"net/http"

	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// Redirect es una navegación pendiente. Los loaders la devuelven como error
// (302 en HTTP); las acciones la informan en ActionResult.RedirectTo.
type Redirect struct {
	Location string
}

func (r Redirect) Error() string { return "redirect to " + r.Location }

func (r Redirect) IsZero() bool { return r.Location == "" }

// AsRedirect extrae un Redirect de err.
func AsRedirect(err error) (Redirect, bool) {
	var rd Redirect
	if errors.As(err, &rd) {
		return rd, true
	}
	return Redirect{}, false
}

// unauthorized: sin token o 401 del API. Un 403 NO corta la página.
func unauthorized(err error) bool {
	return errors.Is(err, httpclient.ErrNoToken) || httpclient.StatusCode(err) == http.StatusUnauthorized
}

// errMessage es el texto que ve el usuario en el banner de error.
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return "Please fix the highlighted fields"
	}
	if errors.Is(err, httpclient.ErrTimeout) {
		return "The Email EZ API did not respond in time"
	}
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		if m := he.Message(); m != "" {
			return m
		}
		return he.Error()
	}
	var ae *httperrors.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// fieldErrors junta errores de formulario locales y los 400 del API.
func fieldErrors(err error) map[string]string {
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	var he *httpclient.HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusBadRequest {
		return he.FieldErrors()
	}
	return nil
}
