package apitwin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
)

// HeaderAdminToken protege /admin/* cuando el twin se levanta con admin token.
const HeaderAdminToken = "X-Admin-Token"

// AdminController maneja /admin/*: tokens de desarrollo, reset y estado.
type AdminController struct {
	store        *store.Store
	issuer       *jwtx.Issuer
	seed         *store.State
	snapshotPath string
}

func NewAdminController(s *store.Store, issuer *jwtx.Issuer, seed *store.State, snapshotPath string) *AdminController {
	return &AdminController{store: s, issuer: issuer, seed: seed, snapshotPath: snapshotPath}
}

type healthResponse struct {
	Status     string `json:"status"`
	Workspaces int    `json:"workspaces"`
	Emails     int    `json:"emails"`
}

// Health maneja GET /admin/health (siempre público).
func (a *AdminController) Health(w http.ResponseWriter, r *http.Request) {
	st := a.store.Snapshot(false)
	httperrors.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Workspaces: len(st.Workspaces), Emails: len(st.Emails)})
}

type tokenRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	TTL    string `json:"ttl,omitempty"` // duración Go, p.ej. "2h"
}

type tokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token maneja POST /admin/token: emite un JWT de desarrollo para userId.
func (a *AdminController) Token(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("AdminController.Token"))

	var req tokenRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("userId requerido"))
		return
	}
	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 {
			httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail("ttl inválido"))
			return
		}
		ttl = d
	}

	var extra map[string]any
	if req.Email != "" {
		extra = map[string]any{"email": req.Email}
	}
	tok, exp, err := a.issuer.Sign(req.UserID, ttl, extra)
	if err != nil {
		log.Error("sign failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	a.store.EnsureUser(req.UserID, req.Email)
	log.Info("dev token issued", logger.UserID(req.UserID))
	httperrors.WriteJSON(w, http.StatusOK, tokenResponse{Token: tok, UserID: req.UserID, ExpiresAt: exp})
}

// Reset maneja POST /admin/reset: vuelve al seed (o a vacío si no hay seed).
func (a *AdminController) Reset(w http.ResponseWriter, r *http.Request) {
	if a.seed == nil {
		a.store.Reset()
	} else if err := a.store.Load(*a.seed); err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	logger.From(r.Context()).Info("twin state reset", logger.Layer("controller"), logger.Bool("seeded", a.seed != nil))
	w.WriteHeader(http.StatusNoContent)
}

// GetState maneja GET /admin/state. ?secrets=true incluye passwords y hashes.
func (a *AdminController) GetState(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, a.store.Snapshot(r.URL.Query().Get("secrets") == "true"))
}

// PutState maneja PUT /admin/state: reemplaza todo el estado.
func (a *AdminController) PutState(w http.ResponseWriter, r *http.Request) {
	var st store.State
	if appErr := decodeJSONLimit(w, r, &st, 16*maxBodyBytes); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if err := a.store.Load(st); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot maneja POST /admin/snapshot: persiste el estado en snapshotPath.
func (a *AdminController) Snapshot(w http.ResponseWriter, r *http.Request) {
	if a.snapshotPath == "" {
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("snapshot path no configurado"))
		return
	}
	if err := SaveStateFile(a.snapshotPath, a.store.Snapshot(true)); err != nil {
		logger.From(r.Context()).Error("snapshot failed", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdminToken exige HeaderAdminToken == token. token vacío = abierto.
func requireAdminToken(token string) mw.Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(HeaderAdminToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("admin token inválido"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
