package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
)

const maxActionBody = 1 << 20

// Controller traduce HTTP a loaders y acciones. Los loaders responden JSON o
// 302; las acciones siempre responden un ActionResult.
type Controller struct {
	loaders *Loaders
	actions *Actions
}

func NewController(l *Loaders, a *Actions) *Controller {
	return &Controller{loaders: l, actions: a}
}

func (c *Controller) log(r *http.Request, op string) *zap.Logger {
	return logger.FromWithFields(r.Context(), logger.Layer("controller"), logger.Op(op))
}

func wsParam(r *http.Request) string { return chi.URLParam(r, "workspaceId") }

// writeLoad escribe el resultado de un loader.
func writeLoad(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		if rd, ok := AsRedirect(err); ok {
			http.Redirect(w, r, rd.Location, http.StatusFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, data)
}

// writeAction elige el status: 401 corta, errores de formulario son 400 y el
// resto toma el status del error traducido.
func writeAction(w http.ResponseWriter, res *ActionResult, err error) {
	if err == nil {
		httperrors.WriteJSON(w, http.StatusOK, res)
		return
	}
	if unauthorized(err) {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithCause(err))
		return
	}
	status := httperrors.FromError(err).HTTPStatus
	if len(res.FieldErrors) > 0 {
		status = http.StatusBadRequest
	}
	httperrors.WriteJSON(w, status, res)
}

func decodeAction(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxActionBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return httperrors.ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return httperrors.ErrInvalidJSON.WithDetail("empty body")
		}
		return httperrors.ErrInvalidJSON.WithDetail(err.Error())
	}
	return nil
}

// ---- Loaders ----

// Root maneja GET /dashboard
func (c *Controller) Root(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Root(r.Context())
	writeLoad(w, r, data, err)
}

// Overview maneja GET /dashboard/{workspaceId}
func (c *Controller) Overview(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Overview(r.Context(), wsParam(r))
	writeLoad(w, r, data, err)
}

// Emails maneja GET /dashboard/{workspaceId}/emails
func (c *Controller) Emails(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Emails(r.Context(), wsParam(r), r.URL.Query())
	writeLoad(w, r, data, err)
}

// EmailDetail maneja GET /dashboard/{workspaceId}/emails/{emailId}
func (c *Controller) EmailDetail(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.EmailDetail(r.Context(), wsParam(r), chi.URLParam(r, "emailId"))
	writeLoad(w, r, data, err)
}

// Configurations maneja GET /dashboard/{workspaceId}/configurations
func (c *Controller) Configurations(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Configurations(r.Context(), wsParam(r))
	writeLoad(w, r, data, err)
}

// Analytics maneja GET /dashboard/{workspaceId}/analytics
func (c *Controller) Analytics(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Analytics(r.Context(), wsParam(r), r.URL.Query())
	writeLoad(w, r, data, err)
}

// Settings maneja GET /dashboard/{workspaceId}/settings?tab=
func (c *Controller) Settings(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Settings(r.Context(), wsParam(r), r.URL.Query())
	writeLoad(w, r, data, err)
}

// ApiKeys maneja GET /dashboard/{workspaceId}/api-keys
func (c *Controller) ApiKeys(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.ApiKeys(r.Context(), wsParam(r))
	writeLoad(w, r, data, err)
}

// Members maneja GET /dashboard/{workspaceId}/members
func (c *Controller) Members(w http.ResponseWriter, r *http.Request) {
	data, err := c.loaders.Members(r.Context(), wsParam(r))
	writeLoad(w, r, data, err)
}

// ---- Workspaces ----

// CreateWorkspace maneja POST /dashboard/workspaces
func (c *Controller) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateWorkspaceCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.CreateWorkspace(r.Context(), cmd)
	writeAction(w, res, err)
}

// UpdateWorkspace maneja PUT /dashboard/{workspaceId}
func (c *Controller) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateWorkspaceCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.UpdateWorkspace(r.Context(), wsParam(r), cmd)
	writeAction(w, res, err)
}

// DeleteWorkspace maneja DELETE /dashboard/{workspaceId}
func (c *Controller) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	res, err := c.actions.DeleteWorkspace(r.Context(), wsParam(r))
	writeAction(w, res, err)
}

// SwitchWorkspace maneja POST /dashboard/{workspaceId}/switch
func (c *Controller) SwitchWorkspace(w http.ResponseWriter, r *http.Request) {
	res, err := c.actions.SwitchWorkspace(r.Context(), wsParam(r))
	writeAction(w, res, err)
}

// ---- Configurations ----

// CreateConfiguration maneja POST /dashboard/{workspaceId}/configurations
func (c *Controller) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateEmailConfigurationCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.CreateConfiguration(r.Context(), wsParam(r), cmd)
	writeAction(w, res, err)
}

// UpdateConfiguration maneja PUT /dashboard/{workspaceId}/configurations/{configId}
func (c *Controller) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateEmailConfigurationCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.UpdateConfiguration(r.Context(), wsParam(r), chi.URLParam(r, "configId"), cmd)
	writeAction(w, res, err)
}

// DeleteConfiguration maneja DELETE /dashboard/{workspaceId}/configurations/{configId}
func (c *Controller) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	res, err := c.actions.DeleteConfiguration(r.Context(), wsParam(r), chi.URLParam(r, "configId"))
	writeAction(w, res, err)
}

// TestConnection maneja POST /dashboard/{workspaceId}/configurations/test-connection
func (c *Controller) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req TestConnectionRequest
	if err := decodeAction(w, r, &req); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.TestConnection(r.Context(), wsParam(r), req)
	writeAction(w, res, err)
}

// SendTestEmail maneja POST /dashboard/{workspaceId}/configurations/send-test-email
func (c *Controller) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req SendTestEmailRequest
	if err := decodeAction(w, r, &req); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.SendTestEmail(r.Context(), wsParam(r), req)
	writeAction(w, res, err)
}

// ---- Emails ----

// SendEmail maneja POST /dashboard/{workspaceId}/emails/send
func (c *Controller) SendEmail(w http.ResponseWriter, r *http.Request) {
	var cmd dto.SendEmailCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.SendEmail(r.Context(), wsParam(r), cmd)
	writeAction(w, res, err)
}

// ---- API keys ----

// CreateApiKey maneja POST /dashboard/{workspaceId}/api-keys
func (c *Controller) CreateApiKey(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateApiKeyCommand
	if r.ContentLength != 0 {
		if err := decodeAction(w, r, &cmd); err != nil {
			writeAction(w, failed(err), err)
			return
		}
	}
	res, err := c.actions.CreateApiKey(r.Context(), wsParam(r), cmd.Name)
	if err == nil {
		// la key en claro no debe quedar en caches intermedias
		w.Header().Set("Cache-Control", "no-store")
	}
	writeAction(w, res, err)
}

// RevokeApiKey maneja DELETE /dashboard/{workspaceId}/api-keys/{apiKeyId}
func (c *Controller) RevokeApiKey(w http.ResponseWriter, r *http.Request) {
	res, err := c.actions.RevokeApiKey(r.Context(), wsParam(r), chi.URLParam(r, "apiKeyId"))
	writeAction(w, res, err)
}

// ---- Members ----

// AddMember maneja POST /dashboard/{workspaceId}/members
func (c *Controller) AddMember(w http.ResponseWriter, r *http.Request) {
	var cmd dto.AddMemberCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.AddMember(r.Context(), wsParam(r), cmd)
	writeAction(w, res, err)
}

// RemoveMember maneja DELETE /dashboard/{workspaceId}/members/{userId}
func (c *Controller) RemoveMember(w http.ResponseWriter, r *http.Request) {
	res, err := c.actions.RemoveMember(r.Context(), wsParam(r), chi.URLParam(r, "userId"))
	writeAction(w, res, err)
}

// UpdateMemberRole maneja PUT /dashboard/{workspaceId}/members/{userId}/role
func (c *Controller) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateMemberRoleCommand
	if err := decodeAction(w, r, &cmd); err != nil {
		writeAction(w, failed(err), err)
		return
	}
	res, err := c.actions.UpdateMemberRole(r.Context(), wsParam(r), chi.URLParam(r, "userId"), cmd.Role)
	writeAction(w, res, err)
}

// ---- Settings ----

// SaveSettings maneja PUT /dashboard/{workspaceId}/settings con {"tab", "settings"}.
func (c *Controller) SaveSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBody))
	if err != nil {
		appErr := httperrors.ErrBodyTooLarge
		writeAction(w, failed(appErr), appErr)
		return
	}
	tab, err := DecodeSettingsTab(body)
	if err != nil {
		appErr := httperrors.ErrInvalidJSON.WithDetail(strings.TrimPrefix(err.Error(), "settings: "))
		writeAction(w, failed(appErr), appErr)
		return
	}
	res, err := c.actions.SaveSettings(r.Context(), wsParam(r), tab)
	if err != nil {
		c.log(r, "Controller.SaveSettings").Debug("settings not saved", logger.Err(err))
	}
	writeAction(w, res, err)
}
