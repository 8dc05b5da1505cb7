package apitwin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
)

// Controller expone el store con las rutas y formatos del API de Email EZ.
type Controller struct {
	store *store.Store
}

func NewController(s *store.Store) *Controller {
	return &Controller{store: s}
}

func (c *Controller) log(r *http.Request, op string) *zap.Logger {
	return logger.FromWithFields(r.Context(), logger.Layer("controller"), logger.Op(op))
}

func wsParam(r *http.Request) string { return chi.URLParam(r, "workspaceId") }

// ---- Workspaces ----

// ListWorkspaces maneja GET /api/v1/workspaces
func (c *Controller) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	uid := mw.GetUserID(r.Context())
	httperrors.WriteJSON(w, http.StatusOK, c.store.Workspaces(r.Context(), uid))
}

// CreateWorkspace maneja POST /api/v1/workspaces
func (c *Controller) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var cmd dto.CreateWorkspaceCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	res, err := c.store.CreateWorkspace(ctx, mw.GetUserID(ctx), cmd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.CreateWorkspace").Info("workspace created", logger.WorkspaceID(res.WorkspaceID))
	httperrors.WriteJSON(w, http.StatusCreated, res)
}

// GetWorkspace maneja GET /api/v1/workspaces/{workspaceId}
func (c *Controller) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := c.store.Workspace(r.Context(), mw.GetUserID(r.Context()), wsParam(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, ws)
}

// UpdateWorkspace maneja PUT /api/v1/workspaces/{workspaceId}
func (c *Controller) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateWorkspaceCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if err := c.store.UpdateWorkspace(r.Context(), mw.GetUserID(r.Context()), wsParam(r), cmd); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteWorkspace maneja DELETE /api/v1/workspaces/{workspaceId}
func (c *Controller) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	wsID := wsParam(r)
	if err := c.store.DeleteWorkspace(r.Context(), mw.GetUserID(r.Context()), wsID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.DeleteWorkspace").Info("workspace deleted", logger.WorkspaceID(wsID))
	w.WriteHeader(http.StatusNoContent)
}

// ---- Emails ----

// ListEmails maneja GET /api/v1/workspaces/{workspaceId}/emails
func (c *Controller) ListEmails(w http.ResponseWriter, r *http.Request) {
	f, err := emailFilters(r.URL.Query())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	page, err := c.store.Emails(r.Context(), mw.GetUserID(r.Context()), wsParam(r), f)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, page)
}

// GetEmail maneja GET /api/v1/workspaces/{workspaceId}/emails/{emailId}
func (c *Controller) GetEmail(w http.ResponseWriter, r *http.Request) {
	e, err := c.store.Email(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "emailId"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, e)
}

// SendEmail maneja POST /api/v1/workspaces/{workspaceId}/emails/send-email
func (c *Controller) SendEmail(w http.ResponseWriter, r *http.Request) {
	var cmd dto.SendEmailCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	e, err := c.store.SendEmail(r.Context(), mw.GetUserID(r.Context()), wsParam(r), cmd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.SendEmail").Info("email processed",
		logger.WorkspaceID(e.WorkspaceID), logger.EmailID(e.ID), logger.String("status", string(e.Status)))
	httperrors.WriteJSON(w, http.StatusAccepted, e)
}

// SendEmailWithAPIKey maneja POST /api/v1/send-email (auth X-API-KEY).
func (c *Controller) SendEmailWithAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var cmd dto.SendEmailWithApiKeyCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	e, err := c.store.SendEmailWithAPIKey(ctx, mw.GetUserID(ctx), mw.GetAPIKeyWorkspace(ctx), cmd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.SendEmailWithAPIKey").Info("email processed",
		logger.WorkspaceID(e.WorkspaceID), logger.EmailID(e.ID), logger.String("status", string(e.Status)))
	httperrors.WriteJSON(w, http.StatusAccepted, e)
}

// ---- Email configurations ----

// ListConfigurations maneja GET .../email-configurations
func (c *Controller) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	list, err := c.store.Configurations(r.Context(), mw.GetUserID(r.Context()), wsParam(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, list)
}

// GetConfiguration maneja GET .../email-configurations/{configId}
func (c *Controller) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := c.store.Configuration(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "configId"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, cfg)
}

// CreateConfiguration maneja POST .../email-configurations
func (c *Controller) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateEmailConfigurationCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	res, err := c.store.CreateConfiguration(r.Context(), mw.GetUserID(r.Context()), wsParam(r), cmd)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.CreateConfiguration").Info("email configuration created", logger.ConfigurationID(res.EmailConfigurationID))
	httperrors.WriteJSON(w, http.StatusCreated, res)
}

// UpdateConfiguration maneja PUT .../email-configurations/{configId}
func (c *Controller) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateEmailConfigurationCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if err := c.store.UpdateConfiguration(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "configId"), cmd); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConfiguration maneja DELETE .../email-configurations/{configId}
func (c *Controller) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	if err := c.store.DeleteConfiguration(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "configId")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Analytics ----

// GetAnalytics maneja GET .../analytics
func (c *Controller) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	p, err := analyticsParams(r.URL.Query())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	res, err := c.store.Analytics(r.Context(), mw.GetUserID(r.Context()), wsParam(r), p)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, res)
}

// ---- Members ----

// ListMembers maneja GET .../members
func (c *Controller) ListMembers(w http.ResponseWriter, r *http.Request) {
	list, err := c.store.Members(r.Context(), mw.GetUserID(r.Context()), wsParam(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, list)
}

// AddMember maneja POST .../members
func (c *Controller) AddMember(w http.ResponseWriter, r *http.Request) {
	var cmd dto.AddMemberCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	res, err := c.store.AddMember(r.Context(), mw.GetUserID(r.Context()), wsParam(r), cmd.UserID, cmd.Role)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, res)
}

// RemoveMember maneja DELETE .../members/{userId}
func (c *Controller) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := c.store.RemoveMember(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "userId")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemberRole maneja PUT .../members/{userId}/role
func (c *Controller) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var cmd dto.UpdateMemberRoleCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	if err := c.store.UpdateMemberRole(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "userId"), cmd.Role); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- API keys ----

// ListAPIKeys maneja GET .../users/{userId}/apikeys
func (c *Controller) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	list, err := c.store.APIKeys(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "userId"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, list)
}

// CreateAPIKey maneja POST .../users/{userId}/apikeys
func (c *Controller) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateApiKeyCommand
	if appErr := decodeJSON(w, r, &cmd); appErr != nil {
		httperrors.WriteError(w, appErr)
		return
	}
	res, err := c.store.CreateAPIKey(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "userId"), cmd.Name)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	c.log(r, "Controller.CreateAPIKey").Info("api key issued", logger.String("api_key_id", res.ApiKeyID))
	httperrors.WriteJSON(w, http.StatusCreated, res)
}

// RevokeAPIKey maneja DELETE .../users/{userId}/apikeys/{apiKeyId}
func (c *Controller) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	err := c.store.RevokeAPIKey(r.Context(), mw.GetUserID(r.Context()), wsParam(r), chi.URLParam(r, "userId"), chi.URLParam(r, "apiKeyId"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
