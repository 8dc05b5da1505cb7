package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/smtpcheck"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// ActionResult es la respuesta de toda acción del dashboard.
type ActionResult struct {
	OK          bool              `json:"ok"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	RedirectTo  string            `json:"redirectTo,omitempty"`
	Data        any               `json:"data,omitempty"`
}

func done(msg string, data any) *ActionResult {
	return &ActionResult{OK: true, Message: msg, Data: data}
}

// failed arma el resultado visible de un error. El error igual se devuelve al
// controller para elegir el status.
func failed(err error) *ActionResult {
	return &ActionResult{Error: errMessage(err), FieldErrors: fieldErrors(err)}
}

// Actions ejecuta las mutaciones. Después de mutar se vuelve a pedir la lista
// afectada al API y se devuelve en Data.
type Actions struct {
	provider api.Provider
	cache    *WorkspaceCache
	settings *SettingsStore
	prober   *smtpcheck.Prober
}

func NewActions(p api.Provider, wc *WorkspaceCache, ss *SettingsStore, prober *smtpcheck.Prober) *Actions {
	if wc == nil {
		wc = NewWorkspaceCache(nil, 0)
	}
	if prober == nil {
		prober = smtpcheck.New(smtpcheck.DefaultTimeout)
	}
	return &Actions{provider: p, cache: wc, settings: ss, prober: prober}
}

func (a *Actions) backend(ctx context.Context) (*api.Backend, error) {
	tok := httpclient.TokenFromContext(ctx)
	if strings.TrimSpace(tok) == "" {
		return nil, httpclient.ErrNoToken
	}
	return a.provider.ForToken(tok), nil
}

func (a *Actions) session() *WorkspaceSession {
	return NewWorkspaceSession(a.provider, ctxToken, WithSessionCache(a.cache))
}

func actionLog(ctx context.Context, op, workspaceID string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("action"), logger.Op(op), logger.WorkspaceID(workspaceID))
}

// =================================================================================
// WORKSPACES
// =================================================================================

type WorkspacesResult struct {
	Workspaces []dto.Workspace              `json:"workspaces"`
	Workspace  *dto.Workspace               `json:"workspace,omitempty"`
	Created    *dto.CreateWorkspaceResponse `json:"created,omitempty"`
}

func sessionResult(s *WorkspaceSession) WorkspacesResult {
	return WorkspacesResult{Workspaces: s.Workspaces, Workspace: s.Current}
}

// CreateWorkspace devuelve la API key inicial en Data.Created (única vez).
func (a *Actions) CreateWorkspace(ctx context.Context, cmd dto.CreateWorkspaceCommand) (*ActionResult, error) {
	s := a.session()
	rd, res, err := s.Create(ctx, cmd.Name, cmd.Domain)
	if err != nil {
		return failed(err), err
	}
	out := sessionResult(s)
	out.Created = res
	r := done("Workspace created", out)
	r.RedirectTo = rd.Location
	return r, nil
}

func (a *Actions) UpdateWorkspace(ctx context.Context, workspaceID string, cmd dto.UpdateWorkspaceCommand) (*ActionResult, error) {
	s := a.session()
	if err := s.Update(ctx, workspaceID, cmd); err != nil {
		return failed(err), err
	}
	return done("Workspace updated", sessionResult(s)), nil
}

func (a *Actions) DeleteWorkspace(ctx context.Context, workspaceID string) (*ActionResult, error) {
	s := a.session()
	rd, err := s.Delete(ctx, workspaceID)
	if err != nil {
		return failed(err), err
	}
	actionLog(ctx, "DeleteWorkspace", workspaceID).Info("workspace deleted")
	r := done("Workspace deleted", sessionResult(s))
	r.RedirectTo = rd.Location
	return r, nil
}

func (a *Actions) SwitchWorkspace(ctx context.Context, workspaceID string) (*ActionResult, error) {
	s := a.session()
	rd, err := s.Switch(ctx, workspaceID)
	if err != nil {
		return failed(err), err
	}
	r := done("", sessionResult(s))
	r.RedirectTo = rd.Location
	return r, nil
}

// =================================================================================
// CONFIGURATIONS
// =================================================================================

type ConfigurationsResult struct {
	Configurations []dto.EmailConfiguration `json:"configurations"`
	ID             string                   `json:"emailConfigurationId,omitempty"`
}

func (a *Actions) configurations(ctx context.Context, b *api.Backend, workspaceID, id string) ConfigurationsResult {
	cfgs, err := b.Configs.GetEmailConfigurations(ctx, workspaceID)
	if err != nil {
		// la mutación ya ocurrió; la lista se recarga con la página
		actionLog(ctx, "configurations", workspaceID).Warn("refetch failed", logger.Err(err))
		cfgs = nil
	}
	if cfgs == nil {
		cfgs = []dto.EmailConfiguration{}
	}
	return ConfigurationsResult{Configurations: cfgs, ID: id}
}

func (a *Actions) CreateConfiguration(ctx context.Context, workspaceID string, cmd dto.CreateEmailConfigurationCommand) (*ActionResult, error) {
	cmd.WorkspaceID = workspaceID
	cmd.SmtpHost = strings.TrimSpace(cmd.SmtpHost)
	cmd.FromEmail = strings.TrimSpace(cmd.FromEmail)
	if err := validation.CreateEmailConfiguration(cmd).Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	res, err := b.Configs.CreateEmailConfiguration(ctx, workspaceID, cmd)
	if err != nil {
		return failed(err), err
	}
	actionLog(ctx, "CreateConfiguration", workspaceID).Info("configuration created",
		logger.ConfigurationID(res.EmailConfigurationID))
	return done("Configuration created", a.configurations(ctx, b, workspaceID, res.EmailConfigurationID)), nil
}

// UpdateConfiguration: password vacío mantiene el guardado.
func (a *Actions) UpdateConfiguration(ctx context.Context, workspaceID, id string, cmd dto.UpdateEmailConfigurationCommand) (*ActionResult, error) {
	cmd.WorkspaceID = workspaceID
	cmd.EmailConfigurationID = id
	cmd.SmtpHost = strings.TrimSpace(cmd.SmtpHost)
	cmd.FromEmail = strings.TrimSpace(cmd.FromEmail)
	if err := validation.UpdateEmailConfiguration(cmd).Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.Configs.UpdateEmailConfiguration(ctx, workspaceID, id, cmd); err != nil {
		return failed(err), err
	}
	return done("Configuration updated", a.configurations(ctx, b, workspaceID, id)), nil
}

func (a *Actions) DeleteConfiguration(ctx context.Context, workspaceID, id string) (*ActionResult, error) {
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.Configs.DeleteEmailConfiguration(ctx, workspaceID, id); err != nil {
		return failed(err), err
	}
	actionLog(ctx, "DeleteConfiguration", workspaceID).Info("configuration deleted", logger.ConfigurationID(id))
	return done("Configuration deleted", a.configurations(ctx, b, workspaceID, "")), nil
}

// TestConnectionRequest prueba settings del formulario o una configuración
// guardada. El API nunca devuelve el password, así que siempre viaja acá.
type TestConnectionRequest struct {
	EmailConfigurationID string              `json:"emailConfigurationId,omitempty"`
	Settings             *smtpcheck.Settings `json:"settings,omitempty"`
	Password             string              `json:"password,omitempty"`
}

// TestConnection conecta y autentica contra el servidor SMTP desde el dashboard.
// Un fallo de SMTP es un resultado, no un error HTTP.
func (a *Actions) TestConnection(ctx context.Context, workspaceID string, req TestConnectionRequest) (*ActionResult, error) {
	log := actionLog(ctx, "TestConnection", workspaceID)

	var s smtpcheck.Settings
	switch {
	case req.Settings != nil:
		s = *req.Settings
		if s.Password == "" {
			s.Password = req.Password
		}
	case req.EmailConfigurationID != "":
		b, err := a.backend(ctx)
		if err != nil {
			return failed(err), err
		}
		cfg, err := b.Configs.GetEmailConfiguration(ctx, workspaceID, req.EmailConfigurationID)
		if err != nil {
			if httpclient.IsNotFound(err) {
				err = httperrors.ErrConfigurationNotFound.WithCause(err)
			}
			return failed(err), err
		}
		s = smtpcheck.FromConfiguration(*cfg, req.Password)
	default:
		err := httperrors.ErrMissingFields.WithDetail("settings or emailConfigurationId is required")
		return failed(err), err
	}

	if fe := s.Validate(); len(fe) > 0 {
		return failed(fe), fe
	}
	res := a.prober.Probe(ctx, s)
	log.Info("smtp connection tested", logger.Bool("ok", res.OK), logger.String("code", res.Code))
	if !res.OK {
		return &ActionResult{Error: res.Message, Data: res}, nil
	}
	return done("Connection successful", res), nil
}

// SendTestEmailRequest envía el email de prueba por el API con la configuración dada.
type SendTestEmailRequest struct {
	EmailConfigurationID string `json:"emailConfigurationId"`
	ToEmail              string `json:"toEmail"`
}

func (a *Actions) SendTestEmail(ctx context.Context, workspaceID string, req SendTestEmailRequest) (*ActionResult, error) {
	to := strings.TrimSpace(req.ToEmail)
	fe := validation.FieldErrors{}
	if req.EmailConfigurationID == "" {
		fe.Add("emailConfigurationId", "Select an email configuration")
	}
	if !validation.ValidEmail(to) {
		fe.Add("toEmail", "Please enter a valid email address")
	}
	if err := fe.Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	cfg, err := b.Configs.GetEmailConfiguration(ctx, workspaceID, req.EmailConfigurationID)
	if err != nil {
		if httpclient.IsNotFound(err) {
			err = httperrors.ErrConfigurationNotFound.WithCause(err)
		}
		return failed(err), err
	}
	cmd := dto.SendEmailCommand{
		EmailConfigurationID: cfg.EmailConfigurationID,
		ToEmail:              []string{to},
		Subject:              smtpcheck.TestSubject,
		Body:                 smtpcheck.TestHTML(cfg.SmtpHost),
		IsHtml:               true,
		FromDisplayName:      cfg.DisplayName,
	}
	if err := b.Emails.SendEmail(ctx, workspaceID, cmd); err != nil {
		return failed(err), err
	}
	actionLog(ctx, "SendTestEmail", workspaceID).Info("test email queued", logger.ConfigurationID(cfg.EmailConfigurationID))
	return done(fmt.Sprintf("Test email sent to %s", to), nil), nil
}

// =================================================================================
// EMAILS
// =================================================================================

func normalizeAddresses(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, a := range in {
		out = append(out, validation.SplitAddresses(a)...)
	}
	return out
}

// SendEmail: acepta listas separadas por coma en cada entrada del formulario.
func (a *Actions) SendEmail(ctx context.Context, workspaceID string, cmd dto.SendEmailCommand) (*ActionResult, error) {
	cmd.WorkspaceID = workspaceID
	cmd.ToEmail = normalizeAddresses(cmd.ToEmail)
	cmd.CcEmail = normalizeAddresses(cmd.CcEmail)
	cmd.BccEmail = normalizeAddresses(cmd.BccEmail)
	if err := validation.SendEmail(cmd).Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.Emails.SendEmail(ctx, workspaceID, cmd); err != nil {
		return failed(err), err
	}
	actionLog(ctx, "SendEmail", workspaceID).Info("email queued", logger.Count(len(cmd.ToEmail)))
	return done("Email queued for delivery", nil), nil
}

// =================================================================================
// API KEYS
// =================================================================================

type ApiKeysResult struct {
	ApiKeys []dto.WorkspaceApiKey     `json:"apiKeys"`
	Created *dto.CreateApiKeyResponse `json:"created,omitempty"`
}

func (a *Actions) apiKeys(ctx context.Context, b *api.Backend, workspaceID, userID string) []dto.WorkspaceApiKey {
	keys, err := b.ApiKeys.GetApiKeys(ctx, workspaceID, userID)
	if err != nil || keys == nil {
		if err != nil {
			actionLog(ctx, "apiKeys", workspaceID).Warn("refetch failed", logger.Err(err))
		}
		return []dto.WorkspaceApiKey{}
	}
	return keys
}

func currentUser(ctx context.Context) (string, error) {
	if uid := mw.GetUserID(ctx); uid != "" {
		return uid, nil
	}
	return "", errNoUser
}

// CreateApiKey: PlainKey solo viaja en esta respuesta; no se cachea ni se loguea.
func (a *Actions) CreateApiKey(ctx context.Context, workspaceID, name string) (*ActionResult, error) {
	name = strings.TrimSpace(name)
	if err := validation.APIKeyName(name).Err(); err != nil {
		return failed(err), err
	}
	userID, err := currentUser(ctx)
	if err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	res, err := b.ApiKeys.CreateApiKey(ctx, workspaceID, userID, name)
	if err != nil {
		return failed(err), err
	}
	actionLog(ctx, "CreateApiKey", workspaceID).Info("api key created", logger.String("api_key_id", res.ApiKeyID))
	return done("API key created. Copy it now, it will not be shown again.", ApiKeysResult{
		ApiKeys: a.apiKeys(ctx, b, workspaceID, userID),
		Created: res,
	}), nil
}

func (a *Actions) RevokeApiKey(ctx context.Context, workspaceID, apiKeyID string) (*ActionResult, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.ApiKeys.RevokeApiKey(ctx, workspaceID, userID, apiKeyID); err != nil {
		if httpclient.IsNotFound(err) {
			err = httperrors.ErrAPIKeyNotFound.WithCause(err)
		}
		return failed(err), err
	}
	actionLog(ctx, "RevokeApiKey", workspaceID).Info("api key revoked", logger.String("api_key_id", apiKeyID))
	return done("API key revoked", ApiKeysResult{ApiKeys: a.apiKeys(ctx, b, workspaceID, userID)}), nil
}

// =================================================================================
// MEMBERS
// =================================================================================

type MembersResult struct {
	Members []dto.WorkspaceMember `json:"members"`
}

func (a *Actions) members(ctx context.Context, b *api.Backend, workspaceID string) MembersResult {
	ms, err := b.Members.GetMembers(ctx, workspaceID)
	if err != nil {
		actionLog(ctx, "members", workspaceID).Warn("refetch failed", logger.Err(err))
	}
	out := []dto.WorkspaceMember{}
	for _, m := range ms {
		if !m.IsDeleted {
			out = append(out, m)
		}
	}
	return MembersResult{Members: out}
}

func (a *Actions) AddMember(ctx context.Context, workspaceID string, cmd dto.AddMemberCommand) (*ActionResult, error) {
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	if err := validation.MemberRole(cmd.UserID, cmd.Role).Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if _, err := b.Members.AddMember(ctx, workspaceID, cmd.UserID, cmd.Role); err != nil {
		return failed(err), err
	}
	actionLog(ctx, "AddMember", workspaceID).Info("member added", logger.UserID(cmd.UserID))
	return done("Member added", a.members(ctx, b, workspaceID)), nil
}

func (a *Actions) RemoveMember(ctx context.Context, workspaceID, userID string) (*ActionResult, error) {
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.Members.RemoveMember(ctx, workspaceID, userID); err != nil {
		if httpclient.IsNotFound(err) {
			err = httperrors.ErrMemberNotFound.WithCause(err)
		}
		return failed(err), err
	}
	actionLog(ctx, "RemoveMember", workspaceID).Info("member removed", logger.UserID(userID))
	return done("Member removed", a.members(ctx, b, workspaceID)), nil
}

func (a *Actions) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role dto.MemberRole) (*ActionResult, error) {
	if err := validation.MemberRole(userID, role).Err(); err != nil {
		return failed(err), err
	}
	b, err := a.backend(ctx)
	if err != nil {
		return failed(err), err
	}
	if err := b.Members.UpdateMemberRole(ctx, workspaceID, userID, role); err != nil {
		if httpclient.IsNotFound(err) {
			err = httperrors.ErrMemberNotFound.WithCause(err)
		}
		return failed(err), err
	}
	return done("Role updated", a.members(ctx, b, workspaceID)), nil
}

// =================================================================================
// SETTINGS
// =================================================================================

var errNoSettingsStore = errors.New("dashboard: settings store not configured")

// SaveSettings: general va al API como update del workspace; el resto al store.
func (a *Actions) SaveSettings(ctx context.Context, workspaceID string, tab SettingsTab) (*ActionResult, error) {
	if fe := tab.Validate(); len(fe) > 0 {
		return failed(fe), fe
	}
	switch t := tab.(type) {
	case GeneralSettings:
		return a.UpdateWorkspace(ctx, workspaceID, dto.UpdateWorkspaceCommand{
			ID:       workspaceID,
			Name:     t.Name,
			Domain:   t.Domain,
			IsActive: t.IsActive,
		})
	case SMTPDefaultSettings:
		if t.DefaultConfigurationID != "" {
			if err := a.checkConfiguration(ctx, workspaceID, t.DefaultConfigurationID); err != nil {
				return failed(err), err
			}
		}
	}
	if a.settings == nil {
		return failed(errNoSettingsStore), errNoSettingsStore
	}
	if err := a.settings.Save(ctx, workspaceID, tab); err != nil {
		return failed(err), err
	}
	return done("Settings saved", tab), nil
}

func (a *Actions) checkConfiguration(ctx context.Context, workspaceID, id string) error {
	b, err := a.backend(ctx)
	if err != nil {
		return err
	}
	_, err = b.Configs.GetEmailConfiguration(ctx, workspaceID, id)
	if httpclient.IsNotFound(err) {
		fe := validation.FieldErrors{}
		fe.Add("defaultConfigurationId", "Configuration not found in this workspace")
		return fe
	}
	return err
}
