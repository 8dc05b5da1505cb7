package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
)

// Loaders arma los datos de cada página. Cada loader corre sus fetches en
// paralelo y espera a todos: una rama que falla degrada a vacío y deja su
// mensaje en Page.Error, salvo 401 (corta la página) y los casos que navegan.
type Loaders struct {
	provider api.Provider
	cache    *WorkspaceCache
	settings *SettingsStore
}

func NewLoaders(p api.Provider, wc *WorkspaceCache, ss *SettingsStore) *Loaders {
	if wc == nil {
		wc = NewWorkspaceCache(nil, 0)
	}
	return &Loaders{provider: p, cache: wc, settings: ss}
}

// Page son los datos comunes a todas las páginas de un workspace.
type Page struct {
	Workspaces []dto.Workspace   `json:"workspaces"`
	Workspace  *dto.Workspace    `json:"workspace"`
	Error      string            `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"` // rama -> mensaje
}

// pageLoad es una corrida all-settled de un loader.
type pageLoad struct {
	name    string
	section string
	wsID    string
	ctx     context.Context
	log     *zap.Logger
	b       *api.Backend
	g       errgroup.Group

	mu      sync.Mutex
	order   []string
	errs    map[string]error
	authErr error

	workspaces []dto.Workspace
	wsErr      error
}

func (l *Loaders) begin(ctx context.Context, name, section, workspaceID string) (*pageLoad, error) {
	tok := httpclient.TokenFromContext(ctx)
	if strings.TrimSpace(tok) == "" {
		return nil, httperrors.ErrUnauthorized.WithCause(httpclient.ErrNoToken)
	}
	p := &pageLoad{
		name:    name,
		section: section,
		wsID:    workspaceID,
		ctx:     ctx,
		log: logger.From(ctx).With(
			logger.Layer("loader"),
			logger.Component(name),
			logger.WorkspaceID(workspaceID),
		),
		b:    l.provider.ForToken(tok),
		errs: map[string]error{},
	}
	p.g.Go(func() error {
		p.workspaces, p.wsErr = l.cache.List(ctx, tok, p.b.Workspaces)
		p.settle("workspaces", p.wsErr)
		return nil
	})
	return p, nil
}

// branch agrega un fetch. El error nunca cancela a los demás.
func (p *pageLoad) branch(name string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	p.order = append(p.order, name)
	p.mu.Unlock()
	p.g.Go(func() error {
		p.settle(name, fn(p.ctx))
		return nil
	})
}

func (p *pageLoad) settle(branch string, err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if unauthorized(err) && p.authErr == nil {
		p.authErr = err
	}
	p.errs[branch] = err
	metrics.RecordLoaderDegraded(p.name, branch)
	p.log.Warn("loader branch degraded", logger.Loader(branch), logger.Err(err))
}

// wait espera todas las ramas y valida el workspace de la URL.
func (p *pageLoad) wait() (Page, error) {
	_ = p.g.Wait()

	if p.authErr != nil {
		return Page{}, httperrors.ErrUnauthorized.WithCause(p.authErr)
	}

	page := Page{Workspaces: p.workspaces}
	if page.Workspaces == nil {
		page.Workspaces = []dto.Workspace{}
	}
	if p.wsErr == nil {
		if len(p.workspaces) == 0 {
			return page, Redirect{Location: BasePath}
		}
		page.Workspace = dto.FindWorkspace(p.workspaces, p.wsID)
		if page.Workspace == nil {
			return page, Redirect{Location: WorkspacePath(p.workspaces[0].WorkspaceID, p.section)}
		}
	}

	// workspaces primero, después las ramas en el orden en que se agregaron
	names := append([]string{"workspaces"}, p.order...)
	for _, n := range names {
		err, ok := p.errs[n]
		if !ok {
			continue
		}
		if page.Errors == nil {
			page.Errors = map[string]string{}
		}
		page.Errors[n] = errMessage(err)
		if page.Error == "" {
			page.Error = errMessage(err)
		}
	}
	return page, nil
}

// =================================================================================
// ROOT
// =================================================================================

type RootData struct {
	Onboarding bool                  `json:"onboarding"`
	Presets    []fixtures.SMTPPreset `json:"presets,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Root navega al primer workspace o devuelve el payload de onboarding.
func (l *Loaders) Root(ctx context.Context) (*RootData, error) {
	s := NewWorkspaceSession(l.provider, ctxToken, WithSessionCache(l.cache))
	rd, err := s.Load(ctx, "")
	if err != nil {
		if unauthorized(err) {
			return nil, httperrors.ErrUnauthorized.WithCause(err)
		}
		metrics.RecordLoaderDegraded("root", "workspaces")
		logger.From(ctx).Warn("root loader degraded", logger.Layer("loader"), logger.Err(err))
		return &RootData{Error: s.Err}, nil
	}
	if !rd.IsZero() {
		return nil, rd
	}
	return &RootData{Onboarding: true, Presets: fixtures.SMTPPresets()}, nil
}

// ctxToken lee el token que dejó el middleware de auth.
var ctxToken = httpclient.TokenFunc(func(ctx context.Context) (string, error) {
	if t := httpclient.TokenFromContext(ctx); t != "" {
		return t, nil
	}
	return "", httpclient.ErrNoToken
})

// =================================================================================
// OVERVIEW
// =================================================================================

const recentEmailsOnOverview = 5

type OverviewData struct {
	Page
	Analytics      *dto.GetWorkspaceAnalyticsResponse `json:"analytics"`
	RecentEmails   []dto.EmailDto                     `json:"recentEmails"`
	Configurations []dto.EmailConfiguration           `json:"configurations"`
}

func (l *Loaders) Overview(ctx context.Context, workspaceID string) (*OverviewData, error) {
	p, err := l.begin(ctx, "overview", SectionOverview, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &OverviewData{RecentEmails: []dto.EmailDto{}, Configurations: []dto.EmailConfiguration{}}
	p.branch("analytics", func(ctx context.Context) error {
		a, err := p.b.Analytics.GetWorkspaceAnalytics(ctx, workspaceID, nil)
		if err != nil {
			return err
		}
		a.EmailMetrics.StatusBreakdown = api.CompleteBreakdown(a.EmailMetrics.StatusBreakdown)
		out.Analytics = a
		return nil
	})
	p.branch("emails", func(ctx context.Context) error {
		page, err := p.b.Emails.GetEmailsForWorkspace(ctx, workspaceID, dto.EmailFilters{
			PageNumber: 1,
			PageSize:   recentEmailsOnOverview,
			SortOrder:  "desc",
		})
		if err != nil {
			return err
		}
		out.RecentEmails = page.Items
		return nil
	})
	p.branch("configurations", func(ctx context.Context) error {
		cfgs, err := p.b.Configs.GetEmailConfigurations(ctx, workspaceID)
		if err != nil {
			return err
		}
		out.Configurations = cfgs
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// =================================================================================
// EMAILS
// =================================================================================

type EmailsData struct {
	Page
	Emails         dto.PaginatedList[dto.EmailDto] `json:"emails"`
	Filters        EmailFiltersView                `json:"filters"`
	Configurations []dto.EmailConfiguration        `json:"configurations"`
}

// EmailFiltersView es el eco de los filtros aplicados para el formulario.
type EmailFiltersView struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
	SortOrder string `json:"sortOrder"`
	Status    string `json:"status,omitempty"`
	To        string `json:"to,omitempty"`
	Subject   string `json:"subject,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

func filtersView(f dto.EmailFilters) EmailFiltersView {
	v := EmailFiltersView{
		Page:      f.PageNumber,
		PageSize:  f.PageSize,
		SortOrder: f.SortOrder,
		Status:    string(f.EmailStatus),
		To:        f.ToEmailContains,
		Subject:   f.SubjectContains,
	}
	if f.StartDate != nil {
		v.StartDate = f.StartDate.Format("2006-01-02")
	}
	if f.EndDate != nil {
		v.EndDate = f.EndDate.Format("2006-01-02")
	}
	return v
}

func (l *Loaders) Emails(ctx context.Context, workspaceID string, q url.Values) (*EmailsData, error) {
	f := ParseEmailFilters(q)
	p, err := l.begin(ctx, "emails", SectionEmails, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &EmailsData{
		Emails:         dto.EmptyPage[dto.EmailDto](f.PageNumber, f.PageSize),
		Filters:        filtersView(f),
		Configurations: []dto.EmailConfiguration{},
	}
	p.branch("emails", func(ctx context.Context) error {
		page, err := p.b.Emails.GetEmailsForWorkspace(ctx, workspaceID, f)
		if err != nil {
			return err
		}
		out.Emails = *page
		return nil
	})
	p.branch("configurations", func(ctx context.Context) error {
		cfgs, err := p.b.Configs.GetEmailConfigurations(ctx, workspaceID)
		if err != nil {
			return err
		}
		out.Configurations = cfgs
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type EmailDetailData struct {
	Page
	Email         *dto.EmailDetailsDto    `json:"email"`
	Configuration *dto.EmailConfiguration `json:"configuration"`
}

// EmailDetail: un 404 del API es un 404 de la página, no una degradación.
func (l *Loaders) EmailDetail(ctx context.Context, workspaceID, emailID string) (*EmailDetailData, error) {
	p, err := l.begin(ctx, "email_detail", SectionEmails, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &EmailDetailData{}
	var notFound error
	var cfgs []dto.EmailConfiguration
	p.branch("email", func(ctx context.Context) error {
		e, err := p.b.Emails.GetEmailByIdForWorkspace(ctx, workspaceID, emailID)
		if httpclient.IsNotFound(err) {
			notFound = err
			return nil
		}
		if err != nil {
			return err
		}
		out.Email = e
		return nil
	})
	p.branch("configurations", func(ctx context.Context) error {
		var err error
		cfgs, err = p.b.Configs.GetEmailConfigurations(ctx, workspaceID)
		return err
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, httperrors.ErrEmailNotFound.WithDetail(fmt.Sprintf("email %q", emailID)).WithCause(notFound)
	}
	if out.Email != nil {
		for i := range cfgs {
			if cfgs[i].EmailConfigurationID == out.Email.EmailConfigurationID {
				out.Configuration = &cfgs[i]
				break
			}
		}
	}
	return out, nil
}

// =================================================================================
// CONFIGURATIONS
// =================================================================================

type ConfigurationsData struct {
	Page
	Configurations []dto.EmailConfiguration `json:"configurations"`
	Presets        []fixtures.SMTPPreset    `json:"presets"`
}

func (l *Loaders) Configurations(ctx context.Context, workspaceID string) (*ConfigurationsData, error) {
	p, err := l.begin(ctx, "configurations", SectionConfigurations, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &ConfigurationsData{Configurations: []dto.EmailConfiguration{}, Presets: fixtures.SMTPPresets()}
	p.branch("configurations", func(ctx context.Context) error {
		cfgs, err := p.b.Configs.GetEmailConfigurations(ctx, workspaceID)
		if err != nil {
			return err
		}
		out.Configurations = cfgs
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// =================================================================================
// ANALYTICS
// =================================================================================

type AnalyticsData struct {
	Page
	Analytics *dto.GetWorkspaceAnalyticsResponse `json:"analytics"`
	Breakdown []dto.StatusCount                  `json:"breakdown"`
	Params    AnalyticsParamsView                `json:"params"`
}

type AnalyticsParamsView struct {
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Granularity string `json:"granularity,omitempty"`
}

func (l *Loaders) Analytics(ctx context.Context, workspaceID string, q url.Values) (*AnalyticsData, error) {
	params := ParseAnalyticsParams(q)
	p, err := l.begin(ctx, "analytics", SectionAnalytics, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &AnalyticsData{
		Breakdown: api.CompleteBreakdown(nil),
		Params:    AnalyticsParamsView{Granularity: params.Granularity},
	}
	if params.StartDate != nil {
		out.Params.StartDate = params.StartDate.Format("2006-01-02")
	}
	if params.EndDate != nil {
		out.Params.EndDate = params.EndDate.Format("2006-01-02")
	}
	p.branch("analytics", func(ctx context.Context) error {
		a, err := p.b.Analytics.GetWorkspaceAnalytics(ctx, workspaceID, params)
		if err != nil {
			return err
		}
		out.Analytics = a
		out.Breakdown = api.CompleteBreakdown(a.EmailMetrics.StatusBreakdown)
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// =================================================================================
// SETTINGS
// =================================================================================

type SettingsData struct {
	Page
	Tab            TabKind                  `json:"tab"`
	Tabs           []TabKind                `json:"tabs"`
	Settings       SettingsTab              `json:"settings"`
	Configurations []dto.EmailConfiguration `json:"configurations"`
}

// Settings: tab desconocido cae en general.
func (l *Loaders) Settings(ctx context.Context, workspaceID string, q url.Values) (*SettingsData, error) {
	tab, err := ParseTabKind(q.Get("tab"))
	if err != nil {
		tab = TabGeneral
	}
	p, err := l.begin(ctx, "settings", SectionSettings, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &SettingsData{
		Tab:            tab,
		Tabs:           Tabs,
		Settings:       DefaultSettings(tab),
		Configurations: []dto.EmailConfiguration{},
	}
	if tab != TabGeneral && l.settings != nil {
		p.branch("settings", func(ctx context.Context) error {
			st, err := l.settings.Load(ctx, workspaceID, tab)
			out.Settings = st
			return err
		})
	}
	if tab == TabSMTPDefaults {
		p.branch("configurations", func(ctx context.Context) error {
			cfgs, err := p.b.Configs.GetEmailConfigurations(ctx, workspaceID)
			if err != nil {
				return err
			}
			out.Configurations = cfgs
			return nil
		})
	}
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	if tab == TabGeneral && out.Workspace != nil {
		out.Settings = generalFrom(*out.Workspace)
	}
	return out, nil
}

// =================================================================================
// API KEYS
// =================================================================================

type ApiKeysData struct {
	Page
	UserID  string                `json:"userId"`
	ApiKeys []dto.WorkspaceApiKey `json:"apiKeys"`
}

// errNoUser: el token no trae sub, no sabemos de quién listar las keys.
var errNoUser = httperrors.ErrForbidden.WithDetail("the session token does not identify a user")

func (l *Loaders) ApiKeys(ctx context.Context, workspaceID string) (*ApiKeysData, error) {
	p, err := l.begin(ctx, "api_keys", SectionAPIKeys, workspaceID)
	if err != nil {
		return nil, err
	}
	userID := mw.GetUserID(ctx)
	out := &ApiKeysData{UserID: userID, ApiKeys: []dto.WorkspaceApiKey{}}
	p.branch("api_keys", func(ctx context.Context) error {
		if userID == "" {
			return errNoUser
		}
		keys, err := p.b.ApiKeys.GetApiKeys(ctx, workspaceID, userID)
		if err != nil {
			return err
		}
		out.ApiKeys = keys
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// =================================================================================
// MEMBERS
// =================================================================================

type RoleOption struct {
	Value dto.MemberRole `json:"value"`
	Name  string         `json:"name"`
}

type MembersData struct {
	Page
	Members []dto.WorkspaceMember `json:"members"`
	Roles   []RoleOption          `json:"roles"`
}

func roleOptions() []RoleOption {
	out := make([]RoleOption, 0, 4)
	for r := dto.RoleOwner; r <= dto.RoleViewer; r++ {
		out = append(out, RoleOption{Value: r, Name: r.String()})
	}
	return out
}

func (l *Loaders) Members(ctx context.Context, workspaceID string) (*MembersData, error) {
	p, err := l.begin(ctx, "members", SectionMembers, workspaceID)
	if err != nil {
		return nil, err
	}
	out := &MembersData{Members: []dto.WorkspaceMember{}, Roles: roleOptions()}
	p.branch("members", func(ctx context.Context) error {
		ms, err := p.b.Members.GetMembers(ctx, workspaceID)
		if err != nil {
			return err
		}
		active := make([]dto.WorkspaceMember, 0, len(ms))
		for _, m := range ms {
			if !m.IsDeleted {
				active = append(active, m)
			}
		}
		out.Members = active
		return nil
	})
	if out.Page, err = p.wait(); err != nil {
		return nil, err
	}
	return out, nil
}
