package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
)

func demoLoaders(t *testing.T) (*Loaders, *fixtures.Provider) {
	t.Helper()
	p := newDemo(t)
	return NewLoaders(p, nil, NewSettingsStore(cache.NewMemory("t", time.Minute))), p
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return httperrors.FromError(err).HTTPStatus
}

func TestOverview_LoadsAllBranches(t *testing.T) {
	l, _ := demoLoaders(t)
	data, err := l.Overview(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)

	require.NotNil(t, data.Workspace)
	assert.Equal(t, "Acme Marketing", data.Workspace.Name)
	assert.Len(t, data.Workspaces, 2)
	assert.Len(t, data.RecentEmails, recentEmailsOnOverview)
	assert.Len(t, data.Configurations, 2)
	require.NotNil(t, data.Analytics)
	assert.Len(t, data.Analytics.EmailMetrics.StatusBreakdown, len(dto.EmailStatuses))
	assert.Empty(t, data.Error)
	assert.Empty(t, data.Errors)

	for i := 1; i < len(data.RecentEmails); i++ {
		assert.False(t, data.RecentEmails[i].CreatedAtUtc.After(data.RecentEmails[i-1].CreatedAtUtc), "orden desc")
	}
}

func TestLoaders_RedirectWhenWorkspaceIsNotTheUsers(t *testing.T) {
	l, p := demoLoaders(t)
	list, err := p.ForToken("x").Workspaces.GetUserWorkspaces(context.Background())
	require.NoError(t, err)

	for _, section := range []string{SectionEmails, SectionMembers} {
		var err error
		switch section {
		case SectionEmails:
			_, err = l.Emails(demoCtx(), "ws_nope", url.Values{})
		case SectionMembers:
			_, err = l.Members(demoCtx(), "ws_nope")
		}
		rd, ok := AsRedirect(err)
		require.True(t, ok, "%s: %v", section, err)
		assert.Equal(t, WorkspacePath(list[0].WorkspaceID, section), rd.Location)
	}
}

func TestLoaders_RedirectToRootWithoutWorkspaces(t *testing.T) {
	ws := &fakeWorkspaces{}
	p := providerFunc(func(string) *api.Backend {
		return &api.Backend{Workspaces: ws, Configs: failingConfigs{err: apiErr(http.StatusNotFound)}}
	})
	l := NewLoaders(p, nil, nil)

	_, err := l.Configurations(demoCtx(), "ws_a")
	rd, ok := AsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, BasePath, rd.Location)

	root, err := l.Root(demoCtx())
	require.NoError(t, err)
	assert.True(t, root.Onboarding)
	assert.Len(t, root.Presets, len(fixtures.SMTPPresets()))
}

func TestRoot_RedirectsToFirstWorkspace(t *testing.T) {
	l, _ := demoLoaders(t)
	_, err := l.Root(demoCtx())
	rd, ok := AsRedirect(err)
	require.True(t, ok)
	assert.Contains(t, rd.Location, BasePath+"/ws_")
}

func TestLoaders_MissingTokenIs401(t *testing.T) {
	l, _ := demoLoaders(t)
	_, err := l.Overview(context.Background(), fixtures.AcmeWorkspaceID)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))

	_, err = l.Root(context.Background())
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestLoaders_FailedBranchDegrades(t *testing.T) {
	demo := newDemo(t)
	p := providerFunc(func(tok string) *api.Backend {
		b := demo.ForToken(tok)
		b.Configs = failingConfigs{err: apiErr(http.StatusInternalServerError)}
		return b
	})
	l := NewLoaders(p, nil, nil)

	data, err := l.Emails(demoCtx(), fixtures.AcmeWorkspaceID, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 48, data.Emails.TotalCount)
	assert.NotNil(t, data.Configurations)
	assert.Empty(t, data.Configurations)
	assert.Equal(t, "HTTP 500: Internal Server Error", data.Error)
	assert.Contains(t, data.Errors, "configurations")
	assert.NotContains(t, data.Errors, "emails")
}

func TestLoaders_UnauthorizedBranchCutsThePage(t *testing.T) {
	demo := newDemo(t)
	p := providerFunc(func(tok string) *api.Backend {
		b := demo.ForToken(tok)
		b.Configs = failingConfigs{err: apiErr(http.StatusUnauthorized)}
		return b
	})
	_, err := NewLoaders(p, nil, nil).Configurations(demoCtx(), fixtures.AcmeWorkspaceID)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))

	// 403 no corta: degrada
	p = providerFunc(func(tok string) *api.Backend {
		b := demo.ForToken(tok)
		b.Configs = failingConfigs{err: apiErr(http.StatusForbidden)}
		return b
	})
	data, err := NewLoaders(p, nil, nil).Configurations(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.NotEmpty(t, data.Error)
}

func TestLoaders_WorkspaceListFailureStillRendersPage(t *testing.T) {
	demo := newDemo(t)
	p := providerFunc(func(tok string) *api.Backend {
		b := demo.ForToken(tok)
		b.Workspaces = &fakeWorkspaces{err: apiErr(http.StatusBadGateway)}
		return b
	})
	data, err := NewLoaders(p, nil, nil).Members(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Nil(t, data.Workspace)
	assert.Empty(t, data.Workspaces)
	assert.Len(t, data.Members, 4)
	assert.Contains(t, data.Errors, "workspaces")
}

func TestEmails_AppliesFilters(t *testing.T) {
	l, _ := demoLoaders(t)
	q := url.Values{"status": {"Failed"}, "pageSize": {"abc"}, "sortOrder": {"asc"}}
	data, err := l.Emails(demoCtx(), fixtures.AcmeWorkspaceID, q)
	require.NoError(t, err)

	assert.Equal(t, defaultPageSize, data.Emails.PageSize)
	assert.Equal(t, "asc", data.Filters.SortOrder)
	assert.Equal(t, "Failed", data.Filters.Status)
	require.NotEmpty(t, data.Emails.Items)
	for _, e := range data.Emails.Items {
		assert.Equal(t, dto.StatusFailed, e.Status)
	}
}

func TestEmailDetail(t *testing.T) {
	l, p := demoLoaders(t)
	page, err := p.ForToken("x").Emails.GetEmailsForWorkspace(context.Background(), fixtures.AcmeWorkspaceID, dto.EmailFilters{PageNumber: 1, PageSize: 1})
	require.NoError(t, err)
	id := page.Items[0].ID

	data, err := l.EmailDetail(demoCtx(), fixtures.AcmeWorkspaceID, id)
	require.NoError(t, err)
	require.NotNil(t, data.Email)
	assert.Equal(t, id, data.Email.ID)
	require.NotNil(t, data.Configuration)
	assert.Equal(t, data.Email.EmailConfigurationID, data.Configuration.EmailConfigurationID)

	_, err = l.EmailDetail(demoCtx(), fixtures.AcmeWorkspaceID, "email_missing")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
	assert.Equal(t, httperrors.ErrEmailNotFound.Code, httperrors.FromError(err).Code)
}

func TestConfigurationsAndAnalytics(t *testing.T) {
	l, _ := demoLoaders(t)

	cfgs, err := l.Configurations(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, cfgs.Configurations, 2)
	assert.NotEmpty(t, cfgs.Presets)

	an, err := l.Analytics(demoCtx(), fixtures.AcmeWorkspaceID, url.Values{"granularity": {"week"}, "startDate": {"nope"}})
	require.NoError(t, err)
	require.NotNil(t, an.Analytics)
	assert.Equal(t, "week", an.Params.Granularity)
	assert.Empty(t, an.Params.StartDate)
	require.Len(t, an.Breakdown, len(dto.EmailStatuses))
	for i, s := range dto.EmailStatuses {
		assert.Equal(t, s, an.Breakdown[i].Status)
	}
}

func TestSettingsLoader(t *testing.T) {
	l, _ := demoLoaders(t)

	data, err := l.Settings(demoCtx(), fixtures.AcmeWorkspaceID, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, TabGeneral, data.Tab)
	assert.Equal(t, GeneralSettings{Name: "Acme Marketing", Domain: "acme.io", IsActive: true}, data.Settings)

	data, err = l.Settings(demoCtx(), fixtures.AcmeWorkspaceID, url.Values{"tab": {"smtp-defaults"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(TabSMTPDefaults), data.Settings)
	assert.Len(t, data.Configurations, 2)

	data, err = l.Settings(demoCtx(), fixtures.AcmeWorkspaceID, url.Values{"tab": {"bogus"}})
	require.NoError(t, err)
	assert.Equal(t, TabGeneral, data.Tab)
}

func TestApiKeysLoader(t *testing.T) {
	l, _ := demoLoaders(t)

	data, err := l.ApiKeys(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, fixtures.DemoUserID, data.UserID)
	assert.Len(t, data.ApiKeys, 2)

	// sin sub en el token no hay a quién listarle keys
	data, err = l.ApiKeys(userCtx("opaque", ""), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Empty(t, data.ApiKeys)
	assert.Contains(t, data.Errors, "api_keys")
}

func TestMembersLoader(t *testing.T) {
	l, _ := demoLoaders(t)
	data, err := l.Members(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	require.Len(t, data.Members, 4)
	assert.Equal(t, dto.RoleOwner, data.Members[0].Role)
	assert.Len(t, data.Roles, 4)
	assert.Equal(t, "Viewer", data.Roles[3].Name)
}

// nilMembers responde una lista nil, como un API que omite el array.
type nilMembers struct{ api.MemberService }

func (nilMembers) GetMembers(context.Context, string) ([]dto.WorkspaceMember, error) {
	return nil, nil
}

func TestMembersLoader_NilListRendersEmptyArray(t *testing.T) {
	demo := newDemo(t)
	p := providerFunc(func(tok string) *api.Backend {
		b := demo.ForToken(tok)
		b.Members = nilMembers{b.Members}
		return b
	})
	data, err := NewLoaders(p, nil, nil).Members(demoCtx(), fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	require.NotNil(t, data.Members)
	assert.Empty(t, data.Members)

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"members":[]`)
}

func TestParseEmailFilters(t *testing.T) {
	cases := []struct {
		name  string
		query string
		check func(t *testing.T, f dto.EmailFilters)
	}{
		{"defaults", "", func(t *testing.T, f dto.EmailFilters) {
			assert.Equal(t, 1, f.PageNumber)
			assert.Equal(t, defaultPageSize, f.PageSize)
			assert.Equal(t, "desc", f.SortOrder)
			assert.Empty(t, f.EmailStatus)
		}},
		{"api key for sort order", "sortOder=asc&pageNumber=3", func(t *testing.T, f dto.EmailFilters) {
			assert.Equal(t, "asc", f.SortOrder)
			assert.Equal(t, 3, f.PageNumber)
		}},
		{"invalid values ignored", "page=-2&pageSize=1000&status=Bounced&sortOrder=up", func(t *testing.T, f dto.EmailFilters) {
			assert.Equal(t, 1, f.PageNumber)
			assert.Equal(t, defaultPageSize, f.PageSize)
			assert.Empty(t, f.EmailStatus)
			assert.Equal(t, "desc", f.SortOrder)
		}},
		{"dates swapped", "startDate=2025-06-10&endDate=2025-06-01", func(t *testing.T, f dto.EmailFilters) {
			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.True(t, f.StartDate.Before(*f.EndDate))
		}},
		{"date-only end covers the day", "endDate=2025-06-10", func(t *testing.T, f dto.EmailFilters) {
			require.NotNil(t, f.EndDate)
			assert.Equal(t, time.Date(2025, 6, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC), *f.EndDate)
		}},
		{"text filters trimmed", "to=+maria%40acme.io+&subject=%20Welcome", func(t *testing.T, f dto.EmailFilters) {
			assert.Equal(t, "maria@acme.io", f.ToEmailContains)
			assert.Equal(t, "Welcome", f.SubjectContains)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			tc.check(t, ParseEmailFilters(q))
		})
	}
}
