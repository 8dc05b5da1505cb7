package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(
		WithNow(func() time.Time { return fixedNow }),
		WithStoreOptions(store.WithBCryptCost(bcrypt.MinCost)),
	)
	require.NoError(t, err)
	return p
}

func TestSeed_IsDeterministic(t *testing.T) {
	a, b := Seed(fixedNow), Seed(fixedNow)
	assert.Equal(t, a, b)

	seen := map[dto.EmailStatus]int{}
	for _, e := range a.Emails {
		seen[e.Status]++
		assert.False(t, e.CreatedAtUtc.After(fixedNow), e.ID)
		if e.Status == dto.StatusSent {
			require.NotNil(t, e.SentAtUtc, e.ID)
		}
	}
	for _, s := range dto.EmailStatuses {
		assert.NotZero(t, seen[s], "status %s sin emails", s)
	}
	assert.Greater(t, seen[dto.StatusSent], len(a.Emails)/2)
}

func TestProvider_ServesSeedAsDemoUser(t *testing.T) {
	p := newTestProvider(t)
	b := p.ForToken("whatever")
	ctx := context.Background()

	wss, err := b.Workspaces.GetUserWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, wss, 2)
	assert.NotNil(t, dto.FindWorkspace(wss, AcmeWorkspaceID))

	page, err := b.Emails.GetEmailsForWorkspace(ctx, AcmeWorkspaceID, dto.EmailFilters{PageNumber: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 48, page.TotalCount)

	cfgs, err := b.Configs.GetEmailConfigurations(ctx, AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, cfgs, 2)

	mems, err := b.Members.GetMembers(ctx, AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, mems, 4)
	assert.Equal(t, dto.RoleOwner, mems[0].Role)

	keys, err := b.ApiKeys.GetApiKeys(ctx, AcmeWorkspaceID, DemoUserID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	an, err := b.Analytics.GetWorkspaceAnalytics(ctx, AcmeWorkspaceID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Marketing", an.WorkspaceName)
}

func TestProvider_ErrorsLookLikeTheAPI(t *testing.T) {
	p := newTestProvider(t)
	b := p.ForToken("")
	ctx := context.Background()

	_, err := b.Emails.GetEmailByIdForWorkspace(ctx, AcmeWorkspaceID, "email_999")
	require.Error(t, err)
	assert.True(t, httpclient.IsNotFound(err))

	_, err = b.Configs.CreateEmailConfiguration(ctx, AcmeWorkspaceID, dto.CreateEmailConfigurationCommand{SmtpPort: 0})
	require.Error(t, err)
	assert.Equal(t, 400, httpclient.StatusCode(err))

	_, err = b.Workspaces.CreateWorkspace(ctx, dto.CreateWorkspaceCommand{Name: "Otra", Domain: "acme.io"})
	require.Error(t, err)
	assert.Equal(t, 409, httpclient.StatusCode(err))
}

func TestProvider_MutationsAreSharedAndResettable(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	require.NoError(t, p.ForToken("a").Configs.DeleteEmailConfiguration(ctx, AcmeWorkspaceID, "cfg_sendgrid"))
	cfgs, err := p.ForToken("b").Configs.GetEmailConfigurations(ctx, AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, cfgs, 1)

	require.NoError(t, p.Reset())
	cfgs, err = p.ForToken("b").Configs.GetEmailConfigurations(ctx, AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, cfgs, 2)
}

func TestDemoAPIKey_Resolves(t *testing.T) {
	p := newTestProvider(t)
	user, ws, err := p.Store().ResolveAPIKey(context.Background(), DemoAPIKey)
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, user)
	assert.Equal(t, AcmeWorkspaceID, ws)
}

func TestPresetByID(t *testing.T) {
	p, ok := PresetByID("SendGrid")
	require.True(t, ok)
	assert.Equal(t, "smtp.sendgrid.net", p.SmtpHost)
	assert.Equal(t, "apikey", p.UsernameHint)

	_, ok = PresetByID("pigeon")
	assert.False(t, ok)

	all := SMTPPresets()
	all[0].SmtpHost = "mutated"
	assert.Equal(t, "smtp.gmail.com", SMTPPresets()[0].SmtpHost)
}
