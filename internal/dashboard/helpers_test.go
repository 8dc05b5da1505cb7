package dashboard

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	mw "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/middlewares"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newDemo(t *testing.T) *fixtures.Provider {
	t.Helper()
	p, err := fixtures.NewProvider(
		fixtures.WithNow(func() time.Time { return fixedNow }),
		fixtures.WithStoreOptions(store.WithBCryptCost(bcrypt.MinCost)),
	)
	require.NoError(t, err)
	return p
}

// userCtx simula lo que deja RequireToken en el contexto.
func userCtx(token, userID string) context.Context {
	ctx := httpclient.ContextWithToken(context.Background(), token)
	if userID != "" {
		ctx = mw.WithUserID(ctx, userID)
	}
	return ctx
}

func demoCtx() context.Context { return userCtx("demo-token", fixtures.DemoUserID) }

// providerFunc adapta una función a api.Provider.
type providerFunc func(token string) *api.Backend

func (f providerFunc) ForToken(token string) *api.Backend { return f(token) }

// fakeWorkspaces responde una lista fija (o un error) y cuenta llamadas.
type fakeWorkspaces struct {
	list  []dto.Workspace
	err   error
	calls atomic.Int32
}

func (f *fakeWorkspaces) GetUserWorkspaces(context.Context) ([]dto.Workspace, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return append([]dto.Workspace(nil), f.list...), nil
}

func (f *fakeWorkspaces) CreateWorkspace(_ context.Context, cmd dto.CreateWorkspaceCommand) (*dto.CreateWorkspaceResponse, error) {
	w := dto.Workspace{WorkspaceID: "ws_new", Name: cmd.Name, Domain: cmd.Domain, IsActive: true}
	f.list = append(f.list, w)
	return &dto.CreateWorkspaceResponse{WorkspaceID: w.WorkspaceID, Name: w.Name, Domain: w.Domain, ApiKey: "ek_first", IsSuccess: true}, nil
}

func (f *fakeWorkspaces) UpdateWorkspace(context.Context, string, dto.UpdateWorkspaceCommand) error {
	return nil
}

func (f *fakeWorkspaces) DeleteWorkspace(_ context.Context, id string) error {
	out := f.list[:0]
	for _, w := range f.list {
		if w.WorkspaceID != id {
			out = append(out, w)
		}
	}
	f.list = out
	return nil
}

// failingConfigs falla todas las operaciones con err.
type failingConfigs struct{ err error }

func (f failingConfigs) GetEmailConfigurations(context.Context, string) ([]dto.EmailConfiguration, error) {
	return nil, f.err
}

func (f failingConfigs) GetEmailConfiguration(context.Context, string, string) (*dto.EmailConfiguration, error) {
	return nil, f.err
}

func (f failingConfigs) CreateEmailConfiguration(context.Context, string, dto.CreateEmailConfigurationCommand) (*dto.CreateEmailConfigurationResponse, error) {
	return nil, f.err
}

func (f failingConfigs) UpdateEmailConfiguration(context.Context, string, string, dto.UpdateEmailConfigurationCommand) error {
	return f.err
}

func (f failingConfigs) DeleteEmailConfiguration(context.Context, string, string) error {
	return f.err
}

func apiErr(status int) error {
	return &httpclient.HTTPError{
		StatusCode: status,
		StatusText: http.StatusText(status),
		Method:     http.MethodGet,
		Endpoint:   "/api/v1/workspaces",
	}
}
