package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
)

const testSecret = "cli-secret"

// newTwinServer levanta el twin con los datos demo.
func newTwinServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.New(store.WithBCryptCost(bcrypt.MinCost))
	require.NoError(t, st.Load(fixtures.Seed(time.Now().UTC())))
	srv := httptest.NewServer(apitwin.NewRouter(apitwin.Deps{
		Store:  st,
		Issuer: jwtx.NewIssuer(apitwin.IssuerName, testSecret),
	}))
	t.Cleanup(srv.Close)
	return srv
}

// run ejecuta el CLI con args y devuelve stdout.
func run(t *testing.T, credsPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := &cli{out: "text", timeout: 5 * time.Second, credsPath: credsPath, w: &out}
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func devToken(t *testing.T) string {
	t.Helper()
	tok, _, err := jwtx.NewIssuer(apitwin.IssuerName, testSecret).Sign(fixtures.DemoUserID, time.Hour, nil)
	require.NoError(t, err)
	return tok
}

func TestLoginThenWorkspacesFromCredentials(t *testing.T) {
	srv := newTwinServer(t)
	creds := filepath.Join(t.TempDir(), "emailez", "credentials.json")

	out, err := run(t, creds, "login", "--api-url", srv.URL, "--token", devToken(t), "-w", fixtures.AcmeWorkspaceID)
	require.NoError(t, err)
	assert.Contains(t, out, "credenciales guardadas")

	// sin flags: base, token y workspace salen del archivo
	out, err = run(t, creds, "workspaces", "list")
	require.NoError(t, err)
	assert.Contains(t, out, fixtures.AcmeWorkspaceID)

	out, err = run(t, creds, "--out", "json", "configs", "list")
	require.NoError(t, err)
	var cfgs []dto.EmailConfiguration
	require.NoError(t, json.Unmarshal([]byte(out), &cfgs))
	assert.NotEmpty(t, cfgs)

	_, err = run(t, creds, "logout")
	require.NoError(t, err)
	_, err = run(t, creds, "workspaces", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "falta token")
}

func TestLoginRejectsBadToken(t *testing.T) {
	srv := newTwinServer(t)
	creds := filepath.Join(t.TempDir(), "creds.json")
	_, err := run(t, creds, "login", "--api-url", srv.URL, "--token", "not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, 401, httpclient.StatusCode(err))
}

func TestEmailsSendValidatesLocally(t *testing.T) {
	srv := newTwinServer(t)
	creds := filepath.Join(t.TempDir(), "creds.json")
	_, err := run(t, creds, "--api-url", srv.URL, "--token", devToken(t), "-w", fixtures.AcmeWorkspaceID,
		"emails", "send", "--to", "not-an-email", "--subject", "hola", "--body", "x")
	require.Error(t, err)
	assert.Zero(t, httpclient.StatusCode(err), "no debe llegar al API")
}

func TestSendWithKey(t *testing.T) {
	srv := newTwinServer(t)
	creds := filepath.Join(t.TempDir(), "creds.json")
	out, err := run(t, creds, "--api-url", srv.URL, "emails", "send-with-key",
		"--api-key", fixtures.DemoAPIKey, "--to", "ana@example.com", "--subject", "hola", "--body", "cuerpo")
	require.NoError(t, err)
	assert.Contains(t, out, "ek_")
	assert.NotContains(t, out, fixtures.DemoAPIKey)
}

func TestDevTokenIsAcceptedByTwin(t *testing.T) {
	srv := newTwinServer(t)
	creds := filepath.Join(t.TempDir(), "creds.json")
	_, err := run(t, creds, "--api-url", srv.URL, "dev-token", "--secret", testSecret, "--user", fixtures.DemoUserID, "--save")
	require.NoError(t, err)

	out, err := run(t, creds, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, fixtures.DemoUserID)
	assert.Contains(t, out, apitwin.IssuerName)

	out, err = run(t, creds, "-w", fixtures.AcmeWorkspaceID, "apikeys", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ACTIVE")
}

func TestConfigsTestNeedsPassword(t *testing.T) {
	creds := filepath.Join(t.TempDir(), "creds.json")
	_, err := run(t, creds, "configs", "test", "--preset", "gmail", "--username", "a@b.io", "--from", "a@b.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *d)

	_, err = parseDate("01/05/2024")
	require.Error(t, err)
}

func TestDescribeAddsAPIMessage(t *testing.T) {
	he := &httpclient.HTTPError{
		StatusCode: 400,
		StatusText: "Bad Request",
		Body:       []byte(`{"title":"Invalid","errors":{"smtpPort":["Port must be between 1 and 65535"]}}`),
	}
	msg := describe(he).Error()
	assert.Contains(t, msg, "HTTP 400")
	assert.Contains(t, msg, "Invalid")
	assert.Contains(t, msg, "smtpPort: Port must be between 1 and 65535")

	plain := errors.New("boom")
	assert.Equal(t, plain, describe(plain))
}
