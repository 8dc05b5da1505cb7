package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/rate"
)

type dashboardHarness struct {
	t     *testing.T
	h     http.Handler
	token string
	demo  *fixtures.Provider
}

func newHarness(t *testing.T, d Deps) *dashboardHarness {
	t.Helper()
	demo := newDemo(t)
	if d.Provider == nil {
		d.Provider = demo
	}
	d.CheckTokenExpiry = true
	tok, _, err := jwtx.NewIssuer("test", "secret").Sign(fixtures.DemoUserID, time.Hour, nil)
	require.NoError(t, err)
	return &dashboardHarness{t: t, h: NewRouter(d), token: tok, demo: demo}
}

func (h *dashboardHarness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		var b []byte
		if s, ok := body.(string); ok {
			b = []byte(s)
		} else {
			var err error
			b, err = json.Marshal(body)
			require.NoError(h.t, err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

type actionBody struct {
	OK          bool              `json:"ok"`
	Message     string            `json:"message"`
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors"`
	RedirectTo  string            `json:"redirectTo"`
	Data        json.RawMessage   `json:"data"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func acme(section ...string) string { return WorkspacePath(fixtures.AcmeWorkspaceID, section...) }

func TestRouter_Auth(t *testing.T) {
	h := newHarness(t, Deps{})

	anon := *h
	anon.token = ""
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, BasePath, nil).Code)

	expired := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub": fixtures.DemoUserID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	old := *h
	old.token = signed
	assert.Equal(t, http.StatusUnauthorized, old.do(http.MethodGet, acme(), nil).Code)

	// el cookie de sesión también sirve
	req := httptest.NewRequest(http.MethodGet, acme(SectionMembers), nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: h.token})
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/healthz", nil).Code)
}

func TestRouter_RootAndRedirects(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodGet, BasePath, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), BasePath+"/ws_"))

	rec = h.do(http.MethodGet, WorkspacePath("ws_other", SectionAnalytics), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/"+SectionAnalytics))
}

func TestRouter_Pages(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodGet, acme(SectionEmails)+"?status=Sent&pageSize=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	emails := decodeBody[EmailsData](t, rec)
	assert.Len(t, emails.Emails.Items, 5)
	assert.Equal(t, fixtures.AcmeWorkspaceID, emails.Workspace.WorkspaceID)

	rec = h.do(http.MethodGet, acme(SectionEmails, "email_missing"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code"`)

	for _, section := range []string{SectionOverview, SectionConfigurations, SectionAnalytics, SectionSettings, SectionAPIKeys, SectionMembers} {
		rec := h.do(http.MethodGet, acme(section), nil)
		assert.Equal(t, http.StatusOK, rec.Code, "%s: %s", section, rec.Body.String())
	}
}

func TestRouter_ConfigurationActions(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, acme(SectionConfigurations), map[string]any{"smtpHost": "", "smtpPort": 70000})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeBody[actionBody](t, rec)
	assert.False(t, res.OK)
	assert.Contains(t, res.FieldErrors, "smtpPort")
	assert.Contains(t, res.FieldErrors, "password")

	rec = h.do(http.MethodPost, acme(SectionConfigurations), map[string]any{
		"smtpHost":    "smtp.example.com",
		"smtpPort":    587,
		"useSsl":      true,
		"username":    "mailer",
		"password":    "s3cret",
		"fromEmail":   "team@acme.io",
		"displayName": "Acme Team",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decodeBody[actionBody](t, rec)
	var cfgs ConfigurationsResult
	require.NoError(t, json.Unmarshal(res.Data, &cfgs))
	assert.Len(t, cfgs.Configurations, 3)
	require.NotEmpty(t, cfgs.ID)

	// update sin password conserva el guardado
	rec = h.do(http.MethodPut, acme(SectionConfigurations, cfgs.ID), map[string]any{
		"smtpHost":    "smtp.example.com",
		"smtpPort":    465,
		"useSsl":      true,
		"username":    "mailer",
		"fromEmail":   "team@acme.io",
		"displayName": "Acme",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, acme(SectionConfigurations, "test-connection"), map[string]any{
		"settings": map[string]any{"smtpHost": "smtp.example.com", "smtpPort": 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, acme(SectionConfigurations, "test-connection"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, acme(SectionConfigurations, "send-test-email"), map[string]any{
		"emailConfigurationId": cfgs.ID,
		"toEmail":              "me@acme.io",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodDelete, acme(SectionConfigurations, cfgs.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[actionBody](t, rec)
	require.NoError(t, json.Unmarshal(res.Data, &cfgs))
	assert.Len(t, cfgs.Configurations, 2)

	rec = h.do(http.MethodPost, acme(SectionConfigurations), "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SendIsRateLimited(t *testing.T) {
	h := newHarness(t, Deps{SendLimiter: rate.NewMemoryLimiter(1, time.Minute)})
	send := map[string]any{
		"emailConfigurationId": "cfg_gmail",
		"toEmail":              []string{"a@example.com, b@example.com"},
		"subject":              "Hello",
		"body":                 "<p>Hi</p>",
		"isHtml":               true,
	}

	rec := h.do(http.MethodPost, acme(SectionEmails, "send"), send)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[actionBody](t, rec).OK)

	rec = h.do(http.MethodPost, acme(SectionEmails, "send"), send)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_SendValidatesBeforeCallingTheAPI(t *testing.T) {
	h := newHarness(t, Deps{})
	rec := h.do(http.MethodPost, acme(SectionEmails, "send"), map[string]any{
		"emailConfigurationId": "cfg_gmail",
		"toEmail":              []string{"not-an-address"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeBody[actionBody](t, rec)
	assert.Contains(t, res.FieldErrors, "toEmail")
	assert.Contains(t, res.FieldErrors, "subject")
}

func TestRouter_ApiKeyActions(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, acme(SectionAPIKeys), map[string]string{"name": "CI"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var keys ApiKeysResult
	require.NoError(t, json.Unmarshal(decodeBody[actionBody](t, rec).Data, &keys))
	require.NotNil(t, keys.Created)
	assert.True(t, strings.HasPrefix(keys.Created.PlainKey, "ek_"))
	assert.Len(t, keys.ApiKeys, 3)

	// la key en claro no vuelve a aparecer en la página
	page := h.do(http.MethodGet, acme(SectionAPIKeys), nil)
	require.Equal(t, http.StatusOK, page.Code)
	assert.NotContains(t, page.Body.String(), keys.Created.PlainKey)

	rec = h.do(http.MethodDelete, acme(SectionAPIKeys, keys.Created.ApiKeyID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodDelete, acme(SectionAPIKeys, "key_missing"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MemberActions(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, acme(SectionMembers), map[string]any{"userId": "", "role": 9})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeBody[actionBody](t, rec)
	assert.Contains(t, res.FieldErrors, "userId")
	assert.Contains(t, res.FieldErrors, "role")

	rec = h.do(http.MethodPut, acme(SectionMembers, "user_lucas", "role"), map[string]any{"role": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ms MembersResult
	require.NoError(t, json.Unmarshal(decodeBody[actionBody](t, rec).Data, &ms))
	for _, m := range ms.Members {
		if m.UserID == "user_lucas" {
			assert.EqualValues(t, 1, m.Role)
		}
	}

	rec = h.do(http.MethodDelete, acme(SectionMembers, "user_sofia"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(decodeBody[actionBody](t, rec).Data, &ms))
	assert.Len(t, ms.Members, 3)
}

func TestRouter_SettingsActions(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPut, acme(SectionSettings), `{"tab":"notifications","settings":{"notifyOnFailure":true,"recipients":["ops@acme.io"],"failureThreshold":20}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, acme(SectionSettings)+"?tab=notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ops@acme.io")

	rec = h.do(http.MethodPut, acme(SectionSettings), `{"tab":"security","settings":{"sessionTimeoutMinutes":1}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[actionBody](t, rec).FieldErrors, "sessionTimeoutMinutes")

	rec = h.do(http.MethodPut, acme(SectionSettings), `{"tab":"smtp-defaults","settings":{"defaultConfigurationId":"cfg_mailgun","maxRetries":1}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, "cfg_mailgun es de otro workspace")

	rec = h.do(http.MethodPut, acme(SectionSettings), `{"tab":"general","settings":{"name":"Acme Mail","domain":"acme.io","isActive":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = h.do(http.MethodGet, acme(SectionSettings), nil)
	assert.Contains(t, rec.Body.String(), "Acme Mail")

	rec = h.do(http.MethodPut, acme(SectionSettings), `{"tab":"billing","settings":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WorkspaceActions(t *testing.T) {
	h := newHarness(t, Deps{})

	rec := h.do(http.MethodPost, BasePath+"/workspaces", map[string]string{"name": "Launch", "domain": "launch.dev"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[actionBody](t, rec)
	require.NotEmpty(t, res.RedirectTo)
	var ws WorkspacesResult
	require.NoError(t, json.Unmarshal(res.Data, &ws))
	assert.Len(t, ws.Workspaces, 3)
	require.NotNil(t, ws.Created)

	// la lista cacheada se invalida: la página ya ve el workspace nuevo
	page := h.do(http.MethodGet, res.RedirectTo, nil)
	require.Equal(t, http.StatusOK, page.Code, page.Body.String())

	rec = h.do(http.MethodPost, WorkspacePath(ws.Created.WorkspaceID, "switch"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodDelete, WorkspacePath(ws.Created.WorkspaceID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decodeBody[actionBody](t, rec)
	assert.True(t, strings.HasPrefix(res.RedirectTo, BasePath+"/ws_"))

	rec = h.do(http.MethodPost, WorkspacePath("ws_nope", "switch"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
