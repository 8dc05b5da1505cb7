package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

// echoServer guarda el último request y responde con handler.
func echoServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.Query()
		got.header = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGet_DecodesJSONAndBuildsQuery(t *testing.T) {
	srv, got := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": "Acme"})
	})
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))

	var out struct {
		Name string `json:"name"`
	}
	var nilPage *int
	size := 25
	err := c.Get(context.Background(), "/api/v1/workspaces", &out, &RequestOptions{Params: Params{
		"pageNumber": 2,
		"pageSize":   &size,
		"missing":    nil,
		"nilPtr":     nilPage,
		"isHtml":     true,
		"subject":    "hola mundo & más",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Acme", out.Name)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/v1/workspaces", got.path)
	assert.Equal(t, "2", got.query.Get("pageNumber"))
	assert.Equal(t, "25", got.query.Get("pageSize"))
	assert.Equal(t, "true", got.query.Get("isHtml"))
	assert.Equal(t, "hola mundo & más", got.query.Get("subject"))
	assert.False(t, got.query.Has("missing"))
	assert.False(t, got.query.Has("nilPtr"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Empty(t, got.header.Get("Authorization"))
}

func TestParamsEncode_SkipsNilAndFormatsTime(t *testing.T) {
	var s *string
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	q := Params{"a": nil, "b": s, "start": ts, "tags": []string{"x", "y"}, "ratio": 0.5}.Encode()
	vals, err := url.ParseQuery(q)
	require.NoError(t, err)
	assert.False(t, vals.Has("a"))
	assert.False(t, vals.Has("b"))
	assert.Equal(t, "2024-03-01T12:30:00.000Z", vals.Get("start"))
	assert.Equal(t, []string{"x", "y"}, vals["tags"])
	assert.Equal(t, "0.5", vals.Get("ratio"))
}

func TestBearerPrecedence(t *testing.T) {
	srv, got := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	c.SetTokenGetter(StaticToken("bound"))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/x", nil, nil))
	assert.Equal(t, "Bearer bound", got.header.Get("Authorization"))

	require.NoError(t, c.Get(ContextWithToken(ctx, "from-ctx"), "/x", nil, nil))
	assert.Equal(t, "Bearer from-ctx", got.header.Get("Authorization"))

	require.NoError(t, c.Get(ContextWithToken(ctx, "from-ctx"), "/x", nil, &RequestOptions{Token: "explicit"}))
	assert.Equal(t, "Bearer explicit", got.header.Get("Authorization"))

	c.SetTokenGetter(nil)
	require.NoError(t, c.Get(ctx, "/x", nil, nil))
	assert.Empty(t, got.header.Get("Authorization"))
}

func TestTokenSourceError(t *testing.T) {
	c := New("http://127.0.0.1:0", WithTokenSource(TokenFunc(func(context.Context) (string, error) {
		return "", ErrNoToken
	})))
	err := c.Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestPost_SendsJSONBody(t *testing.T) {
	srv, got := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"isSuccess": true})
	})
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	var out struct {
		IsSuccess bool `json:"isSuccess"`
	}
	err := c.Post(context.Background(), "/api/v1/workspaces", map[string]string{"name": "Acme", "domain": "acme.io"}, &out, nil)
	require.NoError(t, err)
	assert.True(t, out.IsSuccess)
	assert.Equal(t, http.MethodPost, got.method)
	assert.JSONEq(t, `{"name":"Acme","domain":"acme.io"}`, string(got.body))
}

func TestEmptyAndNonJSONBodies(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"204": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
		"text": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("OK"))
		},
		"json-empty": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := echoServer(t, h)
			c := New(srv.URL, WithHTTPClient(srv.Client()))
			out := map[string]any{}
			require.NoError(t, c.Delete(context.Background(), "/api/v1/workspaces/1", &out, nil))
			assert.Empty(t, out)
		})
	}
}

func TestNon2xx_ReturnsHTTPError(t *testing.T) {
	srv, _ := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "nope"})
	})
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	err := c.Get(context.Background(), "/api/v1/workspaces/missing", &struct{}{}, nil)
	require.Error(t, err)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Equal(t, "HTTP 404: Not Found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.Contains(t, string(he.Body), "nope")
}

func TestTimeout_IsDistinguishable(t *testing.T) {
	release := make(chan struct{})
	srv, _ := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c := New(srv.URL, WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))

	err := c.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, StatusCode(err))
}

func TestNetworkError_IsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	err := New(base).Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithHeaders_DropsTokenAndKeepsShared(t *testing.T) {
	srv, got := echoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	base := New(srv.URL, WithHTTPClient(srv.Client()))
	base.SetTokenGetter(StaticToken("user-jwt"))

	keyed := base.WithHeaders(map[string]string{"X-API-KEY": "ek_live_123"})
	require.NoError(t, keyed.Post(context.Background(), "/api/v1/send-email", map[string]string{}, nil, nil))
	assert.Equal(t, "ek_live_123", got.header.Get("X-API-KEY"))
	assert.Empty(t, got.header.Get("Authorization"))

	// el original no se modifica
	require.NoError(t, base.Get(context.Background(), "/x", nil, nil))
	assert.Empty(t, got.header.Get("X-API-KEY"))
	assert.Equal(t, "Bearer user-jwt", got.header.Get("Authorization"))
	assert.Equal(t, base.BaseURL(), keyed.BaseURL())
}

func TestWithToken_IsIndependentCopy(t *testing.T) {
	base := New("https://api.example")
	base.SetTokenGetter(StaticToken("a"))
	scoped := base.WithToken("b")
	base.SetTokenGetter(StaticToken("c"))

	tok, err := scoped.tokenSource.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", tok)
}

func TestURL_AppendsToExistingQuery(t *testing.T) {
	c := New("https://api.example/")
	assert.Equal(t, "https://api.example/a?x=1&y=2", c.URL("/a?x=1", Params{"y": 2}))
	assert.Equal(t, "https://api.example/a", c.URL("/a", nil))
}

func TestHTTPError_Message(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message":"Domain already taken"}`, "Domain already taken"},
		{`{"title":"One or more validation errors occurred.","status":400}`, "One or more validation errors occurred."},
		{`{"code":"X"}`, ""},
		{`plain failure`, "plain failure"},
		{``, ""},
	}
	for _, tc := range cases {
		he := &HTTPError{StatusCode: 400, Body: []byte(tc.body)}
		assert.Equal(t, tc.want, he.Message(), tc.body)
	}
}

func TestHTTPError_FieldErrors(t *testing.T) {
	he := &HTTPError{StatusCode: 400, Body: []byte(`{"errors":{"SmtpPort":["Port must be between 1 and 65535","x"],"fromEmail":"Please enter a valid email address"}}`)}
	assert.Equal(t, map[string]string{
		"smtpPort":  "Port must be between 1 and 65535",
		"fromEmail": "Please enter a valid email address",
	}, he.FieldErrors())

	assert.Nil(t, (&HTTPError{Body: []byte(`{"message":"x"}`)}).FieldErrors())
	assert.Nil(t, (&HTTPError{Body: []byte(`oops`)}).FieldErrors())
}
