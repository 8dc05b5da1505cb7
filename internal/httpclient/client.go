// Package httpclient es el único punto de acceso HTTP al API de Email EZ:
// base URL, headers por defecto, query params, timeout y bearer token.
//
// No hay reintentos ni backoff: cada error llega al caller (loader, acción o CLI),
// que decide si mostrarlo, degradar a datos vacíos o redirigir.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/config"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/metrics"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
)

// DefaultTimeout es el timeout por request si no se configura otro.
const DefaultTimeout = 30 * time.Second

// maxErrorBody acota lo que se guarda del body de una respuesta no-2xx.
const maxErrorBody = 64 << 10

// Client es seguro para uso concurrente. Las copias (WithToken, WithHeaders,
// Clone) comparten transporte pero no estado mutable.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu          sync.RWMutex
	headers     map[string]string
	tokenSource TokenSource
}

// Option configura un Client en New.
type Option func(*Client)

// WithHTTPClient reemplaza el *http.Client (tests usan httptest.Server.Client()).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout cambia el timeout por defecto.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDefaultHeaders agrega headers enviados en todos los requests.
func WithDefaultHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithTokenSource fija el TokenSource inicial.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// New crea un cliente. baseURL vacío usa config.DefaultAPIBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = config.DefaultAPIBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		headers: map[string]string{"Content-Type": "application/json"},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL devuelve la base sin "/" final.
func (c *Client) BaseURL() string { return c.baseURL }

// SetHeader fija un header por defecto.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	c.headers[key] = value
	c.mu.Unlock()
}

// DeleteHeader quita un header por defecto.
func (c *Client) DeleteHeader(key string) {
	c.mu.Lock()
	delete(c.headers, key)
	c.mu.Unlock()
}

// SetTokenGetter reemplaza el TokenSource de este cliente. nil = sin token.
func (c *Client) SetTokenGetter(ts TokenSource) {
	c.mu.Lock()
	c.tokenSource = ts
	c.mu.Unlock()
}

// Clone devuelve una copia independiente (mismo transporte, mismos headers y token).
func (c *Client) Clone() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked(c.headers, c.tokenSource)
}

// WithToken devuelve una copia atada a un token fijo, pensada para vivir lo
// que dura un request del dashboard o una sesión del CLI.
func (c *Client) WithToken(token string) *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked(c.headers, StaticToken(token))
}

// WithHeaders devuelve un cliente nuevo con la misma base y transporte, headers
// por defecto combinados y SIN TokenSource: los requests con API key no deben
// llevar bearer.
func (c *Client) WithHeaders(h map[string]string) *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	merged := make(map[string]string, len(c.headers)+len(h))
	for k, v := range c.headers {
		merged[k] = v
	}
	for k, v := range h {
		merged[k] = v
	}
	return c.copyLocked(merged, nil)
}

func (c *Client) copyLocked(headers map[string]string, ts TokenSource) *Client {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return &Client{
		baseURL:     c.baseURL,
		http:        c.http,
		timeout:     c.timeout,
		headers:     h,
		tokenSource: ts,
	}
}

// RequestOptions son las opciones por llamada. Todos los campos son opcionales.
type RequestOptions struct {
	Params  Params
	Token   string // tiene prioridad sobre el contexto y el TokenSource
	Headers map[string]string
	Timeout time.Duration
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, opts *RequestOptions) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, out, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts *RequestOptions) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, out, opts)
}

// URL arma la URL completa: base + endpoint + query (params nil se omiten).
func (c *Client) URL(endpoint string, params Params) string {
	u := c.baseURL + endpoint
	if q := params.Encode(); q != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + q
	}
	return u
}

// Do ejecuta el request. body nil = sin body; out nil = se descarta la respuesta.
// Una respuesta sin Content-Type JSON (o vacía, p.ej. 204) deja out en su zero value.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any, opts *RequestOptions) error {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrTimeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s %s: %w", method, endpoint, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint, opts.Params), rdr)
	if err != nil {
		return fmt.Errorf("httpclient: build %s %s: %w", method, endpoint, err)
	}

	token, err := c.headersInto(ctx, req, opts)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := logger.From(ctx).With(logger.Component("httpclient"), logger.Method(method), logger.Endpoint(endpoint))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPICall(method, endpoint, 0, time.Since(start))
		if errors.Is(context.Cause(ctx), ErrTimeout) {
			log.Debug("api request timed out", logger.DurationMs(time.Since(start)))
			return fmt.Errorf("httpclient: %s %s: %w after %s", method, endpoint, ErrTimeout, timeout)
		}
		log.Debug("api request failed", logger.Err(err))
		return fmt.Errorf("httpclient: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	metrics.ObserveAPICall(method, endpoint, resp.StatusCode, time.Since(start))
	log.Debug("api request completed", logger.Status(resp.StatusCode), logger.DurationMs(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newHTTPError(resp, method, endpoint, b)
	}

	if out == nil || !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(context.Cause(ctx), ErrTimeout) {
			return fmt.Errorf("httpclient: %s %s: %w after %s", method, endpoint, ErrTimeout, timeout)
		}
		return fmt.Errorf("httpclient: read %s %s: %w", method, endpoint, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

// headersInto copia headers por defecto y por llamada, y resuelve el token
// (opts.Token > contexto > TokenSource).
func (c *Client) headersInto(ctx context.Context, req *http.Request, opts *RequestOptions) (string, error) {
	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	ts := c.tokenSource
	c.mu.RUnlock()

	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if opts.Token != "" {
		return opts.Token, nil
	}
	if t := TokenFromContext(ctx); t != "" {
		return t, nil
	}
	if ts == nil {
		return "", nil
	}
	t, err := ts.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("httpclient: token source: %w", err)
	}
	return t, nil
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}
