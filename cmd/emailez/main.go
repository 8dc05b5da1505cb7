package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/config"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util/atomicwrite"
)

var version = "dev"

// credentials es lo que guarda "emailez login".
type credentials struct {
	BaseURL   string    `json:"baseUrl"`
	Token     string    `json:"token"`
	Workspace string    `json:"workspace,omitempty"`
	SavedAt   time.Time `json:"savedAt"`
}

// cli junta flags globales y el cliente armado después del parseo.
type cli struct {
	baseURL   string
	token     string
	workspace string
	out       string // "json" | "text"
	timeout   time.Duration
	credsPath string

	creds *credentials
	svc   *api.Services
	w     io.Writer
}

func credentialsPath() string {
	if p := os.Getenv("EMAILEZ_CREDENTIALS"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".emailez-credentials.json"
	}
	return filepath.Join(dir, "emailez", "credentials.json")
}

// loadCredentials: archivo inexistente no es error.
func (c *cli) loadCredentials() error {
	var cr credentials
	err := atomicwrite.ReadJSON(c.credsPath, &cr)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	c.creds = &cr
	return nil
}

func (c *cli) saveCredentials(cr credentials) error {
	if err := os.MkdirAll(filepath.Dir(c.credsPath), 0o700); err != nil {
		return err
	}
	return atomicwrite.WriteJSON(c.credsPath, cr, 0o600)
}

// init resuelve base/token/workspace: flag > env > credenciales guardadas.
func (c *cli) init() error {
	if err := c.loadCredentials(); err != nil {
		return fmt.Errorf("credenciales: %w", err)
	}
	if c.creds != nil {
		if c.baseURL == "" {
			c.baseURL = c.creds.BaseURL
		}
		if c.token == "" {
			c.token = c.creds.Token
		}
		if c.workspace == "" {
			c.workspace = c.creds.Workspace
		}
	}
	if c.baseURL == "" {
		c.baseURL = config.DefaultAPIBaseURL
	}
	switch c.out {
	case "json", "text":
	default:
		return fmt.Errorf("--out inválido %q (json|text)", c.out)
	}

	base := httpclient.New(c.baseURL,
		httpclient.WithTimeout(c.timeout),
		httpclient.WithDefaultHeaders(map[string]string{"User-Agent": "emailez-cli/" + version}),
	)
	logger.S().Debugw("cliente API listo", "base_url", c.baseURL, "workspace", c.workspace, "token", c.token != "")
	if c.token != "" {
		base.SetTokenGetter(httpclient.StaticToken(c.token))
	}
	c.svc = api.NewServices(base)
	return nil
}

func (c *cli) requireToken() error {
	if c.token == "" {
		return errors.New("falta token (flag --token, env EMAILEZ_TOKEN o 'emailez login')")
	}
	return nil
}

// authed es el PersistentPreRunE de los grupos que hablan con el API.
func (c *cli) authed(cmd *cobra.Command, args []string) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.requireToken()
}

// ws devuelve el workspace del flag o de las credenciales.
func (c *cli) ws() (string, error) {
	if strings.TrimSpace(c.workspace) == "" {
		return "", errors.New("--workspace es requerido")
	}
	return c.workspace, nil
}

// print emite v como JSON indentado o, en modo text, con table.
func (c *cli) print(v any, table func(w *tabwriter.Writer)) {
	if c.out == "json" || table == nil {
		b, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(c.w, string(b))
		return
	}
	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	table(tw)
	_ = tw.Flush()
}

func (c *cli) ok(msg string) {
	if c.out == "json" {
		c.print(map[string]any{"ok": true, "message": msg}, nil)
		return
	}
	fmt.Fprintln(c.w, msg)
}

// describe agrega el mensaje del API y los errores por campo a un HTTPError.
func describe(err error) error {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	msg := err.Error()
	if m := he.Message(); m != "" {
		msg += " - " + m
	}
	for field, e := range he.FieldErrors() {
		msg += fmt.Sprintf("\n  %s: %s", field, e)
	}
	return errors.New(msg)
}

func fmtTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// newCLI toma los defaults del entorno.
func newCLI() *cli {
	return &cli{
		baseURL:   os.Getenv("EMAILEZ_API_BASE_URL"),
		token:     os.Getenv("EMAILEZ_TOKEN"),
		workspace: os.Getenv("EMAILEZ_WORKSPACE"),
		out:       envOr("EMAILEZ_OUT", "text"),
		timeout:   httpclient.DefaultTimeout,
		credsPath: credentialsPath(),
		w:         os.Stdout,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "emailez",
		Short:         "CLI para el API de Email EZ (workspaces, configuraciones, emails, analytics)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	root.PersistentFlags().StringVar(&c.baseURL, "api-url", c.baseURL, "URL base del API (env EMAILEZ_API_BASE_URL)")
	root.PersistentFlags().StringVar(&c.token, "token", c.token, "Bearer token (env EMAILEZ_TOKEN)")
	root.PersistentFlags().StringVarP(&c.workspace, "workspace", "w", c.workspace, "ID del workspace (env EMAILEZ_WORKSPACE)")
	root.PersistentFlags().StringVar(&c.out, "out", c.out, "Formato de salida: json|text")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", c.timeout, "Timeout por request")
	root.PersistentFlags().StringVar(&c.credsPath, "credentials", c.credsPath, "Archivo de credenciales (env EMAILEZ_CREDENTIALS)")

	root.AddCommand(newAuthCmds(c)...)
	root.AddCommand(
		newWorkspacesCmd(c),
		newConfigsCmd(c),
		newEmailsCmd(c),
		newAnalyticsCmd(c),
		newMembersCmd(c),
		newAPIKeysCmd(c),
		newTenantsCmd(c),
	)
	return root
}

func main() {
	logger.Init(logger.ConfigFromEnv("emailez-cli"))
	defer func() { _ = logger.Sync() }()

	if err := newRootCmd(newCLI()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describe(err).Error())
		os.Exit(1)
	}
}
