package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin"
	jwtx "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/jwt"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util"
)

// userID saca el sub del token; las rutas de api keys lo necesitan en el path.
func (c *cli) userID(flag string) (string, error) {
	if strings.TrimSpace(flag) != "" {
		return flag, nil
	}
	if err := c.requireToken(); err != nil {
		return "", err
	}
	cl, err := jwtx.Inspect(c.token)
	if err != nil || cl.Subject == "" {
		return "", errors.New("el token no trae sub; pasá --user")
	}
	return cl.Subject, nil
}

func newAuthCmds(c *cli) []*cobra.Command {
	// login: guarda token (y workspace por defecto) después de validarlo contra el API
	var skipCheck bool
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Guardar token y URL del API en el archivo de credenciales",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}
			if !skipCheck {
				ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
				defer cancel()
				if _, err := c.svc.Workspaces.GetUserWorkspaces(ctx); err != nil {
					return fmt.Errorf("token rechazado: %w", err)
				}
			}
			cr := credentials{BaseURL: c.baseURL, Token: c.token, Workspace: c.workspace, SavedAt: time.Now().UTC()}
			if err := c.saveCredentials(cr); err != nil {
				return err
			}
			c.ok(fmt.Sprintf("credenciales guardadas en %s (token %s)", c.credsPath, util.MaskKey(c.token)))
			return nil
		},
	}
	loginCmd.Flags().BoolVar(&skipCheck, "skip-check", false, "No validar el token contra el API")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Borrar el archivo de credenciales",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.Remove(c.credsPath); err != nil && !os.IsNotExist(err) {
				return err
			}
			c.ok("credenciales borradas")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar sub/iss/exp del token actual (sin verificar firma)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}
			cl, err := jwtx.Inspect(c.token)
			if err != nil {
				return fmt.Errorf("token opaco o inválido: %w", err)
			}
			view := map[string]any{
				"subject": cl.Subject,
				"issuer":  cl.Issuer,
				"expired": cl.Expired(time.Now()),
				"token":   util.MaskKey(c.token),
				"apiUrl":  c.baseURL,
			}
			if !cl.ExpiresAt.IsZero() {
				view["expiresAt"] = cl.ExpiresAt
			}
			c.print(view, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "SUB\t%s\n", cl.Subject)
				fmt.Fprintf(w, "ISS\t%s\n", cl.Issuer)
				fmt.Fprintf(w, "EXP\t%s\n", fmtTime(&cl.ExpiresAt))
				fmt.Fprintf(w, "EXPIRED\t%t\n", cl.Expired(time.Now()))
				fmt.Fprintf(w, "API\t%s\n", c.baseURL)
			})
			return nil
		},
	}

	// dev-token: firma un JWT aceptado por el twin (mismo secreto que TWIN_JWT_SECRET)
	var (
		devSecret = envOr("TWIN_JWT_SECRET", "dev-twin-secret")
		devUser   string
		devTTL    = 24 * time.Hour
		devSave   bool
	)
	devTokenCmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Emitir un JWT de desarrollo para el twin del API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(devUser) == "" {
				return errors.New("--user es requerido")
			}
			tok, exp, err := jwtx.NewIssuer(apitwin.IssuerName, devSecret).Sign(devUser, devTTL, nil)
			if err != nil {
				return err
			}
			if devSave {
				cr := credentials{BaseURL: c.baseURL, Token: tok, Workspace: c.workspace, SavedAt: time.Now().UTC()}
				if err := c.saveCredentials(cr); err != nil {
					return err
				}
			}
			c.print(map[string]any{"token": tok, "userId": devUser, "expiresAt": exp}, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, tok)
			})
			return nil
		},
	}
	devTokenCmd.Flags().StringVar(&devSecret, "secret", devSecret, "Secreto HS256 del twin (env TWIN_JWT_SECRET)")
	devTokenCmd.Flags().StringVar(&devUser, "user", "", "userId (sub) del token")
	devTokenCmd.Flags().DurationVar(&devTTL, "ttl", devTTL, "Vida del token")
	devTokenCmd.Flags().BoolVar(&devSave, "save", false, "Guardar el token en el archivo de credenciales")

	return []*cobra.Command{loginCmd, logoutCmd, whoamiCmd, devTokenCmd}
}
