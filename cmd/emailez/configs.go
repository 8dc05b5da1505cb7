package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/fixtures"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/smtpcheck"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// smtpFlags son los campos del formulario de configuración.
type smtpFlags struct {
	preset   string
	host     string
	port     int
	ssl      bool
	username string
	password string
	from     string
	display  string
}

func (f *smtpFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Proveedor conocido (gmail, outlook, ...) para host/puerto/SSL")
	cmd.Flags().StringVar(&f.host, "host", "", "Host SMTP")
	cmd.Flags().IntVar(&f.port, "port", 0, "Puerto SMTP")
	cmd.Flags().BoolVar(&f.ssl, "ssl", false, "Usar SSL/TLS")
	cmd.Flags().StringVar(&f.username, "username", "", "Usuario SMTP")
	cmd.Flags().StringVar(&f.password, "password", os.Getenv("EMAILEZ_SMTP_PASSWORD"), "Password SMTP (env EMAILEZ_SMTP_PASSWORD)")
	cmd.Flags().StringVar(&f.from, "from", "", "Email remitente")
	cmd.Flags().StringVar(&f.display, "display-name", "", "Nombre visible")
}

// applyPreset completa host/puerto/SSL que no vinieron por flag.
func (f *smtpFlags) applyPreset(cmd *cobra.Command) error {
	if f.preset == "" {
		return nil
	}
	p, ok := fixtures.PresetByID(f.preset)
	if !ok {
		return fmt.Errorf("preset desconocido %q", f.preset)
	}
	if !cmd.Flags().Changed("host") {
		f.host = p.SmtpHost
	}
	if !cmd.Flags().Changed("port") {
		f.port = p.SmtpPort
	}
	if !cmd.Flags().Changed("ssl") {
		f.ssl = p.UseSsl
	}
	return nil
}

func (f *smtpFlags) settings() smtpcheck.Settings {
	return smtpcheck.Settings{
		Host:        f.host,
		Port:        f.port,
		UseSsl:      f.ssl,
		Username:    f.username,
		Password:    f.password,
		FromEmail:   f.from,
		DisplayName: f.display,
	}
}

func newConfigsCmd(c *cli) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:               "configs",
		Aliases:           []string{"configurations"},
		Short:             "Configuraciones SMTP del workspace",
		PersistentPreRunE: c.authed,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar configuraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			list, err := c.svc.Configs.GetEmailConfigurations(cmd.Context(), ws)
			if err != nil {
				return err
			}
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tFROM\tHOST\tPORT\tSSL\tCREATED")
				for _, cf := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\n",
						cf.EmailConfigurationID, util.MaskEmail(cf.FromEmail), cf.SmtpHost, cf.SmtpPort, cf.UseSsl, fmtTime(&cf.CreatedAtUtc))
				}
			})
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <configId>",
		Short: "Ver una configuración",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			cf, err := c.svc.Configs.GetEmailConfiguration(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			c.print(cf, nil)
			return nil
		},
	}

	var cf smtpFlags
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear una configuración",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			if err := cf.applyPreset(cmd); err != nil {
				return err
			}
			in := dto.CreateEmailConfigurationCommand{
				WorkspaceID: ws,
				SmtpHost:    cf.host,
				SmtpPort:    cf.port,
				UseSsl:      cf.ssl,
				Username:    cf.username,
				Password:    cf.password,
				FromEmail:   cf.from,
				DisplayName: cf.display,
			}
			if err := validation.CreateEmailConfiguration(in).Err(); err != nil {
				return err
			}
			res, err := c.svc.Configs.CreateEmailConfiguration(cmd.Context(), ws, in)
			if err != nil {
				return err
			}
			c.print(res, nil)
			return nil
		},
	}
	cf.bind(createCmd)

	var uf smtpFlags
	updateCmd := &cobra.Command{
		Use:   "update <configId>",
		Short: "Actualizar una configuración (sin --password se mantiene la actual)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			if err := uf.applyPreset(cmd); err != nil {
				return err
			}
			in := dto.UpdateEmailConfigurationCommand{
				EmailConfigurationID: args[0],
				WorkspaceID:          ws,
				SmtpHost:             uf.host,
				SmtpPort:             uf.port,
				UseSsl:               uf.ssl,
				Username:             uf.username,
				Password:             uf.password,
				FromEmail:            uf.from,
				DisplayName:          uf.display,
			}
			if err := validation.UpdateEmailConfiguration(in).Err(); err != nil {
				return err
			}
			if err := c.svc.Configs.UpdateEmailConfiguration(cmd.Context(), ws, args[0], in); err != nil {
				return err
			}
			c.ok("configuración actualizada")
			return nil
		},
	}
	uf.bind(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <configId>",
		Short: "Borrar una configuración",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			if err := c.svc.Configs.DeleteEmailConfiguration(cmd.Context(), ws, args[0]); err != nil {
				return err
			}
			c.ok("configuración borrada")
			return nil
		},
	}

	// test: prueba SMTP desde esta máquina; con un id toma host/puerto/usuario del API
	var (
		tf       smtpFlags
		sendTo   string
		insecure bool
		tTimeout = smtpcheck.DefaultTimeout
	)
	testCmd := &cobra.Command{
		Use:   "test [configId]",
		Short: "Probar conexión SMTP (y opcionalmente enviar un email de prueba)",
		Args:  cobra.MaximumNArgs(1),
		// no requiere token si los datos vienen por flag
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(); err != nil {
				return err
			}
			if len(args) == 1 {
				return c.requireToken()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tf.applyPreset(cmd); err != nil {
				return err
			}
			s := tf.settings()
			if len(args) == 1 {
				ws, err := c.ws()
				if err != nil {
					return err
				}
				stored, err := c.svc.Configs.GetEmailConfiguration(cmd.Context(), ws, args[0])
				if err != nil {
					return err
				}
				s = smtpcheck.FromConfiguration(*stored, tf.password)
			}
			if s.Password == "" {
				return errors.New("--password requerido: el API no devuelve el password guardado")
			}
			s.InsecureSkipVerify = insecure

			ctx, cancel := context.WithTimeout(cmd.Context(), tTimeout+5*time.Second)
			defer cancel()
			p := smtpcheck.New(tTimeout)
			var res smtpcheck.Result
			if sendTo != "" {
				res = p.SendTest(ctx, s, sendTo)
			} else {
				res = p.Probe(ctx, s)
			}
			c.print(res, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "OK\t%t\n", res.OK)
				if res.Code != "" {
					fmt.Fprintf(w, "CODE\t%s\n", res.Code)
				}
				fmt.Fprintf(w, "MESSAGE\t%s\n", res.Message)
				fmt.Fprintf(w, "DURATION\t%dms\n", res.DurationMs)
			})
			if !res.OK {
				return fmt.Errorf("prueba SMTP fallida (%s)", res.Code)
			}
			return nil
		},
	}
	tf.bind(testCmd)
	testCmd.Flags().StringVar(&sendTo, "send-to", "", "Enviar un email de prueba a esta dirección")
	testCmd.Flags().BoolVar(&insecure, "insecure", false, "Aceptar certificados no verificables (solo dev)")
	testCmd.Flags().DurationVar(&tTimeout, "smtp-timeout", tTimeout, "Timeout de dial+handshake+auth")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Listar proveedores SMTP conocidos",
		// no habla con el API
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			list := fixtures.SMTPPresets()
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tHOST\tPORT\tSSL")
				for _, p := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\n", p.ID, p.Name, p.SmtpHost, p.SmtpPort, p.UseSsl)
				}
			})
			return nil
		},
	}

	cfgCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, testCmd, presetsCmd)
	return cfgCmd
}
