package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// parseDate acepta RFC3339 o YYYY-MM-DD. "" = sin filtro.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q (RFC3339 o YYYY-MM-DD)", s)
	}
	return &t, nil
}

// messageFlags son los campos comunes de send y send-with-key.
type messageFlags struct {
	to       string
	cc       string
	bcc      string
	subject  string
	body     string
	bodyFile string
	html     bool
	display  string
	configID string
}

func (m *messageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.to, "to", "", "Destinatarios separados por coma")
	cmd.Flags().StringVar(&m.cc, "cc", "", "CC separados por coma")
	cmd.Flags().StringVar(&m.bcc, "bcc", "", "BCC separados por coma")
	cmd.Flags().StringVar(&m.subject, "subject", "", "Asunto")
	cmd.Flags().StringVar(&m.body, "body", "", "Cuerpo")
	cmd.Flags().StringVar(&m.bodyFile, "body-file", "", "Leer el cuerpo de un archivo ('-' = stdin)")
	cmd.Flags().BoolVar(&m.html, "html", false, "El cuerpo es HTML")
	cmd.Flags().StringVar(&m.display, "display-name", "", "Nombre visible del remitente")
	cmd.Flags().StringVar(&m.configID, "config", "", "ID de la configuración SMTP")
}

func (m *messageFlags) readBody() (string, error) {
	switch m.bodyFile {
	case "":
		return m.body, nil
	case "-":
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	default:
		b, err := os.ReadFile(m.bodyFile)
		return string(b), err
	}
}

func newEmailsCmd(c *cli) *cobra.Command {
	emailsCmd := &cobra.Command{
		Use:               "emails",
		Short:             "Emails del workspace (listado, detalle, envío)",
		PersistentPreRunE: c.authed,
	}

	var (
		page       int
		size       int
		sortOrder  string
		status     string
		toContains string
		subjContns string
		from       string
		until      string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar emails con filtros y paginación",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			f := dto.EmailFilters{
				PageNumber:      page,
				PageSize:        size,
				SortOrder:       sortOrder,
				ToEmailContains: toContains,
				SubjectContains: subjContns,
			}
			if status != "" {
				st, err := dto.ParseEmailStatus(status)
				if err != nil {
					return err
				}
				f.EmailStatus = st
			}
			if f.StartDate, err = parseDate(from); err != nil {
				return err
			}
			if f.EndDate, err = parseDate(until); err != nil {
				return err
			}
			res, err := c.svc.Emails.GetEmailsForWorkspace(cmd.Context(), ws, f)
			if err != nil {
				return err
			}
			c.print(res, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tSTATUS\tTO\tSUBJECT\tATTEMPTS\tCREATED")
				for _, e := range res.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						e.ID, e.Status, strings.Join(e.ToEmail, ","), e.Subject, e.AttemptCount, fmtTime(&e.CreatedAtUtc))
				}
				fmt.Fprintf(w, "\npágina %d/%d (%d emails)\n", res.PageNumber, res.TotalPages, res.TotalCount)
			})
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Número de página (1-based)")
	listCmd.Flags().IntVar(&size, "page-size", 10, "Tamaño de página")
	listCmd.Flags().StringVar(&sortOrder, "sort", "desc", "Orden por fecha: asc|desc")
	listCmd.Flags().StringVar(&status, "status", "", "Queued|Sending|Sent|Failed|Cancelled")
	listCmd.Flags().StringVar(&toContains, "to", "", "Destinatario contiene")
	listCmd.Flags().StringVar(&subjContns, "subject", "", "Asunto contiene")
	listCmd.Flags().StringVar(&from, "from", "", "Desde (RFC3339 o YYYY-MM-DD)")
	listCmd.Flags().StringVar(&until, "until", "", "Hasta (RFC3339 o YYYY-MM-DD)")

	getCmd := &cobra.Command{
		Use:   "get <emailId>",
		Short: "Ver el detalle de un email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			e, err := c.svc.Emails.GetEmailByIdForWorkspace(cmd.Context(), ws, args[0])
			if err != nil {
				return err
			}
			c.print(e, nil)
			return nil
		},
	}

	var sf messageFlags
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Encolar un email con la sesión del usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			body, err := sf.readBody()
			if err != nil {
				return err
			}
			in := dto.SendEmailCommand{
				WorkspaceID:          ws,
				EmailConfigurationID: sf.configID,
				ToEmail:              validation.SplitAddresses(sf.to),
				Subject:              sf.subject,
				Body:                 body,
				IsHtml:               sf.html,
				FromDisplayName:      sf.display,
				CcEmail:              validation.SplitAddresses(sf.cc),
				BccEmail:             validation.SplitAddresses(sf.bcc),
			}
			if err := validation.SendEmail(in).Err(); err != nil {
				return err
			}
			if err := c.svc.Emails.SendEmail(cmd.Context(), ws, in); err != nil {
				return err
			}
			c.ok(fmt.Sprintf("email encolado para %d destinatario(s)", len(in.ToEmail)))
			return nil
		},
	}
	sf.bind(sendCmd)

	// send-with-key: integración server-to-server, sin sesión de usuario
	var (
		kf     messageFlags
		apiKey = os.Getenv("EMAILEZ_API_KEY")
	)
	sendKeyCmd := &cobra.Command{
		Use:   "send-with-key",
		Short: "Encolar un email autenticando con una API key (X-API-KEY)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(apiKey) == "" {
				return errors.New("--api-key requerido (env EMAILEZ_API_KEY)")
			}
			body, err := kf.readBody()
			if err != nil {
				return err
			}
			in := dto.SendEmailWithApiKeyCommand{
				EmailConfigurationID: kf.configID,
				ToEmail:              validation.SplitAddresses(kf.to),
				Subject:              kf.subject,
				Body:                 body,
				IsHtml:               kf.html,
				FromDisplayName:      kf.display,
				CcEmail:              validation.SplitAddresses(kf.cc),
				BccEmail:             validation.SplitAddresses(kf.bcc),
			}
			if err := validation.SendEmailWithApiKey(in).Err(); err != nil {
				return err
			}
			if err := c.svc.Emails.SendEmailWithApiKey(cmd.Context(), in, apiKey); err != nil {
				return err
			}
			c.ok(fmt.Sprintf("email encolado con la key %s", util.MaskKey(apiKey)))
			return nil
		},
	}
	kf.bind(sendKeyCmd)
	sendKeyCmd.Flags().StringVar(&apiKey, "api-key", apiKey, "API key del workspace (env EMAILEZ_API_KEY)")

	emailsCmd.AddCommand(listCmd, getCmd, sendCmd, sendKeyCmd)
	return emailsCmd
}
