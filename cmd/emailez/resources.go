package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/util"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

func newAnalyticsCmd(c *cli) *cobra.Command {
	var (
		from        string
		until       string
		granularity string
		recent      int
		view        string
	)
	cmd := &cobra.Command{
		Use:               "analytics",
		Short:             "Métricas del workspace (resumen, breakdown por status o serie de volumen)",
		PersistentPreRunE: c.authed,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			p := &dto.AnalyticsParams{Granularity: granularity, RecentLimit: recent}
			if p.StartDate, err = parseDate(from); err != nil {
				return err
			}
			if p.EndDate, err = parseDate(until); err != nil {
				return err
			}

			switch view {
			case "breakdown":
				bd, err := c.svc.Analytics.GetEmailStatusBreakdown(cmd.Context(), ws, p)
				if err != nil {
					return err
				}
				c.print(bd, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "STATUS\tCOUNT\tPCT")
					for _, sc := range bd {
						fmt.Fprintf(w, "%s\t%d\t%.1f\n", sc.Status, sc.Count, sc.Percentage)
					}
				})
			case "series":
				series, err := c.svc.Analytics.GetVolumeSeries(cmd.Context(), ws, p)
				if err != nil {
					return err
				}
				c.print(series, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "DATE\tTOTAL\tSENT\tFAILED\tQUEUED")
					for _, pt := range series {
						fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", pt.Date.Format("2006-01-02"), pt.Total, pt.Sent, pt.Failed, pt.Queued)
					}
				})
			case "summary":
				res, err := c.svc.Analytics.GetWorkspaceAnalytics(cmd.Context(), ws, p)
				if err != nil {
					return err
				}
				m, e := res.EmailMetrics, res.EngagementMetrics
				c.print(res, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "WORKSPACE\t%s\n", res.WorkspaceName)
					fmt.Fprintf(w, "PERIOD\t%s .. %s\n", res.PeriodStart.Format("2006-01-02"), res.PeriodEnd.Format("2006-01-02"))
					fmt.Fprintf(w, "TOTAL\t%d\n", m.TotalEmails)
					fmt.Fprintf(w, "SENT\t%d\n", m.SentEmails)
					fmt.Fprintf(w, "FAILED\t%d\n", m.FailedEmails)
					fmt.Fprintf(w, "QUEUED\t%d\n", m.QueuedEmails)
					fmt.Fprintf(w, "DELIVERY RATE\t%.1f%%\n", e.DeliveryRate)
					fmt.Fprintf(w, "AVG ATTEMPTS\t%.2f\n", e.AverageAttempts)
					fmt.Fprintf(w, "MEMBERS\t%d\n", res.UserMetrics.TotalMembers)
					fmt.Fprintf(w, "ACTIVE KEYS\t%d\n", res.UserMetrics.ActiveApiKeys)
				})
			default:
				return fmt.Errorf("--view inválido %q (summary|breakdown|series)", view)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Desde (RFC3339 o YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Hasta (RFC3339 o YYYY-MM-DD)")
	cmd.Flags().StringVar(&granularity, "granularity", "", "day|week|month")
	cmd.Flags().IntVar(&recent, "recent", 0, "Cantidad de períodos recientes")
	cmd.Flags().StringVar(&view, "view", "summary", "summary|breakdown|series")
	return cmd
}

func newMembersCmd(c *cli) *cobra.Command {
	membersCmd := &cobra.Command{
		Use:               "members",
		Short:             "Miembros del workspace",
		PersistentPreRunE: c.authed,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar miembros",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			list, err := c.svc.Members.GetMembers(cmd.Context(), ws)
			if err != nil {
				return err
			}
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "USER\tROLE\tSINCE\tDELETED")
				for _, m := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", m.UserID, m.Role, fmtTime(&m.CreatedAt), m.IsDeleted)
				}
			})
			return nil
		},
	}

	// roleArg valida userId + rol igual que el formulario de miembros
	roleArg := func(userID, role string) (dto.MemberRole, error) {
		r, err := dto.ParseMemberRole(role)
		if err != nil {
			return 0, err
		}
		if err := validation.MemberRole(userID, r).Err(); err != nil {
			return 0, err
		}
		return r, nil
	}

	addCmd := &cobra.Command{
		Use:   "add <userId> <role>",
		Short: "Agregar un miembro (Owner|Admin|Member|Viewer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			r, err := roleArg(args[0], args[1])
			if err != nil {
				return err
			}
			res, err := c.svc.Members.AddMember(cmd.Context(), ws, args[0], r)
			if err != nil {
				return err
			}
			c.print(res, nil)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <userId>",
		Short: "Quitar un miembro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			if err := c.svc.Members.RemoveMember(cmd.Context(), ws, args[0]); err != nil {
				return err
			}
			c.ok("miembro quitado")
			return nil
		},
	}

	roleCmd := &cobra.Command{
		Use:   "role <userId> <role>",
		Short: "Cambiar el rol de un miembro",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			r, err := roleArg(args[0], args[1])
			if err != nil {
				return err
			}
			if err := c.svc.Members.UpdateMemberRole(cmd.Context(), ws, args[0], r); err != nil {
				return err
			}
			c.ok(fmt.Sprintf("rol actualizado a %s", r))
			return nil
		},
	}

	membersCmd.AddCommand(listCmd, addCmd, removeCmd, roleCmd)
	return membersCmd
}

func newAPIKeysCmd(c *cli) *cobra.Command {
	var user string
	keysCmd := &cobra.Command{
		Use:               "apikeys",
		Aliases:           []string{"api-keys", "keys"},
		Short:             "API keys del usuario en el workspace",
		PersistentPreRunE: c.authed,
	}
	keysCmd.PersistentFlags().StringVar(&user, "user", "", "userId dueño de las keys (default: sub del token)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar API keys (sin valores)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			uid, err := c.userID(user)
			if err != nil {
				return err
			}
			list, err := c.svc.ApiKeys.GetApiKeys(cmd.Context(), ws, uid)
			if err != nil {
				return err
			}
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tACTIVE\tLAST USED")
				for _, k := range list {
					fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", k.ID, k.Name, k.IsActive, fmtTime(k.LastUsedAt))
				}
			})
			return nil
		},
	}

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear una API key (el valor se muestra una sola vez)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			uid, err := c.userID(user)
			if err != nil {
				return err
			}
			if err := validation.APIKeyName(name).Err(); err != nil {
				return err
			}
			res, err := c.svc.ApiKeys.CreateApiKey(cmd.Context(), ws, uid, name)
			if err != nil {
				return err
			}
			c.print(res, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%s\n", res.ApiKeyID)
				fmt.Fprintf(w, "KEY\t%s\n", res.PlainKey)
				fmt.Fprintf(w, "\t(guardala: no se vuelve a mostrar; prefijo %s)\n", util.MaskKey(res.PlainKey))
			})
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Nombre descriptivo")

	revokeCmd := &cobra.Command{
		Use:   "revoke <apiKeyId>",
		Short: "Revocar una API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.ws()
			if err != nil {
				return err
			}
			uid, err := c.userID(user)
			if err != nil {
				return err
			}
			if err := c.svc.ApiKeys.RevokeApiKey(cmd.Context(), ws, uid, args[0]); err != nil {
				return err
			}
			c.ok("API key revocada")
			return nil
		},
	}

	keysCmd.AddCommand(listCmd, createCmd, revokeCmd)
	return keysCmd
}

// newTenantsCmd expone el recurso legacy de tenants (anterior a workspaces).
func newTenantsCmd(c *cli) *cobra.Command {
	tenantsCmd := &cobra.Command{
		Use:               "tenants",
		Short:             "Recurso legacy de tenants",
		Hidden:            true,
		PersistentPreRunE: c.authed,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.svc.Tenants.GetTenants(cmd.Context())
			if err != nil {
				return err
			}
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tACTIVE")
				for _, t := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", t.TenantID, t.Name, t.Domain, t.IsActive)
				}
			})
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <tenantId>",
		Short: "Ver un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.svc.Tenants.GetTenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.print(t, nil)
			return nil
		},
	}

	var name, domain string
	var active bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Workspace(name, domain).Err(); err != nil {
				return err
			}
			res, err := c.svc.Tenants.CreateTenant(cmd.Context(), dto.CreateTenantCommand{Name: name, Domain: domain})
			if err != nil {
				return err
			}
			c.print(res, nil)
			return nil
		},
	}
	updateCmd := &cobra.Command{
		Use:   "update <tenantId>",
		Short: "Actualizar un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Workspace(name, domain).Err(); err != nil {
				return err
			}
			in := dto.UpdateTenantCommand{TenantID: args[0], Name: name, Domain: domain, IsActive: active}
			if err := c.svc.Tenants.UpdateTenant(cmd.Context(), args[0], in); err != nil {
				return err
			}
			c.ok("tenant actualizado")
			return nil
		},
	}
	for _, sub := range []*cobra.Command{createCmd, updateCmd} {
		sub.Flags().StringVar(&name, "name", "", "Nombre")
		sub.Flags().StringVar(&domain, "domain", "", "Dominio")
	}
	updateCmd.Flags().BoolVar(&active, "active", true, "Activo")

	deleteCmd := &cobra.Command{
		Use:   "delete <tenantId>",
		Short: "Borrar un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.svc.Tenants.DeleteTenant(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.ok("tenant borrado")
			return nil
		},
	}

	tenantsCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return tenantsCmd
}
