package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

func newWorkspacesCmd(c *cli) *cobra.Command {
	wsCmd := &cobra.Command{
		Use:               "workspaces",
		Aliases:           []string{"ws"},
		Short:             "Workspaces del usuario",
		PersistentPreRunE: c.authed,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.svc.Workspaces.GetUserWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			c.print(list, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tDOMAIN\tACTIVE\tCREATED")
				for _, ws := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", ws.WorkspaceID, ws.Name, ws.Domain, ws.IsActive, fmtTime(&ws.CreatedAtUtc))
				}
			})
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [workspaceId]",
		Short: "Ver un workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := c.workspace
			if len(args) == 1 {
				id = args[0]
			}
			if id == "" {
				return errors.New("workspaceId requerido")
			}
			ws, err := c.svc.Workspaces.GetWorkspace(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.print(ws, nil)
			return nil
		},
	}

	var name, domain string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un workspace (muestra la API key inicial una sola vez)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Workspace(name, domain).Err(); err != nil {
				return err
			}
			res, err := c.svc.Workspaces.CreateWorkspace(cmd.Context(), dto.CreateWorkspaceCommand{Name: name, Domain: domain})
			if err != nil {
				return err
			}
			c.print(res, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "ID\t%s\n", res.WorkspaceID)
				fmt.Fprintf(w, "NAME\t%s\n", res.Name)
				fmt.Fprintf(w, "DOMAIN\t%s\n", res.Domain)
				fmt.Fprintf(w, "API KEY\t%s\t(guardala: no se vuelve a mostrar)\n", res.ApiKey)
			})
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Nombre del workspace")
	createCmd.Flags().StringVar(&domain, "domain", "", "Dominio (ej. acme.io)")

	var upName, upDomain string
	var upActive bool
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Actualizar nombre/dominio del workspace actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.ws()
			if err != nil {
				return err
			}
			if err := validation.Workspace(upName, upDomain).Err(); err != nil {
				return err
			}
			cmdUp := dto.UpdateWorkspaceCommand{ID: id, Name: upName, Domain: upDomain, IsActive: upActive}
			if err := c.svc.Workspaces.UpdateWorkspace(cmd.Context(), id, cmdUp); err != nil {
				return err
			}
			c.ok("workspace actualizado")
			return nil
		},
	}
	updateCmd.Flags().StringVar(&upName, "name", "", "Nombre")
	updateCmd.Flags().StringVar(&upDomain, "domain", "", "Dominio")
	updateCmd.Flags().BoolVar(&upActive, "active", true, "Activo")

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Borrar el workspace actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.ws()
			if err != nil {
				return err
			}
			if !yes {
				return errors.New("borrar un workspace es irreversible; confirmá con --yes")
			}
			if err := c.svc.Workspaces.DeleteWorkspace(cmd.Context(), id); err != nil {
				return err
			}
			c.ok("workspace borrado")
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&yes, "yes", false, "Confirmar")

	// use: fija el workspace por defecto en el archivo de credenciales
	useCmd := &cobra.Command{
		Use:   "use <workspaceId>",
		Short: "Fijar el workspace por defecto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.svc.Workspaces.GetUserWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			if dto.FindWorkspace(list, args[0]) == nil {
				return fmt.Errorf("workspace %s no encontrado", args[0])
			}
			cr := credentials{BaseURL: c.baseURL, Token: c.token, Workspace: args[0]}
			if c.creds != nil {
				cr.SavedAt = c.creds.SavedAt
			}
			if err := c.saveCredentials(cr); err != nil {
				return err
			}
			c.ok("workspace por defecto: " + args[0])
			return nil
		},
	}

	wsCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, useCmd)
	return wsCmd
}
