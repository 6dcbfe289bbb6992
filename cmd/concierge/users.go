package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/state"
)

func newUsersCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and activate platform accounts",
	}
	cmd.AddCommand(newUsersListCmd(g), newUsersToggleCmd(g))
	return cmd
}

func newUsersListCmd(g *globals) *cobra.Command {
	var (
		filter state.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			users := env.Workspace.Users
			if filter.Status != state.StatusAll {
				users.Store.SetQuery(state.Query{Status: filter.Status})
			}
			list, err := load(cmd.Context(), users, filter)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, list)
			}
			rows := make([]table.Row, 0, len(list))
			for _, u := range list {
				rows = append(rows, table.Row{u.ID, u.Name, u.Email, statusText(u.Status)})
			}
			renderRows(cmd, table.Row{"ID", "Name", "Email", "Status"}, rows)
			return nil
		},
	}
	listFlags(cmd, &filter, &format, "all, new, active, deactive")
	return cmd
}

func newUsersToggleCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			users := env.Workspace.Users
			if _, err := lookup(cmd.Context(), users, args[0]); err != nil {
				return err
			}
			u, err := users.Coord.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			verb := "Activated"
			if u.Status != adminapi.UserActive {
				verb = "Deactivated"
			}
			success(cmd, "%s %s <%s>", verb, u.Name, u.Email)
			return nil
		},
	}
}
