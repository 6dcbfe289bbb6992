package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

func newInterestsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interests",
		Aliases: []string{"interest"},
		Short:   "Manage the travel interests users can pick",
	}
	cmd.AddCommand(
		newInterestsListCmd(g),
		newInterestsAddCmd(g),
		newInterestsRenameCmd(g),
		newInterestsToggleCmd(g),
		deleteCmd(g, "interest", func(w *workspace.Workspace) workspace.Resource[adminapi.Interest] { return w.Interests }),
	)
	return cmd
}

func interestName(i adminapi.Interest) string { return i.Name }

func newInterestsListCmd(g *globals) *cobra.Command {
	var (
		filter state.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List interests",
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

			list, err := load(cmd.Context(), env.Workspace.Interests, filter)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, list)
			}
			rows := make([]table.Row, 0, len(list))
			for _, i := range list {
				rows = append(rows, table.Row{i.ID, i.Name, i.Slug, statusText(i.StatusKey()), dateOrDash(i.UpdatedAt)})
			}
			renderRows(cmd, table.Row{"ID", "Name", "Slug", "Status", "Updated"}, rows)
			return nil
		},
	}
	listFlags(cmd, &filter, &format, "all, active, inactive")
	return cmd
}

func newInterestsAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if err := submitName(cmd.Context(), ws.InterestForm, "", args[0]); err != nil {
				return err
			}
			success(cmd, "Created interest %s (id %s)", args[0], findByName(ws.Interests, args[0], interestName))
			return nil
		},
	}
}

func newInterestsRenameCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an interest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if _, err := lookup(cmd.Context(), ws.Interests, args[0]); err != nil {
				return err
			}
			if err := submitName(cmd.Context(), ws.InterestForm, args[0], args[1]); err != nil {
				return err
			}
			success(cmd, "Renamed interest %s to %s", args[0], args[1])
			return nil
		},
	}
}

func newInterestsToggleCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate an interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			r := env.Workspace.Interests
			if _, err := lookup(cmd.Context(), r, args[0]); err != nil {
				return err
			}
			i, err := r.Coord.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			success(cmd, "%s is now %s", i.Name, statusText(i.StatusKey()))
			return nil
		},
	}
}
