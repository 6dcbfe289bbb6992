package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

func newEventsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Manage event categories",
	}
	cmd.AddCommand(
		newEventsListCmd(g),
		newEventsAddCmd(g),
		newEventsRenameCmd(g),
		deleteCmd(g, "event category", func(w *workspace.Workspace) workspace.Resource[adminapi.EventCategory] { return w.Events }),
	)
	return cmd
}

func newEventsListCmd(g *globals) *cobra.Command {
	var (
		filter state.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List event categories with their event counts",
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

			list, err := load(cmd.Context(), env.Workspace.Events, filter)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, list)
			}
			rows := make([]table.Row, 0, len(list))
			total := 0
			for _, e := range list {
				rows = append(rows, table.Row{e.ID, e.Name, e.EventCount})
				total += e.EventCount
			}
			t := newTable(cmd)
			t.AppendHeader(table.Row{"ID", "Category", "Events"})
			t.AppendRows(rows)
			t.AppendFooter(table.Row{"", "Total", total})
			t.Render()
			return nil
		},
	}
	listFlags(cmd, &filter, &format, "")
	return cmd
}

func newEventsAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create an event category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if err := submitName(cmd.Context(), ws.EventForm, "", args[0]); err != nil {
				return err
			}
			id := findByName(ws.Events, args[0], func(e adminapi.EventCategory) string { return e.Name })
			success(cmd, "Created event category %s (id %s)", args[0], id)
			return nil
		},
	}
}

func newEventsRenameCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an event category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if _, err := lookup(cmd.Context(), ws.Events, args[0]); err != nil {
				return err
			}
			if err := submitName(cmd.Context(), ws.EventForm, args[0], args[1]); err != nil {
				return err
			}
			success(cmd, "Renamed event category %s to %s", args[0], args[1])
			return nil
		},
	}
}
