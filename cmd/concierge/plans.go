package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

func newPlansCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "Manage subscription plans",
	}
	cmd.AddCommand(
		newPlansListCmd(g),
		newPlanSaveCmd(g, false),
		newPlanSaveCmd(g, true),
		deleteCmd(g, "plan", func(w *workspace.Workspace) workspace.Resource[adminapi.Plan] { return w.Plans }),
	)
	return cmd
}

func newPlansListCmd(g *globals) *cobra.Command {
	var (
		filter state.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans",
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

			list, err := load(cmd.Context(), env.Workspace.Plans, filter)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, list)
			}
			rows := make([]table.Row, 0, len(list))
			for _, p := range list {
				rows = append(rows, table.Row{
					p.ID,
					p.Name,
					priceLabel(p.Price),
					p.DurationDays,
					p.LimitLabel(),
					strings.Join(p.Features, "\n"),
				})
			}
			renderRows(cmd, table.Row{"ID", "Plan", "Price", "Days", "Itineraries", "Features"}, rows)
			return nil
		},
	}
	listFlags(cmd, &filter, &format, "")
	return cmd
}

// newPlanSaveCmd builds "add" or, with edit set, "edit <id>". Edit only
// changes the fields whose flags were given.
func newPlanSaveCmd(g *globals, edit bool) *cobra.Command {
	var (
		name      string
		price     float64
		days      int
		limit     int
		unlimited bool
		features  []string
	)

	use, short, args := "add", "Create a plan", cobra.NoArgs
	if edit {
		use, short, args = "edit <id>", "Edit a plan", cobra.ExactArgs(1)
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()
			ws := env.Workspace
			flags := cmd.Flags()

			var draft workspace.PlanDraft
			if edit {
				current, err := lookup(cmd.Context(), ws.Plans, args[0])
				if err != nil {
					return err
				}
				draft = workspace.PlanDraftFrom(current)
				ws.PlanForm.OpenEdit(args[0], draft)
			} else {
				ws.PlanForm.OpenCreate()
				draft = ws.PlanForm.Draft()
			}

			if flags.Changed("name") {
				draft.Name = name
			}
			if flags.Changed("price") {
				draft.Price = price
			}
			if flags.Changed("days") {
				draft.DurationDays = days
			}
			switch {
			case unlimited:
				draft.ItineraryLimit = nil
			case flags.Changed("limit"):
				draft.ItineraryLimit = &limit
			}
			if flags.Changed("feature") {
				draft.Features = features
			}

			if err := ws.PlanForm.SetDraft(draft); err != nil {
				return err
			}
			if err := ws.PlanForm.Submit(cmd.Context()); err != nil {
				return err
			}
			if edit {
				success(cmd, "Updated plan %s", args[0])
			} else {
				id := findByName(ws.Plans, draft.Name, func(p adminapi.Plan) string { return p.Name })
				success(cmd, "Created plan %s (id %s)", strings.TrimSpace(draft.Name), id)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Plan name")
	flags.Float64Var(&price, "price", 0, "Price, 0 for free")
	flags.IntVar(&days, "days", 30, "Duration in days")
	flags.IntVar(&limit, "limit", 0, "Itinerary limit")
	flags.BoolVar(&unlimited, "unlimited", false, "Remove the itinerary limit")
	flags.StringArrayVar(&features, "feature", nil, "Feature line (repeat, up to 10)")
	cmd.MarkFlagsMutuallyExclusive("limit", "unlimited")
	if !edit {
		_ = cmd.MarkFlagRequired("name")
	}
	return cmd
}

func priceLabel(p float64) string {
	if p == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p)
}
