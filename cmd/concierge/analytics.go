package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newAnalyticsCmd(g *globals) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"dashboard"},
		Short:   "Show platform totals, user growth and revenue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if err := ws.RefreshDashboard(cmd.Context()); err != nil {
				return err
			}
			d, _, _ := ws.Dashboard()
			if format == "json" {
				return outputJSON(cmd, d)
			}

			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			fmt.Fprintf(out, "%s %d   %s %d   %s %d   %s %d\n",
				bold.Sprint("Users"), d.Summary.TotalUsers,
				bold.Sprint("Itineraries"), d.Summary.TotalItinerary,
				bold.Sprint("Events"), d.Summary.TotalEvents,
				bold.Sprint("New this year"), d.Growth.TotalThisYear,
			)
			if d.Growth.ReportedOnDate != "" {
				fmt.Fprintln(out, color.HiBlackString("Reported on %s", d.Growth.ReportedOnDate))
			}
			fmt.Fprintln(out)

			t := newTable(cmd)
			t.SetTitle("User growth %d / revenue", d.Growth.Year)
			t.AppendHeader(table.Row{"Month", "Users", "Growth", "Revenue"})
			months := max(len(d.Growth.Monthly), len(d.Revenue))
			total := 0.0
			for i := 0; i < months; i++ {
				var row table.Row
				if i < len(d.Growth.Monthly) {
					p := d.Growth.Monthly[i]
					row = table.Row{p.Month, p.Users, fmt.Sprintf("%.1f%%", p.Percent)}
				} else {
					row = table.Row{d.Revenue[i].Month, "", ""}
				}
				if i < len(d.Revenue) {
					row = append(row, fmt.Sprintf("$%.2f", d.Revenue[i].Amount))
					total += d.Revenue[i].Amount
				} else {
					row = append(row, "")
				}
				t.AppendRow(row)
			}
			t.AppendFooter(table.Row{"Total", d.Growth.GrandTotal, "", fmt.Sprintf("$%.2f", total)})
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight},
				{Number: 3, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
			})
			t.Render()

			if len(d.Summary.Categories) > 0 {
				fmt.Fprintln(out)
				c := newTable(cmd)
				c.AppendHeader(table.Row{"Category", "Events"})
				for _, cat := range d.Summary.Categories {
					c.AppendRow(table.Row{cat.Name, cat.Count})
				}
				c.Render()
			}

			if len(d.RecentUsers) > 0 {
				fmt.Fprintln(out)
				r := newTable(cmd)
				r.SetTitle("Recent users")
				r.AppendHeader(table.Row{"ID", "Name", "Email", "Status"})
				for _, u := range d.RecentUsers {
					r.AppendRow(table.Row{u.ID, u.Name, u.Email, statusText(u.Status)})
				}
				r.Render()
			}
			return nil
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}
