package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/state"
)

func newTermsCmd(g *globals) *cobra.Command {
	var (
		filter state.Filter
		format string
	)
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Show the published terms and conditions",
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

			sections, err := load(cmd.Context(), env.Workspace.Terms, filter)
			if err != nil {
				return err
			}
			if format == "json" {
				return outputJSON(cmd, sections)
			}
			out := cmd.OutOrStdout()
			if len(sections) == 0 {
				fmt.Fprintln(out, "No terms published")
				return nil
			}
			title := color.New(color.Bold, color.FgCyan)
			for i, s := range sections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s  %s\n", title.Sprintf("%s. %s", s.ID, s.Title), color.HiBlackString(dateOrDash(s.UpdatedAt)))
				fmt.Fprintln(out, s.Body)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Text, "search", "s", "", "Only sections mentioning this text")
	addFormatFlag(cmd, &format)
	return cmd
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}
