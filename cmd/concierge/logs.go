package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/config"
	"github.com/travel-assistant/concierge/internal/logtail"
)

func newLogsCmd(g *globals) *cobra.Command {
	var (
		lines int
		level string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the concierge log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			entries, err := logtail.Tail(cfg.LogPath, lines, logtail.ParseLevel(level))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No log entries in %s\n", cfg.LogPath)
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(out, formatEntry(e))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 200, "Number of lines to read from the end of the file")
	cmd.Flags().StringVarP(&level, "level", "l", "info", "Minimum level: debug, info, warn or error")
	return cmd
}

func formatEntry(e logtail.Entry) string {
	if e.Time.IsZero() && e.Message == "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(color.HiBlackString(e.Time.Local().Format(time.DateTime)))
		b.WriteString(" ")
	}
	b.WriteString(levelColor(e.Level).Sprintf("%-5s", e.Level.String()))
	b.WriteString(" ")
	if e.Component != "" {
		b.WriteString(color.CyanString(e.Component))
		b.WriteString(" ")
	}
	b.WriteString(e.Message)
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(color.HiBlackString("%s=%s", a.Key, a.Value))
	}
	return b.String()
}

func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return color.New(color.FgRed, color.Bold)
	case l >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case l >= slog.LevelInfo:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgHiBlack)
	}
}
