package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/app"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	baseURL    string
	verbose    bool
}

func (g *globals) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		BaseURL:    g.baseURL,
		LogStderr:  g.verbose,
	}
}

// env builds the workspace for a one-shot command.
func (g *globals) env() (*app.Env, error) {
	return app.Setup(g.options())
}

// signedIn builds the workspace and fails when there is no session.
func (g *globals) signedIn() (*app.Env, error) {
	env, err := g.env()
	if err != nil {
		return nil, err
	}
	if !env.Session.Authenticated() {
		env.Close()
		return nil, app.ErrNotSignedIn
	}
	return env, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	var poll time.Duration

	root := &cobra.Command{
		Use:           "concierge",
		Short:         "Admin console for the travel assistant platform",
		Long:          "concierge manages users, interests, event categories, subscription plans and terms from the terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := g.options()
			opts.PollEvery = poll
			return app.Run(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/concierge/config.toml)")
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "Override the admin API base URL")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log to stderr instead of the log file")
	root.Flags().DurationVar(&poll, "poll", 0, "Background refresh interval (default from config)")

	root.AddCommand(
		newLoginCmd(g),
		newLogoutCmd(g),
		newWhoamiCmd(g),
		newUsersCmd(g),
		newInterestsCmd(g),
		newEventsCmd(g),
		newPlansCmd(g),
		newTermsCmd(g),
		newAnalyticsCmd(g),
		newProfileCmd(g),
		newLogsCmd(g),
		newFakeServerCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nrun '%s --help' for usage", err, cmd.CommandPath())
	})
	return root
}

// describeError prefers the server's message and adds a hint for an
// expired session.
func describeError(err error) string {
	msg := adminapi.Message(err)
	if errors.Is(err, adminapi.ErrUnauthorized) {
		msg += " (session expired: run `concierge login`)"
	}
	return msg
}
