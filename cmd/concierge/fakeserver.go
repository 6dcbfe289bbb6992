package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/app"
	"github.com/travel-assistant/concierge/internal/fakeapi"
)

func newFakeServerCmd() *cobra.Command {
	var (
		addr     string
		email    string
		password string
		empty    bool
		debug    bool
	)
	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory admin API for demos and development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if debug {
				level = "debug"
			}
			logger := app.NewLogger(os.Stderr, level, "text")
			srv := fakeapi.New(fakeapi.Options{
				Email:    email,
				Password: password,
				Empty:    empty,
				Logger:   logger,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()
			fmt.Fprintf(cmd.ErrOrStderr(), "fake admin API on http://%s (login %s)\n", addr, orDefault(email, fakeapi.DefaultEmail))

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().StringVar(&email, "email", "", "Accepted login email (default "+fakeapi.DefaultEmail+")")
	cmd.Flags().StringVar(&password, "password", "", "Accepted login password (default "+fakeapi.DefaultPassword+")")
	cmd.Flags().BoolVar(&empty, "empty", false, "Start without seed data")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every request")
	return cmd
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
