package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(g *globals) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := g.env()
			if err != nil {
				return err
			}
			defer env.Close()

			in := bufio.NewReader(cmd.InOrStdin())
			if strings.TrimSpace(email) == "" {
				if email, err = prompt(cmd, in, "Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, in, passwordStdin)
			if err != nil {
				return err
			}

			admin, err := env.Workspace.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			success(cmd, "Signed in as %s <%s>", admin.FullName, admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Admin email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if fromStdin || !term.IsTerminal(fd) {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := g.env()
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.Session.Clear(); err != nil {
				return err
			}
			success(cmd, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			id, _ := env.Session.Identity()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", id.FullName, id.Email)
			fmt.Fprintf(out, "  id       %s\n", env.Session.CurrentUserID())
			fmt.Fprintf(out, "  api      %s\n", env.Client.BaseURL())
			if exp, ok := env.Session.ExpiresAt(); ok {
				left := time.Until(exp).Round(time.Minute)
				fmt.Fprintf(out, "  expires  %s (%s)\n", exp.Local().Format(time.DateTime), color.CyanString("in %s", left))
			}
			return nil
		},
	}
}
