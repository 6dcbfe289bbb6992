package main

import (
	"github.com/spf13/cobra"
)

func newProfileCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in admin's profile",
	}
	cmd.AddCommand(newProfileUpdateCmd(g))
	return cmd
}

func newProfileUpdateCmd(g *globals) *cobra.Command {
	var name, email, image string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name, email or avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()

			ws := env.Workspace
			if err := ws.OpenProfileForm(); err != nil {
				return err
			}
			draft := ws.ProfileForm.Draft()
			flags := cmd.Flags()
			if flags.Changed("name") {
				draft.FullName = name
			}
			if flags.Changed("email") {
				draft.Email = email
			}
			if flags.Changed("image") {
				draft.ImagePath = image
			}
			if err := ws.ProfileForm.SetDraft(draft); err != nil {
				return err
			}
			if !ws.ProfileForm.Dirty() {
				ws.ProfileForm.Close()
				success(cmd, "Nothing to change")
				return nil
			}
			if err := ws.ProfileForm.Submit(cmd.Context()); err != nil {
				return err
			}
			id, _ := env.Session.Identity()
			success(cmd, "Profile saved: %s <%s>", id.FullName, id.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&image, "image", "", "Path to a new avatar image")
	cmd.MarkFlagsOneRequired("name", "email", "image")
	return cmd
}
