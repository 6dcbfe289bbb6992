package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/travel-assistant/concierge/internal/form"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

// load refreshes r and returns the entities that pass f.
func load[T state.Entity[T]](ctx context.Context, r workspace.Resource[T], f state.Filter) ([]T, error) {
	if err := r.Store.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", r.Store.Name(), err)
	}
	return r.Store.Filtered(f), nil
}

// lookup refreshes r and returns the entity with the given id.
func lookup[T state.Entity[T]](ctx context.Context, r workspace.Resource[T], id string) (T, error) {
	var zero T
	if err := r.Store.Refresh(ctx); err != nil {
		return zero, fmt.Errorf("load %s: %w", r.Store.Name(), err)
	}
	e, ok := r.Store.Get(id)
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", strings.TrimSuffix(r.Store.Name(), "s"), id, state.ErrNotFound)
	}
	return e, nil
}

// submitName runs a name form in create mode, or edit mode when id is set.
func submitName(ctx context.Context, s *form.Session[workspace.NameDraft], id, name string) error {
	if id == "" {
		s.OpenCreate()
	} else {
		s.OpenEdit(id, workspace.NameDraft{Name: name})
	}
	if err := s.SetDraft(workspace.NameDraft{Name: name}); err != nil {
		return err
	}
	return s.Submit(ctx)
}

// findByName returns the id of the first entity whose name matches.
func findByName[T state.Entity[T]](r workspace.Resource[T], name string, nameOf func(T) string) string {
	name = strings.TrimSpace(name)
	for _, e := range r.Store.Entities() {
		if strings.EqualFold(nameOf(e), name) {
			return e.Key()
		}
	}
	return ""
}

// deleteCmd builds a confirmed delete for one resource.
func deleteCmd[T state.Entity[T]](g *globals, noun string, pick func(*workspace.Workspace) workspace.Resource[T]) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.signedIn()
			if err != nil {
				return err
			}
			defer env.Close()
			r := pick(env.Workspace)

			if _, err := lookup(cmd.Context(), r, args[0]); err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete %s %s?", noun, args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled")
					return nil
				}
			}
			if err := r.Coord.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd, "Deleted %s %s", noun, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func listFlags(cmd *cobra.Command, f *state.Filter, format *string, statuses string) {
	if statuses != "" {
		cmd.Flags().StringVar(&f.Status, "status", state.StatusAll, "Status filter: "+statuses)
	}
	cmd.Flags().StringVarP(&f.Text, "search", "s", "", "Case-insensitive text filter")
	addFormatFlag(cmd, format)
}

func renderRows(cmd *cobra.Command, header table.Row, rows []table.Row) {
	t := newTable(cmd)
	t.AppendHeader(header)
	t.AppendRows(rows)
	if len(rows) == 0 {
		t.AppendFooter(table.Row{"no results"})
	}
	t.Render()
}
