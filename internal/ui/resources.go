package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/mutation"
	"github.com/travel-assistant/concierge/internal/state"
	"github.com/travel-assistant/concierge/internal/workspace"
)

// column describes one table column. Compact columns are dropped on narrow
// terminals. A zero width takes the remaining space.
type column struct {
	title   string
	width   int
	compact bool
}

// row is one rendered entity.
type row struct {
	id      string
	cells   []string
	status  string
	pending string // kind of the in-flight mutation, if any
	temp    bool
}

// syncMeta summarizes a store snapshot for the status line.
type syncMeta struct {
	status   state.Status
	loaded   bool
	updated  time.Time
	err      error
	failures int
	offline  bool
	total    int
}

// listSource is what a list view needs from one resource.
type listSource interface {
	key() string
	title() string
	columns() []column
	rows(f state.Filter) []row
	meta() syncMeta
	statuses() []string
	refresh(ctx context.Context) error
	// setStatusFilter pushes a status filter to the server when the resource
	// filters remotely. It reports whether the query changed.
	setStatusFilter(status string) bool

	canCreate() bool
	canEdit() bool
	canToggle() bool
	canDelete() bool

	toggle(ctx context.Context, id string) error
	remove(ctx context.Context, id string) error
	newForm() *formModal
	editForm(id string) (*formModal, error)
	detail(id string) string
}

// source adapts a workspace resource to listSource.
type source[T state.Entity[T]] struct {
	name    string
	label   string
	res     workspace.Resource[T]
	cols    []column
	cells   func(T) []string
	filters []string
	remote  bool // status filter is applied by the server

	toggleable bool
	deletable  bool
	create     func() *formModal
	edit       func(T) *formModal
	describe   func(T) string
}

func (s *source[T]) key() string        { return s.name }
func (s *source[T]) title() string      { return s.label }
func (s *source[T]) columns() []column  { return s.cols }
func (s *source[T]) statuses() []string { return s.filters }
func (s *source[T]) canCreate() bool    { return s.create != nil }
func (s *source[T]) canEdit() bool      { return s.edit != nil }
func (s *source[T]) canToggle() bool    { return s.toggleable }
func (s *source[T]) canDelete() bool    { return s.deletable }

func (s *source[T]) rows(f state.Filter) []row {
	entities := s.res.Store.Filtered(f)
	out := make([]row, 0, len(entities))
	for _, e := range entities {
		r := row{id: e.Key(), cells: s.cells(e), status: e.StatusKey(), temp: mutation.IsTemp(e.Key())}
		if p, ok := s.res.Coord.Pending(e.Key()); ok {
			r.pending = p.Kind.String()
		}
		out = append(out, r)
	}
	return out
}

func (s *source[T]) meta() syncMeta {
	snap := s.res.Store.Snapshot()
	return syncMeta{
		status:   snap.Status,
		loaded:   snap.Loaded,
		updated:  snap.LastUpdated,
		err:      snap.LastError,
		failures: snap.ConsecutiveFailures,
		offline:  snap.IsOffline(),
		total:    len(snap.Entities),
	}
}

func (s *source[T]) refresh(ctx context.Context) error {
	return s.res.Store.Refresh(ctx)
}

func (s *source[T]) setStatusFilter(status string) bool {
	if !s.remote {
		return false
	}
	if status == state.StatusAll {
		status = ""
	}
	return s.res.Store.SetQuery(state.Query{Status: status})
}

func (s *source[T]) toggle(ctx context.Context, id string) error {
	_, err := s.res.Coord.Toggle(ctx, id)
	return err
}

func (s *source[T]) remove(ctx context.Context, id string) error {
	return s.res.Coord.Delete(ctx, id)
}

func (s *source[T]) newForm() *formModal {
	if s.create == nil {
		return nil
	}
	return s.create()
}

func (s *source[T]) editForm(id string) (*formModal, error) {
	if s.edit == nil {
		return nil, adminapi.ErrUnsupported
	}
	if mutation.IsTemp(id) {
		return nil, fmt.Errorf("%s is still being created", s.label)
	}
	e, ok := s.res.Store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", s.name, id, state.ErrNotFound)
	}
	return s.edit(e), nil
}

func (s *source[T]) detail(id string) string {
	if s.describe == nil {
		return ""
	}
	e, ok := s.res.Store.Get(id)
	if !ok {
		return ""
	}
	return s.describe(e)
}

// newSources builds the list views in tab order.
func newSources(w *workspace.Workspace) []listSource {
	users := &source[adminapi.User]{
		name:  workspace.ResourceUsers,
		label: "Users",
		res:   w.Users,
		cols: []column{
			{title: "ID", width: 6},
			{title: "NAME", width: 24},
			{title: "EMAIL"},
			{title: "STATUS", width: 10},
		},
		cells: func(u adminapi.User) []string {
			return []string{u.ID, u.Name, u.Email, u.Status}
		},
		filters:    []string{state.StatusAll, adminapi.UserNew, adminapi.UserActive, adminapi.UserDeactive},
		remote:     true,
		toggleable: true,
	}

	interests := &source[adminapi.Interest]{
		name:  workspace.ResourceInterests,
		label: "Interests",
		res:   w.Interests,
		cols: []column{
			{title: "ID", width: 6},
			{title: "NAME", width: 24},
			{title: "SLUG"},
			{title: "STATUS", width: 10},
			{title: "UPDATED", width: 12, compact: true},
		},
		cells: func(i adminapi.Interest) []string {
			return []string{i.ID, i.Name, i.Slug, i.StatusKey(), shortDate(i.UpdatedAt)}
		},
		filters:    []string{state.StatusAll, "active", "inactive"},
		toggleable: true,
		deletable:  true,
		create: func() *formModal {
			w.InterestForm.OpenCreate()
			return nameModal("New interest", w.InterestForm)
		},
		edit: func(i adminapi.Interest) *formModal {
			w.InterestForm.OpenEdit(i.ID, workspace.NameDraft{Name: i.Name})
			return nameModal("Rename interest", w.InterestForm)
		},
	}

	events := &source[adminapi.EventCategory]{
		name:  workspace.ResourceEvents,
		label: "Events",
		res:   w.Events,
		cols: []column{
			{title: "ID", width: 6},
			{title: "CATEGORY"},
			{title: "EVENTS", width: 8},
		},
		cells: func(e adminapi.EventCategory) []string {
			return []string{e.ID, e.Name, strconv.Itoa(e.EventCount)}
		},
		deletable: true,
		create: func() *formModal {
			w.EventForm.OpenCreate()
			return nameModal("New event category", w.EventForm)
		},
		edit: func(e adminapi.EventCategory) *formModal {
			w.EventForm.OpenEdit(e.ID, workspace.NameDraft{Name: e.Name})
			return nameModal("Rename event category", w.EventForm)
		},
	}

	plans := &source[adminapi.Plan]{
		name:  workspace.ResourcePlans,
		label: "Plans",
		res:   w.Plans,
		cols: []column{
			{title: "ID", width: 6},
			{title: "PLAN", width: 20},
			{title: "PRICE", width: 10},
			{title: "DAYS", width: 6},
			{title: "LIMIT", width: 10},
			{title: "FEATURES", compact: true},
		},
		cells: func(p adminapi.Plan) []string {
			return []string{
				p.ID,
				p.Name,
				formatPrice(p.Price),
				strconv.Itoa(p.DurationDays),
				p.LimitLabel(),
				strings.Join(p.Features, ", "),
			}
		},
		deletable: true,
		create: func() *formModal {
			w.PlanForm.OpenCreate()
			return planModal("New plan", w.PlanForm)
		},
		edit: func(p adminapi.Plan) *formModal {
			w.PlanForm.OpenEdit(p.ID, workspace.PlanDraftFrom(p))
			return planModal("Edit plan", w.PlanForm)
		},
		describe: func(p adminapi.Plan) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%s · %s for %d days · itineraries: %s\n", p.Name, formatPrice(p.Price), p.DurationDays, p.LimitLabel())
			for _, f := range p.Features {
				fmt.Fprintf(&b, "  • %s\n", f)
			}
			return b.String()
		},
	}

	terms := &source[adminapi.TermsSection]{
		name:  workspace.ResourceTerms,
		label: "Terms",
		res:   w.Terms,
		cols: []column{
			{title: "#", width: 4},
			{title: "SECTION"},
			{title: "UPDATED", width: 12},
		},
		cells: func(t adminapi.TermsSection) []string {
			return []string{t.ID, t.Title, shortDate(t.UpdatedAt)}
		},
		describe: func(t adminapi.TermsSection) string {
			return t.Title + "\n\n" + t.Body
		},
	}

	return []listSource{users, interests, events, plans, terms}
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatPrice(p float64) string {
	if p == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", p)
}
