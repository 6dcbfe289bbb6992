// Package workspace assembles one store, mutation coordinator and form per
// admin resource on top of a single API client.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/form"
	"github.com/travel-assistant/concierge/internal/mutation"
	"github.com/travel-assistant/concierge/internal/session"
	"github.com/travel-assistant/concierge/internal/state"
)

// Resource names.
const (
	ResourceUsers     = "users"
	ResourceInterests = "interests"
	ResourceEvents    = "events"
	ResourcePlans     = "plans"
	ResourceTerms     = "terms"
)

// adapter is what every adminapi resource adapter offers.
type adapter[T any] interface {
	state.Fetcher[T]
	mutation.Remote[T]
}

// Resource pairs a store with the coordinator that mutates it.
type Resource[T state.Entity[T]] struct {
	Store *state.Store[T]
	Coord *mutation.Coordinator[T]
}

func newResource[T state.Entity[T]](name string, a adapter[T], logger *slog.Logger, timeout time.Duration) Resource[T] {
	store := state.New[T](name, a, state.WithLogger(logger), state.WithFetchTimeout(timeout))
	return Resource[T]{
		Store: store,
		Coord: mutation.New(name, store, a, mutation.WithLogger(logger)),
	}
}

// Refresher is the part of a store the poller needs.
type Refresher interface {
	Name() string
	Refresh(ctx context.Context) error
}

// Options configures New.
type Options struct {
	Logger       *slog.Logger
	FetchTimeout time.Duration
}

// Workspace is the state behind the console and the CLI.
type Workspace struct {
	Client  *adminapi.Client
	Session *session.Manager

	Users     Resource[adminapi.User]
	Interests Resource[adminapi.Interest]
	Events    Resource[adminapi.EventCategory]
	Plans     Resource[adminapi.Plan]
	Terms     Resource[adminapi.TermsSection]

	InterestForm *form.Session[NameDraft]
	EventForm    *form.Session[NameDraft]
	PlanForm     *form.Session[PlanDraft]
	ProfileForm  *form.Session[ProfileDraft]

	log *slog.Logger

	mu         sync.RWMutex
	dashboard  adminapi.Dashboard
	dashAt     time.Time
	dashErr    error
	dashFlight chan struct{}
}

// New builds a workspace. The client should already carry sess as its
// TokenSource.
func New(client *adminapi.Client, sess *session.Manager, opts Options) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Workspace{
		Client:    client,
		Session:   sess,
		Users:     newResource[adminapi.User](ResourceUsers, client.Users(), logger, opts.FetchTimeout),
		Interests: newResource[adminapi.Interest](ResourceInterests, client.Interests(), logger, opts.FetchTimeout),
		Events:    newResource[adminapi.EventCategory](ResourceEvents, client.Events(), logger, opts.FetchTimeout),
		Plans:     newResource[adminapi.Plan](ResourcePlans, client.Plans(), logger, opts.FetchTimeout),
		Terms:     newResource[adminapi.TermsSection](ResourceTerms, client.Terms(), logger, opts.FetchTimeout),
		log:       logger.With("component", "workspace"),
	}

	validator := form.NewValidator()
	w.InterestForm = nameForm(w.Interests, validator, func(i adminapi.Interest, name string) adminapi.Interest {
		i.Name = name
		return i
	})
	w.EventForm = nameForm(w.Events, validator, func(e adminapi.EventCategory, name string) adminapi.EventCategory {
		e.Name = name
		return e
	})
	w.PlanForm = form.NewSession[PlanDraft](form.SubmitFuncs[PlanDraft]{
		CreateFunc: func(ctx context.Context, d PlanDraft) error {
			_, err := w.Plans.Coord.Create(ctx, d.Apply(adminapi.Plan{}))
			return err
		},
		UpdateFunc: func(ctx context.Context, id string, d PlanDraft) error {
			current, ok := w.Plans.Store.Get(id)
			if !ok {
				return fmt.Errorf("plan %s: %w", id, state.ErrNotFound)
			}
			_, err := w.Plans.Coord.Update(ctx, id, d.Apply(current))
			return err
		},
	}, form.WithValidator[PlanDraft](validator), form.WithBlank(func() PlanDraft {
		return PlanDraft{DurationDays: 30}
	}))
	w.ProfileForm = form.NewSession[ProfileDraft](form.SubmitFuncs[ProfileDraft]{
		UpdateFunc: func(ctx context.Context, _ string, d ProfileDraft) error {
			_, err := w.UpdateProfile(ctx, d)
			return err
		},
	}, form.WithValidator[ProfileDraft](validator))
	return w
}

func nameForm[T state.Entity[T]](r Resource[T], v *form.Validator, rename func(T, string) T) *form.Session[NameDraft] {
	return form.NewSession[NameDraft](form.SubmitFuncs[NameDraft]{
		CreateFunc: func(ctx context.Context, d NameDraft) error {
			var zero T
			_, err := r.Coord.Create(ctx, rename(zero, strings.TrimSpace(d.Name)))
			return err
		},
		UpdateFunc: func(ctx context.Context, id string, d NameDraft) error {
			current, ok := r.Store.Get(id)
			if !ok {
				return fmt.Errorf("%s %s: %w", r.Store.Name(), id, state.ErrNotFound)
			}
			_, err := r.Coord.Update(ctx, id, rename(current, strings.TrimSpace(d.Name)))
			return err
		},
	}, form.WithValidator[NameDraft](v))
}

// Refreshers returns every list store in display order.
func (w *Workspace) Refreshers() []Refresher {
	return []Refresher{w.Users.Store, w.Interests.Store, w.Events.Store, w.Plans.Store, w.Terms.Store}
}

// Resource returns the store registered under name.
func (w *Workspace) Resource(name string) (Refresher, bool) {
	for _, r := range w.Refreshers() {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// RefreshAll reloads every store and the dashboard in parallel. All of them
// run to completion; the returned error joins every failure.
func (w *Workspace) RefreshAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	record := func(name string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		mu.Unlock()
	}
	for _, r := range w.Refreshers() {
		g.Go(func() error {
			record(r.Name(), r.Refresh(ctx))
			return nil
		})
	}
	g.Go(func() error {
		record("dashboard", w.RefreshDashboard(ctx))
		return nil
	})
	_ = g.Wait()
	return errors.Join(errs...)
}

// RefreshDashboard reloads the analytics overview. Concurrent calls share one
// load.
func (w *Workspace) RefreshDashboard(ctx context.Context) error {
	w.mu.Lock()
	flight := w.dashFlight
	if flight == nil {
		flight = make(chan struct{})
		w.dashFlight = flight
		go w.loadDashboard(context.WithoutCancel(ctx), flight)
	}
	w.mu.Unlock()

	select {
	case <-flight:
		_, _, err := w.Dashboard()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Workspace) loadDashboard(ctx context.Context, done chan struct{}) {
	d, err := w.Client.Dashboard(ctx)
	w.mu.Lock()
	if err == nil {
		w.dashboard = d
	} else {
		w.log.Warn("dashboard refresh failed", "error", err)
	}
	w.dashErr = err
	w.dashAt = time.Now()
	w.dashFlight = nil
	w.mu.Unlock()
	close(done)
}

// Dashboard returns the last loaded overview, when it was loaded, and the
// error of the latest attempt.
func (w *Workspace) Dashboard() (adminapi.Dashboard, time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dashboard, w.dashAt, w.dashErr
}

// UpdateProfile saves the admin's profile and refreshes the session identity.
func (w *Workspace) UpdateProfile(ctx context.Context, d ProfileDraft) (adminapi.Profile, error) {
	profile, err := w.Client.UpdateProfile(ctx, adminapi.ProfileUpdate{
		FullName:  d.FullName,
		Email:     d.Email,
		ImagePath: d.ImagePath,
	})
	if err != nil {
		return adminapi.Profile{}, err
	}
	if w.Session != nil {
		id, _ := w.Session.Identity()
		id.FullName = orKeep(profile.FullName, strings.TrimSpace(d.FullName))
		id.Email = orKeep(profile.Email, strings.TrimSpace(d.Email))
		id.Image = orKeep(profile.Image, id.Image)
		if err := w.Session.UpdateIdentity(id); err != nil && !errors.Is(err, session.ErrNotAuthenticated) {
			w.log.Warn("persist profile in session", "error", err)
		}
	}
	return profile, nil
}

// OpenProfileForm opens the profile form on the signed-in admin's details.
func (w *Workspace) OpenProfileForm() error {
	if w.Session == nil {
		return session.ErrNotAuthenticated
	}
	id, ok := w.Session.Identity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	w.ProfileForm.OpenEdit(id.ID, ProfileDraft{FullName: id.FullName, Email: id.Email})
	return nil
}

// Login authenticates against the API and establishes the session.
func (w *Workspace) Login(ctx context.Context, email, password string) (adminapi.Admin, error) {
	res, err := w.Client.Login(ctx, email, password)
	if err != nil {
		return adminapi.Admin{}, err
	}
	id := session.Identity{
		ID:       res.Admin.ID,
		FullName: res.Admin.FullName,
		Email:    res.Admin.Email,
		Image:    res.Admin.Image,
	}
	if err := w.Session.Establish(id, res.Access, res.Refresh); err != nil {
		return adminapi.Admin{}, err
	}
	return res.Admin, nil
}

// Close tears down every store; late results are discarded.
func (w *Workspace) Close() {
	w.Users.Store.Close()
	w.Interests.Store.Close()
	w.Events.Store.Close()
	w.Plans.Store.Close()
	w.Terms.Store.Close()
}

func orKeep(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
