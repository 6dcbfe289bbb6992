package workspace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/fakeapi"
	"github.com/travel-assistant/concierge/internal/form"
	"github.com/travel-assistant/concierge/internal/mutation"
	"github.com/travel-assistant/concierge/internal/session"
)

func newWorkspace(t *testing.T) (*Workspace, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(fakeapi.Options{})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	sess := session.NewManager(filepath.Join(t.TempDir(), "session.toml"), nil)
	client, err := adminapi.NewClient(adminapi.Options{
		BaseURL:           ts.URL,
		RequestsPerSecond: 1000,
		Burst:             100,
		Tokens:            sess,
		OnUnauthorized:    sess.Invalidate,
	})
	require.NoError(t, err)

	w := New(client, sess, Options{FetchTimeout: 5 * time.Second})
	t.Cleanup(w.Close)
	_, err = w.Login(context.Background(), fakeapi.DefaultEmail, fakeapi.DefaultPassword)
	require.NoError(t, err)
	return w, srv
}

func TestRefreshAll_LoadsEveryResource(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.RefreshAll(context.Background()))

	assert.Len(t, w.Users.Store.Entities(), 7)
	assert.Len(t, w.Interests.Store.Entities(), 5)
	assert.Len(t, w.Events.Store.Entities(), 4)
	assert.Len(t, w.Plans.Store.Entities(), 3)
	assert.Len(t, w.Terms.Store.Entities(), 4)

	d, at, err := w.Dashboard()
	require.NoError(t, err)
	assert.False(t, at.IsZero())
	assert.Len(t, d.RecentUsers, 5)
}

func TestRefreshAll_JoinsFailures(t *testing.T) {
	w, srv := newWorkspace(t)
	srv.FailNext(http.MethodGet, w.Client.Endpoints().Plans, http.StatusInternalServerError, "boom")

	err := w.RefreshAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plans:")
	assert.Len(t, w.Interests.Store.Entities(), 5, "other stores still load")

	snap := w.Plans.Store.Snapshot()
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

func TestResource_LookupByName(t *testing.T) {
	w, _ := newWorkspace(t)
	r, ok := w.Resource(ResourceEvents)
	require.True(t, ok)
	assert.Equal(t, ResourceEvents, r.Name())

	_, ok = w.Resource("bookings")
	assert.False(t, ok)
}

func TestInterestForm_CreateLandsInStore(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Interests.Store.Refresh(ctx))

	w.InterestForm.OpenCreate()
	require.NoError(t, w.InterestForm.SetDraft(NameDraft{Name: "  Wine Tasting "}))
	require.NoError(t, w.InterestForm.Submit(ctx))
	assert.False(t, w.InterestForm.IsOpen())

	var found adminapi.Interest
	for _, i := range w.Interests.Store.Entities() {
		if i.Name == "Wine Tasting" {
			found = i
		}
	}
	require.NotEmpty(t, found.ID)
	assert.False(t, mutation.IsTemp(found.ID))
	assert.Equal(t, "wine-tasting", found.Slug)
}

func TestInterestForm_BlankNameRejected(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Interests.Store.Refresh(ctx))
	before := w.Interests.Store.Version()

	w.InterestForm.OpenCreate()
	require.NoError(t, w.InterestForm.SetDraft(NameDraft{Name: "   "}))
	err := w.InterestForm.Submit(ctx)
	assert.ErrorIs(t, err, form.ErrValidation)
	assert.True(t, w.InterestForm.IsOpen())
	assert.Equal(t, before, w.Interests.Store.Version())
}

func TestInterestForm_ServerRejectionKeepsDraft(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Interests.Store.Refresh(ctx))

	w.InterestForm.OpenCreate()
	require.NoError(t, w.InterestForm.SetDraft(NameDraft{Name: "Hiking"}))
	err := w.InterestForm.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "Interest with this name already exists", adminapi.Message(err))
	assert.Equal(t, "Hiking", w.InterestForm.Draft().Name)
	assert.Len(t, w.Interests.Store.Entities(), 5, "temp row rolled back")
}

func TestEventForm_Rename(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Events.Store.Refresh(ctx))
	target := w.Events.Store.Entities()[1]

	w.EventForm.OpenEdit(target.ID, NameDraft{Name: target.Name})
	require.NoError(t, w.EventForm.SetDraft(NameDraft{Name: "Open Air Festivals"}))
	require.NoError(t, w.EventForm.Submit(ctx))

	got, ok := w.Events.Store.Get(target.ID)
	require.True(t, ok)
	assert.Equal(t, "Open Air Festivals", got.Name)
	assert.Equal(t, target.EventCount, got.EventCount, "count survives a rename")
}

func TestToggle_FailureRollsBack(t *testing.T) {
	w, srv := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Interests.Store.Refresh(ctx))
	target := w.Interests.Store.Entities()[0]
	require.True(t, target.Active)

	srv.FailNext(http.MethodPatch, w.Client.Endpoints().Interests, http.StatusBadGateway, "upstream down")
	_, err := w.Interests.Coord.Toggle(ctx, target.ID)
	require.Error(t, err)

	got, ok := w.Interests.Store.Get(target.ID)
	require.True(t, ok)
	assert.True(t, got.Active)

	_, err = w.Interests.Coord.Toggle(ctx, target.ID)
	require.NoError(t, err)
	got, _ = w.Interests.Store.Get(target.ID)
	assert.False(t, got.Active)
}

func TestPlanForm_EditAndCreate(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()
	require.NoError(t, w.Plans.Store.Refresh(ctx))
	plan := w.Plans.Store.Entities()[0]

	draft := PlanDraftFrom(plan)
	draft.ItineraryLimit = nil
	draft.Features = append(draft.Features, "  ", "Travel insurance")
	w.PlanForm.OpenEdit(plan.ID, draft)
	require.NoError(t, w.PlanForm.SetDraft(draft))
	require.NoError(t, w.PlanForm.Submit(ctx))

	got, ok := w.Plans.Store.Get(plan.ID)
	require.True(t, ok)
	assert.Equal(t, "Unlimited", got.LimitLabel())
	assert.Equal(t, []string{"Trip planner", "Saved places", "Travel insurance"}, got.Features)

	w.PlanForm.OpenCreate()
	blank := w.PlanForm.Draft()
	assert.Equal(t, 30, blank.DurationDays)
	blank.Name = "Backpacker"
	blank.Price = 2
	require.NoError(t, w.PlanForm.SetDraft(blank))
	require.NoError(t, w.PlanForm.Submit(ctx))
	assert.Len(t, w.Plans.Store.Entities(), 4)
}

func TestProfileForm_UpdatesSession(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx := context.Background()

	require.NoError(t, w.OpenProfileForm())
	draft := w.ProfileForm.Draft()
	assert.Equal(t, fakeapi.DefaultEmail, draft.Email)

	draft.FullName = "Operations"
	require.NoError(t, w.ProfileForm.SetDraft(draft))
	require.NoError(t, w.ProfileForm.Submit(ctx))

	id, ok := w.Session.Identity()
	require.True(t, ok)
	assert.Equal(t, "Operations", id.FullName)
	assert.Equal(t, "900", id.ID)
}

func TestRefreshDashboard_CancelledWaiter(t *testing.T) {
	w, _ := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.RefreshDashboard(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	require.Eventually(t, func() bool {
		_, at, _ := w.Dashboard()
		return !at.IsZero()
	}, 2*time.Second, 10*time.Millisecond, "shared load completes for other callers")
}
