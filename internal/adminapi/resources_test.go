package adminapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-assistant/concierge/internal/state"
)

type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

// recorder serves canned bodies per "METHOD path" and records requests.
type recorder struct {
	mu        sync.Mutex
	requests  []recorded
	responses map[string]string
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	rec.mu.Lock()
	rec.requests = append(rec.requests, recorded{Method: r.Method, Path: r.URL.Path, Body: body})
	resp, ok := rec.responses[r.Method+" "+r.URL.Path]
	rec.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(resp))
}

func (rec *recorder) last() recorded {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.requests[len(rec.requests)-1]
}

func TestUsers_ListUsesServerFilter(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.Users:  `{"status": "ok", "total_user": 2, "data": [{"user_id": 1, "full_name": "Ann", "email": "ann@x.io", "status": "Activate"}, {"user_id": 2, "full_name": "", "email": "bob@x.io", "status": "New"}]}`,
		"POST " + ep.Users: `{"status": "ok", "data": [{"user_id": 1, "full_name": "Ann", "email": "ann@x.io", "status": "Activate"}]}`,
	}}
	client := newTestClient(t, rec, Options{})

	all, err := client.Users().List(context.Background(), state.Query{})
	require.NoError(t, err)
	assert.Equal(t, []User{
		{ID: "1", Name: "Ann", Email: "ann@x.io", Status: UserActive},
		{ID: "2", Name: "bob", Email: "bob@x.io", Status: UserNew},
	}, all)
	assert.Equal(t, http.MethodGet, rec.last().Method)

	active, err := client.Users().List(context.Background(), state.Query{Status: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, http.MethodPost, rec.last().Method)
	assert.Equal(t, "Activate", rec.last().Body["filter"])
}

func TestUsers_Toggle(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{"POST " + ep.UserToggle: `{"status": "ok", "message": "User deactivated"}`}}
	client := newTestClient(t, rec, Options{})

	next := User{ID: "9", Name: "Ann", Status: UserDeactive}
	got, err := client.Users().Toggle(context.Background(), "9", next)
	require.NoError(t, err)
	assert.Equal(t, next, got)
	assert.Equal(t, "deactivate", rec.last().Body["type"])
	assert.Equal(t, float64(9), rec.last().Body["user_id"])

	_, err = client.Users().Create(context.Background(), User{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, client.Users().Remove(context.Background(), "9"), ErrUnsupported)
}

func TestInterests_CRUD(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.Interests:    `{"status": "ok", "data": [{"id": 7, "name": "Beach", "slug": "beach", "status": false, "created_at": "2025-01-02T03:04:05Z"}]}`,
		"POST " + ep.Interests:   `{"status": "ok", "data": {"id": 42, "name": "Food", "slug": "food", "status": true}}`,
		"PATCH " + ep.Interests:  `{"status": "ok", "data": {"id": 7, "name": "Beach", "slug": "beach", "status": true}}`,
		"DELETE " + ep.Interests: `{"status": "ok"}`,
	}}
	client := newTestClient(t, rec, Options{})
	ctx := context.Background()

	list, err := client.Interests().List(ctx, state.Query{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "7", list[0].ID)
	assert.False(t, list[0].Active)
	assert.Equal(t, 2025, list[0].CreatedAt.Year())

	created, err := client.Interests().Create(ctx, Interest{Name: "  Food "})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, "Food", rec.last().Body["name"])

	toggled, err := client.Interests().Toggle(ctx, "7", list[0].Toggled())
	require.NoError(t, err)
	assert.True(t, toggled.Active)
	assert.Equal(t, "True", rec.last().Body["status"])
	assert.Equal(t, "7", rec.last().Body["id"])

	_, err = client.Interests().Update(ctx, "7", Interest{Name: "Beaches"})
	require.NoError(t, err)
	assert.Equal(t, "Beaches", rec.last().Body["name"])
	assert.NotContains(t, rec.last().Body, "status")

	require.NoError(t, client.Interests().Remove(ctx, "7"))
	assert.Equal(t, http.MethodDelete, rec.last().Method)
	assert.Equal(t, "7", rec.last().Body["id"], "interest ids travel as strings")
}

func TestInterests_CreateWithoutRecordReturnsEmptyID(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{"POST " + ep.Interests: `{"status": "created"}`}}
	client := newTestClient(t, rec, Options{})

	created, err := client.Interests().Create(context.Background(), Interest{Name: "Food"})
	require.NoError(t, err)
	assert.Empty(t, created.ID)
}

func TestEvents_ListMergesSummaryCounts(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.Events:       `[{"event_id": 1, "event_name": "Concerts"}, {"id": 2, "name": "Festivals"}, {"id": 3, "name": ""}]`,
		"GET " + ep.EventSummary: `{"total_users": 10, "total_itinerary": 4, "total_events": 9, "category_event_summary": [{"name": "concerts", "event_count": 6}, {"name": "Festivals", "event_count": 3}]}`,
	}}
	client := newTestClient(t, rec, Options{})

	got, err := client.Events().List(context.Background(), state.Query{})
	require.NoError(t, err)
	assert.Equal(t, []EventCategory{
		{ID: "1", Name: "Concerts", EventCount: 6},
		{ID: "2", Name: "Festivals", EventCount: 3},
		{ID: "3", Name: "Untitled"},
	}, got)
}

func TestEvents_ListSurvivesSummaryFailure(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.Events: `{"data": [{"event_id": 1, "event_name": "Concerts"}]}`,
	}}
	client := newTestClient(t, rec, Options{})

	got, err := client.Events().List(context.Background(), state.Query{})
	require.NoError(t, err)
	assert.Equal(t, []EventCategory{{ID: "1", Name: "Concerts"}}, got)
}

func TestEvents_MutationPayloads(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"POST " + ep.Events:   `{"data": {"event_id": 5, "event_name": "Markets"}}`,
		"PATCH " + ep.Events:  `{"message": "updated"}`,
		"DELETE " + ep.Events: `{}`,
	}}
	client := newTestClient(t, rec, Options{})
	ctx := context.Background()

	created, err := client.Events().Create(ctx, EventCategory{Name: "Markets"})
	require.NoError(t, err)
	assert.Equal(t, EventCategory{ID: "5", Name: "Markets"}, created)
	assert.Equal(t, "Markets", rec.last().Body["event_name"])

	updated, err := client.Events().Update(ctx, "5", EventCategory{Name: "Night Markets"})
	require.NoError(t, err)
	assert.Empty(t, updated.ID)
	assert.Equal(t, float64(5), rec.last().Body["event_id"])

	require.NoError(t, client.Events().Remove(ctx, "5"))
	assert.Equal(t, float64(5), rec.last().Body["event_id"])
}

func TestPlans_CreateAndUpdate(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"POST " + ep.Plans:  `{"status": "ok", "payment": {"id": 11, "plan_name": "Pro", "price": "19.00", "duration": 30, "itinerary_limit": null, "feature_1": "WiFi", "feature_2": "", "feature_3": "Pool"}}`,
		"PATCH " + ep.Plans: `{"status": "ok", "payment": {"id": 11, "plan_name": "Pro+", "price": 29, "duration": 30, "itinerary_limit": 3}}`,
	}}
	client := newTestClient(t, rec, Options{})
	ctx := context.Background()

	created, err := client.Plans().Create(ctx, Plan{Name: "Pro", Price: 19, DurationDays: 30, Features: []string{"WiFi", "Pool"}})
	require.NoError(t, err)
	assert.Equal(t, "11", created.ID)
	assert.Equal(t, []string{"WiFi", "Pool"}, created.Features)
	assert.Equal(t, "Unlimited", created.LimitLabel())
	assert.Equal(t, "Pool", rec.last().Body["feature_2"])

	updated, err := client.Plans().Update(ctx, "11", Plan{Name: "Pro+", Price: 29, DurationDays: 30})
	require.NoError(t, err)
	assert.Equal(t, "3", updated.LimitLabel())
	assert.Equal(t, float64(11), rec.last().Body["id"])
}

func TestTerms_ReadOnly(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.Terms: `{"status": "ok", "data": {"main_content": "Intro", "title_1": "Use", "title_1_content": "Be nice."}}`,
	}}
	client := newTestClient(t, rec, Options{})

	sections, err := client.Terms().List(context.Background(), state.Query{})
	require.NoError(t, err)
	assert.Len(t, sections, 2)

	_, err = client.Terms().Update(context.Background(), "1", TermsSection{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDashboard(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.EventSummary: `{"total_users": 120, "total_itinerary": 40, "total_events": 12, "category_event_summary": []}`,
		"GET " + ep.UserGrowth:   `{"today": {"day_name": "Monday", "date": 3, "month": "March", "year": 2025}, "year": 2025, "grand_total_users": 120, "total_users_this_year": 30, "monthly_growth": [{"month": "January", "user_count": 10, "percentage": 33.3}, {"month": "", "user_count": 0, "percentage": 0}]}`,
		"GET " + ep.Revenue:      `{"monthly_revenue": [{"month": "January", "amount": "150.50"}, {"month": "", "amount": 0}]}`,
		"GET " + ep.Users:        `{"data": [{"user_id": 1}, {"user_id": 2}, {"user_id": 3}, {"user_id": 4}, {"user_id": 5}, {"user_id": 6}]}`,
	}}
	client := newTestClient(t, rec, Options{})

	d, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, d.Summary.TotalUsers)
	assert.Equal(t, 2025, d.Growth.Year)
	assert.Equal(t, 30, d.Growth.TotalThisYear)
	assert.Equal(t, "N/A", d.Growth.Monthly[1].Month)
	assert.Equal(t, "Monday 3 March 2025", d.Growth.ReportedOnDate)
	assert.InDelta(t, 150.5, d.Revenue[0].Amount, 0.001)
	assert.Equal(t, "N/A", d.Revenue[1].Month)
	assert.Len(t, d.RecentUsers, recentUserCount)
}

func TestDashboard_FailsWhenAPanelFails(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"GET " + ep.EventSummary: `{}`,
		"GET " + ep.UserGrowth:   `{}`,
		"GET " + ep.Users:        `[]`,
	}}
	client := newTestClient(t, rec, Options{})

	_, err := client.Dashboard(context.Background())
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.Status)
}

func TestLogin(t *testing.T) {
	ep := DefaultEndpoints()
	rec := &recorder{responses: map[string]string{
		"POST " + ep.Login: `{"status": "success", "data": {"user": {"id": 1, "full_name": "Admin", "email": "admin@x.io", "image": "/media/a.png"}, "refresh": "r", "access": "a"}}`,
	}}
	client := newTestClient(t, rec, Options{})

	res, err := client.Login(context.Background(), " admin@x.io ", "secret")
	require.NoError(t, err)
	assert.Equal(t, Admin{ID: "1", FullName: "Admin", Email: "admin@x.io", Image: "/media/a.png"}, res.Admin)
	assert.Equal(t, "a", res.Access)
	assert.Equal(t, "r", res.Refresh)
	assert.Equal(t, "admin@x.io", rec.last().Body["email"])
}

func TestLogin_RejectedCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": "error", "message": "Invalid email or password"}`))
	}), Options{})

	_, err := client.Login(context.Background(), "a@b.c", "nope")
	assert.Equal(t, "Invalid email or password", Message(err))
}

func TestUpdateProfile_SendsMultipart(t *testing.T) {
	var fields map[string]string
	var method, fileName, fileBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields = map[string]string{
			"full_name": r.FormValue("full_name"),
			"email":     r.FormValue("email"),
		}
		file, header, err := r.FormFile("image")
		if err == nil {
			fileName = header.Filename
			raw, _ := io.ReadAll(file)
			fileBody = string(raw)
		}
		_, _ = w.Write([]byte(`{"full_name": "New Name", "email": "new@x.io", "image": "/media/new.png"}`))
	}), Options{})

	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	profile, err := client.UpdateProfile(context.Background(), ProfileUpdate{FullName: "New Name ", Email: "new@x.io", ImagePath: path})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "New Name", fields["full_name"])
	assert.Equal(t, "avatar.png", fileName)
	assert.True(t, strings.HasPrefix(fileBody, "png"))
	assert.Equal(t, "/media/new.png", profile.Image)
}
