package state

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type item struct {
	ID     string
	Name   string
	Status string
}

func (i item) Key() string             { return i.ID }
func (i item) WithKey(key string) item { i.ID = key; return i }
func (i item) SearchText() []string    { return []string{i.Name} }
func (i item) StatusKey() string       { return i.Status }

func staticFetch(items ...item) Fetcher[item] {
	return FetchFunc[item](func(context.Context, Query) ([]item, error) {
		return append([]item(nil), items...), nil
	})
}

func loadedStore(t *testing.T, items ...item) *Store[item] {
	t.Helper()
	s := New[item]("items", staticFetch(items...))
	t.Cleanup(s.Close)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	return s
}

func TestStore_RefreshAndSnapshotClone(t *testing.T) {
	s := loadedStore(t, item{ID: "1", Name: "Beach"}, item{ID: "2", Name: "Hiking"})

	before := time.Now()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	snap := s.Snapshot()
	if snap.Status != StatusIdle || !snap.Loaded {
		t.Fatalf("snapshot status = %v loaded=%v, want idle and loaded", snap.Status, snap.Loaded)
	}
	if len(snap.Entities) != 2 || snap.Entities[0].ID != "1" {
		t.Fatalf("snapshot entities = %#v, want 2 items", snap.Entities)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Entities[0].Name = "changed"
	if got := s.Snapshot().Entities[0].Name; got != "Beach" {
		t.Fatalf("Snapshot should clone entities; got %q want Beach", got)
	}
}

func TestStore_RefreshErrorKeepsPreviousData(t *testing.T) {
	fail := atomic.Bool{}
	s := New[item]("items", FetchFunc[item](func(context.Context, Query) ([]item, error) {
		if fail.Load() {
			return nil, errors.New("boom")
		}
		return []item{{ID: "1"}}, nil
	}))
	defer s.Close()

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	fail.Store(true)
	for i := 0; i < 2; i++ {
		if err := s.Refresh(context.Background()); err == nil {
			t.Fatalf("Refresh returned nil error, want boom")
		}
	}

	snap := s.Snapshot()
	if snap.Status != StatusError {
		t.Fatalf("Status = %v, want error", snap.Status)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if len(snap.Entities) != 1 {
		t.Fatalf("entities = %#v, want previous data kept", snap.Entities)
	}
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d offline=%v, want 2 and offline", snap.ConsecutiveFailures, snap.IsOffline())
	}

	fail.Store(false)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("failures not reset: %#v", snap)
	}
}

func TestStore_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	s := New[item]("items", FetchFunc[item](func(context.Context, Query) ([]item, error) {
		calls.Add(1)
		close(entered)
		<-release
		return []item{{ID: "1"}}, nil
	}))
	defer s.Close()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = s.Refresh(context.Background())
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = s.Refresh(context.Background())
	}()
	waitFor(t, func() bool { return s.Snapshot().Waiting == 2 })
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch called %d times, want 1", got)
	}
	if got := s.Snapshot().Waiting; got != 0 {
		t.Fatalf("Waiting = %d after both callers returned, want 0", got)
	}
	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("Refresh errors = %v, want both nil", errs)
	}
}

func TestStore_JoinedRefreshSeesSameError(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("unreachable")
	s := New[item]("items", FetchFunc[item](func(context.Context, Query) ([]item, error) {
		close(entered)
		<-release
		return nil, boom
	}))
	defer s.Close()

	results := make(chan error, 2)
	go func() { results <- s.Refresh(context.Background()) }()
	<-entered
	go func() { results <- s.Refresh(context.Background()) }()
	waitFor(t, func() bool { return s.Snapshot().Waiting == 2 })
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-results; !errors.Is(err, boom) {
			t.Fatalf("Refresh error = %v, want %v", err, boom)
		}
	}
}

func TestStore_CallerCancelDoesNotAbortSharedFetch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := New[item]("items", FetchFunc[item](func(ctx context.Context, _ Query) ([]item, error) {
		close(entered)
		select {
		case <-release:
			return []item{{ID: "7"}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- s.Refresh(ctx) }()
	<-entered

	second := make(chan error, 1)
	go func() { second <- s.Refresh(context.Background()) }()
	waitFor(t, func() bool { return s.Snapshot().Waiting == 2 })

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller error = %v, want context.Canceled", err)
	}
	waitFor(t, func() bool { return s.Snapshot().Waiting == 1 })
	close(release)
	if err := <-second; err != nil {
		t.Fatalf("joined caller error = %v, want nil", err)
	}
	if _, ok := s.Get("7"); !ok {
		t.Fatalf("shared fetch result was not applied")
	}
}

func TestStore_CloseDiscardsLateResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := New[item]("items", FetchFunc[item](func(context.Context, Query) ([]item, error) {
		close(entered)
		<-release
		return []item{{ID: "1"}}, nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background()) }()
	<-entered
	s.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("Refresh error = %v, want ErrClosed", err)
	}
	if s.Live() {
		t.Fatalf("Live() = true after Close")
	}
	if got := s.Entities(); got != nil {
		t.Fatalf("entities = %#v, want late result discarded", got)
	}
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Refresh after Close = %v, want ErrClosed", err)
	}
}

func TestStore_RefreshDropsDuplicateIDs(t *testing.T) {
	s := loadedStore(t, item{ID: "1", Name: "first"}, item{ID: "1", Name: "second"}, item{ID: "2"})

	got := s.Entities()
	want := []item{{ID: "1", Name: "first"}, {ID: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("entities = %#v, want %#v", got, want)
	}
}

func TestStore_SetQueryPassesToFetcher(t *testing.T) {
	var seen atomic.Value
	s := New[item]("users", FetchFunc[item](func(_ context.Context, q Query) ([]item, error) {
		seen.Store(q)
		return nil, nil
	}))
	defer s.Close()

	if !s.SetQuery(Query{Status: "active"}) {
		t.Fatalf("SetQuery returned false for a changed query")
	}
	if s.SetQuery(Query{Status: "active"}) {
		t.Fatalf("SetQuery returned true for an unchanged query")
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if q := seen.Load().(Query); q.Status != "active" {
		t.Fatalf("fetcher query = %#v, want status active", q)
	}
	if snap := s.Snapshot(); snap.Query.Status != "active" {
		t.Fatalf("snapshot query = %#v", snap.Query)
	}
}

func TestStatus_String(t *testing.T) {
	for status, want := range map[Status]string{StatusIdle: "idle", StatusLoading: "loading", StatusError: "error"} {
		if got := status.String(); !strings.EqualFold(got, want) {
			t.Fatalf("%d.String() = %q, want %q", status, got, want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
