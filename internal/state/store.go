package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Status describes the store's synchronization state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

var (
	// ErrClosed is returned for work that finished after the store was closed.
	ErrClosed = errors.New("store closed")
	// ErrNotFound is returned when a patch targets an id the store does not hold.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateKey is returned when an insert would break id uniqueness.
	ErrDuplicateKey = errors.New("duplicate entity id")
)

const defaultFetchTimeout = 15 * time.Second

// Fetcher loads the full remote collection for a store.
type Fetcher[T any] interface {
	List(ctx context.Context, q Query) ([]T, error)
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc[T any] func(ctx context.Context, q Query) ([]T, error)

// List calls f.
func (f FetchFunc[T]) List(ctx context.Context, q Query) ([]T, error) { return f(ctx, q) }

// Snapshot represents the latest data available to the UI.
type Snapshot[T any] struct {
	Name                string
	Entities            []T
	Status              Status
	Query               Query
	Loaded              bool // at least one refresh succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
	Waiting             int // callers blocked on the in-flight refresh
	Version             uint64
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithLogger sets the logger used for refresh outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFetchTimeout bounds a single refresh round trip.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

type flight struct {
	done    chan struct{}
	err     error
	waiting int
}

// Store holds one resource collection and coordinates refreshes and
// optimistic patches against it. All mutation of the collection happens
// under mu; network calls never do.
type Store[T Entity[T]] struct {
	name    string
	fetch   Fetcher[T]
	log     *slog.Logger
	timeout time.Duration

	life     context.Context
	shutdown context.CancelFunc

	mu          sync.RWMutex
	entities    []T
	status      Status
	query       Query
	loaded      bool
	lastUpdated time.Time
	lastErr     error
	failures    int
	closed      bool
	flight      *flight
	version     uint64
	seq         uint64
}

// New creates a store named name that loads its collection through fetch.
func New[T Entity[T]](name string, fetch Fetcher[T], opts ...Option) *Store[T] {
	o := options{logger: slog.Default(), timeout: defaultFetchTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	life, shutdown := context.WithCancel(context.Background())
	return &Store[T]{
		name:     name,
		fetch:    fetch,
		log:      o.logger.With("component", "store", "resource", name),
		timeout:  o.timeout,
		life:     life,
		shutdown: shutdown,
	}
}

// Name returns the resource name the store was created with.
func (s *Store[T]) Name() string { return s.name }

// Refresh reloads the collection. While a refresh is in flight further calls
// join it and observe the same outcome. The shared fetch is not cancelled when
// one caller's ctx ends; that caller just stops waiting.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	f := s.flight
	if f == nil {
		f = &flight{done: make(chan struct{})}
		s.flight = f
		s.status = StatusLoading
		s.version++
		go s.run(ctx, f, s.query)
	}
	f.waiting++
	s.mu.Unlock()
	defer s.leave(f)

	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store[T]) leave(f *flight) {
	s.mu.Lock()
	f.waiting--
	s.mu.Unlock()
}

func (s *Store[T]) run(parent context.Context, f *flight, q Query) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()
	stop := context.AfterFunc(s.life, cancel)
	defer stop()

	entities, err := s.fetch.List(ctx, q)

	s.mu.Lock()
	if s.closed {
		err = ErrClosed
	} else {
		s.settle(entities, err)
	}
	s.flight = nil
	f.err = err
	s.mu.Unlock()
	close(f.done)
}

// settle records a refresh outcome. Caller holds mu.
func (s *Store[T]) settle(entities []T, err error) {
	s.version++
	s.lastUpdated = time.Now()
	if err != nil {
		s.status = StatusError
		s.lastErr = err
		s.failures++
		s.log.Warn("refresh failed", "error", err, "failures", s.failures)
		return
	}
	unique, dropped := dedupe(entities)
	if dropped > 0 {
		s.log.Warn("refresh returned duplicate ids", "dropped", dropped)
	}
	s.entities = unique
	s.status = StatusIdle
	s.lastErr = nil
	s.failures = 0
	s.loaded = true
	s.log.Debug("refresh complete", "count", len(unique))
}

// SetQuery changes the remote query used by subsequent refreshes. A refresh
// already in flight keeps the query it started with.
func (s *Store[T]) SetQuery(q Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == q {
		return false
	}
	s.query = q
	s.version++
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var waiting int
	if s.flight != nil {
		waiting = s.flight.waiting
	}
	return Snapshot[T]{
		Name:                s.name,
		Entities:            clone(s.entities),
		Status:              s.status,
		Query:               s.query,
		Loaded:              s.loaded,
		LastUpdated:         s.lastUpdated,
		LastError:           s.lastErr,
		ConsecutiveFailures: s.failures,
		Waiting:             waiting,
		Version:             s.version,
	}
}

// Entities returns a copy of the collection in store order.
func (s *Store[T]) Entities() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.entities)
}

// Filtered returns the entities that pass f. The store is not modified.
func (s *Store[T]) Filtered(f Filter) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(f, s.entities)
}

// Get returns the entity with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entities[i], true
	}
	var zero T
	return zero, false
}

// Version increases on every observable change.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Close tears the store down. An in-flight refresh is cancelled and its
// result, if any arrives, is discarded.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.shutdown()
}

// Live reports whether the store is still accepting work.
func (s *Store[T]) Live() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

func (s *Store[T]) indexOf(id string) int {
	for i, e := range s.entities {
		if e.Key() == id {
			return i
		}
	}
	return -1
}

func dedupe[T Entity[T]](entities []T) ([]T, int) {
	if len(entities) == 0 {
		return nil, 0
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		if _, ok := seen[e.Key()]; ok {
			continue
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}
	return out, len(entities) - len(out)
}

func clone[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
