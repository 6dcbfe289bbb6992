// Package mutation runs optimistic create, update, toggle and delete
// operations against a state.Store and reconciles them with the backend.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/travel-assistant/concierge/internal/state"
)

// Kind is the operation a pending mutation performs.
type Kind int

const (
	KindCreate Kind = iota + 1
	KindUpdate
	KindToggle
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindToggle:
		return "toggle"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

var (
	// ErrConcurrentMutation matches every *ConcurrentMutationError.
	ErrConcurrentMutation = errors.New("mutation already pending")
	// ErrNotToggleable is returned by Toggle for entities without a Toggled method.
	ErrNotToggleable = errors.New("entity cannot be toggled")
)

// ConcurrentMutationError rejects a mutation on an id that already has one
// in flight.
type ConcurrentMutationError struct {
	ID      string
	Pending Kind
}

func (e *ConcurrentMutationError) Error() string {
	return fmt.Sprintf("%s of %s still pending", e.Pending, e.ID)
}

func (e *ConcurrentMutationError) Is(target error) bool {
	return target == ErrConcurrentMutation
}

// Pending describes one mutation in flight.
type Pending struct {
	ID      string
	Kind    Kind
	Started time.Time
}

// Remote is the backend side of a resource.
type Remote[T any] interface {
	Create(ctx context.Context, e T) (T, error)
	Update(ctx context.Context, id string, e T) (T, error)
	Remove(ctx context.Context, id string) error
}

// Toggler is implemented by remotes with a dedicated status-flip call.
// Without it Toggle falls back to Update.
type Toggler[T any] interface {
	Toggle(ctx context.Context, id string, next T) (T, error)
}

type toggleable[T any] interface {
	Toggled() T
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for failed mutations.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Coordinator serializes mutations per entity id. Mutations on different ids
// run concurrently.
type Coordinator[T state.Entity[T]] struct {
	name   string
	store  *state.Store[T]
	remote Remote[T]
	log    *slog.Logger

	mu      sync.Mutex
	pending map[string]Pending
	temp    atomic.Int64
}

// New returns a coordinator applying patches to store and mutations to remote.
func New[T state.Entity[T]](name string, store *state.Store[T], remote Remote[T], opts ...Option) *Coordinator[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Coordinator[T]{
		name:    name,
		store:   store,
		remote:  remote,
		log:     o.logger.With("component", "mutation", "resource", name),
		pending: make(map[string]Pending),
	}
}

// Store returns the store the coordinator patches.
func (c *Coordinator[T]) Store() *state.Store[T] { return c.store }

// Pending reports the mutation in flight for id, if any.
func (c *Coordinator[T]) Pending(id string) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[id]
	return p, ok
}

// Busy reports whether any mutation is in flight.
func (c *Coordinator[T]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

func (c *Coordinator[T]) acquire(id string, kind Kind) (Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[id]; ok {
		return Pending{}, &ConcurrentMutationError{ID: id, Pending: p.Kind}
	}
	p := Pending{ID: id, Kind: kind, Started: time.Now()}
	c.pending[id] = p
	return p, nil
}

func (c *Coordinator[T]) release(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// tempID returns the next provisional id: "-1", "-2", ...
func (c *Coordinator[T]) tempID() string {
	return strconv.FormatInt(-c.temp.Add(1), 10)
}

// IsTemp reports whether id is a provisional create id.
func IsTemp(id string) bool {
	n, err := strconv.ParseInt(id, 10, 64)
	return err == nil && n < 0
}

// Create inserts draft under a provisional id, then swaps in the server's
// entity. The returned entity is the server's; it has an empty key when the
// backend did not describe the record, in which case the store is refreshed.
func (c *Coordinator[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	temp := c.tempID()
	p, err := c.acquire(temp, KindCreate)
	if err != nil {
		return zero, err
	}
	defer c.release(temp)

	tok, err := c.store.ApplyOptimistic(state.Insert(draft.WithKey(temp)))
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", c.name, err)
	}

	created, err := c.remote.Create(ctx, draft.WithKey(""))
	if err != nil {
		return zero, c.fail(ctx, tok, p, err)
	}
	if !c.store.Live() {
		return created, nil
	}
	if created.Key() == "" {
		c.store.Rollback(tok)
		c.reconcile(ctx, p)
		return created, nil
	}
	c.store.Commit(tok)
	c.store.Resolve(temp, created)
	c.log.Debug("created", "temp_id", temp, "id", created.Key())
	return created, nil
}

// Update replaces the entity id with next.
func (c *Coordinator[T]) Update(ctx context.Context, id string, next T) (T, error) {
	var zero T
	p, err := c.acquire(id, KindUpdate)
	if err != nil {
		return zero, err
	}
	defer c.release(id)

	next = next.WithKey(id)
	tok, err := c.store.ApplyOptimistic(state.Replace(id, next))
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	server, err := c.remote.Update(ctx, id, next)
	if err != nil {
		return zero, c.fail(ctx, tok, p, err)
	}
	return c.settle(tok, next, server), nil
}

// Toggle flips the entity's status. The entity type must provide
// Toggled() T.
func (c *Coordinator[T]) Toggle(ctx context.Context, id string) (T, error) {
	var zero T
	p, err := c.acquire(id, KindToggle)
	if err != nil {
		return zero, err
	}
	defer c.release(id)

	current, ok := c.store.Get(id)
	if !ok {
		return zero, fmt.Errorf("toggle %s %s: %w", c.name, id, state.ErrNotFound)
	}
	flip, ok := any(current).(toggleable[T])
	if !ok {
		return zero, fmt.Errorf("toggle %s: %w", c.name, ErrNotToggleable)
	}
	next := flip.Toggled()

	tok, err := c.store.ApplyOptimistic(state.Replace(id, next))
	if err != nil {
		return zero, fmt.Errorf("toggle %s %s: %w", c.name, id, err)
	}
	var server T
	if t, ok := c.remote.(Toggler[T]); ok {
		server, err = t.Toggle(ctx, id, next)
	} else {
		server, err = c.remote.Update(ctx, id, next)
	}
	if err != nil {
		return zero, c.fail(ctx, tok, p, err)
	}
	return c.settle(tok, next, server), nil
}

// Delete removes the entity id.
func (c *Coordinator[T]) Delete(ctx context.Context, id string) error {
	p, err := c.acquire(id, KindDelete)
	if err != nil {
		return err
	}
	defer c.release(id)

	tok, err := c.store.ApplyOptimistic(state.Remove[T](id))
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	if err := c.remote.Remove(ctx, id); err != nil {
		return c.fail(ctx, tok, p, err)
	}
	c.store.Commit(tok)
	// A refresh that read the server before the delete landed may have
	// brought the row back.
	c.store.Drop(id)
	return nil
}

// settle commits a successful replace and writes the outcome back, since a
// refresh that completed during the call may have replaced the optimistic
// row. The server's entity wins when it describes the same record.
func (c *Coordinator[T]) settle(tok *state.Token[T], sent, server T) T {
	c.store.Commit(tok)
	if server.Key() != sent.Key() {
		c.store.Reconcile(sent)
		return sent
	}
	c.store.Reconcile(server)
	return server
}

// fail rolls tok back, refreshes the store and returns err wrapped with the
// mutation it belongs to.
func (c *Coordinator[T]) fail(ctx context.Context, tok *state.Token[T], p Pending, err error) error {
	wrapped := fmt.Errorf("%s %s %s: %w", p.Kind, c.name, p.ID, err)
	if !c.store.Live() {
		return wrapped
	}
	c.store.Rollback(tok)
	c.log.Warn("mutation failed", "id", p.ID, "kind", p.Kind.String(), "error", err)
	c.reconcile(ctx, p)
	return wrapped
}

func (c *Coordinator[T]) reconcile(ctx context.Context, p Pending) {
	if err := c.store.Refresh(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, state.ErrClosed) {
		c.log.Warn("reconcile refresh failed", "id", p.ID, "kind", p.Kind.String(), "error", err)
	}
}
