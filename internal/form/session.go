// Package form holds the state of a modal create/edit form: the draft, its
// mode, dirty tracking and the submit lifecycle.
package form

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Mode is the state of a Session.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

var (
	ErrSessionClosed  = errors.New("form is not open")
	ErrSubmitInFlight = errors.New("submit already in progress")
)

// Submitter performs the mutation a form submit stands for.
type Submitter[D any] interface {
	Create(ctx context.Context, draft D) error
	Update(ctx context.Context, id string, draft D) error
}

// SubmitFuncs adapts a pair of functions to Submitter. A nil function makes
// that mode fail with errors.ErrUnsupported.
type SubmitFuncs[D any] struct {
	CreateFunc func(ctx context.Context, draft D) error
	UpdateFunc func(ctx context.Context, id string, draft D) error
}

func (f SubmitFuncs[D]) Create(ctx context.Context, draft D) error {
	if f.CreateFunc == nil {
		return errors.ErrUnsupported
	}
	return f.CreateFunc(ctx, draft)
}

func (f SubmitFuncs[D]) Update(ctx context.Context, id string, draft D) error {
	if f.UpdateFunc == nil {
		return errors.ErrUnsupported
	}
	return f.UpdateFunc(ctx, id, draft)
}

// View is a copy of a session's state for rendering.
type View[D any] struct {
	Mode       Mode
	EditID     string
	Draft      D
	Dirty      bool
	Submitting bool
	Err        error
}

// Session is one modal form. It is safe for concurrent use; Submit blocks
// while the submitter runs and the rest of the API stays usable meanwhile.
type Session[D any] struct {
	submitter Submitter[D]
	validator *Validator
	blank     func() D

	mu         sync.Mutex
	mode       Mode
	editID     string
	draft      D
	initial    D
	submitting bool
	err        error
	gen        uint64
}

// Option configures a Session.
type Option[D any] func(*Session[D])

// WithBlank sets the draft OpenCreate starts from. The zero value is used
// otherwise.
func WithBlank[D any](blank func() D) Option[D] {
	return func(s *Session[D]) { s.blank = blank }
}

// WithValidator sets the validator used before submitting.
func WithValidator[D any](v *Validator) Option[D] {
	return func(s *Session[D]) { s.validator = v }
}

// NewSession returns a closed session.
func NewSession[D any](submitter Submitter[D], opts ...Option[D]) *Session[D] {
	s := &Session[D]{submitter: submitter}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.blank == nil {
		s.blank = func() D {
			var zero D
			return zero
		}
	}
	return s
}

// OpenCreate opens the form with a blank draft, discarding any previous one.
func (s *Session[D]) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(ModeCreate, "", s.blank())
}

// OpenEdit opens the form on a copy of an existing entity's fields.
func (s *Session[D]) OpenEdit(id string, draft D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(ModeEdit, id, draft)
}

// Close discards the draft. It is valid in any state.
func (s *Session[D]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero D
	s.reset(ModeClosed, "", zero)
}

// reset moves to a new state. Caller holds mu.
func (s *Session[D]) reset(mode Mode, id string, draft D) {
	s.gen++
	s.mode = mode
	s.editID = id
	s.draft = draft
	s.initial = draft
	s.submitting = false
	s.err = nil
}

// SetDraft replaces the draft. It clears the last error.
func (s *Session[D]) SetDraft(d D) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeClosed {
		return ErrSessionClosed
	}
	s.draft = d
	s.err = nil
	return nil
}

// Submit validates the draft and hands it to the submitter. On success the
// session closes; on failure it stays open with the draft intact and Err set.
// A submit that finishes after the session was closed or reopened leaves the
// new state alone.
func (s *Session[D]) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.mode == ModeClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	draft, mode, id, gen := s.draft, s.mode, s.editID, s.gen
	if err := s.validator.Check(draft); err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.submitting = true
	s.err = nil
	s.mu.Unlock()

	var err error
	if mode == ModeCreate {
		err = s.submitter.Create(ctx, draft)
	} else {
		err = s.submitter.Update(ctx, id, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return err
	}
	s.submitting = false
	if err != nil {
		s.err = err
		return err
	}
	var zero D
	s.reset(ModeClosed, "", zero)
	return nil
}

func (s *Session[D]) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session[D]) IsOpen() bool { return s.Mode() != ModeClosed }

func (s *Session[D]) EditID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editID
}

func (s *Session[D]) Draft() D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Dirty reports whether the draft differs from what the form opened with.
func (s *Session[D]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !reflect.DeepEqual(s.draft, s.initial)
}

func (s *Session[D]) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Err returns the error of the last failed submit, validation included.
func (s *Session[D]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// View returns a consistent copy of the session state.
func (s *Session[D]) View() View[D] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View[D]{
		Mode:       s.mode,
		EditID:     s.editID,
		Draft:      s.draft,
		Dirty:      !reflect.DeepEqual(s.draft, s.initial),
		Submitting: s.submitting,
		Err:        s.err,
	}
}
