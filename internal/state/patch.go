package state

import "fmt"

// PatchKind identifies the shape of an optimistic change.
type PatchKind int

const (
	PatchInsert PatchKind = iota + 1
	PatchReplace
	PatchRemove
)

func (k PatchKind) String() string {
	switch k {
	case PatchInsert:
		return "insert"
	case PatchReplace:
		return "replace"
	case PatchRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Patch is a local change applied ahead of server confirmation.
type Patch[T any] struct {
	Kind   PatchKind
	ID     string // target id; for inserts, the id of Entity
	Entity T      // new value for inserts and replacements
}

// Insert appends e to the collection.
func Insert[T Entity[T]](e T) Patch[T] {
	return Patch[T]{Kind: PatchInsert, ID: e.Key(), Entity: e}
}

// Replace swaps the entity with the given id for e.
func Replace[T any](id string, e T) Patch[T] {
	return Patch[T]{Kind: PatchReplace, ID: id, Entity: e}
}

// Remove deletes the entity with the given id.
func Remove[T any](id string) Patch[T] {
	return Patch[T]{Kind: PatchRemove, ID: id}
}

// Token reverts exactly one applied patch. It is consumed by the first
// Rollback or Commit; later calls are no-ops.
type Token[T any] struct {
	seq   uint64
	kind  PatchKind
	key   string
	prev  T
	index int
	done  bool
}

// Kind returns the kind of patch the token reverts.
func (t *Token[T]) Kind() PatchKind { return t.kind }

// Key returns the id the patch left in (or removed from) the collection.
func (t *Token[T]) Key() string { return t.key }

// ApplyOptimistic applies p synchronously and returns its rollback token.
func (s *Store[T]) ApplyOptimistic(p Patch[T]) (*Token[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	s.seq++
	tok := &Token[T]{seq: s.seq, kind: p.Kind}

	switch p.Kind {
	case PatchInsert:
		key := p.Entity.Key()
		if s.indexOf(key) >= 0 {
			return nil, fmt.Errorf("insert %s: %w", key, ErrDuplicateKey)
		}
		tok.key = key
		s.entities = append(s.entities, p.Entity)
	case PatchReplace:
		i := s.indexOf(p.ID)
		if i < 0 {
			return nil, fmt.Errorf("replace %s: %w", p.ID, ErrNotFound)
		}
		key := p.Entity.Key()
		if key != p.ID && s.indexOf(key) >= 0 {
			return nil, fmt.Errorf("replace %s with %s: %w", p.ID, key, ErrDuplicateKey)
		}
		tok.key = key
		tok.prev = s.entities[i]
		s.entities[i] = p.Entity
	case PatchRemove:
		i := s.indexOf(p.ID)
		if i < 0 {
			return nil, fmt.Errorf("remove %s: %w", p.ID, ErrNotFound)
		}
		tok.key = p.ID
		tok.prev = s.entities[i]
		tok.index = i
		s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
	default:
		return nil, fmt.Errorf("unknown patch kind %d", p.Kind)
	}
	s.version++
	return tok, nil
}

// Rollback reverts the change recorded by tok. It never fails: when the
// affected entity has since disappeared (or, for removals, come back) it does
// nothing.
func (s *Store[T]) Rollback(tok *Token[T]) {
	if tok == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.done {
		return
	}
	tok.done = true
	if s.closed {
		return
	}

	switch tok.kind {
	case PatchInsert:
		if i := s.indexOf(tok.key); i >= 0 {
			s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
			s.version++
		}
	case PatchReplace:
		i := s.indexOf(tok.key)
		if i < 0 {
			return
		}
		prevKey := tok.prev.Key()
		if prevKey != tok.key && s.indexOf(prevKey) >= 0 {
			return
		}
		s.entities[i] = tok.prev
		s.version++
	case PatchRemove:
		if s.indexOf(tok.key) >= 0 {
			return
		}
		at := min(tok.index, len(s.entities))
		s.entities = append(s.entities[:at:at], append([]T{tok.prev}, s.entities[at:]...)...)
		s.version++
	}
}

// Commit makes the patch permanent by discarding tok.
func (s *Store[T]) Commit(tok *Token[T]) {
	if tok == nil {
		return
	}
	s.mu.Lock()
	tok.done = true
	s.mu.Unlock()
}

// Resolve swaps the provisional entity tempID for the server's version of it.
// The server entity is never added twice: when a refresh already brought it in,
// the provisional row is dropped and the existing row updated.
func (s *Store[T]) Resolve(tempID string, e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	temp := s.indexOf(tempID)
	existing := s.indexOf(e.Key())
	switch {
	case existing >= 0 && temp >= 0 && existing != temp:
		s.entities[existing] = e
		s.entities = append(s.entities[:temp:temp], s.entities[temp+1:]...)
	case existing >= 0:
		s.entities[existing] = e
	case temp >= 0:
		s.entities[temp] = e
	default:
		s.entities = append(s.entities, e)
	}
	s.version++
}

// Reconcile overwrites the entity sharing e's id, if it is still present.
func (s *Store[T]) Reconcile(e T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	i := s.indexOf(e.Key())
	if i < 0 {
		return false
	}
	s.entities[i] = e
	s.version++
	return true
}

// Drop removes the entity with the given id, if it is still present.
func (s *Store[T]) Drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
	s.version++
	return true
}
