package state

import "strings"

// Entity is a record held by a Store. Implementations are plain values; the
// store copies them in and out and never shares backing memory with callers.
type Entity[T any] interface {
	// Key returns the entity id normalized to a string.
	Key() string
	// WithKey returns a copy of the entity carrying a different id.
	WithKey(key string) T
	// SearchText lists the fields matched by free-text filtering.
	SearchText() []string
	// StatusKey returns the normalized status used by status filtering, or ""
	// for resources without a status.
	StatusKey() string
}

// Query narrows what the remote side returns. Only resources with a server-side
// filter look at it.
type Query struct {
	Status string
}

// Filter is the local projection applied to a store's entities.
type Filter struct {
	Status string
	Text   string
}

// StatusAll matches every status.
const StatusAll = "all"

// Active reports whether the filter narrows anything.
func (f Filter) Active() bool {
	return !anyStatus(f.Status) || strings.TrimSpace(f.Text) != ""
}

// Match reports whether e passes both the status and the text criteria.
func Match[T Entity[T]](f Filter, e T) bool {
	if !anyStatus(f.Status) && !strings.EqualFold(strings.TrimSpace(e.StatusKey()), strings.TrimSpace(f.Status)) {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(f.Text))
	if needle == "" {
		return true
	}
	for _, field := range e.SearchText() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply returns the entities that pass f, in their original order. The result
// is always a new slice.
func Apply[T Entity[T]](f Filter, entities []T) []T {
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		if Match(f, e) {
			out = append(out, e)
		}
	}
	return out
}

func anyStatus(status string) bool {
	s := strings.TrimSpace(status)
	return s == "" || strings.EqualFold(s, StatusAll)
}
