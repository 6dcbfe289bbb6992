package adminapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/travel-assistant/concierge/internal/state"
)

// Interests adapts the interest (preference) endpoints.
type Interests struct {
	c *Client
}

// Interests returns the interest resource adapter.
func (c *Client) Interests() *Interests { return &Interests{c: c} }

type interestWire struct {
	ID        flexString `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Status    flexBool   `json:"status"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

func (w interestWire) interest() Interest {
	return Interest{
		ID:        string(w.ID),
		Name:      orDefault(w.Name, "Untitled"),
		Slug:      w.Slug,
		Active:    bool(w.Status),
		CreatedAt: parseTimestamp(w.CreatedAt),
		UpdatedAt: parseTimestamp(w.UpdatedAt),
	}
}

func statusParam(active bool) string {
	if active {
		return "True"
	}
	return "False"
}

// List returns every interest.
func (r *Interests) List(ctx context.Context, _ state.Query) ([]Interest, error) {
	body, err := r.c.do(ctx, http.MethodGet, r.c.endpoints.Interests, nil)
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[interestWire](body, "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]Interest, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.interest())
	}
	return out, nil
}

// Create adds an interest. The returned entity has an empty ID when the
// response did not describe the new record.
func (r *Interests) Create(ctx context.Context, in Interest) (Interest, error) {
	body, err := r.c.do(ctx, http.MethodPost, r.c.endpoints.Interests, map[string]any{
		"name": strings.TrimSpace(in.Name),
	})
	if err != nil {
		return Interest{}, err
	}
	return r.decode(body)
}

// Update renames an interest.
func (r *Interests) Update(ctx context.Context, id string, in Interest) (Interest, error) {
	body, err := r.c.do(ctx, http.MethodPatch, r.c.endpoints.Interests, map[string]any{
		"id":   id,
		"name": strings.TrimSpace(in.Name),
	})
	if err != nil {
		return Interest{}, err
	}
	return r.decode(body)
}

// Toggle sets the interest's active flag to next.Active.
func (r *Interests) Toggle(ctx context.Context, id string, next Interest) (Interest, error) {
	body, err := r.c.do(ctx, http.MethodPatch, r.c.endpoints.Interests, map[string]any{
		"id":     id,
		"status": statusParam(next.Active),
	})
	if err != nil {
		return Interest{}, err
	}
	return r.decode(body)
}

// Remove deletes an interest.
func (r *Interests) Remove(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.c.endpoints.Interests, map[string]any{"id": id})
	return err
}

func (r *Interests) decode(body []byte) (Interest, error) {
	w, err := decodeObject[interestWire](body, "data")
	if err != nil {
		return Interest{}, err
	}
	if w.ID == "" {
		return Interest{}, nil
	}
	return w.interest(), nil
}
