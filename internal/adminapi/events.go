package adminapi

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/travel-assistant/concierge/internal/state"
)

// Events adapts the event category endpoints.
type Events struct {
	c *Client
}

// Events returns the event category resource adapter.
func (c *Client) Events() *Events { return &Events{c: c} }

type eventWire struct {
	EventID    flexString `json:"event_id"`
	ID         flexString `json:"id"`
	EventName  string     `json:"event_name"`
	Name       string     `json:"name"`
	EventCount flexInt    `json:"event_count"`
}

func (w eventWire) category() EventCategory {
	id := string(w.EventID)
	if id == "" {
		id = string(w.ID)
	}
	name := w.EventName
	if strings.TrimSpace(name) == "" {
		name = w.Name
	}
	return EventCategory{ID: id, Name: orDefault(name, "Untitled"), EventCount: int(w.EventCount)}
}

type summaryWire struct {
	TotalUsers     flexInt `json:"total_users"`
	TotalItinerary flexInt `json:"total_itinerary"`
	TotalEvents    flexInt `json:"total_events"`
	Categories     []struct {
		Name       string  `json:"name"`
		EventCount flexInt `json:"event_count"`
	} `json:"category_event_summary"`
}

// List returns the event categories with their event counts. The category
// list and the summary counts come from two endpoints fetched in parallel and
// merged by name. A failed summary only costs the counts.
func (r *Events) List(ctx context.Context, _ state.Query) ([]EventCategory, error) {
	var (
		categories []EventCategory
		summary    EventSummary
		summaryErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := r.c.do(gctx, http.MethodGet, r.c.endpoints.Events, nil)
		if err != nil {
			return err
		}
		wires, err := decodeList[eventWire](body, "data", "events", "results")
		if err != nil {
			return err
		}
		categories = make([]EventCategory, 0, len(wires))
		for _, w := range wires {
			categories = append(categories, w.category())
		}
		return nil
	})
	g.Go(func() error {
		summary, summaryErr = r.c.EventSummary(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if summaryErr != nil {
		r.c.log.Warn("event summary unavailable", "error", summaryErr)
		return categories, nil
	}
	return mergeCounts(categories, summary.Categories), nil
}

func mergeCounts(categories []EventCategory, counts []CategoryCount) []EventCategory {
	byName := make(map[string]int, len(counts))
	for _, c := range counts {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c.Count
	}
	for i := range categories {
		if n, ok := byName[strings.ToLower(strings.TrimSpace(categories[i].Name))]; ok {
			categories[i].EventCount = n
		}
	}
	return categories
}

// Create adds an event category.
func (r *Events) Create(ctx context.Context, e EventCategory) (EventCategory, error) {
	body, err := r.c.do(ctx, http.MethodPost, r.c.endpoints.Events, map[string]any{
		"event_name": strings.TrimSpace(e.Name),
	})
	if err != nil {
		return EventCategory{}, err
	}
	return r.decode(body)
}

// Update renames an event category. The response carries no count, so the
// one on e is kept.
func (r *Events) Update(ctx context.Context, id string, e EventCategory) (EventCategory, error) {
	body, err := r.c.do(ctx, http.MethodPatch, r.c.endpoints.Events, map[string]any{
		"event_id":   wireID(id),
		"event_name": strings.TrimSpace(e.Name),
	})
	if err != nil {
		return EventCategory{}, err
	}
	out, err := r.decode(body)
	if err != nil {
		return EventCategory{}, err
	}
	if out.ID != "" && out.EventCount == 0 {
		out.EventCount = e.EventCount
	}
	return out, nil
}

// Remove deletes an event category.
func (r *Events) Remove(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.c.endpoints.Events, map[string]any{"event_id": wireID(id)})
	return err
}

func (r *Events) decode(body []byte) (EventCategory, error) {
	w, err := decodeObject[eventWire](body, "data", "event")
	if err != nil {
		return EventCategory{}, err
	}
	c := w.category()
	if c.ID == "" {
		return EventCategory{}, nil
	}
	return c, nil
}

// EventSummary returns the platform totals and per-category event counts.
func (c *Client) EventSummary(ctx context.Context) (EventSummary, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoints.EventSummary, nil)
	if err != nil {
		return EventSummary{}, err
	}
	w, err := decodeObject[summaryWire](body, "data")
	if err != nil {
		return EventSummary{}, err
	}
	out := EventSummary{
		TotalUsers:     int(w.TotalUsers),
		TotalItinerary: int(w.TotalItinerary),
		TotalEvents:    int(w.TotalEvents),
		Categories:     make([]CategoryCount, 0, len(w.Categories)),
	}
	for _, cat := range w.Categories {
		out.Categories = append(out.Categories, CategoryCount{
			Name:  orDefault(cat.Name, "Untitled"),
			Count: int(cat.EventCount),
		})
	}
	return out, nil
}
