package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/travel-assistant/concierge/internal/state"
)

// Plans adapts the subscription plan endpoints.
type Plans struct {
	c *Client
}

// Plans returns the subscription plan resource adapter.
func (c *Client) Plans() *Plans { return &Plans{c: c} }

type planWire struct {
	ID             flexString `json:"id"`
	PlanName       string     `json:"plan_name"`
	Duration       flexInt    `json:"duration"`
	Price          flexFloat  `json:"price"`
	ItineraryLimit *flexInt   `json:"itinerary_limit"`
	Features       []string   `json:"-"`
}

func (w *planWire) UnmarshalJSON(b []byte) error {
	type plain planWire
	if err := json.Unmarshal(b, (*plain)(w)); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	w.Features = collectSlots(fields, "feature_", "", MaxPlanFeatures)
	return nil
}

func (w planWire) plan() Plan {
	p := Plan{
		ID:           string(w.ID),
		Name:         orDefault(w.PlanName, "Untitled"),
		Price:        float64(w.Price),
		DurationDays: int(w.Duration),
		Features:     w.Features,
	}
	if w.ItineraryLimit != nil {
		limit := int(*w.ItineraryLimit)
		p.ItineraryLimit = &limit
	}
	return p
}

// planPayload spreads a plan back over the numbered feature slots. Unused
// slots are sent empty so removed features are cleared.
func planPayload(p Plan) map[string]any {
	payload := map[string]any{
		"plan_name":       strings.TrimSpace(p.Name),
		"duration":        p.DurationDays,
		"price":           p.Price,
		"itinerary_limit": nil,
	}
	if p.ItineraryLimit != nil {
		payload["itinerary_limit"] = *p.ItineraryLimit
	}
	for i := 1; i <= MaxPlanFeatures; i++ {
		value := ""
		if i <= len(p.Features) {
			value = strings.TrimSpace(p.Features[i-1])
		}
		payload["feature_"+strconv.Itoa(i)] = value
	}
	return payload
}

// List returns every subscription plan.
func (r *Plans) List(ctx context.Context, _ state.Query) ([]Plan, error) {
	body, err := r.c.do(ctx, http.MethodGet, r.c.endpoints.Plans, nil)
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[planWire](body, "payment", "data", "results")
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.plan())
	}
	return out, nil
}

// Create adds a subscription plan.
func (r *Plans) Create(ctx context.Context, p Plan) (Plan, error) {
	body, err := r.c.do(ctx, http.MethodPost, r.c.endpoints.Plans, planPayload(p))
	if err != nil {
		return Plan{}, err
	}
	return r.decode(body)
}

// Update replaces a subscription plan's fields.
func (r *Plans) Update(ctx context.Context, id string, p Plan) (Plan, error) {
	payload := planPayload(p)
	payload["id"] = wireID(id)
	body, err := r.c.do(ctx, http.MethodPatch, r.c.endpoints.Plans, payload)
	if err != nil {
		return Plan{}, err
	}
	return r.decode(body)
}

// Remove deletes a subscription plan.
func (r *Plans) Remove(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.c.endpoints.Plans, map[string]any{"id": wireID(id)})
	return err
}

func (r *Plans) decode(body []byte) (Plan, error) {
	w, err := decodeObject[planWire](body, "payment", "data")
	if err != nil {
		return Plan{}, err
	}
	if w.ID == "" {
		return Plan{}, nil
	}
	return w.plan(), nil
}
