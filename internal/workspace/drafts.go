package workspace

import (
	"strings"

	"github.com/travel-assistant/concierge/internal/adminapi"
)

// NameDraft edits resources whose only editable field is a name.
type NameDraft struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// PlanDraft edits a subscription plan.
type PlanDraft struct {
	Name           string   `json:"plan_name" validate:"notblank,max=100"`
	Price          float64  `json:"price" validate:"gte=0"`
	DurationDays   int      `json:"duration" validate:"gte=1"`
	ItineraryLimit *int     `json:"itinerary_limit" validate:"omitempty,gte=0"`
	Features       []string `json:"features" validate:"max=10,dive,max=120"`
}

// PlanDraftFrom copies the editable fields of p.
func PlanDraftFrom(p adminapi.Plan) PlanDraft {
	d := PlanDraft{
		Name:         p.Name,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		Features:     append([]string(nil), p.Features...),
	}
	if p.ItineraryLimit != nil {
		limit := *p.ItineraryLimit
		d.ItineraryLimit = &limit
	}
	return d
}

// Apply writes the draft over p. Blank features are dropped.
func (d PlanDraft) Apply(p adminapi.Plan) adminapi.Plan {
	p.Name = strings.TrimSpace(d.Name)
	p.Price = d.Price
	p.DurationDays = d.DurationDays
	p.ItineraryLimit = nil
	if d.ItineraryLimit != nil {
		limit := *d.ItineraryLimit
		p.ItineraryLimit = &limit
	}
	p.Features = nil
	for _, f := range d.Features {
		if f = strings.TrimSpace(f); f != "" {
			p.Features = append(p.Features, f)
		}
	}
	return p
}

// ProfileDraft edits the signed-in admin's profile.
type ProfileDraft struct {
	FullName  string `json:"full_name" validate:"notblank,max=100"`
	Email     string `json:"email" validate:"required,email"`
	ImagePath string `json:"image" validate:"omitempty,file"`
}
