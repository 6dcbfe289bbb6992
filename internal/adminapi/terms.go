package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/travel-assistant/concierge/internal/state"
)

const maxTermsSections = 10

// Terms adapts the terms and conditions endpoint. The backend publishes the
// document read-only.
type Terms struct {
	c *Client
}

// Terms returns the terms resource adapter.
func (c *Client) Terms() *Terms { return &Terms{c: c} }

// List returns the document as ordered sections: the introduction from the
// main content followed by every numbered title/content pair with either
// half present.
func (r *Terms) List(ctx context.Context, _ state.Query) ([]TermsSection, error) {
	body, err := r.c.do(ctx, http.MethodGet, r.c.endpoints.Terms, nil)
	if err != nil {
		return nil, err
	}
	fields, err := decodeObject[map[string]json.RawMessage](body, "data")
	if err != nil {
		return nil, err
	}
	return termsSections(fields), nil
}

func termsSections(fields map[string]json.RawMessage) []TermsSection {
	if len(fields) == 0 {
		return nil
	}
	str := func(key string) string {
		var v flexString
		if raw, ok := fields[key]; ok {
			_ = json.Unmarshal(raw, &v)
		}
		return strings.TrimSpace(string(v))
	}
	updated := parseTimestamp(str("last_updated"))

	var out []TermsSection
	if intro := str("main_content"); intro != "" {
		out = append(out, TermsSection{ID: "0", Title: "Introduction", Body: intro, UpdatedAt: updated})
	}
	for i := 1; i <= maxTermsSections; i++ {
		n := strconv.Itoa(i)
		title := str("title_" + n)
		content := str("title_" + n + "_content")
		if title == "" && content == "" {
			continue
		}
		out = append(out, TermsSection{
			ID:        n,
			Title:     orDefault(title, "Untitled"),
			Body:      content,
			UpdatedAt: updated,
		})
	}
	return out
}

// Create is not offered by the backend.
func (r *Terms) Create(context.Context, TermsSection) (TermsSection, error) {
	return TermsSection{}, ErrUnsupported
}

// Update is not offered by the backend.
func (r *Terms) Update(context.Context, string, TermsSection) (TermsSection, error) {
	return TermsSection{}, ErrUnsupported
}

// Remove is not offered by the backend.
func (r *Terms) Remove(context.Context, string) error { return ErrUnsupported }
