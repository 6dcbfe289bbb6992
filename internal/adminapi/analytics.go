package adminapi

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/travel-assistant/concierge/internal/state"
)

const recentUserCount = 5

type growthWire struct {
	Today struct {
		DayName string     `json:"day_name"`
		Date    flexString `json:"date"`
		Month   string     `json:"month"`
		Year    flexString `json:"year"`
	} `json:"today"`
	Year          flexInt `json:"year"`
	GrandTotal    flexInt `json:"grand_total_users"`
	TotalThisYear flexInt `json:"total_users_this_year"`
	Monthly       []struct {
		Month      string    `json:"month"`
		UserCount  flexInt   `json:"user_count"`
		Percentage flexFloat `json:"percentage"`
	} `json:"monthly_growth"`
}

type revenueWire struct {
	Month  string    `json:"month"`
	Amount flexFloat `json:"amount"`
}

// UserGrowth returns monthly account growth for the current year.
func (c *Client) UserGrowth(ctx context.Context) (UserGrowth, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoints.UserGrowth, nil)
	if err != nil {
		return UserGrowth{}, err
	}
	w, err := decodeObject[growthWire](body, "data")
	if err != nil {
		return UserGrowth{}, err
	}
	out := UserGrowth{
		Year:          int(w.Year),
		GrandTotal:    int(w.GrandTotal),
		TotalThisYear: int(w.TotalThisYear),
		Monthly:       make([]GrowthPoint, 0, len(w.Monthly)),
	}
	if w.Today.Month != "" {
		out.ReportedOnDate = w.Today.DayName + " " + string(w.Today.Date) + " " + w.Today.Month + " " + string(w.Today.Year)
	}
	for _, m := range w.Monthly {
		out.Monthly = append(out.Monthly, GrowthPoint{
			Month:   orDefault(m.Month, "N/A"),
			Users:   int(m.UserCount),
			Percent: float64(m.Percentage),
		})
	}
	return out, nil
}

// Revenue returns subscription revenue per month.
func (c *Client) Revenue(ctx context.Context) ([]RevenuePoint, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoints.Revenue, nil)
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[revenueWire](body, "monthly_revenue", "data")
	if err != nil {
		return nil, err
	}
	out := make([]RevenuePoint, 0, len(wires))
	for _, w := range wires {
		out = append(out, RevenuePoint{Month: orDefault(w.Month, "N/A"), Amount: float64(w.Amount)})
	}
	return out, nil
}

// Dashboard fetches every overview panel in parallel. Any failed panel fails
// the whole dashboard.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Summary, err = c.EventSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Growth, err = c.UserGrowth(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		d.Revenue, err = c.Revenue(gctx)
		return err
	})
	g.Go(func() error {
		users, err := c.Users().List(gctx, state.Query{})
		if err != nil {
			return err
		}
		if len(users) > recentUserCount {
			users = users[:recentUserCount]
		}
		d.RecentUsers = users
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
