package fakeapi

import (
	"strconv"
	"strings"
	"time"
)

type userRow struct {
	ID       int
	FullName string
	Email    string
	Status   string // Activate, Deactivate or New
	Joined   time.Time
}

type interestRow struct {
	ID      int
	Name    string
	Active  bool
	Created time.Time
	Updated time.Time
}

type eventRow struct {
	ID    int
	Name  string
	Count int
}

type planRow struct {
	ID       int
	Name     string
	Price    float64
	Duration int
	Limit    *int
	Features []string
}

type termsDoc struct {
	Main     string
	Sections [][2]string
	Updated  time.Time
}

type profile struct {
	ID       int
	FullName string
	Email    string
	Image    string
	Joined   time.Time
}

type dataset struct {
	nextID    int
	admin     profile
	users     []userRow
	interests []interestRow
	events    []eventRow
	plans     []planRow
	terms     termsDoc
	revenue   [12]float64
}

func newDataset() *dataset {
	return &dataset{nextID: 100, admin: profile{ID: 900, FullName: "Site Admin", Email: DefaultEmail}}
}

func (d *dataset) id() int {
	d.nextID++
	return d.nextID
}

func seed(now time.Time) *dataset {
	d := newDataset()
	d.admin.Joined = now.AddDate(-1, 0, 0)

	names := []struct{ name, status string }{
		{"Ana Souza", "Activate"},
		{"Ben Okafor", "Activate"},
		{"Chloe Martin", "New"},
		{"Dev Patel", "Deactivate"},
		{"Eun-ji Park", "Activate"},
		{"Farah Haddad", "New"},
		{"Gus Lindqvist", "Activate"},
	}
	for i, n := range names {
		local := strings.ToLower(strings.SplitN(n.name, " ", 2)[0])
		d.users = append(d.users, userRow{
			ID:       i + 1,
			FullName: n.name,
			Email:    local + "@example.com",
			Status:   n.status,
			Joined:   now.AddDate(0, -i, 0),
		})
	}

	for i, name := range []string{"Beaches", "Hiking", "Street Food", "Museums", "Nightlife"} {
		at := now.AddDate(0, 0, -30+i)
		d.interests = append(d.interests, interestRow{ID: 10 + i, Name: name, Active: i != 4, Created: at, Updated: at})
	}

	for i, e := range []struct {
		name  string
		count int
	}{{"Concerts", 12}, {"Festivals", 7}, {"Food Tours", 4}, {"Sports", 9}} {
		d.events = append(d.events, eventRow{ID: 20 + i, Name: e.name, Count: e.count})
	}

	five := 5
	d.plans = []planRow{
		{ID: 30, Name: "Explorer", Price: 0, Duration: 30, Limit: &five, Features: []string{"Trip planner", "Saved places"}},
		{ID: 31, Name: "Voyager", Price: 9.99, Duration: 30, Features: []string{"Trip planner", "Saved places", "Offline maps", "Priority support"}},
		{ID: 32, Name: "Voyager Annual", Price: 99, Duration: 365, Features: []string{"Everything in Voyager", "Two months free"}},
	}

	d.terms = termsDoc{
		Main: "These terms govern your use of the travel assistant.",
		Sections: [][2]string{
			{"Accounts", "You are responsible for keeping your credentials safe."},
			{"Subscriptions", "Plans renew automatically until cancelled."},
			{"Privacy", "We process personal data as described in the privacy policy."},
		},
		Updated: now.AddDate(0, -2, 0),
	}

	for m := range d.revenue {
		d.revenue[m] = float64((m+1)*120) + 0.5
	}
	return d
}

func statusFilter(filter string) string {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "activate", "active":
		return "Activate"
	case "deactivate", "deactive", "inactive":
		return "Deactivate"
	case "new":
		return "New"
	default:
		return ""
	}
}

func (d *dataset) findUser(id int) int {
	for i, u := range d.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (d *dataset) findInterest(id int) int {
	for i, r := range d.interests {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (d *dataset) findEvent(id int) int {
	for i, r := range d.events {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (d *dataset) findPlan(id int) int {
	for i, r := range d.plans {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (d *dataset) interestNameTaken(name string, except int) bool {
	for _, r := range d.interests {
		if r.ID != except && strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func slugify(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}

func planJSON(p planRow) map[string]any {
	out := map[string]any{
		"id":              p.ID,
		"plan_name":       p.Name,
		"price":           strconv.FormatFloat(p.Price, 'f', 2, 64),
		"duration":        p.Duration,
		"itinerary_limit": nil,
	}
	if p.Limit != nil {
		out["itinerary_limit"] = *p.Limit
	}
	for i := 1; i <= 10; i++ {
		key := "feature_" + strconv.Itoa(i)
		if i <= len(p.Features) {
			out[key] = p.Features[i-1]
		} else {
			out[key] = nil
		}
	}
	return out
}
