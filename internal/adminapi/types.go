package adminapi

import (
	"strconv"
	"strings"
	"time"
)

// User statuses after normalization.
const (
	UserNew      = "new"
	UserActive   = "active"
	UserDeactive = "deactive"
)

// User is a platform account as shown in user management.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (u User) Key() string             { return u.ID }
func (u User) WithKey(key string) User { u.ID = key; return u }
func (u User) SearchText() []string    { return []string{u.Name, u.Email} }
func (u User) StatusKey() string       { return u.Status }

// Toggled flips an account between active and deactive. New accounts
// become active.
func (u User) Toggled() User {
	if u.Status == UserActive {
		u.Status = UserDeactive
	} else {
		u.Status = UserActive
	}
	return u
}

// NormalizeUserStatus maps the backend's status spellings onto the three
// user statuses. Unknown values are lowercased and passed through.
func NormalizeUserStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "active", "activate", "activated":
		return UserActive
	case "deactive", "deactivate", "deactivated", "inactive":
		return UserDeactive
	case "new":
		return UserNew
	default:
		return s
	}
}

// displayName falls back to the local part of the email when the name is blank.
func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

// Interest is a travel preference users can pick.
type Interest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i Interest) Key() string                 { return i.ID }
func (i Interest) WithKey(key string) Interest { i.ID = key; return i }
func (i Interest) SearchText() []string        { return []string{i.Name, i.Slug} }

// StatusKey returns "active" or "inactive".
func (i Interest) StatusKey() string {
	if i.Active {
		return "active"
	}
	return "inactive"
}

// Toggled flips the active flag.
func (i Interest) Toggled() Interest {
	i.Active = !i.Active
	return i
}

// EventCategory is an event category with the number of events filed under it.
type EventCategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EventCount int    `json:"event_count"`
}

func (e EventCategory) Key() string                      { return e.ID }
func (e EventCategory) WithKey(key string) EventCategory { e.ID = key; return e }
func (e EventCategory) SearchText() []string             { return []string{e.Name} }
func (e EventCategory) StatusKey() string                { return "" }

// MaxPlanFeatures is the number of feature slots a plan carries on the wire.
const MaxPlanFeatures = 10

// Plan is a subscription plan.
type Plan struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	DurationDays   int      `json:"duration_days"`
	ItineraryLimit *int     `json:"itinerary_limit,omitempty"` // nil means unlimited
	Features       []string `json:"features"`
}

func (p Plan) Key() string             { return p.ID }
func (p Plan) WithKey(key string) Plan { p.ID = key; return p }
func (p Plan) SearchText() []string    { return append([]string{p.Name}, p.Features...) }
func (p Plan) StatusKey() string       { return "" }

// LimitLabel renders the itinerary limit for display.
func (p Plan) LimitLabel() string {
	if p.ItineraryLimit == nil {
		return "Unlimited"
	}
	return strconv.Itoa(*p.ItineraryLimit)
}

// TermsSection is one titled block of the terms and conditions.
type TermsSection struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t TermsSection) Key() string                     { return t.ID }
func (t TermsSection) WithKey(key string) TermsSection { t.ID = key; return t }
func (t TermsSection) SearchText() []string            { return []string{t.Title, t.Body} }
func (t TermsSection) StatusKey() string               { return "" }

// Admin identifies the signed-in administrator.
type Admin struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Admin   Admin
	Access  string
	Refresh string
}

// Profile is the signed-in administrator's account details.
type Profile struct {
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Image    string    `json:"image"`
	JoinDate time.Time `json:"join_date"`
}

// ProfileUpdate carries the editable profile fields. ImagePath, when set,
// names a local file uploaded as the new avatar.
type ProfileUpdate struct {
	FullName  string
	Email     string
	ImagePath string
}

// GrowthPoint is one month of user growth.
type GrowthPoint struct {
	Month   string  `json:"month"`
	Users   int     `json:"users"`
	Percent float64 `json:"percent"`
}

// UserGrowth summarizes account growth for a year.
type UserGrowth struct {
	Year           int           `json:"year"`
	GrandTotal     int           `json:"grand_total"`
	TotalThisYear  int           `json:"total_this_year"`
	Monthly        []GrowthPoint `json:"monthly"`
	ReportedOnDate string        `json:"reported_on"`
}

// RevenuePoint is one month of subscription revenue.
type RevenuePoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// CategoryCount is the number of events in one category.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// EventSummary holds the platform totals shown on the dashboard.
type EventSummary struct {
	TotalUsers     int             `json:"total_users"`
	TotalItinerary int             `json:"total_itinerary"`
	TotalEvents    int             `json:"total_events"`
	Categories     []CategoryCount `json:"categories"`
}

// Dashboard bundles the analytics shown on the overview screen.
type Dashboard struct {
	Summary     EventSummary   `json:"summary"`
	Growth      UserGrowth     `json:"growth"`
	Revenue     []RevenuePoint `json:"revenue"`
	RecentUsers []User         `json:"recent_users"`
}
