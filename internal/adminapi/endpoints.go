package adminapi

import "strings"

// Endpoints holds the API paths used by the client. Empty fields fall back to
// the defaults below.
type Endpoints struct {
	Login        string `toml:"login"`
	Users        string `toml:"users"`
	UserToggle   string `toml:"user_toggle"`
	UserInfo     string `toml:"user_info"`
	Interests    string `toml:"interests"`
	Events       string `toml:"events"`
	EventSummary string `toml:"event_summary"`
	Plans        string `toml:"plans"`
	Terms        string `toml:"terms"`
	UserGrowth   string `toml:"user_growth"`
	Revenue      string `toml:"revenue"`
	Profile      string `toml:"profile"`
}

// DefaultEndpoints returns the paths served by the admin backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:        "/api/v1/admin/login/",
		Users:        "/api/v1/admin/all_user_list/",
		UserToggle:   "/api/v1/admin/user_activate_deactivate/",
		UserInfo:     "/api/v1/admin/user_info_and_preference_list/",
		Interests:    "/api/v1/admin/admin_interest/",
		Events:       "/api/v1/admin/admin_events/",
		EventSummary: "/api/v1/admin/total_envet_iteneray_count/",
		Plans:        "/api/v1/admin/subscription_plan/",
		Terms:        "/api/v1/admin/terms_and_conditions/",
		UserGrowth:   "/api/v1/admin/user_growth_chart/",
		Revenue:      "/api/v1/admin/subscription_revenue_chart/",
		Profile:      "/api/profile/",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	pick := func(v, fallback string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fallback
		}
		if !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		return v
	}
	return Endpoints{
		Login:        pick(e.Login, d.Login),
		Users:        pick(e.Users, d.Users),
		UserToggle:   pick(e.UserToggle, d.UserToggle),
		UserInfo:     pick(e.UserInfo, d.UserInfo),
		Interests:    pick(e.Interests, d.Interests),
		Events:       pick(e.Events, d.Events),
		EventSummary: pick(e.EventSummary, d.EventSummary),
		Plans:        pick(e.Plans, d.Plans),
		Terms:        pick(e.Terms, d.Terms),
		UserGrowth:   pick(e.UserGrowth, d.UserGrowth),
		Revenue:      pick(e.Revenue, d.Revenue),
		Profile:      pick(e.Profile, d.Profile),
	}
}
