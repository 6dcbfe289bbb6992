package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const timeLayout = time.RFC3339

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// body decodes a JSON request body into a loose map. Numbers stay
// json.Number so ids survive either spelling.
func body(c echo.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
	}
	return out, nil
}

func idOf(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func numberOf(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

func notFound(what string) error {
	return echo.NewHTTPError(http.StatusNotFound, what+" not found")
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed login request")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Enter a valid email and password"})
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), s.email) || req.Password != s.password {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid email or password"})
	}

	s.mu.Lock()
	admin := s.db.admin
	s.mu.Unlock()

	access, err := s.IssueToken(strconv.Itoa(admin.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"data": echo.Map{
			"user": echo.Map{
				"id":        admin.ID,
				"full_name": admin.FullName,
				"email":     admin.Email,
				"image":     admin.Image,
			},
			"access":  access,
			"refresh": "refresh-" + access[len(access)-12:],
		},
	})
}

func (s *Server) listUsers(c echo.Context) error {
	filter := ""
	if c.Request().Method == http.MethodPost {
		req, err := body(c)
		if err != nil {
			return err
		}
		filter = statusFilter(textOf(req["filter"]))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]echo.Map, 0, len(s.db.users))
	for _, u := range s.db.users {
		if filter != "" && u.Status != filter {
			continue
		}
		rows = append(rows, echo.Map{
			"user_id":   u.ID,
			"full_name": u.FullName,
			"email":     u.Email,
			"status":    u.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "total_user": len(rows), "data": rows})
}

func (s *Server) toggleUser(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["user_id"])
	if !ok {
		return badRequest("user_id is required")
	}
	var status string
	switch strings.ToLower(textOf(req["type"])) {
	case "activate":
		status = "Activate"
	case "deactivate":
		status = "Deactivate"
	default:
		return badRequest("type must be activate or deactivate")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findUser(id)
	if i < 0 {
		return notFound("user")
	}
	s.db.users[i].Status = status
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "User " + strings.ToLower(status) + "d"})
}

func (s *Server) userInfo(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := idOf(req["user_id"])
	if !ok {
		id = s.db.admin.ID
	}
	if id == s.db.admin.ID {
		a := s.db.admin
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{
			"full_name": a.FullName,
			"email":     a.Email,
			"image":     a.Image,
			"join_date": a.Joined.Format(timeLayout),
		}})
	}
	i := s.db.findUser(id)
	if i < 0 {
		return notFound("user")
	}
	u := s.db.users[i]
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{
		"full_name": u.FullName,
		"email":     u.Email,
		"image":     nil,
		"join_date": u.Joined.Format(timeLayout),
	}})
}

func interestJSON(r interestRow) echo.Map {
	return echo.Map{
		"id":         r.ID,
		"name":       r.Name,
		"slug":       slugify(r.Name),
		"status":     r.Active,
		"created_at": r.Created.Format(timeLayout),
		"updated_at": r.Updated.Format(timeLayout),
	}
}

func (s *Server) listInterests(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]echo.Map, 0, len(s.db.interests))
	for _, r := range s.db.interests {
		rows = append(rows, interestJSON(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": rows})
}

func (s *Server) createInterest(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	name := textOf(req["name"])
	if name == "" {
		return badRequest("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db.interestNameTaken(name, 0) {
		return badRequest("Interest with this name already exists")
	}
	now := time.Now().UTC()
	row := interestRow{ID: s.db.id(), Name: name, Active: true, Created: now, Updated: now}
	s.db.interests = append(s.db.interests, row)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "message": "Interest created", "data": interestJSON(row)})
}

// updateInterest renames an interest or, when status is present, sets its
// active flag.
func (s *Server) updateInterest(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["id"])
	if !ok {
		return badRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findInterest(id)
	if i < 0 {
		return notFound("interest")
	}
	row := s.db.interests[i]
	if raw, ok := req["status"]; ok {
		active, err := strconv.ParseBool(strings.ToLower(textOf(raw)))
		if err != nil {
			return badRequest("status must be True or False")
		}
		row.Active = active
	}
	if raw, ok := req["name"]; ok {
		name := textOf(raw)
		if name == "" {
			return badRequest("name may not be blank")
		}
		if s.db.interestNameTaken(name, id) {
			return badRequest("Interest with this name already exists")
		}
		row.Name = name
	}
	row.Updated = time.Now().UTC()
	s.db.interests[i] = row
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": interestJSON(row)})
}

func (s *Server) deleteInterest(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["id"])
	if !ok {
		return badRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findInterest(id)
	if i < 0 {
		return notFound("interest")
	}
	s.db.interests = append(s.db.interests[:i], s.db.interests[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Interest deleted"})
}

// listEvents answers with a bare array; counts live on the summary endpoint.
func (s *Server) listEvents(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]echo.Map, 0, len(s.db.events))
	for _, e := range s.db.events {
		rows = append(rows, echo.Map{"event_id": e.ID, "event_name": e.Name})
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) createEvent(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	name := textOf(req["event_name"])
	if name == "" {
		return badRequest("event_name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := eventRow{ID: s.db.id(), Name: name}
	s.db.events = append(s.db.events, row)
	return c.JSON(http.StatusCreated, echo.Map{"data": echo.Map{"event_id": row.ID, "event_name": row.Name}})
}

func (s *Server) updateEvent(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["event_id"])
	if !ok {
		return badRequest("event_id is required")
	}
	name := textOf(req["event_name"])
	if name == "" {
		return badRequest("event_name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findEvent(id)
	if i < 0 {
		return notFound("event")
	}
	s.db.events[i].Name = name
	row := s.db.events[i]
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"event_id": row.ID, "event_name": row.Name}})
}

func (s *Server) deleteEvent(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["event_id"])
	if !ok {
		return badRequest("event_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findEvent(id)
	if i < 0 {
		return notFound("event")
	}
	s.db.events = append(s.db.events[:i], s.db.events[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Event deleted"})
}

func (s *Server) eventSummary(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	cats := make([]echo.Map, 0, len(s.db.events))
	for _, e := range s.db.events {
		total += e.Count
		cats = append(cats, echo.Map{"name": e.Name, "event_count": e.Count})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_users":            len(s.db.users),
		"total_itinerary":        len(s.db.users) * 3,
		"total_events":           total,
		"category_event_summary": cats,
	})
}

func (s *Server) listPlans(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]map[string]any, 0, len(s.db.plans))
	for _, p := range s.db.plans {
		rows = append(rows, planJSON(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "payment": rows})
}

// planFrom reads the plan fields of a create or update body over p.
func planFrom(req map[string]any, p planRow) (planRow, error) {
	if raw, ok := req["plan_name"]; ok {
		p.Name = textOf(raw)
	}
	if strings.TrimSpace(p.Name) == "" {
		return p, badRequest("plan_name is required")
	}
	if raw, ok := req["price"]; ok {
		price, ok := numberOf(raw)
		if !ok || price < 0 {
			return p, badRequest("price must be a non-negative number")
		}
		p.Price = price
	}
	if raw, ok := req["duration"]; ok {
		days, ok := idOf(raw)
		if !ok || days < 1 {
			return p, badRequest("duration must be at least one day")
		}
		p.Duration = days
	}
	if raw, ok := req["itinerary_limit"]; ok {
		p.Limit = nil
		if raw != nil {
			limit, ok := idOf(raw)
			if !ok || limit < 0 {
				return p, badRequest("itinerary_limit must be a non-negative integer")
			}
			p.Limit = &limit
		}
	}
	var features []string
	seen := false
	for i := 1; i <= 10; i++ {
		raw, ok := req["feature_"+strconv.Itoa(i)]
		if !ok {
			continue
		}
		seen = true
		if f := textOf(raw); f != "" {
			features = append(features, f)
		}
	}
	if seen {
		p.Features = features
	}
	return p, nil
}

func (s *Server) createPlan(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	p, err := planFrom(req, planRow{Duration: 30})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.db.id()
	s.db.plans = append(s.db.plans, p)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "payment": planJSON(p)})
}

func (s *Server) updatePlan(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["id"])
	if !ok {
		return badRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findPlan(id)
	if i < 0 {
		return notFound("plan")
	}
	p, err := planFrom(req, s.db.plans[i])
	if err != nil {
		return err
	}
	s.db.plans[i] = p
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "payment": planJSON(p)})
}

func (s *Server) deletePlan(c echo.Context) error {
	req, err := body(c)
	if err != nil {
		return err
	}
	id, ok := idOf(req["id"])
	if !ok {
		return badRequest("id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.db.findPlan(id)
	if i < 0 {
		return notFound("plan")
	}
	s.db.plans = append(s.db.plans[:i], s.db.plans[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "Plan deleted"})
}

func (s *Server) terms(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.db.terms
	if doc.Main == "" && len(doc.Sections) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": nil})
	}
	data := echo.Map{"main_content": doc.Main, "last_updated": doc.Updated.Format(timeLayout)}
	for i, sec := range doc.Sections {
		n := strconv.Itoa(i + 1)
		data["title_"+n] = sec[0]
		data["title_"+n+"_content"] = sec[1]
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": data})
}

func (s *Server) userGrowth(c echo.Context) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	var perMonth [12]int
	thisYear := 0
	for _, u := range s.db.users {
		if u.Joined.Year() != now.Year() {
			continue
		}
		perMonth[u.Joined.Month()-1]++
		thisYear++
	}
	monthly := make([]echo.Map, 0, 12)
	for m, n := range perMonth {
		pct := 0.0
		if thisYear > 0 {
			pct = float64(n) * 100 / float64(thisYear)
		}
		monthly = append(monthly, echo.Map{
			"month":      time.Month(m + 1).String(),
			"user_count": n,
			"percentage": strconv.FormatFloat(pct, 'f', 1, 64),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"today": echo.Map{
			"day_name": now.Weekday().String(),
			"date":     now.Day(),
			"month":    now.Month().String(),
			"year":     now.Year(),
		},
		"year":                  now.Year(),
		"grand_total_users":     len(s.db.users),
		"total_users_this_year": thisYear,
		"monthly_growth":        monthly,
	})
}

func (s *Server) revenue(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]echo.Map, 0, len(s.db.revenue))
	for m, amount := range s.db.revenue {
		rows = append(rows, echo.Map{
			"month":  time.Month(m + 1).String(),
			"amount": strconv.FormatFloat(amount, 'f', 2, 64),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "monthly_revenue": rows})
}

// updateProfile accepts the multipart profile form. The uploaded image is
// not stored; only its name is echoed back as the new image URL.
func (s *Server) updateProfile(c echo.Context) error {
	fullName := strings.TrimSpace(c.FormValue("full_name"))
	email := strings.TrimSpace(c.FormValue("email"))
	if fullName == "" || email == "" {
		return badRequest("full_name and email are required")
	}
	image := ""
	if fh, err := c.FormFile("image"); err == nil {
		image = "/media/profile/" + fh.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		return badRequest("unreadable image upload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.admin.FullName = fullName
	s.db.admin.Email = email
	if image != "" {
		s.db.admin.Image = image
	}
	a := s.db.admin
	return c.JSON(http.StatusOK, echo.Map{
		"full_name": a.FullName,
		"email":     a.Email,
		"image":     a.Image,
		"join_date": a.Joined.Format(timeLayout),
	})
}
