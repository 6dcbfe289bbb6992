package adminapi

import (
	"context"
	"net/http"

	"github.com/travel-assistant/concierge/internal/state"
)

// Users adapts the user management endpoints.
type Users struct {
	c *Client
}

// Users returns the user resource adapter.
func (c *Client) Users() *Users { return &Users{c: c} }

type userWire struct {
	UserID   flexString `json:"user_id"`
	ID       flexString `json:"id"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Status   string     `json:"status"`
}

func (w userWire) user() User {
	id := string(w.UserID)
	if id == "" {
		id = string(w.ID)
	}
	return User{
		ID:     id,
		Name:   displayName(w.FullName, w.Email),
		Email:  w.Email,
		Status: NormalizeUserStatus(w.Status),
	}
}

// userFilter maps a normalized status onto the backend's filter value.
func userFilter(status string) string {
	switch NormalizeUserStatus(status) {
	case UserActive:
		return "Activate"
	case UserDeactive:
		return "Deactivate"
	case UserNew:
		return "New"
	default:
		return ""
	}
}

// List returns all users, narrowed server-side when q carries a status.
func (r *Users) List(ctx context.Context, q state.Query) ([]User, error) {
	var (
		body []byte
		err  error
	)
	if filter := userFilter(q.Status); filter != "" {
		body, err = r.c.do(ctx, http.MethodPost, r.c.endpoints.Users, map[string]string{"filter": filter})
	} else {
		body, err = r.c.do(ctx, http.MethodGet, r.c.endpoints.Users, nil)
	}
	if err != nil {
		return nil, err
	}
	wires, err := decodeList[userWire](body, "data", "users", "results")
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(wires))
	for _, w := range wires {
		users = append(users, w.user())
	}
	return users, nil
}

// Toggle activates or deactivates the account so that it ends up in next's
// status.
func (r *Users) Toggle(ctx context.Context, id string, next User) (User, error) {
	action := "activate"
	if next.Status == UserDeactive {
		action = "deactivate"
	}
	payload := map[string]any{"user_id": wireID(id), "type": action}
	if _, err := r.c.do(ctx, http.MethodPost, r.c.endpoints.UserToggle, payload); err != nil {
		return User{}, err
	}
	return next, nil
}

// Create is not offered by the backend; accounts sign up themselves.
func (r *Users) Create(context.Context, User) (User, error) { return User{}, ErrUnsupported }

// Update is not offered by the backend.
func (r *Users) Update(context.Context, string, User) (User, error) { return User{}, ErrUnsupported }

// Remove is not offered by the backend.
func (r *Users) Remove(context.Context, string) error { return ErrUnsupported }

type profileWire struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Image    string `json:"image"`
	JoinDate string `json:"join_date"`
}

func (w profileWire) profile() Profile {
	return Profile{
		FullName: w.FullName,
		Email:    w.Email,
		Image:    w.Image,
		JoinDate: parseTimestamp(w.JoinDate),
	}
}

// UserInfo returns the account details of the given user.
func (c *Client) UserInfo(ctx context.Context, userID string) (Profile, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoints.UserInfo, map[string]any{"user_id": wireID(userID)})
	if err != nil {
		return Profile{}, err
	}
	w, err := decodeObject[profileWire](body, "data")
	if err != nil {
		return Profile{}, err
	}
	return w.profile(), nil
}
