package adminapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type loginWire struct {
	User struct {
		ID       flexString `json:"id"`
		FullName string     `json:"full_name"`
		Email    string     `json:"email"`
		Image    string     `json:"image"`
	} `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, c.endpoints.Login, map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	if err != nil {
		return LoginResult{}, err
	}
	w, err := decodeObject[loginWire](body, "data")
	if err != nil {
		return LoginResult{}, err
	}
	if w.Access == "" {
		return LoginResult{}, &RemoteError{Status: http.StatusOK, Path: c.endpoints.Login, Message: "login response carried no access token"}
	}
	return LoginResult{
		Admin: Admin{
			ID:       string(w.User.ID),
			FullName: w.User.FullName,
			Email:    w.User.Email,
			Image:    w.User.Image,
		},
		Access:  w.Access,
		Refresh: w.Refresh,
	}, nil
}

// UpdateProfile sends the profile form as multipart data, attaching the image
// file when one is given.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (Profile, error) {
	body, err := c.doMultipart(ctx, http.MethodPatch, c.endpoints.Profile, func(mw *multipart.Writer) error {
		if err := mw.WriteField("full_name", strings.TrimSpace(u.FullName)); err != nil {
			return err
		}
		if err := mw.WriteField("email", strings.TrimSpace(u.Email)); err != nil {
			return err
		}
		if strings.TrimSpace(u.ImagePath) == "" {
			return nil
		}
		return attachFile(mw, "image", u.ImagePath)
	})
	if err != nil {
		return Profile{}, err
	}
	w, err := decodeObject[profileWire](body, "data")
	if err != nil {
		return Profile{}, err
	}
	return w.profile(), nil
}

func attachFile(mw *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}
