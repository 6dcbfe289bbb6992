package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnsupported is returned for operations the backend does not offer
	// for a resource.
	ErrUnsupported = errors.New("operation not supported")
	// ErrUnauthorized matches any RemoteError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

const genericMessage = "request failed"

// RemoteError is the single error shape returned for failed API calls.
// Status is 0 when the request never produced a response.
type RemoteError struct {
	Status  int
	Message string
	Path    string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("execute request: %v", e.Err)
		}
		return e.Message
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Network reports whether the request failed before a response arrived.
func (e *RemoteError) Network() bool { return e.Status == 0 }

// Message returns a user-facing description of err.
func Message(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func newRemoteError(path string, status int, body []byte) *RemoteError {
	return &RemoteError{Status: status, Path: path, Message: extractMessage(body)}
}

// extractMessage pulls a human message out of an error body, trying the
// fields the backend is known to use.
func extractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return genericMessage
	}
	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if msg := messageText(raw); msg != "" {
			return msg
		}
	}
	return genericMessage
}

func messageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
