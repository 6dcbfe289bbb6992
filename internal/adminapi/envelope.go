package adminapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errUnexpectedEnvelope = errors.New("unexpected response envelope")

// listPayload finds the array in a list response. The backend answers with
// either a bare array or an object holding the array under one of keys.
func listPayload(body []byte, keys ...string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		return trimmed, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
		for _, key := range keys {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
				return nil, nil
			}
			if raw[0] == '[' {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%w: none of %v holds a list", errUnexpectedEnvelope, keys)
	default:
		return nil, errUnexpectedEnvelope
	}
}

// decodeList decodes a list response into wire records.
func decodeList[W any](body []byte, keys ...string) ([]W, error) {
	raw, err := listPayload(body, keys...)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var out []W
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// decodeObject decodes a single-record response. The record is read from the
// first of keys holding an object, else from the root object. Empty or
// non-object bodies yield the zero record.
func decodeObject[W any](body []byte, keys ...string) (W, error) {
	var out W
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	src := json.RawMessage(trimmed)
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			raw = bytes.TrimSpace(raw)
			if len(raw) > 0 && raw[0] == '{' {
				src = raw
				break
			}
		}
	}
	if err := json.Unmarshal(src, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// collectSlots gathers the non-empty values of numbered fields
// prefix1..prefixN (with suffix) in order.
func collectSlots(fields map[string]json.RawMessage, prefix, suffix string, n int) []string {
	var out []string
	for i := 1; i <= n; i++ {
		raw, ok := fields[prefix+strconv.Itoa(i)+suffix]
		if !ok {
			continue
		}
		var v flexString
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if s := strings.TrimSpace(string(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flexString accepts JSON strings, numbers and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexBool accepts booleans, "True"/"False" style strings and 0/1.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err == nil {
		v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(string(s))))
		if err != nil {
			*f = false
			return nil
		}
		*f = flexBool(v)
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexBool(v)
	return nil
}

// flexFloat accepts numbers and numeric strings such as decimal prices.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(string(s))
	if trimmed == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", trimmed, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt accepts integers, floats and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var v flexFloat
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = flexInt(int(v))
	return nil
}

// wireID encodes an id as a JSON number when it is numeric.
func wireID(id string) any {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return json.Number(id)
	}
	return id
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses the timestamp formats seen in API payloads. Invalid or
// empty values yield the zero time.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
