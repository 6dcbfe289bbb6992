package adminapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeList_MixedEnvelopesNormalizeIdentically(t *testing.T) {
	items := `[{"id": 1, "plan_name": "Basic", "price": "9.99", "duration": 30, "itinerary_limit": 5, "feature_1": "WiFi"},
	           {"id": "2", "plan_name": "Pro", "price": 19, "duration": 365, "itinerary_limit": null}]`

	bodies := map[string]string{
		"bare array":       items,
		"data envelope":    `{"status": "success", "data": ` + items + `}`,
		"payment envelope": `{"status": "success", "payment": ` + items + `}`,
	}

	var first []Plan
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			wires, err := decodeList[planWire]([]byte(body), "payment", "data")
			require.NoError(t, err)
			plans := make([]Plan, 0, len(wires))
			for _, w := range wires {
				plans = append(plans, w.plan())
			}
			require.Len(t, plans, 2)
			assert.Equal(t, "1", plans[0].ID)
			assert.Equal(t, "2", plans[1].ID)
			assert.InDelta(t, 9.99, plans[0].Price, 0.0001)
			require.NotNil(t, plans[0].ItineraryLimit)
			assert.Equal(t, 5, *plans[0].ItineraryLimit)
			assert.Nil(t, plans[1].ItineraryLimit)
			if first == nil {
				first = plans
			} else {
				assert.Equal(t, first, plans)
			}
		})
	}
}

func TestDecodeList_EmptyAndNull(t *testing.T) {
	for _, body := range []string{"", "null", `{"data": null}`, `[]`} {
		out, err := decodeList[userWire]([]byte(body), "data")
		require.NoError(t, err, body)
		assert.Empty(t, out, body)
	}
}

func TestDecodeList_UnknownEnvelopeFails(t *testing.T) {
	_, err := decodeList[userWire]([]byte(`{"items": {"a": 1}}`), "data")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpectedEnvelope)
	assert.Contains(t, err.Error(), "decode response")
}

func TestPlanWire_CollapsesFeatureSlots(t *testing.T) {
	body := `{"id": 3, "plan_name": "Family", "price": 49, "duration": 90,
		"feature_1": "WiFi", "feature_2": "", "feature_3": "Pool",
		"feature_4": null, "feature_5": "   "}`

	var w planWire
	require.NoError(t, json.Unmarshal([]byte(body), &w))
	assert.Equal(t, []string{"WiFi", "Pool"}, w.plan().Features)
}

func TestPlanPayload_SpreadsFeaturesAndClearsUnused(t *testing.T) {
	limit := 12
	payload := planPayload(Plan{Name: " Pro ", Price: 10, DurationDays: 30, ItineraryLimit: &limit, Features: []string{"WiFi", "Pool"}})

	assert.Equal(t, "Pro", payload["plan_name"])
	assert.Equal(t, 12, payload["itinerary_limit"])
	assert.Equal(t, "WiFi", payload["feature_1"])
	assert.Equal(t, "Pool", payload["feature_2"])
	assert.Equal(t, "", payload["feature_3"])
	assert.Equal(t, "", payload["feature_10"])
	assert.NotContains(t, payload, "feature_11")

	unlimited := planPayload(Plan{Name: "Free"})
	assert.Nil(t, unlimited["itinerary_limit"])
}

func TestDecodeObject_PrefersEnvelopeKey(t *testing.T) {
	w, err := decodeObject[interestWire]([]byte(`{"status": "ok", "data": {"id": 42, "name": "Food", "status": "True"}}`), "data")
	require.NoError(t, err)
	assert.Equal(t, Interest{ID: "42", Name: "Food", Active: true}, w.interest())

	w, err = decodeObject[interestWire]([]byte(`{"id": "7", "name": "Beach", "status": false}`), "data")
	require.NoError(t, err)
	assert.Equal(t, "7", string(w.ID))

	w, err = decodeObject[interestWire]([]byte(`"created"`), "data")
	require.NoError(t, err)
	assert.Empty(t, w.ID)
}

func TestFlexScalars(t *testing.T) {
	var s struct {
		ID     flexString `json:"id"`
		On     flexBool   `json:"on"`
		Off    flexBool   `json:"off"`
		One    flexBool   `json:"one"`
		Price  flexFloat  `json:"price"`
		Count  flexInt    `json:"count"`
		Absent flexString `json:"absent"`
	}
	body := `{"id": 12, "on": "True", "off": false, "one": 1, "price": "12.50", "count": "7", "absent": null}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, flexString("12"), s.ID)
	assert.True(t, bool(s.On))
	assert.False(t, bool(s.Off))
	assert.True(t, bool(s.One))
	assert.InDelta(t, 12.5, float64(s.Price), 0.0001)
	assert.Equal(t, flexInt(7), s.Count)
	assert.Empty(t, s.Absent)
}

func TestTermsSections(t *testing.T) {
	body := `{"status": "ok", "data": {
		"id": 1,
		"main_content": "Welcome.",
		"title_1": "Privacy", "title_1_content": "We keep data safe.",
		"title_2": "", "title_2_content": "",
		"title_3": "", "title_3_content": "Orphan body.",
		"last_updated": "2025-03-01T10:00:00Z"}}`

	fields, err := decodeObject[map[string]json.RawMessage]([]byte(body), "data")
	require.NoError(t, err)
	sections := termsSections(fields)

	require.Len(t, sections, 3)
	assert.Equal(t, "Introduction", sections[0].Title)
	assert.Equal(t, "Welcome.", sections[0].Body)
	assert.Equal(t, "Privacy", sections[1].Title)
	assert.Equal(t, "3", sections[2].ID)
	assert.Equal(t, "Untitled", sections[2].Title)
	assert.Equal(t, 2025, sections[0].UpdatedAt.Year())
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("not a date").IsZero())
	assert.Equal(t, 2024, parseTimestamp("2024-10-10T14:32:15.123456").Year())
	assert.Equal(t, 10, int(parseTimestamp("2024-10-10 14:32:15").Month()))
	assert.Equal(t, 5, parseTimestamp("2024-01-05").Day())
}

func TestNormalizeUserStatus(t *testing.T) {
	cases := map[string]string{
		"Activate":   UserActive,
		"active":     UserActive,
		"Deactivate": UserDeactive,
		"Inactive":   UserDeactive,
		" New ":      UserNew,
		"Banned":     "banned",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeUserStatus(in), in)
	}
}

func TestDisplayName_FallsBackToEmailLocalPart(t *testing.T) {
	assert.Equal(t, "Ann Lee", displayName(" Ann Lee ", "ann@example.com"))
	assert.Equal(t, "ann", displayName("", "ann@example.com"))
}
