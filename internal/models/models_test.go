package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestStatus(t *testing.T) {
	cases := map[string]RequestStatus{
		"APPROVED":      RequestStatusApproved,
		"approved":      RequestStatusApproved,
		" Processing  ": RequestStatusProcessing,
		"completed":     RequestStatusCompleted,
	}
	for raw, want := range cases {
		got, ok := ParseRequestStatus(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got)
	}

	for _, raw := range []string{"", "DONE", "approve", "PENDING!"} {
		_, ok := ParseRequestStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	var payload struct {
		DateNeeded *Date `json:"dateNeeded"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dateNeeded":"2025-06-15"}`), &payload))
	require.NotNil(t, payload.DateNeeded)
	assert.Equal(t, "2025-06-15", payload.DateNeeded.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dateNeeded":"2025-06-15"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"dateNeeded":"15/06/2025"}`), &payload))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-01", d.String())

	require.NoError(t, d.Scan([]byte("2025-07-02T00:00:00Z")))
	assert.Equal(t, "2025-07-02", d.String())

	assert.Error(t, d.Scan(42))
}

func TestClaimsIsRegistrar(t *testing.T) {
	assert.True(t, (&JWTClaims{Role: RoleRegistrar}).IsRegistrar())
	assert.False(t, (&JWTClaims{Role: RoleStudent}).IsRegistrar())
	var nilClaims *JWTClaims
	assert.False(t, nilClaims.IsRegistrar())
}

func TestDateEmptyStringIsAbsent(t *testing.T) {
	var payload struct {
		DateNeeded *Date `json:"dateNeeded"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dateNeeded":""}`), &payload))
	assert.Nil(t, payload.DateNeeded.OrNil())

	value, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = NewDate(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), value)
}
