package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"received to assigned", StatusReceived, StatusAssigned, true},
		{"assigned to en route", StatusAssigned, StatusEnRoute, true},
		{"en route to arrived", StatusEnRoute, StatusArrived, true},
		{"arrived to completed", StatusArrived, StatusCompleted, true},
		{"received to arrived skips", StatusReceived, StatusArrived, false},
		{"backwards", StatusEnRoute, StatusAssigned, false},
		{"same state", StatusAssigned, StatusAssigned, false},
		{"cancel from received", StatusReceived, StatusCancelled, true},
		{"cancel from arrived", StatusArrived, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusReceived, false},
		{"unknown source", Status(42), StatusCancelled, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		Status Status `json:"status"`
	}{StatusEnRoute})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"EnRoute"}`, string(raw))

	var decoded struct {
		Status Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Cancelled"}`), &decoded))
	assert.Equal(t, StatusCancelled, decoded.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"Teleported"}`), &decoded))
}

func TestParseEmergencyType(t *testing.T) {
	typ, ok := ParseEmergencyType("medical")
	require.True(t, ok)
	assert.Equal(t, EmergencyMedical, typ)
	assert.Equal(t, []Role{RoleParamedic}, typ.PreferredRoles())

	_, ok = ParseEmergencyType("Flood")
	assert.False(t, ok)
}
