package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{
		"status":     "CONFIRMED",
		"amountDue":  "550.00",
		"amountPaid": "0.00",
		"currency":   "USD",
	}
	newState := map[string]any{
		"status":     "PARTIALLY_PAID",
		"amountDue":  "350.00",
		"amountPaid": "200.00",
		"currency":   "USD",
	}

	changes := Diff(oldState, newState)

	assert.Len(t, changes, 3)
	assert.Contains(t, changes, "status")
	assert.Contains(t, changes, "amountDue")
	assert.Contains(t, changes, "amountPaid")
	assert.NotContains(t, changes, "currency")

	statusChange := changes["status"].(map[string]any)
	assert.Equal(t, "CONFIRMED", statusChange["old"])
	assert.Equal(t, "PARTIALLY_PAID", statusChange["new"])
}

func TestDiff_AddedAndRemovedFields(t *testing.T) {
	changes := Diff(
		map[string]any{"removed": 1},
		map[string]any{"added": 2},
	)

	require.Len(t, changes, 2)
	assert.Equal(t, map[string]any{"old": nil, "new": 2}, changes["added"])
	assert.Equal(t, map[string]any{"old": 1, "new": nil}, changes["removed"])
}

func TestToStateMap(t *testing.T) {
	type snapshot struct {
		Code  string `json:"code"`
		Total string `json:"total"`
	}

	m, err := toStateMap(snapshot{Code: "PE-001", Total: "550.00"})
	require.NoError(t, err)
	assert.Equal(t, "PE-001", m["code"])
	assert.Equal(t, "550.00", m["total"])

	nilMap, err := toStateMap(nil)
	require.NoError(t, err)
	assert.Nil(t, nilMap)
}
