package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

func testLine(qtyOrdered int64, unitCost, discount, taxPercent string) Line {
	return Line{
		LineID:         id.New(),
		LineNo:         1,
		ProductID:      id.New(),
		QtyOrdered:     types.NewQuantity(qtyOrdered),
		UnitCost:       types.MustMoney(unitCost),
		DiscountAmount: types.MustMoney(discount),
		TaxPercent:     types.MustMoney(taxPercent),
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		line     Line
		expected string
	}{
		{
			name:     "no discount 10 percent tax",
			line:     testLine(10, "50", "0", "10"),
			expected: "550",
		},
		{
			name:     "discount before tax",
			line:     testLine(3, "33.33", "0.99", "7.5"),
			expected: "106.425",
		},
		{
			name:     "zero tax",
			line:     testLine(4, "2.50", "1", "0"),
			expected: "9",
		},
		{
			name:     "free item",
			line:     testLine(1, "0", "0", "20"),
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, types.MustMoney(tt.expected).Equal(tt.line.Total()),
				"got %s", tt.line.Total())
		})
	}
}

func TestLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *Line)
		wantErr bool
	}{
		{"valid", func(l *Line) {}, false},
		{"zero qty", func(l *Line) { l.QtyOrdered = 0 }, true},
		{"negative qty", func(l *Line) { l.QtyOrdered = -1 }, true},
		{"negative cost", func(l *Line) { l.UnitCost = types.MustMoney("-1") }, true},
		{"negative discount", func(l *Line) { l.DiscountAmount = types.MustMoney("-0.01") }, true},
		{"discount above gross", func(l *Line) { l.DiscountAmount = types.MustMoney("500.01") }, true},
		{"tax above 100", func(l *Line) { l.TaxPercent = types.MustMoney("100.5") }, true},
		{"negative tax", func(l *Line) { l.TaxPercent = types.MustMoney("-5") }, true},
		{"missing product", func(l *Line) { l.ProductID = id.Nil() }, true},
		{"received above ordered", func(l *Line) { l.QtyReceived = 11 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := testLine(10, "50", "0", "10")
			tt.mutate(&line)
			err := line.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestApplyReceipt(t *testing.T) {
	line := testLine(10, "50", "0", "10")

	ratio, err := line.ApplyReceipt(4)
	require.NoError(t, err)
	assert.Equal(t, "0.4", ratio.String())
	assert.Equal(t, int64(4), line.QtyReceived.Int64())
	assert.Equal(t, int64(6), line.Remaining().Int64())
	assert.False(t, line.FullyReceived())

	ratio, err = line.ApplyReceipt(6)
	require.NoError(t, err)
	assert.Equal(t, "1", ratio.String())
	assert.True(t, line.FullyReceived())
}

func TestApplyReceipt_OverReceipt(t *testing.T) {
	line := testLine(10, "50", "0", "10")
	_, err := line.ApplyReceipt(7)
	require.NoError(t, err)

	_, err = line.ApplyReceipt(4)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReceipt))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, int64(4), appErr.Details["requested"])
	assert.Equal(t, int64(3), appErr.Details["remaining"])

	// Failed receipt leaves the line untouched.
	assert.Equal(t, int64(7), line.QtyReceived.Int64())
}

func TestApplyReceipt_NonPositive(t *testing.T) {
	line := testLine(10, "50", "0", "10")

	_, err := line.ApplyReceipt(0)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = line.ApplyReceipt(-3)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, int64(0), line.QtyReceived.Int64())
}
