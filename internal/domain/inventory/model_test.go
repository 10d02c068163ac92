package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestInventoryCountVariance(t *testing.T) {
	c := NewInventoryCount(id.New(), testNow)
	c.AddLine(id.New(), 100, 97)
	c.AddLine(id.New(), 50, 52)

	assert.Equal(t, int64(150), c.TotalExpected.Int64())
	assert.Equal(t, int64(149), c.TotalCounted.Int64())
	assert.Equal(t, int64(-1), c.TotalVariance.Int64())
	assert.Equal(t, int64(-3), c.Lines[0].Variance().Int64())
	assert.Equal(t, int64(2), c.Lines[1].Variance().Int64())
}

func TestInventoryCountComplete(t *testing.T) {
	c := NewInventoryCount(id.New(), testNow)
	c.AddLine(id.New(), 10, 10)

	require.NoError(t, c.Complete())
	assert.Equal(t, StatusCompleted, c.Status)

	err := c.Complete()
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
	assert.Error(t, c.CanModify())
}

func TestInventoryCountValidate(t *testing.T) {
	c := NewInventoryCount(id.New(), testNow)
	require.Error(t, c.Validate(context.Background())) // no lines

	productID := id.New()
	c.AddLine(productID, 10, 9)
	require.NoError(t, c.Validate(context.Background()))

	// Same product twice is a caller mistake.
	c.AddLine(productID, 5, 5)
	err := c.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
