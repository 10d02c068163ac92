package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/core/types"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestSalesOrderTotals(t *testing.T) {
	o := NewSalesOrder(id.New(), id.New(), testNow)
	o.AddLine(id.New(), 3, types.MustMoney("19.99"), types.MustMoney("0"))
	o.AddLine(id.New(), 2, types.MustMoney("5.50"), types.MustMoney("1"))

	// 59.97 + 11.00 = 70.97 gross, 1.00 discount
	assert.Equal(t, "70.97", o.Subtotal.StringFixed(2))
	assert.Equal(t, "1.00", o.DiscountTotal.StringFixed(2))
	assert.Equal(t, "69.97", o.GrandTotal.StringFixed(2))
}

func TestSalesOrderLifecycle(t *testing.T) {
	o := NewSalesOrder(id.New(), id.New(), testNow)
	o.AddLine(id.New(), 1, types.MustMoney("10"), types.MustMoney("0"))

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)

	err := o.Confirm()
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))

	require.NoError(t, o.Fulfill())
	assert.Equal(t, StatusFulfilled, o.Status)

	err = o.Cancel()
	assert.True(t, apperror.HasCode(err, apperror.CodeIllegalState))
	assert.Error(t, o.CanModify())
}

func TestSalesOrderCancelBeforeFulfillment(t *testing.T) {
	o := NewSalesOrder(id.New(), id.New(), testNow)
	o.AddLine(id.New(), 1, types.MustMoney("10"), types.MustMoney("0"))
	require.NoError(t, o.Confirm())

	require.NoError(t, o.Cancel())
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestSalesOrderValidate(t *testing.T) {
	o := NewSalesOrder(id.New(), id.New(), testNow)
	err := o.Validate(context.Background())
	require.Error(t, err) // no lines

	o.AddLine(id.New(), 1, types.MustMoney("10"), types.MustMoney("0"))
	require.NoError(t, o.Validate(context.Background()))

	o.Lines[0].DiscountAmount = types.MustMoney("11")
	err = o.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
