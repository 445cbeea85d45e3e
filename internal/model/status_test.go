package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatusRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "done", "PENDING", "shipped"} {
		_, err := ParseOrderStatus(s)
		assert.Error(t, err, s)
	}
	st, err := ParseOrderStatus("preparing")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPreparing, st)
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusMonotonic(t *testing.T) {
	assert.True(t, PaymentStatusUnpaid.CanTransition(PaymentStatusPaid))
	assert.True(t, PaymentStatusPaid.CanTransition(PaymentStatusRefunded))

	// refunded 只能从 paid 到达
	assert.False(t, PaymentStatusUnpaid.CanTransition(PaymentStatusRefunded))
	assert.False(t, PaymentStatusRefunded.CanTransition(PaymentStatusPaid))
	assert.False(t, PaymentStatusPaid.CanTransition(PaymentStatusUnpaid))
}

func TestOrderItemsSubtotal(t *testing.T) {
	items := OrderItems{
		{ItemID: 1, Name: "Margherita", Quantity: 2, Price: 12.50},
		{ItemID: 2, Name: "Cola", Quantity: 3, Price: 3.00},
	}
	assert.InDelta(t, 34.0, items.Subtotal(), 1e-9)
}
