package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		wantErr error
	}{
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, nil},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, nil},
		{"pending to delivered skips shipped", OrderStatusPending, OrderStatusDelivered, ErrIllegalTransition},
		{"delivered back to pending", OrderStatusDelivered, OrderStatusPending, ErrIllegalTransition},
		{"delivered back to shipped", OrderStatusDelivered, OrderStatusShipped, ErrIllegalTransition},
		{"shipped back to pending", OrderStatusShipped, OrderStatusPending, ErrIllegalTransition},
		{"same status pending", OrderStatusPending, OrderStatusPending, ErrAlreadyInStatus},
		{"same status shipped", OrderStatusShipped, OrderStatusShipped, ErrAlreadyInStatus},
		{"same status delivered", OrderStatusDelivered, OrderStatusDelivered, ErrAlreadyInStatus},
		{"unknown value", OrderStatusPending, OrderStatus("cancelled"), ErrInvalidStatus},
		{"empty value", OrderStatusShipped, OrderStatus(""), ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.from.Transition(tc.to)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestIllegalTransitionNamesBothStates(t *testing.T) {
	err := OrderStatusPending.Transition(OrderStatusDelivered)
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Contains(t, err.Error(), "pending")
	require.Contains(t, err.Error(), "delivered")
}
