package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrAlreadyInStatus   = errors.New("order already in this status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Transition validates the move to next against the order lifecycle
// pending -> shipped -> delivered. Delivered is terminal, nothing moves
// backwards and nothing skips a step.
func (s OrderStatus) Transition(next OrderStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(next))
	}
	if s == next {
		return ErrAlreadyInStatus
	}
	if s == OrderStatusPending && next == OrderStatusShipped {
		return nil
	}
	if s == OrderStatusShipped && next == OrderStatusDelivered {
		return nil
	}
	return fmt.Errorf("cannot change status from %s to %s: %w", s, next, ErrIllegalTransition)
}

type Order struct {
	ID         int64       `db:"id" json:"id"`
	CustomerID int64       `db:"customer_id" json:"-"`
	Status     OrderStatus `db:"status" json:"status"`
	TotalPrice int64       `db:"total_price" json:"total_price"`
	Items      []OrderItem `db:"items" json:"items"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem keeps the unit price snapshotted at purchase time, so later
// catalog price changes never touch past orders.
type OrderItem struct {
	ID        int64  `db:"id" json:"-"`
	OrderID   int64  `db:"order_id" json:"-"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Price     int64  `db:"price" json:"price"`
	Quantity  int32  `db:"quantity" json:"quantity"`
}

// OrderLine is one requested position of a placement request.
type OrderLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity" validate:"required,gte=1"`
}
