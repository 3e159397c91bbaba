package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch v := OrderStatus(s); v {
	case OrderPending, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled:
		return v, nil
	}
	return "", fmt.Errorf("order status %q: %w", s, ErrInvalidArgument)
}

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type Order struct {
	ID              int64
	CustomerID      CustomerID
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	ShippingAddress string
	OrderDate       time.Time
	Items           []OrderItem
}

// ItemsTotal sums frozen item prices times quantities.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		q := decimal.NewFromInt(int64(item.Quantity))
		total = total.Add(item.Price.Mul(q))
	}
	return total
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// An OrderStatusChange describes a committed order transition.
type OrderStatusChange struct {
	OrderID     int64
	CustomerID  CustomerID
	Status      OrderStatus
	TotalAmount decimal.Decimal
	At          time.Time
}
