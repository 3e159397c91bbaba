package memstore

import (
	"cmp"
	"context"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.OrdersRepository = (*ordersRepo)(nil)

type ordersRepo struct {
	st *state
}

func (r ordersRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	o.ID = r.st.nextID()
	o.Items = nil
	r.st.orders[o.ID] = *o
	return nil
}

func (r ordersRepo) ReadOrder(_ context.Context, id int64) (domain.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	byID := func(a, b domain.OrderItem) int { return cmp.Compare(a.ID, b.ID) }
	for _, item := range sortedValues(r.st.orderItems, byID) {
		if item.OrderID == id {
			o.Items = append(o.Items, item)
		}
	}
	return o, nil
}

func (r ordersRepo) LockOrder(_ context.Context, id int64) (domain.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (r ordersRepo) UpdateOrder(_ context.Context, o domain.Order) error {
	if _, ok := r.st.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	o.Items = nil
	r.st.orders[o.ID] = o
	return nil
}

func (r ordersRepo) CreateOrderItem(_ context.Context, item *domain.OrderItem) error {
	if _, ok := r.st.orders[item.OrderID]; !ok {
		return constraintErr("order_items.order_id %d", item.OrderID)
	}
	if _, ok := r.st.products[item.ProductID]; !ok {
		return constraintErr("order_items.product_id %d", item.ProductID)
	}
	if item.Quantity < 1 {
		return constraintErr("order_items.quantity %d", item.Quantity)
	}
	item.ID = r.st.nextID()
	r.st.orderItems[item.ID] = *item
	return nil
}

func (r ordersRepo) ListOrdersByStatus(
	_ context.Context, status domain.OrderStatus,
) ([]domain.Order, error) {
	return r.newestFirst(func(o domain.Order) bool { return o.Status == status }), nil
}

func (r ordersRepo) ListOrdersByCustomer(
	_ context.Context, customerID domain.CustomerID,
) ([]domain.Order, error) {
	return r.newestFirst(func(o domain.Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (r ordersRepo) newestFirst(keep func(domain.Order) bool) []domain.Order {
	var orders []domain.Order
	for _, o := range sortedValues(r.st.orders, newestOrderFirst) {
		if keep(o) {
			orders = append(orders, o)
		}
	}
	return orders
}

func newestOrderFirst(a, b domain.Order) int {
	if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}
