package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.OrdersRepository = (*OrdersRepository)(nil)

const orderColumns = `
	id, customer_id, status, total_amount, shipping_address, order_date`

type OrdersRepository struct {
	db dbtx
}

func NewOrdersRepository(db dbtx) OrdersRepository {
	return OrdersRepository{db}
}

func scanOrder(row scanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status,
		&o.TotalAmount, &o.ShippingAddress, &o.OrderDate,
	)
	return o, err
}

func (r OrdersRepository) CreateOrder(ctx context.Context, o *domain.Order) error {
	const op = "OrdersRepository.CreateOrder"

	query := `
		INSERT INTO orders (
			customer_id, status, total_amount, shipping_address, order_date
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`

	err := r.db.QueryRowContext(ctx, query,
		o.CustomerID, o.Status, o.TotalAmount, o.ShippingAddress, o.OrderDate,
	).Scan(&o.ID)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r OrdersRepository) ReadOrder(ctx context.Context, id int64) (domain.Order, error) {
	const op = "OrdersRepository.ReadOrder"

	o, err := r.readOrder(ctx, "WHERE id = $1", id)
	if err != nil {
		return domain.Order{}, mapErr(op, err)
	}

	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id;`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return domain.Order{}, mapErr(op, err)
	}
	o.Items, err = collect(rows, func(row scanner) (domain.OrderItem, error) {
		var item domain.OrderItem
		err := row.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
		)
		return item, err
	})
	if err != nil {
		return domain.Order{}, mapErr(op, err)
	}
	return o, nil
}

func (r OrdersRepository) LockOrder(ctx context.Context, id int64) (domain.Order, error) {
	const op = "OrdersRepository.LockOrder"
	o, err := r.readOrder(ctx, "WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return domain.Order{}, mapErr(op, err)
	}
	return o, nil
}

func (r OrdersRepository) readOrder(
	ctx context.Context, where string, args ...any,
) (domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders %s;", orderColumns, where)
	return scanOrder(r.db.QueryRowContext(ctx, query, args...))
}

func (r OrdersRepository) UpdateOrder(ctx context.Context, o domain.Order) error {
	const op = "OrdersRepository.UpdateOrder"

	query := `
		UPDATE orders SET
			status = $2,
			total_amount = $3,
			shipping_address = $4
		WHERE id = $1;`

	return execOne(ctx, r.db, op, query,
		o.ID, o.Status, o.TotalAmount, o.ShippingAddress)
}

func (r OrdersRepository) CreateOrderItem(
	ctx context.Context, item *domain.OrderItem,
) error {
	const op = "OrdersRepository.CreateOrderItem"

	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`

	err := r.db.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r OrdersRepository) ListOrdersByStatus(
	ctx context.Context, status domain.OrderStatus,
) ([]domain.Order, error) {
	const op = "OrdersRepository.ListOrdersByStatus"
	return r.list(ctx, op, "WHERE status = $1", status)
}

func (r OrdersRepository) ListOrdersByCustomer(
	ctx context.Context, customerID domain.CustomerID,
) ([]domain.Order, error) {
	const op = "OrdersRepository.ListOrdersByCustomer"
	return r.list(ctx, op, "WHERE customer_id = $1", customerID)
}

// list returns matching orders without items, newest first.
func (r OrdersRepository) list(
	ctx context.Context, op, where string, args ...any,
) ([]domain.Order, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM orders %s ORDER BY order_date DESC, id DESC;",
		orderColumns, where,
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	orders, err := collect(rows, scanOrder)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return orders, nil
}
