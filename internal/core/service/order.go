package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/shopspring/decimal"
)

// NewOrder creates a pending order without items.
func (s Service) NewOrder(
	ctx context.Context, customerID domain.CustomerID, shippingAddress string,
) (o domain.Order, err error) {
	const op = "Service.NewOrder"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		o, err = s.newOrder(ctx, r, customerID, shippingAddress, decimal.Zero)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

func (s Service) newOrder(
	ctx context.Context, r port.Repositories,
	customerID domain.CustomerID, shippingAddress string, total decimal.Decimal,
) (domain.Order, error) {
	o := domain.Order{
		CustomerID:      customerID,
		Status:          domain.OrderPending,
		TotalAmount:     total,
		ShippingAddress: shippingAddress,
		OrderDate:       s.now(),
	}
	if err := r.Orders.CreateOrder(ctx, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// PlaceOrder checks out the customer cart into a new pending order.
func (s Service) PlaceOrder(
	ctx context.Context, customerID domain.CustomerID, shippingAddress string,
) (o domain.Order, err error) {
	const op = "Service.PlaceOrder"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	var adjs []domain.StockAdjustment
	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		c, err := r.Carts.ReadCartByCustomer(ctx, customerID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("cart is empty: %w", domain.ErrInvalidArgument)
		}
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return fmt.Errorf("cart is empty: %w", domain.ErrInvalidArgument)
		}

		o, err = s.newOrder(ctx, r, customerID, shippingAddress, c.TotalPrice())
		if err != nil {
			return err
		}
		o, adjs, err = s.createFromCart(ctx, r, o.ID, c.ID)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publishStock(ctx, adjs...)
	s.publishOrder(ctx, o)
	return o, nil
}

// CreateFromCart moves every cart line into the order, freezing the current
// product prices, empties the cart and recomputes the order total.
//
// Stock balances are decremented only when the service is configured
// with DecrementStockOnCheckout.
func (s Service) CreateFromCart(
	ctx context.Context, orderID, cartID int64,
) (o domain.Order, err error) {
	const op = "Service.CreateFromCart"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	var adjs []domain.StockAdjustment
	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		o, adjs, err = s.createFromCart(ctx, r, orderID, cartID)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publishStock(ctx, adjs...)
	return o, nil
}

func (s Service) createFromCart(
	ctx context.Context, r port.Repositories, orderID, cartID int64,
) (domain.Order, []domain.StockAdjustment, error) {
	if _, err := r.Orders.LockOrder(ctx, orderID); err != nil {
		return domain.Order{}, nil, fmt.Errorf("order %d: %w", orderID, err)
	}
	if _, err := r.Carts.LockCart(ctx, cartID); err != nil {
		return domain.Order{}, nil, fmt.Errorf("cart %d: %w", cartID, err)
	}

	c, err := r.Carts.ReadCart(ctx, cartID)
	if err != nil {
		return domain.Order{}, nil, err
	}

	var adjs []domain.StockAdjustment
	for _, line := range c.Items {
		if s.cfg.DecrementStockOnCheckout {
			adj, ok, err := s.decrementStock(ctx, r, line.ProductID, line.Quantity)
			if err != nil {
				return domain.Order{}, nil, err
			}
			if ok {
				adjs = append(adjs, adj)
			}
		}

		item := domain.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		}
		if err := r.Orders.CreateOrderItem(ctx, &item); err != nil {
			return domain.Order{}, nil, err
		}
	}

	if _, err := r.Carts.DeleteCartItems(ctx, cartID); err != nil {
		return domain.Order{}, nil, err
	}

	o, err := r.Orders.ReadOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	o.TotalAmount = o.ItemsTotal()
	if err := r.Orders.UpdateOrder(ctx, o); err != nil {
		return domain.Order{}, nil, err
	}
	return o, adjs, nil
}

// decrementStock takes quantity units from the product balance.
// A product without a balance is left unconstrained and reported with ok=false.
func (s Service) decrementStock(
	ctx context.Context, r port.Repositories, productID int64, quantity int,
) (adj domain.StockAdjustment, ok bool, err error) {
	if _, err := r.Products.LockProduct(ctx, productID); err != nil {
		return adj, false, fmt.Errorf("product %d: %w", productID, err)
	}

	b, err := r.Stock.ReadStock(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return adj, false, nil
	}
	if err != nil {
		return adj, false, err
	}

	next, err := b.Adjusted(-quantity, s.now())
	if err != nil {
		return adj, false, fmt.Errorf(
			"product %d: ordered %d, on hand %d: %w",
			productID, quantity, b.Quantity, domain.ErrInsufficientStock,
		)
	}
	if err := r.Stock.StoreStock(ctx, next); err != nil {
		return adj, false, err
	}

	adj = domain.StockAdjustment{
		ProductID: productID,
		Delta:     -quantity,
		Quantity:  next.Quantity,
		At:        next.LastUpdated,
	}
	return adj, true, nil
}

// TransitionToProcessing sets the shipping address and moves the order
// to processing whatever its current status is.
func (s Service) TransitionToProcessing(
	ctx context.Context, orderID int64, shippingAddress string,
) (o domain.Order, err error) {
	const op = "Service.TransitionToProcessing"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	o, err = s.setStatus(ctx, orderID, func(o *domain.Order) {
		o.ShippingAddress = shippingAddress
		o.Status = domain.OrderProcessing
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publishOrder(ctx, o)
	return o, nil
}

// Cancel moves the order to cancelled whatever its current status is.
func (s Service) Cancel(ctx context.Context, orderID int64) (o domain.Order, err error) {
	const op = "Service.Cancel"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	o, err = s.setStatus(ctx, orderID, func(o *domain.Order) {
		o.Status = domain.OrderCancelled
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publishOrder(ctx, o)
	return o, nil
}

func (s Service) setStatus(
	ctx context.Context, orderID int64, apply func(*domain.Order),
) (o domain.Order, err error) {
	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		o, err = r.Orders.LockOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %d: %w", orderID, err)
		}
		apply(&o)
		return r.Orders.UpdateOrder(ctx, o)
	})
	return o, err
}

func (s Service) Order(ctx context.Context, orderID int64) (o domain.Order, err error) {
	const op = "Service.Order"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		o, err = r.Orders.ReadOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// OrdersByStatus returns orders with the status, newest first.
func (s Service) OrdersByStatus(
	ctx context.Context, status domain.OrderStatus,
) (orders []domain.Order, err error) {
	const op = "Service.OrdersByStatus"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		orders, err = r.Orders.ListOrdersByStatus(ctx, status)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// CustomerOrders returns the customer orders, newest first.
func (s Service) CustomerOrders(
	ctx context.Context, customerID domain.CustomerID,
) (orders []domain.Order, err error) {
	const op = "Service.CustomerOrders"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		orders, err = r.Orders.ListOrdersByCustomer(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}
