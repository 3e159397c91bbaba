package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/shopspring/decimal"
)

// Cart returns the customer cart with its items, creating an empty one
// on first use.
func (s Service) Cart(
	ctx context.Context, customerID domain.CustomerID,
) (c domain.Cart, err error) {
	const op = "Service.Cart"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		c, err = r.Carts.ReadCartByCustomer(ctx, customerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c = domain.Cart{CustomerID: customerID, CreatedAt: s.now()}
		return r.Carts.CreateCart(ctx, &c)
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// AddToCart puts quantity units of the product into the cart.
//
// Inactive products are reported as [domain.ErrNotFound]. Only the requested
// quantity is checked against the stock balance, a product without a balance
// is not constrained.
func (s Service) AddToCart(
	ctx context.Context, cartID, productID int64, quantity int,
) (item domain.CartItem, err error) {
	const op = "Service.AddToCart"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	if quantity < 1 {
		err = fmt.Errorf("%s: quantity %d: %w", op, quantity, domain.ErrInvalidArgument)
		return domain.CartItem{}, err
	}

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		item, err = s.addToCart(ctx, r, cartID, productID, quantity)
		return err
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s Service) addToCart(
	ctx context.Context, r port.Repositories,
	cartID, productID int64, quantity int,
) (domain.CartItem, error) {
	if _, err := r.Carts.LockCart(ctx, cartID); err != nil {
		return domain.CartItem{}, fmt.Errorf("cart %d: %w", cartID, err)
	}

	product, err := r.Products.ReadProduct(ctx, productID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("product %d: %w", productID, err)
	}
	if !product.Active {
		return domain.CartItem{}, fmt.Errorf(
			"product %d is inactive: %w", productID, domain.ErrNotFound,
		)
	}

	if err := checkStock(ctx, r, productID, quantity); err != nil {
		return domain.CartItem{}, err
	}

	item, err := r.Carts.ReadCartItem(ctx, cartID, productID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		item = domain.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := r.Carts.CreateCartItem(ctx, &item); err != nil {
			return domain.CartItem{}, err
		}
	case err != nil:
		return domain.CartItem{}, err
	default:
		item.Quantity += quantity
		err := r.Carts.UpdateCartItemQuantity(ctx, item.ID, item.Quantity)
		if err != nil {
			return domain.CartItem{}, err
		}
	}

	item.Product = product
	return item, nil
}

func checkStock(
	ctx context.Context, r port.Repositories, productID int64, quantity int,
) error {
	b, err := r.Stock.ReadStock(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if b.Quantity < quantity {
		return fmt.Errorf(
			"product %d: requested %d, on hand %d: %w",
			productID, quantity, b.Quantity, domain.ErrInsufficientStock,
		)
	}
	return nil
}

// CartTotal sums the lines at the products' current prices.
func (s Service) CartTotal(
	ctx context.Context, cartID int64,
) (total decimal.Decimal, err error) {
	const op = "Service.CartTotal"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		c, err := r.Carts.ReadCart(ctx, cartID)
		if err != nil {
			return err
		}
		total = c.TotalPrice()
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// ClearCart deletes every line of the cart and returns their count.
func (s Service) ClearCart(ctx context.Context, cartID int64) (n int, err error) {
	const op = "Service.ClearCart"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		if _, err := r.Carts.LockCart(ctx, cartID); err != nil {
			return err
		}
		n, err = r.Carts.DeleteCartItems(ctx, cartID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s Service) RemoveCartItem(ctx context.Context, cartID, itemID int64) (err error) {
	const op = "Service.RemoveCartItem"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		if _, err := r.Carts.LockCart(ctx, cartID); err != nil {
			return err
		}
		return r.Carts.DeleteCartItem(ctx, cartID, itemID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
