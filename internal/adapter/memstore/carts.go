package memstore

import (
	"cmp"
	"context"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.CartsRepository = (*cartsRepo)(nil)

type cartsRepo struct {
	st *state
}

func (r cartsRepo) CreateCart(_ context.Context, c *domain.Cart) error {
	for _, other := range r.st.carts {
		if other.CustomerID == c.CustomerID {
			return constraintErr("carts.customer_id %s is taken", c.CustomerID)
		}
	}
	c.ID = r.st.nextID()
	c.Items = nil
	r.st.carts[c.ID] = *c
	return nil
}

func (r cartsRepo) ReadCart(_ context.Context, id int64) (domain.Cart, error) {
	c, ok := r.st.carts[id]
	if !ok {
		return domain.Cart{}, domain.ErrNotFound
	}
	return r.withItems(c), nil
}

func (r cartsRepo) ReadCartByCustomer(
	_ context.Context, customerID domain.CustomerID,
) (domain.Cart, error) {
	for _, c := range r.st.carts {
		if c.CustomerID == customerID {
			return r.withItems(c), nil
		}
	}
	return domain.Cart{}, domain.ErrNotFound
}

func (r cartsRepo) withItems(c domain.Cart) domain.Cart {
	byID := func(a, b domain.CartItem) int { return cmp.Compare(a.ID, b.ID) }
	for _, item := range sortedValues(r.st.cartItems, byID) {
		if item.CartID != c.ID {
			continue
		}
		item.Product = r.st.products[item.ProductID]
		c.Items = append(c.Items, item)
	}
	return c
}

func (r cartsRepo) LockCart(_ context.Context, id int64) (domain.Cart, error) {
	c, ok := r.st.carts[id]
	if !ok {
		return domain.Cart{}, domain.ErrNotFound
	}
	return c, nil
}

func (r cartsRepo) ReadCartItem(
	_ context.Context, cartID, productID int64,
) (domain.CartItem, error) {
	for _, item := range r.st.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			return item, nil
		}
	}
	return domain.CartItem{}, domain.ErrNotFound
}

func (r cartsRepo) CreateCartItem(ctx context.Context, item *domain.CartItem) error {
	if _, ok := r.st.carts[item.CartID]; !ok {
		return constraintErr("cart_items.cart_id %d", item.CartID)
	}
	if _, ok := r.st.products[item.ProductID]; !ok {
		return constraintErr("cart_items.product_id %d", item.ProductID)
	}
	if item.Quantity < 1 {
		return constraintErr("cart_items.quantity %d", item.Quantity)
	}
	if _, err := r.ReadCartItem(ctx, item.CartID, item.ProductID); err == nil {
		return constraintErr("cart_items (%d, %d) exists", item.CartID, item.ProductID)
	}

	item.ID = r.st.nextID()
	stored := *item
	stored.Product = domain.Product{}
	r.st.cartItems[item.ID] = stored
	return nil
}

func (r cartsRepo) UpdateCartItemQuantity(
	_ context.Context, itemID int64, quantity int,
) error {
	item, ok := r.st.cartItems[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 1 {
		return constraintErr("cart_items.quantity %d", quantity)
	}
	item.Quantity = quantity
	r.st.cartItems[itemID] = item
	return nil
}

func (r cartsRepo) DeleteCartItem(_ context.Context, cartID, itemID int64) error {
	item, ok := r.st.cartItems[itemID]
	if !ok || item.CartID != cartID {
		return domain.ErrNotFound
	}
	delete(r.st.cartItems, itemID)
	return nil
}

func (r cartsRepo) DeleteCartItems(_ context.Context, cartID int64) (int, error) {
	var n int
	for id, item := range r.st.cartItems {
		if item.CartID == cartID {
			delete(r.st.cartItems, id)
			n++
		}
	}
	return n, nil
}
