package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.CartsRepository = (*CartsRepository)(nil)

type CartsRepository struct {
	db dbtx
}

func NewCartsRepository(db dbtx) CartsRepository {
	return CartsRepository{db}
}

func (r CartsRepository) CreateCart(ctx context.Context, c *domain.Cart) error {
	const op = "CartsRepository.CreateCart"

	query := `
		INSERT INTO carts (customer_id, created_at)
		VALUES ($1, $2)
		RETURNING id;`

	err := r.db.QueryRowContext(ctx, query, c.CustomerID, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r CartsRepository) ReadCart(ctx context.Context, id int64) (domain.Cart, error) {
	const op = "CartsRepository.ReadCart"
	return r.readWithItems(ctx, op, "WHERE id = $1", id)
}

func (r CartsRepository) ReadCartByCustomer(
	ctx context.Context, customerID domain.CustomerID,
) (domain.Cart, error) {
	const op = "CartsRepository.ReadCartByCustomer"
	return r.readWithItems(ctx, op, "WHERE customer_id = $1", customerID)
}

func (r CartsRepository) LockCart(ctx context.Context, id int64) (domain.Cart, error) {
	const op = "CartsRepository.LockCart"
	c, err := r.readCart(ctx, "WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return domain.Cart{}, mapErr(op, err)
	}
	return c, nil
}

func (r CartsRepository) readCart(
	ctx context.Context, where string, args ...any,
) (domain.Cart, error) {
	query := fmt.Sprintf(
		"SELECT id, customer_id, created_at FROM carts %s;", where,
	)
	var c domain.Cart
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.CustomerID, &c.CreatedAt,
	)
	return c, err
}

func (r CartsRepository) readWithItems(
	ctx context.Context, op, where string, args ...any,
) (domain.Cart, error) {
	c, err := r.readCart(ctx, where, args...)
	if err != nil {
		return domain.Cart{}, mapErr(op, err)
	}

	query := fmt.Sprintf(`
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, %s
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id;`, qualified("p", productColumns))

	rows, err := r.db.QueryContext(ctx, query, c.ID)
	if err != nil {
		return domain.Cart{}, mapErr(op, err)
	}
	c.Items, err = collect(rows, func(row scanner) (domain.CartItem, error) {
		var (
			item domain.CartItem
			p    = &item.Product
		)
		err := row.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.CreatedAt, &p.UpdatedAt, &p.Slug, &p.Active,
		)
		return item, err
	})
	if err != nil {
		return domain.Cart{}, mapErr(op, err)
	}
	return c, nil
}

func (r CartsRepository) ReadCartItem(
	ctx context.Context, cartID, productID int64,
) (domain.CartItem, error) {
	const op = "CartsRepository.ReadCartItem"

	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2;`

	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, query, cartID, productID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
	)
	if err != nil {
		return domain.CartItem{}, mapErr(op, err)
	}
	return item, nil
}

func (r CartsRepository) CreateCartItem(
	ctx context.Context, item *domain.CartItem,
) error {
	const op = "CartsRepository.CreateCartItem"

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id;`

	err := r.db.QueryRowContext(ctx, query,
		item.CartID, item.ProductID, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r CartsRepository) UpdateCartItemQuantity(
	ctx context.Context, itemID int64, quantity int,
) error {
	const op = "CartsRepository.UpdateCartItemQuantity"
	query := `UPDATE cart_items SET quantity = $2 WHERE id = $1;`
	return execOne(ctx, r.db, op, query, itemID, quantity)
}

func (r CartsRepository) DeleteCartItem(
	ctx context.Context, cartID, itemID int64,
) error {
	const op = "CartsRepository.DeleteCartItem"
	query := `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2;`
	return execOne(ctx, r.db, op, query, itemID, cartID)
}

func (r CartsRepository) DeleteCartItems(
	ctx context.Context, cartID int64,
) (int, error) {
	const op = "CartsRepository.DeleteCartItems"

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1;`, cartID)
	if err != nil {
		return 0, mapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}
