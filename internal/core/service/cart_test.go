package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {
	f := newFixture(t, service.Config{})
	customer := uuid.New()

	first := f.cart(t, customer)
	again := f.cart(t, customer)
	other := f.cart(t, uuid.New())

	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Empty(t, first.Items)
}

func TestAddToCart(t *testing.T) {
	t.Run("RepeatedAddIncrementsLine", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "50.00", true)
		f.stock(t, x.ID, 10)
		c := f.cart(t, uuid.New())

		_, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 2)
		require.NoError(t, err)
		item, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		assert.Equal(t, "X", item.Product.Name)

		got := f.cart(t, c.CustomerID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 5, got.Items[0].Quantity)

		total, err := f.svc.CartTotal(t.Context(), c.ID)
		require.NoError(t, err)
		assert.True(t, dec("250.00").Equal(total), total.String())
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "50.00", true)
		f.stock(t, x.ID, 10)
		c := f.cart(t, uuid.New())

		_, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 20)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Empty(t, f.cart(t, c.CustomerID).Items)

		_, err = f.svc.AddToCart(t.Context(), c.ID, x.ID, 4)
		require.NoError(t, err)
		_, err = f.svc.AddToCart(t.Context(), c.ID, x.ID, 11)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)

		got := f.cart(t, c.CustomerID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 4, got.Items[0].Quantity)
	})

	t.Run("NoBalanceIsUnconstrained", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "1.00", true)
		c := f.cart(t, uuid.New())

		item, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, item.Quantity)
	})

	t.Run("InactiveProduct", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "50.00", false)
		f.stock(t, x.ID, 10)
		c := f.cart(t, uuid.New())

		_, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("MissingProductOrCart", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "50.00", true)
		c := f.cart(t, uuid.New())

		_, err := f.svc.AddToCart(t.Context(), c.ID, 999, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.svc.AddToCart(t.Context(), 999, x.ID, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		x := f.product(t, "X", "50.00", true)
		c := f.cart(t, uuid.New())

		_, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestCartTotalFollowsCurrentPrice(t *testing.T) {
	f := newFixture(t, service.Config{})
	x := f.product(t, "X", "50.00", true)
	c := f.cart(t, uuid.New())
	_, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 2)
	require.NoError(t, err)

	x.Price = dec("40.00")
	_, err = f.svc.UpdateProduct(t.Context(), x)
	require.NoError(t, err)

	total, err := f.svc.CartTotal(t.Context(), c.ID)
	require.NoError(t, err)
	assert.True(t, dec("80.00").Equal(total), total.String())
}

func TestClearAndRemove(t *testing.T) {
	f := newFixture(t, service.Config{})
	x := f.product(t, "X", "50.00", true)
	y := f.product(t, "Y", "25.00", true)
	c := f.cart(t, uuid.New())

	itemX, err := f.svc.AddToCart(t.Context(), c.ID, x.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(t.Context(), c.ID, y.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveCartItem(t.Context(), c.ID, itemX.ID))
	err = f.svc.RemoveCartItem(t.Context(), c.ID, itemX.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := f.svc.ClearCart(t.Context(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	total, err := f.svc.CartTotal(t.Context(), c.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}
