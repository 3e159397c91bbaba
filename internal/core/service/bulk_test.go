package service_test

import (
	"testing"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGoods(t *testing.T) {
	t.Run("CreatesAndOverwrites", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		existing := f.product(t, "Kettle", "10.00", false)
		f.stock(t, existing.ID, 3)

		n, err := f.svc.LoadGoods(t.Context(), []domain.GoodsRecord{
			{Name: "Kettle", Description: "ignored", Price: dec("99.00"), Quantity: 12},
			{Name: "Teapot", Description: "Porcelain", Price: dec("7.50"), Quantity: 4},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		rs, err := f.svc.StockReport(t.Context())
		require.NoError(t, err)
		require.Len(t, rs, 2)
		assert.Equal(t, "Kettle", rs[0].ProductName)
		assert.Equal(t, 12, rs[0].Quantity)
		assert.Equal(t, "Teapot", rs[1].ProductName)
		assert.Equal(t, 4, rs[1].Quantity)

		teapot, err := f.svc.ProductBySlug(t.Context(), "teapot")
		require.NoError(t, err)
		assert.True(t, teapot.Active)
		assert.Equal(t, "Porcelain", teapot.Description)

		_, err = f.svc.ProductBySlug(t.Context(), "kettle")
		assert.ErrorIs(t, err, domain.ErrNotFound, "existing product stays inactive")
	})

	t.Run("InvalidRecordLoadsNothing", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		_, err := f.svc.LoadGoods(t.Context(), []domain.GoodsRecord{
			{Name: "Teapot", Price: dec("7.50"), Quantity: 4},
			{Name: "Kettle", Price: dec("1.00"), Quantity: -1},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		rs, err := f.svc.StockReport(t.Context())
		require.NoError(t, err)
		assert.Empty(t, rs)
	})
}
