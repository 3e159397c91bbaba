package service_test

import (
	"testing"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	t.Run("SlugDerivedFromName", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Test Product", "9.99", true)
		assert.Equal(t, "test-product", p.Slug)
		assert.NotZero(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("SlugIsUnique", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		first := f.product(t, "Test Product", "9.99", true)
		second := f.product(t, "Test Product", "9.99", true)
		third := f.product(t, "test  product", "9.99", true)

		assert.Equal(t, "test-product", first.Slug)
		assert.Equal(t, "test-product-2", second.Slug)
		assert.Equal(t, "test-product-3", third.Slug)
	})

	t.Run("ExplicitSlugKept", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p, err := f.svc.CreateProduct(t.Context(), domain.Product{
			Name: "Kettle", Slug: "steel-kettle", Price: dec("10"),
		})
		require.NoError(t, err)
		assert.Equal(t, "steel-kettle", p.Slug)
		assert.True(t, dec("10.00").Equal(p.Price))
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		_, err := f.svc.CreateProduct(t.Context(), domain.Product{Price: dec("1")})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = f.svc.CreateProduct(t.Context(), domain.Product{
			Name: "Kettle", Price: dec("-1"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestUpdateProduct(t *testing.T) {
	t.Run("ResaveKeepsSlug", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Kettle", "10.00", true)

		p.Name = "Electric Kettle"
		p.Slug = ""
		updated, err := f.svc.UpdateProduct(t.Context(), p)
		require.NoError(t, err)
		assert.Equal(t, "kettle", updated.Slug)
		assert.Equal(t, "Electric Kettle", updated.Name)
		assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	})

	t.Run("SlugTaken", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		f.product(t, "Kettle", "10.00", true)
		p := f.product(t, "Teapot", "10.00", true)

		p.Slug = "kettle"
		_, err := f.svc.UpdateProduct(t.Context(), p)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		p := f.product(t, "Phone", "10.00", true)

		blank := p
		blank.Name = ""
		_, err := f.svc.UpdateProduct(t.Context(), blank)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		negative := p
		negative.Price = dec("-5.00")
		_, err = f.svc.UpdateProduct(t.Context(), negative)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		ps, err := f.svc.ListAvailable(t.Context())
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, "Phone", ps[0].Name)
		assert.True(t, dec("10.00").Equal(ps[0].Price))
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t, service.Config{})
		_, err := f.svc.UpdateProduct(t.Context(), domain.Product{ID: 42, Name: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCatalogQueries(t *testing.T) {
	f := newFixture(t, service.Config{})
	f.product(t, "Red Kettle", "10.00", true)
	f.product(t, "Blue kettle", "12.00", true)
	f.product(t, "Green Kettle", "11.00", false)
	f.product(t, "Teapot", "5.00", true)

	t.Run("ListAvailable", func(t *testing.T) {
		ps, err := f.svc.ListAvailable(t.Context())
		require.NoError(t, err)
		assert.Len(t, ps, 3)
		for _, p := range ps {
			assert.True(t, p.Active)
		}
	})

	t.Run("SearchIgnoresCase", func(t *testing.T) {
		ps, err := f.svc.Search(t.Context(), "KETTLE")
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "Red Kettle", ps[0].Name)
		assert.Equal(t, "Blue kettle", ps[1].Name)
	})

	t.Run("SearchNoMatch", func(t *testing.T) {
		ps, err := f.svc.Search(t.Context(), "spoon")
		require.NoError(t, err)
		assert.Empty(t, ps)
	})

	t.Run("ProductBySlug", func(t *testing.T) {
		p, err := f.svc.ProductBySlug(t.Context(), "teapot")
		require.NoError(t, err)
		assert.Equal(t, "Teapot", p.Name)

		_, err = f.svc.ProductBySlug(t.Context(), "green-kettle")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.svc.ProductBySlug(t.Context(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
