package memstore

import (
	"cmp"
	"context"
	"strings"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.ProductsRepository = (*productsRepo)(nil)

type productsRepo struct {
	st *state
}

func (r productsRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	if p.Slug == "" {
		return constraintErr("products.slug is empty")
	}
	if r.slugTaken(p.Slug, 0) {
		return constraintErr("products.slug %q is taken", p.Slug)
	}
	p.ID = r.st.nextID()
	r.st.products[p.ID] = *p
	return nil
}

func (r productsRepo) UpdateProduct(_ context.Context, p domain.Product) error {
	if _, ok := r.st.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if p.Slug == "" || r.slugTaken(p.Slug, p.ID) {
		return constraintErr("products.slug %q", p.Slug)
	}
	r.st.products[p.ID] = p
	return nil
}

func (r productsRepo) slugTaken(slug string, exceptID int64) bool {
	for id, p := range r.st.products {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r productsRepo) ReadProduct(_ context.Context, id int64) (domain.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (r productsRepo) LockProduct(ctx context.Context, id int64) (domain.Product, error) {
	return r.ReadProduct(ctx, id)
}

func (r productsRepo) ReadProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	for _, p := range r.st.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (r productsRepo) ReadProductByName(_ context.Context, name string) (domain.Product, error) {
	ps := r.filter(func(p domain.Product) bool { return p.Name == name })
	if len(ps) == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return ps[0], nil
}

func (r productsRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return r.slugTaken(slug, 0), nil
}

func (r productsRepo) ListActiveProducts(context.Context) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.Active }), nil
}

func (r productsRepo) SearchActiveProducts(
	_ context.Context, query string,
) ([]domain.Product, error) {
	q := strings.ToLower(query)
	return r.filter(func(p domain.Product) bool {
		return p.Active && strings.Contains(strings.ToLower(p.Name), q)
	}), nil
}

func (r productsRepo) filter(keep func(domain.Product) bool) []domain.Product {
	var ps []domain.Product
	byID := func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) }
	for _, p := range sortedValues(r.st.products, byID) {
		if keep(p) {
			ps = append(ps, p)
		}
	}
	return ps
}
