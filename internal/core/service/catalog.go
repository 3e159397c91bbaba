package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

func (s Service) ListAvailable(ctx context.Context) (ps []domain.Product, err error) {
	const op = "Service.ListAvailable"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		ps, err = r.Products.ListActiveProducts(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// Search returns active products whose name contains query, ignoring case.
func (s Service) Search(ctx context.Context, query string) (ps []domain.Product, err error) {
	const op = "Service.Search"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		ps, err = r.Products.SearchActiveProducts(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (s Service) ProductBySlug(ctx context.Context, slug string) (p domain.Product, err error) {
	const op = "Service.ProductBySlug"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		p, err = r.Products.ReadProductBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if !p.Active {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreateProduct persists p, deriving a unique slug from the name
// when p has none.
func (s Service) CreateProduct(ctx context.Context, p domain.Product) (_ domain.Product, err error) {
	const op = "Service.CreateProduct"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	if err = validateProduct(p); err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		return domain.Product{}, err
	}

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		return s.createProduct(ctx, r, &p)
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func validateProduct(p domain.Product) error {
	if p.Name == "" || p.Price.IsNegative() {
		return fmt.Errorf("name and price: %w", domain.ErrInvalidArgument)
	}
	return nil
}

func (s Service) createProduct(
	ctx context.Context, r port.Repositories, p *domain.Product,
) error {
	if p.Slug == "" {
		slug, err := s.uniqueSlug(ctx, r, p.Name)
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Price = p.Price.Round(2)
	return r.Products.CreateProduct(ctx, p)
}

func (s Service) uniqueSlug(
	ctx context.Context, r port.Repositories, name string,
) (string, error) {
	base := domain.Slugify(name)
	for n := 1; ; n++ {
		candidate := domain.SlugCandidate(base, n)
		exists, err := r.Products.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// UpdateProduct re-saves p. A stored slug is kept when p has none.
func (s Service) UpdateProduct(ctx context.Context, p domain.Product) (_ domain.Product, err error) {
	const op = "Service.UpdateProduct"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	if err = validateProduct(p); err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		return domain.Product{}, err
	}

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		stored, err := r.Products.LockProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		if p.Slug == "" {
			p.Slug = stored.Slug
		} else if p.Slug != stored.Slug {
			exists, err := r.Products.SlugExists(ctx, p.Slug)
			if err != nil {
				return err
			}
			if exists {
				return errors.Join(domain.ErrInvalidArgument,
					fmt.Errorf("slug %q is taken", p.Slug))
			}
		}
		p.CreatedAt = stored.CreatedAt
		p.UpdatedAt = s.now()
		p.Price = p.Price.Round(2)
		return r.Products.UpdateProduct(ctx, p)
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
