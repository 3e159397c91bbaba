package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var _ port.ProductsRepository = (*ProductsRepository)(nil)

const productColumns = `
	id, name, description, price, image_url,
	created_at, updated_at, slug, is_active`

type ProductsRepository struct {
	db dbtx
}

func NewProductsRepository(db dbtx) ProductsRepository {
	return ProductsRepository{db}
}

func scanProduct(row scanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt, &p.Slug, &p.Active,
	)
	return p, err
}

func (r ProductsRepository) CreateProduct(
	ctx context.Context, p *domain.Product,
) error {
	const op = "ProductsRepository.CreateProduct"

	query := `
		INSERT INTO products (
			name, description, price, image_url,
			created_at, updated_at, slug, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.ImageURL,
		p.CreatedAt, p.UpdatedAt, p.Slug, p.Active,
	).Scan(&p.ID)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r ProductsRepository) UpdateProduct(
	ctx context.Context, p domain.Product,
) error {
	const op = "ProductsRepository.UpdateProduct"

	query := `
		UPDATE products SET
			name = $2,
			description = $3,
			price = $4,
			image_url = $5,
			updated_at = $6,
			slug = $7,
			is_active = $8
		WHERE id = $1;`

	return execOne(ctx, r.db, op, query,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL,
		p.UpdatedAt, p.Slug, p.Active,
	)
}

func (r ProductsRepository) readOne(
	ctx context.Context, op, where string, args ...any,
) (domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products %s;", productColumns, where)
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Product{}, mapErr(op, err)
	}
	return p, nil
}

func (r ProductsRepository) ReadProduct(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"
	return r.readOne(ctx, op, "WHERE id = $1", id)
}

func (r ProductsRepository) LockProduct(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "ProductsRepository.LockProduct"
	return r.readOne(ctx, op, "WHERE id = $1 FOR UPDATE", id)
}

func (r ProductsRepository) ReadProductBySlug(
	ctx context.Context, slug string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProductBySlug"
	return r.readOne(ctx, op, "WHERE slug = $1", slug)
}

func (r ProductsRepository) ReadProductByName(
	ctx context.Context, name string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProductByName"
	return r.readOne(ctx, op, "WHERE name = $1 ORDER BY id LIMIT 1", name)
}

func (r ProductsRepository) SlugExists(
	ctx context.Context, slug string,
) (bool, error) {
	const op = "ProductsRepository.SlugExists"

	query := `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, mapErr(op, err)
	}
	return exists, nil
}

func (r ProductsRepository) ListActiveProducts(
	ctx context.Context,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListActiveProducts"
	return r.list(ctx, op, "WHERE is_active ORDER BY id")
}

func (r ProductsRepository) SearchActiveProducts(
	ctx context.Context, query string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.SearchActiveProducts"
	pattern := "%" + escapeLike(query) + "%"
	return r.list(ctx, op,
		`WHERE is_active AND name ILIKE $1 ESCAPE '\' ORDER BY id`, pattern)
}

func (r ProductsRepository) list(
	ctx context.Context, op, where string, args ...any,
) ([]domain.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products %s;", productColumns, where)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	ps, err := collect(rows, scanProduct)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return ps, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
