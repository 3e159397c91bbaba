package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// LoadGoods imports products with their absolute stock quantities.
//
// Products are matched by name; an existing product keeps its attributes and
// only its balance is overwritten. All records are applied in one transaction.
func (s Service) LoadGoods(
	ctx context.Context, records []domain.GoodsRecord,
) (n int, err error) {
	const op = "Service.LoadGoods"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	for i, rec := range records {
		if rec.Name == "" || rec.Quantity < 0 || rec.Price.IsNegative() {
			err = fmt.Errorf("%s: record %d %q: %w",
				op, i, rec.Name, domain.ErrInvalidArgument)
			return 0, err
		}
	}

	var adjs []domain.StockAdjustment
	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		for _, rec := range records {
			adj, err := s.loadGoodsRecord(ctx, r, rec)
			if err != nil {
				return fmt.Errorf("%q: %w", rec.Name, err)
			}
			adjs = append(adjs, adj)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.publishStock(ctx, adjs...)
	return len(records), nil
}

func (s Service) loadGoodsRecord(
	ctx context.Context, r port.Repositories, rec domain.GoodsRecord,
) (domain.StockAdjustment, error) {
	p, err := r.Products.ReadProductByName(ctx, rec.Name)
	if errors.Is(err, domain.ErrNotFound) {
		p = domain.Product{
			Name:        rec.Name,
			Description: rec.Description,
			Price:       rec.Price,
			Active:      true,
		}
		err = s.createProduct(ctx, r, &p)
	}
	if err != nil {
		return domain.StockAdjustment{}, err
	}

	if _, err := r.Products.LockProduct(ctx, p.ID); err != nil {
		return domain.StockAdjustment{}, err
	}

	prev := 0
	current, err := r.Stock.ReadStock(ctx, p.ID)
	switch {
	case err == nil:
		prev = current.Quantity
	case !errors.Is(err, domain.ErrNotFound):
		return domain.StockAdjustment{}, err
	}

	b := domain.StockBalance{
		ProductID:   p.ID,
		Quantity:    rec.Quantity,
		LastUpdated: s.now(),
	}
	if err := r.Stock.StoreStock(ctx, b); err != nil {
		return domain.StockAdjustment{}, err
	}

	return domain.StockAdjustment{
		ProductID: p.ID,
		Delta:     rec.Quantity - prev,
		Quantity:  rec.Quantity,
		At:        b.LastUpdated,
	}, nil
}

// StockReport lists every stock balance with its product name.
func (s Service) StockReport(ctx context.Context) (rs []domain.StockRecord, err error) {
	const op = "Service.StockReport"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		rs, err = r.Stock.ListStockRecords(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rs, nil
}
