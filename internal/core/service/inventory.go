package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// AdjustStock adds delta to the product stock balance, creating the balance
// when the product has none.
//
// Fails with [domain.ErrInvalidState] when the quantity would become negative.
func (s Service) AdjustStock(
	ctx context.Context, productID int64, delta int,
) (b domain.StockBalance, err error) {
	const op = "Service.AdjustStock"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		b, err = s.adjustStock(ctx, r, productID, delta)
		return err
	})
	if err != nil {
		return domain.StockBalance{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publishStock(ctx, domain.StockAdjustment{
		ProductID: productID,
		Delta:     delta,
		Quantity:  b.Quantity,
		At:        b.LastUpdated,
	})
	return b, nil
}

func (s Service) adjustStock(
	ctx context.Context, r port.Repositories, productID int64, delta int,
) (domain.StockBalance, error) {
	if _, err := r.Products.LockProduct(ctx, productID); err != nil {
		return domain.StockBalance{}, fmt.Errorf("product %d: %w", productID, err)
	}

	current, err := r.Stock.ReadStock(ctx, productID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.StockBalance{}, err
		}
		current = domain.StockBalance{ProductID: productID}
	}

	next, err := current.Adjusted(delta, s.now())
	if err != nil {
		return domain.StockBalance{}, fmt.Errorf(
			"product %d: quantity %d%+d: %w",
			productID, current.Quantity, delta, err,
		)
	}

	if err := r.Stock.StoreStock(ctx, next); err != nil {
		return domain.StockBalance{}, err
	}
	return next, nil
}

// LowStock returns balances with quantity at or below threshold.
// A negative threshold selects the configured default.
func (s Service) LowStock(
	ctx context.Context, threshold int,
) (bs []domain.StockBalance, err error) {
	const op = "Service.LowStock"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	if threshold < 0 {
		threshold = s.cfg.LowStockThreshold
	}

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		bs, err = r.Stock.ListStockAtOrBelow(ctx, threshold)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bs, nil
}

func (s Service) SaveStockAlerts(ctx context.Context, alerts []domain.StockAlert) (err error) {
	const op = "Service.SaveStockAlerts"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		return r.StockAlerts.StoreAlerts(ctx, alerts)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// StockAlerts returns the latest alerts, newest first.
func (s Service) StockAlerts(
	ctx context.Context, limit int,
) (alerts []domain.StockAlert, err error) {
	const op = "Service.StockAlerts"
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	err = s.store.RunInTx(ctx, func(r port.Repositories) error {
		alerts, err = r.StockAlerts.ListAlerts(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return alerts, nil
}
