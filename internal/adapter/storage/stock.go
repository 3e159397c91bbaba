package storage

import (
	"context"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var (
	_ port.StockRepository       = (*StockRepository)(nil)
	_ port.StockAlertsRepository = (*StockAlertsRepository)(nil)
)

type StockRepository struct {
	db dbtx
}

func NewStockRepository(db dbtx) StockRepository {
	return StockRepository{db}
}

func scanStock(row scanner) (domain.StockBalance, error) {
	var b domain.StockBalance
	err := row.Scan(&b.ProductID, &b.Quantity, &b.LastUpdated)
	return b, err
}

func (r StockRepository) ReadStock(
	ctx context.Context, productID int64,
) (domain.StockBalance, error) {
	const op = "StockRepository.ReadStock"

	query := `
		SELECT product_id, quantity, last_updated
		FROM stock_balances
		WHERE product_id = $1;`

	b, err := scanStock(r.db.QueryRowContext(ctx, query, productID))
	if err != nil {
		return domain.StockBalance{}, mapErr(op, err)
	}
	return b, nil
}

func (r StockRepository) StoreStock(
	ctx context.Context, b domain.StockBalance,
) error {
	const op = "StockRepository.StoreStock"

	query := `
		INSERT INTO stock_balances (product_id, quantity, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			last_updated = EXCLUDED.last_updated;`

	_, err := r.db.ExecContext(ctx, query, b.ProductID, b.Quantity, b.LastUpdated)
	if err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r StockRepository) ListStockAtOrBelow(
	ctx context.Context, threshold int,
) ([]domain.StockBalance, error) {
	const op = "StockRepository.ListStockAtOrBelow"

	query := `
		SELECT product_id, quantity, last_updated
		FROM stock_balances
		WHERE quantity <= $1
		ORDER BY product_id;`

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, mapErr(op, err)
	}
	bs, err := collect(rows, scanStock)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return bs, nil
}

func (r StockRepository) ListStockRecords(
	ctx context.Context,
) ([]domain.StockRecord, error) {
	const op = "StockRepository.ListStockRecords"

	query := `
		SELECT s.product_id, p.name, s.quantity, s.last_updated
		FROM stock_balances s
		JOIN products p ON p.id = s.product_id
		ORDER BY s.product_id;`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapErr(op, err)
	}
	rs, err := collect(rows, func(row scanner) (domain.StockRecord, error) {
		var v domain.StockRecord
		err := row.Scan(&v.ProductID, &v.ProductName, &v.Quantity, &v.LastUpdated)
		return v, err
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	return rs, nil
}

type StockAlertsRepository struct {
	db dbtx
}

func NewStockAlertsRepository(db dbtx) StockAlertsRepository {
	return StockAlertsRepository{db}
}

func (r StockAlertsRepository) StoreAlerts(
	ctx context.Context, alerts []domain.StockAlert,
) error {
	const op = "StockAlertsRepository.StoreAlerts"

	query := `
		INSERT INTO stock_alerts (product_id, quantity, threshold, raised_at)
		VALUES ($1, $2, $3, $4);`

	for _, a := range alerts {
		_, err := r.db.ExecContext(ctx, query,
			a.ProductID, a.Quantity, a.Threshold, a.RaisedAt)
		if err != nil {
			return mapErr(op, err)
		}
	}
	return nil
}

// ListAlerts returns up to limit alerts, newest first. Non-positive limit means all.
func (r StockAlertsRepository) ListAlerts(
	ctx context.Context, limit int,
) ([]domain.StockAlert, error) {
	const op = "StockAlertsRepository.ListAlerts"

	query := `
		SELECT id, product_id, quantity, threshold, raised_at
		FROM stock_alerts
		ORDER BY raised_at DESC, id DESC
		LIMIT NULLIF($1, 0);`

	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapErr(op, err)
	}
	alerts, err := collect(rows, func(row scanner) (domain.StockAlert, error) {
		var a domain.StockAlert
		err := row.Scan(&a.ID, &a.ProductID, &a.Quantity, &a.Threshold, &a.RaisedAt)
		return a, err
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	return alerts, nil
}
