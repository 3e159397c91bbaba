package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

var (
	_ port.StockRepository       = (*stockRepo)(nil)
	_ port.StockAlertsRepository = (*alertsRepo)(nil)
)

type stockRepo struct {
	st *state
}

func (r stockRepo) ReadStock(_ context.Context, productID int64) (domain.StockBalance, error) {
	b, ok := r.st.stock[productID]
	if !ok {
		return domain.StockBalance{}, domain.ErrNotFound
	}
	return b, nil
}

func (r stockRepo) StoreStock(_ context.Context, b domain.StockBalance) error {
	if _, ok := r.st.products[b.ProductID]; !ok {
		return constraintErr("stock_balances.product_id %d", b.ProductID)
	}
	if b.Quantity < 0 {
		return constraintErr("stock_balances.quantity %d", b.Quantity)
	}
	r.st.stock[b.ProductID] = b
	return nil
}

func (r stockRepo) ListStockAtOrBelow(
	_ context.Context, threshold int,
) ([]domain.StockBalance, error) {
	var bs []domain.StockBalance
	for _, b := range sortedValues(r.st.stock, byProductID) {
		if b.Quantity <= threshold {
			bs = append(bs, b)
		}
	}
	return bs, nil
}

func (r stockRepo) ListStockRecords(context.Context) ([]domain.StockRecord, error) {
	var rs []domain.StockRecord
	for _, b := range sortedValues(r.st.stock, byProductID) {
		rs = append(rs, domain.StockRecord{
			ProductID:   b.ProductID,
			ProductName: r.st.products[b.ProductID].Name,
			Quantity:    b.Quantity,
			LastUpdated: b.LastUpdated,
		})
	}
	return rs, nil
}

func byProductID(a, b domain.StockBalance) int {
	return cmp.Compare(a.ProductID, b.ProductID)
}

type alertsRepo struct {
	st *state
}

func (r alertsRepo) StoreAlerts(_ context.Context, alerts []domain.StockAlert) error {
	for _, a := range alerts {
		if _, ok := r.st.products[a.ProductID]; !ok {
			return constraintErr("stock_alerts.product_id %d", a.ProductID)
		}
		a.ID = r.st.nextID()
		r.st.alerts = append(r.st.alerts, a)
	}
	return nil
}

// ListAlerts returns up to limit alerts, newest first. Non-positive limit means all.
func (r alertsRepo) ListAlerts(_ context.Context, limit int) ([]domain.StockAlert, error) {
	alerts := slices.Clone(r.st.alerts)
	slices.SortFunc(alerts, func(a, b domain.StockAlert) int {
		if c := b.RaisedAt.Compare(a.RaisedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}
