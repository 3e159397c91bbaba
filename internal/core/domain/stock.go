package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is used when no threshold is requested.
const DefaultLowStockThreshold = 5

type StockBalance struct {
	ProductID   int64
	Quantity    int
	LastUpdated time.Time
}

// Adjusted returns the balance after applying delta.
//
// Returns [ErrInvalidState] when the quantity would become negative,
// the receiver is never modified.
func (b StockBalance) Adjusted(delta int, at time.Time) (StockBalance, error) {
	q := b.Quantity + delta
	if q < 0 {
		return b, ErrInvalidState
	}
	b.Quantity = q
	b.LastUpdated = at
	return b, nil
}

// A StockAlert is raised when a product quantity falls to the threshold.
type StockAlert struct {
	ID        int64
	ProductID int64
	Quantity  int
	Threshold int
	RaisedAt  time.Time
}

// A StockAdjustment describes a committed stock change.
type StockAdjustment struct {
	ProductID int64
	Delta     int
	Quantity  int
	At        time.Time
}

// A GoodsRecord is an entry of the bulk load file.
type GoodsRecord struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// A StockRecord is an entry of the stock export file.
type StockRecord struct {
	ProductID   int64
	ProductName string
	Quantity    int
	LastUpdated time.Time
}
