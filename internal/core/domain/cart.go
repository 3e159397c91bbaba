package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// A CustomerID is the opaque identity supplied by the identity provider.
type CustomerID = uuid.UUID

type Cart struct {
	ID         int64
	CustomerID CustomerID
	CreatedAt  time.Time
	Items      []CartItem
}

// TotalPrice sums the current unit price of every line times its quantity.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price())
	}
	return total
}

type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
	Product   Product
}

// Price is the line price at the product's current unit price.
func (i CartItem) Price() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
