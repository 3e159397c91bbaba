package httphandler

import (
	"time"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ID          int64           `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		ImageURL    string          `json:"image_url,omitempty"`
		Slug        string          `json:"slug"`
		Active      bool            `json:"is_active"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	ProductInput struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		ImageURL    string          `json:"image_url"`
		Slug        string          `json:"slug"`
		Active      *bool           `json:"is_active"`
	}
)

type (
	Cart struct {
		ID         int64      `json:"id"`
		CustomerID string     `json:"customer_id"`
		Items      []CartItem `json:"items"`
		Total      string     `json:"total"`
	}

	CartItem struct {
		ID        int64  `json:"id"`
		ProductID int64  `json:"product_id"`
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		Price     string `json:"price"`
	}

	AddCartItem struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
)

type (
	Order struct {
		ID              int64       `json:"id"`
		CustomerID      string      `json:"customer_id"`
		Status          string      `json:"status"`
		TotalAmount     string      `json:"total_amount"`
		ShippingAddress string      `json:"shipping_address"`
		OrderDate       time.Time   `json:"order_date"`
		Items           []OrderItem `json:"items,omitempty"`
	}

	OrderItem struct {
		ID        int64  `json:"id"`
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Price     string `json:"price"`
	}

	ShippingInput struct {
		ShippingAddress string `json:"shipping_address"`
	}
)

type (
	StockBalance struct {
		ProductID   int64     `json:"product_id"`
		Quantity    int       `json:"quantity"`
		LastUpdated time.Time `json:"last_updated"`
	}

	StockAlert struct {
		ID        int64     `json:"id"`
		ProductID int64     `json:"product_id"`
		Quantity  int       `json:"quantity"`
		Threshold int       `json:"threshold"`
		RaisedAt  time.Time `json:"raised_at"`
	}

	StockDelta struct {
		Delta int `json:"delta"`
	}
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func productFromDomain(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Slug:        p.Slug,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func productsFromDomain(ps []domain.Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, productFromDomain(p))
	}
	return out
}

func (in ProductInput) toDomain() domain.Product {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Slug:        in.Slug,
		Active:      active,
	}
}

func cartFromDomain(c domain.Cart) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, CartItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.Product.Price),
			Price:     money(it.Price()),
		})
	}
	return Cart{
		ID:         c.ID,
		CustomerID: c.CustomerID.String(),
		Items:      items,
		Total:      money(c.TotalPrice()),
	}
}

func orderFromDomain(o domain.Order) Order {
	var items []OrderItem
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     money(it.Price),
		})
	}
	return Order{
		ID:              o.ID,
		CustomerID:      o.CustomerID.String(),
		Status:          string(o.Status),
		TotalAmount:     money(o.TotalAmount),
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
		Items:           items,
	}
}

func ordersFromDomain(orders []domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderFromDomain(o))
	}
	return out
}

func balancesFromDomain(bs []domain.StockBalance) []StockBalance {
	out := make([]StockBalance, 0, len(bs))
	for _, b := range bs {
		out = append(out, StockBalance(b))
	}
	return out
}

func alertsFromDomain(as []domain.StockAlert) []StockAlert {
	out := make([]StockAlert, 0, len(as))
	for _, a := range as {
		out = append(out, StockAlert(a))
	}
	return out
}
