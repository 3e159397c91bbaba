package port

import (
	"context"
	"sync"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports, implemented by the core service.

type Catalog interface {
	ListAvailable(context.Context) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	ProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	CreateProduct(context.Context, domain.Product) (domain.Product, error)
	UpdateProduct(context.Context, domain.Product) (domain.Product, error)
}

type Inventory interface {
	AdjustStock(ctx context.Context, productID int64, delta int) (domain.StockBalance, error)
	LowStock(ctx context.Context, threshold int) ([]domain.StockBalance, error)
	StockAlerts(ctx context.Context, limit int) ([]domain.StockAlert, error)
}

type StockAlertsSaver interface {
	SaveStockAlerts(context.Context, []domain.StockAlert) error
}

type Carts interface {
	Cart(context.Context, domain.CustomerID) (domain.Cart, error)
	AddToCart(ctx context.Context, cartID, productID int64, quantity int) (domain.CartItem, error)
	CartTotal(ctx context.Context, cartID int64) (decimal.Decimal, error)
	ClearCart(ctx context.Context, cartID int64) (int, error)
	RemoveCartItem(ctx context.Context, cartID, itemID int64) error
}

type Orders interface {
	NewOrder(ctx context.Context, customerID domain.CustomerID, shippingAddress string) (domain.Order, error)
	PlaceOrder(ctx context.Context, customerID domain.CustomerID, shippingAddress string) (domain.Order, error)
	CreateFromCart(ctx context.Context, orderID, cartID int64) (domain.Order, error)
	TransitionToProcessing(ctx context.Context, orderID int64, shippingAddress string) (domain.Order, error)
	Cancel(ctx context.Context, orderID int64) (domain.Order, error)
	Order(ctx context.Context, orderID int64) (domain.Order, error)
	OrdersByStatus(context.Context, domain.OrderStatus) ([]domain.Order, error)
	CustomerOrders(context.Context, domain.CustomerID) ([]domain.Order, error)
}

type GoodsLoader interface {
	LoadGoods(context.Context, []domain.GoodsRecord) (int, error)
}

type StockReporter interface {
	StockReport(context.Context) ([]domain.StockRecord, error)
}

// Outbound ports.

// A Store runs fn in one transaction.
//
// The transaction is committed when fn returns nil and rolled back otherwise.
type Store interface {
	RunInTx(ctx context.Context, fn func(Repositories) error) error
}

type Repositories struct {
	Products    ProductsRepository
	Stock       StockRepository
	Carts       CartsRepository
	Orders      OrdersRepository
	StockAlerts StockAlertsRepository
}

// Repositories return [domain.ErrNotFound] for absent rows.
// Lock methods read the row and hold it until the transaction ends.

type ProductsRepository interface {
	CreateProduct(context.Context, *domain.Product) error
	UpdateProduct(context.Context, domain.Product) error
	ReadProduct(ctx context.Context, id int64) (domain.Product, error)
	LockProduct(ctx context.Context, id int64) (domain.Product, error)
	ReadProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ReadProductByName(ctx context.Context, name string) (domain.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListActiveProducts(context.Context) ([]domain.Product, error)
	SearchActiveProducts(ctx context.Context, query string) ([]domain.Product, error)
}

type StockRepository interface {
	ReadStock(ctx context.Context, productID int64) (domain.StockBalance, error)
	StoreStock(context.Context, domain.StockBalance) error
	ListStockAtOrBelow(ctx context.Context, threshold int) ([]domain.StockBalance, error)
	ListStockRecords(context.Context) ([]domain.StockRecord, error)
}

type CartsRepository interface {
	CreateCart(context.Context, *domain.Cart) error
	// ReadCart and ReadCartByCustomer load the cart with its items
	// and their products.
	ReadCart(ctx context.Context, id int64) (domain.Cart, error)
	ReadCartByCustomer(context.Context, domain.CustomerID) (domain.Cart, error)
	LockCart(ctx context.Context, id int64) (domain.Cart, error)
	ReadCartItem(ctx context.Context, cartID, productID int64) (domain.CartItem, error)
	CreateCartItem(context.Context, *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, itemID int64) error
	DeleteCartItems(ctx context.Context, cartID int64) (int, error)
}

type OrdersRepository interface {
	CreateOrder(context.Context, *domain.Order) error
	// ReadOrder loads the order with its items.
	ReadOrder(ctx context.Context, id int64) (domain.Order, error)
	LockOrder(ctx context.Context, id int64) (domain.Order, error)
	UpdateOrder(context.Context, domain.Order) error
	CreateOrderItem(context.Context, *domain.OrderItem) error
	ListOrdersByStatus(context.Context, domain.OrderStatus) ([]domain.Order, error)
	ListOrdersByCustomer(context.Context, domain.CustomerID) ([]domain.Order, error)
}

type StockAlertsRepository interface {
	StoreAlerts(context.Context, []domain.StockAlert) error
	ListAlerts(ctx context.Context, limit int) ([]domain.StockAlert, error)
}

type StockEventsProducer interface {
	ProduceStockAdjustments(context.Context, []domain.StockAdjustment) error
}

type OrderEventsProducer interface {
	ProduceOrderStatus(context.Context, domain.OrderStatusChange) error
}

type LowStockProcessor interface {
	runnerContextWg
	closer
}

type StockAlertsConsumer interface {
	Run(context.Context)
	closer
}
