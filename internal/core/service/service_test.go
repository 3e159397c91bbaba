package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/online-store/internal/adapter/memstore"
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStockEvents struct {
	mock.Mock
}

func (m *MockStockEvents) ProduceStockAdjustments(
	ctx context.Context, adjs []domain.StockAdjustment,
) error {
	args := m.Called(ctx, adjs)
	return args.Error(0)
}

type MockOrderEvents struct {
	mock.Mock
}

func (m *MockOrderEvents) ProduceOrderStatus(
	ctx context.Context, change domain.OrderStatusChange,
) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type fixture struct {
	svc         service.Service
	stockEvents *MockStockEvents
	orderEvents *MockOrderEvents
}

func newFixture(t *testing.T, cfg service.Config) fixture {
	t.Helper()
	stockEvents := new(MockStockEvents)
	stockEvents.On("ProduceStockAdjustments", mock.Anything, mock.Anything).
		Return(nil).Maybe()
	orderEvents := new(MockOrderEvents)
	orderEvents.On("ProduceOrderStatus", mock.Anything, mock.Anything).
		Return(nil).Maybe()

	return fixture{
		svc:         service.New(memstore.New(), stockEvents, orderEvents, cfg),
		stockEvents: stockEvents,
		orderEvents: orderEvents,
	}
}

func (f fixture) product(t *testing.T, name, price string, active bool) domain.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(t.Context(), domain.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Active: active,
	})
	require.NoError(t, err)
	return p
}

func (f fixture) stock(t *testing.T, productID int64, qty int) {
	t.Helper()
	_, err := f.svc.AdjustStock(t.Context(), productID, qty)
	require.NoError(t, err)
}

func (f fixture) cart(t *testing.T, customer domain.CustomerID) domain.Cart {
	t.Helper()
	c, err := f.svc.Cart(t.Context(), customer)
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew(t *testing.T) {
	f := newFixture(t, service.Config{LowStockThreshold: -1})
	p := f.product(t, "Kettle", "10.00", true)
	f.stock(t, p.ID, domain.DefaultLowStockThreshold)

	bs, err := f.svc.LowStock(t.Context(), -1)
	require.NoError(t, err)
	assert.Len(t, bs, 1)
}

func TestNilEventProducers(t *testing.T) {
	svc := service.New(memstore.New(), nil, nil, service.Config{})
	p, err := svc.CreateProduct(t.Context(), domain.Product{
		Name: "Kettle", Price: dec("1.00"), Active: true,
	})
	require.NoError(t, err)

	_, err = svc.AdjustStock(t.Context(), p.ID, 3)
	require.NoError(t, err)

	o, err := svc.NewOrder(t.Context(), uuid.New(), "")
	require.NoError(t, err)
	_, err = svc.Cancel(t.Context(), o.ID)
	require.NoError(t, err)
}
