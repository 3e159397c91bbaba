package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/online-store/internal/adapter/httphandler"
	"github.com/niksmo/online-store/internal/adapter/memstore"
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const adminToken = "secret"

type client struct {
	t        *testing.T
	srv      *httptest.Server
	customer string
}

func newClient(t *testing.T, cfg service.Config) *client {
	t.Helper()
	svc := service.New(memstore.New(), nil, nil, cfg)
	h := httphandler.NewHandler(adminToken, httphandler.Services{
		Catalog:   svc,
		Inventory: svc,
		Carts:     svc,
		Orders:    svc,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv, customer: uuid.NewString()}
}

func (c *client) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, r)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) customerReq(method, path string, body any) *http.Response {
	return c.do(method, path, body,
		map[string]string{httphandler.CustomerIDHeader: c.customer})
}

func (c *client) adminReq(method, path string, body any) *http.Response {
	return c.do(method, path, body,
		map[string]string{httphandler.AdminTokenHeader: adminToken})
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (c *client) createProduct(name, price string, qty int) httphandler.Product {
	c.t.Helper()
	resp := c.adminReq(http.MethodPost, "/v1/admin/products", map[string]any{
		"name":  name,
		"price": price,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	p := decode[httphandler.Product](c.t, resp)

	if qty > 0 {
		resp = c.adminReq(http.MethodPost,
			"/v1/admin/stock/"+strconv.FormatInt(p.ID, 10),
			httphandler.StockDelta{Delta: qty})
		require.Equal(c.t, http.StatusOK, resp.StatusCode)
	}
	return p
}

func TestCatalogRoutes(t *testing.T) {
	c := newClient(t, service.Config{})
	phone := c.createProduct("Smart Phone", "199.90", 0)
	c.createProduct("Laptop", "999", 0)
	assert.Equal(t, "smart-phone", phone.Slug)

	t.Run("List", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/v1/products", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		ps := decode[[]httphandler.Product](t, resp)
		assert.Len(t, ps, 2)
	})

	t.Run("Search", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/v1/products?q=PHONE", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		ps := decode[[]httphandler.Product](t, resp)
		require.Len(t, ps, 1)
		assert.Equal(t, phone.ID, ps[0].ID)
	})

	t.Run("BySlug", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/v1/products/smart-phone", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		p := decode[httphandler.Product](t, resp)
		assert.Equal(t, "199.9", p.Price.String())
	})

	t.Run("UnknownSlug", func(t *testing.T) {
		resp := c.do(http.MethodGet, "/v1/products/missing", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateProductRoute(t *testing.T) {
	c := newClient(t, service.Config{})
	p := c.createProduct("Kettle", "10.00", 0)
	path := "/v1/admin/products/" + strconv.FormatInt(p.ID, 10)

	resp := c.adminReq(http.MethodPut, path, map[string]any{
		"name": "Kettle", "price": "10.00", "is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[httphandler.Product](t, resp).Active)

	t.Run("ActiveFlagRequired", func(t *testing.T) {
		resp := c.adminReq(http.MethodPut, path, map[string]any{
			"name": "Steel Kettle", "price": "12.00",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = c.do(http.MethodGet, "/v1/products", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, decode[[]httphandler.Product](t, resp))
	})

	t.Run("InvalidPrice", func(t *testing.T) {
		resp := c.adminReq(http.MethodPut, path, map[string]any{
			"name": "Kettle", "price": "-5.00", "is_active": true,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCustomerIdentity(t *testing.T) {
	c := newClient(t, service.Config{})

	resp := c.do(http.MethodGet, "/v1/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = c.do(http.MethodGet, "/v1/cart", nil,
		map[string]string{httphandler.CustomerIDHeader: "42"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminToken(t *testing.T) {
	c := newClient(t, service.Config{})

	resp := c.do(http.MethodGet, "/v1/admin/stock/low", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.do(http.MethodGet, "/v1/admin/stock/low", nil,
		map[string]string{httphandler.AdminTokenHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAllowJSON(t *testing.T) {
	c := newClient(t, service.Config{})

	req, err := http.NewRequest(http.MethodPost, c.srv.URL+"/v1/cart/items",
		bytes.NewReader([]byte("product_id=1")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(httphandler.CustomerIDHeader, c.customer)

	resp, err := c.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestCheckoutFlow(t *testing.T) {
	c := newClient(t, service.Config{DecrementStockOnCheckout: true})
	x := c.createProduct("X", "50.00", 10)
	y := c.createProduct("Y", "25.00", 1)

	resp := c.customerReq(http.MethodPost, "/v1/cart/items",
		httphandler.AddCartItem{ProductID: x.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("InsufficientStock", func(t *testing.T) {
		resp := c.customerReq(http.MethodPost, "/v1/cart/items",
			httphandler.AddCartItem{ProductID: y.ID, Quantity: 2})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		resp := c.customerReq(http.MethodPost, "/v1/cart/items",
			httphandler.AddCartItem{ProductID: y.ID, Quantity: 0})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	resp = c.customerReq(http.MethodPost, "/v1/cart/items",
		httphandler.AddCartItem{ProductID: y.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.customerReq(http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := decode[httphandler.Cart](t, resp)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "125.00", cart.Total)

	resp = c.customerReq(http.MethodPost, "/v1/orders",
		httphandler.ShippingInput{ShippingAddress: "1 Main St"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decode[httphandler.Order](t, resp)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "125.00", order.TotalAmount)
	assert.Len(t, order.Items, 2)

	resp = c.customerReq(http.MethodGet, "/v1/cart", nil)
	cart = decode[httphandler.Cart](t, resp)
	assert.Empty(t, cart.Items)

	resp = c.adminReq(http.MethodGet, "/v1/admin/stock/low?threshold=8", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	low := decode[[]httphandler.StockBalance](t, resp)
	require.Len(t, low, 2)
	assert.Equal(t, 8, low[0].Quantity)
	assert.Equal(t, 0, low[1].Quantity)

	orderPath := "/v1/orders/" + strconv.FormatInt(order.ID, 10)

	t.Run("OwnOrder", func(t *testing.T) {
		resp := c.customerReq(http.MethodGet, orderPath, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[httphandler.Order](t, resp)
		assert.Equal(t, order.ID, got.ID)

		resp = c.customerReq(http.MethodGet, "/v1/orders", nil)
		orders := decode[[]httphandler.Order](t, resp)
		assert.Len(t, orders, 1)
	})

	t.Run("ForeignOrder", func(t *testing.T) {
		resp := c.do(http.MethodGet, orderPath, nil,
			map[string]string{httphandler.CustomerIDHeader: uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("AdminTransitions", func(t *testing.T) {
		adminPath := "/v1/admin/orders/" + strconv.FormatInt(order.ID, 10)

		resp := c.adminReq(http.MethodPost, adminPath+"/process",
			httphandler.ShippingInput{ShippingAddress: "2 Side St"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[httphandler.Order](t, resp)
		assert.Equal(t, "processing", got.Status)
		assert.Equal(t, "2 Side St", got.ShippingAddress)

		resp = c.adminReq(http.MethodGet, "/v1/admin/orders?status=processing", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]httphandler.Order](t, resp), 1)

		resp = c.adminReq(http.MethodPost, adminPath+"/cancel", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got = decode[httphandler.Order](t, resp)
		assert.Equal(t, "cancelled", got.Status)

		resp = c.adminReq(http.MethodPost, "/v1/admin/orders/999/cancel", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = c.adminReq(http.MethodGet, "/v1/admin/orders?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCartItemRemoval(t *testing.T) {
	c := newClient(t, service.Config{})
	x := c.createProduct("X", "10", 0)

	resp := c.customerReq(http.MethodPost, "/v1/cart/items",
		httphandler.AddCartItem{ProductID: x.ID, Quantity: 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[httphandler.CartItem](t, resp)
	assert.Equal(t, "30.00", item.Price)

	resp = c.customerReq(http.MethodDelete,
		"/v1/cart/items/"+strconv.FormatInt(item.ID, 10), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.customerReq(http.MethodDelete,
		"/v1/cart/items/"+strconv.FormatInt(item.ID, 10), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.customerReq(http.MethodDelete, "/v1/cart/items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.customerReq(http.MethodDelete, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"removed": 0}, decode[map[string]int](t, resp))
}

func TestStockRoutes(t *testing.T) {
	c := newClient(t, service.Config{LowStockThreshold: -1})
	x := c.createProduct("X", "10", 3)
	path := "/v1/admin/stock/" + strconv.FormatInt(x.ID, 10)

	resp := c.adminReq(http.MethodPost, path, httphandler.StockDelta{Delta: -5})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.adminReq(http.MethodPost, "/v1/admin/stock/999",
		httphandler.StockDelta{Delta: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.adminReq(http.MethodGet, "/v1/admin/stock/low", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]httphandler.StockBalance](t, resp), 1)

	resp = c.adminReq(http.MethodGet, "/v1/admin/stock/low?threshold=x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.adminReq(http.MethodGet, "/v1/admin/stock/alerts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]httphandler.StockAlert](t, resp))
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalog) ProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalog) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalog) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func TestServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", domain.ErrNotFound, http.StatusNotFound},
		{"InsufficientStock", domain.ErrInsufficientStock, http.StatusConflict},
		{"InvalidState", domain.ErrInvalidState, http.StatusConflict},
		{"InvalidArgument", domain.ErrInvalidArgument, http.StatusBadRequest},
		{"Unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &MockCatalog{}
			catalog.On("ProductBySlug", mock.Anything, "slug").
				Return(domain.Product{}, fmt.Errorf("op: %w", tt.err)).Once()

			mux := http.NewServeMux()
			httphandler.RegisterCatalog(mux, catalog)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/products/slug", nil)
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			catalog.AssertExpectations(t)
		})
	}
}
