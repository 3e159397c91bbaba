package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// All order routes require X-Customer-ID.
// POST /v1/orders JSON {"shipping_address" string} (201 Created, 400, 409 Conflict)
// GET /v1/orders (200 OK)
// GET /v1/orders/{id} (200 OK, 404 Not found)

type OrdersHandler struct {
	orders port.Orders
}

func RegisterOrders(mux *http.ServeMux, orders port.Orders) {
	h := OrdersHandler{orders}
	handle := func(pattern string, hf http.HandlerFunc) {
		mux.Handle(pattern, RequireCustomer(hf))
	}
	handle("POST /v1/orders", h.PostOrder)
	handle("GET /v1/orders", h.GetOrders)
	handle("GET /v1/orders/{id}", h.GetOrder)
}

func (h OrdersHandler) PostOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.PostOrder"
	log := slog.With("op", op)

	var in ShippingInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			log.Warn("failed to parse JSON", "err", err)
			return
		}
	}

	ctx := r.Context()
	o, err := h.orders.PlaceOrder(ctx, customerFrom(ctx), in.ShippingAddress)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderFromDomain(o))
	log.Info("order placed", "orderID", o.ID, "total", o.TotalAmount)
}

func (h OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetOrders"
	log := slog.With("op", op)

	ctx := r.Context()
	orders, err := h.orders.CustomerOrders(ctx, customerFrom(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, ordersFromDomain(orders))
}

// GetOrder hides orders of other customers behind 404.
func (h OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	const op = "OrdersHandler.GetOrder"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	o, err := h.orders.Order(ctx, id)
	if err == nil && o.CustomerID != customerFrom(ctx) {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, orderFromDomain(o))
}
