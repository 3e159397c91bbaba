package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// All admin routes require X-Admin-Token.
// POST /v1/admin/products JSON ProductInput (201 Created, 400 Bad request)
// PUT /v1/admin/products/{id} JSON ProductInput with is_active (200 OK, 400, 404)
// GET /v1/admin/orders?status=pending (200 OK, 400 Bad request)
// POST /v1/admin/orders/{id}/process JSON {"shipping_address" string} (200 OK, 404)
// POST /v1/admin/orders/{id}/cancel (200 OK, 404)
// POST /v1/admin/stock/{product_id} JSON {"delta" int} (200 OK, 404, 409 Conflict)
// GET /v1/admin/stock/low?threshold=5 (200 OK)
// GET /v1/admin/stock/alerts?limit=50 (200 OK)

const defaultAlertsLimit = 50

type AdminHandler struct {
	catalog   port.Catalog
	inventory port.Inventory
	orders    port.Orders
}

func RegisterAdmin(
	mux *http.ServeMux,
	token string,
	catalog port.Catalog,
	inventory port.Inventory,
	orders port.Orders,
) {
	h := AdminHandler{catalog, inventory, orders}
	admin := RequireAdmin(token)
	handle := func(pattern string, hf http.HandlerFunc) {
		mux.Handle(pattern, admin(hf))
	}
	handle("POST /v1/admin/products", h.PostProduct)
	handle("PUT /v1/admin/products/{id}", h.PutProduct)
	handle("GET /v1/admin/orders", h.GetOrders)
	handle("POST /v1/admin/orders/{id}/process", h.PostProcess)
	handle("POST /v1/admin/orders/{id}/cancel", h.PostCancel)
	handle("POST /v1/admin/stock/{product_id}", h.PostStock)
	handle("GET /v1/admin/stock/low", h.GetLowStock)
	handle("GET /v1/admin/stock/alerts", h.GetAlerts)
}

func (h AdminHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostProduct"
	log := slog.With("op", op)

	var in ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), in.toDomain())
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, productFromDomain(p))
	log.Info("product created", "productID", p.ID, "slug", p.Slug)
}

func (h AdminHandler) PutProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PutProduct"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if in.Active == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	dp := in.toDomain()
	dp.ID = id
	p, err := h.catalog.UpdateProduct(r.Context(), dp)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, productFromDomain(p))
}

func (h AdminHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.GetOrders"
	log := slog.With("op", op)

	status, err := domain.ParseOrderStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	orders, err := h.orders.OrdersByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, ordersFromDomain(orders))
}

func (h AdminHandler) PostProcess(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostProcess"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in ShippingInput
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	o, err := h.orders.TransitionToProcessing(r.Context(), id, in.ShippingAddress)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, orderFromDomain(o))
	log.Info("order processing", "orderID", o.ID)
}

func (h AdminHandler) PostCancel(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostCancel"
	log := slog.With("op", op)

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, orderFromDomain(o))
	log.Info("order cancelled", "orderID", o.ID)
}

func (h AdminHandler) PostStock(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.PostStock"
	log := slog.With("op", op)

	productID, err := pathID(r, "product_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in StockDelta
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	b, err := h.inventory.AdjustStock(r.Context(), productID, in.Delta)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, StockBalance(b))
}

func (h AdminHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.GetLowStock"
	log := slog.With("op", op)

	threshold, err := queryInt(r, "threshold", -1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bs, err := h.inventory.LowStock(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, balancesFromDomain(bs))
}

func (h AdminHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.GetAlerts"
	log := slog.With("op", op)

	limit, err := queryInt(r, "limit", defaultAlertsLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.inventory.StockAlerts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, alertsFromDomain(alerts))
}
