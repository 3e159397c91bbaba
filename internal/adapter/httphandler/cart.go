package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/online-store/internal/core/port"
)

// All cart routes require X-Customer-ID.
// GET /v1/cart (200 OK)
// POST /v1/cart/items JSON {"product_id" int, "quantity" int} (201 Created, 400, 404, 409 Conflict)
// DELETE /v1/cart/items/{id} (204 No content, 404 Not found)
// DELETE /v1/cart (200 OK)

type CartHandler struct {
	carts port.Carts
}

func RegisterCart(mux *http.ServeMux, carts port.Carts) {
	h := CartHandler{carts}
	handle := func(pattern string, hf http.HandlerFunc) {
		mux.Handle(pattern, RequireCustomer(hf))
	}
	handle("GET /v1/cart", h.GetCart)
	handle("POST /v1/cart/items", h.PostItem)
	handle("DELETE /v1/cart/items/{id}", h.DeleteItem)
	handle("DELETE /v1/cart", h.DeleteCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"
	log := slog.With("op", op)

	ctx := r.Context()
	cart, err := h.carts.Cart(ctx, customerFrom(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	total, err := h.carts.CartTotal(ctx, cart.ID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	resp := cartFromDomain(cart)
	resp.Total = money(total)
	writeJSON(w, http.StatusOK, resp)
}

func (h CartHandler) PostItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var in AddCartItem
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	ctx := r.Context()
	cart, err := h.carts.Cart(ctx, customerFrom(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	item, err := h.carts.AddToCart(ctx, cart.ID, in.ProductID, in.Quantity)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, CartItem{
		ID:        item.ID,
		ProductID: item.ProductID,
		Name:      item.Product.Name,
		Quantity:  item.Quantity,
		UnitPrice: money(item.Product.Price),
		Price:     money(item.Price()),
	})
	log.Info("added to cart",
		"cartID", cart.ID, "productID", in.ProductID, "quantity", in.Quantity)
}

func (h CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	cart, err := h.carts.Cart(ctx, customerFrom(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	if err := h.carts.RemoveCartItem(ctx, cart.ID, itemID); err != nil {
		writeServiceError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.DeleteCart"
	log := slog.With("op", op)

	ctx := r.Context()
	cart, err := h.carts.Cart(ctx, customerFrom(ctx))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	n, err := h.carts.ClearCart(ctx, cart.ID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
