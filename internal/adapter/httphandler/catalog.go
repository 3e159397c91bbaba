package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
)

// GET /v1/products?q=name (200 OK)
// GET /v1/products/{slug} (200 OK, 404 Not found)

type CatalogHandler struct {
	catalog port.Catalog
}

func RegisterCatalog(mux *http.ServeMux, catalog port.Catalog) {
	h := CatalogHandler{catalog}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{slug}", h.GetProduct)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	var (
		ps  []domain.Product
		err error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		ps, err = h.catalog.Search(r.Context(), q)
	} else {
		ps, err = h.catalog.ListAvailable(r.Context())
	}
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, productsFromDomain(ps))
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.catalog.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, productFromDomain(p))
}
