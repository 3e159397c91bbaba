package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/niksmo/online-store/internal/core/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Services struct {
	Catalog   port.Catalog
	Inventory port.Inventory
	Carts     port.Carts
	Orders    port.Orders
}

// NewHandler registers every route on a new mux wrapped with
// a server span per request.
func NewHandler(adminToken string, s Services) http.Handler {
	mux := http.NewServeMux()
	RegisterCatalog(mux, s.Catalog)
	RegisterCart(mux, s.Carts)
	RegisterOrders(mux, s.Orders)
	RegisterAdmin(mux, adminToken, s.Catalog, s.Inventory, s.Orders)

	return otelhttp.NewHandler(AllowJSON(mux), "store-http")
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) HTTPServer {
	handler = http.TimeoutHandler(handler, 5*time.Second, "unavailable")
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("http server is listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected servers shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
