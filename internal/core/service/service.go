package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/niksmo/online-store/internal/core/service"

var (
	_ port.Catalog          = (*Service)(nil)
	_ port.Inventory        = (*Service)(nil)
	_ port.StockAlertsSaver = (*Service)(nil)
	_ port.Carts            = (*Service)(nil)
	_ port.Orders           = (*Service)(nil)
	_ port.GoodsLoader      = (*Service)(nil)
	_ port.StockReporter    = (*Service)(nil)
)

type Config struct {
	// LowStockThreshold is used by LowStock when the requested threshold is negative.
	LowStockThreshold int

	// DecrementStockOnCheckout links checkout to inventory:
	// when set, CreateFromCart decrements the stock of every ordered product.
	DecrementStockOnCheckout bool
}

type Service struct {
	store       port.Store
	stockEvents port.StockEventsProducer
	orderEvents port.OrderEventsProducer
	cfg         Config
	tracer      trace.Tracer
	now         func() time.Time
}

// New returns the core service.
//
// Event producers are optional, nil disables publishing.
func New(
	store port.Store,
	stockEvents port.StockEventsProducer,
	orderEvents port.OrderEventsProducer,
	cfg Config,
) Service {
	if cfg.LowStockThreshold < 0 {
		cfg.LowStockThreshold = domain.DefaultLowStockThreshold
	}
	return Service{
		store:       store,
		stockEvents: stockEvents,
		orderEvents: orderEvents,
		cfg:         cfg,
		tracer:      otel.Tracer(tracerName),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s Service) startSpan(
	ctx context.Context, op string,
) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s Service) publishStock(ctx context.Context, adjs ...domain.StockAdjustment) {
	const op = "Service.publishStock"

	if s.stockEvents == nil || len(adjs) == 0 {
		return
	}
	if err := s.stockEvents.ProduceStockAdjustments(ctx, adjs); err != nil {
		slog.Error("failed to publish stock adjustments",
			"op", op, "n", len(adjs), "err", err)
	}
}

func (s Service) publishOrder(ctx context.Context, o domain.Order) {
	const op = "Service.publishOrder"

	if s.orderEvents == nil {
		return
	}
	change := domain.OrderStatusChange{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		At:          s.now(),
	}
	if err := s.orderEvents.ProduceOrderStatus(ctx, change); err != nil {
		slog.Error("failed to publish order status",
			"op", op, "orderID", o.ID, "err", err)
	}
}
