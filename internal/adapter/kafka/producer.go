package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.StockEventsProducer = (*StockEventsProducer)(nil)
	_ port.OrderEventsProducer = (*OrderEventsProducer)(nil)
)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
	encoder  Encoder
}

func newProducer(opPrefix string, opts ...ProducerOpt) (producer, error) {
	var options producerOpts
	if err := options.apply(opts...); err != nil {
		return producer{}, err
	}
	return producer{
		opPrefix: opPrefix,
		cl:       options.cl,
		encoder:  options.encoder,
	}, nil
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) record(key string, v any) (*kgo.Record, error) {
	const op = "record"
	b, err := p.encoder.Encode(v)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(key), Value: b}, nil
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A StockEventsProducer publishes committed stock adjustments
// keyed by product ID.
type StockEventsProducer struct {
	producer producer
	opPrefix string
}

func NewStockEventsProducer(opts ...ProducerOpt) (StockEventsProducer, error) {
	const op = "NewStockEventsProducer"

	opPrefix := "StockEventsProducer"
	p, err := newProducer(opPrefix, opts...)
	if err != nil {
		return StockEventsProducer{}, opErr(err, op)
	}
	return StockEventsProducer{producer: p, opPrefix: opPrefix}, nil
}

func (p StockEventsProducer) Close() {
	p.producer.close()
}

func (p StockEventsProducer) ProduceStockAdjustments(
	ctx context.Context, vs []domain.StockAdjustment,
) error {
	const op = "ProduceStockAdjustments"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	rs := make([]*kgo.Record, 0, len(vs))
	for _, v := range vs {
		r, err := p.producer.record(idKey(v.ProductID), stockAdjustmentToSchemaV1(v))
		if err != nil {
			return opErr(err, p.opPrefix, op)
		}
		rs = append(rs, r)
	}

	if err := p.producer.produce(ctx, rs...); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrderEventsProducer publishes order status changes keyed by order ID.
type OrderEventsProducer struct {
	producer producer
	opPrefix string
}

func NewOrderEventsProducer(opts ...ProducerOpt) (OrderEventsProducer, error) {
	const op = "NewOrderEventsProducer"

	opPrefix := "OrderEventsProducer"
	p, err := newProducer(opPrefix, opts...)
	if err != nil {
		return OrderEventsProducer{}, opErr(err, op)
	}
	return OrderEventsProducer{producer: p, opPrefix: opPrefix}, nil
}

func (p OrderEventsProducer) Close() {
	p.producer.close()
}

func (p OrderEventsProducer) ProduceOrderStatus(
	ctx context.Context, v domain.OrderStatusChange,
) error {
	const op = "ProduceOrderStatus"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.producer.record(idKey(v.OrderID), orderStatusToSchemaV1(v))
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}
