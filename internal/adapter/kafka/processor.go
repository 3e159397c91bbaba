package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/codec"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/niksmo/online-store/pkg/schema"
)

var _ port.LowStockProcessor = (*LowStockProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A stockAdjustedCodec used for serde [schema.StockAdjustedV1]
type stockAdjustedCodec struct {
	serde Serde
}

func (c stockAdjustedCodec) Encode(v any) ([]byte, error) {
	const op = "stockAdjustedCodec.Encode"
	if _, ok := v.(schema.StockAdjustedV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c stockAdjustedCodec) Decode(data []byte) (any, error) {
	const op = "stockAdjustedCodec.Decode"
	var s schema.StockAdjustedV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A lowStockAlertCodec used for serde [schema.LowStockAlertV1]
type lowStockAlertCodec struct {
	serde Serde
}

func (c lowStockAlertCodec) Encode(v any) ([]byte, error) {
	const op = "lowStockAlertCodec.Encode"
	if _, ok := v.(schema.LowStockAlertV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c lowStockAlertCodec) Decode(data []byte) (any, error) {
	const op = "lowStockAlertCodec.Decode"
	var s schema.LowStockAlertV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// LowStockProcessorConfig used for setup [LowStockProcessor].
//
// All fields are required.
type LowStockProcessorConfig struct {
	SeedBrokers        []string
	StockAdjustedTopic string
	Group              string
	AlertsTopic        string
	Threshold          int
	StockAdjustedSerde Serde
	AlertSerde         Serde
}

// A LowStockProcessor keeps the last known quantity of every product in
// its group table and emits an alert when a product falls to the threshold
// or below it.
type LowStockProcessor struct {
	opPrefix     string
	proc         processor
	threshold    int
	outputStream goka.Stream
}

func NewLowStockProcessor(cfg LowStockProcessorConfig) (*LowStockProcessor, error) {
	const op = "NewLowStockProcessor"

	p := LowStockProcessor{
		opPrefix:     "LowStockProcessor",
		threshold:    cfg.Threshold,
		outputStream: goka.Stream(cfg.AlertsTopic),
	}

	gg := goka.DefineGroup(goka.Group(cfg.Group),
		goka.Input(
			goka.Stream(cfg.StockAdjustedTopic),
			stockAdjustedCodec{cfg.StockAdjustedSerde},
			p.processFn,
		),
		goka.Persist(new(codec.Int64)),
		goka.Output(p.outputStream, lowStockAlertCodec{cfg.AlertSerde}),
	)

	gp, err := goka.NewProcessor(cfg.SeedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return &p, nil
}

func (p *LowStockProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *LowStockProcessor) Close() {
	p.proc.close()
}

func (p *LowStockProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, ok := msg.(schema.StockAdjustedV1)
	if !ok {
		return
	}
	log := slog.With(
		"op", makeOp(p.opPrefix, op), "productID", event.ProductID,
	)

	prev, known := ctx.Value().(int64)
	ctx.SetValue(int64(event.Quantity))

	if !crossedThreshold(prev, known, event.Quantity, p.threshold) {
		return
	}

	alert := schema.LowStockAlertV1{
		ProductID: event.ProductID,
		Quantity:  event.Quantity,
		Threshold: p.threshold,
		RaisedAt:  alertTime(event.At),
	}
	ctx.Emit(p.outputStream, strconv.FormatInt(event.ProductID, 10), alert)
	log.Warn("low stock", "quantity", event.Quantity, "threshold", p.threshold)
}

// crossedThreshold reports whether quantity is a new low stock level:
// at or below threshold while the previous known level was above it.
func crossedThreshold(prev int64, known bool, quantity, threshold int) bool {
	if quantity > threshold {
		return false
	}
	return !known || prev > int64(threshold)
}

func alertTime(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at
}
