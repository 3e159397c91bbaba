package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/niksmo/online-store/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.StockAlertsConsumer = (*StockAlertsConsumer)(nil)

const slowDownDelay = time.Second

type ConsumerOpt func(*consumerOpts) error

// ConsumerClientOpt connects a franz-go group consumer of topic with
// manual commits. A nil tlsCfg dials plaintext.
func ConsumerClientOpt(
	seedBrokers []string, topic, group string, tlsCfg *tls.Config,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		}
		if tlsCfg != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsCfg))
		}
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerClientInstanceOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func StockAlertsSaverOpt(s port.StockAlertsSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if s == nil {
			return errors.New("stock alerts saver is nil")
		}
		co.alertsSaver = s
		return nil
	}
}

type consumerOpts struct {
	cl          ConsumerClient
	decoder     Decoder
	alertsSaver port.StockAlertsSaver
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil {
		return ErrTooFewOpts
	}
	return nil
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// Fetching records from kafka broker and closing underlying [kgo.Client].
type consumer struct {
	opPrefix      string
	parent        consumerParent
	cl            ConsumerClient
	slowDownTimer *time.Timer
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

// consume processes one poll. Offsets are committed only after
// the parent has handled every record.
func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.parent.processFetches(ctx, fetches)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	err := c.handleFetchesErrs(fetches)
	if err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errMsg := fmt.Sprintf(
				"topic %q partition %d: %q", t, p, err,
			)
			errsMessages = append(errsMessages, errMsg)
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

func (c consumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownDelay)
	select {
	case <-ctx.Done():
	case <-c.slowDownTimer.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A StockAlertsConsumer consumes low stock alerts
// then sends them to the core service for save.
type StockAlertsConsumer struct {
	opPrefix string
	consumer consumer
	saver    port.StockAlertsSaver
	decoder  Decoder
}

func NewStockAlertsConsumer(opts ...ConsumerOpt) (sc StockAlertsConsumer, err error) {
	const op = "NewStockAlertsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return sc, opErr(err, op)
	}
	if options.alertsSaver == nil {
		return sc, opErr(ErrTooFewOpts, op)
	}

	opPrefix := "StockAlertsConsumer"

	sc.opPrefix = opPrefix
	sc.saver = options.alertsSaver
	sc.decoder = options.decoder

	sc.consumer = consumer{
		opPrefix:      opPrefix,
		parent:        sc,
		cl:            options.cl,
		slowDownTimer: time.NewTimer(0),
	}

	return sc, nil
}

func (c StockAlertsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c StockAlertsConsumer) Close() {
	c.consumer.close()
}

func (c StockAlertsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	err := c.saver.SaveStockAlerts(ctx, values)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

// toDomain skips records that fail to decode.
func (c StockAlertsConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.StockAlert) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		var s schema.LowStockAlertV1
		if err := c.decoder.Decode(r.Value, &s); err != nil {
			log.Error(
				"failed to decode value",
				"err", opErr(err, c.opPrefix, op),
				"offset", r.Offset,
			)
			return
		}
		vs = append(vs, schemaV1ToStockAlert(s))
	})
	return vs
}
