package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/niksmo/online-store/config"
	"github.com/niksmo/online-store/internal/adapter"
	"github.com/niksmo/online-store/internal/adapter/httphandler"
	"github.com/niksmo/online-store/internal/adapter/kafka"
	"github.com/niksmo/online-store/internal/adapter/memstore"
	"github.com/niksmo/online-store/internal/adapter/observability"
	"github.com/niksmo/online-store/internal/adapter/storage"
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/internal/core/port"
	"github.com/niksmo/online-store/internal/core/service"
	"github.com/niksmo/online-store/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	stockAdjusted schema.Serde
	orderStatus   schema.Serde
	lowStockAlert schema.Serde
}

type producers struct {
	stock  *kafka.StockEventsProducer
	orders *kafka.OrderEventsProducer
}

type App struct {
	ctx       context.Context
	cfg       config.Config
	tlsCfg    *tls.Config
	sqlDB     *storage.SQLDB
	store     port.Store
	tracing   observability.ShutdownFunc
	serdes    serdes
	producers producers
	service   service.Service

	lowStockProcessor   port.LowStockProcessor
	stockAlertsConsumer port.StockAlertsConsumer
	httpServer          *httphandler.HTTPServer

	wg sync.WaitGroup
}

// New wires the whole store backend: the core service, the HTTP server
// and, with a configured broker, the low stock pipeline.
func New(ctx context.Context, cfg config.Config) *App {
	app := NewCore(ctx, cfg)

	if cfg.Broker.Enabled() {
		app.initLowStockPipeline()
	}
	app.initInboundAdapters()

	return app
}

// NewCore wires only the core service with its storage and event producers.
// Used by the command line tools.
func NewCore(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initTracing()
	app.initStore()
	if cfg.Broker.Enabled() {
		app.initBrokerTLS()
		app.initSerdes()
		app.initProducers()
	}
	app.initCoreService()

	return app
}

func (app *App) Service() service.Service {
	return app.service
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initTracing() {
	const op = "App.initTracing"

	shutdown, err := observability.SetupTracing(app.ctx, observability.TracingConfig{
		Endpoint: app.cfg.Tracing.Endpoint,
		Insecure: app.cfg.Tracing.Insecure,
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.tracing = shutdown
}

func (app *App) initStore() {
	const op = "App.initStore"

	switch app.cfg.StorageDriver {
	case config.StorageDriverMemory:
		slog.Warn("using in-memory storage, data is lost on exit")
		app.store = memstore.New()
	default:
		db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.sqlDB = &db
		app.store = storage.NewStore(db)
	}
}

func (app *App) initBrokerTLS() {
	const op = "App.initBrokerTLS"

	tlsFiles := app.cfg.Broker.TLS
	if !tlsFiles.Enabled() {
		return
	}
	tlsCfg, err := adapter.MakeTLSConfig(tlsFiles.CA, tlsFiles.Cert, tlsFiles.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	app.tlsCfg = tlsCfg
	kafka.ConfigureGokaTLS(app.tlsCfg)
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	ctx := app.ctx
	topics := app.cfg.Broker.Topics

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.tlsCfg != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.tlsCfg))
	}
	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}
	identifier := schema.NewRegistryIdentifier(srClient)

	app.serdes.stockAdjusted, err = schema.NewSerdeStockAdjustedV1(ctx,
		schema.SubjectOpt(schema.SubjectName(topics.StockAdjusted)),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.orderStatus, err = schema.NewSerdeOrderStatusV1(ctx,
		schema.SubjectOpt(schema.SubjectName(topics.OrderEvents)),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.lowStockAlert, err = schema.NewSerdeLowStockAlertV1(ctx,
		schema.SubjectOpt(schema.SubjectName(topics.LowStockAlerts)),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}
}

func (app *App) initProducers() {
	const op = "App.initProducers"

	ctx := app.ctx
	seedBrokers := app.cfg.Broker.SeedBrokers
	topics := app.cfg.Broker.Topics

	stockProducer, err := kafka.NewStockEventsProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, topics.StockAdjusted, app.tlsCfg),
		kafka.ProducerEncoderOpt(app.serdes.stockAdjusted),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	ordersProducer, err := kafka.NewOrderEventsProducer(
		kafka.ProducerClientOpt(ctx, seedBrokers, topics.OrderEvents, app.tlsCfg),
		kafka.ProducerEncoderOpt(app.serdes.orderStatus),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producers.stock = &stockProducer
	app.producers.orders = &ordersProducer
}

func (app *App) initCoreService() {
	var (
		stockEvents port.StockEventsProducer
		orderEvents port.OrderEventsProducer
	)
	if app.producers.stock != nil {
		stockEvents = app.producers.stock
	}
	if app.producers.orders != nil {
		orderEvents = app.producers.orders
	}

	app.service = service.New(app.store, stockEvents, orderEvents, service.Config{
		LowStockThreshold:        app.cfg.Store.LowStockThreshold,
		DecrementStockOnCheckout: app.cfg.Store.DecrementStockOnCheckout,
	})
}

func (app *App) initLowStockPipeline() {
	const op = "App.initLowStockPipeline"

	seedBrokers := app.cfg.Broker.SeedBrokers
	topics := app.cfg.Broker.Topics
	consumers := app.cfg.Broker.Consumers

	threshold := app.cfg.Store.LowStockThreshold
	if threshold < 0 {
		threshold = domain.DefaultLowStockThreshold
	}

	processor, err := kafka.NewLowStockProcessor(kafka.LowStockProcessorConfig{
		SeedBrokers:        seedBrokers,
		StockAdjustedTopic: topics.StockAdjusted,
		Group:              consumers.LowStockGroup,
		AlertsTopic:        topics.LowStockAlerts,
		Threshold:          threshold,
		StockAdjustedSerde: app.serdes.stockAdjusted,
		AlertSerde:         app.serdes.lowStockAlert,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	consumer, err := kafka.NewStockAlertsConsumer(
		kafka.ConsumerClientOpt(
			seedBrokers, topics.LowStockAlerts, consumers.StockAlertsGroup, app.tlsCfg,
		),
		kafka.ConsumerDecoderOpt(app.serdes.lowStockAlert),
		kafka.StockAlertsSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.lowStockProcessor = processor
	app.stockAlertsConsumer = consumer
}

func (app *App) initInboundAdapters() {
	handler := httphandler.NewHandler(app.cfg.AdminToken, httphandler.Services{
		Catalog:   app.service,
		Inventory: app.service,
		Carts:     app.service,
		Orders:    app.service,
	})
	httpServer := httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, handler)
	app.httpServer = &httpServer
}

func (app *App) Run(stopFn context.CancelFunc) {
	if app.lowStockProcessor != nil {
		app.wg.Add(1)
		go app.lowStockProcessor.Run(app.ctx, stopFn, &app.wg)
		app.wg.Wait()
	}
	if app.stockAlertsConsumer != nil {
		go app.stockAlertsConsumer.Run(app.ctx)
	}

	if app.httpServer != nil {
		go app.httpServer.Run(stopFn)
	}

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	const op = "App.Close"
	log := slog.With("op", op)

	log.Info("application is closing...")

	if app.httpServer != nil {
		app.httpServer.Close(ctx)
	}
	if app.stockAlertsConsumer != nil {
		app.stockAlertsConsumer.Close()
	}
	if app.lowStockProcessor != nil {
		app.lowStockProcessor.Close()
	}
	if app.producers.stock != nil {
		app.producers.stock.Close()
	}
	if app.producers.orders != nil {
		app.producers.orders.Close()
	}
	if app.sqlDB != nil {
		app.sqlDB.Close()
	}
	if err := app.tracing(ctx); err != nil {
		log.Error("failed to flush traces", "err", err)
	}

	log.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
