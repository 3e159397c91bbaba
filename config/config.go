package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "ECOM_CONFIG_FILE"

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type consumers struct {
	LowStockGroup    string `mapstructure:"low_stock_group"`
	StockAlertsGroup string `mapstructure:"stock_alerts_group"`
}

type topics struct {
	StockAdjusted  string `mapstructure:"stock_adjusted"`
	OrderEvents    string `mapstructure:"order_events"`
	LowStockAlerts string `mapstructure:"low_stock_alerts"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether the event pipeline is configured.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type store struct {
	LowStockThreshold        int  `mapstructure:"low_stock_threshold"`
	DecrementStockOnCheckout bool `mapstructure:"decrement_stock_on_checkout"`
}

type tracing struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	StorageDriver  string     `mapstructure:"storage_driver"`
	SQLDB          string     `mapstructure:"sql_db"`
	AdminToken     string     `mapstructure:"admin_token"`
	Store          store      `mapstructure:"store"`
	Tracing        tracing    `mapstructure:"tracing"`
	Broker         broker     `mapstructure:"broker"`
}

// Load reads the file named by ECOM_CONFIG_FILE or the --config flag
// and exits on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeHook accepts level names such as "debug" for log_level.
var decodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.TextUnmarshallerHookFunc(),
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8000")
	v.SetDefault("storage_driver", StorageDriverPostgres)
	v.SetDefault("store.low_stock_threshold", -1)
	v.SetDefault("broker.topics.stock_adjusted", "stock_adjusted")
	v.SetDefault("broker.topics.order_events", "order_events")
	v.SetDefault("broker.topics.low_stock_alerts", "low_stock_alerts")
	v.SetDefault("broker.consumers.low_stock_group", "low_stock_processor")
	v.SetDefault("broker.consumers.stock_alerts_group", "stock_alerts_saver")
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.SQLDB == "" {
			return fmt.Errorf("sql_db is required by the %q storage driver", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage_driver %q", c.StorageDriver)
	}
	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		return fmt.Errorf("broker.schema_registry_urls is required with broker.seed_brokers")
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	StorageDriver=%q
	SQLDB=%q
	AdminToken=%t

	Store:
		LowStockThreshold=%d
		DecrementStockOnCheckout=%t

	Tracing:
		Endpoint=%q
		Insecure=%t

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		StockAdjusted=%q
		OrderEvents=%q
		LowStockAlerts=%q
	Consumers:
		LowStockGroup=%q
		StockAlertsGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.StorageDriver,
		redactDSN(c.SQLDB),
		c.AdminToken != "",
		c.Store.LowStockThreshold,
		c.Store.DecrementStockOnCheckout,
		c.Tracing.Endpoint,
		c.Tracing.Insecure,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.StockAdjusted,
		c.Broker.Topics.OrderEvents,
		c.Broker.Topics.LowStockAlerts,
		c.Broker.Consumers.LowStockGroup,
		c.Broker.Consumers.StockAlertsGroup,
	)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
