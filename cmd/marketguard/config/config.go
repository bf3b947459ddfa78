package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Modes.
const (
	ModeBatch  = "batch"
	ModeWorker = "worker"
)

// Cache backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Default retry attempts of comp fetches per mode.
const (
	batchRetryAttempts  = 4
	workerRetryAttempts = 2
)

// ErrInvalidConfig is returned when configuration values are not supported.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	Mode          string        `env:"MODE" envDefault:"batch"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	ListingsPath  string        `env:"LISTINGS_PATH" envDefault:"results.json"`
	ReportPath    string        `env:"REPORT_PATH" envDefault:"flip_report.json"`
	ReportCSVPath string        `env:"REPORT_CSV_PATH"`
	SummaryPath   string        `env:"SUMMARY_PATH"`
	BatchLimit    int           `env:"BATCH_LIMIT" envDefault:"0"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	Gate       Gate
	Thresholds Thresholds
	Cache      Cache
	Source     Source
	RabbitMQ   RabbitMQ
}

// Gate holds listing screening and quality gate configuration. Zero price bound disables it.
type Gate struct {
	RulesPath           string          `env:"RULES_PATH"`
	BrandWhitelistExtra []string        `env:"BRAND_WHITELIST_EXTRA" envSeparator:","`
	MinPrice            decimal.Decimal `env:"MIN_PRICE" envDefault:"0"`
	MaxPrice            decimal.Decimal `env:"MAX_PRICE" envDefault:"0"`
	MaxShipping         decimal.Decimal `env:"MAX_SHIPPING" envDefault:"0"`
	IncludeShipping     bool            `env:"INCLUDE_SHIPPING" envDefault:"false"`
}

// Thresholds holds flip evaluation thresholds.
type Thresholds struct {
	MinVolume            int             `env:"MIN_VOLUME" envDefault:"10"`
	MinProfit            decimal.Decimal `env:"MIN_PROFIT" envDefault:"20"`
	MinROIPercent        decimal.Decimal `env:"MIN_ROI_PERCENT" envDefault:"20"`
	FeesFraction         decimal.Decimal `env:"FEES_FRACTION" envDefault:"0.13"`
	NearMissDollarMargin decimal.Decimal `env:"NEAR_MISS_DOLLAR_MARGIN" envDefault:"5"`
	NearMissROIMargin    decimal.Decimal `env:"NEAR_MISS_ROI_MARGIN" envDefault:"5"`
}

// Cache holds resale comps cache configuration.
type Cache struct {
	Backend     string        `env:"CACHE_BACKEND" envDefault:"file"`
	Path        string        `env:"CACHE_PATH" envDefault:"resale_cache.json"`
	TTL         time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	MaxResults  int           `env:"CACHE_MAX_RESULTS" envDefault:"15"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
}

// Source holds resale comps source configuration.
type Source struct {
	URL           string        `env:"COMP_SOURCE_URL"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"0"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"2s"`
	RetryMaxDelay time.Duration `env:"RETRY_MAX_DELAY" envDefault:"30s"`
	RequestDelay  time.Duration `env:"REQUEST_DELAY" envDefault:"2s"`
}

// RabbitMQ holds RabbitMQ configuration.
type RabbitMQ struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"marketguard-ex"`
	Queue      string `env:"RABBITMQ_QUEUE" envDefault:"marketguard.commands"`
	ResultsKey string `env:"RABBITMQ_RESULTS_KEY" envDefault:"marketguard.flips"`
}

// Load reads optional .env files and parses configuration from environment.
// Variables already set in environment take precedence over .env files.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("can't load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't parse env variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// RetryAttempts returns configured retry attempts or default of the mode.
func (c Config) RetryAttempts() int {
	if c.Source.RetryAttempts > 0 {
		return c.Source.RetryAttempts
	}
	if c.Mode == ModeWorker {
		return workerRetryAttempts
	}
	return batchRetryAttempts
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeBatch, ModeWorker:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}

	switch c.Cache.Backend {
	case BackendFile:
	case BackendPostgres:
		if c.Cache.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required by postgres cache", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required by redis cache", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	if c.Mode == ModeWorker && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: RABBITMQ_URL is required in worker mode", ErrInvalidConfig)
	}

	return nil
}
