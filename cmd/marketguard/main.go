package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MichalMitros/marketguard/cmd/marketguard/config"
	"github.com/MichalMitros/marketguard/internal/decoder"
	"github.com/MichalMitros/marketguard/internal/evaluator"
	"github.com/MichalMitros/marketguard/internal/fetcher"
	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/handler"
	"github.com/MichalMitros/marketguard/internal/normalizer"
	"github.com/MichalMitros/marketguard/internal/pipeline"
	"github.com/MichalMitros/marketguard/internal/platform/rabbitmq"
	"github.com/MichalMitros/marketguard/internal/platform/storage"
	"github.com/MichalMitros/marketguard/internal/resale"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// UserAgent is user agent header value used when fetching listings files and comps.
	UserAgent = "marketguard/0.1.0"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("level", cfg.LogLevel).
			Msg("can't parse log level")
	}
	zerolog.SetGlobalLevel(level)

	httpFetcher := fetcher.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout}, UserAgent)

	store, closeStore, err := openStore(cfg, &logger)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("backend", cfg.Cache.Backend).
			Msg("can't open comps cache")
	}
	defer closeStore()

	terms, err := loadTerms(cfg.Gate)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't load quality gate rules")
	}

	// throttling is applied per lookup, retries of a single lookup are delayed by backoff only.
	source := fetcher.NewThrottled(
		fetcher.NewRetrying(
			fetcher.NewCompSource(httpFetcher, cfg.Source.URL),
			fetcher.RetryPolicy{
				MaxAttempts: cfg.RetryAttempts(),
				BaseDelay:   cfg.Source.RetryDelay,
				Timeout:     cfg.HTTPTimeout,
				MaxDelay:    cfg.Source.RetryMaxDelay,
			},
			&logger,
		),
		cfg.Source.RequestDelay,
	)

	ops := []pipeline.Option{
		pipeline.WithBatchLimit(cfg.BatchLimit),
		pipeline.WithShippingInBuyPrice(cfg.Gate.IncludeShipping),
	}

	var amqpConnection *amqp.Connection
	var rmq *rabbitmq.RabbitMQ
	if cfg.RabbitMQ.URL != "" {
		if amqpConnection, err = amqp.Dial(cfg.RabbitMQ.URL); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ connection")
		}
		defer closeRabbitMQ(amqpConnection, &logger)

		if rmq, err = rabbitmq.NewRabbitMQ(amqpConnection, cfg.RabbitMQ.Exchange); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't open RabbitMQ channel")
		}

		ops = append(ops, pipeline.WithPublisher(handler.NewResultPublisher(
			commander.NewFlipSender(commander.NewRabbitMQSender(rmq, cfg.RabbitMQ.ResultsKey)),
		)))
	}

	flipEvaluator := evaluator.New(evaluator.Thresholds{
		MinVolume:            cfg.Thresholds.MinVolume,
		MinProfit:            cfg.Thresholds.MinProfit,
		MinROIPercent:        cfg.Thresholds.MinROIPercent,
		FeesFraction:         cfg.Thresholds.FeesFraction,
		NearMissDollarMargin: cfg.Thresholds.NearMissDollarMargin,
		NearMissROIMargin:    cfg.Thresholds.NearMissROIMargin,
	})
	thresholds := flipEvaluator.Thresholds()
	logger.Info().
		Int("minVolume", thresholds.MinVolume).
		Str("minProfit", thresholds.MinProfit.String()).
		Str("minRoiPercent", thresholds.MinROIPercent.String()).
		Str("feesFraction", thresholds.FeesFraction.String()).
		Msg("flip thresholds loaded")

	pipe := pipeline.NewPipeline(
		decoder.NewDecoder(),
		gate.NewScreen(gate.PriceWindow{
			MinPrice:    cfg.Gate.MinPrice,
			MaxPrice:    cfg.Gate.MaxPrice,
			MaxShipping: cfg.Gate.MaxShipping,
		}),
		gate.NewGate(terms),
		normalizer.New(terms.Brands, normalizer.DefaultAliases),
		resale.NewCache(
			store,
			source,
			&logger,
			resale.WithTTL(cfg.Cache.TTL),
			resale.WithMaxResults(cfg.Cache.MaxResults),
		),
		flipEvaluator,
		&logger,
		ops...,
	)

	// handle graceful shutdown and context cancellation
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Mode == config.ModeWorker {
		runWorker(ctx, cancel, termChan, cfg, pipe, rmq, httpFetcher, &logger)
		return
	}

	go func() {
		select {
		case <-termChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := runBatch(ctx, cfg, pipe, httpFetcher, &logger); err != nil {
		logger.Error().
			Err(err).
			Msg("batch scan failed")
		closeStore()
		os.Exit(1)
	}
}

func runWorker(
	ctx context.Context,
	cancel context.CancelFunc,
	termChan <-chan os.Signal,
	cfg config.Config,
	pipe *pipeline.Pipeline,
	rmq *rabbitmq.RabbitMQ,
	httpFetcher *fetcher.Fetcher,
	logger *zerolog.Logger,
) {
	if err := rmq.DeclareQueue(cfg.RabbitMQ.Queue); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't declare commands queue")
	}

	han := handler.NewHandler(rmq, pipe, httpFetcher, logger)

	// start consuming and handling messages
	if err := han.Start(ctx, cfg.RabbitMQ.Queue); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't start consuming")
	}

	logger.Info().Msg("marketguard worker up and running")

	select {
	case <-termChan:
		cancel()
	case <-ctx.Done():
	}

	logger.Info().Msg("graceful shutdown start")

	// wait for consumer to finish
	<-rmq.Done()

	if err := rmq.Close(); err != nil {
		logger.Error().
			Err(err).
			Msg("can't close RabbitMQ channel")
	}

	logger.Info().Msg("graceful shutdown successful")
}

func openStore(cfg config.Config, logger *zerolog.Logger) (resale.Store, func(), error) {
	switch cfg.Cache.Backend {
	case config.BackendPostgres:
		pgDB, err := sql.Open("postgres", cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgres(pgDB), func() {
			if err := pgDB.Close(); err != nil {
				logger.Error().
					Err(err).
					Msg("can't close Postgres connection")
			}
		}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		return storage.NewRedis(client), func() {
			if err := client.Close(); err != nil {
				logger.Error().
					Err(err).
					Msg("can't close Redis connection")
			}
		}, nil
	default:
		return storage.NewFile(cfg.Cache.Path, logger), func() {}, nil
	}
}

func loadTerms(cfg config.Gate) (gate.Terms, error) {
	terms := gate.DefaultTerms()
	if cfg.RulesPath != "" {
		var err error
		if terms, err = gate.LoadTerms(cfg.RulesPath); err != nil {
			return gate.Terms{}, err
		}
	}
	return terms.WithBrands(cfg.BrandWhitelistExtra...), nil
}

func closeRabbitMQ(connection *amqp.Connection, logger *zerolog.Logger) {
	if err := connection.Close(); err != nil {
		logger.Error().
			Err(err).
			Msg("can't close RabbitMQ connection")
	}
}
