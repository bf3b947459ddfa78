package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MichalMitros/marketguard/e2e/helpers"
	"github.com/MichalMitros/marketguard/internal/decoder"
	"github.com/MichalMitros/marketguard/internal/evaluator"
	"github.com/MichalMitros/marketguard/internal/fetcher"
	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/handler"
	"github.com/MichalMitros/marketguard/internal/normalizer"
	"github.com/MichalMitros/marketguard/internal/pipeline"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/platform/rabbitmq"
	"github.com/MichalMitros/marketguard/internal/platform/storage"
	"github.com/MichalMitros/marketguard/internal/report"
	"github.com/MichalMitros/marketguard/internal/resale"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

const (
	userAgent = "marketguard-e2e-test/0.0.1"
	exchange  = "marketguard-e2e"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	os.Exit(m.Run())
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

type E2ETestSuite struct {
	suite.Suite
	listings   []byte
	compURL    string
	requests   func(string) int
	cachePath  string
	logs       bytes.Buffer
	logger     zerolog.Logger
	connection *amqp.Connection
	channel    *amqp.Channel
}

func (s *E2ETestSuite) SetupTest() {
	var err error

	if s.listings, err = os.ReadFile(filepath.Join("testdata", "listings.json")); err != nil {
		s.Require().FailNow("can't read listings file", err)
	}

	srv, requests := helpers.PrepareCompServer(s.T(), map[string][]float64{
		"milwaukee 2801 20": helpers.RepeatPrice(200, 12),
		"dewalt dcf887b":    helpers.RepeatPrice(135, 12),
	})
	s.compURL = srv.URL
	s.requests = requests

	s.cachePath = filepath.Join(s.T().TempDir(), "resale_cache.json")
	s.logs.Reset()
	s.logger = zerolog.New(zerolog.SyncWriter(&s.logs)).Level(zerolog.DebugLevel)
}

func (s *E2ETestSuite) TestBatchScan() {
	ctx := context.Background()
	pipe := s.newPipeline()

	// First scan fetches all comps
	results, stats, err := pipe.Run(ctx, bytes.NewReader(s.listings))
	s.Require().NoError(err, "scan shouldn't return any error")

	s.Require().Len(results, 3, "should evaluate every resalable listing")
	s.Equal("milwaukee 2801 20", results[0].Query, "should keep input order")
	s.True(results[0].Flip, "should mark drill as flip")
	s.Equal("74.00", results[0].EstimatedProfit.StringFixed(2), "should compute drill profit")
	s.Equal("Power Tools", results[0].Category, "should keep category")

	s.Equal("dewalt dcf887b", results[1].Query, "should normalize impact driver title")
	s.False(results[1].Flip, "shouldn't mark impact driver as flip")
	s.True(results[1].NearMiss, "should mark impact driver as near-miss")
	s.Equal(models.UnknownCategory, results[1].Category, "should default missing category")

	s.Equal("fluke 117", results[2].Query, "should normalize multimeter title")
	s.False(results[2].Flip, "shouldn't mark listing without comp as flip")
	s.True(results[2].AvgResalePrice.IsZero(), "should return zero comp when source fails")

	s.Equal(int32(1), stats.Malformed, "should count malformed listings")
	s.Equal(int32(1), stats.Duplicates, "should count duplicated listings")
	s.Equal(int32(1), stats.Screened[gate.ScreenAuctionOnly], "should count auction-only listings")
	s.Equal(int32(1), stats.Rejected[gate.RuleJunkTerm], "should count rejected listings")

	s.Equal(1, s.requests("milwaukee 2801 20"), "should fetch drill comp once")
	s.Equal(1, s.requests("dewalt dcf887b"), "should fetch impact driver comp once")
	s.Equal(2, s.requests("fluke 117"), "should retry failing fetch")

	cache := helpers.ReadCacheFile(s.T(), s.cachePath)
	s.Len(cache, 2, "shouldn't persist comps of failed fetches")
	s.Equal(200.0, cache["milwaukee 2801 20"]["avg_resale_price"], "should persist average price")
	s.Equal(12.0, cache["milwaukee 2801 20"]["volume_30d"], "should persist volume")

	// Second scan serves fresh comps from cache
	_, _, err = pipe.Run(ctx, bytes.NewReader(s.listings))
	s.Require().NoError(err, "scan shouldn't return any error")

	s.Equal(1, s.requests("milwaukee 2801 20"), "should serve fresh drill comp from cache")
	s.Equal(1, s.requests("dewalt dcf887b"), "should serve fresh impact driver comp from cache")
	s.Equal(4, s.requests("fluke 117"), "should retry missing comp again")

	// Report
	reportPath := filepath.Join(s.T().TempDir(), "flip_report.json")
	err = report.WriteFile(reportPath, func(w io.Writer) error { return report.WriteJSON(w, results) })
	s.Require().NoError(err, "should write report")

	records := helpers.ReadReportFile(s.T(), reportPath)
	s.Require().Len(records, 3, "should write all results")
	s.Equal(74.0, records[0].EstimatedProfit, "should write profit")
	s.Equal([]string{"profit within $5 of minimum", "ROI within 5% of minimum"}, records[1].NearMissReasons,
		"should write near-miss reasons",
	)
}

func (s *E2ETestSuite) TestWorkerScan() {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		s.T().Skip("RABBITMQ_URL not set")
	}

	var err error
	if s.connection, err = amqp.Dial(url); err != nil {
		s.Require().FailNow("can't open RabbitMQ connection", err)
	}
	defer s.connection.Close()

	if s.channel, err = s.connection.Channel(); err != nil {
		s.Require().FailNow("can't open RabbitMQ channel", err)
	}
	defer s.channel.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prepare test RMQ queues
	helpers.DeclareRMQExchange(s.T(), s.channel, exchange)
	queue := fmt.Sprintf("marketguard-e2e-cmd-%d", rand.Int63n(100000))
	resultsQueue := fmt.Sprintf("marketguard-e2e-flips-%d", rand.Int63n(100000))
	resultsKey := fmt.Sprintf("marketguard.flips.e2e.%d", rand.Int63n(100000))
	helpers.DeclareRMQQueue(s.T(), s.channel, resultsQueue, exchange, resultsKey)

	// Prepare RMQ client, worker and commander
	rmq, err := rabbitmq.NewRabbitMQ(s.connection, exchange)
	if err != nil {
		s.Require().FailNow("can't create RabbitMQ client", err)
	}
	s.Require().NoError(rmq.DeclareQueue(queue), "should declare commands queue")
	s.T().Cleanup(func() { _, _ = s.channel.QueueDelete(queue, false, false, false) })

	publisher := handler.NewResultPublisher(commander.NewFlipSender(commander.NewRabbitMQSender(rmq, resultsKey)))
	pipe := s.newPipeline(pipeline.WithPublisher(publisher))

	han := handler.NewHandler(rmq, pipe, fetcher.NewFetcher(http.DefaultClient, userAgent), &s.logger)
	s.Require().NoError(han.Start(ctx, queue), "handler shouldn't return any error")

	// Send scan command
	cmndr := commander.NewScanCommander(commander.NewRabbitMQSender(rmq, queue))
	if err := cmndr.SendScanCommand(ctx, "e2e", json.RawMessage(s.listings)); err != nil {
		s.Require().FailNow("can't publish scan command", err)
	}

	messages := helpers.WaitForFlipMessages(s.T(), s.channel, resultsQueue, 3, 30*time.Second)

	cancel()
	<-rmq.Done()

	s.Equal("milwaukee 2801 20", messages[0].Query, "should publish results in input order")
	s.True(messages[0].Flip, "should publish flip decision")
	s.Equal("dewalt dcf887b", messages[1].Query, "should publish near-miss result")
	s.Equal("fluke 117", messages[2].Query, "should publish result without comp")
	s.Contains(s.logs.String(), "scan finished", "should log finished scan")
}

func (s *E2ETestSuite) newPipeline(ops ...pipeline.Option) *pipeline.Pipeline {
	terms := gate.DefaultTerms()

	source := fetcher.NewRetrying(
		fetcher.NewCompSource(fetcher.NewFetcher(http.DefaultClient, userAgent), s.compURL),
		fetcher.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Timeout: 5 * time.Second},
		&s.logger,
	)

	return pipeline.NewPipeline(
		decoder.NewDecoder(),
		gate.NewScreen(gate.PriceWindow{}),
		gate.NewGate(terms),
		normalizer.New(terms.Brands, normalizer.DefaultAliases),
		resale.NewCache(storage.NewFile(s.cachePath, &s.logger), source, &s.logger),
		evaluator.New(evaluator.DefaultThresholds()),
		&s.logger,
		ops...,
	)
}
