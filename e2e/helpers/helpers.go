package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

const (
	contentType = "Content-Type"
)

// PrepareCompServer is helper function for mocking sold listings search API.
// Queries missing in prices are answered with internal server error.
// Returns function reporting number of requests made for query.
func PrepareCompServer(t *testing.T, prices map[string][]float64) (*httptest.Server, func(string) int) {
	t.Helper()

	mu := sync.Mutex{}
	requests := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		query := req.URL.Query().Get("q")

		mu.Lock()
		requests[query]++
		mu.Unlock()

		queryPrices, ok := prices[query]
		if !ok {
			wrt.WriteHeader(http.StatusInternalServerError)
			return
		}

		wrt.Header().Add(contentType, "application/json")
		wrt.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(wrt).Encode(map[string][]float64{"prices": queryPrices})
	}))

	t.Cleanup(func() {
		srv.Close()
	})

	return srv, func(query string) int {
		mu.Lock()
		defer mu.Unlock()
		return requests[query]
	}
}

// RepeatPrice returns n equal prices.
func RepeatPrice(price float64, n int) []float64 {
	prices := make([]float64, n)
	for ix := range prices {
		prices[ix] = price
	}
	return prices
}

// ReadCacheFile is helper function for reading comps cache file.
func ReadCacheFile(t *testing.T, path string) map[string]map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "can't read cache file")

	var entries map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entries), "can't decode cache file")

	return entries
}

// ReadReportFile is helper function for reading flip report file.
func ReadReportFile(t *testing.T, path string) []commander.FlipMessage {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "can't read report file")

	var records []commander.FlipMessage
	require.NoError(t, json.Unmarshal(data, &records), "can't decode report file")

	return records
}

// DeclareRMQExchange is helper function for declaring RMQ exchange.
func DeclareRMQExchange(t *testing.T, ch *amqp.Channel, exchange string) {
	t.Helper()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		require.FailNow(t, "can't declare exchange", exchange, err)
	}
}

// DeclareRMQQueue is helper function for declaring RMQ queue and binding and cleaning them after test is finished.
func DeclareRMQQueue(t *testing.T, channel *amqp.Channel, queueName, exchange, routingKey string) {
	t.Helper()

	_, err := channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		require.FailNow(t, "can't declare queue", queueName, err)
	}

	err = channel.QueueBind(queueName, routingKey, exchange, false, nil)
	if err != nil {
		require.FailNow(t, "can't bind queue", queueName, routingKey, err)
	}

	t.Cleanup(func() {
		_, err := channel.QueueDelete(queueName, false, false, true)
		if err != nil {
			require.FailNow(t, "can't delete queue", queueName, err)
		}
	})
}

// WaitForFlipMessages is blocking helper function, returns n flip messages consumed from queue.
func WaitForFlipMessages(t *testing.T, channel *amqp.Channel, queue string, n int, timeout time.Duration) []commander.FlipMessage {
	t.Helper()

	deliveries, err := channel.Consume(queue, "", true, false, false, false, nil)
	require.NoError(t, err, "can't consume results queue")

	messages := make([]commander.FlipMessage, 0, n)
	deadline := time.After(timeout)
	for len(messages) < n {
		select {
		case <-deadline:
			require.FailNow(t, "timeout waiting for flip messages", "got %d of %d", len(messages), n)
		case delivery := <-deliveries:
			msg, err := commander.DecodeFlipMessage(delivery.Body)
			require.NoError(t, err, "can't decode flip message")
			messages = append(messages, *msg)
		}
	}

	return messages
}
