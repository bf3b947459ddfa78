package rabbitmq_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/MichalMitros/marketguard/internal/platform/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exchange = "marketguard-integration"

func TestIntegrationPublishConsume(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}

	connection, err := amqp.Dial(url)
	require.NoError(t, err, "should open RabbitMQ connection")
	t.Cleanup(func() { _ = connection.Close() })

	mq, err := rabbitmq.NewRabbitMQ(connection, exchange)
	require.NoError(t, err, "should open RabbitMQ channel")

	queue := fmt.Sprintf("marketguard-test-%d", rand.Int63n(100000))
	require.NoError(t, mq.DeclareQueue(queue), "should declare queue")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan string, 2)
	errs, err := mq.Consume(ctx, queue, func(_ context.Context, message []byte) error {
		received <- string(message)
		if string(message) == "fail" {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err, "should start consuming")

	require.NoError(t, mq.Publish(ctx, queue, []byte("fail")), "should publish message")
	require.NoError(t, mq.Publish(ctx, queue, []byte("ok")), "should publish message")

	assert.Equal(t, "fail", <-received, "should receive first message")
	assert.ErrorIs(t, <-errs, assert.AnError, "should push handler error")
	assert.Equal(t, "ok", <-received, "should receive second message")

	cancel()
	<-mq.Done()
	require.NoError(t, mq.Close(), "should close channel")
}
