//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"idregistry/internal/platform/kafka/producer"
	"idregistry/pkg/testutil/containers"
)

// ProducerIntegrationSuite publishes against a real broker: a successful
// Produce must mean the record is consumable with its headers intact.
type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
	prod, err := producer.New(producer.Config{
		Brokers:         s.kafka.Brokers,
		Acks:            "all",
		DeliveryTimeout: 10 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) TestProduceDeliversWithHeaders() {
	ctx := context.Background()
	topic := "identity-notifications-it"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("account-1"),
		Value: []byte(`{"account":"account-1","name":"Alice"}`),
		Headers: map[string]string{
			"event_type":   "identity.registered",
			"aggregate_id": "account-1",
		},
	})
	s.Require().NoError(err)

	consumer, err := s.kafka.NewConsumer(ctx, "producer-it", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "account-1"
	})
	s.Require().NotNil(record)
	s.JSONEq(`{"account":"account-1","name":"Alice"}`, string(record.Value))

	headers := map[string]string{}
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal("identity.registered", headers["event_type"])
	s.Equal("account-1", headers["aggregate_id"])
}

func (s *ProducerIntegrationSuite) TestHealthyAndClose() {
	ctx := context.Background()
	s.True(s.producer.Healthy(ctx))

	prod, err := producer.New(producer.Config{Brokers: s.kafka.Brokers, Acks: "1"}, nil)
	s.Require().NoError(err)
	s.Require().NoError(prod.Close())
	s.False(prod.Healthy(ctx))
	s.Error(prod.Produce(ctx, &producer.Message{Topic: "x"}))
}
