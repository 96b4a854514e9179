package dispatch

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"

	"nyaya/internal/notification/models"
	"nyaya/internal/platform/kafka"
)

// Producer is the subset of *kgo.Client used for delivery.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka publishes alerts to a topic consumed by the SMS/e-mail gateway.
// The dedupe key is the record key so the gateway can drop replays.
type Kafka struct {
	producer Producer
	topic    string
}

func NewKafka(producer Producer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Send(ctx context.Context, channel models.Channel, recipient string, payload []byte, dedupeKey string) error {
	if recipient == "" {
		return Fatal(errors.New("recipient is empty"))
	}
	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(dedupeKey),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "channel", Value: []byte(channel)},
			{Key: "recipient", Value: []byte(recipient)},
			{Key: "dedupe_key", Value: []byte(dedupeKey)},
		},
	}
	if err := k.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		if kafka.IsRetriable(err) || errors.Is(err, context.Canceled) {
			return Retryable(err)
		}
		return Fatal(err)
	}
	return nil
}
