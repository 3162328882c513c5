// Package kafka provides the search-analytics producer and consumer.
package kafka

import (
	"context"
	"encoding/json"

	"bridge-go/internal/config"
	"bridge-go/pkg/events"
	"bridge-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// EventProcessor is implemented by any service that can persist a search
// event. It decouples the consumer loop from the concrete repository.
type EventProcessor interface {
	Process(ctx context.Context, event events.SearchEvent) error
}

var producer *kafka.Writer

// InitProducer initializes the Kafka producer.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized successfully")
}

// ProduceSearchEvent publishes a search event. Best-effort: the caller treats
// a failure as log-only, never as a request failure.
func ProduceSearchEvent(event events.SearchEvent) error {
	if producer == nil {
		return nil
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Value: eventBytes,
		},
	)
}

// StartConsumer runs the analytics consumer loop until the reader fails.
func StartConsumer(cfg config.KafkaConfig, processor EventProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "bridge-go-analytics",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka consumer started, listening on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("failed to read message from Kafka", err)
			break
		}

		var event events.SearchEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("failed to parse Kafka message: %v, value: %s", err, string(m.Value))
			// Malformed message, commit so it does not block the queue.
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit malformed message: %v", err)
			}
			continue
		}

		if err := processor.Process(context.Background(), event); err != nil {
			// Analytics rows are not worth a retry storm; log and move on.
			log.Errorf("failed to persist search event: query=%q, error: %v", event.Query, err)
		}
		if err := r.CommitMessages(context.Background(), m); err != nil {
			log.Errorf("failed to commit Kafka message offset: %v", err)
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("failed to close Kafka consumer: %v", err)
	}
}
