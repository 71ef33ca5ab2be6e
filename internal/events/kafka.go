package events

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
)

// KafkaPublisher writes video events to a Kafka topic, keyed by video id so
// every event of one video lands on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher connects a synchronous producer to brokers
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logrus.Infof("Kafka publisher ready (topic: %s)", topic)
	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends one event and waits for the broker acknowledgement
func (p *KafkaPublisher) Publish(event *models.VideoEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode video event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.VideoID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish video event: %w", err)
	}

	logrus.Debugf("Published %s event for %s (partition %d, offset %d)", event.Status, event.VideoID, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Noop discards every event
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) Publish(*models.VideoEvent) error { return nil }

func (Noop) Close() error { return nil }
