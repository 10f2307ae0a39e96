package sync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"testimonials/pkg/logging"
)

// KafkaPublisher mirrors review events onto a topic keyed by review id.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func DialKafka(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true // required by SyncProducer
	cfg.Net.DialTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewKafkaPublisher(producer, topic, logger), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logging.OrNop(logger)}
}

func (k *KafkaPublisher) Publish(ev ReviewEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		k.logger.Warn("marshal review event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Value: sarama.ByteEncoder(b),
	}
	if ev.ReviewID != "" {
		msg.Key = sarama.StringEncoder(ev.ReviewID)
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		k.logger.Warn("publish review event", zap.String("topic", k.topic), zap.String("type", ev.Type), zap.Error(err))
	}
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
