// Package eventbus forwards classifier events to Kafka.
package eventbus

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"imgclassd/internal/classifier"
)

// Message is the JSON value written for each event.
type Message struct {
	Event    string         `json:"event"`
	Filename string         `json:"filename"`
	Time     int64          `json:"time"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// KafkaPublisher implements classifier.EventPublisher on a sarama
// AsyncProducer. Publish never blocks on the broker; delivery errors are
// logged from a background goroutine.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewProducerConfig returns the producer settings used by Dial.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 2
	config.Producer.Return.Errors = true
	config.Producer.Return.Successes = false
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	return config
}

// Dial connects an async producer to brokers.
func Dial(brokers []string, topic string, log zerolog.Logger) (*KafkaPublisher, error) {
	p, err := sarama.NewAsyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, err
	}
	return New(p, topic, log), nil
}

// New wraps an existing producer. The producer must have Return.Errors set.
func New(p sarama.AsyncProducer, topic string, log zerolog.Logger) *KafkaPublisher {
	k := &KafkaPublisher{producer: p, topic: topic, log: log, done: make(chan struct{})}
	go k.drainErrors()
	return k
}

var _ classifier.EventPublisher = (*KafkaPublisher)(nil)

func (k *KafkaPublisher) drainErrors() {
	defer close(k.done)
	for perr := range k.producer.Errors() {
		k.log.Warn().Err(perr.Err).Str("topic", k.topic).Msg("event delivery failed")
	}
}

// Publish enqueues e keyed by filename. Events after Close are dropped.
func (k *KafkaPublisher) Publish(e classifier.Event) {
	value, err := json.Marshal(Message{Event: e.Name, Filename: e.Filename, Time: time.Now().Unix(), Fields: e.Fields})
	if err != nil {
		k.log.Warn().Err(err).Str("event", e.Name).Msg("encode event")
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.Filename),
		Value: sarama.ByteEncoder(value),
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return
	}
	select {
	case k.producer.Input() <- msg:
	default:
		k.log.Warn().Str("event", e.Name).Msg("event buffer full, dropping")
	}
}

// Close flushes buffered messages and stops the producer.
func (k *KafkaPublisher) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	k.mu.Unlock()
	err := k.producer.Close()
	<-k.done
	return err
}
