// Package events publishes per-layer resolution events.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
)

// LayerEvent describes one state transition of one feature kind during a run.
type LayerEvent struct {
	RunID    string    `json:"run_id,omitempty"`
	Kind     string    `json:"kind"`
	State    string    `json:"state"`
	Source   string    `json:"source,omitempty"`
	Key      string    `json:"key,omitempty"`
	Duration float64   `json:"duration_ms"`
	Error    string    `json:"error,omitempty"`
	TS       time.Time `json:"ts"`
}

type Publisher interface {
	// Publish never blocks; events may be dropped.
	Publish(ev LayerEvent)
	Close() error
}

type Noop struct{}

func (Noop) Publish(LayerEvent) {}
func (Noop) Close() error       { return nil }

// Multi fans every event out to each publisher in order.
type Multi []Publisher

func (m Multi) Publish(ev LayerEvent) {
	for _, p := range m {
		p.Publish(ev)
	}
}

// Close closes every publisher and returns the joined errors.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Kafka publishes JSON events keyed by kind through a sarama AsyncProducer.
// Events queue in a bounded channel; Publish drops when it is full.
type Kafka struct {
	topic   string
	logger  *slog.Logger
	events  chan LayerEvent
	prod    sarama.AsyncProducer
	stopped chan struct{}
	errsEnd chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.ClientID = "city-map-poster"
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	return cfg
}

// DialKafka connects an async producer to brokers.
func DialKafka(brokers []string, topic string, queueSize int, logger *slog.Logger) (*Kafka, error) {
	prod, err := sarama.NewAsyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("events: create async producer: %w", err)
	}
	return NewKafka(prod, topic, queueSize, logger), nil
}

// NewKafka takes ownership of prod; Close closes it.
func NewKafka(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *Kafka {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Kafka{
		topic:   topic,
		logger:  logger,
		events:  make(chan LayerEvent, queueSize),
		prod:    prod,
		stopped: make(chan struct{}),
		errsEnd: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.logger.Warn("events: marshal error", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.Kind),
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		defer close(p.errsEnd)
		for err := range p.prod.Errors() {
			if err != nil {
				p.logger.Warn("events: producer error", "err", err)
			}
		}
	}()

	return p
}

func (p *Kafka) Publish(ev LayerEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
	default:
		p.dropped.Add(1)
	}
}

// Dropped is the number of events discarded because the queue was full.
func (p *Kafka) Dropped() int64 { return p.dropped.Load() }

// Close flushes queued events and closes the producer. It is safe to call twice.
func (p *Kafka) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.stopped
	err := p.prod.Close()
	<-p.errsEnd
	if err != nil {
		return fmt.Errorf("events: close producer: %w", err)
	}
	return nil
}
