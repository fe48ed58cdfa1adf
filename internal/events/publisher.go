// Package events publishes claim lifecycle transitions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/ppiankov/claimify/internal/logging"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
)

// Publisher writes ClaimEvents to a Kafka topic keyed by claim key, so every
// transition of one claim lands on the same partition. With Kafka disabled it
// only logs.
type Publisher struct {
	writer    *kafka.Writer
	principal string
	topic     string
	enabled   bool
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers   []string
	Topic     string
	Principal string
	Enabled   bool
}

// FromModel converts the events section of the claimify config.
func FromModel(c model.EventsConfig) *Config {
	return &Config{
		Brokers:   c.Brokers,
		Topic:     c.Topic,
		Principal: c.Principal,
		Enabled:   c.Enabled,
	}
}

// New creates a publisher. A nil m uses metrics.DefaultMetrics.
func New(cfg *Config, m *metrics.Metrics) *Publisher {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	logger := logging.WithComponent("events")

	if cfg == nil {
		logger.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: m, log: logger}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal: cfg.Principal,
			topic:     cfg.Topic,
			metrics:   m,
			log:       logger,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	p := &Publisher{
		principal: cfg.Principal,
		topic:     cfg.Topic,
		enabled:   true,
		metrics:   m,
		log:       logger,
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
		Async:        true,
		Completion:   p.completed,
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")
	return p
}

// Emit queues ev without blocking. Delivery failures are logged and counted
// by the writer's completion callback.
func (p *Publisher) Emit(ev model.ClaimEvent) {
	msg, err := p.message(ev)
	if err != nil {
		return
	}
	if !p.enabled || p.writer == nil {
		p.metrics.RecordEventPublish(p.topic, nil)
		return
	}
	// async writers return immediately
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.log.Error().Err(err).Str("claimKey", ev.ClaimKey).Msg("Failed to queue event")
		p.metrics.RecordEventPublish(p.topic, err)
	}
}

// Publish writes ev and, for a synchronous writer, waits for the broker.
func (p *Publisher) Publish(ctx context.Context, ev model.ClaimEvent) error {
	msg, err := p.message(ev)
	if err != nil {
		return err
	}
	if !p.enabled || p.writer == nil {
		p.metrics.RecordEventPublish(p.topic, nil)
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Str("claimKey", ev.ClaimKey).Msg("Failed to write to Kafka")
		p.metrics.RecordEventPublish(p.topic, err)
		return err
	}
	return nil
}

func (p *Publisher) message(ev model.ClaimEvent) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return kafka.Message{}, err
	}

	p.log.Debug().
		Str("principal", p.principal).
		Str("topic", p.topic).
		Str("claimKey", ev.ClaimKey).
		RawJSON("payload", payload).
		Msg("Publishing event")

	return kafka.Message{
		Key:   []byte(ev.ClaimKey),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("claim." + string(ev.To))},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}, nil
}

func (p *Publisher) completed(msgs []kafka.Message, err error) {
	for range msgs {
		p.metrics.RecordEventPublish(p.topic, err)
	}
	if err != nil {
		p.log.Error().Err(err).Int("messages", len(msgs)).Str("topic", p.topic).Msg("Failed to write to Kafka")
	}
}

// Enabled reports whether events go to Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.log.Error().Err(err).Msg("Error closing writer")
		return err
	}
	return nil
}
