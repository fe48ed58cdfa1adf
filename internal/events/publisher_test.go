package events

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
)

func testEvent() model.ClaimEvent {
	return model.ClaimEvent{
		ID:       "e1",
		ClaimID:  "c1",
		ClaimKey: "abc",
		From:     model.StatusReady,
		To:       model.StatusQueued,
		Version:  1,
		At:       time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, metrics.NewMetrics(prometheus.NewRegistry()))
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
			if err := p.Close(); err != nil {
				t.Errorf("expected no error closing disabled publisher, got %v", err)
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := FromModel(model.EventsConfig{
		Brokers:   []string{"localhost:9092"},
		Topic:     "test.claims",
		Principal: "test-principal",
	})
	p := New(cfg, metrics.NewMetrics(prometheus.NewRegistry()))

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topic != "test.claims" {
		t.Errorf("expected topic 'test.claims', got %s", p.topic)
	}
}

func TestNew_EnabledBuildsAsyncWriter(t *testing.T) {
	p := New(&Config{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "claims"}, metrics.NewMetrics(prometheus.NewRegistry()))
	if !p.Enabled() || p.writer == nil {
		t.Fatal("expected enabled publisher with a writer")
	}
	if !p.writer.Async {
		t.Error("expected async writer so Emit never blocks")
	}
	if p.writer.Topic != "claims" {
		t.Errorf("expected topic claims, got %s", p.writer.Topic)
	}
}

func TestPublisher_DisabledCountsEvents(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := New(&Config{Topic: "claims"}, m)

	p.Emit(testEvent())
	if err := p.Publish(context.Background(), testEvent()); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}

	if got := testutil.ToFloat64(m.EventPublishTotal.WithLabelValues("claims")); got != 2 {
		t.Errorf("expected 2 published events, got %v", got)
	}
}

func TestPublisher_Message(t *testing.T) {
	p := New(&Config{Principal: "svc", Topic: "claims"}, metrics.NewMetrics(prometheus.NewRegistry()))
	msg, err := p.message(testEvent())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(msg.Key) != "abc" {
		t.Errorf("expected key abc, got %s", msg.Key)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != "claim.QUEUED" {
		t.Errorf("expected eventType header claim.QUEUED, got %+v", msg.Headers)
	}
}
