package cli

import (
	"fmt"

	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/events"
	"github.com/ppiankov/claimify/internal/logging"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/pipeline"
	"github.com/ppiankov/claimify/internal/retrieval"
	"github.com/ppiankov/claimify/internal/validate"
)

// Dispatcher names accepted by --dispatcher.
const (
	DispatcherDryRun     = "dry-run"
	DispatcherPerplexity = "perplexity"
)

// sessionRuntime is one session wired to its dispatcher, event sink and clock.
type sessionRuntime struct {
	session   *pipeline.Session
	clock     *engine.ManualClock
	dryRun    *retrieval.DryRun
	retrieval *retrieval.Dispatcher
	events    *events.Publisher
	sources   *validate.Classifier
}

// newRuntime builds a session for script using the named dispatcher.
func newRuntime(cfg model.Config, script *Script, dispatcher string) (*sessionRuntime, error) {
	cfg.Speakers = model.SpeakerMap(cfg.Speakers).Merge(script.Speakers)
	rt := &sessionRuntime{
		clock:   engine.NewManualClock(script.Start),
		sources: validate.NewClassifier(&cfg.Sources),
	}

	var disp engine.Dispatcher
	switch dispatcher {
	case "", DispatcherDryRun:
		rt.dryRun = retrieval.NewDryRun(logging.WithComponent("retrieval"))
		disp = rt.dryRun
	case DispatcherPerplexity:
		client, err := retrieval.NewClient(cfg.Retrieval)
		if err != nil {
			return nil, fmt.Errorf("create retrieval client: %w", err)
		}
		rt.retrieval = retrieval.NewDispatcher(client, retrieval.DispatcherOptions{
			Workers:           cfg.Retrieval.Workers,
			RequestsPerSecond: cfg.Retrieval.RequestsPerSecond,
			Burst:             cfg.Retrieval.Burst,
			CacheTTL:          cfg.Retrieval.CacheTTL,
			Sources:           rt.sources,
			Metrics:           metrics.DefaultMetrics,
		})
		disp = rt.retrieval
	default:
		return nil, fmt.Errorf("unknown dispatcher %q (want %s or %s)", dispatcher, DispatcherDryRun, DispatcherPerplexity)
	}

	var sink engine.EventSink
	if cfg.Events.Enabled {
		rt.events = events.New(events.FromModel(cfg.Events), metrics.DefaultMetrics)
		sink = rt.events
	}

	rt.session = pipeline.NewSession(cfg, pipeline.Options{
		ID:         script.Name,
		Dispatcher: disp,
		Events:     sink,
		Metrics:    metrics.DefaultMetrics,
		Clock:      rt.clock,
	})
	if rt.retrieval != nil {
		rt.retrieval.Bind(rt.session)
	}
	return rt, nil
}

// dispatched counts requests sent by a dry-run dispatcher.
func (rt *sessionRuntime) dispatched() int {
	if rt.dryRun == nil {
		return 0
	}
	return len(rt.dryRun.Sent())
}

// close drains outstanding requests before closing the session.
func (rt *sessionRuntime) close() {
	if rt.retrieval != nil {
		rt.retrieval.Close()
	}
	rt.session.Close()
	if rt.events != nil {
		_ = rt.events.Close()
	}
}
