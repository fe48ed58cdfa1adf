package retrieval

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/claimify/internal/cache"
	"github.com/ppiankov/claimify/internal/logging"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/validate"
	"github.com/ppiankov/claimify/internal/worker"
)

// ErrDispatcherClosed is returned by Send after Close.
var ErrDispatcherClosed = errors.New("retrieval dispatcher closed")

// fallbackConfidence and fallbackRationale settle requests the provider
// could not answer.
const (
	fallbackConfidence = 0.2
	fallbackRationale  = "Temporarily unable to verify"
)

// ResultHandler receives verdicts keyed by claim key.
type ResultHandler interface {
	HandleResult(claimKey string, res model.FactCheckResult)
}

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	Workers           int
	QueueSize         int
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
	Sources           *validate.Classifier
	Metrics           *metrics.Metrics
	Logger            *zerolog.Logger
}

// Dispatcher sends fact-check requests on a worker pool and reports each
// verdict to the bound ResultHandler. Send returns as soon as the request is
// queued.
type Dispatcher struct {
	checker Checker
	baseURL string
	model   string
	pool    *worker.Pool
	limiter *worker.Limiter
	cache   cache.Cache
	ttl     time.Duration
	sources *validate.Classifier
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu      sync.RWMutex
	handler ResultHandler
	closed  bool
}

type job struct {
	d   *Dispatcher
	req Request
}

type jobResult struct {
	req    Request
	res    model.FactCheckResult
	err    error
	cached bool
}

func (r *jobResult) GetError() error {
	return r.err
}

// NewDispatcher creates and starts a dispatcher around checker.
func NewDispatcher(checker Checker, opts DispatcherOptions) *Dispatcher {
	logger := logging.WithComponent("retrieval")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}

	d := &Dispatcher{
		checker: checker,
		limiter: worker.NewLimiter(opts.RequestsPerSecond, opts.Burst),
		ttl:     opts.CacheTTL,
		sources: opts.Sources,
		metrics: opts.Metrics,
		log:     logger,
	}
	if ep, ok := checker.(interface{ BaseURL() string }); ok {
		d.baseURL = ep.BaseURL()
	}
	if m, ok := checker.(interface{ Model() string }); ok {
		d.model = m.Model()
	}
	if d.baseURL == "" {
		d.baseURL = "retrieval://" + checker.Name()
	}
	if opts.CacheTTL > 0 {
		d.cache = cache.NewMemoryCache(opts.CacheTTL, 2*opts.CacheTTL)
	}

	d.pool = worker.NewPool(opts.Workers, opts.QueueSize, d.deliver)
	d.pool.Start()
	return d
}

// Bind sets the handler that receives verdicts. Results produced before a
// handler is bound are dropped.
func (d *Dispatcher) Bind(h ResultHandler) {
	d.mu.Lock()
	d.handler = h
	d.mu.Unlock()
}

// Send queues a request. It blocks only while the queue is full.
func (d *Dispatcher) Send(ctx context.Context, claimID, query string, meta model.DispatchMeta) error {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return ErrDispatcherClosed
	}

	req := Request{
		ClaimID:  claimID,
		ClaimKey: meta.ClaimKey,
		Claim:    meta.Claim.Quote,
		Context:  meta.Claim.Context,
		Query:    query,
		Tags:     meta.Tags,
		IsRetry:  meta.IsRetry,
	}
	if err := d.pool.Submit(ctx, &job{d: d, req: req}); err != nil {
		if errors.Is(err, worker.ErrPoolClosed) {
			return ErrDispatcherClosed
		}
		return err
	}
	return nil
}

// Execute runs one request: cache, rate limit, provider call.
func (j *job) Execute(ctx context.Context) worker.Result {
	d := j.d
	key := cache.QueryKey(d.checker.Name(), d.model, j.req.Query)

	if d.cache != nil {
		res, hit := d.cache.Get(key)
		d.metrics.RecordCacheLookup(hit)
		if hit {
			return &jobResult{req: j.req, res: res, cached: true}
		}
	}

	if err := d.limiter.Wait(ctx, d.baseURL); err != nil {
		return &jobResult{req: j.req, err: err}
	}

	start := time.Now()
	res, err := d.checker.Check(ctx, j.req)
	latency := time.Since(start).Seconds()
	if err != nil {
		d.metrics.RecordRetrieval(d.checker.Name(), err, errorType(err), latency)
		return &jobResult{req: j.req, err: err}
	}
	d.metrics.RecordRetrieval(d.checker.Name(), nil, "", latency)

	if d.sources != nil {
		res.Citations = d.sources.Rank(res.Citations)
	}
	if d.cache != nil && res.Verdict != model.VerdictUncertain {
		d.cache.Set(key, res, d.ttl)
	}
	return &jobResult{req: j.req, res: res}
}

// deliver turns a job result into a verdict for the engine. Failures settle
// as a low-confidence UNCERTAIN so the claim never stays in flight.
func (d *Dispatcher) deliver(r worker.Result) {
	jr := r.(*jobResult)
	res := jr.res
	if jr.err != nil {
		d.log.Warn().
			Err(jr.err).
			Str("claimId", jr.req.ClaimID).
			Str("claimKey", jr.req.ClaimKey).
			Bool("retry", jr.req.IsRetry).
			Msg("Fact-check request failed")
		conf := fallbackConfidence
		res = model.FactCheckResult{
			Verdict:    model.VerdictUncertain,
			Confidence: &conf,
			Rationale:  fallbackRationale,
			CheckedAt:  time.Now(),
		}
	} else {
		d.log.Debug().
			Str("claimId", jr.req.ClaimID).
			Str("verdict", string(res.Verdict)).
			Bool("cached", jr.cached).
			Msg("Fact-check verdict")
	}

	d.mu.RLock()
	h := d.handler
	d.mu.RUnlock()
	if h == nil {
		d.log.Warn().Str("claimKey", jr.req.ClaimKey).Msg("No result handler bound, dropping verdict")
		return
	}
	h.HandleResult(jr.req.ClaimKey, res)
}

// Close stops accepting requests and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	d.pool.Close()
}

// Shutdown stops immediately; in-flight requests are cancelled.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.pool.Shutdown()
}
