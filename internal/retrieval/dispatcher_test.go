package retrieval

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/validate"
)

var (
	_ engine.Dispatcher = (*Dispatcher)(nil)
	_ engine.Dispatcher = (*DryRun)(nil)
	_ ResultHandler     = (*engine.Engine)(nil)
)

type stubChecker struct {
	calls   int32
	verdict model.Verdict
	err     error
}

func (s *stubChecker) Name() string { return "stub" }

func (s *stubChecker) Check(_ context.Context, req Request) (model.FactCheckResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return model.FactCheckResult{}, s.err
	}
	conf := 0.9
	return model.FactCheckResult{Verdict: s.verdict, Confidence: &conf, Rationale: "checked " + req.Query}, nil
}

type handled struct {
	key string
	res model.FactCheckResult
}

type recorder struct {
	mu   sync.Mutex
	got  []handled
	done chan struct{}
}

func newRecorder(n int) *recorder {
	r := &recorder{done: make(chan struct{})}
	go func() {
		for {
			r.mu.Lock()
			if len(r.got) >= n {
				r.mu.Unlock()
				close(r.done)
				return
			}
			r.mu.Unlock()
			time.Sleep(time.Millisecond)
		}
	}()
	return r
}

func (r *recorder) HandleResult(key string, res model.FactCheckResult) {
	r.mu.Lock()
	r.got = append(r.got, handled{key: key, res: res})
	r.mu.Unlock()
}

func (r *recorder) wait(t *testing.T) []handled {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for results")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]handled(nil), r.got...)
}

func newTestDispatcher(c Checker, ttl time.Duration) (*Dispatcher, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	logger := zerolog.Nop()
	return NewDispatcher(c, DispatcherOptions{
		Workers:  2,
		CacheTTL: ttl,
		Metrics:  m,
		Logger:   &logger,
	}), m
}

func TestDispatcher_DeliversByClaimKey(t *testing.T) {
	checker := &stubChecker{verdict: model.VerdictVerified}
	d, _ := newTestDispatcher(checker, 0)
	defer d.Close()
	rec := newRecorder(1)
	d.Bind(rec)

	err := d.Send(context.Background(), "c1_retry", "australia inflation", model.DispatchMeta{ClaimKey: "key1", IsRetry: true})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := rec.wait(t)
	if got[0].key != "key1" {
		t.Errorf("Expected result routed to key1, got %s", got[0].key)
	}
	if got[0].res.Verdict != model.VerdictVerified || got[0].res.Rationale != "checked australia inflation" {
		t.Errorf("Unexpected result %+v", got[0].res)
	}
}

func TestDispatcher_FailureSettlesUncertain(t *testing.T) {
	checker := &stubChecker{err: errors.New("connection reset")}
	d, m := newTestDispatcher(checker, 0)
	defer d.Close()
	rec := newRecorder(1)
	d.Bind(rec)

	_ = d.Send(context.Background(), "c1", "q", model.DispatchMeta{ClaimKey: "k"})
	got := rec.wait(t)

	res := got[0].res
	if res.Verdict != model.VerdictUncertain {
		t.Errorf("Expected UNCERTAIN, got %s", res.Verdict)
	}
	if res.Confidence == nil || *res.Confidence != 0.2 {
		t.Errorf("Expected confidence 0.2, got %v", res.Confidence)
	}
	if res.Rationale != "Temporarily unable to verify" {
		t.Errorf("Unexpected rationale %q", res.Rationale)
	}
	if v := testutil.ToFloat64(m.RetrievalErrors.WithLabelValues("stub", "transport")); v != 1 {
		t.Errorf("Expected 1 transport error, got %v", v)
	}
}

func TestDispatcher_CachesSettledVerdicts(t *testing.T) {
	checker := &stubChecker{verdict: model.VerdictRefuted}
	d, m := newTestDispatcher(checker, time.Minute)
	rec := newRecorder(2)
	d.Bind(rec)

	_ = d.Send(context.Background(), "a", "Australia inflation 8%", model.DispatchMeta{ClaimKey: "ka"})
	// serialize the two requests so the second sees the cached verdict
	time.Sleep(50 * time.Millisecond)
	_ = d.Send(context.Background(), "b", "australia  inflation 8%", model.DispatchMeta{ClaimKey: "kb"})
	got := rec.wait(t)
	d.Close()

	if n := atomic.LoadInt32(&checker.calls); n != 1 {
		t.Errorf("Expected one provider call, got %d", n)
	}
	if got[1].key != "kb" || got[1].res.Verdict != model.VerdictRefuted {
		t.Errorf("Expected cached verdict for kb, got %+v", got[1])
	}
	if v := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); v != 1 {
		t.Errorf("Expected 1 cache hit, got %v", v)
	}
}

func TestDispatcher_UncertainIsNotCached(t *testing.T) {
	checker := &stubChecker{verdict: model.VerdictUncertain}
	d, _ := newTestDispatcher(checker, time.Minute)
	rec := newRecorder(2)
	d.Bind(rec)

	_ = d.Send(context.Background(), "a", "q", model.DispatchMeta{ClaimKey: "k"})
	time.Sleep(50 * time.Millisecond)
	_ = d.Send(context.Background(), "a_retry", "q", model.DispatchMeta{ClaimKey: "k", IsRetry: true})
	rec.wait(t)
	d.Close()

	if n := atomic.LoadInt32(&checker.calls); n != 2 {
		t.Errorf("Expected two provider calls, got %d", n)
	}
}

func TestDispatcher_SendAfterClose(t *testing.T) {
	d, _ := newTestDispatcher(&stubChecker{}, 0)
	d.Close()

	err := d.Send(context.Background(), "c1", "q", model.DispatchMeta{ClaimKey: "k"})
	if !errors.Is(err, ErrDispatcherClosed) {
		t.Errorf("Expected ErrDispatcherClosed, got %v", err)
	}
}

func TestDryRun(t *testing.T) {
	d := NewDryRun(zerolog.Nop())
	meta := model.DispatchMeta{ClaimKey: "k", Tags: []string{"quantity"}}
	if err := d.Send(context.Background(), "c1", "australia be 8%", meta); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	sent := d.Sent()
	if len(sent) != 1 || sent[0].ClaimID != "c1" || sent[0].Meta.ClaimKey != "k" {
		t.Errorf("Unexpected sent requests %+v", sent)
	}
}

type citingChecker struct{}

func (citingChecker) Name() string { return "citing" }

func (citingChecker) Check(_ context.Context, _ Request) (model.FactCheckResult, error) {
	return model.FactCheckResult{
		Verdict: model.VerdictRefuted,
		Citations: []model.Citation{
			{URL: "https://someblog.net/post"},
			{URL: "https://www.abs.gov.au/statistics/cpi"},
		},
	}, nil
}

func TestDispatcher_RanksCitations(t *testing.T) {
	logger := zerolog.Nop()
	d := NewDispatcher(citingChecker{}, DispatcherOptions{
		Sources: validate.NewClassifier(nil),
		Metrics: metrics.NewMetrics(prometheus.NewRegistry()),
		Logger:  &logger,
	})
	defer d.Close()
	rec := newRecorder(1)
	d.Bind(rec)

	_ = d.Send(context.Background(), "c1", "q", model.DispatchMeta{ClaimKey: "k"})
	cits := rec.wait(t)[0].res.Citations
	if len(cits) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(cits))
	}
	if cits[0].Tier != model.TierPrimary || cits[1].Tier != model.TierTertiary {
		t.Errorf("Expected official source first, got %+v", cits)
	}
}
