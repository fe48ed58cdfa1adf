// Package engine holds the claim lifecycle state machine: ingestion and
// merging of extracted claims, debounced and rate-limited dispatch to the
// fact-check collaborator, one neutral retry on uncertain verdicts, and
// withdrawal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/claimify/internal/candidate"
	"github.com/ppiankov/claimify/internal/claimkey"
	"github.com/ppiankov/claimify/internal/extract"
	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/logging"
	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/score"
)

// ErrClosed is returned when ingesting into a closed engine.
var ErrClosed = errors.New("engine closed")

const retrySuffix = "_retry"

// Defaults for unset engine settings.
const (
	defaultDebounce             = 3 * time.Second
	defaultPendingCorefTimeout  = 12 * time.Second
	defaultMaxQueuePerMinute    = 10
	defaultDisplayMinConfidence = 0.3
)

// Item outcomes reported to metrics.
const (
	outcomeCreated   = "created"
	outcomeMerged    = "merged"
	outcomeWithdrawn = "withdrawn"
	outcomeDropped   = "dropped"
	outcomeIgnored   = "ignored"
)

// Options wire an engine to its collaborators. Only Dispatcher is required.
type Options struct {
	Config      model.EngineConfig
	Clock       Clock
	Dispatcher  Dispatcher
	Events      EventSink
	Metrics     *metrics.Metrics
	Logger      *zerolog.Logger
	Linguistics linguistics.Linguistics
	Speakers    model.SpeakerMap
}

// Engine tracks the claims of one conversation. All methods are safe for
// concurrent use; state changes are serialized by a single lock and the only
// asynchronous work is the dispatcher call.
type Engine struct {
	mu sync.Mutex

	cfg        model.EngineConfig
	clock      Clock
	dispatcher Dispatcher
	events     EventSink
	metrics    *metrics.Metrics
	log        zerolog.Logger
	gate       *score.Gate
	normalizer *extract.Normalizer
	speakers   model.SpeakerMap

	records map[string]*Record // current claim key
	aliases map[string]*Record // retired claim keys
	ids     map[string]*Record
	list    []*Record
	pending map[string]bool
	window  window

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates an engine.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.PendingCorefTimeout <= 0 {
		cfg.PendingCorefTimeout = defaultPendingCorefTimeout
	}
	if cfg.MaxQueuePerMinute <= 0 {
		cfg.MaxQueuePerMinute = defaultMaxQueuePerMinute
	}
	if cfg.MinVerifiability <= 0 {
		cfg.MinVerifiability = score.DefaultMinScore
	}
	if cfg.DisplayMinConfidence <= 0 {
		cfg.DisplayMinConfidence = defaultDisplayMinConfidence
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	events := opts.Events
	if events == nil {
		events = nopSink{}
	}
	logger := logging.WithComponent("engine")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	gate := score.NewGate(cfg.MinVerifiability)
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		cfg:        cfg,
		clock:      clock,
		dispatcher: opts.Dispatcher,
		events:     events,
		metrics:    opts.Metrics,
		log:        logger,
		gate:       gate,
		normalizer: extract.NewNormalizer(opts.Linguistics, gate),
		speakers:   opts.Speakers,
		records:    make(map[string]*Record),
		aliases:    make(map[string]*Record),
		ids:        make(map[string]*Record),
		pending:    make(map[string]bool),
		window:     window{limit: cfg.MaxQueuePerMinute},
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Gate returns the verifiability gate in use.
func (e *Engine) Gate() *score.Gate {
	return e.gate
}

// Normalizer returns the normalizer in use.
func (e *Engine) Normalizer() *extract.Normalizer {
	return e.normalizer
}

// UpsertFromLLM ingests one extraction payload. Each item is processed on
// its own; a failing item is logged and skipped. It returns the current
// claim for every item that created, updated or withdrew a record.
func (e *Engine) UpsertFromLLM(payload model.LLMPayload, index model.TranscriptIndex, mem *memory.Memories) ([]model.NormalizedClaim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}

	now := e.clock.Now()
	e.speakers = e.speakers.Merge(payload.SpeakerMap())
	gate := candidate.NewFirstPersonGate(e.speakers, e.cfg.AllowFirstPersonNamed)

	var out []model.NormalizedClaim
	for _, item := range payload.Items {
		claim, outcome, err := e.processItemSafe(item, index, mem, gate, now)
		if err != nil {
			e.log.Warn().Err(err).Str("claimId", item.ID).Int("rev", payload.Rev).Msg("Failed to process claim item")
			e.metrics.RecordItem("error")
			continue
		}
		e.metrics.RecordItem(outcome)
		if outcome == outcomeCreated || outcome == outcomeMerged || outcome == outcomeWithdrawn {
			out = append(out, claim)
		}
	}
	e.metrics.SetRecords(len(e.list))
	return out, nil
}

func (e *Engine) processItemSafe(item model.RawClaimItem, index model.TranscriptIndex, mem *memory.Memories, gate *candidate.FirstPersonGate, now time.Time) (claim model.NormalizedClaim, outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing item %q: %v", item.ID, r)
		}
	}()
	return e.processItem(item, index, mem, gate, now)
}

func (e *Engine) processItem(item model.RawClaimItem, index model.TranscriptIndex, mem *memory.Memories, gate *candidate.FirstPersonGate, now time.Time) (model.NormalizedClaim, string, error) {
	// 1. Withdrawal matches the original id only
	if item.RevisionAction == model.RevisionWithdrawn {
		rec := e.ids[item.ID]
		if rec == nil || rec.claim.ID != item.ID {
			return model.NormalizedClaim{}, outcomeIgnored, nil
		}
		e.withdraw(rec, now)
		return rec.claim.Clone(), outcomeWithdrawn, nil
	}

	// 2. First-person gate
	gated, ok := gate.Apply(item)
	if !ok {
		e.log.Debug().Str("claimId", item.ID).Str("speaker", item.SpeakerTag).Msg("Dropped first-person claim")
		return model.NormalizedClaim{}, outcomeDropped, nil
	}

	// 3. Context, subject and slots
	claim, err := e.normalizer.Normalize(gated, index, mem, now)
	if err != nil {
		return model.NormalizedClaim{}, "", fmt.Errorf("normalize: %w", err)
	}
	claim.ClaimKey = claimkey.Make(claim)
	claim.Status = model.StatusReady
	if !claim.HasSubject() {
		claim.Status = model.StatusPendingCoref
	}

	// 4. Merge by id, then by key, else create
	outcome := outcomeMerged
	rec := e.ids[claim.ID]
	if rec == nil {
		rec = e.records[claim.ClaimKey]
	}
	if rec != nil {
		rec = e.mergeInto(rec, claim, now)
		if claim.ID != "" && e.ids[claim.ID] == nil {
			e.ids[claim.ID] = rec
		}
	} else {
		rec = e.create(claim, now)
		outcome = outcomeCreated
	}

	// 5. Remember entities
	if mem != nil {
		texts := append([]string{rec.claim.Quote, rec.claim.Context}, rec.claim.ContextFragments...)
		mem.ObserveAll(rec.claim.SpeakerTag, index.LatestIdx(), texts...)
	}
	return rec.claim.Clone(), outcome, nil
}

func (e *Engine) create(claim model.NormalizedClaim, now time.Time) *Record {
	rec := newRecord(claim, now)
	e.records[claim.ClaimKey] = rec
	delete(e.aliases, claim.ClaimKey)
	if claim.ID != "" {
		e.ids[claim.ID] = rec
	}
	e.list = append(e.list, rec)
	e.emit(rec, "", now)

	e.log.Debug().
		Str("claimId", claim.ID).
		Str("claimKey", claim.ClaimKey).
		Str("status", string(claim.Status)).
		Str("slots", claimkey.Debug(claim)).
		Msg("Created claim record")
	return rec
}

// mergeInto folds claim into rec and returns the record that now holds it,
// which differs from rec when the merge made it a duplicate of another.
func (e *Engine) mergeInto(rec *Record, claim model.NormalizedClaim, now time.Time) *Record {
	if rec.claim.Status.IsTerminal() {
		return rec
	}
	before := rec.claim.Status
	if rec.merge(claim, now) {
		e.log.Debug().
			Str("claimId", rec.claim.ID).
			Int("version", rec.claim.Version).
			Msg("Claim changed materially")
	}
	if before == model.StatusPendingCoref && rec.claim.HasSubject() {
		e.transition(rec, model.StatusReady, now)
	}
	return e.rekey(rec, now)
}

// rekey moves a record to the key of its current slots. In-flight records
// keep their key so results still route; the old key stays as an alias. A
// record whose new key is already held is folded into the holder.
func (e *Engine) rekey(rec *Record, now time.Time) *Record {
	old := rec.claim.ClaimKey
	key := claimkey.Make(rec.claim)
	if key == old || rec.claim.Status.IsInFlight() || e.pending[old] {
		return rec
	}
	if holder := e.records[key]; holder != nil && holder != rec {
		e.fold(rec, holder, now)
		return holder
	}
	delete(e.records, old)
	e.records[key] = rec
	e.aliases[old] = rec
	delete(e.aliases, key)
	rec.claim.ClaimKey = key
	return rec
}

// fold retires dup in favour of holder. Ids and keys that reached dup route
// to holder afterwards.
func (e *Engine) fold(dup, holder *Record, now time.Time) {
	old := dup.claim.ClaimKey
	if !holder.claim.Status.IsTerminal() {
		holder.merge(dup.claim, now)
	}

	delete(e.records, old)
	e.aliases[old] = holder
	for k, r := range e.aliases {
		if r == dup {
			e.aliases[k] = holder
		}
	}
	for id, r := range e.ids {
		if r == dup {
			e.ids[id] = holder
		}
	}
	for i, r := range e.list {
		if r == dup {
			e.list = append(e.list[:i], e.list[i+1:]...)
			break
		}
	}

	e.log.Debug().
		Str("claimId", dup.claim.ID).
		Str("claimKey", old).
		Str("into", holder.claim.ID).
		Str("intoKey", holder.claim.ClaimKey).
		Msg("Folded duplicate claim")
}

func (e *Engine) withdraw(rec *Record, now time.Time) {
	e.transition(rec, model.StatusWithdrawn, now)
	rec.bumpVersion(now)
	delete(e.pending, rec.claim.ClaimKey)
}

func (e *Engine) transition(rec *Record, to model.Status, now time.Time) bool {
	from, changed := rec.setStatus(to, now)
	if !changed {
		return false
	}
	e.metrics.RecordTransition(string(from), string(to))
	e.emit(rec, from, now)
	e.log.Debug().
		Str("claimId", rec.claim.ID).
		Str("claimKey", rec.claim.ClaimKey).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("Claim transition")
	return true
}

func (e *Engine) emit(rec *Record, from model.Status, now time.Time) {
	e.events.Emit(model.ClaimEvent{
		ID:       uuid.NewString(),
		ClaimID:  rec.claim.ID,
		ClaimKey: rec.claim.ClaimKey,
		From:     from,
		To:       rec.claim.Status,
		Version:  rec.claim.Version,
		At:       now,
	})
}

// Tick runs, in order, the coreference timeout sweep, the dispatch sweep and
// the rate window cleanup. It never blocks on the dispatcher.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	now := e.clock.Now()

	for _, rec := range e.list {
		if rec.claim.Status == model.StatusPendingCoref && rec.age(now) > e.cfg.PendingCorefTimeout {
			e.transition(rec, model.StatusReady, now)
		}
	}

	e.dispatchReady(now)
	e.window.refresh(now)
}

func (e *Engine) dispatchReady(now time.Time) {
	if !e.window.allow(now) {
		e.metrics.RecordRateLimited()
		return
	}
	for _, rec := range e.list {
		c := rec.claim
		if c.Status != model.StatusReady ||
			!rec.stableFor(e.cfg.Debounce, now) ||
			!e.gate.IsVerifiableNow(c) ||
			e.pending[c.ClaimKey] {
			continue
		}
		e.dispatch(rec, now)
		if !e.window.allow(now) {
			e.metrics.RecordRateLimited()
			break
		}
	}
}

func (e *Engine) dispatch(rec *Record, now time.Time) {
	q := BuildQuery(rec.claim)
	e.transition(rec, model.StatusQueued, now)
	e.pending[rec.claim.ClaimKey] = true
	e.window.record(now)

	claim := rec.claim.Clone()
	e.send(rec, claim.ID, q.Text, model.DispatchMeta{
		ClaimKey: claim.ClaimKey,
		Tags:     q.Tags,
		Claim:    claim,
	})
}

func (e *Engine) retry(rec *Record) {
	q := BuildRetryQuery(rec.claim)
	claim := rec.claim.Clone()
	e.send(rec, claim.ID+retrySuffix, q.Text, model.DispatchMeta{
		ClaimKey: claim.ClaimKey,
		Tags:     q.Tags,
		Claim:    claim,
		IsRetry:  true,
	})
}

// send calls the dispatcher off the lock and applies the outcome once it
// returns.
func (e *Engine) send(rec *Record, claimID, query string, meta model.DispatchMeta) {
	if e.dispatcher == nil {
		e.log.Error().Str("claimId", claimID).Msg("No dispatcher configured")
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.dispatcher.Send(e.ctx, claimID, query, meta)
		e.metrics.RecordDispatch(meta.IsRetry, err)
		e.afterSend(rec, claimID, meta, err)
	}()
}

func (e *Engine) afterSend(rec *Record, claimID string, meta model.DispatchMeta, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// cleared or rebuilt while the call was out
	if e.records[meta.ClaimKey] != rec {
		return
	}
	now := e.clock.Now()

	if err != nil {
		e.log.Error().Err(err).Str("claimId", claimID).Str("claimKey", meta.ClaimKey).Bool("retry", meta.IsRetry).Msg("Failed to dispatch claim")
	}

	switch {
	case meta.IsRetry && err != nil:
		if rec.claim.Status == model.StatusChecking {
			e.transition(rec, model.StatusUncertain, now)
		}
		delete(e.pending, meta.ClaimKey)
	case err != nil:
		if rec.claim.Status == model.StatusQueued {
			e.transition(rec, model.StatusReady, now)
		}
		delete(e.pending, meta.ClaimKey)
	case !meta.IsRetry && rec.claim.Status == model.StatusQueued:
		e.transition(rec, model.StatusChecking, now)
	}
}

// HandleFactCheckResult applies a verdict to the claim behind claimKey.
func (e *Engine) HandleFactCheckResult(claimKey string, verdict model.Verdict, confidence *float64) {
	e.HandleResult(claimKey, model.FactCheckResult{Verdict: verdict, Confidence: confidence})
}

// HandleResult applies a full result. Results are routed by claim key, never
// by the dispatch id, and may arrive at any time. The first UNCERTAIN result
// triggers one neutral retry instead of settling.
func (e *Engine) HandleResult(claimKey string, res model.FactCheckResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	rec := e.records[claimKey]
	if rec == nil {
		rec = e.aliases[claimKey]
	}
	if rec == nil {
		e.log.Debug().Str("claimKey", claimKey).Msg("Result for unknown claim")
		return
	}
	now := e.clock.Now()

	switch rec.claim.Status {
	case model.StatusChecking:
	case model.StatusQueued:
		// the result beat the send acknowledgement
		e.transition(rec, model.StatusChecking, now)
	default:
		e.log.Debug().
			Str("claimKey", claimKey).
			Str("status", string(rec.claim.Status)).
			Str("verdict", string(res.Verdict)).
			Msg("Ignoring stale result")
		return
	}

	if res.Verdict == model.VerdictUncertain && !rec.retried {
		rec.retried = true
		e.retry(rec)
		return
	}

	e.transition(rec, res.Verdict.Status(), now)
	if res.Confidence != nil {
		rec.setConfidence(*res.Confidence, now)
	}
	if res.Rationale != "" {
		rec.rationale = res.Rationale
	}
	if len(res.Citations) > 0 {
		rec.citations = append([]model.Citation(nil), res.Citations...)
	}
	rec.checkedAt = res.CheckedAt
	if rec.checkedAt.IsZero() {
		rec.checkedAt = now
	}
	delete(e.pending, rec.claim.ClaimKey)
	e.metrics.RecordVerdict(string(res.Verdict))
}

// State returns every claim in creation order.
func (e *Engine) State() []model.NormalizedClaim {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.NormalizedClaim, 0, len(e.list))
	for _, rec := range e.list {
		out = append(out, rec.claim.Clone())
	}
	return out
}

// Records returns snapshots with timing and verdict details.
func (e *Engine) Records() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Snapshot, 0, len(e.list))
	for _, rec := range e.list {
		out = append(out, rec.snapshot())
	}
	return out
}

// Displayable returns non-withdrawn claims above the display threshold.
func (e *Engine) Displayable() []model.NormalizedClaim {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.NormalizedClaim
	for _, rec := range e.list {
		if rec.claim.Status != model.StatusWithdrawn && rec.claim.Confidence >= e.cfg.DisplayMinConfidence {
			out = append(out, rec.claim.Clone())
		}
	}
	return out
}

// ClaimByID returns the claim last stored for id.
func (e *Engine) ClaimByID(id string) (model.NormalizedClaim, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.ids[id]
	if rec == nil {
		return model.NormalizedClaim{}, false
	}
	return rec.claim.Clone(), true
}

// Pending reports whether a dispatch is outstanding for claimKey.
func (e *Engine) Pending(claimKey string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending[claimKey]
}

// Clear drops every record. Calls still in flight are ignored when they
// return.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = make(map[string]*Record)
	e.aliases = make(map[string]*Record)
	e.ids = make(map[string]*Record)
	e.list = nil
	e.pending = make(map[string]bool)
	e.window.reset()
	e.metrics.SetRecords(0)
}

// Wait blocks until all outstanding dispatcher calls have returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close stops ingestion, cancels outstanding dispatcher calls and waits for
// them.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancel()
	e.mu.Unlock()

	e.wg.Wait()
}
