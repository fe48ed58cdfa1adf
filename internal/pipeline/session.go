// Package pipeline wires one conversation together: the rolling transcript,
// entity memories, the optional candidate pre-pass and the claim engine.
package pipeline

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/claimify/internal/candidate"
	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/logging"
	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/metrics"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/transcript"
)

// Options supply the collaborators of a Session. Dispatcher is required.
type Options struct {
	ID          string
	Dispatcher  engine.Dispatcher
	Events      engine.EventSink
	Metrics     *metrics.Metrics
	Clock       engine.Clock
	Linguistics linguistics.Linguistics
}

// Session owns the state of one conversation. All methods are safe for
// concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	cfg      model.Config
	speakers model.SpeakerMap
	builder  *transcript.Builder
	memories *memory.Memories
	engine   *engine.Engine
	held     []model.RawClaimItem
	log      zerolog.Logger
}

// maxHeld bounds the items the pre-pass carries between payloads.
const maxHeld = 24

// NewSession creates a session from cfg.
func NewSession(cfg model.Config, opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	ling := opts.Linguistics
	if ling == nil {
		ling = linguistics.NewHeuristic()
	}
	logger := logging.WithSession("pipeline", id)
	engineLogger := logging.WithSession("engine", id)
	speakers := model.SpeakerMap(cfg.Speakers).Merge(nil)

	s := &Session{
		ID:       id,
		cfg:      cfg,
		speakers: speakers,
		builder:  transcript.NewBuilder(cfg.Transcript.WindowSize),
		memories: memory.New(ling, cfg.Memory.DequeSize, cfg.Memory.TopicID),
		log:      logger,
	}
	s.engine = engine.New(engine.Options{
		Config:      cfg.Engine,
		Clock:       opts.Clock,
		Dispatcher:  opts.Dispatcher,
		Events:      opts.Events,
		Metrics:     opts.Metrics,
		Logger:      &engineLogger,
		Linguistics: ling,
		Speakers:    speakers,
	})

	logger.Info().
		Str("topicId", s.memories.TopicID).
		Bool("assemble", cfg.Engine.AssembleFragments).
		Msg("Session started")
	return s
}

// Engine exposes the claim engine, e.g. to bind a result handler.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// AddTurn appends a transcript turn and returns the sentences it produced.
func (s *Session) AddTurn(turn model.Turn) []model.Sentence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.AddTurn(turn)
}

// Index returns the current transcript window.
func (s *Session) Index() model.TranscriptIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Index()
}

// Ingest feeds one extraction payload to the engine. With fragment assembly
// enabled the items first go through the candidate pre-pass.
func (s *Session) Ingest(payload model.LLMPayload) ([]model.NormalizedClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speakers = s.speakers.Merge(payload.SpeakerMap())
	if s.cfg.Engine.AssembleFragments {
		payload = s.prepass(payload)
	}
	return s.engine.UpsertFromLLM(payload, s.builder.Index(), s.memories)
}

// prepass filters, assembles and ranks candidates and forwards withdrawals.
// Items are enriched from the transcript before the context check. Items that
// still lack context, and ranked items beyond the dispatch cap, are held and
// offered again with the next payload.
func (s *Session) prepass(payload model.LLMPayload) model.LLMPayload {
	var withdrawals, candidates []model.RawClaimItem
	fresh := make(map[string]bool)
	for _, it := range payload.Items {
		fresh[it.ID] = true
		if it.RevisionAction == model.RevisionWithdrawn {
			withdrawals = append(withdrawals, it)
			continue
		}
		candidates = append(candidates, it)
	}
	reoffered := 0
	for _, it := range s.held {
		if !fresh[it.ID] {
			candidates = append(candidates, it)
			reoffered++
		}
	}
	s.held = nil

	opts := candidate.DefaultOptions()
	opts.Speakers = s.speakers
	opts.AllowFirstPersonIfNamed = s.cfg.Engine.AllowFirstPersonNamed
	plan := candidate.Build(candidates, opts)

	out := payload
	out.Items = withdrawals
	for _, id := range plan.Withdrawn {
		out.Items = append(out.Items, model.RawClaimItem{ID: id, RevisionAction: model.RevisionWithdrawn})
	}

	index := s.builder.Index()
	normalizer := s.engine.Normalizer()
	needContext := 0
	for _, it := range plan.Dispatch {
		it = normalizer.Enrich(it, index)
		if res := candidate.CheckContext(it); res.NeedRevision {
			needContext++
			s.hold(it)
			s.log.Debug().Str("claimId", it.ID).Str("reason", res.Reason).Msg("Holding claim until context arrives")
			continue
		}
		out.Items = append(out.Items, it)
	}
	deferred := plan.Ranked[len(plan.Dispatch):]
	for _, it := range deferred {
		s.hold(it)
	}

	s.log.Debug().
		Int("rev", payload.Rev).
		Int("candidates", len(candidates)).
		Int("reoffered", reoffered).
		Int("dropped", plan.Dropped).
		Int("assembled", len(plan.Withdrawn)).
		Int("needContext", needContext).
		Int("deferred", len(deferred)).
		Msg("Candidate pre-pass")
	return out
}

// hold keeps an item for the next pre-pass, dropping the oldest when full.
func (s *Session) hold(it model.RawClaimItem) {
	s.held = append(s.held, it)
	if over := len(s.held) - maxHeld; over > 0 {
		s.held = append([]model.RawClaimItem(nil), s.held[over:]...)
	}
}

// Held returns the items the pre-pass is carrying to the next payload.
func (s *Session) Held() []model.RawClaimItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RawClaimItem(nil), s.held...)
}

// Tick advances the engine's timers.
func (s *Session) Tick() {
	s.engine.Tick()
}

// HandleResult forwards a verdict to the engine.
func (s *Session) HandleResult(claimKey string, res model.FactCheckResult) {
	s.engine.HandleResult(claimKey, res)
}

// Claims returns every tracked claim.
func (s *Session) Claims() []model.NormalizedClaim {
	return s.engine.State()
}

// Cards projects the displayable claims for a UI.
func (s *Session) Cards() []Card {
	shown := make(map[string]bool)
	for _, c := range s.engine.Displayable() {
		shown[c.ClaimKey] = true
	}

	s.mu.Lock()
	speakers := s.speakers
	s.mu.Unlock()

	var cards []Card
	for _, snap := range s.engine.Records() {
		if shown[snap.Claim.ClaimKey] {
			cards = append(cards, NewCard(snap, speakers))
		}
	}
	return cards
}

// Reset clears the transcript, memories and claims.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builder.Reset()
	s.memories.Reset()
	s.held = nil
	s.engine.Clear()
	s.log.Info().Msg("Session reset")
}

// Close shuts the engine down and waits for outstanding dispatches.
func (s *Session) Close() {
	s.engine.Close()
	s.log.Info().Int("claims", len(s.engine.State())).Msg("Session closed")
}

func displayName(speakers model.SpeakerMap, tag string) string {
	if name := speakers.Name(tag); name != "" {
		return name
	}
	return strings.TrimSpace(tag)
}
