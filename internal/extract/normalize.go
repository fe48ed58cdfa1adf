package extract

import (
	"errors"
	"strings"
	"time"

	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/score"
)

// ErrEmptyQuote is returned for items without quote text.
var ErrEmptyQuote = errors.New("claim item has no quote")

// Normalizer turns a raw item into a NormalizedClaim. It does not assign a
// claim key or lifecycle status.
type Normalizer struct {
	ling      linguistics.Linguistics
	harvester *Harvester
	resolver  *Resolver
	gate      *score.Gate
}

// NewNormalizer wires the harvester, resolver and slot extraction together.
func NewNormalizer(ling linguistics.Linguistics, gate *score.Gate) *Normalizer {
	if ling == nil {
		ling = linguistics.NewHeuristic()
	}
	if gate == nil {
		gate = score.NewGate(score.DefaultMinScore)
	}
	return &Normalizer{
		ling:      ling,
		harvester: NewHarvester(),
		resolver:  NewResolver(ling),
		gate:      gate,
	}
}

// Linguistics returns the backend in use.
func (n *Normalizer) Linguistics() linguistics.Linguistics {
	return n.ling
}

// Enrich returns a copy of item with auto-attached context. The input is not
// modified.
func (n *Normalizer) Enrich(item model.RawClaimItem, index model.TranscriptIndex) model.RawClaimItem {
	out := item.Clone()
	att := n.harvester.AutoAttach(item, index, item.SpeakerTag)
	if out.Context == "" {
		out.Context = att.Context
	}
	if len(out.ContextFragments) == 0 {
		out.ContextFragments = att.Fragments
	}
	return out
}

// Normalize enriches, resolves and slot-fills item. Confidence is set to the
// verifiability score.
func (n *Normalizer) Normalize(item model.RawClaimItem, index model.TranscriptIndex, mem *memory.Memories, now time.Time) (model.NormalizedClaim, error) {
	if strings.TrimSpace(item.Quote) == "" {
		return model.NormalizedClaim{}, ErrEmptyQuote
	}

	enriched := n.Enrich(item, index)
	subject := n.resolver.Resolve(enriched, mem)
	rel := n.ling.ExtractRelation(enriched.Quote)
	obj := n.ling.ExtractObject(enriched.Quote, enriched.ObjectSpan)

	version := item.Version
	if version <= 0 {
		version = 1
	}

	evidence := subject.Evidence
	claim := model.NormalizedClaim{
		ID:               item.ID,
		Quote:            enriched.Quote,
		SpeakerTag:       enriched.SpeakerTag,
		Context:          enriched.Context,
		ContextFragments: enriched.ContextFragments,

		SubjectSurface:   subject.Surface,
		SubjectCanonical: subject.Canonical,
		RelationSurface:  rel.Surface,
		RelationLemma:    rel.Lemma,
		ObjectSurface:    obj.Surface,
		ObjectCanonical:  obj.Canonical,

		Quantity: n.ling.ExtractQuantity(enriched.Quote),

		TimeSurface:        enriched.TimeSpan,
		TimeNormalized:     n.ling.NormalizeTime(enriched.TimeSpan, now),
		LocationSurface:    enriched.LocationSpan,
		LocationNormalized: n.ling.NormalizeLocation(enriched.LocationSpan),

		AttributionSurface: enriched.AttributionSpan,
		AttributionSource:  strings.TrimSpace(enriched.AttributionSpan),

		Polarity:  rel.Polarity,
		Scope:     enriched.Scope,
		Condition: enriched.Condition,
		Coref:     &evidence,

		Version:       version,
		OriginalSeeds: enriched.OriginalSeeds,
		UpdatedAt:     now,
	}
	claim.Confidence = n.gate.Score(claim)
	return claim, nil
}
