package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/model"
)

var possessiveSite = regexp.MustCompile(`(?i)\b(their|its)\s+(site|website|page)\b`)

// Subject is a resolved subject and the evidence for it.
type Subject struct {
	Surface   string
	Canonical string
	Evidence  model.CorefEvidence
}

// Resolved reports whether a canonical subject was found.
func (s Subject) Resolved() bool {
	return s.Canonical != ""
}

// Resolver runs the subject waterfall: explicit span, possessive site, adjacent
// context, fragments, speaker memory, global memory.
type Resolver struct {
	ling linguistics.Linguistics
}

// NewResolver creates a resolver on the given linguistics backend.
func NewResolver(ling linguistics.Linguistics) *Resolver {
	return &Resolver{ling: ling}
}

// Resolve finds the subject of an item whose context has already been
// attached. mem may be nil.
func (r *Resolver) Resolve(item model.RawClaimItem, mem *memory.Memories) Subject {
	span := strings.TrimSpace(item.SubjectSpan)

	if span != "" && !r.ling.IsPronounLike(span) {
		return r.found(item.SubjectSpan, model.CorefAdjacent)
	}

	if span != "" && possessiveSite.MatchString(span) {
		if d := r.ling.FirstDomain(item.Context); d != "" {
			return r.found(d, model.CorefFragment)
		}
		for _, frag := range item.ContextFragments {
			if d := r.ling.FirstDomain(frag); d != "" {
				return r.found(d, model.CorefFragment)
			}
		}
	}

	if item.Context != "" {
		if np := r.ling.ResolveNP(item.Context); np != "" {
			return r.found(np, model.CorefAdjacent)
		}
	}

	for _, frag := range item.ContextFragments {
		if np := r.ling.ResolveNP(frag); np != "" {
			return r.found(np, model.CorefFragment)
		}
	}

	if mem != nil {
		if item.SpeakerTag != "" {
			if dq := mem.Speaker(item.SpeakerTag); dq != nil {
				if e, ok := dq.MostSalient(); ok {
					return fromMemory(e, model.CorefSpeakerMemory)
				}
			}
		}
		if e, ok := mem.Global().MostSalient(); ok {
			return fromMemory(e, model.CorefGlobalMemory)
		}
	}

	return Subject{Evidence: model.CorefEvidence{Source: model.CorefFallback, Evidence: []string{}}}
}

func (r *Resolver) found(surface string, source model.CorefSource) Subject {
	surface = strings.TrimSpace(surface)
	return Subject{
		Surface:   surface,
		Canonical: r.ling.Canonicalize(surface),
		Evidence:  model.CorefEvidence{Source: source, Evidence: []string{surface}},
	}
}

func fromMemory(e model.Entity, source model.CorefSource) Subject {
	return Subject{
		Surface:   e.Surface,
		Canonical: e.Canonical,
		Evidence:  model.CorefEvidence{Source: source, Evidence: []string{e.Surface}},
	}
}
