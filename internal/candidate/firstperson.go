// Package candidate filters, assembles and ranks raw claim candidates before
// they reach the engine.
package candidate

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

var firstPersonSubject = regexp.MustCompile(`(?i)^(i|me|my|mine|we|our|ours)$`)

// GateResult is the outcome of the first-person gate. NormalizedSubject is
// set when a first-person subject resolved to a speaker name.
type GateResult struct {
	OK                bool
	NormalizedSubject string
}

// FirstPersonGate drops claims about the speaker's private experience unless
// the speaker is known by name.
type FirstPersonGate struct {
	Speakers     model.SpeakerMap
	AllowIfNamed bool
}

// NewFirstPersonGate creates a gate over a speaker map.
func NewFirstPersonGate(speakers model.SpeakerMap, allowIfNamed bool) *FirstPersonGate {
	return &FirstPersonGate{Speakers: speakers, AllowIfNamed: allowIfNamed}
}

// Check evaluates a subject spoken under speakerHint.
func (g *FirstPersonGate) Check(subject, speakerHint string) GateResult {
	subject = strings.TrimSpace(subject)
	if subject == "" || !firstPersonSubject.MatchString(subject) {
		return GateResult{OK: true}
	}
	name := g.Speakers.Name(speakerHint)
	if g.AllowIfNamed && name != "" {
		return GateResult{OK: true, NormalizedSubject: name}
	}
	return GateResult{}
}

// Apply returns a copy of item with a named subject substituted, or false when
// the item must be dropped.
func (g *FirstPersonGate) Apply(item model.RawClaimItem) (model.RawClaimItem, bool) {
	res := g.Check(item.SubjectSpan, item.SpeakerTag)
	if !res.OK {
		return item, false
	}
	out := item.Clone()
	if res.NormalizedSubject != "" {
		out.SubjectSpan = res.NormalizedSubject
	}
	return out, true
}
