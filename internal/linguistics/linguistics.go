// Package linguistics holds the pluggable language heuristics used to turn a
// conversational quote into structured claim slots.
package linguistics

import (
	"time"

	"github.com/ppiankov/claimify/internal/model"
)

// Relation is the main verb of a quote reduced to its lemma.
type Relation struct {
	Surface  string
	Lemma    string
	Polarity model.Polarity
}

// Phrase is a surface span and its canonical form.
type Phrase struct {
	Surface   string
	Canonical string
}

// Empty reports whether the phrase carries no text.
func (p Phrase) Empty() bool {
	return p.Surface == "" && p.Canonical == ""
}

// Linguistics is the capability set the normalizer depends on. The default
// implementation is regex based; a real NLP backend can be swapped in.
type Linguistics interface {
	ExtractRelation(quote string) Relation
	ExtractObject(quote, objectSpan string) Phrase
	ExtractQuantity(quote string) model.Quantity
	NormalizeTime(surface string, now time.Time) string
	NormalizeLocation(surface string) string

	ExtractEntities(text string, sentenceIdx int) []model.Entity
	ResolveNP(text string) string
	FirstDomain(text string) string

	Canonicalize(surface string) string
	CanonicalEntity(surface string) string
	IsPronounLike(subject string) bool
}

// Heuristic implements Linguistics with fixed pattern tables.
type Heuristic struct{}

// NewHeuristic creates the default regex-based implementation.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var _ Linguistics = (*Heuristic)(nil)
