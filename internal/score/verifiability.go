// Package score computes the transparent verifiability score that gates
// claim dispatch.
package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

// DefaultMinScore is the verifiability threshold for dispatch.
const DefaultMinScore = 0.6

var (
	digitPercent   = regexp.MustCompile(`\d\s*%`)
	hedging        = regexp.MustCompile(`(?i)\b(might|may|could|likely|appears to|seems to|probably|possibly|allegedly|reportedly|supposedly)\b`)
	pronounResidue = regexp.MustCompile(`(?i)\b(he|she|it|they|this|that)\b`)

	numberWords = []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety", "hundred", "thousand",
	}

	genericRelations = map[string]bool{
		"be": true, "have": true, "do": true, "say": true, "go": true, "get": true, "make": true,
	}
)

// Gate scores claims and decides whether they may be dispatched.
type Gate struct {
	MinScore float64
}

// NewGate creates a gate with the given threshold.
func NewGate(minScore float64) *Gate {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Gate{MinScore: minScore}
}

// Score returns the verifiability score in [0,1].
func (g *Gate) Score(claim model.NormalizedClaim) float64 {
	return total(evaluate(claim))
}

// IsVerifiableNow reports whether a claim clears the threshold, has a subject
// and a relation, and is not withdrawn or awaiting coreference.
func (g *Gate) IsVerifiableNow(claim model.NormalizedClaim) bool {
	if g.Score(claim) < g.MinScore {
		return false
	}
	if strings.TrimSpace(claim.SubjectCanonical) == "" || strings.TrimSpace(claim.RelationLemma) == "" {
		return false
	}
	return claim.Status != model.StatusWithdrawn && claim.Status != model.StatusPendingCoref
}

// Explain returns the score with a per-term breakdown. It uses the same terms
// as Score.
func (g *Gate) Explain(claim model.NormalizedClaim) model.VerifiabilityReport {
	terms := evaluate(claim)
	breakdown := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Applied {
			breakdown = append(breakdown, fmt.Sprintf("%+.2f %s", t.Delta, t.Label))
		} else {
			breakdown = append(breakdown, fmt.Sprintf(" 0.00 %s (not applied)", t.Label))
		}
	}
	return model.VerifiabilityReport{
		Score:      total(terms),
		Breakdown:  breakdown,
		Terms:      terms,
		Verifiable: g.IsVerifiableNow(claim),
	}
}

func total(terms []model.Term) float64 {
	s := 0.0
	for _, t := range terms {
		if t.Applied {
			s += t.Delta
		}
	}
	s = math.Max(0, math.Min(1, s))
	return math.Round(s*1e6) / 1e6
}

// HasNumericEvidence reports a digit followed by a percent sign, or a number
// word used together with "percent".
func HasNumericEvidence(quote string) bool {
	t := strings.ToLower(quote)
	if digitPercent.MatchString(t) {
		return true
	}
	padded := " " + t + " "
	hasWord := false
	for _, w := range numberWords {
		if strings.Contains(padded, " "+w+" ") {
			hasWord = true
			break
		}
	}
	return hasWord && strings.Contains(padded, " percent")
}

func evaluate(c model.NormalizedClaim) []model.Term {
	hasSubject := strings.TrimSpace(c.SubjectCanonical) != ""
	hasRelation := strings.TrimSpace(c.RelationLemma) != ""
	hasSlots := c.Quantity.Text != "" || c.TimeNormalized != "" || c.ObjectCanonical != ""
	numeric := HasNumericEvidence(c.Quote)
	generic := genericRelations[strings.ToLower(c.RelationLemma)]

	return []model.Term{
		{
			Label:   "subject",
			Delta:   0.40,
			Applied: hasSubject,
			Data:    map[string]interface{}{"subject": c.SubjectCanonical},
		},
		{
			Label:   "relation",
			Delta:   0.25,
			Applied: hasRelation,
			Data:    map[string]interface{}{"relation": c.RelationLemma},
		},
		{
			Label:   "quantity/time/object",
			Delta:   0.20,
			Applied: hasSlots,
			Data: map[string]interface{}{
				"quantity": c.Quantity.Text,
				"time":     c.TimeNormalized,
				"object":   c.ObjectCanonical,
				"formula":  "quantity != '' || time != '' || object != ''",
			},
		},
		{
			Label:   "numeric evidence in quote",
			Delta:   0.20,
			Applied: numeric,
			Data:    map[string]interface{}{"formula": `digit% || (number word && "percent")`},
		},
		{
			Label:   "location/scope",
			Delta:   0.10,
			Applied: c.LocationNormalized != "" || c.Scope != "",
		},
		{
			Label:   "hedging language",
			Delta:   -0.15,
			Applied: hedging.MatchString(c.Quote),
		},
		{
			Label:   "missing or pronoun subject",
			Delta:   -0.10,
			Applied: !hasSubject || pronounResidue.MatchString(c.SubjectCanonical),
		},
		{
			Label:   "generic relation without context",
			Delta:   -0.05,
			Applied: hasRelation && generic && !hasSlots && !numeric,
		},
		{
			Label:   "attribution source",
			Delta:   0.05,
			Applied: strings.TrimSpace(c.AttributionSource) != "",
		},
		{
			Label:   "numeric quantity value",
			Delta:   0.05,
			Applied: c.Quantity.Defined(),
		},
	}
}
