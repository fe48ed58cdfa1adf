package linguistics

import (
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func TestExtractRelation(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name     string
		quote    string
		lemma    string
		polarity model.Polarity
	}{
		{"copula", "Inflation is 8% right now.", "be", model.PolarityAffirmed},
		{"auxiliary defers to verb", "Sales have grown 5% this year", "grow", model.PolarityAffirmed},
		{"table verb", "The company announced layoffs", "announce", model.PolarityAffirmed},
		{"negated do", "Revenue did not increase", "do", model.PolarityNegated},
		{"suffix stem", "The team launched products", "launch", model.PolarityAffirmed},
		{"contraction", "It wasn't profitable", "be", model.PolarityNegated},
		{"no verb", "Wow", "be", model.PolarityAffirmed},
		{"possessive does not outrank table verb", "Australia's economy grew quickly", "grow", model.PolarityAffirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := h.ExtractRelation(tt.quote)
			if rel.Lemma != tt.lemma {
				t.Errorf("Expected lemma %q, got %q", tt.lemma, rel.Lemma)
			}
			if rel.Polarity != tt.polarity {
				t.Errorf("Expected polarity %s, got %s", tt.polarity, rel.Polarity)
			}
		})
	}
}

func TestExtractObject(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name      string
		quote     string
		span      string
		surface   string
		canonical string
	}{
		{"explicit span", "whatever", "The Budget ", "The Budget ", "the budget"},
		{"after copula", "Australia's inflation is 8% right now.", "", "8% right now", "8% right now"},
		{"three words max", "The company announced new hiring plans today.", "", "new hiring plans", "new hiring plans"},
		{"verb at end", "Prices rose.", "", "", ""},
		{"no table verb", "Totally unrelated words", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := h.ExtractObject(tt.quote, tt.span)
			if obj.Surface != tt.surface {
				t.Errorf("Expected surface %q, got %q", tt.surface, obj.Surface)
			}
			if obj.Canonical != tt.canonical {
				t.Errorf("Expected canonical %q, got %q", tt.canonical, obj.Canonical)
			}
		})
	}
}
