package engine

import (
	"reflect"
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		claim    model.NormalizedClaim
		wantText string
		wantTags []string
	}{
		{
			name: "attributed negated",
			claim: model.NormalizedClaim{
				AttributionSource: "ABC",
				SubjectCanonical:  "acme",
				RelationLemma:     "grow",
				Polarity:          model.PolarityNegated,
				ObjectCanonical:   "revenue",
				TimeNormalized:    "2023",
			},
			wantText: "Did ABC say that acme does not grow revenue in 2023",
			wantTags: []string{"attributed", "source:abc", "subject:acme", "relation:grow", "object:revenue", "time:2023"},
		},
		{
			name: "numeric with quantity text",
			claim: model.NormalizedClaim{
				SubjectCanonical: "australia",
				RelationLemma:    "be",
				ObjectCanonical:  "8% right now",
				Quantity:         model.Quantity{Text: "8%", Value: f64(8), Unit: "%"},
				Polarity:         model.PolarityAffirmed,
			},
			wantText: "australia be 8% right now 8%",
			wantTags: []string{"numeric", "subject:australia", "relation:be", "object:8% right now", "quantity"},
		},
		{
			name: "numeric range without text",
			claim: model.NormalizedClaim{
				SubjectCanonical:   "sales",
				RelationLemma:      "rise",
				Quantity:           model.Quantity{Range: &[2]float64{1, 2.5}, Unit: "million"},
				LocationNormalized: "united states",
			},
			wantText: "sales rise 1 to 2.5 million in united states",
			wantTags: []string{"numeric", "subject:sales", "relation:rise", "quantity", "location:united states"},
		},
		{
			name: "event negated be",
			claim: model.NormalizedClaim{
				SubjectCanonical: "acme",
				RelationLemma:    "be",
				Polarity:         model.PolarityNegated,
				ObjectCanonical:  "profitable",
			},
			wantText: "acme is not profitable",
			wantTags: []string{"event", "subject:acme", "relation:be", "object:profitable"},
		},
		{
			name: "event negated have",
			claim: model.NormalizedClaim{
				SubjectCanonical: "acme",
				RelationLemma:    "have",
				Polarity:         model.PolarityNegated,
				ObjectCanonical:  "debt",
			},
			wantText: "acme does not have debt",
			wantTags: []string{"event", "subject:acme", "relation:have", "object:debt"},
		},
		{
			name:     "bare relation falls back to quote",
			claim:    model.NormalizedClaim{Quote: "It grew.", RelationLemma: "grow"},
			wantText: "It grew.",
			wantTags: []string{"fallback"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildQuery(tt.claim)
			if q.Text != tt.wantText {
				t.Errorf("Expected query %q, got %q", tt.wantText, q.Text)
			}
			if !reflect.DeepEqual(q.Tags, tt.wantTags) {
				t.Errorf("Expected tags %v, got %v", tt.wantTags, q.Tags)
			}
		})
	}
}

func TestBuildRetryQuery(t *testing.T) {
	q := BuildRetryQuery(model.NormalizedClaim{
		SubjectCanonical: "major new airport",
		RelationLemma:    "open",
		Polarity:         model.PolarityNegated,
		TimeNormalized:   "2024",
	})

	if q.Text != "airport open 2024" {
		t.Errorf("Expected neutral query %q, got %q", "airport open 2024", q.Text)
	}
	want := []string{"retry", "subject:airport", "relation:open", "time:2024"}
	if !reflect.DeepEqual(q.Tags, want) {
		t.Errorf("Expected tags %v, got %v", want, q.Tags)
	}
}
