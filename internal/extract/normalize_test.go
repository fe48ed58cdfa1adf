package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/model"
)

var fixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func TestNormalize_ExplicitNumericClaim(t *testing.T) {
	n := NewNormalizer(nil, nil)
	item := model.RawClaimItem{
		ID:          "c1",
		Quote:       "Australia's inflation is 8% right now.",
		SubjectSpan: "Australia",
	}

	claim, err := n.Normalize(item, model.TranscriptIndex{}, nil, fixedNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claim.SubjectCanonical != "australia" {
		t.Errorf("Expected subject australia, got %q", claim.SubjectCanonical)
	}
	if claim.RelationLemma != "be" {
		t.Errorf("Expected relation be, got %q", claim.RelationLemma)
	}
	if claim.ObjectCanonical != "8% right now" {
		t.Errorf("Expected object %q, got %q", "8% right now", claim.ObjectCanonical)
	}
	if claim.Quantity.Value == nil || *claim.Quantity.Value != 8 || claim.Quantity.Unit != "%" {
		t.Errorf("Expected quantity 8%%, got %+v", claim.Quantity)
	}
	if claim.Polarity != model.PolarityAffirmed {
		t.Errorf("Expected affirmed polarity, got %s", claim.Polarity)
	}
	if claim.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %.4f", claim.Confidence)
	}
	if claim.Version != 1 {
		t.Errorf("Expected default version 1, got %d", claim.Version)
	}
	if claim.Coref == nil || claim.Coref.Source != model.CorefAdjacent {
		t.Errorf("Expected adjacent coref evidence, got %+v", claim.Coref)
	}
	if !claim.UpdatedAt.Equal(fixedNow) {
		t.Errorf("Expected updatedAt %v, got %v", fixedNow, claim.UpdatedAt)
	}
}

func TestNormalize_ResolvesPronounFromTranscript(t *testing.T) {
	n := NewNormalizer(nil, nil)
	idx := index("We talked to Acme Corp yesterday.", "They said revenue grew 20% in 2023.")
	item := model.RawClaimItem{ID: "c2", Quote: "They said revenue grew 20% in 2023", SpeakerTag: "S1"}

	claim, err := n.Normalize(item, idx, memory.New(n.Linguistics(), 0, "t"), fixedNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claim.SubjectCanonical != "acme corp" {
		t.Errorf("Expected subject acme corp, got %q", claim.SubjectCanonical)
	}
	if claim.Context == "" {
		t.Error("Expected auto-attached context")
	}
	if claim.RelationLemma != "say" {
		t.Errorf("Expected relation say, got %q", claim.RelationLemma)
	}
}

func TestNormalize_UnresolvedSubject(t *testing.T) {
	n := NewNormalizer(nil, nil)
	claim, err := n.Normalize(model.RawClaimItem{ID: "c3", Quote: "It is 8% right now."}, model.TranscriptIndex{}, nil, fixedNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claim.HasSubject() {
		t.Errorf("Expected no subject, got %q", claim.SubjectCanonical)
	}
	if claim.Coref == nil || claim.Coref.Source != model.CorefFallback {
		t.Errorf("Expected fallback coref, got %+v", claim.Coref)
	}
}

func TestNormalize_EmptyQuote(t *testing.T) {
	_, err := NewNormalizer(nil, nil).Normalize(model.RawClaimItem{ID: "x", Quote: "  "}, model.TranscriptIndex{}, nil, fixedNow)
	if !errors.Is(err, ErrEmptyQuote) {
		t.Errorf("Expected ErrEmptyQuote, got %v", err)
	}
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	n := NewNormalizer(nil, nil)
	idx := index("The NHS expanded.", "It hired nurses.")
	item := model.RawClaimItem{ID: "c4", Quote: "It hired nurses"}

	out := n.Enrich(item, idx)
	if item.Context != "" || item.ContextFragments != nil {
		t.Errorf("Expected input unchanged, got %+v", item)
	}
	if out.Context != "The NHS expanded." {
		t.Errorf("Expected context on copy, got %q", out.Context)
	}
}
