package candidate

import (
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func TestAssemble_MergesPronounContinuation(t *testing.T) {
	a := model.RawClaimItem{
		ID:            "a",
		Quote:         "The company raised funding.",
		SubjectSpan:   "The company",
		SpeakerTag:    "S1",
		OriginalSeeds: []string{"company funding"},
	}
	b := model.RawClaimItem{
		ID:            "b",
		Quote:         "It raised $50 million in Series B funding.",
		SubjectSpan:   "It",
		SpeakerTag:    "S1",
		OriginalSeeds: []string{"series b", "company funding"},
	}

	res := Assemble([]model.RawClaimItem{b, a}, DefaultAssembleOptions())

	if len(res.Merged) != 1 {
		t.Fatalf("Expected 1 merged claim, got %d", len(res.Merged))
	}
	m := res.Merged[0]
	if m.ID != "a" {
		t.Errorf("Expected shorter claim a to absorb b, got id %s", m.ID)
	}
	if m.SubjectSpan != "The company" {
		t.Errorf("Expected subject The company, got %q", m.SubjectSpan)
	}
	if m.Quote != "The company raised funding. It raised $50 million in Series B funding." {
		t.Errorf("Unexpected merged quote %q", m.Quote)
	}
	if m.Version != 2 {
		t.Errorf("Expected version 2, got %d", m.Version)
	}
	if m.RevisionAction != model.RevisionExpanded {
		t.Errorf("Expected revision expanded, got %s", m.RevisionAction)
	}
	if len(m.OriginalSeeds) != 2 {
		t.Errorf("Expected seeds unioned to 2, got %v", m.OriginalSeeds)
	}
	if !res.IsWithdrawn("b") || res.IsWithdrawn("a") {
		t.Errorf("Expected only b withdrawn, got %v", res.Withdrawn)
	}
	if a.Version != 0 || b.Quote != "It raised $50 million in Series B funding." {
		t.Error("Expected inputs untouched")
	}
}

func TestAssemble_Refusals(t *testing.T) {
	tests := []struct {
		name string
		a, b model.RawClaimItem
	}{
		{
			name: "different speakers",
			a:    model.RawClaimItem{ID: "a", Quote: "The company raised funding.", SubjectSpan: "The company", SpeakerTag: "S1"},
			b:    model.RawClaimItem{ID: "b", Quote: "It raised more funding later.", SubjectSpan: "It", SpeakerTag: "S2"},
		},
		{
			name: "unrelated subjects",
			a:    model.RawClaimItem{ID: "a", Quote: "Acme raised funding.", SubjectSpan: "Acme"},
			b:    model.RawClaimItem{ID: "b", Quote: "Globex raised funding.", SubjectSpan: "Globex"},
		},
		{
			name: "low overlap",
			a:    model.RawClaimItem{ID: "a", Quote: "Acme raised funding.", SubjectSpan: "Acme"},
			b:    model.RawClaimItem{ID: "b", Quote: "It moved offices to Denver.", SubjectSpan: "It"},
		},
		{
			name: "too many sentences",
			a:    model.RawClaimItem{ID: "a", Quote: "Acme grew again.", SubjectSpan: "Acme"},
			b:    model.RawClaimItem{ID: "b", Quote: "Acme grew. Acme hired. Acme expanded.", SubjectSpan: "Acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Assemble([]model.RawClaimItem{tt.a, tt.b}, DefaultAssembleOptions())
			if len(res.Merged) != 2 {
				t.Errorf("Expected 2 separate claims, got %d", len(res.Merged))
			}
			if len(res.Withdrawn) != 0 {
				t.Errorf("Expected nothing withdrawn, got %v", res.Withdrawn)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	a := contentWords("The company raised funding.")
	b := contentWords("It raised $50 million in Series B funding.")
	got := jaccard(a, b)
	if got < 2.0/7-1e-9 || got > 2.0/7+1e-9 {
		t.Errorf("Expected 2/7, got %.4f", got)
	}
	if jaccard(map[string]bool{}, map[string]bool{}) != 0 {
		t.Error("Expected 0 for empty sets")
	}
}
