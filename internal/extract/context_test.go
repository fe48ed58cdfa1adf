package extract

import (
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func index(texts ...string) model.TranscriptIndex {
	var idx model.TranscriptIndex
	for i, t := range texts {
		idx.Sentences = append(idx.Sentences, model.Sentence{Idx: i, Text: t, SpeakerTag: "S1"})
	}
	return idx
}

func TestFindQuote(t *testing.T) {
	idx := model.TranscriptIndex{Sentences: []model.Sentence{
		{Idx: 0, Text: "Rates went up again.", SpeakerTag: "S1"},
		{Idx: 1, Text: "Rates went up again.", SpeakerTag: "S2"},
		{Idx: 2, Text: "Revenue grew by twenty percent last year.", SpeakerTag: "S1"},
	}}

	tests := []struct {
		name    string
		quote   string
		speaker string
		want    int
		found   bool
	}{
		{"same speaker wins", "rates went up", "S2", 1, true},
		{"any speaker fallback", "rates went up", "S9", 0, true},
		{"fuzzy token match", "revenue grew twenty percent", "", 2, true},
		{"short quote is never fuzzy", "tax cuts", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := FindQuote(tt.quote, idx, tt.speaker)
			if ok != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, ok)
			}
			if ok && span.Start != tt.want {
				t.Errorf("Expected position %d, got %d", tt.want, span.Start)
			}
		})
	}

	if _, ok := FindQuote("anything", model.TranscriptIndex{}, ""); ok {
		t.Error("Expected no match in empty transcript")
	}
}

func TestHarvestAdjacent(t *testing.T) {
	idx := index("First.", "Second.", "Third.")

	adj := HarvestAdjacent(idx, Span{1, 1})
	if adj.Prev != "First." || adj.Next != "Third." {
		t.Errorf("Expected prev/next First./Third., got %q/%q", adj.Prev, adj.Next)
	}
	if adj.Context != "First. Third." {
		t.Errorf("Expected context %q, got %q", "First. Third.", adj.Context)
	}

	adj = HarvestAdjacent(idx, Span{0, 0})
	if adj.Prev != "" {
		t.Errorf("Expected no previous sentence, got %q", adj.Prev)
	}
	if adj.Context != "Second." {
		t.Errorf("Expected context %q, got %q", "Second.", adj.Context)
	}
}

func TestScanFragments_NearestFirst(t *testing.T) {
	idx := index(
		"The NHS expanded.",
		"nothing here.",
		"the quote sentence.",
		"sales peaked in 2020.",
		"Professor Lee agreed.",
	)

	frags := NewHarvester().ScanFragments(idx, Span{2, 2})
	if len(frags) != 2 {
		t.Fatalf("Expected 2 fragments, got %d: %v", len(frags), frags)
	}
	if frags[0] != "sales peaked in 2020." {
		t.Errorf("Expected nearest fragment first, got %q", frags[0])
	}
	if frags[1] != "The NHS expanded." {
		t.Errorf("Expected acronym fragment second, got %q", frags[1])
	}
}

func TestAutoAttach(t *testing.T) {
	h := NewHarvester()
	idx := index("We talked to Acme Corp yesterday.", "They said revenue grew 20% in 2023.")

	t.Run("pronoun quote gets context", func(t *testing.T) {
		item := model.RawClaimItem{Quote: "They said revenue grew 20% in 2023", SpeakerTag: "S1"}
		att := h.AutoAttach(item, idx, "")
		if att.Context != "We talked to Acme Corp yesterday." {
			t.Errorf("Expected previous sentence as context, got %q", att.Context)
		}
		if len(att.Fragments) != 1 || att.Fragments[0] != "We talked to Acme Corp yesterday." {
			t.Errorf("Expected one fragment, got %v", att.Fragments)
		}
	})

	t.Run("existing context is kept", func(t *testing.T) {
		item := model.RawClaimItem{Quote: "They said so", Context: "given"}
		att := h.AutoAttach(item, idx, "")
		if att.Context != "given" || len(att.Fragments) != 0 {
			t.Errorf("Expected untouched context, got %+v", att)
		}
	})

	t.Run("no pronoun no context", func(t *testing.T) {
		item := model.RawClaimItem{Quote: "Acme grew revenue"}
		att := h.AutoAttach(item, idx, "")
		if att.Context != "" || len(att.Fragments) != 0 {
			t.Errorf("Expected empty attachment, got %+v", att)
		}
	})
}
