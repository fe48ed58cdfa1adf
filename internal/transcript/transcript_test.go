package transcript

import (
	"strings"
	"testing"

	"github.com/ppiankov/claimify/internal/model"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "Inflation is 8% right now.", []string{"Inflation is 8% right now."}},
		{"several", "It grew. Did it? Yes!", []string{"It grew.", "Did it?", "Yes!"}},
		{"decimal kept", "Sales rose 2.5 million. Then fell.", []string{"Sales rose 2.5 million.", "Then fell."}},
		{"trailing fragment", "We opened. and then", []string{"We opened.", "and then"}},
		{"whitespace collapsed", "  one.\n\n two  ", []string{"one.", "two"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d sentences, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Sentence %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestBuilder_WindowAndIndices(t *testing.T) {
	b := NewBuilder(3)
	b.AddTurn(model.Turn{Speaker: "S1", Text: "One. Two."})
	added := b.AddTurn(model.Turn{Speaker: "S2", Text: "Three. Four."})

	if len(added) != 2 || added[0].Idx != 2 || added[1].Idx != 3 {
		t.Errorf("Expected indices 2 and 3, got %+v", added)
	}

	idx := b.Index()
	if idx.Len() != 3 {
		t.Fatalf("Expected window of 3, got %d", idx.Len())
	}
	if idx.Sentences[0].Text != "Two." || idx.Sentences[0].SpeakerTag != "S1" {
		t.Errorf("Expected oldest kept sentence Two. from S1, got %+v", idx.Sentences[0])
	}
	if idx.LatestIdx() != 3 {
		t.Errorf("Expected latest idx 3, got %d", idx.LatestIdx())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Expected empty builder after reset, got %d", b.Len())
	}
	if s := b.AddTurn(model.Turn{Text: "Again."}); s[0].Idx != 0 {
		t.Errorf("Expected numbering restarted, got %d", s[0].Idx)
	}
}

func TestBuilder_IndexIsACopy(t *testing.T) {
	b := NewBuilder(0)
	b.AddTurn(model.Turn{Text: "One."})
	idx := b.Index()
	idx.Sentences[0].Text = "changed"

	if b.Index().Sentences[0].Text != "One." {
		t.Error("Expected builder unaffected by index mutation")
	}
}

func TestFromText(t *testing.T) {
	text := `Simon Sinek: I founded three companies.
They all failed.
Speaker 2: Australia's inflation is 8% right now.
At 10:30 we left.`

	idx := FromText(text, "S0", 0)
	if idx.Len() != 4 {
		t.Fatalf("Expected 4 sentences, got %d: %+v", idx.Len(), idx.Sentences)
	}
	want := []string{"Simon Sinek", "Simon Sinek", "Speaker 2", "Speaker 2"}
	for i, s := range idx.Sentences {
		if s.SpeakerTag != want[i] {
			t.Errorf("Sentence %d: expected speaker %s, got %s", i, want[i], s.SpeakerTag)
		}
	}
	if idx.Sentences[3].Text != "At 10:30 we left." {
		t.Errorf("Expected clock time kept in text, got %q", idx.Sentences[3].Text)
	}
}

func TestParseTurns_DefaultSpeaker(t *testing.T) {
	turns := ParseTurns("no labels here. second line", "S1")
	if len(turns) != 1 || turns[0].Speaker != "S1" {
		t.Errorf("Expected one turn for the default speaker, got %+v", turns)
	}
}

func TestFromHTML(t *testing.T) {
	page := `<html><head><style>p{}</style><script>var x = "Nope: no.";</script></head>
<body>
<nav><p>Home: menu.</p></nav>
<h1>Transcript</h1>
<p><b>HOST:</b> Welcome back. Inflation is high.</p>
<p><b>GUEST:</b> It is 8% right now.</p>
<p>And rising.</p>
</body></html>`

	idx, err := FromHTML(strings.NewReader(page), "S0", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var texts, speakers []string
	for _, s := range idx.Sentences {
		texts = append(texts, s.Text)
		speakers = append(speakers, s.SpeakerTag)
	}
	wantTexts := []string{"Transcript", "Welcome back.", "Inflation is high.", "It is 8% right now.", "And rising."}
	wantSpeakers := []string{"S0", "HOST", "HOST", "GUEST", "GUEST"}
	if len(texts) != len(wantTexts) {
		t.Fatalf("Expected %v, got %v", wantTexts, texts)
	}
	for i := range texts {
		if texts[i] != wantTexts[i] || speakers[i] != wantSpeakers[i] {
			t.Errorf("Sentence %d: expected %s/%q, got %s/%q", i, wantSpeakers[i], wantTexts[i], speakers[i], texts[i])
		}
	}
}

func TestReadTurnsJSON(t *testing.T) {
	turns, err := ReadTurnsJSON(strings.NewReader(`[{"speaker":"S1","text":"Hello."},{"speaker":"S2","text":"Hi."}]`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(turns) != 2 || turns[1].Speaker != "S2" {
		t.Errorf("Unexpected turns %+v", turns)
	}

	if _, err := ReadTurnsJSON(strings.NewReader(`{`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
