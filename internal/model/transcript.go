package model

// Sentence is one transcript sentence.
type Sentence struct {
	Idx        int    `json:"idx" yaml:"idx"`
	Text       string `json:"text" yaml:"text"`
	SpeakerTag string `json:"speakerTag,omitempty" yaml:"speaker,omitempty"`
}

// TranscriptIndex is an ordered window of recent sentences. Positions in
// Sentences are array offsets, not Sentence.Idx values.
type TranscriptIndex struct {
	Sentences []Sentence `json:"sentences"`
}

// Len returns the number of sentences in the window.
func (t TranscriptIndex) Len() int {
	return len(t.Sentences)
}

// LatestIdx returns the highest sentence idx, or 0 for an empty index.
func (t TranscriptIndex) LatestIdx() int {
	latest := 0
	for _, s := range t.Sentences {
		if s.Idx > latest {
			latest = s.Idx
		}
	}
	return latest
}

// Turn is one speaker turn as delivered by the transcription service.
type Turn struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
}
