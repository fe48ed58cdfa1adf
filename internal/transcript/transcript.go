// Package transcript turns speaker turns, plain text and published HTML
// transcripts into the rolling sentence index the claim engine reads from.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ppiankov/claimify/internal/model"
)

// DefaultWindow is the number of recent sentences kept.
const DefaultWindow = 120

// Builder accumulates sentences with monotonic indices and keeps only the
// most recent window of them. It is not safe for concurrent use.
type Builder struct {
	window    int
	next      int
	sentences []model.Sentence
}

// NewBuilder creates a builder. A non-positive window uses DefaultWindow.
func NewBuilder(window int) *Builder {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Builder{window: window}
}

// AddTurn splits a speaker turn into sentences and appends them. It returns
// the sentences added.
func (b *Builder) AddTurn(turn model.Turn) []model.Sentence {
	var added []model.Sentence
	for _, text := range SplitSentences(turn.Text) {
		s := model.Sentence{Idx: b.next, Text: text, SpeakerTag: strings.TrimSpace(turn.Speaker)}
		b.next++
		b.sentences = append(b.sentences, s)
		added = append(added, s)
	}
	if over := len(b.sentences) - b.window; over > 0 {
		b.sentences = append([]model.Sentence(nil), b.sentences[over:]...)
	}
	return added
}

// Index returns a copy of the current window.
func (b *Builder) Index() model.TranscriptIndex {
	return model.TranscriptIndex{Sentences: append([]model.Sentence(nil), b.sentences...)}
}

// Len returns the number of sentences in the window.
func (b *Builder) Len() int {
	return len(b.sentences)
}

// Reset drops all sentences and restarts numbering.
func (b *Builder) Reset() {
	b.sentences = nil
	b.next = 0
}

// FromTurns builds an index from complete turns.
func FromTurns(turns []model.Turn, window int) model.TranscriptIndex {
	b := NewBuilder(window)
	for _, t := range turns {
		b.AddTurn(t)
	}
	return b.Index()
}

// FromText builds an index from plain text. Lines of the form
// "Speaker: words" start a new turn for that speaker; other lines continue
// the current turn.
func FromText(text, defaultSpeaker string, window int) model.TranscriptIndex {
	return FromTurns(ParseTurns(text, defaultSpeaker), window)
}

// ParseTurns groups labelled lines into turns.
func ParseTurns(text, defaultSpeaker string) []model.Turn {
	var turns []model.Turn
	current := model.Turn{Speaker: defaultSpeaker}
	flush := func() {
		if strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			turns = append(turns, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if speaker, rest, ok := speakerPrefix(line); ok {
			flush()
			current = model.Turn{Speaker: speaker, Text: rest}
			continue
		}
		current.Text += " " + line
	}
	flush()
	return turns
}

// speakerPrefix recognises "Name:" or "Speaker 2:" at the start of a line.
// The label must be short and start with an upper-case letter so that
// clock times and ratios are not mistaken for speakers.
func speakerPrefix(line string) (string, string, bool) {
	i := strings.Index(line, ":")
	if i <= 0 || i > 40 || i+1 >= len(line) || line[i+1] != ' ' {
		return "", "", false
	}
	label := strings.TrimSpace(line[:i])
	if label == "" || !unicode.IsUpper([]rune(label)[0]) {
		return "", "", false
	}
	if len(strings.Fields(label)) > 4 {
		return "", "", false
	}
	for _, r := range label {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '.' || r == '\'' || r == '-') {
			return "", "", false
		}
	}
	return label, strings.TrimSpace(line[i+1:]), true
}

// SplitSentences splits text on terminal punctuation followed by whitespace
// or the end of the text. Decimals such as "2.5" stay intact.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var sentences []string
	var current strings.Builder
	runes := []rune(text)

	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// ReadTurnsJSON decodes a JSON array of {"speaker","text"} turns.
func ReadTurnsJSON(r io.Reader) ([]model.Turn, error) {
	var turns []model.Turn
	if err := json.NewDecoder(r).Decode(&turns); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	return turns, nil
}
