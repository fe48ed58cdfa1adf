// Package extract enriches raw claim items with transcript context, resolves
// their subjects and fills the normalized claim slots.
package extract

import (
	"strings"

	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/model"
)

const (
	fuzzyMinWords   = 3
	fuzzyMatchRatio = 0.7

	defaultFragmentWindow = 5
	maxFragments          = 2
)

// Span is an inclusive range of positions in a TranscriptIndex.
type Span struct {
	Start int
	End   int
}

// Adjacent is the text immediately around a quote.
type Adjacent struct {
	Context string
	Prev    string
	Next    string
}

// Attachment is context harvested for an item.
type Attachment struct {
	Context   string
	Fragments []string
}

// Harvester locates quotes in the transcript and collects nearby sentences.
type Harvester struct {
	Before int
	After  int
}

// NewHarvester creates a harvester scanning five sentences either side.
func NewHarvester() *Harvester {
	return &Harvester{Before: defaultFragmentWindow, After: defaultFragmentWindow}
}

// FindQuote returns the position of the sentence containing quote. Same
// speaker substring matches win, then any speaker, then a fuzzy token match.
func FindQuote(quote string, index model.TranscriptIndex, speakerTag string) (Span, bool) {
	sentences := index.Sentences
	if len(sentences) == 0 {
		return Span{}, false
	}
	needle := strings.ToLower(strings.TrimSpace(quote))

	if speakerTag != "" {
		for i, s := range sentences {
			if s.SpeakerTag == speakerTag && strings.Contains(strings.ToLower(s.Text), needle) {
				return Span{i, i}, true
			}
		}
	}
	for i, s := range sentences {
		if strings.Contains(strings.ToLower(s.Text), needle) {
			return Span{i, i}, true
		}
	}

	quoteWords := strings.Fields(needle)
	if len(quoteWords) < fuzzyMinWords {
		return Span{}, false
	}
	for i, s := range sentences {
		sentenceWords := strings.Fields(strings.ToLower(s.Text))
		matched := 0
		for _, qw := range quoteWords {
			for _, sw := range sentenceWords {
				if strings.Contains(sw, qw) || strings.Contains(qw, sw) {
					matched++
					break
				}
			}
		}
		if float64(matched)/float64(len(quoteWords)) >= fuzzyMatchRatio {
			return Span{i, i}, true
		}
	}
	return Span{}, false
}

// HarvestAdjacent returns the sentences right before and after a span and
// their join, excluding the quote sentence itself.
func HarvestAdjacent(index model.TranscriptIndex, span Span) Adjacent {
	sentences := index.Sentences
	var adj Adjacent
	if span.Start > 0 && span.Start-1 < len(sentences) {
		adj.Prev = sentences[span.Start-1].Text
	}
	if span.End+1 < len(sentences) {
		adj.Next = sentences[span.End+1].Text
	}

	from := span.Start - 1
	if from < 0 {
		from = 0
	}
	to := span.End + 1
	if to > len(sentences)-1 {
		to = len(sentences) - 1
	}
	var parts []string
	for i := from; i <= to; i++ {
		if i != span.Start {
			parts = append(parts, sentences[i].Text)
		}
	}
	adj.Context = strings.Join(parts, " ")
	return adj
}

// ScanFragments returns up to two sentences near the span that mention a
// named entity or a time phrase, nearest first.
func (h *Harvester) ScanFragments(index model.TranscriptIndex, span Span) []string {
	sentences := index.Sentences
	var fragments []string

	consider := func(i int) bool {
		if i < 0 || i >= len(sentences) || (i >= span.Start && i <= span.End) {
			return false
		}
		if hasFragmentSignal(sentences[i].Text) {
			fragments = append(fragments, sentences[i].Text)
		}
		return len(fragments) >= maxFragments
	}

	reach := h.Before
	if h.After > reach {
		reach = h.After
	}
	for d := 1; d <= reach; d++ {
		if d <= h.Before && consider(span.Start-d) {
			break
		}
		if d <= h.After && consider(span.End+d) {
			break
		}
	}
	return fragments
}

func hasFragmentSignal(text string) bool {
	for _, re := range linguistics.FragmentPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// AutoAttach harvests context for items that lean on earlier sentences. Items
// that already carry context are returned unchanged; quotes without a pronoun
// or deictic get nothing.
func (h *Harvester) AutoAttach(item model.RawClaimItem, index model.TranscriptIndex, speakerTag string) Attachment {
	if item.Context != "" || len(item.ContextFragments) > 0 {
		return Attachment{
			Context:   item.Context,
			Fragments: append([]string(nil), item.ContextFragments...),
		}
	}
	if !linguistics.ContextPronoun.MatchString(strings.ToLower(item.Quote)) {
		return Attachment{}
	}
	if speakerTag == "" {
		speakerTag = item.SpeakerTag
	}
	span, ok := FindQuote(item.Quote, index, speakerTag)
	if !ok {
		return Attachment{}
	}
	return Attachment{
		Context:   HarvestAdjacent(index, span).Context,
		Fragments: h.ScanFragments(index, span),
	}
}
