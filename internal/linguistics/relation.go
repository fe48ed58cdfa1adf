package linguistics

import (
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

// verbLemmas maps inflected forms of common reporting and change verbs to
// their lemma.
var verbLemmas = map[string]string{
	"is": "be", "are": "be", "was": "be", "were": "be", "being": "be", "been": "be",
	"has": "have", "had": "have", "having": "have",
	"does": "do", "did": "do", "doing": "do", "done": "do",

	"proposed": "propose", "proposes": "propose", "proposing": "propose",
	"announced": "announce", "announces": "announce", "announcing": "announce",
	"increased": "increase", "increases": "increase", "increasing": "increase",
	"decreased": "decrease", "decreases": "decrease", "decreasing": "decrease",
	"declined": "decline", "declines": "decline", "declining": "decline",
	"grew": "grow", "grows": "grow", "growing": "grow", "grown": "grow",
	"fell": "fall", "falls": "fall", "falling": "fall", "fallen": "fall",
	"rose": "rise", "rises": "rise", "rising": "rise", "risen": "rise",
	"reported": "report", "reports": "report", "reporting": "report",
	"said": "say", "says": "say", "saying": "say",
	"stated": "state", "states": "state", "stating": "state",
	"claimed": "claim", "claims": "claim", "claiming": "claim",
	"found": "find", "finds": "find", "finding": "find",
	"showed": "show", "shows": "show", "showing": "show", "shown": "show",
	"reached": "reach", "reaches": "reach", "reaching": "reach",
	"achieved": "achieve", "achieves": "achieve", "achieving": "achieve",
}

var auxiliaries = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"has": true, "have": true, "had": true,
	"will": true, "would": true, "could": true, "should": true,
}

// LemmaOf returns the table lemma for a bare lowercase token.
func LemmaOf(token string) (string, bool) {
	lemma, ok := verbLemmas[token]
	return lemma, ok
}

func bareTokens(quote string) []string {
	words := strings.Fields(strings.ToLower(quote))
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = nonWord.ReplaceAllString(w, "")
	}
	return out
}

// ExtractRelation finds the main verb. Table verbs win over suffix-stemmed
// guesses; an auxiliary defers to a table verb right after it.
func (h *Heuristic) ExtractRelation(quote string) Relation {
	rel := Relation{Polarity: model.PolarityAffirmed}
	if negation.MatchString(quote) {
		rel.Polarity = model.PolarityNegated
	}

	tokens := bareTokens(quote)
	var auxSurface, auxLemma string
	for i, tok := range tokens {
		lemma, ok := verbLemmas[tok]
		if !ok {
			continue
		}
		if auxiliaries[tok] {
			if i+1 < len(tokens) {
				if next, ok := verbLemmas[tokens[i+1]]; ok {
					rel.Surface, rel.Lemma = tokens[i+1], next
					return rel
				}
			}
			if auxLemma == "" {
				auxSurface, auxLemma = tok, lemma
			}
			continue
		}
		rel.Surface, rel.Lemma = tok, lemma
		return rel
	}
	if auxLemma != "" {
		rel.Surface, rel.Lemma = auxSurface, auxLemma
		return rel
	}

	for _, tok := range tokens {
		if stem := stemVerb(tok); stem != "" {
			rel.Surface, rel.Lemma = tok, stem
			break
		}
	}
	if rel.Lemma == "" || rel.Lemma == "wa" {
		rel.Lemma = "be"
	}
	return rel
}

func stemVerb(tok string) string {
	switch {
	case strings.HasSuffix(tok, "ed") && len(tok) > 3:
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ing") && len(tok) > 4:
		return tok[:len(tok)-3]
	case strings.HasSuffix(tok, "s") && len(tok) > 2 && !strings.HasSuffix(tok, "ss"):
		return tok[:len(tok)-1]
	}
	return ""
}

// ExtractObject returns the explicit object span, or up to three words after
// the first table verb.
func (h *Heuristic) ExtractObject(quote, objectSpan string) Phrase {
	if strings.TrimSpace(objectSpan) != "" {
		return Phrase{
			Surface:   objectSpan,
			Canonical: strings.ToLower(strings.TrimSpace(objectSpan)),
		}
	}

	words := strings.Fields(quote)
	for i, w := range words {
		if _, ok := verbLemmas[nonWord.ReplaceAllString(strings.ToLower(w), "")]; !ok {
			continue
		}
		if i == len(words)-1 {
			return Phrase{}
		}
		end := i + 4
		if end > len(words) {
			end = len(words)
		}
		surface := trailingPunct.ReplaceAllString(strings.Join(words[i+1:end], " "), "")
		if surface == "" {
			return Phrase{}
		}
		return Phrase{
			Surface:   surface,
			Canonical: strings.ToLower(strings.TrimSpace(surface)),
		}
	}
	return Phrase{}
}
