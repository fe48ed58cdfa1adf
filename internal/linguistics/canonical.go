package linguistics

import "strings"

func collapse(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

func containsDomain(s string) bool {
	for _, m := range Domain.FindAllString(s, -1) {
		if !numericDomain.MatchString(m) {
			return true
		}
	}
	return false
}

// Canonicalize lower-cases a surface form and strips punctuation. Spans that
// contain a domain keep their dots and slashes.
func (h *Heuristic) Canonicalize(surface string) string {
	lower := strings.ToLower(strings.TrimSpace(surface))
	if containsDomain(lower) {
		return collapse(lower)
	}
	return collapse(nonWordSpace.ReplaceAllString(lower, ""))
}

// CanonicalEntity canonicalizes like Canonicalize after expanding known
// abbreviations.
func (h *Heuristic) CanonicalEntity(surface string) string {
	lower := strings.ToLower(strings.TrimSpace(surface))
	if full, ok := entityAliases[lower]; ok {
		lower = full
	}
	if containsDomain(surface) {
		return collapse(lower)
	}
	return collapse(nonWordSpace.ReplaceAllString(lower, ""))
}

// IsPronounLike reports whether the first words of a subject are a pronoun or
// possessive that needs resolving.
func (h *Heuristic) IsPronounLike(subject string) bool {
	words := strings.Fields(strings.ToLower(subject))
	if len(words) == 0 {
		return false
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return pronounLead.MatchString(strings.Join(words, " "))
}
