package linguistics

import (
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

const baseSalience = 0.5

var roleBonus = map[model.EntityRole]float64{
	model.RolePerson: 0.3,
	model.RoleOrg:    0.2,
	model.RolePlace:  0.1,
}

// ExtractEntities finds titled people, organizations, proper-name sequences,
// acronyms and domains in text. Each canonical form appears once.
func (h *Heuristic) ExtractEntities(text string, sentenceIdx int) []model.Entity {
	var entities []model.Entity
	seen := make(map[string]bool)

	add := func(surface string, role model.EntityRole) {
		surface = strings.TrimSpace(surface)
		canonical := h.CanonicalEntity(surface)
		if canonical == "" || seen[canonical] {
			return
		}
		seen[canonical] = true
		entities = append(entities, model.Entity{
			Surface:     surface,
			Canonical:   canonical,
			Role:        role,
			Salience:    baseSalience + roleBonus[role],
			SentenceIdx: sentenceIdx,
			Aliases:     []string{strings.ToLower(surface)},
		})
	}

	titles := TitleNP.FindAllString(text, -1)
	for _, m := range titles {
		add(m, model.RolePerson)
	}
	orgs := OrgSuffix.FindAllString(text, -1)
	for _, m := range orgs {
		add(m, model.RoleOrg)
	}

	for _, m := range ProperSeq.FindAllString(text, -1) {
		if containedIn(m, titles) || containedIn(m, orgs) {
			continue
		}
		role := model.RoleOther
		if strings.Contains(m, " ") && twoCapWords.MatchString(m) {
			role = model.RolePerson
		}
		add(m, role)
	}

	for _, m := range Acronym.FindAllString(text, -1) {
		if acronymStopwords[m] {
			continue
		}
		add(m, model.RoleOrg)
	}

	for _, m := range Domain.FindAllString(text, -1) {
		if numericDomain.MatchString(m) {
			continue
		}
		add(m, model.RoleOrg)
	}

	return entities
}

func containedIn(s string, list []string) bool {
	for _, l := range list {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// ResolveNP returns the right-most noun phrase in text. On equal positions the
// earlier pattern (title, org, proper name, acronym) wins.
func (h *Heuristic) ResolveNP(text string) string {
	best, bestIdx := "", -1
	for _, re := range NPPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[0] > bestIdx {
				bestIdx = loc[0]
				best = text[loc[0]:loc[1]]
			}
		}
	}
	return strings.TrimSpace(best)
}

// FirstDomain returns the first non-numeric domain-like token in text.
func (h *Heuristic) FirstDomain(text string) string {
	for _, m := range Domain.FindAllString(text, -1) {
		if !numericDomain.MatchString(m) {
			return m
		}
	}
	return ""
}
