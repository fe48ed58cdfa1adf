package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

// Query is a search query and its observability tags.
type Query struct {
	Text string
	Tags []string
}

var (
	conjugations = map[string]string{
		"be": "is", "have": "has", "do": "does", "say": "says",
		"propose": "proposes", "announce": "announces",
		"increase": "increases", "decrease": "decreases",
		"grow": "grows", "fall": "falls", "rise": "rises",
		"report": "reports", "claim": "claims", "find": "finds",
		"show": "shows", "reach": "reaches", "achieve": "achieves",
	}

	retryAdjectives = regexp.MustCompile(`(?i)\b(new|old|big|small|large|huge|tiny|major|minor|significant|important)\s+`)
)

type queryBuilder struct {
	parts []string
	tags  []string
}

func (b *queryBuilder) add(part string, tag string) {
	b.parts = append(b.parts, part)
	if tag != "" {
		b.tags = append(b.tags, tag)
	}
}

func (b *queryBuilder) query() Query {
	return Query{Text: strings.Join(b.parts, " "), Tags: b.tags}
}

// BuildQuery picks the attributed, numeric or event template by claim shape.
func BuildQuery(c model.NormalizedClaim) Query {
	switch {
	case c.AttributionSource != "":
		return attributedQuery(c)
	case c.Quantity.Defined():
		return numericQuery(c)
	default:
		return eventQuery(c)
	}
}

func attributedQuery(c model.NormalizedClaim) Query {
	b := &queryBuilder{tags: []string{"attributed"}}
	b.add("Did", "")
	b.add(c.AttributionSource, "source:"+strings.ToLower(c.AttributionSource))
	b.add("say that", "")
	if c.SubjectCanonical != "" {
		b.add(c.SubjectCanonical, "subject:"+strings.ToLower(c.SubjectCanonical))
	}
	if c.RelationLemma != "" {
		b.add(verbForm(c.RelationLemma, c.Polarity), "relation:"+c.RelationLemma)
	}
	if c.ObjectCanonical != "" {
		b.add(c.ObjectCanonical, "object:"+strings.ToLower(c.ObjectCanonical))
	}
	if c.Quantity.Text != "" {
		b.add(c.Quantity.Text, "quantity")
	}
	if c.TimeNormalized != "" {
		b.add("in "+c.TimeNormalized, "time:"+c.TimeNormalized)
	}
	if c.Scope != "" {
		b.add(c.Scope, "scope")
	}
	return b.query()
}

func numericQuery(c model.NormalizedClaim) Query {
	b := &queryBuilder{tags: []string{"numeric"}}
	if c.SubjectCanonical != "" {
		b.add(c.SubjectCanonical, "subject:"+strings.ToLower(c.SubjectCanonical))
	}

	var metric []string
	if c.RelationLemma != "" {
		metric = append(metric, c.RelationLemma)
		b.tags = append(b.tags, "relation:"+c.RelationLemma)
	}
	if c.ObjectCanonical != "" {
		metric = append(metric, c.ObjectCanonical)
		b.tags = append(b.tags, "object:"+strings.ToLower(c.ObjectCanonical))
	}
	if len(metric) > 0 {
		b.add(strings.Join(metric, " "), "")
	}

	if c.Quantity.Text != "" {
		b.add(c.Quantity.Text, "quantity")
	} else {
		q := formatQuantity(c.Quantity)
		if c.Quantity.Unit != "" {
			q += " " + c.Quantity.Unit
		}
		b.add(q, "quantity")
	}

	if c.Scope != "" {
		b.add(c.Scope, "scope")
	}
	if c.TimeNormalized != "" {
		b.add("in "+c.TimeNormalized, "time:"+c.TimeNormalized)
	}
	if c.LocationNormalized != "" {
		b.add("in "+c.LocationNormalized, "location:"+c.LocationNormalized)
	}
	return b.query()
}

func eventQuery(c model.NormalizedClaim) Query {
	b := &queryBuilder{tags: []string{"event"}}
	if c.SubjectCanonical != "" {
		b.add(c.SubjectCanonical, "subject:"+strings.ToLower(c.SubjectCanonical))
	}
	if c.RelationLemma != "" {
		b.add(verbForm(c.RelationLemma, c.Polarity), "relation:"+c.RelationLemma)
	}
	if c.ObjectCanonical != "" {
		b.add(c.ObjectCanonical, "object:"+strings.ToLower(c.ObjectCanonical))
	}
	if c.Quantity.Text != "" {
		b.add(c.Quantity.Text, "quantity")
	}
	if c.Scope != "" {
		b.add(c.Scope, "scope")
	}
	if c.TimeNormalized != "" {
		b.add("in "+c.TimeNormalized, "time:"+c.TimeNormalized)
	}
	if c.LocationNormalized != "" {
		b.add("in "+c.LocationNormalized, "location:"+c.LocationNormalized)
	}

	// a bare verb is not a query
	if len(b.parts) == 0 || (len(b.parts) == 1 && c.RelationLemma != "") {
		return Query{Text: c.Quote, Tags: []string{"fallback"}}
	}
	return b.query()
}

// BuildRetryQuery is a neutral query: adjectives stripped from the subject,
// relation as a bare lemma, time without a preposition.
func BuildRetryQuery(c model.NormalizedClaim) Query {
	b := &queryBuilder{tags: []string{"retry"}}
	if c.SubjectCanonical != "" {
		subject := strings.TrimSpace(retryAdjectives.ReplaceAllString(c.SubjectCanonical, ""))
		if subject != "" {
			b.add(subject, "subject:"+strings.ToLower(subject))
		}
	}
	if c.RelationLemma != "" {
		b.add(c.RelationLemma, "relation:"+c.RelationLemma)
	}
	if c.ObjectCanonical != "" {
		b.add(c.ObjectCanonical, "object:"+strings.ToLower(c.ObjectCanonical))
	}
	if c.Quantity.Text != "" {
		b.add(c.Quantity.Text, "quantity")
	}
	if c.TimeNormalized != "" {
		b.add(c.TimeNormalized, "time:"+c.TimeNormalized)
	}
	return b.query()
}

func verbForm(lemma string, pol model.Polarity) string {
	verb, ok := conjugations[lemma]
	if !ok {
		verb = lemma
	}
	if pol != model.PolarityNegated {
		return verb
	}
	switch verb {
	case "is":
		return "is not"
	case "has":
		return "does not have"
	default:
		return "does not " + lemma
	}
}

func formatQuantity(q model.Quantity) string {
	if q.Range != nil {
		return formatFloat(q.Range[0]) + " to " + formatFloat(q.Range[1])
	}
	if q.Value != nil {
		return formatFloat(*q.Value)
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
