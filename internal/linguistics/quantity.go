package linguistics

import (
	"strconv"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

var multipliers = map[string]float64{
	"million":  1e6,
	"billion":  1e9,
	"trillion": 1e12,
}

// ExtractQuantity returns the first quantity found, trying percentages,
// currency, ranges, comparisons and then bare numbers.
func (h *Heuristic) ExtractQuantity(quote string) model.Quantity {
	if m := percentQty.FindStringSubmatch(quote); m != nil {
		return model.Quantity{
			Text:       m[0],
			Value:      parseNumber(m[1]),
			Unit:       "%",
			Comparator: model.ComparatorEqual,
		}
	}

	if m := currencyQty.FindStringSubmatch(quote); m != nil {
		q := model.Quantity{
			Text:       m[0],
			Value:      parseNumber(m[1]),
			Unit:       "USD",
			Comparator: model.ComparatorEqual,
		}
		if mult, ok := multipliers[strings.ToLower(m[2])]; ok && q.Value != nil {
			v := *q.Value * mult
			q.Value = &v
		}
		return q
	}

	if m := rangeQty.FindStringSubmatch(quote); m != nil {
		lo, hi := parseNumber(m[1]), parseNumber(m[2])
		q := model.Quantity{Text: m[0], Comparator: model.ComparatorEqual}
		if lo != nil && hi != nil {
			q.Range = &[2]float64{*lo, *hi}
		}
		return q
	}

	if m := comparisonQty.FindStringSubmatch(quote); m != nil {
		q := model.Quantity{Text: m[0], Value: parseNumber(m[2])}
		switch strings.ToLower(m[1]) {
		case "at least", "more than", "over", "above":
			q.Comparator = model.ComparatorAtLeast
		case "up to", "less than", "under", "below":
			q.Comparator = model.ComparatorAtMost
		default:
			q.Comparator = model.ComparatorEqual
			q.Approx = true
		}
		return q
	}

	if m := simpleQty.FindStringSubmatch(quote); m != nil {
		return model.Quantity{
			Text:       m[0],
			Value:      parseNumber(m[1]),
			Unit:       m[2],
			Comparator: model.ComparatorEqual,
		}
	}

	return model.Quantity{}
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
