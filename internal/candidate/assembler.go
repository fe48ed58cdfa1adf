package candidate

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

const maxMergedFragments = 3

var (
	nonAlnum        = regexp.MustCompile(`[^a-z0-9\s]`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+`)
	assemblyPronoun = regexp.MustCompile(`(?i)^(i|me|my|mine|we|our|ours|it|this|that|they|them|their|he|she|his|her|hers)$`)

	stopWords = map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"if": true, "then": true, "so": true, "to": true, "of": true, "in": true,
		"on": true, "for": true, "with": true, "by": true, "at": true, "from": true,
		"as": true, "that": true, "this": true, "those": true, "these": true,
		"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
		"being": true, "it": true, "its": true, "they": true, "them": true,
		"their": true, "he": true, "she": true, "his": true, "her": true,
		"we": true, "our": true, "you": true, "your": true,
	}
)

// AssembleOptions bound how far fragments may be merged.
type AssembleOptions struct {
	MaxSentences     int
	MaxTokensApprox  int
	JaccardThreshold float64
}

// DefaultAssembleOptions caps merges at three sentences and ~120 tokens.
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		MaxSentences:     3,
		MaxTokensApprox:  120,
		JaccardThreshold: 0.25,
	}
}

// Assembly is the result of merging distributed claims.
type Assembly struct {
	Merged    []model.RawClaimItem
	Withdrawn []string
}

// IsWithdrawn reports whether id was absorbed into another claim.
func (a Assembly) IsWithdrawn(id string) bool {
	for _, w := range a.Withdrawn {
		if w == id {
			return true
		}
	}
	return false
}

// Assemble greedily merges fragments of one assertion spread over several
// candidates. Each seed absorbs every later-compatible candidate in a single
// pass; absorbed candidates are withdrawn. The input is not modified.
func Assemble(candidates []model.RawClaimItem, opts AssembleOptions) Assembly {
	items := make([]model.RawClaimItem, len(candidates))
	for i, c := range candidates {
		items[i] = c.Clone()
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SpeakerTag != items[j].SpeakerTag {
			return items[i].SpeakerTag < items[j].SpeakerTag
		}
		return len(items[i].Quote) < len(items[j].Quote)
	})

	used := make(map[string]bool)
	withdrawn := make(map[string]bool)
	var res Assembly

	for i, a := range items {
		if used[a.ID] {
			continue
		}
		best := a
		for j, b := range items {
			if i == j || used[b.ID] {
				continue
			}
			if !canCombine(best, b, opts) {
				continue
			}
			best = mergeItems(best, b)
			withdrawn[b.ID] = true
			used[b.ID] = true
			res.Withdrawn = append(res.Withdrawn, b.ID)
		}
		used[a.ID] = true
		res.Merged = append(res.Merged, best)
	}

	final := res.Merged[:0]
	for _, it := range res.Merged {
		if !withdrawn[it.ID] {
			final = append(final, it)
		}
	}
	res.Merged = final
	return res
}

func canCombine(a, b model.RawClaimItem, opts AssembleOptions) bool {
	if a.SpeakerTag != "" && b.SpeakerTag != "" && a.SpeakerTag != b.SpeakerTag {
		return false
	}

	aSub := strings.TrimSpace(a.SubjectSpan)
	bSub := strings.TrimSpace(b.SubjectSpan)
	sameSubject := aSub != "" && bSub != "" && strings.EqualFold(aSub, bSub)
	resumed := aSub != "" && isAssemblyPronoun(bSub)
	if !sameSubject && !resumed {
		return false
	}

	if jaccard(contentWords(a.Quote), contentWords(b.Quote)) < opts.JaccardThreshold {
		return false
	}

	merged := joinQuotes(a.Quote, b.Quote)
	if sentenceCount(merged) > opts.MaxSentences {
		return false
	}
	return approxTokens(merged) <= opts.MaxTokensApprox
}

func mergeItems(a, b model.RawClaimItem) model.RawClaimItem {
	out := a.Clone()
	out.Quote = joinQuotes(a.Quote, b.Quote)
	if out.Context == "" {
		out.Context = b.Context
	}

	frags := append(append([]string{}, a.ContextFragments...), b.ContextFragments...)
	if len(frags) > maxMergedFragments {
		frags = frags[:maxMergedFragments]
	}
	if len(frags) > 0 {
		out.ContextFragments = frags
	}

	out.OriginalSeeds = unionSeeds(a.OriginalSeeds, b.OriginalSeeds)
	if isAssemblyPronoun(a.SubjectSpan) && b.SubjectSpan != "" && !isAssemblyPronoun(b.SubjectSpan) {
		out.SubjectSpan = b.SubjectSpan
	}
	out.Version = max(versionOf(a), versionOf(b)) + 1
	out.RevisionAction = model.RevisionExpanded
	return out
}

func versionOf(it model.RawClaimItem) int {
	if it.Version <= 0 {
		return 1
	}
	return it.Version
}

func joinQuotes(a, b string) string {
	return strings.TrimSpace(strings.TrimSpace(a) + " " + strings.TrimSpace(b))
}

func unionSeeds(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func isAssemblyPronoun(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && assemblyPronoun.MatchString(s)
}

func contentWords(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(nonAlnum.ReplaceAllString(strings.ToLower(s), " ")) {
		if !stopWords[w] {
			out[w] = true
		}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func sentenceCount(s string) int {
	if n := len(sentenceEnd.FindAllString(s, -1)); n > 0 {
		return n
	}
	return 1
}

func approxTokens(s string) int {
	return int(math.Ceil(float64(len(strings.Fields(s))) * 1.2))
}
