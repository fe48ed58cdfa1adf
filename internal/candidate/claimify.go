package candidate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

var (
	definitionalVerb = regexp.MustCompile(`(?i)\b(is|are|was|were|be|been|being|hosts?|hosted|invented|founded|acquired|announced|launched|dates?|dated|measures?|measured)\b`)
	hasNumber        = regexp.MustCompile(`(^|[^A-Za-z])(0|[1-9]\d*)(\.\d+)?(%|\b)`)
	hasYear          = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2}|21\d{2})\b`)
	hasNamedEntity   = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,4})\b`)
	hedgeWords       = regexp.MustCompile(`(?i)\b(might|maybe|perhaps|possibly|some say|it seems|it appears|likely)\b`)
	imperative       = regexp.MustCompile(`(?i)^(make sure|let's|let us|please|remember to|try to)\b`)
	weakSubject      = regexp.MustCompile(`(?i)^(it|this|that|they|we|he|she|you|i|me|my|our)$`)
)

// Options configure the candidate plan.
type Options struct {
	Speakers                model.SpeakerMap
	AllowFirstPersonIfNamed bool
	MaxOutput               int
	MaxDispatch             int
	Assemble                AssembleOptions
}

// DefaultOptions keeps twelve ranked candidates and dispatches six.
func DefaultOptions() Options {
	return Options{
		AllowFirstPersonIfNamed: true,
		MaxOutput:               12,
		MaxDispatch:             6,
		Assemble:                DefaultAssembleOptions(),
	}
}

// Plan is the filtered, assembled and ranked candidate set.
type Plan struct {
	Ranked    []model.RawClaimItem
	Dispatch  []model.RawClaimItem
	Withdrawn []string
	Dropped   int
}

// Build gates, assembles and ranks candidates. Inputs are never modified.
func Build(candidates []model.RawClaimItem, opts Options) Plan {
	gate := NewFirstPersonGate(opts.Speakers, opts.AllowFirstPersonIfNamed)

	var plan Plan
	filtered := make([]model.RawClaimItem, 0, len(candidates))
	for _, c := range candidates {
		if !Admissible(c.Quote) {
			plan.Dropped++
			continue
		}
		gated, ok := gate.Apply(c)
		if !ok {
			plan.Dropped++
			continue
		}
		filtered = append(filtered, gated)
	}

	asm := Assemble(filtered, opts.Assemble)
	plan.Withdrawn = asm.Withdrawn

	ranked := append([]model.RawClaimItem(nil), asm.Merged...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Rank(ranked[i]) > Rank(ranked[j])
	})
	if opts.MaxOutput > 0 && len(ranked) > opts.MaxOutput {
		ranked = ranked[:opts.MaxOutput]
	}
	plan.Ranked = ranked

	dispatch := ranked
	if opts.MaxDispatch > 0 && len(dispatch) > opts.MaxDispatch {
		dispatch = dispatch[:opts.MaxDispatch]
	}
	plan.Dispatch = dispatch
	return plan
}

// Admissible applies the syntactic gates: non-empty, not an instruction,
// carrying some checkable signal and not merely hedging.
func Admissible(quote string) bool {
	if strings.TrimSpace(quote) == "" {
		return false
	}
	if IsImperative(quote) {
		return false
	}
	return HasSignal(quote) && !IsHedgeOnly(quote)
}

// HasSignal reports a number, year, definitional verb or capitalized name.
func HasSignal(quote string) bool {
	return hasNumber.MatchString(quote) ||
		hasYear.MatchString(quote) ||
		definitionalVerb.MatchString(quote) ||
		hasNamedEntity.MatchString(quote)
}

// IsImperative reports an instruction rather than an assertion.
func IsImperative(quote string) bool {
	return imperative.MatchString(quote)
}

// IsHedgeOnly reports hedged quotes with nothing checkable in them.
func IsHedgeOnly(quote string) bool {
	return hedgeWords.MatchString(quote) && !HasSignal(quote)
}

// Rank is the candidate ordering score. Higher is more checkable.
func Rank(c model.RawClaimItem) int {
	s := 0
	if hasNumber.MatchString(c.Quote) {
		s += 3
	}
	if hasYear.MatchString(c.Quote) {
		s += 3
	}
	if hasNamedEntity.MatchString(c.Quote) {
		s += 2
	}
	if definitionalVerb.MatchString(c.Quote) {
		s += 2
	}
	if hedgeWords.MatchString(c.Quote) {
		s -= 2
	}
	if subj := strings.TrimSpace(c.SubjectSpan); subj == "" || weakSubject.MatchString(subj) {
		s -= 2
	}
	return s
}
