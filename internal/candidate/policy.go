package candidate

import (
	"regexp"
	"strings"

	"github.com/ppiankov/claimify/internal/model"
)

// Context trigger codes.
const (
	TriggerReporting    = "T1"
	TriggerPronoun      = "T2"
	TriggerDeictic      = "T3"
	TriggerContinuation = "T4"
)

var (
	reportingVerb   = regexp.MustCompile(`(?i)\b(said|stated|claims?|claimed|according to|reported by|wrote|announced|estimates?|per|via)\b`)
	pronounSubject  = regexp.MustCompile(`(?i)^(it|they|he|she|this|that|we|i|me|my|our)$`)
	deictic         = regexp.MustCompile(`(?i)\b(this|that|these|those|here|there)\b`)
	continuationCue = regexp.MustCompile(`(?i)\b(therefore|so|thus|as a result|hence|then|after that)\b`)
)

// PolicyResult says whether an item has the context it needs.
type PolicyResult struct {
	OK           bool
	NeedRevision bool
	Reason       string
}

// DetectTriggers lists the reasons a quote depends on surrounding context.
func DetectTriggers(quote, subject string) []string {
	var out []string
	if reportingVerb.MatchString(quote) {
		out = append(out, TriggerReporting)
	}
	if s := strings.TrimSpace(subject); s != "" && pronounSubject.MatchString(s) {
		out = append(out, TriggerPronoun)
	}
	if deictic.MatchString(quote) {
		out = append(out, TriggerDeictic)
	}
	if continuationCue.MatchString(quote) {
		out = append(out, TriggerContinuation)
	}
	return out
}

// CheckContext fails items that need context but carry neither context nor
// fragments.
func CheckContext(item model.RawClaimItem) PolicyResult {
	triggers := DetectTriggers(item.Quote, item.SubjectSpan)
	if !item.RequiresContext && len(triggers) == 0 {
		return PolicyResult{OK: true}
	}
	if strings.TrimSpace(item.Context) != "" || len(item.ContextFragments) > 0 {
		return PolicyResult{OK: true}
	}

	reason := strings.TrimSpace(item.ContextReason)
	if reason == "" {
		reason = strings.Join(triggers, "+")
	}
	if reason == "" {
		reason = "context-missing"
	}
	return PolicyResult{NeedRevision: true, Reason: reason}
}
