package model

import "time"

// Verdict is the outcome reported by the fact-check collaborator.
type Verdict string

const (
	VerdictVerified  Verdict = "VERIFIED"
	VerdictRefuted   Verdict = "REFUTED"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// Status maps a verdict onto the terminal claim status.
func (v Verdict) Status() Status {
	switch v {
	case VerdictVerified:
		return StatusVerified
	case VerdictRefuted:
		return StatusRefuted
	default:
		return StatusUncertain
	}
}

// SourceTier grades how authoritative a cited source is.
type SourceTier int

const (
	TierUnknown   SourceTier = 0 // Not yet classified
	TierPrimary   SourceTier = 1 // Official statistics, government, academic
	TierSecondary SourceTier = 2 // Wire services, major publishers, encyclopedias
	TierTertiary  SourceTier = 3 // Blogs, aggregators, everything else
)

func (t SourceTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Citation is a source returned with a verdict.
type Citation struct {
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url"`
	PublishedAt string     `json:"publishedAt,omitempty"`
	Quote       string     `json:"quote,omitempty"`
	Tier        SourceTier `json:"tier,omitempty"`
}

// FactCheckResult is a complete answer from the fact-check collaborator.
type FactCheckResult struct {
	Verdict    Verdict    `json:"verdict"`
	Confidence *float64   `json:"confidence,omitempty"`
	Rationale  string     `json:"rationale,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
	CheckedAt  time.Time  `json:"checkedAt"`
}

// DispatchMeta travels with every outgoing fact-check request. Results must
// be routed back using ClaimKey.
type DispatchMeta struct {
	ClaimKey string          `json:"claimKey"`
	Tags     []string        `json:"tags,omitempty"`
	Claim    NormalizedClaim `json:"claim"`
	IsRetry  bool            `json:"isRetry,omitempty"`
}

// ClaimEvent describes one lifecycle transition.
type ClaimEvent struct {
	ID       string    `json:"id"`
	ClaimID  string    `json:"claimId"`
	ClaimKey string    `json:"claimKey"`
	From     Status    `json:"from,omitempty"`
	To       Status    `json:"to"`
	Version  int       `json:"version"`
	At       time.Time `json:"at"`
}
