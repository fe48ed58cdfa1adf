package model

import "time"

// Status is the lifecycle state of a tracked claim.
type Status string

const (
	StatusPendingCoref Status = "PENDING_COREF"
	StatusReady        Status = "READY"
	StatusQueued       Status = "QUEUED"
	StatusChecking     Status = "CHECKING"
	StatusVerified     Status = "VERIFIED"
	StatusRefuted      Status = "REFUTED"
	StatusUncertain    Status = "UNCERTAIN"
	StatusWithdrawn    Status = "WITHDRAWN"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusVerified, StatusRefuted, StatusUncertain, StatusWithdrawn:
		return true
	}
	return false
}

// IsInFlight reports whether a fact-check request is outstanding.
func (s Status) IsInFlight() bool {
	return s == StatusQueued || s == StatusChecking
}

// Polarity is whether a claim asserts or negates its relation.
type Polarity string

const (
	PolarityAffirmed Polarity = "affirmed"
	PolarityNegated  Polarity = "negated"
)

// Comparator qualifies a quantity.
type Comparator string

const (
	ComparatorEqual       Comparator = "="
	ComparatorAtLeast     Comparator = "≥"
	ComparatorAtMost      Comparator = "≤"
	ComparatorGreaterThan Comparator = ">"
	ComparatorLessThan    Comparator = "<"
)

// CorefSource names the waterfall step that resolved a subject.
type CorefSource string

const (
	CorefAdjacent      CorefSource = "adjacent"
	CorefFragment      CorefSource = "fragment"
	CorefSpeakerMemory CorefSource = "speakerMemory"
	CorefGlobalMemory  CorefSource = "globalMemory"
	CorefFallback      CorefSource = "fallback"
)

// CorefEvidence records how the subject was resolved.
type CorefEvidence struct {
	Source   CorefSource `json:"source"`
	Evidence []string    `json:"evidence"`
}

// Resolved reports whether the waterfall found a subject.
func (e CorefEvidence) Resolved() bool {
	return e.Source != CorefFallback && e.Source != ""
}

// Quantity is a numeric slot. Exactly one of Value or Range is set when the
// quantity is defined.
type Quantity struct {
	Text       string      `json:"text,omitempty"`
	Value      *float64    `json:"value,omitempty"`
	Range      *[2]float64 `json:"range,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Comparator Comparator  `json:"comparator,omitempty"`
	Approx     bool        `json:"approx,omitempty"`
}

// Defined reports whether a numeric value or range was extracted.
func (q Quantity) Defined() bool {
	return q.Value != nil || q.Range != nil
}

// SameValue reports whether two quantities carry the same numeric value.
func (q Quantity) SameValue(o Quantity) bool {
	switch {
	case q.Value != nil && o.Value != nil:
		return *q.Value == *o.Value
	case q.Range != nil && o.Range != nil:
		return *q.Range == *o.Range
	default:
		return q.Value == nil && o.Value == nil && q.Range == nil && o.Range == nil
	}
}

// Clone returns a deep copy.
func (q Quantity) Clone() Quantity {
	out := q
	if q.Value != nil {
		v := *q.Value
		out.Value = &v
	}
	if q.Range != nil {
		r := *q.Range
		out.Range = &r
	}
	return out
}

// NormalizedClaim is the canonical, slot-filled form of a claim.
type NormalizedClaim struct {
	ID               string   `json:"id"`
	Quote            string   `json:"quote"`
	SpeakerTag       string   `json:"speakerTag,omitempty"`
	Context          string   `json:"context,omitempty"`
	ContextFragments []string `json:"contextFragments,omitempty"`

	SubjectSurface   string `json:"subjectSurface,omitempty"`
	SubjectCanonical string `json:"subjectCanonical,omitempty"`
	RelationSurface  string `json:"relationSurface,omitempty"`
	RelationLemma    string `json:"relationLemma"`
	ObjectSurface    string `json:"objectSurface,omitempty"`
	ObjectCanonical  string `json:"objectCanonical,omitempty"`

	Quantity Quantity `json:"quantity"`

	TimeSurface        string `json:"timeSurface,omitempty"`
	TimeNormalized     string `json:"timeNormalized,omitempty"`
	LocationSurface    string `json:"locationSurface,omitempty"`
	LocationNormalized string `json:"locationNormalized,omitempty"`

	AttributionSurface string `json:"attributionSurface,omitempty"`
	AttributionSource  string `json:"attributionSource,omitempty"`

	Polarity  Polarity `json:"polarity"`
	Scope     string   `json:"scope,omitempty"`
	Condition string   `json:"condition,omitempty"`

	Coref *CorefEvidence `json:"coref,omitempty"`

	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Version    int     `json:"version"`

	ClaimKey      string    `json:"claimKey"`
	OriginalSeeds []string  `json:"originalSeeds,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasSubject reports whether a subject was resolved.
func (c NormalizedClaim) HasSubject() bool {
	return c.SubjectCanonical != ""
}

// Clone returns a deep copy so callers can never alias engine state.
func (c NormalizedClaim) Clone() NormalizedClaim {
	out := c
	out.ContextFragments = cloneStrings(c.ContextFragments)
	out.OriginalSeeds = cloneStrings(c.OriginalSeeds)
	out.Quantity = c.Quantity.Clone()
	if c.Coref != nil {
		ev := *c.Coref
		ev.Evidence = cloneStrings(c.Coref.Evidence)
		out.Coref = &ev
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
