package engine

import (
	"math"
	"time"

	"github.com/ppiankov/claimify/internal/model"
)

// Record is one tracked claim with its timing. Records are only touched under
// the engine lock.
type Record struct {
	claim       model.NormalizedClaim
	firstSeen   time.Time
	lastUpdate  time.Time
	stableSince time.Time

	retried   bool
	rationale string
	citations []model.Citation
	checkedAt time.Time
}

// Snapshot is a read-only copy of a record.
type Snapshot struct {
	Claim       model.NormalizedClaim `json:"claim"`
	FirstSeen   time.Time             `json:"firstSeen"`
	StableSince time.Time             `json:"stableSince"`
	Retried     bool                  `json:"retried,omitempty"`
	Rationale   string                `json:"rationale,omitempty"`
	Citations   []model.Citation      `json:"citations,omitempty"`
	CheckedAt   time.Time             `json:"checkedAt"`
}

func newRecord(c model.NormalizedClaim, now time.Time) *Record {
	c.UpdatedAt = now
	return &Record{
		claim:       c.Clone(),
		firstSeen:   now,
		lastUpdate:  now,
		stableSince: now,
	}
}

func (r *Record) snapshot() Snapshot {
	return Snapshot{
		Claim:       r.claim.Clone(),
		FirstSeen:   r.firstSeen,
		StableSince: r.stableSince,
		Retried:     r.retried,
		Rationale:   r.rationale,
		Citations:   append([]model.Citation(nil), r.citations...),
		CheckedAt:   r.checkedAt,
	}
}

func (r *Record) stableFor(d time.Duration, now time.Time) bool {
	return now.Sub(r.stableSince) >= d
}

func (r *Record) age(now time.Time) time.Duration {
	return now.Sub(r.firstSeen)
}

func (r *Record) touch(now time.Time) {
	r.lastUpdate = now
	r.claim.UpdatedAt = now
}

// setStatus changes status and restarts the stability clock. It reports the
// previous status and whether anything changed.
func (r *Record) setStatus(s model.Status, now time.Time) (model.Status, bool) {
	from := r.claim.Status
	if from == s {
		return from, false
	}
	r.claim.Status = s
	r.touch(now)
	r.stableSince = now
	return from, true
}

func (r *Record) bumpVersion(now time.Time) {
	r.claim.Version++
	r.touch(now)
	r.stableSince = now
}

func (r *Record) setConfidence(v float64, now time.Time) {
	r.claim.Confidence = math.Max(0, math.Min(1, v))
	r.touch(now)
}

// merge folds a newer normalization of the same claim into the record. A
// material slot counts as changed only when the newer value is present and
// differs. It reports whether the version was bumped.
func (r *Record) merge(n model.NormalizedClaim, now time.Time) bool {
	c := &r.claim
	changed := differs(c.SubjectCanonical, n.SubjectCanonical) ||
		differs(c.RelationLemma, n.RelationLemma) ||
		differs(c.ObjectCanonical, n.ObjectCanonical) ||
		differs(c.TimeNormalized, n.TimeNormalized) ||
		differs(c.LocationNormalized, n.LocationNormalized) ||
		differs(string(c.Polarity), string(n.Polarity)) ||
		(n.Quantity.Defined() && !c.Quantity.SameValue(n.Quantity))

	setIf(&c.Quote, n.Quote)
	setIf(&c.Context, n.Context)
	if n.ContextFragments != nil {
		c.ContextFragments = append([]string(nil), n.ContextFragments...)
	}
	if n.OriginalSeeds != nil {
		c.OriginalSeeds = append([]string(nil), n.OriginalSeeds...)
	}
	setIf(&c.SpeakerTag, n.SpeakerTag)
	setIf(&c.SubjectSurface, n.SubjectSurface)
	setIf(&c.RelationSurface, n.RelationSurface)
	setIf(&c.ObjectSurface, n.ObjectSurface)
	setIf(&c.TimeSurface, n.TimeSurface)
	setIf(&c.LocationSurface, n.LocationSurface)
	setIf(&c.AttributionSurface, n.AttributionSurface)
	setIf(&c.AttributionSource, n.AttributionSource)
	setIf(&c.Scope, n.Scope)
	setIf(&c.Condition, n.Condition)
	if n.Coref != nil {
		ev := *n.Coref
		ev.Evidence = append([]string{}, n.Coref.Evidence...)
		c.Coref = &ev
	}
	c.Confidence = n.Confidence

	setIf(&c.SubjectCanonical, n.SubjectCanonical)
	setIf(&c.RelationLemma, n.RelationLemma)
	setIf(&c.ObjectCanonical, n.ObjectCanonical)
	setIf(&c.TimeNormalized, n.TimeNormalized)
	setIf(&c.LocationNormalized, n.LocationNormalized)
	if n.Polarity != "" {
		c.Polarity = n.Polarity
	}
	if n.Quantity.Defined() || n.Quantity.Text != "" {
		c.Quantity = n.Quantity.Clone()
	}

	if changed {
		r.bumpVersion(now)
	} else {
		r.touch(now)
	}
	return changed
}

func differs(cur, next string) bool {
	return next != "" && next != cur
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
