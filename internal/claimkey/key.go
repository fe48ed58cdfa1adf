// Package claimkey derives the deduplication key of a normalized claim from
// its semantic slots. The claim id never takes part in the key.
package claimkey

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/ppiankov/claimify/internal/model"
)

const djb2Seed int32 = 5381

// Make returns the stable key for a claim.
func Make(c model.NormalizedClaim) string {
	return stableHash(Canonical(c))
}

// Canonical returns the ordered slot string the key is hashed from. Absent
// slots are omitted; polarity is always present.
func Canonical(c model.NormalizedClaim) string {
	return strings.Join(parts(c, true), "|")
}

// Debug renders the slots for logs without lower-casing.
func Debug(c model.NormalizedClaim) string {
	return strings.Join(parts(c, false), " | ")
}

func parts(c model.NormalizedClaim, lower bool) []string {
	lc := func(s string) string {
		if lower {
			return strings.ToLower(s)
		}
		return s
	}

	var out []string
	if c.SubjectCanonical != "" {
		out = append(out, "subj:"+lc(c.SubjectCanonical))
	}
	if c.RelationLemma != "" {
		out = append(out, "rel:"+lc(c.RelationLemma))
	}
	if c.ObjectCanonical != "" {
		out = append(out, "obj:"+lc(c.ObjectCanonical))
	}
	pol := c.Polarity
	if pol == "" {
		pol = model.PolarityAffirmed
	}
	out = append(out, "pol:"+string(pol))
	if c.TimeNormalized != "" {
		out = append(out, "time:"+c.TimeNormalized)
	}
	if c.LocationNormalized != "" {
		out = append(out, "loc:"+lc(c.LocationNormalized))
	}
	return out
}

// stableHash is a 32-bit DJB2 over UTF-16 code units, rendered as the
// absolute value in base 36.
func stableHash(s string) string {
	h := djb2Seed
	for _, u := range utf16.Encode([]rune(s)) {
		h = h<<5 + h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
