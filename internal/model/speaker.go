package model

import (
	"strconv"
	"strings"
)

// SpeakerInfo identifies a diarized speaker.
type SpeakerInfo struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Role string `json:"role,omitempty" yaml:"role,omitempty" mapstructure:"role"`
}

// SpeakerMap maps a speaker tag (e.g. "Speaker 1") to a known identity.
type SpeakerMap map[string]SpeakerInfo

// Name returns the trimmed name for a tag, or "".
func (m SpeakerMap) Name(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || m == nil {
		return ""
	}
	return strings.TrimSpace(m[tag].Name)
}

// Merge returns a new map with entries from o taking precedence.
func (m SpeakerMap) Merge(o SpeakerMap) SpeakerMap {
	out := make(SpeakerMap, len(m)+len(o))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// SpeakerMap builds a speaker map from the payload's derived labels. Labels
// are keyed both as "Speaker N" and as the bare number.
func (p LLMPayload) SpeakerMap() SpeakerMap {
	out := make(SpeakerMap)
	for _, l := range p.SpeakerLabels {
		label := strings.TrimSpace(l.DerivedLabel)
		if label == "" {
			continue
		}
		n := strconv.Itoa(l.SpeakerNumber)
		out["Speaker "+n] = SpeakerInfo{Name: label}
		out[n] = SpeakerInfo{Name: label}
	}
	return out
}
