package model

// RevisionAction marks how an extracted item relates to earlier ones.
type RevisionAction string

const (
	RevisionNew       RevisionAction = "new"
	RevisionUpdate    RevisionAction = "update"
	RevisionExpanded  RevisionAction = "expanded"
	RevisionCorrected RevisionAction = "corrected"
	RevisionNarrowed  RevisionAction = "narrowed"
	RevisionWithdrawn RevisionAction = "withdrawn"
)

// RawClaimItem is one extracted claim from the language model. All slot spans
// are optional.
type RawClaimItem struct {
	ID             string         `json:"id" yaml:"id"`
	Quote          string         `json:"quote" yaml:"quote"`
	SpeakerTag     string         `json:"speakerTag,omitempty" yaml:"speaker,omitempty"`
	RevisionAction RevisionAction `json:"revisionAction,omitempty" yaml:"revision_action,omitempty"`
	Version        int            `json:"version,omitempty" yaml:"version,omitempty"`

	Context          string   `json:"context,omitempty" yaml:"context,omitempty"`
	ContextFragments []string `json:"contextFragments,omitempty" yaml:"context_fragments,omitempty"`

	SubjectSpan     string `json:"subjectSpan,omitempty" yaml:"subject,omitempty"`
	ObjectSpan      string `json:"objectSpan,omitempty" yaml:"object,omitempty"`
	TimeSpan        string `json:"timeSpan,omitempty" yaml:"time,omitempty"`
	LocationSpan    string `json:"locationSpan,omitempty" yaml:"location,omitempty"`
	AttributionSpan string `json:"attributionSpan,omitempty" yaml:"attribution,omitempty"`
	Scope           string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Condition       string `json:"condition,omitempty" yaml:"condition,omitempty"`

	RequiresContext bool     `json:"requiresContext,omitempty" yaml:"requires_context,omitempty"`
	ContextReason   string   `json:"contextReason,omitempty" yaml:"context_reason,omitempty"`
	OriginalSeeds   []string `json:"searchSeeds,omitempty" yaml:"search_seeds,omitempty"`
}

// Clone returns a deep copy of the item.
func (r RawClaimItem) Clone() RawClaimItem {
	out := r
	out.ContextFragments = cloneStrings(r.ContextFragments)
	out.OriginalSeeds = cloneStrings(r.OriginalSeeds)
	return out
}

// SpeakerLabel maps a diarization number to a derived display label.
type SpeakerLabel struct {
	SpeakerNumber int    `json:"speakerNumber" yaml:"speaker_number"`
	DerivedLabel  string `json:"speakerDerivedLabel" yaml:"derived_label"`
}

// LLMPayload is one extraction batch.
type LLMPayload struct {
	Rev           int            `json:"rev" yaml:"rev"`
	Items         []RawClaimItem `json:"items" yaml:"items"`
	SpeakerLabels []SpeakerLabel `json:"speakerLabels,omitempty" yaml:"speaker_labels,omitempty"`
}
