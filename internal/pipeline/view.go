package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/model"
)

// Card is the UI projection of one claim.
type Card struct {
	ID            string           `json:"id"`
	ClaimKey      string           `json:"claimKey"`
	Quote         string           `json:"quote"`
	Speaker       string           `json:"speaker,omitempty"`
	Subject       string           `json:"subject,omitempty"`
	Status        model.Status     `json:"status"`
	Label         string           `json:"label"`
	Confidence    float64          `json:"confidence"`
	ConfidencePct int              `json:"confidencePct"`
	Rationale     string           `json:"rationale,omitempty"`
	Citations     []model.Citation `json:"citations,omitempty"`
	Version       int              `json:"version"`
	Settled       bool             `json:"settled"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	CheckedAt     *time.Time       `json:"checkedAt,omitempty"`
}

var statusLabels = map[model.Status]string{
	model.StatusPendingCoref: "Needs context",
	model.StatusReady:        "Waiting",
	model.StatusQueued:       "Queued",
	model.StatusChecking:     "Checking",
	model.StatusVerified:     "Supported",
	model.StatusRefuted:      "Disputed",
	model.StatusUncertain:    "Uncertain",
	model.StatusWithdrawn:    "Withdrawn",
}

// StatusLabel returns the display label for a status.
func StatusLabel(s model.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// NewCard maps a record snapshot to a card.
func NewCard(snap engine.Snapshot, speakers model.SpeakerMap) Card {
	c := snap.Claim
	subject := c.SubjectSurface
	if subject == "" {
		subject = c.SubjectCanonical
	}
	card := Card{
		ID:            c.ID,
		ClaimKey:      c.ClaimKey,
		Quote:         c.Quote,
		Speaker:       displayName(speakers, c.SpeakerTag),
		Subject:       subject,
		Status:        c.Status,
		Label:         StatusLabel(c.Status),
		Confidence:    c.Confidence,
		ConfidencePct: int(math.Round(c.Confidence * 100)),
		Rationale:     snap.Rationale,
		Citations:     snap.Citations,
		Version:       c.Version,
		Settled:       c.Status.IsTerminal(),
		UpdatedAt:     c.UpdatedAt,
	}
	if !snap.CheckedAt.IsZero() {
		t := snap.CheckedAt
		card.CheckedAt = &t
	}
	return card
}

// WriteJSON renders v as indented JSON to path, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
