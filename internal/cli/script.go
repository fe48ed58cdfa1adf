package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/pipeline"
	"github.com/ppiankov/claimify/internal/validate"
)

// Script is a recorded conversation: transcript turns, extraction payloads
// and verdicts, each at an offset from the start.
type Script struct {
	Name     string                       `yaml:"name"`
	Start    time.Time                    `yaml:"start,omitempty"`
	Speakers map[string]model.SpeakerInfo `yaml:"speakers,omitempty"`
	Steps    []Step                       `yaml:"steps"`
}

// Step is one scripted input. Exactly one of Turns, Payload or Result is
// normally set; all present parts are applied in that order.
type Step struct {
	At      time.Duration     `yaml:"at"`
	Turns   []model.Turn      `yaml:"turns,omitempty"`
	Payload *model.LLMPayload `yaml:"payload,omitempty"`
	Result  *ScriptedVerdict  `yaml:"result,omitempty"`
}

// ScriptedVerdict answers the fact-check request of a claim id.
type ScriptedVerdict struct {
	ClaimID    string           `yaml:"claim_id"`
	Verdict    model.Verdict    `yaml:"verdict"`
	Confidence *float64         `yaml:"confidence,omitempty"`
	Rationale  string           `yaml:"rationale,omitempty"`
	Citations  []model.Citation `yaml:"citations,omitempty"`
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadScript(f)
}

// ReadScript decodes a YAML script and orders its steps by offset.
func ReadScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("script has no steps")
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return nil, fmt.Errorf("step %d: negative offset %s", i, st.At)
		}
		if st.Result != nil {
			if strings.TrimSpace(st.Result.ClaimID) == "" {
				return nil, fmt.Errorf("step %d: result without claim_id", i)
			}
			st.Result.Verdict = model.Verdict(strings.ToUpper(string(st.Result.Verdict)))
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	if s.Start.IsZero() {
		s.Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &s, nil
}

// Duration is the offset of the last step.
func (s *Script) Duration() time.Duration {
	return s.Steps[len(s.Steps)-1].At
}

// Replayer drives a session through a script on a manual clock.
type Replayer struct {
	Session *pipeline.Session
	Clock   *engine.ManualClock
	Step    time.Duration
	Tail    time.Duration
	Sources *validate.Classifier

	// Unmatched counts scripted verdicts whose claim id was never seen.
	Unmatched int
}

// Run applies every step, ticking the engine every r.Step, and keeps ticking
// for r.Tail after the last step so pending timers can fire.
func (r *Replayer) Run(ctx context.Context, s *Script) error {
	if r.Step <= 0 {
		r.Step = time.Second
	}
	end := s.Duration() + r.Tail

	next := 0
	for offset := time.Duration(0); offset <= end; offset += r.Step {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Clock.Set(s.Start.Add(offset))
		for next < len(s.Steps) && s.Steps[next].At <= offset {
			if err := r.apply(s.Steps[next]); err != nil {
				return fmt.Errorf("step at %s: %w", s.Steps[next].At, err)
			}
			next++
		}
		r.Session.Tick()
		r.Session.Engine().Wait()
	}
	return nil
}

func (r *Replayer) apply(st Step) error {
	for _, turn := range st.Turns {
		r.Session.AddTurn(turn)
	}
	if st.Payload != nil {
		if _, err := r.Session.Ingest(*st.Payload); err != nil {
			return err
		}
	}
	if st.Result != nil {
		claim, ok := r.Session.Engine().ClaimByID(st.Result.ClaimID)
		if !ok {
			r.Unmatched++
			return nil
		}
		r.Session.HandleResult(claim.ClaimKey, model.FactCheckResult{
			Verdict:    st.Result.Verdict,
			Confidence: st.Result.Confidence,
			Rationale:  st.Result.Rationale,
			Citations:  r.rank(st.Result.Citations),
			CheckedAt:  r.Clock.Now(),
		})
	}
	return nil
}

func (r *Replayer) rank(cits []model.Citation) []model.Citation {
	if r.Sources == nil {
		return cits
	}
	return r.Sources.Rank(cits)
}
