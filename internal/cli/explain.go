package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimify/internal/claimkey"
	"github.com/ppiankov/claimify/internal/engine"
	"github.com/ppiankov/claimify/internal/extract"
	"github.com/ppiankov/claimify/internal/linguistics"
	"github.com/ppiankov/claimify/internal/memory"
	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/score"
)

var (
	explainItem model.RawClaimItem
	explainJSON bool
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Normalize one claim and explain its verifiability score",
	Long: `Explain normalizes a single claim against an empty session and prints the
extracted slots, the claim key, the search query and a per-term breakdown of
the verifiability score.

Example:
  claimify explain --quote "Australia's inflation is 8% right now." --subject Australia
  claimify explain --quote "He said GDP grew 3% in 2023." --attribution "the treasurer" --json`,
	Args: cobra.NoArgs,
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVar(&explainItem.Quote, "quote", "", "claim quote (required)")
	explainCmd.Flags().StringVar(&explainItem.SubjectSpan, "subject", "", "subject span")
	explainCmd.Flags().StringVar(&explainItem.ObjectSpan, "object", "", "object span")
	explainCmd.Flags().StringVar(&explainItem.TimeSpan, "time", "", "time span")
	explainCmd.Flags().StringVar(&explainItem.LocationSpan, "location", "", "location span")
	explainCmd.Flags().StringVar(&explainItem.AttributionSpan, "attribution", "", "attribution span")
	explainCmd.Flags().StringVar(&explainItem.Context, "context", "", "surrounding context")
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "print JSON instead of text")
	_ = explainCmd.MarkFlagRequired("quote")
}

// Explanation is the output of explain.
type Explanation struct {
	Claim    model.NormalizedClaim     `json:"claim"`
	KeyDebug string                    `json:"keyDebug"`
	Query    string                    `json:"query"`
	Tags     []string                  `json:"tags,omitempty"`
	Report   model.VerifiabilityReport `json:"report"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	item := explainItem
	if item.ID == "" {
		item.ID = "explain"
	}

	ex, err := explainClaim(cfg, item, time.Now())
	if err != nil {
		return err
	}
	if explainJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}
	printExplanation(cmd.OutOrStdout(), ex)
	return nil
}

// explainClaim normalizes item with no transcript and fresh memories.
func explainClaim(cfg model.Config, item model.RawClaimItem, now time.Time) (*Explanation, error) {
	ling := linguistics.NewHeuristic()
	gate := score.NewGate(cfg.Engine.MinVerifiability)
	norm := extract.NewNormalizer(ling, gate)
	mem := memory.New(ling, cfg.Memory.DequeSize, cfg.Memory.TopicID)

	claim, err := norm.Normalize(item, model.TranscriptIndex{}, mem, now)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	claim.ClaimKey = claimkey.Make(claim)
	claim.Status = model.StatusReady
	if !claim.HasSubject() {
		claim.Status = model.StatusPendingCoref
	}

	q := engine.BuildQuery(claim)
	return &Explanation{
		Claim:    claim,
		KeyDebug: claimkey.Debug(claim),
		Query:    q.Text,
		Tags:     q.Tags,
		Report:   gate.Explain(claim),
	}, nil
}

func printExplanation(w io.Writer, ex *Explanation) {
	c := ex.Claim
	fmt.Fprintf(w, "Quote:       %s\n", c.Quote)
	fmt.Fprintf(w, "Subject:     %s", orDash(c.SubjectCanonical))
	if c.Coref != nil {
		fmt.Fprintf(w, " (%s)", c.Coref.Source)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Relation:    %s\n", orDash(c.RelationLemma))
	fmt.Fprintf(w, "Object:      %s\n", orDash(c.ObjectCanonical))
	fmt.Fprintf(w, "Quantity:    %s\n", orDash(c.Quantity.Text))
	fmt.Fprintf(w, "Time:        %s\n", orDash(c.TimeNormalized))
	fmt.Fprintf(w, "Location:    %s\n", orDash(c.LocationNormalized))
	fmt.Fprintf(w, "Attribution: %s\n", orDash(c.AttributionSource))
	fmt.Fprintf(w, "Polarity:    %s\n", c.Polarity)
	fmt.Fprintf(w, "Status:      %s\n", c.Status)
	fmt.Fprintf(w, "Key:         %s\n", c.ClaimKey)
	fmt.Fprintf(w, "Key slots:   %s\n", ex.KeyDebug)
	fmt.Fprintf(w, "Query:       %s", ex.Query)
	if len(ex.Tags) > 0 {
		fmt.Fprintf(w, " [%s]", strings.Join(ex.Tags, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	verdict := "not verifiable now"
	if ex.Report.Verifiable {
		verdict = "verifiable now"
	}
	fmt.Fprintf(w, "Verifiability: %.2f (%s)\n", ex.Report.Score, verdict)
	for _, line := range ex.Report.Breakdown {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
