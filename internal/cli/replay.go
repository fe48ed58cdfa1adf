package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/pipeline"
)

var (
	replayJSON       string
	replayDispatcher string
	replayStep       time.Duration
	replayTail       time.Duration
	replayTimeout    time.Duration
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <session.yaml>",
	Short: "Replay a recorded session through the claim engine",
	Long: `Replay feeds a recorded conversation to a fresh session on a simulated clock:
- transcript turns are added to the rolling index
- extraction payloads are normalized and merged into claims
- the engine ticks every --step, dispatching settled claims
- scripted verdicts are routed back by claim id

Example:
  claimify replay session.yaml
  claimify replay session.yaml --json claims.json --step 500ms
  claimify replay session.yaml --dispatcher perplexity`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayJSON, "json", "", "write the final claims as JSON to this path")
	replayCmd.Flags().StringVar(&replayDispatcher, "dispatcher", DispatcherDryRun, "fact-check dispatcher (dry-run, perplexity)")
	replayCmd.Flags().DurationVar(&replayStep, "step", time.Second, "simulated time between ticks")
	replayCmd.Flags().DurationVar(&replayTail, "tail", 15*time.Second, "simulated time to keep ticking after the last step")
	replayCmd.Flags().DurationVar(&replayTimeout, "timeout", 5*time.Minute, "overall replay timeout")
}

// ReplayReport is the JSON output of a replay.
type ReplayReport struct {
	Session    string                  `json:"session"`
	Dispatched int                     `json:"dispatched"`
	Unmatched  int                     `json:"unmatchedResults,omitempty"`
	Claims     []model.NormalizedClaim `json:"claims"`
	Cards      []pipeline.Card         `json:"cards"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), replayTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	script, err := LoadScript(args[0])
	if err != nil {
		return err
	}
	if script.Name == "" {
		script.Name = args[0]
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Replaying: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Steps: %d over %s\n", len(script.Steps), script.Duration())
		fmt.Fprintf(os.Stderr, "Dispatcher: %s\n", replayDispatcher)
		fmt.Fprintln(os.Stderr)
	}

	report, err := replayScript(ctx, cfg, script, replayDispatcher, replayStep, replayTail)
	if err != nil {
		return err
	}

	printClaims(cmd.OutOrStdout(), report.Claims)
	if verbose {
		fmt.Fprintf(os.Stderr, "\n✓ %d claims, %d dispatched", len(report.Claims), report.Dispatched)
		if report.Unmatched > 0 {
			fmt.Fprintf(os.Stderr, ", %d results for unknown claims", report.Unmatched)
		}
		fmt.Fprintln(os.Stderr)
	}

	if replayJSON != "" {
		if err := pipeline.WriteJSON(replayJSON, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// replayScript runs script to completion and reports the final state.
func replayScript(ctx context.Context, cfg model.Config, script *Script, dispatcher string, step, tail time.Duration) (*ReplayReport, error) {
	rt, err := newRuntime(cfg, script, dispatcher)
	if err != nil {
		return nil, err
	}

	r := &Replayer{Session: rt.session, Clock: rt.clock, Step: step, Tail: tail, Sources: rt.sources}
	runErr := r.Run(ctx, script)
	rt.close()
	if runErr != nil {
		return nil, fmt.Errorf("replay %s: %w", script.Name, runErr)
	}

	return &ReplayReport{
		Session:    script.Name,
		Dispatched: rt.dispatched(),
		Unmatched:  r.Unmatched,
		Claims:     rt.session.Claims(),
		Cards:      rt.session.Cards(),
	}, nil
}

func printClaims(w io.Writer, claims []model.NormalizedClaim) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCONF\tVER\tSUBJECT\tQUOTE")
	for _, c := range claims {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\t%s\n",
			c.ID, c.Status, c.Confidence, c.Version, c.SubjectCanonical, truncate(c.Quote, 60))
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
