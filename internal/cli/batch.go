package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/pipeline"
	"github.com/ppiankov/claimify/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <session.yaml>...",
	Short: "Replay many recorded sessions in parallel",
	Long: `Batch replays several session scripts concurrently with the dry-run
dispatcher and writes one JSON report per script.

Example:
  claimify batch sessions/*.yaml
  claimify batch a.yaml b.yaml --concurrency 4 --output-dir ./reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimify-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&replayStep, "step", time.Second, "simulated time between ticks")
	batchCmd.Flags().DurationVar(&replayTail, "tail", 15*time.Second, "simulated time to keep ticking after the last step")
}

// BatchResult is the outcome of one replayed script.
type BatchResult struct {
	Path   string
	Report *ReplayReport
	Error  error

	index int
}

// GetError implements worker.Result.
func (r *BatchResult) GetError() error {
	return r.Error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Scripts:      %d\n", len(args))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	results := replayAll(ctx, cfg, args, concurrency, replayStep, replayTail)

	successCount := 0
	failureCount := 0
	for _, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}

		jsonPath := filepath.Join(outputDir, sanitizeFilename(res.Report.Session)+".json")
		if err := pipeline.WriteJSON(jsonPath, res.Report); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", res.Path, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d claims, %d dispatched)\n", res.Path, len(res.Report.Claims), res.Report.Dispatched)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d scripts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d scripts failed", failureCount, len(results))
	}
	return nil
}

// replayAll replays every script on a worker pool. Results keep the order of
// paths.
func replayAll(ctx context.Context, cfg model.Config, paths []string, workers int, step, tail time.Duration) []*BatchResult {
	results := make([]*BatchResult, len(paths))

	var mu sync.Mutex
	pool := worker.NewPool(workers, len(paths), func(r worker.Result) {
		res := r.(*BatchResult)
		mu.Lock()
		results[res.index] = res
		mu.Unlock()
	})
	pool.Start()

	for i, path := range paths {
		err := pool.Submit(ctx, worker.JobFunc(func(ctx context.Context) worker.Result {
			script, err := LoadScript(path)
			if err != nil {
				return &BatchResult{Path: path, Error: err, index: i}
			}
			if script.Name == "" {
				script.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			report, err := replayScript(ctx, cfg, script, DispatcherDryRun, step, tail)
			return &BatchResult{Path: path, Report: report, Error: err, index: i}
		}))
		if err != nil {
			results[i] = &BatchResult{Path: path, Error: err, index: i}
		}
	}
	pool.Close()

	for i, r := range results {
		if r == nil {
			results[i] = &BatchResult{Path: paths[i], Error: fmt.Errorf("not processed"), index: i}
		}
	}
	return results
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)
	if s == "" || s == "." {
		s = "session"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
