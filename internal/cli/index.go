package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimify/internal/model"
	"github.com/ppiankov/claimify/internal/pipeline"
	"github.com/ppiankov/claimify/internal/transcript"
)

var (
	indexSpeaker   string
	indexWindow    int
	indexTimeout   time.Duration
	indexUserAgent string
	indexMaxBytes  int64
	indexJSON      string
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <file|url>",
	Short: "Build a transcript index from a file or web page",
	Long: `Index splits a transcript into sentences and prints the rolling window the
engine would see. Inputs:
- .json: an array of {"speaker", "text"} turns
- .html/.htm or an http(s) URL: a published transcript page
- anything else: plain text, optionally with "Speaker: " prefixes

Example:
  claimify index episode.txt
  claimify index https://example.com/transcripts/ep42 --window 200`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringVar(&indexSpeaker, "speaker", "", "speaker tag for lines without a label")
	indexCmd.Flags().IntVar(&indexWindow, "window", 0, "sentences to keep (default: transcript.window_size)")
	indexCmd.Flags().DurationVar(&indexTimeout, "timeout", 30*time.Second, "fetch timeout for URLs")
	indexCmd.Flags().StringVar(&indexUserAgent, "ua", "Claimify/0.1", "HTTP User-Agent")
	indexCmd.Flags().Int64Var(&indexMaxBytes, "max-bytes", 5_000_000, "max response bytes to read")
	indexCmd.Flags().StringVar(&indexJSON, "json", "", "write the index as JSON to this path")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	window := indexWindow
	if window <= 0 {
		window = cfg.Transcript.WindowSize
	}

	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	var idx model.TranscriptIndex
	src := args[0]
	if isURL(src) {
		if verbose {
			fmt.Fprintf(os.Stderr, "Fetching: %s\n", src)
		}
		fetcher := transcript.NewFetcher(indexTimeout, indexUserAgent, indexMaxBytes,
			cfg.Retrieval.HTTPProxy, cfg.Retrieval.HTTPSProxy, cfg.Retrieval.NoProxy)
		page, err := fetcher.FetchWithRetry(ctx, src)
		if err != nil {
			return fmt.Errorf("fetch transcript: %w", err)
		}
		idx, err = page.Index(indexSpeaker, window)
		if err != nil {
			return err
		}
	} else {
		idx, err = indexFile(src, indexSpeaker, window)
		if err != nil {
			return err
		}
	}

	printIndex(cmd.OutOrStdout(), idx)
	if indexJSON != "" {
		return pipeline.WriteJSON(indexJSON, idx)
	}
	return nil
}

// indexFile picks a reader by file extension.
func indexFile(path, speaker string, window int) (model.TranscriptIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TranscriptIndex{}, fmt.Errorf("open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		turns, err := transcript.ReadTurnsJSON(f)
		if err != nil {
			return model.TranscriptIndex{}, err
		}
		return transcript.FromTurns(turns, window), nil
	case ".html", ".htm":
		return transcript.FromHTML(f, speaker, window)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return model.TranscriptIndex{}, fmt.Errorf("read transcript: %w", err)
		}
		return transcript.FromText(string(data), speaker, window), nil
	}
}

func printIndex(w io.Writer, idx model.TranscriptIndex) {
	for _, s := range idx.Sentences {
		if s.SpeakerTag != "" {
			fmt.Fprintf(w, "[%d] %s: %s\n", s.Idx, s.SpeakerTag, s.Text)
			continue
		}
		fmt.Fprintf(w, "[%d] %s\n", s.Idx, s.Text)
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
