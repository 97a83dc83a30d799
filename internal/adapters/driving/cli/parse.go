package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/connectors/filesystem"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Segment an OCR protocol into a timeline",
	Long: `Read an OCR text file, split it at its page markers and let the model
segment every chunk of pages into questions, answers and procedural notes.

The run is stored even when it is cancelled part way (ctrl+c); failed
chunks are skipped and reported as warnings.

Examples:
  protokoll parse wp80.txt
  protokoll parse wp80.txt --bulk --tui
  protokoll parse scan.txt --protocol-id WP80`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	addParseFlags(parseCmd)
	parseCmd.Flags().Bool("tui", false, "show a live progress view")
	rootCmd.AddCommand(parseCmd)
}

func addParseFlags(cmd *cobra.Command) {
	cmd.Flags().String("protocol-id", "", "protocol identifier when the header has none, e.g. WP80")
	cmd.Flags().Int("pages-per-chunk", 0, "pages sent per model call (default from settings)")
	cmd.Flags().Bool("bulk", false, fmt.Sprintf("send %d pages per model call", domain.BulkPagesPerChunk))
}

func parseOptionsFromFlags(cmd *cobra.Command, path string) (driving.ParseOptions, error) {
	protocolID, err := cmd.Flags().GetString("protocol-id")
	if err != nil {
		return driving.ParseOptions{}, err
	}
	pages, err := cmd.Flags().GetInt("pages-per-chunk")
	if err != nil {
		return driving.ParseOptions{}, err
	}
	bulk, err := cmd.Flags().GetBool("bulk")
	if err != nil {
		return driving.ParseOptions{}, err
	}
	if bulk && pages > 0 {
		return driving.ParseOptions{}, errors.New("--bulk and --pages-per-chunk are mutually exclusive")
	}
	if bulk {
		pages = domain.BulkPagesPerChunk
	}
	if pages < 0 {
		return driving.ParseOptions{}, fmt.Errorf("--pages-per-chunk must be positive, got %d", pages)
	}
	return driving.ParseOptions{ProtocolID: protocolID, PagesPerChunk: pages, Source: path}, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	opts, err := parseOptionsFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	useTUI, _ := cmd.Flags().GetBool("tui") //nolint:errcheck // flag is registered above

	run, err := parseFile(cmd, args[0], opts, useTUI)
	if run == nil {
		return err
	}
	if jsonOutput {
		if jerr := writeJSON(cmd, run); jerr != nil {
			return jerr
		}
		return err
	}
	printRunResult(cmd, run)
	return err
}

// parseFile reads path and parses it with progress output.
func parseFile(cmd *cobra.Command, path string, opts driving.ParseOptions, useTUI bool) (*domain.Run, error) {
	text, err := filesystem.ReadProtocol(path)
	if err != nil {
		return nil, err
	}

	var run *domain.Run
	jobErr := withProgress(cmd, "Parsing "+path, useTUI, func(ctx context.Context, sink progressSink) error {
		warned := 0
		opts.OnProgress = func(p domain.RunProgress) {
			sink.Progress(p.Message, p.Run.PagesProcessed, p.Run.TotalPages)
			for ; warned < len(p.Run.Warnings); warned++ {
				sink.Warn(formatWarning(p.Run.Warnings[warned]))
			}
		}
		var perr error
		run, perr = runService.Parse(ctx, text, opts)
		return perr
	})
	return run, jobErr
}

func formatWarning(w domain.ChunkWarning) string {
	return fmt.Sprintf("pages %d-%d: %s", w.FirstPage, w.LastPage, w.Message)
}

func printRunResult(cmd *cobra.Command, run *domain.Run) {
	cmd.Printf("Run %s (%s): %s\n", run.ID, run.ProtocolID, run.State)
	cmd.Printf("  Entries: %d\n", len(run.Entries))
	cmd.Printf("  Pages:   %d of %d processed\n", run.PagesProcessed, run.TotalPages)
	if len(run.SkippedPages) > 0 {
		cmd.Printf("  Skipped pages: %v\n", run.SkippedPages)
	}
	for _, w := range run.Warnings {
		cmd.Printf("  Warning: %s\n", formatWarning(w))
	}
	if run.Error != "" {
		cmd.Printf("  Error: %s\n", run.Error)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
