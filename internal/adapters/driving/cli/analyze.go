package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <run-id>",
	Short: "Add core statements and categories to a run",
	Long: `Send the question/answer entries of a stored run to the model in
batches and merge back a core statement, corpus category tags and a short
justification per entry. Procedural notes are left untouched.

Re-analysing a run replaces earlier enrichment and discards its insights.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Int("concurrency", 0, "batches analysed in parallel (default from settings)")
	analyzeCmd.Flags().Bool("tui", false, "show a live progress view")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	useTUI, _ := cmd.Flags().GetBool("tui") //nolint:errcheck // flag is registered above

	report, err := analyzeRun(cmd, args[0], concurrency, useTUI)
	if report == nil {
		return err
	}
	if jsonOutput {
		if jerr := writeJSON(cmd, report); jerr != nil {
			return jerr
		}
		return err
	}
	printReport(cmd, report)
	return err
}

func analyzeRun(cmd *cobra.Command, runID string, concurrency int, useTUI bool) (*domain.AnalysisReport, error) {
	var report *domain.AnalysisReport
	err := withProgress(cmd, "Analysing run "+runID, useTUI, func(ctx context.Context, sink progressSink) error {
		var aerr error
		report, aerr = runService.Analyze(ctx, runID, driving.AnalyzeOptions{
			Concurrency: concurrency,
			OnProgress: func(p domain.Progress) {
				sink.Progress(fmt.Sprintf("Analyzing... %d/%d chunks complete", p.Completed, p.Total), p.Completed, p.Total)
			},
		})
		return aerr
	})
	return report, err
}

func printReport(cmd *cobra.Command, r *domain.AnalysisReport) {
	status := "complete"
	if r.Cancelled {
		status = "cancelled"
	}
	cmd.Printf("Analysis %s: %d entries analysed in %d batches\n", status, r.Analyzed, r.Batches)
	if r.Unmatched > 0 {
		cmd.Printf("  %d entries received no analysis\n", r.Unmatched)
	}
	if len(r.Unexpected) > 0 {
		cmd.Printf("  Ignored unknown entry ids: %v\n", r.Unexpected)
	}
}
