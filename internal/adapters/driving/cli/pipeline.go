package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/logger"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <file>",
	Short: "Parse, analyse and summarise a protocol in one go",
	Long: `Run all three stages against an OCR text file: parse the timeline,
analyse its entries and synthesise key insights. Each stage stores its
result, so a failed later stage can be retried with 'protokoll analyze'
or 'protokoll insights'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	addParseFlags(pipelineCmd)
	pipelineCmd.Flags().Int("concurrency", 0, "batches analysed in parallel (default from settings)")
	pipelineCmd.Flags().Bool("tui", false, "show a live progress view")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}
	opts, err := parseOptionsFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	useTUI, _ := cmd.Flags().GetBool("tui") //nolint:errcheck // flag is registered above

	run, err := processFile(cmd, args[0], opts, concurrency, useTUI)
	if run == nil {
		return err
	}
	if jsonOutput {
		if jerr := writeJSON(cmd, run); jerr != nil {
			return jerr
		}
		return err
	}
	if run.Insights != nil {
		cmd.Println()
		writeInsights(cmd.OutOrStdout(), run.Insights)
	}
	return err
}

// processFile runs parse, analyze and insights and returns the stored run.
// An aborted parse or analysis stops the pipeline; too few analysed
// entries only skip the insights stage.
func processFile(
	cmd *cobra.Command, path string, opts driving.ParseOptions, concurrency int, useTUI bool,
) (*domain.Run, error) {
	logger.Section("Parse")
	run, err := parseFile(cmd, path, opts, useTUI)
	if run == nil || err != nil {
		if run != nil && !jsonOutput {
			printRunResult(cmd, run)
		}
		return run, err
	}
	if !jsonOutput {
		printRunResult(cmd, run)
	}

	logger.Section("Analyze")
	report, err := analyzeRun(cmd, run.ID, concurrency, useTUI)
	if report != nil && !jsonOutput {
		printReport(cmd, report)
	}
	if err != nil {
		return run, err
	}

	logger.Section("Insights")
	if _, err := runService.Insights(cmd.Context(), run.ID); err != nil {
		if !errors.Is(err, domain.ErrInsufficientData) {
			return run, err
		}
		cmd.PrintErrln(domain.UserMessage(err) + " Skipping insights.")
	}

	return runService.Get(cmd.Context(), run.ID)
}
