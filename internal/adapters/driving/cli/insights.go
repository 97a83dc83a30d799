package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

var insightsCmd = &cobra.Command{
	Use:   "insights <run-id>",
	Short: "Synthesise the key insights of an analysed run",
	Long: fmt.Sprintf(`Ask the model for a summary and the %d most important insights of an
analysed run. Needs at least %d analysed question/answer entries.

Use --show to print stored insights without calling the model.`,
		domain.InsightCount, domain.MinEnrichedForInsights),
	Args: cobra.ExactArgs(1),
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().Bool("show", false, "print stored insights instead of generating new ones")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}
	show, err := cmd.Flags().GetBool("show")
	if err != nil {
		return err
	}

	var insights *domain.KeyInsights
	if show {
		run, gerr := runService.Get(cmd.Context(), args[0])
		if gerr != nil {
			return gerr
		}
		if run.Insights == nil {
			return fmt.Errorf("run %s has no insights yet; run 'protokoll insights %s'", args[0], args[0])
		}
		insights = run.Insights
	} else {
		cmd.PrintErrln("Synthesising key insights...")
		insights, err = runService.Insights(cmd.Context(), args[0])
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return writeJSON(cmd, insights)
	}
	writeInsights(cmd.OutOrStdout(), insights)
	return nil
}

// writeInsights renders insights as Markdown.
func writeInsights(w io.Writer, k *domain.KeyInsights) {
	fmt.Fprintf(w, "## Summary\n\n%s\n\n## Key insights\n", strings.TrimSpace(k.Summary))
	for i, in := range k.Insights {
		fmt.Fprintf(w, "\n### %d. %s\n\n%s\n", i+1, in.Title, strings.TrimSpace(in.Description))
		if in.RawReferences != "" {
			fmt.Fprintf(w, "\nReferences: %s\n", in.RawReferences)
		}
	}
}
