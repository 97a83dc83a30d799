package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored runs",
	Long:  `List, show, export or delete stored runs.`,
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the timeline of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var runsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored runs",
	RunE:  runRunsReset,
}

var (
	exportOutput string
	showEnriched bool
	resetYes     bool
)

func init() {
	runsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	runsShowCmd.Flags().BoolVar(&showEnriched, "enriched", false, "only show analysed entries")
	runsResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsResetCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	runs, err := runService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if jsonOutput {
		return writeJSON(cmd, runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs stored. Parse a protocol with 'protokoll parse <file>'.")
		return nil
	}

	cmd.Printf("%-36s  %-8s  %-9s  %7s  %8s  %-8s  %s\n",
		"ID", "PROTOCOL", "STATE", "ENTRIES", "ANALYSED", "INSIGHTS", "CREATED")
	for _, r := range runs {
		insights := "no"
		if r.HasInsight {
			insights = "yes"
		}
		cmd.Printf("%-36s  %-8s  %-9s  %7d  %8d  %-8s  %s\n",
			r.ID, r.ProtocolID, r.State, r.Entries, r.Enriched, insights, r.CreatedAt.Local().Format(time.DateTime))
	}
	cmd.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, run)
	}

	cmd.Printf("Run %s\n", run.ID)
	cmd.Printf("  Protocol: %s\n", run.ProtocolID)
	if run.Source != "" {
		cmd.Printf("  Source:   %s\n", run.Source)
	}
	cmd.Printf("  State:    %s\n", run.State)
	cmd.Printf("  Entries:  %d (%d analysed)\n", len(run.Entries), run.EnrichedCount())
	cmd.Println()

	for _, e := range run.Entries {
		if showEnriched && !e.IsEnriched() {
			continue
		}
		printEntry(cmd, e)
	}

	if run.Insights != nil && !showEnriched {
		cmd.Println()
		writeInsights(cmd.OutOrStdout(), run.Insights)
	}
	return nil
}

func printEntry(cmd *cobra.Command, e domain.Entry) {
	cmd.Printf("#%d [%s]\n", e.ID, e.SourceLocator)
	if e.IsNote() {
		cmd.Printf("  Note: %s\n\n", *e.Note)
		return
	}
	cmd.Printf("  Q (%s): %s\n", domain.Deref(e.Questioner, "?"), domain.Deref(e.Question, ""))
	cmd.Printf("  A (%s): %s\n", domain.Deref(e.Witness, "?"), domain.Deref(e.Answer, ""))
	if e.IsEnriched() {
		cmd.Printf("  Core statement: %s\n", *e.CoreStatement)
		cmd.Printf("  Categories:     %s\n", domain.Deref(e.CategoryTags, ""))
		if e.Justification != nil {
			cmd.Printf("  Justification:  %s\n", *e.Justification)
		}
	}
	cmd.Println()
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return writeJSON(cmd, run)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}
	defer f.Close()

	if err := encodeJSON(f, run); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	cmd.PrintErrf("Exported run %s to %s\n", run.ID, exportOutput)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	if err := runService.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}

func runRunsReset(cmd *cobra.Command, _ []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	if !resetYes {
		cmd.Print("Delete ALL stored runs? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := runService.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset runs: %w", err)
	}
	cmd.Println("All runs deleted.")
	return nil
}
