package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Show the knowledge corpus",
	Long: `List the knowledge corpus that entries are categorised against.

The corpus is read from ~/.protokoll/corpus.toml; a built-in corpus is
written there on first use and can be edited freely.`,
	RunE: runCorpus,
}

var corpusPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print where the corpus is read from",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if corpusService == nil {
			return errors.New("corpus service not configured")
		}
		path := corpusService.Path()
		if path == "" {
			path = "(built-in)"
		}
		cmd.Println(path)
		return nil
	},
}

func init() {
	corpusCmd.AddCommand(corpusPathCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpus(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	items, err := corpusService.Items(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if jsonOutput {
		return writeJSON(cmd, items)
	}

	category := ""
	for _, item := range items {
		if item.Category != category {
			category = item.Category
			cmd.Printf("\n%s\n", category)
		}
		cmd.Printf("  %-5s %s\n", item.ID, item.Description)
	}
	cmd.Printf("\nTotal: %d items\n", len(items))
	return nil
}
