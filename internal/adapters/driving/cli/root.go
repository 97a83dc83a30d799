// Package cli implements the protokoll command line interface.
// It is a driving adapter: commands call core services through the
// driving ports set by the composition root.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root.
var (
	runService      driving.RunService
	settingsService driving.SettingsService
	corpusService   driving.CorpusService
)

var (
	verbose    bool
	jsonOutput bool
)

var errRunServiceMissing = errors.New("run service not configured")

var rootCmd = &cobra.Command{
	Use:   "protokoll",
	Short: "Turn OCR'd hearing protocols into analysed timelines",
	Long: `protokoll segments OCR text of parliamentary inquiry protocols into a
timeline of questions, answers and procedural notes, enriches every answer
with a core statement and knowledge-corpus categories, and synthesises the
key insights of a hearing.

Configure a model first with 'protokoll settings llm', then run
'protokoll pipeline <file.txt>'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// Services holds the driving ports used by the commands.
type Services struct {
	Runs     driving.RunService
	Settings driving.SettingsService
	Corpus   driving.CorpusService
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	runService = s.Runs
	settingsService = s.Settings
	corpusService = s.Corpus
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and prints a readable error on failure.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln("Error: " + domain.UserMessage(err))
	}
	return err
}

func requireRunService() error {
	if runService == nil {
		return errRunServiceMissing
	}
	return nil
}
