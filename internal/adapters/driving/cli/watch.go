package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/connectors/filesystem"
	"github.com/custodia-labs/protokoll/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process OCR text files dropped into a directory",
	Long: `Watch a directory and parse every .txt file that appears in it. With
--analyze the full pipeline runs for each file (parse, analyse, insights).

Each file is processed once per session. Use --existing to also process
files already in the directory. Stop with ctrl+c.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addParseFlags(watchCmd)
	watchCmd.Flags().Bool("analyze", false, "run analysis and insights after parsing")
	watchCmd.Flags().Bool("existing", false, "process files already in the directory")
	watchCmd.Flags().Int("concurrency", 0, "batches analysed in parallel (default from settings)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireRunService(); err != nil {
		return err
	}

	flags := cmd.Flags()
	analyze, _ := flags.GetBool("analyze")        //nolint:errcheck // registered above
	existing, _ := flags.GetBool("existing")      //nolint:errcheck // registered above
	concurrency, _ := flags.GetInt("concurrency") //nolint:errcheck // registered above

	inbox := filesystem.New(args[0])
	if err := inbox.Validate(); err != nil {
		return err
	}

	processed := make(map[string]bool)
	handle := func(path string) {
		if processed[path] {
			return
		}
		processed[path] = true

		opts, err := parseOptionsFromFlags(cmd, path)
		if err != nil {
			cmd.PrintErrln("Error: " + err.Error())
			return
		}

		cmd.Printf("\n==> %s\n", path)
		if analyze {
			_, err = processFile(cmd, path, opts, concurrency, false)
		} else {
			var run *domain.Run
			run, err = parseFile(cmd, path, opts, false)
			if run != nil {
				printRunResult(cmd, run)
			}
		}
		if err != nil {
			cmd.PrintErrln("Error: " + domain.UserMessage(err))
		}
	}

	if existing {
		paths, err := inbox.List()
		if err != nil {
			return err
		}
		for _, p := range paths {
			if cmd.Context().Err() != nil {
				return nil
			}
			handle(p)
		}
	}

	paths, errs, err := inbox.Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for protocol files. Press ctrl+c to stop.\n", inbox.RootPath())

	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return nil
			}
			handle(p)
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			cmd.PrintErrln(fmt.Sprintf("watch error: %v", werr))
		case <-cmd.Context().Done():
			if errors.Is(cmd.Context().Err(), context.Canceled) {
				return nil
			}
			return cmd.Context().Err()
		}
	}
}
