// Command protokoll turns OCR'd hearing protocols into analysed timelines.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/protokoll/internal/adapters/driven/ai"
	"github.com/custodia-labs/protokoll/internal/adapters/driven/config/file"
	"github.com/custodia-labs/protokoll/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/cli"
	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
	"github.com/custodia-labs/protokoll/internal/core/services"
	"github.com/custodia-labs/protokoll/internal/logger"
	"github.com/custodia-labs/protokoll/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is fine; the environment may already carry keys.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := wire()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+domain.UserMessage(err))
		return 1
	}
	defer cleanup()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// wire builds the services and hands them to the CLI.
func wire() (func(), error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("locating config directory: %w", err)
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}
	corpus, err := file.NewCorpusStore(filepath.Join(dir, "corpus.toml"))
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	aiServices, err := ai.Init(settings)
	if err != nil {
		// Commands that do not call the model still work.
		logger.Warn("AI services unavailable: %v", err)
		aiServices = &ai.InitResult{}
	}
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	// Stages stay untyped nil without a model so the run service reports
	// domain.ErrLLMUnavailable.
	var (
		assembler   driving.TimelineAssembler
		analyzer    driving.EntryAnalyzer
		synthesizer driving.InsightsSynthesizer
	)
	if model := aiServices.LLMService; model != nil {
		modelID := model.ModelName()
		invoker := services.NewModelInvoker(model,
			services.WithRequestsPerSecond(settings.LLM.RequestsPerSecond))
		corrector := services.NewStructuredCorrector(invoker, prompts)
		pipeline := settings.Pipeline.Normalised()

		parser := services.NewEntryParser(corrector, prompts, modelID)
		assembler = services.NewTimelineAssembler(parser, chunker.FromSettings(pipeline))
		index := services.NewCorpusIndex(corpus, aiServices.EmbeddingService)
		analyzer = services.NewEntryAnalyzer(corrector, prompts, index, modelID, pipeline)
		synthesizer = services.NewInsightsSynthesizer(corrector, prompts, modelID)
	}

	cli.SetServices(cli.Services{
		Runs:     services.NewRunService(store, assembler, analyzer, synthesizer),
		Settings: settingsService,
		Corpus:   services.NewCorpusService(corpus),
	})

	return func() {
		aiServices.Close()
		if err := store.Close(); err != nil {
			logger.Warn("closing run store: %v", err)
		}
	}, nil
}
