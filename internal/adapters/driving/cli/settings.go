package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/protokoll/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM and embedding providers and the pipeline
tuning. Settings are stored in ~/.protokoll/config.toml.

A Gemini API key can also be supplied through PROTOKOLL_API_KEY or
GEMINI_API_KEY (or a .env file); keys from the environment are never
written to disk.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the model that parses protocols, analyses entries and synthesises insights.`,
	RunE:  runSettingsLLM,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to pick the corpus categories most
relevant to each analysis batch. Without one, every batch sees the full corpus.`,
	RunE: runSettingsEmbedding,
}

var settingsPipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Tune chunking and analysis",
	Long: `Set pipeline tuning values. With flags the values are applied directly;
without flags you are prompted for each value.

Examples:
  protokoll settings pipeline --pages-per-chunk 20
  protokoll settings pipeline --concurrency 4 --speaker-breaks=false`,
	RunE: runSettingsPipeline,
}

func init() {
	settingsLLMCmd.Flags().Float64("rps", 0, "maximum model requests per second (0 = unlimited)")

	f := settingsPipelineCmd.Flags()
	f.Int("pages-per-chunk", 0, "pages sent per parse call")
	f.Int("batch-size", 0, "maximum entries per analysis batch")
	f.Bool("speaker-breaks", true, "start a new analysis batch when the questioner changes")
	f.Int("concurrency", 0, "analysis batches in flight")
	f.Int("top-k", 0, "corpus items retrieved per batch")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsPipelineCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model, settings.LLM.BaseURL, settings.LLM.APIKey,
		settings.LLM.IsConfigured())
	if settings.LLM.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/s: %g\n", settings.LLM.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.BaseURL,
		settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  Pages per chunk: %d\n", p.PagesPerChunk)
	cmd.Printf("  Batch size: %d\n", p.MaxEntriesPerBatch)
	cmd.Printf("  Speaker breaks: %t\n", p.SpeakerBreaks)
	cmd.Printf("  Concurrency: %d\n", p.AnalysisConcurrency)
	cmd.Printf("  Top-k corpus items: %d\n", p.TopK)
	cmd.Println()

	if corpusService != nil {
		path := corpusService.Path()
		if path == "" {
			path = "(built-in)"
		}
		cmd.Printf("Corpus: %s\n", path)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %s\n", domain.UserMessage(err))
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Println("  API Key: (not set)")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	if !cmd.Flags().Changed("rps") {
		return nil
	}
	rps, err := cmd.Flags().GetFloat64("rps")
	if err != nil {
		return err
	}
	if rps < 0 {
		return fmt.Errorf("--rps must not be negative, got %g", rps)
	}
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	settings.LLM.RequestsPerSecond = rps
	return settingsService.Save(settings)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

// providerChoice prompts for a provider, model and API key.
func providerChoice(
	cmd *cobra.Command,
	reader *bufio.Reader,
	kind string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (provider domain.AIProvider, model, apiKey string, err error) {
	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider = providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model = readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if provider.RequiresAPIKey() {
		if provider == domain.AIProviderGemini {
			cmd.Print("Enter API key (empty to use PROTOKOLL_API_KEY / GEMINI_API_KEY): ")
		} else {
			cmd.Print("Enter API key: ")
		}
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" && provider != domain.AIProviderGemini {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := providerChoice(cmd, reader, "Embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	provider, model, apiKey, err := providerChoice(cmd, reader, "LLM",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsPipeline(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	p := settings.Pipeline

	if anyChanged(cmd, "pages-per-chunk", "batch-size", "speaker-breaks", "concurrency", "top-k") {
		if err := pipelineFromFlags(cmd, &p); err != nil {
			return err
		}
	} else {
		reader := bufio.NewReader(cmd.InOrStdin())
		p.PagesPerChunk = promptInt(cmd, reader, "Pages per chunk", p.PagesPerChunk)
		p.MaxEntriesPerBatch = promptInt(cmd, reader, "Entries per analysis batch", p.MaxEntriesPerBatch)
		p.SpeakerBreaks = promptBool(cmd, reader, "Break batches at speaker changes", p.SpeakerBreaks)
		p.AnalysisConcurrency = promptInt(cmd, reader, "Concurrent analysis batches", p.AnalysisConcurrency)
		p.TopK = promptInt(cmd, reader, "Corpus items per batch", p.TopK)
	}

	if err := settingsService.SetPipeline(p); err != nil {
		return fmt.Errorf("failed to save pipeline settings: %w", err)
	}
	cmd.Println("Pipeline settings saved.")
	return nil
}

func pipelineFromFlags(cmd *cobra.Command, p *domain.PipelineSettings) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"pages-per-chunk", &p.PagesPerChunk},
		{"batch-size", &p.MaxEntriesPerBatch},
		{"concurrency", &p.AnalysisConcurrency},
		{"top-k", &p.TopK},
	}
	for _, f := range ints {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetInt(f.name)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if cmd.Flags().Changed("speaker-breaks") {
		v, err := cmd.Flags().GetBool("speaker-breaks")
		if err != nil {
			return err
		}
		p.SpeakerBreaks = v
	}
	return nil
}

// Helper functions.

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func promptInt(cmd *cobra.Command, reader *bufio.Reader, label string, current int) int {
	cmd.Printf("%s [%d]: ", label, current)
	v, err := strconv.Atoi(readLine(reader))
	if err != nil || v < 1 {
		return current
	}
	return v
}

func promptBool(cmd *cobra.Command, reader *bufio.Reader, label string, current bool) bool {
	hint := "y/N"
	if current {
		hint = "Y/n"
	}
	cmd.Printf("%s [%s]: ", label, hint)
	switch strings.ToLower(readLine(reader)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return current
	}
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal and falls back
// to a plain line read otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
