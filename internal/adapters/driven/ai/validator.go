package ai

import (
	"fmt"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator pings configured providers before settings are accepted.
// Unconfigured providers pass; a provider that does not answer fails with
// domain.ErrLLMUnavailable or domain.ErrEmbeddingUnavailable.
type ConfigValidator struct {
	llm       func(*domain.LLMSettings) error
	embedding func(*domain.EmbeddingSettings) error
}

// NewConfigValidator creates a validator backed by the provider factories.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		llm:       ValidateLLMConfig,
		embedding: ValidateEmbeddingConfig,
	}
}

// ValidateLLM reports whether the LLM provider in config is reachable.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if err := v.llm(config); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrLLMUnavailable, config.Provider, err)
	}
	return nil
}

// ValidateEmbedding reports whether the embedding provider in config is reachable.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if err := v.embedding(config); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, config.Provider, err)
	}
	return nil
}
