package services

import (
	"context"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService exposes the knowledge corpus to the CLI and MCP server.
type CorpusService struct {
	source driven.CorpusSource
}

// NewCorpusService creates a corpus service.
func NewCorpusService(source driven.CorpusSource) *CorpusService {
	return &CorpusService{source: source}
}

// Items returns the corpus.
func (s *CorpusService) Items(ctx context.Context) ([]domain.CorpusItem, error) {
	return s.source.Items(ctx)
}

// Path returns where the corpus is read from, or "" for the built-in one.
func (s *CorpusService) Path() string {
	return s.source.Path()
}
