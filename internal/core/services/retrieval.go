package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
	"github.com/custodia-labs/protokoll/internal/logger"
)

// corpusEmbedConcurrency bounds concurrent document embedding calls.
const corpusEmbedConcurrency = 4

// CorpusIndex retrieves the corpus items most similar to a query.
//
// Document embeddings are computed on first use and cached for the life
// of the index. A failed computation is not cached, so the next call
// retries it. Without an embedding service, retrieval returns the whole
// corpus.
type CorpusIndex struct {
	source   driven.CorpusSource
	embedder driven.EmbeddingService
	log      logger.Scoped

	mu      sync.Mutex
	items   []domain.CorpusItem
	vectors [][]float32
}

// NewCorpusIndex creates an index. embedder may be nil.
func NewCorpusIndex(source driven.CorpusSource, embedder driven.EmbeddingService) *CorpusIndex {
	return &CorpusIndex{
		source:   source,
		embedder: embedder,
		log:      logger.For("retrieval"),
	}
}

// HasEmbeddings reports whether retrieval ranks by similarity.
func (c *CorpusIndex) HasEmbeddings() bool {
	return c.embedder != nil
}

// Items returns the corpus items in corpus order.
func (c *CorpusIndex) Items(ctx context.Context) ([]domain.CorpusItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadItemsLocked(ctx); err != nil {
		return nil, err
	}
	return append([]domain.CorpusItem(nil), c.items...), nil
}

// Retrieve returns the k items most similar to query, best first.
// Ties keep corpus order.
func (c *CorpusIndex) Retrieve(ctx context.Context, query string, k int) ([]domain.CorpusItem, error) {
	if c.embedder == nil {
		return c.Items(ctx)
	}

	items, vectors, err := c.embeddings(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || k <= 0 {
		return nil, nil
	}

	qv, err := c.embedder.Embed(ctx, query, driven.EmbedTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ranked := make([]int, len(items))
	scores := make([]float64, len(items))
	for i := range items {
		ranked[i] = i
		scores[i] = CosineSimilarity(qv, vectors[i])
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})

	k = min(k, len(items))
	out := make([]domain.CorpusItem, k)
	for i := 0; i < k; i++ {
		out[i] = items[ranked[i]]
	}
	return out, nil
}

// embeddings returns the items with their cached document vectors,
// computing them on first use.
func (c *CorpusIndex) embeddings(ctx context.Context) ([]domain.CorpusItem, [][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vectors != nil {
		return c.items, c.vectors, nil
	}
	if err := c.loadItemsLocked(ctx); err != nil {
		return nil, nil, err
	}

	c.log.Info("embedding %d corpus items", len(c.items))
	vectors, err := RunBounded(ctx, c.items,
		func(ctx context.Context, item domain.CorpusItem, _ int) ([]float32, error) {
			v, err := c.embedder.Embed(ctx, item.EmbeddingText(), driven.EmbedTaskDocument)
			if err != nil {
				return nil, fmt.Errorf("embed corpus item %s: %w", item.ID, err)
			}
			return v, nil
		}, corpusEmbedConcurrency, nil)
	if err != nil {
		return nil, nil, err
	}

	c.vectors = vectors
	return c.items, c.vectors, nil
}

func (c *CorpusIndex) loadItemsLocked(ctx context.Context) error {
	if c.items != nil {
		return nil
	}
	items, err := c.source.Items(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	c.items = items
	return nil
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector is zero.
// Vectors of different length are compared over their common prefix.
func CosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FormatCorpusContext renders items for a prompt, one per line.
func FormatCorpusContext(items []domain.CorpusItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = item.ContextLine()
	}
	return strings.Join(lines, "\n")
}
