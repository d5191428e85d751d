package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	simplifiedMinWordLen = 3
	simplifiedMaxWords   = 5
	minSimilarity        = 0.35
)

// Embedder computes a vector embedding for a piece of text. Embeddings are
// opaque to the retriever; it only measures cosine distance between them.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever produces ranked supporting context for a query via a primary
// similarity search with two degrading fallbacks: a simplified re-query,
// then plain recency.
type Retriever struct {
	repo     domain.KnowledgeRepository
	embedder Embedder
}

// NewRetriever creates a new retriever
func NewRetriever(repo domain.KnowledgeRepository, embedder Embedder) *Retriever {
	return &Retriever{repo: repo, embedder: embedder}
}

// Retrieve returns up to k chunks ordered by decreasing relevance. Errors in
// the similarity steps degrade to the next strategy; only a failure of the
// final recency lookup is surfaced, and callers may still proceed with zero
// context.
func (r *Retriever) Retrieve(ctx context.Context, tenantID uuid.UUID, query string, k int) ([]domain.KnowledgeChunk, error) {
	if k <= 0 {
		k = 3
	}

	chunks, err := r.similaritySearch(ctx, tenantID, query, k)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("similarity search failed, degrading")
	}
	if len(chunks) > 0 {
		return chunks, nil
	}

	if simplified := SimplifyQuery(query); simplified != "" && simplified != query {
		chunks, err = r.similaritySearch(ctx, tenantID, simplified, k)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("simplified search failed, degrading")
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
	}

	recent, err := r.repo.ListRecent(ctx, tenantID, k)
	if err != nil {
		return nil, fmt.Errorf("recency fallback failed: %w", err)
	}

	return recent, nil
}

// similaritySearch ranks the tenant's chunks by cosine similarity to the
// query embedding, keeping only matches above the floor.
func (r *Retriever) similaritySearch(ctx context.Context, tenantID uuid.UUID, query string, k int) ([]domain.KnowledgeChunk, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := r.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	type scored struct {
		chunk domain.KnowledgeChunk
		score float64
	}

	var matches []scored
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		score := CosineSimilarity(queryEmbedding, c.Embedding)
		if score >= minSimilarity {
			matches = append(matches, scored{chunk: c, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	result := make([]domain.KnowledgeChunk, len(matches))
	for i, m := range matches {
		result[i] = m.chunk
	}

	return result, nil
}

// SimplifyQuery keeps only words longer than three characters, capped at
// five words, for a looser second search pass.
func SimplifyQuery(query string) string {
	var kept []string
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) > simplifiedMinWordLen {
			kept = append(kept, word)
		}
		if len(kept) == simplifiedMaxWords {
			break
		}
	}
	return strings.Join(kept, " ")
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
