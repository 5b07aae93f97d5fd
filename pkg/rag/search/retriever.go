package search

import (
	"context"
	"fmt"

	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/internal/repository/contract"
	"learning-hub-be/pkg/embedding"

	"github.com/google/uuid"
)

// Match is one chunk hit returned by a similarity search. Ephemeral,
// produced per query.
type Match struct {
	ChunkId    uuid.UUID
	DocumentId string
	Text       string
	Score      float64
}

// Retriever embeds a query and runs a topK similarity search against the
// chunk index.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	chunks            contract.DocumentChunkRepository
	topK              int
	logger            logger.ILogger
}

func NewRetriever(
	embeddingProvider embedding.EmbeddingProvider,
	chunks contract.DocumentChunkRepository,
	topK int,
	log logger.ILogger,
) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		embeddingProvider: embeddingProvider,
		chunks:            chunks,
		topK:              topK,
		logger:            log,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Match, error) {
	embeddingRes, err := r.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := r.chunks.SearchSimilarWithScore(ctx, embeddingRes.Embedding.Values, r.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	r.logger.Debug("Retriever", "Similarity search finished", map[string]interface{}{
		"query_length": len(query),
		"matches":      len(scored),
	})

	matches := make([]Match, len(scored))
	for i, s := range scored {
		matches[i] = Match{
			ChunkId:    s.Chunk.Id,
			DocumentId: s.Chunk.DocumentId,
			Text:       s.Chunk.Text,
			Score:      s.Similarity,
		}
	}
	return matches, nil
}
