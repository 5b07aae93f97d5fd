package contract

import (
	"context"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk is one similarity-search hit: a chunk plus its cosine
// similarity against the query vector.
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	GetChunk(ctx context.Context, id uuid.UUID) (*entity.DocumentChunk, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredChunk, error)
}
