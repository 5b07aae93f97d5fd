package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is a bounded slice of a document's embeddable text, the
// atomic unit stored in the embedding index. Each chunk keeps a
// back-reference to its owning document.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId string
	ChunkIndex int
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
