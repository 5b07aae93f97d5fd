package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type DocumentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId string          `gorm:"type:varchar(64);not null;index"`
	ChunkIndex int             `gorm:"default:0"` // 0-based, orders chunks within a document
	Text       string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensionality
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
