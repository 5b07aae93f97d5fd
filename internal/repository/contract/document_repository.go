package contract

import (
	"context"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/repository/specification"
)

type DocumentRepository interface {
	Upsert(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
