package unitofwork

import (
	"context"

	"learning-hub-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation, optionally
// inside a database transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
