package rag

import (
	"context"

	"learning-hub-be/internal/repository/specification"
	"learning-hub-be/internal/repository/unitofwork"
	"learning-hub-be/pkg/rag/search"
)

// repositoryResolver dereferences a match's chunk and verifies its parent
// document still exists in the catalog store. Either side missing yields ""
// so the aggregator drops the match.
type repositoryResolver struct {
	uowFactory unitofwork.RepositoryFactory
}

func newRepositoryResolver(uowFactory unitofwork.RepositoryFactory) *repositoryResolver {
	return &repositoryResolver{uowFactory: uowFactory}
}

func (r *repositoryResolver) ResolveDocumentId(ctx context.Context, match search.Match) (string, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	chunk, err := uow.DocumentChunkRepository().GetChunk(ctx, match.ChunkId)
	if err != nil {
		return "", err
	}
	if chunk == nil {
		return "", nil
	}

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: chunk.DocumentId})
	if err != nil {
		return "", err
	}
	if document == nil {
		return "", nil
	}

	return chunk.DocumentId, nil
}
