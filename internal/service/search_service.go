package service

import (
	"context"
	"errors"

	"learning-hub-be/internal/catalog"
	"learning-hub-be/internal/dto"
	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/pkg/rag"
)

// ErrDocumentNotFound is returned when a related-documents lookup names an
// unknown document id.
var ErrDocumentNotFound = errors.New("document not found")

type ISearchService interface {
	Query(ctx context.Context, query string) (*dto.QueryResponse, error)
	RelatedDocuments(ctx context.Context, documentId string, limit int) (*dto.RelatedDocumentsResponse, error)
}

type searchService struct {
	index      *rag.Index
	catalog    *catalog.Catalog
	queryTasks IQueryTaskService
	logger     logger.ILogger
}

func NewSearchService(
	index *rag.Index,
	cat *catalog.Catalog,
	queryTasks IQueryTaskService,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		index:      index,
		catalog:    cat,
		queryTasks: queryTasks,
		logger:     log,
	}
}

// Query serves a cached result immediately when one exists. On a miss it
// returns the ranked documents right away and schedules summarization in
// the background; the summary is delivered over the websocket channel
// named by the returned task id.
func (s *searchService) Query(ctx context.Context, query string) (*dto.QueryResponse, error) {
	cached, err := s.index.GetCachedQueryResponse(ctx, query)
	if err != nil {
		return nil, err
	}

	if cached != nil {
		documents, err := s.catalog.GetDocuments(ctx, cached.Documents)
		if err != nil {
			return nil, err
		}
		return &dto.QueryResponse{
			Query:     query,
			Documents: dto.ToDocumentResponses(documents),
			Summary:   &cached.Summary,
		}, nil
	}

	documents, err := s.index.GetDocumentsForQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	taskId, err := s.queryTasks.Enqueue(ctx, query)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SearchService", "Query scheduled", map[string]interface{}{
		"task_id":   taskId,
		"documents": len(documents),
	})

	return &dto.QueryResponse{
		Query:     query,
		Documents: dto.ToDocumentResponses(documents),
		TaskId:    taskId,
	}, nil
}

func (s *searchService) RelatedDocuments(ctx context.Context, documentId string, limit int) (*dto.RelatedDocumentsResponse, error) {
	seed, err := s.catalog.GetDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if seed == nil {
		return nil, ErrDocumentNotFound
	}

	related, err := s.index.GetRelatedDocuments(ctx, *seed, limit)
	if err != nil {
		return nil, err
	}

	return &dto.RelatedDocumentsResponse{
		DocumentId: documentId,
		Related:    dto.ToDocumentResponses(related),
	}, nil
}
