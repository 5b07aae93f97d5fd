package rag

import (
	"context"
	"fmt"
	"time"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/internal/repository/unitofwork"
	"learning-hub-be/pkg/cache"
	"learning-hub-be/pkg/embedding"
	"learning-hub-be/pkg/llm"
	"learning-hub-be/pkg/rag/aggregate"
	"learning-hub-be/pkg/rag/search"
	"learning-hub-be/pkg/rag/summary"
	"learning-hub-be/pkg/utils"

	"github.com/google/uuid"
)

const queryCacheNamespace = "query"

// DocumentCatalog hydrates ranked document ids into full catalog records
// for display.
type DocumentCatalog interface {
	GetDocument(ctx context.Context, id string) (*entity.Document, error)
}

// Config carries the retrieval knobs of the index.
type Config struct {
	ChunkSize            int
	ChunkOverlap         int
	TopK                 int
	MaxDocumentSummaries int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:            1400,
		ChunkOverlap:         200,
		TopK:                 10,
		MaxDocumentSummaries: 3,
	}
}

// Index ties retrieval, aggregation, summarization, the result cache and
// ingestion together. Collaborating clients are injected once and reused.
type Index struct {
	retriever         *search.Retriever
	aggregator        *aggregate.Aggregator
	generator         *summary.Generator
	catalog           DocumentCatalog
	queryCache        *cache.RedisCache
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	config            Config
	logger            logger.ILogger
}

func NewIndex(
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	safePrompt bool,
	uowFactory unitofwork.RepositoryFactory,
	catalog DocumentCatalog,
	queryCache *cache.RedisCache,
	config Config,
	log logger.ILogger,
) *Index {
	resolver := newRepositoryResolver(uowFactory)
	chunkRepo := uowFactory.NewUnitOfWork(context.Background()).DocumentChunkRepository()

	return &Index{
		retriever:         search.NewRetriever(embeddingProvider, chunkRepo, config.TopK, log),
		aggregator:        aggregate.NewAggregator(resolver, log),
		generator:         summary.NewGenerator(llmProvider, safePrompt, log),
		catalog:           catalog,
		queryCache:        queryCache,
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		config:            config,
		logger:            log,
	}
}

// Query returns the full SearchResult for a query string: cached when
// available, computed through the full retrieval, aggregation and
// summarization pipeline on a miss. The raw query string is the cache key;
// no case or whitespace normalization is applied.
func (i *Index) Query(ctx context.Context, query string) (entity.SearchResult, error) {
	return cache.Cached(
		ctx,
		i.queryCache,
		queryCacheNamespace,
		[]string{query},
		cache.JSONCodec[entity.SearchResult](),
		func(ctx context.Context) (entity.SearchResult, error) {
			return i.uncachedQuery(ctx, query)
		},
	)
}

// GetCachedQueryResponse is a read-only peek at the query cache, used to
// avoid recomputation from a different code path (page render vs
// background task). Returns nil on a miss.
func (i *Index) GetCachedQueryResponse(ctx context.Context, query string) (*entity.SearchResult, error) {
	return cache.GetIfCached(
		ctx,
		i.queryCache,
		queryCacheNamespace,
		[]string{query},
		cache.JSONCodec[entity.SearchResult](),
	)
}

// GetDocumentsForQuery performs retrieval and aggregation but skips
// summarization, so a document list can render immediately while
// summarization runs in the background. Never cached.
func (i *Index) GetDocumentsForQuery(ctx context.Context, query string) ([]*entity.Document, error) {
	aggregates, err := i.queryDocs(ctx, query)
	if err != nil {
		return nil, err
	}

	documents := make([]*entity.Document, 0, len(aggregates))
	for _, agg := range aggregates {
		document, err := i.catalog.GetDocument(ctx, agg.DocumentId)
		if err != nil {
			return nil, err
		}
		if document != nil {
			documents = append(documents, document)
		}
	}
	return documents, nil
}

// GetRelatedDocuments reuses GetDocumentsForQuery with the seed document's
// own embeddable text as the query, filtering out the seed itself.
// Derived, not separately cached.
func (i *Index) GetRelatedDocuments(ctx context.Context, seed entity.Document, limit int) ([]*entity.Document, error) {
	documents, err := i.GetDocumentsForQuery(ctx, seed.EmbeddableText())
	if err != nil {
		return nil, err
	}

	related := make([]*entity.Document, 0, len(documents))
	for _, document := range documents {
		if document.Id == seed.Id {
			continue
		}
		related = append(related, document)
		if limit > 0 && len(related) >= limit {
			break
		}
	}
	return related, nil
}

// IndexDocuments splits each enriched document into overlapping chunks,
// embeds them, and replaces the document's prior chunks transactionally:
// a document's chunks either all land or none do. Idempotent by document
// id. Previously cached SearchResults are deliberately left untouched.
func (i *Index) IndexDocuments(ctx context.Context, documents []entity.DocumentWithText) error {
	for _, document := range documents {
		if err := i.indexDocument(ctx, document); err != nil {
			return fmt.Errorf("index document %s: %w", document.Id, err)
		}
	}
	return nil
}

func (i *Index) indexDocument(ctx context.Context, document entity.DocumentWithText) error {
	chunks := utils.SplitText(document.EmbeddableText(), i.config.ChunkSize, i.config.ChunkOverlap)

	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	for idx, text := range chunks {
		res, err := i.embeddingProvider.Generate(text, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", idx, err)
		}
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			ChunkIndex: idx,
			Text:       text,
			Embedding:  res.Embedding.Values,
			CreatedAt:  time.Now(),
		})
	}

	uow := i.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Upsert(ctx, &document.Document); err != nil {
		return fmt.Errorf("upsert catalog record: %w", err)
	}

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
		return fmt.Errorf("create chunks: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	i.logger.Info("Index", "Document indexed", map[string]interface{}{
		"document_id": document.Id,
		"chunks":      len(newChunks),
	})
	return nil
}

func (i *Index) queryDocs(ctx context.Context, query string) ([]aggregate.DocumentAggregate, error) {
	matches, err := i.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	return i.aggregator.Aggregate(ctx, matches), nil
}

func (i *Index) uncachedQuery(ctx context.Context, query string) (entity.SearchResult, error) {
	aggregates, err := i.queryDocs(ctx, query)
	if err != nil {
		return entity.SearchResult{}, err
	}

	responses := i.generator.SummarizeDocuments(ctx, aggregates, query, i.config.MaxDocumentSummaries)

	topSentence, err := i.generator.SummarizeTop(ctx, responses, query)
	if err != nil {
		return entity.SearchResult{}, fmt.Errorf("top sentence generation: %w", err)
	}

	documents := make([]string, len(aggregates))
	for idx, agg := range aggregates {
		documents[idx] = agg.DocumentId
	}

	return entity.SearchResult{
		Query:     query,
		Documents: documents,
		Summary:   i.generator.MakeSummary(topSentence, responses),
	}, nil
}
