package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/repository/contract"
	"learning-hub-be/internal/repository/specification"
	"learning-hub-be/internal/repository/unitofwork"
	"learning-hub-be/pkg/cache"
	"learning-hub-be/pkg/embedding"
	"learning-hub-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeEmbedding struct {
	calls int
}

func (f *fakeEmbedding) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: []float32{float32(len(text)), 1, 0},
		},
	}, nil
}

type fakeLLM struct {
	calls  int
	failOn string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("model overloaded")
	}
	return "A grounded statement about the material.", nil
}

// memStore holds all persisted state and backs the fake repositories.
type memStore struct {
	documents map[string]*entity.Document
	chunks    map[uuid.UUID]*entity.DocumentChunk
	scored    []*contract.ScoredChunk // canned similarity results
	deletes   []string                // DeleteByDocumentId calls
}

func newMemStore() *memStore {
	return &memStore{
		documents: make(map[string]*entity.Document),
		chunks:    make(map[uuid.UUID]*entity.DocumentChunk),
	}
}

// addIndexedDocument seeds a document plus one scored chunk.
func (m *memStore) addIndexedDocument(doc entity.Document, chunkText string, similarity float64) *entity.DocumentChunk {
	d := doc
	m.documents[d.Id] = &d
	chunk := &entity.DocumentChunk{
		Id:         uuid.New(),
		DocumentId: d.Id,
		Text:       chunkText,
		CreatedAt:  time.Now(),
	}
	m.chunks[chunk.Id] = chunk
	m.scored = append(m.scored, &contract.ScoredChunk{Chunk: chunk, Similarity: similarity})
	return chunk
}

type memDocumentRepo struct{ store *memStore }

func (r *memDocumentRepo) Upsert(_ context.Context, document *entity.Document) error {
	d := *document
	r.store.documents[d.Id] = &d
	return nil
}

func (r *memDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return r.store.documents[byId.ID], nil
		}
	}
	return nil, nil
}

func (r *memDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	out := make([]*entity.Document, 0, len(r.store.documents))
	for _, d := range r.store.documents {
		out = append(out, d)
	}
	return out, nil
}

func (r *memDocumentRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.documents)), nil
}

type memChunkRepo struct{ store *memStore }

func (r *memChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	for _, c := range chunks {
		r.store.chunks[c.Id] = c
	}
	return nil
}

func (r *memChunkRepo) DeleteByDocumentId(_ context.Context, documentId string) error {
	r.store.deletes = append(r.store.deletes, documentId)
	for id, c := range r.store.chunks {
		if c.DocumentId == documentId {
			delete(r.store.chunks, id)
		}
	}
	return nil
}

func (r *memChunkRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *memChunkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	out := make([]*entity.DocumentChunk, 0, len(r.store.chunks))
	for _, c := range r.store.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (r *memChunkRepo) GetChunk(_ context.Context, id uuid.UUID) (*entity.DocumentChunk, error) {
	return r.store.chunks[id], nil
}

func (r *memChunkRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int) ([]*contract.ScoredChunk, error) {
	if limit > len(r.store.scored) {
		limit = len(r.store.scored)
	}
	return r.store.scored[:limit], nil
}

type memUnitOfWork struct{ store *memStore }

func (u *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                   { return nil }
func (u *memUnitOfWork) Rollback() error                 { return nil }
func (u *memUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &memDocumentRepo{store: u.store}
}
func (u *memUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &memChunkRepo{store: u.store}
}

type memFactory struct{ store *memStore }

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

var _ unitofwork.RepositoryFactory = (*memFactory)(nil)

type memCatalog struct{ store *memStore }

func (c *memCatalog) GetDocument(_ context.Context, id string) (*entity.Document, error) {
	return c.store.documents[id], nil
}

// mapBackend is an in-process stand-in for the redis client.
type mapBackend struct {
	store map[string]string
}

func newMapBackend() *mapBackend {
	return &mapBackend{store: make(map[string]string)}
}

func (b *mapBackend) Get(ctx context.Context, key string) *redis.StringCmd {
	val, ok := b.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (b *mapBackend) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	b.store[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func newTestIndex(store *memStore, model *fakeLLM) (*Index, *fakeEmbedding) {
	embedder := &fakeEmbedding{}
	factory := &memFactory{store: store}
	queryCache := cache.NewRedisCache(newMapBackend(), cache.Config{Prefix: "ddlh"})

	idx := NewIndex(
		embedder,
		model,
		false,
		factory,
		&memCatalog{store: store},
		queryCache,
		Config{ChunkSize: 50, ChunkOverlap: 10, TopK: 10, MaxDocumentSummaries: 3},
		nopLogger{},
	)
	return idx, embedder
}

func seedTwoDocuments(store *memStore) (entity.Document, entity.Document) {
	docA := entity.Document{Id: entity.LinkToId("https://example.org/a"), Link: "https://example.org/a", Title: "Alpha"}
	docB := entity.Document{Id: entity.LinkToId("https://example.org/b"), Link: "https://example.org/b", Title: "Beta"}
	store.addIndexedDocument(docA, "alpha material", 0.9)
	store.addIndexedDocument(docB, "beta material", 0.6)
	return docA, docB
}

func TestQueryProducesRankedResultAndCachesIt(t *testing.T) {
	store := newMemStore()
	docA, docB := seedTwoDocuments(store)
	model := &fakeLLM{}
	idx, _ := newTestIndex(store, model)

	result, err := idx.Query(context.Background(), "some theme")
	assert.NoError(t, err)

	assert.Equal(t, "some theme", result.Query)
	assert.Equal(t, []string{docA.Id, docB.Id}, result.Documents)
	assert.NotEmpty(t, result.Summary.TopSentence)
	assert.Len(t, result.Summary.DocumentSummaries, 2)

	// Second identical query is served from the cache without the model
	callsAfterFirst := model.calls
	again, err := idx.Query(context.Background(), "some theme")
	assert.NoError(t, err)
	assert.Equal(t, result, again)
	assert.Equal(t, callsAfterFirst, model.calls)
}

func TestGetCachedQueryResponsePeeksWithoutComputing(t *testing.T) {
	store := newMemStore()
	seedTwoDocuments(store)
	model := &fakeLLM{}
	idx, _ := newTestIndex(store, model)

	peek, err := idx.GetCachedQueryResponse(context.Background(), "unseen")
	assert.NoError(t, err)
	assert.Nil(t, peek)
	assert.Zero(t, model.calls)

	computed, err := idx.Query(context.Background(), "unseen")
	assert.NoError(t, err)

	peek, err = idx.GetCachedQueryResponse(context.Background(), "unseen")
	assert.NoError(t, err)
	if assert.NotNil(t, peek) {
		assert.Equal(t, computed, *peek)
	}
}

func TestQueryFailsWhenTopSentenceFails(t *testing.T) {
	store := newMemStore()
	seedTwoDocuments(store)
	// Per-document summaries contain the same passages, so fail only on
	// the top-sentence instruction wording.
	model := &fakeLLM{failOn: "one or two sentence description"}
	idx, _ := newTestIndex(store, model)

	_, err := idx.Query(context.Background(), "some theme")
	assert.Error(t, err)

	// Failed results are never cached
	peek, peekErr := idx.GetCachedQueryResponse(context.Background(), "some theme")
	assert.NoError(t, peekErr)
	assert.Nil(t, peek)
}

func TestGetDocumentsForQuerySkipsSummarization(t *testing.T) {
	store := newMemStore()
	docA, docB := seedTwoDocuments(store)
	model := &fakeLLM{}
	idx, _ := newTestIndex(store, model)

	documents, err := idx.GetDocumentsForQuery(context.Background(), "some theme")
	assert.NoError(t, err)

	assert.Len(t, documents, 2)
	assert.Equal(t, docA.Id, documents[0].Id)
	assert.Equal(t, docB.Id, documents[1].Id)
	assert.Zero(t, model.calls)
}

func TestGetRelatedDocumentsExcludesSeed(t *testing.T) {
	store := newMemStore()
	docA, docB := seedTwoDocuments(store)
	idx, _ := newTestIndex(store, &fakeLLM{})

	related, err := idx.GetRelatedDocuments(context.Background(), docA, 5)
	assert.NoError(t, err)

	assert.Len(t, related, 1)
	assert.Equal(t, docB.Id, related[0].Id)
}

func TestReingestingDocumentLeavesCachedResultsIntact(t *testing.T) {
	store := newMemStore()
	docA, _ := seedTwoDocuments(store)
	model := &fakeLLM{}
	idx, _ := newTestIndex(store, model)

	original, err := idx.Query(context.Background(), "some theme")
	assert.NoError(t, err)

	// New content for an already-indexed link; same id, fresh chunks.
	updated := entity.DocumentWithText{
		Document: entity.Document{Id: docA.Id, Link: docA.Link, Title: "Alpha, revised"},
		Text:     strings.Repeat("entirely new material ", 10),
	}
	err = idx.IndexDocuments(context.Background(), []entity.DocumentWithText{updated})
	assert.NoError(t, err)
	assert.Contains(t, store.deletes, docA.Id)

	// Cached results are never invalidated by re-ingestion.
	peek, err := idx.GetCachedQueryResponse(context.Background(), "some theme")
	assert.NoError(t, err)
	if assert.NotNil(t, peek) {
		assert.Equal(t, original, *peek)
	}
}

func TestIndexDocumentsReplacesPriorChunks(t *testing.T) {
	store := newMemStore()
	idx, embedder := newTestIndex(store, &fakeLLM{})

	doc := entity.DocumentWithText{
		Document: entity.Document{
			Id:    entity.LinkToId("https://example.org/essay"),
			Link:  "https://example.org/essay",
			Title: "Essay",
		},
		Text: strings.Repeat("body text ", 30),
	}

	// Stale chunk from a previous ingestion run
	stale := &entity.DocumentChunk{Id: uuid.New(), DocumentId: doc.Id, Text: "stale"}
	store.chunks[stale.Id] = stale

	err := idx.IndexDocuments(context.Background(), []entity.DocumentWithText{doc})
	assert.NoError(t, err)

	assert.Contains(t, store.deletes, doc.Id)
	assert.Nil(t, store.chunks[stale.Id])

	var indices []int
	for _, c := range store.chunks {
		assert.Equal(t, doc.Id, c.DocumentId)
		assert.NotEmpty(t, c.Embedding)
		indices = append(indices, c.ChunkIndex)
	}
	assert.NotEmpty(t, indices)
	assert.Equal(t, len(indices), embedder.calls)

	// Catalog record written alongside the chunks
	assert.NotNil(t, store.documents[doc.Id])
}
