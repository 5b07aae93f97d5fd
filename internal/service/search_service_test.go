package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"learning-hub-be/internal/catalog"
	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/repository/contract"
	"learning-hub-be/internal/repository/specification"
	"learning-hub-be/internal/repository/unitofwork"
	"learning-hub-be/pkg/cache"
	"learning-hub-be/pkg/embedding"
	"learning-hub-be/pkg/events"
	"learning-hub-be/pkg/llm"
	"learning-hub-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
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

type stubEmbedder struct{}

func (stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: []float32{float32(len(text)), 1, 0},
		},
	}, nil
}

type stubModel struct {
	calls int
}

func (m *stubModel) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (m *stubModel) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	m.calls++
	return "A grounded statement about the material.", nil
}

// stubStore backs the fake repositories with in-process maps.
type stubStore struct {
	documents map[string]*entity.Document
	chunks    map[uuid.UUID]*entity.DocumentChunk
	scored    []*contract.ScoredChunk
}

func newStubStore() *stubStore {
	return &stubStore{
		documents: make(map[string]*entity.Document),
		chunks:    make(map[uuid.UUID]*entity.DocumentChunk),
	}
}

func (s *stubStore) addIndexedDocument(doc entity.Document, chunkText string, similarity float64) {
	d := doc
	s.documents[d.Id] = &d
	chunk := &entity.DocumentChunk{
		Id:         uuid.New(),
		DocumentId: d.Id,
		Text:       chunkText,
		CreatedAt:  time.Now(),
	}
	s.chunks[chunk.Id] = chunk
	s.scored = append(s.scored, &contract.ScoredChunk{Chunk: chunk, Similarity: similarity})
}

type stubDocumentRepo struct{ store *stubStore }

func (r *stubDocumentRepo) Upsert(_ context.Context, document *entity.Document) error {
	d := *document
	r.store.documents[d.Id] = &d
	return nil
}

func (r *stubDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return r.store.documents[byId.ID], nil
		}
	}
	return nil, nil
}

func (r *stubDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	out := make([]*entity.Document, 0, len(r.store.documents))
	for _, d := range r.store.documents {
		out = append(out, d)
	}
	return out, nil
}

func (r *stubDocumentRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.documents)), nil
}

type stubChunkRepo struct{ store *stubStore }

func (r *stubChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	for _, c := range chunks {
		r.store.chunks[c.Id] = c
	}
	return nil
}

func (r *stubChunkRepo) DeleteByDocumentId(_ context.Context, documentId string) error {
	for id, c := range r.store.chunks {
		if c.DocumentId == documentId {
			delete(r.store.chunks, id)
		}
	}
	return nil
}

func (r *stubChunkRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}

func (r *stubChunkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	out := make([]*entity.DocumentChunk, 0, len(r.store.chunks))
	for _, c := range r.store.chunks {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubChunkRepo) GetChunk(_ context.Context, id uuid.UUID) (*entity.DocumentChunk, error) {
	return r.store.chunks[id], nil
}

func (r *stubChunkRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int) ([]*contract.ScoredChunk, error) {
	if limit > len(r.store.scored) {
		limit = len(r.store.scored)
	}
	return r.store.scored[:limit], nil
}

type stubUnitOfWork struct{ store *stubStore }

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                   { return nil }
func (u *stubUnitOfWork) Rollback() error                 { return nil }
func (u *stubUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &stubDocumentRepo{store: u.store}
}
func (u *stubUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &stubChunkRepo{store: u.store}
}

type stubFactory struct{ store *stubStore }

func (f *stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &stubUnitOfWork{store: f.store}
}

var _ unitofwork.RepositoryFactory = (*stubFactory)(nil)

type stubBackend struct {
	store map[string]string
}

func newStubBackend() *stubBackend {
	return &stubBackend{store: make(map[string]string)}
}

func (b *stubBackend) Get(ctx context.Context, key string) *redis.StringCmd {
	val, ok := b.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (b *stubBackend) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	b.store[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

type stubQueryTasks struct {
	taskId  string
	queries []string
}

func (s *stubQueryTasks) Enqueue(_ context.Context, query string) (string, error) {
	s.queries = append(s.queries, query)
	return s.taskId, nil
}

func (s *stubQueryTasks) Consume(_ context.Context) error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func newSearchFixture(store *stubStore, model *stubModel) (*rag.Index, *catalog.Catalog) {
	factory := &stubFactory{store: store}
	cat := catalog.NewCatalog(factory)
	queryCache := cache.NewRedisCache(newStubBackend(), cache.Config{Prefix: "ddlh"})
	idx := rag.NewIndex(
		stubEmbedder{},
		model,
		false,
		factory,
		cat,
		queryCache,
		rag.Config{ChunkSize: 50, ChunkOverlap: 10, TopK: 10, MaxDocumentSummaries: 3},
		nopLogger{},
	)
	return idx, cat
}

func seedStore(store *stubStore) (entity.Document, entity.Document) {
	docA := entity.Document{Id: entity.LinkToId("https://example.org/a"), Link: "https://example.org/a", Title: "Alpha"}
	docB := entity.Document{Id: entity.LinkToId("https://example.org/b"), Link: "https://example.org/b", Title: "Beta"}
	store.addIndexedDocument(docA, "alpha material", 0.9)
	store.addIndexedDocument(docB, "beta material", 0.6)
	return docA, docB
}

func TestQueryCacheMissReturnsDocumentsAndSchedulesTask(t *testing.T) {
	store := newStubStore()
	docA, docB := seedStore(store)
	model := &stubModel{}
	idx, cat := newSearchFixture(store, model)
	tasks := &stubQueryTasks{taskId: "task-123"}
	svc := NewSearchService(idx, cat, tasks, nopLogger{})

	res, err := svc.Query(context.Background(), "some theme")
	assert.NoError(t, err)

	assert.Equal(t, "task-123", res.TaskId)
	assert.Nil(t, res.Summary)
	if assert.Len(t, res.Documents, 2) {
		assert.Equal(t, docA.Id, res.Documents[0].Id)
		assert.Equal(t, docB.Id, res.Documents[1].Id)
	}
	assert.Equal(t, []string{"some theme"}, tasks.queries)

	// Summarization runs in the background job, not on the request path
	assert.Zero(t, model.calls)
}

func TestQueryCacheHitReturnsSummaryWithoutNewTask(t *testing.T) {
	store := newStubStore()
	docA, _ := seedStore(store)
	model := &stubModel{}
	idx, cat := newSearchFixture(store, model)
	tasks := &stubQueryTasks{taskId: "task-123"}
	svc := NewSearchService(idx, cat, tasks, nopLogger{})

	// Prime the cache the way the background worker does
	_, err := idx.Query(context.Background(), "some theme")
	assert.NoError(t, err)

	res, err := svc.Query(context.Background(), "some theme")
	assert.NoError(t, err)

	assert.Empty(t, res.TaskId)
	if assert.NotNil(t, res.Summary) {
		assert.NotEmpty(t, res.Summary.TopSentence)
	}
	if assert.Len(t, res.Documents, 2) {
		assert.Equal(t, docA.Id, res.Documents[0].Id)
	}
	assert.Empty(t, tasks.queries)
}

func TestRelatedDocumentsUnknownDocument(t *testing.T) {
	store := newStubStore()
	seedStore(store)
	idx, cat := newSearchFixture(store, &stubModel{})
	svc := NewSearchService(idx, cat, &stubQueryTasks{}, nopLogger{})

	_, err := svc.RelatedDocuments(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestQueryTaskConsumeCachesResultAndPublishesCompletion(t *testing.T) {
	store := newStubStore()
	seedStore(store)
	idx, _ := newSearchFixture(store, &stubModel{})

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	rec := &recordingPublisher{}
	tasks := NewQueryTaskService(NewPublisherService("run_query", pubSub), pubSub, "run_query", idx, rec)

	ctx := context.Background()
	assert.NoError(t, tasks.Consume(ctx))

	taskId, err := tasks.Enqueue(ctx, "some theme")
	assert.NoError(t, err)
	assert.NotEmpty(t, taskId)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(rec.published()) == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	published := rec.published()
	if assert.Len(t, published, 1) {
		assert.Equal(t, "QUERY_COMPLETED", published[0].EventType())
		assert.Equal(t, taskId, published[0].Payload()["task_id"])
	}

	// The worker stores the full result in the query cache
	peek, err := idx.GetCachedQueryResponse(ctx, "some theme")
	assert.NoError(t, err)
	if assert.NotNil(t, peek) {
		assert.Equal(t, "some theme", peek.Query)
	}
}
