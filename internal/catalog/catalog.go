package catalog

import (
	"context"
	"time"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/repository/specification"
	"learning-hub-be/internal/repository/unitofwork"

	gocache "github.com/patrickmn/go-cache"
)

// Catalog is the read model over the curated document catalog. Records are
// immutable once ingested, so lookups are memoized in-process with a short
// TTL to absorb hydration bursts during query rendering.
type Catalog struct {
	uowFactory unitofwork.RepositoryFactory
	memo       *gocache.Cache
}

func NewCatalog(uowFactory unitofwork.RepositoryFactory) *Catalog {
	return &Catalog{
		uowFactory: uowFactory,
		memo:       gocache.New(10*time.Minute, 30*time.Minute),
	}
}

func (c *Catalog) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	if cached, found := c.memo.Get(id); found {
		return cached.(*entity.Document), nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document != nil {
		c.memo.Set(id, document, gocache.DefaultExpiration)
	}
	return document, nil
}

func (c *Catalog) GetDocuments(ctx context.Context, ids []string) ([]*entity.Document, error) {
	documents := make([]*entity.Document, 0, len(ids))
	for _, id := range ids {
		document, err := c.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		if document != nil {
			documents = append(documents, document)
		}
	}
	return documents, nil
}
