package aggregate

import (
	"context"
	"sort"

	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/pkg/rag/search"
)

// DocumentAggregate collapses a document's matched chunks into one ranked
// entry. Score is the running mean of the chunk similarities, which rewards
// documents with consistently relevant passages over a single lucky match.
type DocumentAggregate struct {
	DocumentId string
	Score      float64
	Matches    []search.Match
}

// Resolver checks that a match's chunk still dereferences to a live
// document. Returns the parent document id, or "" when the chunk or its
// document is gone.
type Resolver interface {
	ResolveDocumentId(ctx context.Context, match search.Match) (string, error)
}

type Aggregator struct {
	resolver Resolver
	logger   logger.ILogger
}

func NewAggregator(resolver Resolver, log logger.ILogger) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		logger:   log,
	}
}

// Aggregate converts a ranked list of chunk matches into per-document
// aggregates ordered by score descending, ties preserving first-seen order.
// Matches whose parent document can no longer be resolved are dropped;
// resolution problems never fail the query.
func (a *Aggregator) Aggregate(ctx context.Context, matches []search.Match) []DocumentAggregate {
	scores := make(map[string]float64)
	counts := make(map[string]int)
	matchesByDoc := make(map[string][]search.Match)
	var order []string

	for _, match := range matches {
		docId, err := a.resolver.ResolveDocumentId(ctx, match)
		if err != nil {
			a.logger.Warn("Aggregator", "Match resolution failed, dropping match", map[string]interface{}{
				"chunk_id": match.ChunkId.String(),
				"error":    err.Error(),
			})
			continue
		}
		if docId == "" {
			a.logger.Warn("Aggregator", "Match references missing document, dropping match", map[string]interface{}{
				"chunk_id":    match.ChunkId.String(),
				"document_id": match.DocumentId,
			})
			continue
		}

		if counts[docId] == 0 {
			order = append(order, docId)
		}
		counts[docId]++
		// Incremental mean: numerically stable, single pass
		scores[docId] += (match.Score - scores[docId]) / float64(counts[docId])
		matchesByDoc[docId] = append(matchesByDoc[docId], match)
	}

	aggregates := make([]DocumentAggregate, 0, len(order))
	for _, docId := range order {
		aggregates = append(aggregates, DocumentAggregate{
			DocumentId: docId,
			Score:      scores[docId],
			Matches:    matchesByDoc[docId],
		})
	}

	// Stable: ties keep first-seen order
	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].Score > aggregates[j].Score
	})

	return aggregates
}
