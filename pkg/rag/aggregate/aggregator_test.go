package aggregate

import (
	"context"
	"errors"
	"testing"

	"learning-hub-be/pkg/rag/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// mapResolver resolves matches by their DocumentId field. Ids present in
// missing yield "", ids present in failing yield an error.
type mapResolver struct {
	missing map[string]bool
	failing map[string]bool
}

func (r *mapResolver) ResolveDocumentId(_ context.Context, match search.Match) (string, error) {
	if r.failing[match.DocumentId] {
		return "", errors.New("store unavailable")
	}
	if r.missing[match.DocumentId] {
		return "", nil
	}
	return match.DocumentId, nil
}

func newMatch(docId string, score float64) search.Match {
	return search.Match{
		ChunkId:    uuid.New(),
		DocumentId: docId,
		Text:       "passage from " + docId,
		Score:      score,
	}
}

func TestAggregateRunningMean(t *testing.T) {
	agg := NewAggregator(&mapResolver{}, nopLogger{})

	result := agg.Aggregate(context.Background(), []search.Match{
		newMatch("doc1", 0.9),
		newMatch("doc1", 0.7),
		newMatch("doc1", 0.5),
	})

	assert.Len(t, result, 1)
	assert.Equal(t, "doc1", result[0].DocumentId)
	assert.InDelta(t, 0.7, result[0].Score, 1e-9)
	assert.Len(t, result[0].Matches, 3)
}

func TestAggregateSingleStrongHitOutranksDilutedMean(t *testing.T) {
	agg := NewAggregator(&mapResolver{}, nopLogger{})

	// doc1 appears first with two hits averaging 0.8; doc2 has a single
	// 0.95 hit and must outrank it.
	result := agg.Aggregate(context.Background(), []search.Match{
		newMatch("doc1", 0.9),
		newMatch("doc2", 0.95),
		newMatch("doc1", 0.7),
	})

	assert.Len(t, result, 2)
	assert.Equal(t, "doc2", result[0].DocumentId)
	assert.InDelta(t, 0.95, result[0].Score, 1e-9)
	assert.Equal(t, "doc1", result[1].DocumentId)
	assert.InDelta(t, 0.8, result[1].Score, 1e-9)
}

func TestAggregateTiesKeepFirstSeenOrder(t *testing.T) {
	agg := NewAggregator(&mapResolver{}, nopLogger{})

	result := agg.Aggregate(context.Background(), []search.Match{
		newMatch("docA", 0.8),
		newMatch("docB", 0.8),
		newMatch("docC", 0.8),
	})

	assert.Len(t, result, 3)
	assert.Equal(t, "docA", result[0].DocumentId)
	assert.Equal(t, "docB", result[1].DocumentId)
	assert.Equal(t, "docC", result[2].DocumentId)
}

func TestAggregateDropsUnresolvableMatches(t *testing.T) {
	tests := []struct {
		name     string
		resolver *mapResolver
	}{
		{
			name:     "document deleted",
			resolver: &mapResolver{missing: map[string]bool{"gone": true}},
		},
		{
			name:     "resolution error",
			resolver: &mapResolver{failing: map[string]bool{"gone": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.resolver, nopLogger{})

			result := agg.Aggregate(context.Background(), []search.Match{
				newMatch("gone", 0.99),
				newMatch("doc1", 0.6),
			})

			assert.Len(t, result, 1)
			assert.Equal(t, "doc1", result[0].DocumentId)
		})
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := NewAggregator(&mapResolver{}, nopLogger{})

	result := agg.Aggregate(context.Background(), nil)

	assert.Empty(t, result)
}
