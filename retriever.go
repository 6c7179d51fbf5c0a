package faqbot

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/flarexio/faqbot/llm"
	"github.com/flarexio/faqbot/vector"
)

// Retriever embeds queries with the same embedder used at index time and
// searches the collection for the nearest chunks.
type Retriever struct {
	embedder   llm.Embedder
	collection vector.Collection
}

func NewRetriever(embedder llm.Embedder, collection vector.Collection) *Retriever {
	return &Retriever{embedder, collection}
}

// Retrieve returns at most k chunks by descending score. Ties keep the
// order reported by the store. No hits is an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if k < 1 {
		return nil, &StageError{StageRetrieve, ErrRetrieval, ErrInvalidTopK}
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &StageError{StageRetrieve, ErrRetrieval, &StageError{StageEmbed, ErrEmbedding, err}}
	}

	if len(vectors) != 1 {
		err := fmt.Errorf("got %d vectors for 1 query", len(vectors))
		return nil, &StageError{StageRetrieve, ErrRetrieval, &StageError{StageEmbed, ErrEmbedding, err}}
	}

	results, err := r.collection.Query(ctx, vectors[0], k)
	if err != nil {
		return nil, &StageError{StageRetrieve, ErrRetrieval, err}
	}

	slices.SortStableFunc(results, func(a, b vector.Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(results) > k {
		results = results[:k]
	}

	chunks := make([]ScoredChunk, len(results))
	for i, result := range results {
		chunks[i] = ScoredChunk{
			ID:    result.ID,
			Text:  result.Content,
			Score: result.Score,
		}
	}

	return chunks, nil
}
