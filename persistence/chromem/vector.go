package chromem

import (
	"context"
	"errors"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/flarexio/faqbot/llm"
	"github.com/flarexio/faqbot/vector"
)

var ErrEmptyEmbedding = errors.New("embedder returned no vector")

func NewChromemVectorDB(cfg vector.Config, embedder llm.Embedder) (vector.VectorDB, error) {
	var db *chromem.DB
	if !cfg.Persistent {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, err
		}

		db = d
	}

	return &chromemVectorDB{db, embedder}, nil
}

type chromemVectorDB struct {
	db       *chromem.DB
	embedder llm.Embedder
}

func (vector *chromemVectorDB) Collection(ctx context.Context, namespace string) (vector.Collection, error) {
	c, err := vector.db.GetOrCreateCollection(namespace, nil, embeddingFunc(vector.embedder))
	if err != nil {
		return nil, err
	}

	return &collection{c}, nil
}

// embeddingFunc binds the collection to the pipeline's embedder so content
// without a precomputed vector lands in the same embedding space.
func embeddingFunc(embedder llm.Embedder) chromem.EmbeddingFunc {
	if embedder == nil {
		return nil
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		vectors, err := embedder.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}

		if len(vectors) == 0 {
			return nil, ErrEmptyEmbedding
		}

		return vectors[0], nil
	}
}

type collection struct {
	collection *chromem.Collection
}

func (c *collection) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	documents := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		documents[i] = chromem.Document{
			ID:        doc.ID,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
			Content:   doc.Content,
		}
	}

	return c.collection.AddDocuments(ctx, documents, runtime.NumCPU())
}

func (c *collection) Query(ctx context.Context, embedding []float32, k int) ([]vector.Result, error) {
	if k > c.collection.Count() {
		k = c.collection.Count()
	}

	if k <= 0 {
		return []vector.Result{}, nil
	}

	results, err := c.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Result, len(results))
	for i, result := range results {
		docs[i] = vector.Result{
			Document: vector.Document{
				ID:        result.ID,
				Metadata:  result.Metadata,
				Embedding: result.Embedding,
				Content:   result.Content,
			},
			Score: result.Similarity,
		}
	}

	return docs, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	return c.collection.Count(), nil
}
