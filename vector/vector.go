package vector

import (
	"context"
	"errors"
)

const (
	BackendChromem = "chromem"
	BackendMilvus  = "milvus"
)

var ErrUnsupportedBackend = errors.New("unsupported vector backend")

type Config struct {
	Backend    string       `yaml:"backend"`
	Persistent bool         `yaml:"persistent"`
	Path       string       `yaml:"path"`
	Namespace  string       `yaml:"namespace"`
	Dedup      bool         `yaml:"dedup"`
	Milvus     MilvusConfig `yaml:"milvus"`
}

type MilvusConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type VectorDB interface {
	Collection(ctx context.Context, namespace string) (Collection, error)
}

// Collection is a namespace-scoped view of the store. Implementations must be
// safe for concurrent use.
type Collection interface {
	// Upsert writes all documents. Documents with an ID already present
	// replace the stored entry.
	Upsert(ctx context.Context, docs []Document) error

	// Query returns up to k documents nearest to the embedding, ordered by
	// descending similarity. An empty collection yields an empty slice.
	Query(ctx context.Context, embedding []float32, k int) ([]Result, error)

	Count(ctx context.Context) (int, error)
}

type Document struct {
	ID        string            `json:"id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"embedding,omitempty"`
}

type Result struct {
	Document
	Score float32 `json:"score"`
}
