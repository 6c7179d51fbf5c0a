package milvus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/flarexio/faqbot/vector"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldContent   = "content"
	fieldMetadata  = "metadata"

	maxIDLength       = 128
	maxContentLength  = 65535
	maxMetadataLength = 8192
)

var ErrMissingEmbedding = errors.New("document has no embedding")

func NewMilvusVectorDB(ctx context.Context, cfg vector.MilvusConfig) (*MilvusVectorDB, error) {
	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &MilvusVectorDB{client: c}, nil
}

type MilvusVectorDB struct {
	client *milvusclient.Client
}

func (db *MilvusVectorDB) Close(ctx context.Context) error {
	return db.client.Close(ctx)
}

func (db *MilvusVectorDB) Collection(ctx context.Context, namespace string) (vector.Collection, error) {
	c := &collection{
		client: db.client,
		name:   CollectionName(namespace),
	}
	c.load = c.loadCollection

	return c, nil
}

// CollectionName maps a namespace onto the identifier rules Milvus enforces:
// letters, digits and underscores, not starting with a digit.
func CollectionName(namespace string) string {
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}

		return '_'
	}, namespace)

	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "ns_" + name
	}

	return name
}

type collection struct {
	client *milvusclient.Client
	name   string

	mu    sync.Mutex
	ready bool
	load  func(ctx context.Context) error
}

// ensure creates and loads the collection the first time vectors of a known
// dimension are written.
func (c *collection) ensure(ctx context.Context, dim int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}

	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(c.name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		schema := entity.NewSchema().
			WithName(c.name).
			WithDescription("faqbot chunks").
			WithAutoID(false)

		schema.WithField(
			entity.NewField().
				WithName(fieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxIDLength).
				WithIsPrimaryKey(true),
		)

		schema.WithField(
			entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dim)),
		)

		schema.WithField(
			entity.NewField().
				WithName(fieldContent).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxContentLength),
		)

		schema.WithField(
			entity.NewField().
				WithName(fieldMetadata).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(maxMetadataLength),
		)

		err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(c.name, schema))
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx := index.NewIvfFlatIndex(entity.COSINE, 128)
		task, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(c.name, fieldEmbedding, idx))
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}

		if err := task.Await(ctx); err != nil {
			return fmt.Errorf("failed to wait for index creation: %w", err)
		}
	}

	if err := c.load(ctx); err != nil {
		return err
	}

	c.ready = true
	return nil
}

// loaded loads an existing collection into memory once. Collections created
// by ensure are already loaded.
func (c *collection) loaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}

	if err := c.load(ctx); err != nil {
		return err
	}

	c.ready = true
	return nil
}

func (c *collection) loadCollection(ctx context.Context) error {
	task, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(c.name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	if err := task.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	return nil
}

func (c *collection) exists(ctx context.Context) (bool, error) {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()

	if ready {
		return true, nil
	}

	return c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(c.name))
}

func (c *collection) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	var (
		dim        = len(docs[0].Embedding)
		ids        = make([]string, len(docs))
		embeddings = make([][]float32, len(docs))
		contents   = make([]string, len(docs))
		metadata   = make([]string, len(docs))
	)

	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingEmbedding, doc.ID)
		}

		bs, err := json.Marshal(doc.Metadata)
		if err != nil {
			return err
		}

		ids[i] = doc.ID
		embeddings[i] = doc.Embedding
		contents[i] = doc.Content
		metadata[i] = string(bs)
	}

	if err := c.ensure(ctx, dim); err != nil {
		return err
	}

	columns := []column.Column{
		column.NewColumnVarChar(fieldID, ids),
		column.NewColumnFloatVector(fieldEmbedding, dim, embeddings),
		column.NewColumnVarChar(fieldContent, contents),
		column.NewColumnVarChar(fieldMetadata, metadata),
	}

	_, err := c.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(c.name, columns...))
	if err != nil {
		return fmt.Errorf("failed to upsert data: %w", err)
	}

	task, err := c.client.Flush(ctx, milvusclient.NewFlushOption(c.name))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}

	if err := task.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}

	return nil
}

func (c *collection) Query(ctx context.Context, embedding []float32, k int) ([]vector.Result, error) {
	exists, err := c.exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists || k <= 0 {
		return []vector.Result{}, nil
	}

	if err := c.loaded(ctx); err != nil {
		return nil, err
	}

	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		c.name,
		k,
		[]entity.Vector{entity.FloatVector(embedding)},
	).WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldContent, fieldMetadata))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return []vector.Result{}, nil
	}

	rs := results[0]

	docs := make([]vector.Result, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		result := vector.Result{
			Score: rs.Scores[i],
		}

		if ids, ok := rs.IDs.(*column.ColumnVarChar); ok {
			result.ID = ids.Data()[i]
		}

		for _, field := range rs.Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}

			switch col.Name() {
			case fieldContent:
				result.Content = col.Data()[i]

			case fieldMetadata:
				var metadata map[string]string
				if err := json.Unmarshal([]byte(col.Data()[i]), &metadata); err == nil {
					result.Metadata = metadata
				}
			}
		}

		docs = append(docs, result)
	}

	return docs, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	exists, err := c.exists(ctx)
	if err != nil {
		return 0, err
	}

	if !exists {
		return 0, nil
	}

	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(c.name))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}

	val, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}

	return n, nil
}
