package faqbot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flarexio/faqbot/document"
	"github.com/flarexio/faqbot/llm"
	"github.com/flarexio/faqbot/vector"
)

// Indexer loads the source document, splits it, embeds every chunk and
// writes the result into the collection in a single upsert.
type Indexer struct {
	source     SourceConfig
	dedup      bool
	batchSize  int
	embedder   llm.Embedder
	collection vector.Collection
	log        *zap.Logger
}

func NewIndexer(cfg Config, embedder llm.Embedder, collection vector.Collection) *Indexer {
	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Indexer{
		source:     cfg.Source,
		dedup:      cfg.Vector.Dedup,
		batchSize:  batchSize,
		embedder:   embedder,
		collection: collection,
		log: zap.L().With(
			zap.String("component", "indexer"),
			zap.String("source", cfg.Source.Path),
		),
	}
}

// Index returns the number of documents written.
func (idx *Indexer) Index(ctx context.Context) (int, error) {
	log := idx.log.With(
		zap.String("action", "index"),
	)

	text, err := document.Load(idx.source.Path)
	if err != nil {
		return 0, &StageError{StageLoad, ErrLoad, err}
	}

	log.Info("document loaded", zap.Int("length", len([]rune(text))))

	chunks, err := Split(text, idx.source.ChunkSize, idx.source.ChunkOverlap)
	if err != nil {
		return 0, &StageError{StageSplit, ErrConfig, err}
	}

	log.Info("document split", zap.Int("chunks", len(chunks)))

	if len(chunks) == 0 {
		log.Warn("source document is empty")
		return 0, nil
	}

	docs := idx.documents(chunks)

	for start := 0; start < len(docs); start += idx.batchSize {
		end := min(start+idx.batchSize, len(docs))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = docs[start+i].Content
		}

		vectors, err := idx.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, &StageError{StageEmbed, ErrEmbedding, err}
		}

		if len(vectors) != len(texts) {
			err := fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(texts))
			return 0, &StageError{StageEmbed, ErrEmbedding, err}
		}

		for i, v := range vectors {
			docs[start+i].Embedding = v
		}
	}

	log.Info("chunks embedded", zap.Int("count", len(docs)))

	if err := idx.collection.Upsert(ctx, docs); err != nil {
		return 0, &StageError{StageIndex, ErrIndex, err}
	}

	log.Info("chunks indexed", zap.Int("count", len(docs)))
	return len(docs), nil
}

// documents assigns IDs to chunks. With dedup the ID is derived from the
// content, so re-indexing replaces entries and repeated chunks collapse to
// one; otherwise every run writes fresh entries.
func (idx *Indexer) documents(chunks []string) []vector.Document {
	seen := make(map[string]struct{}, len(chunks))
	docs := make([]vector.Document, 0, len(chunks))

	for i, chunk := range chunks {
		var id string
		if idx.dedup {
			id = ChunkID(chunk)
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
		} else {
			id = "chunk_" + uuid.New().String()
		}

		docs = append(docs, vector.Document{
			ID:      id,
			Content: chunk,
			Metadata: map[string]string{
				"source": idx.source.Path,
				"chunk":  strconv.Itoa(i),
			},
		})
	}

	return docs
}

func ChunkID(chunk string) string {
	hash := sha256.Sum256([]byte(chunk))
	return "chunk_" + hex.EncodeToString(hash[:12])
}
