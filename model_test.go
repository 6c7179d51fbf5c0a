package faqbot

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/faqbot/vector"
)

func TestConfigYAMLUnmarshal(t *testing.T) {
	assert := assert.New(t)

	input := `institution: Test Institute
source:
  path: data/faq.pdf
  chunkSize: 500
  chunkOverlap: 50
retrieval:
  topK: 5
vector:
  backend: milvus
  namespace: test-faq
  dedup: false
  milvus:
    address: localhost:19530
timeouts:
  retrieve: 10s
  complete: 1m`

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal("Test Institute", cfg.Institution)
	assert.Equal(500, cfg.Source.ChunkSize)
	assert.Equal(50, cfg.Source.ChunkOverlap)
	assert.Equal(5, cfg.Retrieval.TopK)
	assert.Equal(vector.BackendMilvus, cfg.Vector.Backend)
	assert.False(cfg.Vector.Dedup)
	assert.Equal("localhost:19530", cfg.Vector.Milvus.Address)
	assert.Equal(10*time.Second, cfg.Timeouts.Retrieve.Duration())
	assert.Equal(time.Minute, cfg.Timeouts.Complete.Duration())
	assert.Equal(5*time.Minute, cfg.Timeouts.Index.Duration(), "unset keys keep defaults")
	assert.NoError(cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing source", func(cfg *Config) { cfg.Source.Path = " " }},
		{"zero chunk size", func(cfg *Config) { cfg.Source.ChunkSize = 0 }},
		{"overlap equals size", func(cfg *Config) { cfg.Source.ChunkOverlap = cfg.Source.ChunkSize }},
		{"negative overlap", func(cfg *Config) { cfg.Source.ChunkOverlap = -1 }},
		{"zero top k", func(cfg *Config) { cfg.Retrieval.TopK = 0 }},
		{"missing namespace", func(cfg *Config) { cfg.Vector.Namespace = "" }},
		{"negative timeout", func(cfg *Config) { cfg.Timeouts.Complete = Duration(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Source.Path = "faq.pdf"
			tt.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), ErrConfig)
		})
	}
}

func TestConfigApplyEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("FAQ_SOURCE_PATH", "/data/faq.pdf")
	t.Setenv("FAQ_CHUNK_SIZE", "800")
	t.Setenv("FAQ_TOP_K", "4")
	t.Setenv("VECTOR_DEDUP", "false")
	t.Setenv("OPENROUTER_API_KEY", "secret")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal("/data/faq.pdf", cfg.Source.Path)
	assert.Equal(800, cfg.Source.ChunkSize)
	assert.Equal(DefaultChunkOverlap, cfg.Source.ChunkOverlap)
	assert.Equal(4, cfg.Retrieval.TopK)
	assert.False(cfg.Vector.Dedup)
	assert.Equal("secret", cfg.Completion.APIKey)
}

func TestConfigApplyEnvMalformed(t *testing.T) {
	t.Setenv("FAQ_CHUNK_OVERLAP", "two hundred")

	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ApplyEnv(), ErrConfig)
	assert.Equal(t, DefaultChunkOverlap, cfg.Source.ChunkOverlap)

	t.Setenv("FAQ_CHUNK_OVERLAP", "")
	t.Setenv("VECTOR_DEDUP", "maybe")
	assert.ErrorIs(t, cfg.ApplyEnv(), ErrConfig)
}

func TestStageErrorMatchesKindAndCause(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("connection refused")
	err := error(&StageError{StageRetrieve, ErrRetrieval, &StageError{StageEmbed, ErrEmbedding, cause}})

	assert.ErrorIs(err, ErrRetrieval)
	assert.ErrorIs(err, ErrEmbedding)
	assert.ErrorIs(err, cause)
	assert.NotErrorIs(err, ErrCompletion)
	assert.Equal("retrieve: failed to retrieve context: embed: failed to compute embeddings: connection refused", err.Error())

	var stageErr *StageError
	if assert.ErrorAs(err, &stageErr) {
		assert.Equal(StageRetrieve, stageErr.Stage)
	}
}

func TestStateJSON(t *testing.T) {
	assert := assert.New(t)

	bs, err := json.Marshal(StateResponse{State: StateReady})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.JSONEq(`{"state": "ready"}`, string(bs))

	var resp StateResponse
	if err := json.Unmarshal([]byte(`{"state": "initializing"}`), &resp); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(StateInitializing, resp.State)
	assert.Error(json.Unmarshal([]byte(`{"state": "done"}`), &resp))
}
