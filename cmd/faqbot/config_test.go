package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/vector"
)

const testConfig = `
institution: Example University
source:
  path: faq.txt
  chunkSize: 500
  chunkOverlap: 50
retrieval:
  topK: 4
vector:
  backend: milvus
  namespace: example-faq
  milvus:
    address: localhost:19530
timeouts:
  complete: 45s
redis:
  address: localhost:6379
history:
  limit: 20
http:
  corsOrigins:
    - http://localhost:5173
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0o600)
	require.NoError(t, err)

	cfg, err := loadConfig(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "Example University", cfg.Institution)
	assert.Equal(t, filepath.Join(dir, "faq.txt"), cfg.Source.Path)
	assert.Equal(t, 500, cfg.Source.ChunkSize)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, vector.BackendMilvus, cfg.Vector.Backend)
	assert.Equal(t, "localhost:19530", cfg.Vector.Milvus.Address)
	assert.True(t, cfg.Vector.Dedup)
	assert.Equal(t, filepath.Join(dir, "vectors"), cfg.Vector.Path)
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Complete.Duration())
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.Index.Duration())
	assert.Equal(t, 20, cfg.History.Limit)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "You are answering questions about Example University.", cfg.Completion.Instruction)

	assert.False(t, cfg.AuthEnabled())
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Cleanup(func() {
		os.Unsetenv("FAQ_SOURCE_PATH")
		os.Unsetenv("JWT_SECRET")
	})

	env := "FAQ_SOURCE_PATH=/srv/faq.pdf\nJWT_SECRET=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	t.Setenv("FAQ_TOP_K", "5")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := loadConfig(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/faq.pdf", cfg.Source.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, faqbot.DefaultInstitution, cfg.Institution)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "from-dotenv", cfg.Auth.Secret)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoadConfigRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv("FAQ_SOURCE_PATH", "/srv/faq.txt")
	t.Setenv("FAQ_CHUNK_SIZE", "large")

	_, err := loadConfig(dir, "")
	assert.ErrorIs(t, err, faqbot.ErrConfig)
}

func TestLoadConfigRequiresSource(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := loadConfig(dir, filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, faqbot.ErrConfig)
}
