package faqbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flarexio/faqbot/llm"
	"github.com/flarexio/faqbot/vector"
)

var (
	ErrConfig     = errors.New("invalid configuration")
	ErrLoad       = errors.New("failed to load source document")
	ErrEmbedding  = errors.New("failed to compute embeddings")
	ErrRetrieval  = errors.New("failed to retrieve context")
	ErrCompletion = errors.New("failed to generate completion")
	ErrIndex      = errors.New("failed to write index")

	// ErrQueryFailed is the only pipeline failure visible to callers.
	ErrQueryFailed  = errors.New("failed to process query")
	ErrInvalidQuery = errors.New("query must not be empty")
	ErrInvalidTopK  = errors.New("k must be at least 1")
)

const (
	DefaultInstitution  = "National Institute of Technology, Karnataka"
	DefaultNamespace    = "nitk-faq"
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 3
	DefaultBatchSize    = 64
)

type ContextKey string

const (
	UserID ContextKey = "user_id"
)

type Stage string

const (
	StageLoad     Stage = "load"
	StageSplit    Stage = "split"
	StageEmbed    Stage = "embed"
	StageIndex    Stage = "index"
	StageRetrieve Stage = "retrieve"
	StageComplete Stage = "complete"
)

// StageError records where in the pipeline a failure happened. Kind is one
// of the pipeline sentinels and Err is the raw cause; both match errors.Is.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return string(e.Stage) + ": " + e.Kind.Error()
	}

	return string(e.Stage) + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

func ParseState(str string) (State, error) {
	switch str {
	case "uninitialized":
		return StateUninitialized, nil
	case "initializing":
		return StateInitializing, nil
	case "ready":
		return StateReady, nil
	default:
		return StateUninitialized, errors.New("unknown state: " + str)
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	state, err := ParseState(str)
	if err != nil {
		return err
	}

	*s = state
	return nil
}

// ScoredChunk is one retrieval hit. Higher scores are more similar.
type ScoredChunk struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

type Config struct {
	Institution string               `yaml:"institution"`
	Source      SourceConfig         `yaml:"source"`
	Retrieval   RetrievalConfig      `yaml:"retrieval"`
	Vector      vector.Config        `yaml:"vector"`
	Embedding   llm.EmbeddingConfig  `yaml:"embedding"`
	Completion  llm.CompletionConfig `yaml:"completion"`
	Timeouts    TimeoutConfig        `yaml:"timeouts"`
}

type SourceConfig struct {
	Path         string `yaml:"path"`
	ChunkSize    int    `yaml:"chunkSize"`
	ChunkOverlap int    `yaml:"chunkOverlap"`
}

type RetrievalConfig struct {
	TopK int `yaml:"topK"`
}

// TimeoutConfig bounds each external stage. Zero means unbounded.
type TimeoutConfig struct {
	Index    Duration `yaml:"index"`
	Retrieve Duration `yaml:"retrieve"`
	Complete Duration `yaml:"complete"`
}

func DefaultConfig() Config {
	return Config{
		Institution: DefaultInstitution,
		Source: SourceConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalConfig{
			TopK: DefaultTopK,
		},
		Vector: vector.Config{
			Backend:   vector.BackendChromem,
			Namespace: DefaultNamespace,
			Dedup:     true,
		},
		Embedding: llm.EmbeddingConfig{
			BatchSize: DefaultBatchSize,
		},
		Timeouts: TimeoutConfig{
			Index:    Duration(5 * time.Minute),
			Retrieve: Duration(30 * time.Second),
			Complete: Duration(60 * time.Second),
		},
	}
}

// Instruction is the fixed preamble sent ahead of every prompt.
func (cfg Config) Instruction() string {
	return "You are answering questions about " + cfg.Institution + "."
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Source.Path) == "" {
		return fmt.Errorf("%w: source path is required", ErrConfig)
	}

	if cfg.Source.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrConfig)
	}

	if cfg.Source.ChunkOverlap < 0 || cfg.Source.ChunkOverlap >= cfg.Source.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", ErrConfig)
	}

	if cfg.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top k must be at least 1", ErrConfig)
	}

	if cfg.Vector.Namespace == "" {
		return fmt.Errorf("%w: vector namespace is required", ErrConfig)
	}

	if cfg.Timeouts.Index < 0 || cfg.Timeouts.Retrieve < 0 || cfg.Timeouts.Complete < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrConfig)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the config. Unset variables
// keep the current value; malformed numbers or booleans are rejected.
func (cfg *Config) ApplyEnv() error {
	envString("FAQ_SOURCE_PATH", &cfg.Source.Path)
	envString("FAQ_INSTITUTION", &cfg.Institution)
	envString("VECTOR_BACKEND", &cfg.Vector.Backend)
	envString("VECTOR_NAMESPACE", &cfg.Vector.Namespace)
	envString("VECTOR_PATH", &cfg.Vector.Path)
	envString("MILVUS_ADDRESS", &cfg.Vector.Milvus.Address)
	envString("MILVUS_USERNAME", &cfg.Vector.Milvus.Username)
	envString("MILVUS_PASSWORD", &cfg.Vector.Milvus.Password)
	envString("EMBEDDING_BASE_URL", &cfg.Embedding.BaseURL)
	envString("EMBEDDING_API_KEY", &cfg.Embedding.APIKey)
	envString("EMBEDDING_MODEL", &cfg.Embedding.Model)
	envString("COMPLETION_BASE_URL", &cfg.Completion.BaseURL)
	envString("OPENROUTER_API_KEY", &cfg.Completion.APIKey)
	envString("COMPLETION_MODEL", &cfg.Completion.Model)
	envString("SITE_URL", &cfg.Completion.SiteURL)
	envString("SITE_NAME", &cfg.Completion.SiteName)

	ints := []struct {
		key string
		dst *int
	}{
		{"FAQ_CHUNK_SIZE", &cfg.Source.ChunkSize},
		{"FAQ_CHUNK_OVERLAP", &cfg.Source.ChunkOverlap},
		{"FAQ_TOP_K", &cfg.Retrieval.TopK},
		{"EMBEDDING_BATCH_SIZE", &cfg.Embedding.BatchSize},
	}

	for _, v := range ints {
		if err := envInt(v.key, v.dst); err != nil {
			return err
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"VECTOR_DEDUP", &cfg.Vector.Dedup},
		{"VECTOR_PERSISTENT", &cfg.Vector.Persistent},
	}

	for _, v := range bools {
		if err := envBool(v.key, v.dst); err != nil {
			return err
		}
	}

	return nil
}

func envString(key string, dst *string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not an integer", ErrConfig, key, value)
	}

	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not a boolean", ErrConfig, key, value)
	}

	*dst = b
	return nil
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration().String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}
