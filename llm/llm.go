package llm

import "context"

// Embedder maps text to fixed-dimension vectors. The output has one vector
// per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type EmbeddingConfig struct {
	BaseURL   string `yaml:"baseURL"`
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batchSize"`
}

type CompletionConfig struct {
	BaseURL  string `yaml:"baseURL"`
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	SiteURL  string `yaml:"siteURL"`
	SiteName string `yaml:"siteName"`

	// Instruction is prepended to every prompt inside the single user message.
	Instruction string `yaml:"-"`
}
