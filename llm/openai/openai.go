package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/flarexio/faqbot/llm"
)

const (
	DefaultEmbeddingBaseURL  = "https://api.openai.com/v1"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultCompletionBaseURL = "https://openrouter.ai/api/v1"
	DefaultCompletionModel   = "meta-llama/llama-3.1-8b-instruct:free"
	DefaultSiteURL           = "http://localhost:3000"
	DefaultSiteName          = "NITK-QA-Bot"
)

var (
	ErrMissingAPIKey     = errors.New("missing api key")
	ErrNoChoices         = errors.New("completion response has no choices")
	ErrEmptyCompletion   = errors.New("completion response has empty content")
	ErrEmbeddingMismatch = errors.New("embedding response does not match inputs")
)

// StatusCode reports the HTTP status of a failed API call, or 0 when the
// failure did not come from an HTTP response.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

func newClient(baseURL, apiKey string, opts ...option.RequestOption) openai.Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts = append([]option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return openai.NewClient(opts...)
}

func NewEmbedder(cfg llm.EmbeddingConfig) (llm.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding: %w", ErrMissingAPIKey)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEmbeddingBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}

	return &embedder{
		client: newClient(cfg.BaseURL, cfg.APIKey),
		model:  cfg.Model,
	}, nil
}

type embedder struct {
	client openai.Client
	model  string
}

func (e *embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(e.model),
	})

	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, ErrEmbeddingMismatch
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		i := int(data.Index)
		if i < 0 || i >= len(vectors) || vectors[i] != nil || len(data.Embedding) == 0 {
			return nil, ErrEmbeddingMismatch
		}

		v := make([]float32, len(data.Embedding))
		for j, f := range data.Embedding {
			v[j] = float32(f)
		}

		vectors[i] = v
	}

	return vectors, nil
}

func NewCompleter(cfg llm.CompletionConfig) (llm.Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion: %w", ErrMissingAPIKey)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCompletionBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = DefaultCompletionModel
	}

	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}

	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}

	client := newClient(cfg.BaseURL, cfg.APIKey,
		option.WithHeader("HTTP-Referer", cfg.SiteURL),
		option.WithHeader("X-Title", cfg.SiteName),
	)

	return &completer{
		client:      client,
		model:       cfg.Model,
		instruction: cfg.Instruction,
	}, nil
}

type completer struct {
	client      openai.Client
	model       string
	instruction string
}

func (c *completer) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(c.instruction + prompt),
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyCompletion
	}

	return content, nil
}
