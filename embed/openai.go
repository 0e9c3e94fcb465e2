package embed

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/pkg/metricskey"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when the config does not name an embedding model.
const DefaultModel = "text-embedding-3-small"

// OpenAIConfig describes the embeddings endpoint.
type OpenAIConfig struct {
	// Token is the API key.
	Token string `json:"token" yaml:"token" validate:"required"`
	// Model is the embedding model name, DefaultModel when empty.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// BaseURL overrides the API endpoint, for proxies and compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

type openAIEmbedder struct {
	client *goopenai.Client
	model  string
}

// NewOpenAI returns an Embedder backed by the OpenAI embeddings API.
func NewOpenAI(cfg *OpenAIConfig) Embedder {
	ocfg := goopenai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		ocfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &openAIEmbedder{
		client: goopenai.NewClientWithConfig(ocfg),
		model:  model,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		metricskey.StatsEmbeddingsFailed.IncrCounter(1)
		return nil, errors.WithMessage(err, "failed to create embedding")
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metricskey.StatsEmbeddingsFailed.IncrCounter(1)
		return nil, errors.New("embeddings response is empty")
	}
	return resp.Data[0].Embedding, nil
}
