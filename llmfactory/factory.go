package llmfactory

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/embed"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/pkg/llms/anthropic"
	"github.com/effective-security/agentui/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "llmfactory")

type Factory interface {
	DefaultModel() (llms.Model, error)
	ModelByName(name string) (llms.Model, error)
	DefaultEmbedder() (embed.Embedder, error)
}

// Load returns a factory configured from a file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	byName map[string]llms.Model
	lock   sync.Mutex
}

// New creates a new LLM factory
func New(cfg *Config) Factory {
	f := &factory{
		cfg:    cfg,
		byName: make(map[string]llms.Model),
	}
	return f
}

func NewLLM(cfg *ProviderConfig) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			Token:   cfg.Token,
			Model:   cfg.DefaultModel,
			BaseURL: cfg.BaseURL,
		})
	case "", "openai":
		return openai.New(openai.Config{
			Token:   cfg.Token,
			Model:   cfg.DefaultModel,
			BaseURL: cfg.BaseURL,
			OrgID:   cfg.OrgID,
		}), nil
	default:
		return nil, errors.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// DefaultModel returns the model of the first configured provider
func (f *factory) DefaultModel() (llms.Model, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	return f.ModelByName(f.cfg.Providers[0].Name)
}

func (f *factory) ModelByName(name string) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if client, ok := f.byName[name]; ok {
		return client, nil
	}

	for _, cfg := range f.cfg.Providers {
		if cfg.Name == name {
			model, err := NewLLM(cfg)
			if err != nil {
				return nil, err
			}

			logger.KV(xlog.DEBUG,
				"status", "created_llm",
				"model", cfg.DefaultModel,
				"name", cfg.Name)

			f.byName[name] = model
			return model, nil
		}
	}
	return nil, errors.Errorf("provider not found for name: %s", name)
}

// DefaultEmbedder returns an embedder backed by the first configured provider.
func (f *factory) DefaultEmbedder() (embed.Embedder, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	cfg := f.cfg.Providers[0]
	return embed.NewOpenAI(&embed.OpenAIConfig{
		Token:   cfg.Token,
		Model:   cfg.EmbeddingModel,
		BaseURL: cfg.BaseURL,
	}), nil
}
