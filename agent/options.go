package agent

import (
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/store"
)

// DefaultMaxIterations bounds the iterate-call-observe cycle per
// ProcessMessage call.
const DefaultMaxIterations = 10

// Config is the Agent configuration, assembled from Options.
type Config struct {
	// MaxIterations bounds unproductive cycling; DefaultMaxIterations
	// when zero.
	MaxIterations int
	// SystemPrompt is prepended to the conversation when set.
	SystemPrompt string
	// Callback receives loop events; a no-op sink when nil.
	Callback Callback
	// ResolveOrigin resolves ambiguous tool origins; first origin in
	// aggregation order when nil.
	ResolveOrigin ResolveOriginFunc
	// Executor bridges remote tool calls; required when remote servers
	// are attached.
	Executor Executor
	// Store persists conversation history across Agent instances.
	Store store.MessageStore
	// CallOptions are forwarded to every model call.
	CallOptions []llms.CallOption
}

// Option configures the Agent.
type Option func(*Config)

// NewConfig applies the options over the defaults.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		MaxIterations: DefaultMaxIterations,
		Callback:      noopCallback{},
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Callback == nil {
		cfg.Callback = noopCallback{}
	}
	return cfg
}

// WithMaxIterations sets the iteration cap per ProcessMessage call.
func WithMaxIterations(max int) Option {
	return func(c *Config) {
		c.MaxIterations = max
	}
}

// WithSystemPrompt sets the system message for new conversations.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithCallback sets the event sink.
func WithCallback(cb Callback) Option {
	return func(c *Config) {
		c.Callback = cb
	}
}

// WithResolveOrigin sets the ambiguous-origin resolver.
func WithResolveOrigin(f ResolveOriginFunc) Option {
	return func(c *Config) {
		c.ResolveOrigin = f
	}
}

// WithExecutor sets the remote-call executor.
func WithExecutor(e Executor) Option {
	return func(c *Config) {
		c.Executor = e
	}
}

// WithStore sets the conversation history store.
func WithStore(s store.MessageStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithCallOptions adds model call options.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(c *Config) {
		c.CallOptions = append(c.CallOptions, opts...)
	}
}
