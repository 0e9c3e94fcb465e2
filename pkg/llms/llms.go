package llms

import "context"

// Model is the interface for chat completion providers.
// The agent treats the completion call as an opaque boundary:
// a message history plus optional tool schemas go in, one
// assistant message (possibly carrying tool calls) comes out.
type Model interface {
	// GetName returns the provider model name, used for metrics tags.
	GetName() string

	// GenerateContent requests a completion for the given message history.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// CallOption is a function that configures a CallOptions.
type CallOption func(*CallOptions)

// CallOptions is a set of options for LLM calls.
type CallOptions struct {
	// Model is the model name override to use in this call.
	Model string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the sampling temperature, between 0 and 1.
	Temperature float64
	// Tools is a list of tool schemas the model may call.
	Tools []Tool
	// ToolChoice is "none", "auto" (default), or a specific tool.
	ToolChoice any
}

// WithModel specifies which model name to use.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithTools specifies the tool schemas visible to the model for this call.
func WithTools(tools []Tool) CallOption {
	return func(o *CallOptions) {
		o.Tools = tools
	}
}

// WithToolChoice specifies the tool choice mode.
func WithToolChoice(choice any) CallOption {
	return func(o *CallOptions) {
		o.ToolChoice = choice
	}
}
