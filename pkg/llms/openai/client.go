// Package openai adapts OpenAI-compatible chat completion APIs to llms.Model.
package openai

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/pkg/metricskey"
	"github.com/effective-security/xlog"
	goopenai "github.com/sashabaranov/go-openai"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "openai")

// Client implements llms.Model over an OpenAI-compatible endpoint.
type Client struct {
	api   *goopenai.Client
	model string
}

var _ llms.Model = (*Client)(nil)

// Config describes an OpenAI-compatible provider.
type Config struct {
	Token string
	Model string
	// BaseURL overrides the API endpoint for compatible providers.
	BaseURL string
	// OrgID specifies which organization's quota and billing should be used.
	OrgID string
}

// New creates a client for an OpenAI-compatible API.
func New(cfg Config) *Client {
	clientCfg := goopenai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.OrgID != "" {
		clientCfg.OrgID = cfg.OrgID
	}
	return &Client{
		api:   goopenai.NewClientWithConfig(clientCfg),
		model: cfg.Model,
	}
}

// GetName returns the configured model name.
func (c *Client) GetName() string {
	return c.model
}

// GenerateContent requests a chat completion.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: c.model,
	}
	for _, opt := range options {
		opt(&opts)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
	if len(opts.Tools) > 0 {
		req.Tools = toOpenAITools(opts.Tools)
		if opts.ToolChoice != nil {
			req.ToolChoice = opts.ToolChoice
		} else {
			req.ToolChoice = "auto"
		}
	}

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	metricskey.PerfLLMCall.MeasureSince(started, opts.Model)
	if err != nil {
		return nil, errors.Wrap(err, "openai completion failed")
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"model", opts.Model,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
	)

	res := &llms.ContentResponse{
		Usage: llms.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		res.Choices = append(res.Choices, &llms.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: string(choice.FinishReason),
			ToolCalls:  fromOpenAIToolCalls(choice.Message.ToolCalls),
		})
	}
	return res, nil
}

func toOpenAIMessages(messages []llms.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := goopenai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.FunctionCall.Name,
					Arguments: tc.FunctionCall.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []llms.Tool) []goopenai.Tool {
	out := make([]goopenai.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		out = append(out, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
				Strict:      t.Function.Strict,
			},
		})
	}
	return out
}

func fromOpenAIToolCalls(toolCalls []goopenai.ToolCall) []llms.ToolCall {
	var out []llms.ToolCall
	for _, tc := range toolCalls {
		out = append(out, llms.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			FunctionCall: llms.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}
