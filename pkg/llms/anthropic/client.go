// Package anthropic adapts the Anthropic Messages API to llms.Model.
package anthropic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/pkg/metricskey"
)

const DefaultMaxTokens = 4096

// Config describes the Anthropic provider.
type Config struct {
	Token string
	Model string
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Client implements llms.Model over the Anthropic Messages API.
type Client struct {
	api   *anthropic.Client
	model string
}

var _ llms.Model = (*Client)(nil)

// New creates a client for the Anthropic API.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("anthropic: token is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(cfg.Token),
		option.WithMaxRetries(2),
		option.WithRequestTimeout(5 * time.Minute),
	}
	if cfg.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(sdkOpts...)
	return &Client{
		api:   &client,
		model: cfg.Model,
	}, nil
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

	sdkMessages, systemPrompt, err := toAnthropicMessages(messages)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model),
		Messages:  sdkMessages,
		MaxTokens: int64(opts.MaxTokens),
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = DefaultMaxTokens
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: systemPrompt,
			},
		}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if len(opts.Tools) > 0 {
		tools, err := toAnthropicTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}

	started := time.Now()
	result, err := c.api.Messages.New(ctx, params)
	metricskey.PerfLLMCall.MeasureSince(started, opts.Model)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to create message")
	}

	// Anthropic returns one message with mixed content blocks;
	// fold them into a single choice so tool calls are never
	// separated from the text that precedes them.
	choice := &llms.ContentChoice{
		StopReason: string(result.StopReason),
	}
	for _, contentBlock := range result.Content {
		switch content := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			choice.Content += content.Text
		case anthropic.ToolUseBlock:
			argumentsJSON, err := json.Marshal(content.Input)
			if err != nil {
				return nil, errors.Wrap(err, "anthropic: failed to marshal tool use arguments")
			}
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   content.ID,
				Type: "function",
				FunctionCall: llms.FunctionCall{
					Name:      content.Name,
					Arguments: string(argumentsJSON),
				},
			})
		default:
			return nil, errors.Newf("anthropic: unsupported content type: %T", content)
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{choice},
		Usage: llms.Usage{
			PromptTokens:     int(result.Usage.InputTokens),
			CompletionTokens: int(result.Usage.OutputTokens),
			TotalTokens:      int(result.Usage.InputTokens + result.Usage.OutputTokens),
		},
	}, nil
}

func toAnthropicMessages(messages []llms.Message) ([]anthropic.MessageParam, string, error) {
	chatMessages := make([]anthropic.MessageParam, 0, len(messages))
	systemPrompt := ""
	for _, msg := range messages {
		switch msg.Role {
		case llms.RoleSystem:
			if systemPrompt != "" {
				systemPrompt += "\n" + msg.Content
			} else {
				systemPrompt = msg.Content
			}
		case llms.RoleUser:
			chatMessages = append(chatMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llms.RoleAssistant:
			var contents []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				contents = append(contents, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var inputJSON json.RawMessage
				if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &inputJSON); err != nil {
					return nil, "", errors.Wrap(err, "anthropic: failed to unmarshal tool call arguments")
				}
				contents = append(contents, anthropic.NewToolUseBlock(tc.ID, inputJSON, tc.FunctionCall.Name))
			}
			if len(contents) == 0 {
				continue
			}
			chatMessages = append(chatMessages, anthropic.NewAssistantMessage(contents...))
		case llms.RoleTool:
			// tool results travel back as user messages
			chatMessages = append(chatMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)))
		default:
			return nil, "", errors.Newf("anthropic: unsupported message role: %v", msg.Role)
		}
	}
	return chatMessages, systemPrompt, nil
}

// paramsSchema is the subset of a JSON schema the Anthropic tool
// input schema carries.
type paramsSchema struct {
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

func toAnthropicTools(tools []llms.Tool) ([]anthropic.ToolUnionParam, error) {
	sdkTools := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Function == nil {
			continue
		}

		// Parameters may be a generated jsonschema value or a plain
		// map advertised by a remote server.
		var params paramsSchema
		if tool.Function.Parameters != nil {
			bs, err := json.Marshal(tool.Function.Parameters)
			if err != nil {
				return nil, errors.Wrapf(err, "anthropic: invalid parameters for tool %q", tool.Function.Name)
			}
			if err := json.Unmarshal(bs, &params); err != nil {
				return nil, errors.Wrapf(err, "anthropic: invalid parameters for tool %q", tool.Function.Name)
			}
		}

		inputSchema := anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: params.Properties,
		}
		if len(params.Required) > 0 {
			inputSchema.Required = params.Required
		}

		sdkTools = append(sdkTools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Function.Name,
				Description: anthropic.String(tool.Function.Description),
				InputSchema: inputSchema,
			},
		})
	}
	return sdkTools, nil
}
