package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/pkg/llms/openai"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, requests *[]goopenai.ChatCompletionRequest, resp goopenai.ChatCompletionResponse) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req goopenai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_GenerateContent(t *testing.T) {
	var requests []goopenai.ChatCompletionRequest
	srv := completionServer(t, &requests, goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{
			{
				Message:      goopenai.ChatCompletionMessage{Content: "4"},
				FinishReason: goopenai.FinishReasonStop,
			},
		},
		Usage: goopenai.Usage{PromptTokens: 12, CompletionTokens: 1, TotalTokens: 13},
	})

	client := openai.New(openai.Config{
		Token:   "sk-test",
		Model:   "gpt-4o",
		BaseURL: srv.URL,
	})
	assert.Equal(t, "gpt-4o", client.GetName())

	resp, err := client.GenerateContent(context.Background(),
		[]llms.Message{
			llms.SystemMessage("be brief"),
			llms.UserMessage("2+2?"),
		},
		llms.WithTemperature(0.5),
		llms.WithMaxTokens(100),
	)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "4", resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.Equal(t, 13, resp.Usage.TotalTokens)

	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, float32(0.5), req.Temperature)
	assert.Equal(t, 100, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "2+2?", req.Messages[1].Content)
	// no tools requested
	assert.Empty(t, req.Tools)
	assert.Nil(t, req.ToolChoice)
}

func Test_GenerateContent_ToolCalls(t *testing.T) {
	var requests []goopenai.ChatCompletionRequest
	srv := completionServer(t, &requests, goopenai.ChatCompletionResponse{
		Choices: []goopenai.ChatCompletionChoice{
			{
				Message: goopenai.ChatCompletionMessage{
					ToolCalls: []goopenai.ToolCall{
						{
							ID:   "call_1",
							Type: goopenai.ToolTypeFunction,
							Function: goopenai.FunctionCall{
								Name:      "list_pages",
								Arguments: `{"limit":5}`,
							},
						},
					},
				},
				FinishReason: goopenai.FinishReasonToolCalls,
			},
		},
	})

	client := openai.New(openai.Config{
		Token:   "sk-test",
		Model:   "gpt-4o",
		BaseURL: srv.URL,
	})

	history := []llms.Message{
		llms.UserMessage("list my pages"),
		llms.AssistantToolCalls("", llms.ToolCall{
			ID:   "call_0",
			Type: "function",
			FunctionCall: llms.FunctionCall{
				Name:      "search_tools",
				Arguments: `{"query":"pages"}`,
			},
		}),
		llms.ToolMessage("call_0", "[]"),
	}
	resp, err := client.GenerateContent(context.Background(), history,
		llms.WithTools([]llms.Tool{
			{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        "list_pages",
					Description: "List pages in the workspace",
				},
			},
		}),
	)
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	calls := resp.Choices[0].ToolCalls
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, "function", calls[0].Type)
	assert.Equal(t, "list_pages", calls[0].FunctionCall.Name)
	assert.Equal(t, `{"limit":5}`, calls[0].FunctionCall.Arguments)

	require.Len(t, requests, 1)
	req := requests[0]
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "list_pages", req.Tools[0].Function.Name)
	assert.Equal(t, "auto", req.ToolChoice)

	// tool call history round-trips with IDs intact
	require.Len(t, req.Messages, 3)
	assistant := req.Messages[1]
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call_0", assistant.ToolCalls[0].ID)
	assert.Equal(t, "call_0", req.Messages[2].ToolCallID)
}

func Test_GenerateContent_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := openai.New(openai.Config{
		Token:   "sk-test",
		Model:   "gpt-4o",
		BaseURL: srv.URL,
	})
	_, err := client.GenerateContent(context.Background(), []llms.Message{llms.UserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai completion failed")
}
