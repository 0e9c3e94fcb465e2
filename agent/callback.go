package agent

import (
	"context"

	"github.com/effective-security/agentui/pkg/llms"
)

// Callback is an event sink written to by the conversation loop.
// The loop never depends on what the sink does with the events, so
// implementations may render, log, or discard them.
type Callback interface {
	OnProcessStart(ctx context.Context, agent *Agent, input string)
	OnProcessEnd(ctx context.Context, agent *Agent, input string, result string)
	OnProcessError(ctx context.Context, agent *Agent, input string, err error)

	OnLLMCallStart(ctx context.Context, agent *Agent, messages []llms.Message)
	OnLLMCallEnd(ctx context.Context, agent *Agent, resp *llms.ContentResponse)

	OnToolCall(ctx context.Context, agent *Agent, call llms.ToolCall, origin string)
	OnToolResult(ctx context.Context, agent *Agent, call llms.ToolCall, result string)
	OnToolNotFound(ctx context.Context, agent *Agent, name string)
}

// noopCallback is the default sink.
type noopCallback struct{}

func (noopCallback) OnProcessStart(context.Context, *Agent, string)              {}
func (noopCallback) OnProcessEnd(context.Context, *Agent, string, string)        {}
func (noopCallback) OnProcessError(context.Context, *Agent, string, error)       {}
func (noopCallback) OnLLMCallStart(context.Context, *Agent, []llms.Message)      {}
func (noopCallback) OnLLMCallEnd(context.Context, *Agent, *llms.ContentResponse) {}
func (noopCallback) OnToolCall(context.Context, *Agent, llms.ToolCall, string)   {}
func (noopCallback) OnToolResult(context.Context, *Agent, llms.ToolCall, string) {}
func (noopCallback) OnToolNotFound(context.Context, *Agent, string)              {}

var _ Callback = noopCallback{}
