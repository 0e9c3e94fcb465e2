package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/agent"
	"github.com/effective-security/agentui/callbacks"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/stretchr/testify/assert"
)

func sampleCall() llms.ToolCall {
	return llms.ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: llms.FunctionCall{
			Name:      "create_page",
			Arguments: `{"title":"Sales"}`,
		},
	}
}

func fireAll(cb agent.Callback) {
	ctx := context.Background()
	cb.OnProcessStart(ctx, nil, "hello")
	cb.OnLLMCallStart(ctx, nil, []llms.Message{llms.UserMessage("hello")})
	cb.OnLLMCallEnd(ctx, nil, &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "hi"}}})
	cb.OnToolCall(ctx, nil, sampleCall(), agent.OriginLocal)
	cb.OnToolResult(ctx, nil, sampleCall(), `{"page_id":"p1"}`)
	cb.OnToolNotFound(ctx, nil, "no_such_tool")
	cb.OnProcessEnd(ctx, nil, "hello", "done")
	cb.OnProcessError(ctx, nil, "hello", errors.New("failed"))
}

func Test_Noop(t *testing.T) {
	fireAll(callbacks.NewNoop())
}

func Test_Printer(t *testing.T) {
	var buf bytes.Buffer
	fireAll(callbacks.NewPrinter(&buf, callbacks.ModeVerbose))

	out := buf.String()
	assert.Contains(t, out, "Process Start")
	assert.Contains(t, out, "LLM Call: 1 messages")
	assert.Contains(t, out, "Tool Call: create_page (local)")
	assert.Contains(t, out, `Output: {"page_id":"p1"}`)
	assert.Contains(t, out, "Tool Not Found: no_such_tool")
	assert.Contains(t, out, "Process Error: failed")
}

func Test_Printer_DefaultMode(t *testing.T) {
	var buf bytes.Buffer
	fireAll(callbacks.NewPrinter(&buf, callbacks.ModeDefault))

	out := buf.String()
	assert.Contains(t, out, "Tool Result: create_page")
	assert.NotContains(t, out, "Output:")
	assert.NotContains(t, out, "Arguments:")
}

func Test_Fanout(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	fo := callbacks.NewFanout(callbacks.NewPrinter(&buf1, callbacks.ModeDefault))
	fo.Add(callbacks.NewPrinter(&buf2, callbacks.ModeVerbose))

	fireAll(fo)
	assert.NotEmpty(t, buf1.String())
	assert.NotEmpty(t, buf2.String())
	assert.NotEqual(t, buf1.String(), buf2.String())
}
