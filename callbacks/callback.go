package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/agentui/agent"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agent.Callback = (*Noop)(nil)
	_ agent.Callback = (*Printer)(nil)
	_ agent.Callback = (*PackageLogger)(nil)
	_ agent.Callback = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agent.Callback
}

func NewFanout(callbacks ...agent.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agent.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnProcessStart(ctx context.Context, ag *agent.Agent, input string) {
	for _, callback := range l.callbacks {
		callback.OnProcessStart(ctx, ag, input)
	}
}

func (l *Fanout) OnProcessEnd(ctx context.Context, ag *agent.Agent, input, result string) {
	for _, callback := range l.callbacks {
		callback.OnProcessEnd(ctx, ag, input, result)
	}
}

func (l *Fanout) OnProcessError(ctx context.Context, ag *agent.Agent, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnProcessError(ctx, ag, input, err)
	}
}

func (l *Fanout) OnLLMCallStart(ctx context.Context, ag *agent.Agent, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallStart(ctx, ag, messages)
	}
}

func (l *Fanout) OnLLMCallEnd(ctx context.Context, ag *agent.Agent, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnLLMCallEnd(ctx, ag, resp)
	}
}

func (l *Fanout) OnToolCall(ctx context.Context, ag *agent.Agent, call llms.ToolCall, origin string) {
	for _, callback := range l.callbacks {
		callback.OnToolCall(ctx, ag, call, origin)
	}
}

func (l *Fanout) OnToolResult(ctx context.Context, ag *agent.Agent, call llms.ToolCall, result string) {
	for _, callback := range l.callbacks {
		callback.OnToolResult(ctx, ag, call, result)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, ag *agent.Agent, name string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, ag, name)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnProcessStart(ctx context.Context, ag *agent.Agent, input string)       {}
func (l *Noop) OnProcessEnd(ctx context.Context, ag *agent.Agent, input, result string) {}
func (l *Noop) OnProcessError(ctx context.Context, ag *agent.Agent, input string, err error) {
}
func (l *Noop) OnLLMCallStart(ctx context.Context, ag *agent.Agent, messages []llms.Message) {}
func (l *Noop) OnLLMCallEnd(ctx context.Context, ag *agent.Agent, resp *llms.ContentResponse) {
}
func (l *Noop) OnToolCall(ctx context.Context, ag *agent.Agent, call llms.ToolCall, origin string) {
}
func (l *Noop) OnToolResult(ctx context.Context, ag *agent.Agent, call llms.ToolCall, result string) {
}
func (l *Noop) OnToolNotFound(ctx context.Context, ag *agent.Agent, name string) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnProcessStart(ctx context.Context, ag *agent.Agent, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Process Start\nInput: %s\n", input)
}

func (l *Printer) OnProcessEnd(ctx context.Context, ag *agent.Agent, input, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintln(l.Out, "Process End")
	if l.Mode == ModeVerbose {
		fmt.Fprintln(l.Out, result)
	}
}

func (l *Printer) OnProcessError(ctx context.Context, ag *agent.Agent, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Process Error: %s\n", err.Error())
}

func (l *Printer) OnLLMCallStart(ctx context.Context, ag *agent.Agent, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Call: %d messages\n", len(messages))
}

func (l *Printer) OnLLMCallEnd(ctx context.Context, ag *agent.Agent, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Call End: %d choices\n", len(resp.Choices))
}

func (l *Printer) OnToolCall(ctx context.Context, ag *agent.Agent, call llms.ToolCall, origin string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Call: %s (%s)\n", call.FunctionCall.Name, origin)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Arguments: %s\n", call.FunctionCall.Arguments)
	}
}

func (l *Printer) OnToolResult(ctx context.Context, ag *agent.Agent, call llms.ToolCall, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Result: %s\n", call.FunctionCall.Name)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result)
	}
}

func (l *Printer) OnToolNotFound(ctx context.Context, ag *agent.Agent, name string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", name)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnProcessStart(ctx context.Context, ag *agent.Agent, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "process_start",
		"input", input,
	)
}

func (l *PackageLogger) OnProcessEnd(ctx context.Context, ag *agent.Agent, input, result string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "process_end",
		"result", result,
	)
}

func (l *PackageLogger) OnProcessError(ctx context.Context, ag *agent.Agent, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "process_error",
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnLLMCallStart(ctx context.Context, ag *agent.Agent, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_start",
		"messages", len(messages),
	)
}

func (l *PackageLogger) OnLLMCallEnd(ctx context.Context, ag *agent.Agent, resp *llms.ContentResponse) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_end",
		"choices", len(resp.Choices),
	)
}

func (l *PackageLogger) OnToolCall(ctx context.Context, ag *agent.Agent, call llms.ToolCall, origin string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_call",
		"tool", call.FunctionCall.Name,
		"origin", origin,
		"input", call.FunctionCall.Arguments,
	)
}

func (l *PackageLogger) OnToolResult(ctx context.Context, ag *agent.Agent, call llms.ToolCall, result string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_result",
		"tool", call.FunctionCall.Name,
		"output", result,
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, ag *agent.Agent, name string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"tool", name,
	)
}
