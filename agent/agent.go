package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/pkg/metricskey"
	"github.com/effective-security/agentui/tools"
	"github.com/effective-security/agentui/toolset"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "agent")

var (
	// ErrEmptyResponse is returned when the model produces no choices.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrEmptyContent is returned when the final answer has no content.
	ErrEmptyContent = errors.New("model did not return a response content")
	// ErrNoExecutor is returned when a remote tool call is attempted
	// without a configured Executor.
	ErrNoExecutor = errors.New("executor is required for remote tool calls")
)

// MaxIterationsMessage is returned as a normal result when the
// iteration cap is exhausted before a final answer.
const MaxIterationsMessage = "Maximum iterations reached without completion."

// Agent drives the bounded iterate-call-observe cycle against the
// model, routing tool calls between the local pool and attached remote
// servers. An Agent is scoped to one logical conversation; Close
// disconnects the remote servers.
type Agent struct {
	llm     llms.Model
	toolset *toolset.Manager
	cfg     *Config

	localTools  map[string]tools.ITool
	remoteNames []string
	remotes     map[string]RemoteServer

	messages []llms.Message
	resumed  bool
}

// New creates an Agent over the model and tool manager.
func New(llmModel llms.Model, manager *toolset.Manager, options ...Option) *Agent {
	return &Agent{
		llm:        llmModel,
		toolset:    manager,
		cfg:        NewConfig(options...),
		localTools: make(map[string]tools.ITool),
		remotes:    make(map[string]RemoteServer),
	}
}

// Toolset returns the tool manager.
func (a *Agent) Toolset() *toolset.Manager {
	return a.toolset
}

// Messages returns the accumulated conversation history.
func (a *Agent) Messages() []llms.Message {
	return a.messages
}

// AddLocalTool binds a local tool so its calls execute in-line. The
// definition still needs to be registered with the tool manager to
// become visible to the model.
func (a *Agent) AddLocalTool(t tools.ITool) {
	a.localTools[t.Name()] = t
}

// RegisterLocalTool binds a local tool and registers its definition
// with the tool manager in one step.
func (a *Agent) RegisterLocalTool(ctx context.Context, t tools.ITool, keywords []string, category string, alwaysLoad bool) {
	a.AddLocalTool(t)
	a.toolset.RegisterTool(ctx, t.Name(), tools.DefinitionOf(t), keywords, category, alwaysLoad)
}

// AddRemoteServer attaches a connected remote tool server under the
// given identifier. Attachment order determines origin precedence.
func (a *Agent) AddRemoteServer(name string, server RemoteServer) error {
	if name == OriginLocal {
		return errors.Newf("server name %q is reserved", OriginLocal)
	}
	if _, exists := a.remotes[name]; exists {
		return errors.Newf("server %q is already attached", name)
	}
	a.remoteNames = append(a.remoteNames, name)
	a.remotes[name] = server
	return nil
}

// Close disconnects all remote servers.
func (a *Agent) Close(ctx context.Context) error {
	var errs error
	for _, name := range a.remoteNames {
		if err := a.remotes[name].Disconnect(ctx); err != nil {
			errs = errors.CombineErrors(errs, errors.WithMessagef(err, "failed to disconnect server %q", name))
		}
	}
	return errs
}

// ProcessMessage appends the user message and runs the conversation
// loop until the model produces a final answer, the iteration cap is
// reached, or an unrecoverable error occurs. The max-iterations
// outcome is a normal result, not an error.
func (a *Agent) ProcessMessage(ctx context.Context, userInput string) (string, error) {
	started := time.Now()
	defer metricskey.PerfAgentCall.MeasureSince(started)

	a.cfg.Callback.OnProcessStart(ctx, a, userInput)

	result, err := a.run(ctx, userInput)
	if err != nil {
		metricskey.StatsAgentCallsFailed.IncrCounter(1)
		a.cfg.Callback.OnProcessError(ctx, a, userInput, err)
		return "", err
	}
	metricskey.StatsAgentCallsSucceeded.IncrCounter(1)
	a.cfg.Callback.OnProcessEnd(ctx, a, userInput, result)
	return result, nil
}

func (a *Agent) run(ctx context.Context, userInput string) (string, error) {
	if !a.resumed {
		a.resumed = true
		if a.cfg.SystemPrompt != "" {
			a.messages = append(a.messages, llms.SystemMessage(a.cfg.SystemPrompt))
		}
		if a.cfg.Store != nil {
			prev := a.cfg.Store.Messages(ctx)
			logger.ContextKV(ctx, xlog.DEBUG, "resumed_messages", len(prev))
			a.messages = append(a.messages, prev...)
		}
	}

	a.appendMessage(ctx, llms.UserMessage(userInput))

	modelName := a.llm.GetName()
	for iteration := 1; iteration <= a.cfg.MaxIterations; iteration++ {
		// rebuilt every turn so tools activated by search_tools become
		// visible on the next completion
		table := a.buildRouteTable()
		callOpts := a.cfg.CallOptions
		if len(table.schemas) > 0 {
			callOpts = append(callOpts[:len(callOpts):len(callOpts)], llms.WithTools(table.schemas))
		}

		a.cfg.Callback.OnLLMCallStart(ctx, a, a.messages)
		metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(a.messages)), modelName)

		resp, err := a.llm.GenerateContent(ctx, a.messages, callOpts...)
		if err != nil {
			return "", errors.WithMessage(err, "failed to generate content")
		}
		a.cfg.Callback.OnLLMCallEnd(ctx, a, resp)
		if resp.Usage.TotalTokens > 0 {
			metricskey.StatsLLMInputTokens.IncrCounter(float64(resp.Usage.PromptTokens), modelName)
			metricskey.StatsLLMOutputTokens.IncrCounter(float64(resp.Usage.CompletionTokens), modelName)
			metricskey.StatsLLMTotalTokens.IncrCounter(float64(resp.Usage.TotalTokens), modelName)
		}

		if len(resp.Choices) == 0 {
			return "", errors.WithStack(ErrEmptyResponse)
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			if choice.Content == "" {
				return "", errors.WithStack(ErrEmptyContent)
			}
			a.appendMessage(ctx, llms.AssistantMessage(choice.Content))
			return choice.Content, nil
		}

		calls := make([]llms.ToolCall, len(choice.ToolCalls))
		for i, call := range choice.ToolCalls {
			if call.ID == "" {
				call.ID = fmt.Sprintf("%s_%d", call.FunctionCall.Name, i)
			}
			call.Type = values.StringsCoalesce(call.Type, "function")
			calls[i] = call
		}

		// history reflects what was requested even if execution fails
		a.appendMessage(ctx, llms.AssistantToolCalls(choice.Content, calls...))

		for _, call := range calls {
			result, err := a.executeCall(ctx, table, call)
			if err != nil {
				return "", err
			}
			a.cfg.Callback.OnToolResult(ctx, a, call, result)
			a.appendMessage(ctx, llms.ToolMessage(call.ID, result))
		}
	}

	metricskey.StatsAgentMaxIterations.IncrCounter(1)
	logger.ContextKV(ctx, xlog.WARNING,
		"status", "max_iterations",
		"iterations", a.cfg.MaxIterations,
		"input", slices.StringUpto(userInput, 64))
	return MaxIterationsMessage, nil
}

// executeCall routes and executes one tool call. A tool that cannot be
// found or fails produces an error-describing result string so the
// model can adapt; only configuration errors fail the whole call.
func (a *Agent) executeCall(ctx context.Context, table *routeTable, call llms.ToolCall) (string, error) {
	name := call.FunctionCall.Name

	origins := table.origins[name]
	if len(origins) == 0 {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		a.cfg.Callback.OnToolNotFound(ctx, a, name)
		logger.ContextKV(ctx, xlog.WARNING, "reason", "tool_not_found", "tool", name)
		return fmt.Sprintf("Error: Tool '%s' not found in available tools.", name), nil
	}

	origin := a.resolveOrigin(ctx, name, origins)
	a.cfg.Callback.OnToolCall(ctx, a, call, origin)

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, name, origin)

	var result string
	var err error
	if origin == OriginLocal {
		t := a.localTools[name]
		if t == nil {
			err = errors.Newf("tool %q is active but has no local binding", name)
		} else {
			result, err = t.Call(ctx, call.FunctionCall.Arguments)
		}
	} else {
		if a.cfg.Executor == nil {
			return "", errors.WithStack(ErrNoExecutor)
		}
		server := a.remotes[origin]
		result, err = a.cfg.Executor.Submit(ctx, func(ctx context.Context) (string, error) {
			return server.CallTool(ctx, name, call.FunctionCall.Arguments)
		})
	}
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name, origin)
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "tool_call_failed",
			"tool", name,
			"origin", origin,
			"err", err.Error())
		return fmt.Sprintf("Tool call failed: %s", err.Error()), nil
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name, origin)
	return result, nil
}

func (a *Agent) appendMessage(ctx context.Context, msg llms.Message) {
	a.messages = append(a.messages, msg)
	if a.cfg.Store != nil {
		if err := a.cfg.Store.Add(ctx, msg); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "store_add", "err", err.Error())
		}
	}
}
