package agent_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/agent"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/store"
	"github.com/effective-security/agentui/toolset"
	"github.com/effective-security/agentui/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel replays scripted responses in order. Once the script is
// exhausted it keeps returning the last response.
type fakeModel struct {
	responses []*llms.ContentResponse
	requests  [][]llms.Message
	toolSets  [][]llms.Tool
	err       error
}

func (m *fakeModel) GetName() string { return "fake-model" }

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.requests = append(m.requests, append([]llms.Message{}, messages...))
	m.toolSets = append(m.toolSets, opts.Tools)

	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
		Usage:   llms.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func toolCallResponse(calls ...llms.ToolCall) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{ToolCalls: calls}},
	}
}

func call(id, name, args string) llms.ToolCall {
	return llms.ToolCall{
		ID:   id,
		Type: "function",
		FunctionCall: llms.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

type echoArgs struct {
	Value string `json:"value"`
}

func echoTool(t *testing.T) tools.ITool {
	t.Helper()
	tl, err := tools.NewFunc("echo", "Echoes the value back.",
		func(_ context.Context, in *echoArgs) (*string, error) {
			out := "echo:" + in.Value
			return &out, nil
		})
	require.NoError(t, err)
	return tl
}

// fakeServer is a RemoteServer advertising fixed tools.
type fakeServer struct {
	tools        []tools.Definition
	callErr      error
	calls        []string
	disconnected bool
}

func (s *fakeServer) Tools() []tools.Definition { return s.tools }

func (s *fakeServer) CallTool(_ context.Context, name, arguments string) (string, error) {
	s.calls = append(s.calls, name)
	if s.callErr != nil {
		return "", s.callErr
	}
	return "remote:" + name + ":" + arguments, nil
}

func (s *fakeServer) Disconnect(context.Context) error {
	s.disconnected = true
	return nil
}

func newAgent(t *testing.T, model llms.Model, options ...agent.Option) *agent.Agent {
	t.Helper()
	mgr := toolset.NewManager(nil)
	ag := agent.New(model, mgr, options...)
	ag.RegisterLocalTool(context.Background(), echoTool(t), []string{"echo"}, "general", true)
	return ag
}

func Test_ProcessMessage_FinalAnswer(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("Hello there.")}}
	ag := newAgent(t, model)

	result, err := ag.ProcessMessage(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", result)

	// exactly one iteration, history grows by one user and one assistant entry
	require.Len(t, model.requests, 1)
	msgs := ag.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleUser, msgs[0].Role)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, llms.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello there.", msgs[1].Content)

	// origin is a local annotation, never sent to the model
	require.Len(t, model.toolSets[0], 1)
	assert.Equal(t, "echo", model.toolSets[0][0].Function.Name)
}

func Test_ProcessMessage_ToolCall(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "echo", `{"value":"ping"}`)),
		textResponse("Done."),
	}}
	ag := newAgent(t, model)

	result, err := ag.ProcessMessage(context.Background(), "echo ping")
	require.NoError(t, err)
	assert.Equal(t, "Done.", result)

	// user, assistant tool-call record, tool result, final assistant
	msgs := ag.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, llms.RoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, llms.RoleTool, msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCallID)
	assert.Equal(t, `{"value":"ping"}`, msgs[1].ToolCalls[0].FunctionCall.Arguments)
	assert.Equal(t, "echo:ping", msgs[2].Content)

	// second completion saw the tool result
	require.Len(t, model.requests, 2)
	assert.Len(t, model.requests[1], 3)
}

func Test_ProcessMessage_ToolNotFound(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "no_such_tool", `{}`)),
		textResponse("I could not find that tool."),
	}}
	ag := newAgent(t, model)

	result, err := ag.ProcessMessage(context.Background(), "run the mystery tool")
	require.NoError(t, err)
	assert.Equal(t, "I could not find that tool.", result)

	msgs := ag.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, llms.RoleTool, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, "Tool 'no_such_tool' not found in available tools.")
}

func Test_ProcessMessage_MaxIterations(t *testing.T) {
	// the model never stops calling the unknown tool
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("", "no_such_tool", `{}`)),
	}}
	ag := newAgent(t, model, agent.WithMaxIterations(3))

	result, err := ag.ProcessMessage(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, agent.MaxIterationsMessage, result)
	require.Len(t, model.requests, 3)

	// every turn recorded the request and the synthesized result
	msgs := ag.Messages()
	require.Len(t, msgs, 7)
	// empty call IDs get deterministic fallbacks
	assert.Equal(t, "no_such_tool_0", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, "no_such_tool_0", msgs[2].ToolCallID)
}

func Test_ProcessMessage_EmptyResponse(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{{}}}
	ag := newAgent(t, model)

	_, err := ag.ProcessMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrEmptyResponse)
}

func Test_ProcessMessage_EmptyContent(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		{Choices: []*llms.ContentChoice{{Content: ""}}},
	}}
	ag := newAgent(t, model)

	_, err := ag.ProcessMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrEmptyContent)
}

func Test_ProcessMessage_LLMError(t *testing.T) {
	model := &fakeModel{err: errors.New("service unavailable")}
	ag := newAgent(t, model)

	_, err := ag.ProcessMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to generate content")
}

func Test_ProcessMessage_ToolErrorDoesNotAbortBatch(t *testing.T) {
	failing, err := tools.NewFunc("broken", "Always fails.",
		func(_ context.Context, in *echoArgs) (*string, error) {
			return nil, errors.New("boom")
		})
	require.NoError(t, err)

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(
			call("call_1", "broken", `{}`),
			call("call_2", "echo", `{"value":"still works"}`),
		),
		textResponse("Recovered."),
	}}
	ag := newAgent(t, model)
	ag.RegisterLocalTool(context.Background(), failing, []string{"broken"}, "general", true)

	result, err := ag.ProcessMessage(context.Background(), "run both")
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", result)

	msgs := ag.Messages()
	require.Len(t, msgs, 5)
	assert.Contains(t, msgs[2].Content, "Tool call failed:")
	assert.Contains(t, msgs[2].Content, "boom")
	assert.Equal(t, "echo:still works", msgs[3].Content)
}

func Test_ProcessMessage_RemoteTool(t *testing.T) {
	server := &fakeServer{tools: []tools.Definition{{
		Name:        "list_widgets",
		Description: "Lists widgets on the remote server.",
		Parameters:  map[string]any{"type": "object"},
	}}}

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "list_widgets", `{"page":"sales"}`)),
		textResponse("Found 3 widgets."),
	}}

	exec := agent.NewSerialExecutor()
	defer exec.Close()

	ag := newAgent(t, model, agent.WithExecutor(exec))
	require.NoError(t, ag.AddRemoteServer("widgets", server))

	result, err := ag.ProcessMessage(context.Background(), "list widgets")
	require.NoError(t, err)
	assert.Equal(t, "Found 3 widgets.", result)
	assert.Equal(t, []string{"list_widgets"}, server.calls)
	assert.Equal(t, `remote:list_widgets:{"page":"sales"}`, ag.Messages()[2].Content)

	require.NoError(t, ag.Close(context.Background()))
	assert.True(t, server.disconnected)
}

func Test_ProcessMessage_RemoteWithoutExecutor(t *testing.T) {
	server := &fakeServer{tools: []tools.Definition{{
		Name:       "list_widgets",
		Parameters: map[string]any{"type": "object"},
	}}}

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "list_widgets", `{}`)),
	}}
	ag := newAgent(t, model)
	require.NoError(t, ag.AddRemoteServer("widgets", server))

	_, err := ag.ProcessMessage(context.Background(), "list widgets")
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrNoExecutor)
	assert.Empty(t, server.calls)
}

func Test_ProcessMessage_AmbiguousOrigin(t *testing.T) {
	server := &fakeServer{tools: []tools.Definition{{
		Name:        "echo",
		Description: "Remote echo.",
		Parameters:  map[string]any{"type": "object"},
	}}}

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "echo", `{"value":"x"}`)),
		textResponse("ok"),
	}}

	// without a resolver, the local pool wins
	exec := agent.NewSerialExecutor()
	defer exec.Close()
	ag := newAgent(t, model, agent.WithExecutor(exec))
	require.NoError(t, ag.AddRemoteServer("widgets", server))

	_, err := ag.ProcessMessage(context.Background(), "echo x")
	require.NoError(t, err)
	assert.Equal(t, "echo:x", ag.Messages()[2].Content)
	assert.Empty(t, server.calls)
}

func Test_ProcessMessage_AmbiguousOrigin_Resolver(t *testing.T) {
	server := &fakeServer{tools: []tools.Definition{{
		Name:        "echo",
		Description: "Remote echo.",
		Parameters:  map[string]any{"type": "object"},
	}}}

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "echo", `{"value":"x"}`)),
		textResponse("ok"),
	}}

	var seenOrigins []string
	exec := agent.NewSerialExecutor()
	defer exec.Close()
	ag := newAgent(t, model,
		agent.WithExecutor(exec),
		agent.WithResolveOrigin(func(name string, origins []string) string {
			seenOrigins = origins
			return "widgets"
		}))
	require.NoError(t, ag.AddRemoteServer("widgets", server))

	_, err := ag.ProcessMessage(context.Background(), "echo x")
	require.NoError(t, err)
	assert.Equal(t, []string{agent.OriginLocal, "widgets"}, seenOrigins)
	assert.Equal(t, []string{"echo"}, server.calls)
}

func Test_ProcessMessage_ResolverReturnsUnknownOrigin(t *testing.T) {
	server := &fakeServer{tools: []tools.Definition{{
		Name:        "echo",
		Description: "Remote echo.",
		Parameters:  map[string]any{"type": "object"},
	}}}

	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "echo", `{"value":"x"}`)),
		textResponse("ok"),
	}}
	ag := newAgent(t, model,
		agent.WithResolveOrigin(func(string, []string) string { return "bogus" }))
	require.NoError(t, ag.AddRemoteServer("widgets", server))

	// falls back to the first origin, which is local
	_, err := ag.ProcessMessage(context.Background(), "echo x")
	require.NoError(t, err)
	assert.Equal(t, "echo:x", ag.Messages()[2].Content)
}

func Test_ProcessMessage_SearchToolExpandsToolset(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{
		toolCallResponse(call("call_1", "search_tools", `{"query":"create page layouts"}`)),
		textResponse("Found the tool."),
	}}

	mgr := toolset.NewManager(nil)
	ag := agent.New(model, mgr)

	st := toolset.NewSearchTool(mgr, "ui_management", "general")
	ag.AddLocalTool(st)
	st.Register(context.Background(), []string{"search"})

	createPage, err := tools.NewFunc("create_page", "Creates a new page.",
		func(_ context.Context, in *echoArgs) (*string, error) { return nil, nil })
	require.NoError(t, err)
	ag.RegisterLocalTool(context.Background(), createPage, []string{"create page"}, "ui_management", false)

	_, err = ag.ProcessMessage(context.Background(), "make me a page")
	require.NoError(t, err)

	// first turn exposed only the meta-tool, the second saw create_page
	require.Len(t, model.toolSets, 2)
	require.Len(t, model.toolSets[0], 1)
	assert.Equal(t, "search_tools", model.toolSets[0][0].Function.Name)
	require.Len(t, model.toolSets[1], 2)
	assert.Equal(t, "create_page", model.toolSets[1][1].Function.Name)
}

func Test_ProcessMessage_StoreResume(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("Second answer.")}}
	first := newAgent(t, model, agent.WithStore(st))
	_, err := first.ProcessMessage(ctx, "first question")
	require.NoError(t, err)

	// a new agent over the same store resumes the history
	model2 := &fakeModel{responses: []*llms.ContentResponse{textResponse("With context.")}}
	second := newAgent(t, model2, agent.WithStore(st))
	_, err = second.ProcessMessage(ctx, "follow-up")
	require.NoError(t, err)

	require.Len(t, model2.requests, 1)
	sent := model2.requests[0]
	require.Len(t, sent, 3)
	assert.Equal(t, "first question", sent[0].Content)
	assert.Equal(t, "Second answer.", sent[1].Content)
	assert.Equal(t, "follow-up", sent[2].Content)
}

func Test_ProcessMessage_SystemPrompt(t *testing.T) {
	model := &fakeModel{responses: []*llms.ContentResponse{textResponse("ok")}}
	ag := newAgent(t, model, agent.WithSystemPrompt("You drive a dashboard UI."))

	_, err := ag.ProcessMessage(context.Background(), "hi")
	require.NoError(t, err)

	sent := model.requests[0]
	require.Len(t, sent, 2)
	assert.Equal(t, llms.RoleSystem, sent[0].Role)
	assert.Equal(t, "You drive a dashboard UI.", sent[0].Content)
}

func Test_AddRemoteServer_Validation(t *testing.T) {
	model := &fakeModel{}
	ag := newAgent(t, model)

	require.Error(t, ag.AddRemoteServer("local", &fakeServer{}))
	require.NoError(t, ag.AddRemoteServer("widgets", &fakeServer{}))
	require.Error(t, ag.AddRemoteServer("widgets", &fakeServer{}))
}
