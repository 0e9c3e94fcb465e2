package llms

import (
	"fmt"
)

// Role is the type of chat message.
type Role string

const (
	// RoleSystem is a message that sets the model behavior.
	RoleSystem Role = "system"
	// RoleUser is a message sent by the user.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleTool is a tool execution result.
	RoleTool Role = "tool"
)

// FunctionCall is the name and arguments of a function call.
type FunctionCall struct {
	// Name of the function to call.
	Name string `json:"name"`
	// Arguments to pass to the function, as a JSON string.
	Arguments string `json:"arguments"`
}

// ToolCall is a call to a tool, as requested by the model.
type ToolCall struct {
	// ID is the unique identifier of the tool call.
	ID string `json:"id"`
	// Type of the tool call, typically "function".
	Type string `json:"type"`
	// FunctionCall is the function invocation to execute.
	FunctionCall FunctionCall `json:"function"`
}

func (tc ToolCall) String() string {
	return fmt.Sprintf("ToolCall: %s (%s), input: %s", tc.ID, tc.FunctionCall.Name, tc.FunctionCall.Arguments)
}

// Message is one entry of the conversation history.
// Assistant messages may carry tool calls; tool messages carry
// the ID of the call they respond to and must immediately follow
// the assistant message that requested them.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID is set on tool messages.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message with final content.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AssistantToolCalls creates an assistant message that preserves
// the requested tool calls, keeping the emission order.
func AssistantToolCalls(content string, toolCalls ...ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// ToolMessage creates a tool result message for the given call ID.
func ToolMessage(toolCallID, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

// FunctionDefinition is the definition of a callable function.
type FunctionDefinition struct {
	// Name of the function.
	Name string `json:"name"`
	// Description of what the function does, for the model.
	Description string `json:"description"`
	// Parameters is the JSON schema of the function arguments.
	Parameters any `json:"parameters,omitempty"`
	// Strict requests strict schema adherence from the provider.
	Strict bool `json:"strict,omitempty"`
}

// Tool is a tool schema in the wire form sent to the model.
type Tool struct {
	// Type of the tool, typically "function".
	Type string `json:"type"`
	// Function is the definition of the function.
	Function *FunctionDefinition `json:"function,omitempty"`
}

// Usage reports token counters returned by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ContentChoice is one of the response choices returned by GenerateContent.
type ContentChoice struct {
	// Content is the textual content of the response.
	Content string `json:"content"`
	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`
	// ToolCalls is the ordered list of tool calls the model asks to invoke.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ContentResponse is the response returned by a GenerateContent call.
type ContentResponse struct {
	Choices []*ContentChoice `json:"choices"`
	Usage   Usage            `json:"usage"`
}
