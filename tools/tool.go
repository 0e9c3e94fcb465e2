package tools

import (
	"context"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/schema"
	"github.com/effective-security/agentui/utils"
)

var (
	// ErrFailedUnmarshalInput is returned when a tool cannot parse its arguments.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
)

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// IStrictTool marks a tool whose schema must be enforced verbatim by the model.
type IStrictTool interface {
	ITool
	Strict() bool
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// funcTool adapts a typed Go function into ITool.
// Arguments are parsed leniently, the models occasionally emit
// trailing commas or unquoted keys.
type funcTool[I any, O any] struct {
	name        string
	description string
	strict      bool
	parameters  any
	fn          func(context.Context, *I) (*O, error)
}

// NewFunc wraps fn as a tool named name. The parameters schema is
// reflected from I.
func NewFunc[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (Tool[I, O], error) {
	var in I
	sc, err := schema.New(reflect.TypeOf(in))
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to build schema for tool %q", name)
	}
	return &funcTool[I, O]{
		name:        name,
		description: description,
		parameters:  sc.Parameters,
		fn:          fn,
	}, nil
}

// NewStrictFunc is NewFunc with strict schema enforcement enabled.
func NewStrictFunc[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (Tool[I, O], error) {
	t, err := NewFunc(name, description, fn)
	if err != nil {
		return nil, err
	}
	t.(*funcTool[I, O]).strict = true
	return t, nil
}

func (t *funcTool[I, O]) Name() string        { return t.name }
func (t *funcTool[I, O]) Description() string { return t.description }
func (t *funcTool[I, O]) Parameters() any     { return t.parameters }
func (t *funcTool[I, O]) Strict() bool        { return t.strict }

func (t *funcTool[I, O]) Run(ctx context.Context, in *I) (*O, error) {
	return t.fn(ctx, in)
}

func (t *funcTool[I, O]) Call(ctx context.Context, input string) (string, error) {
	var in I
	if input != "" {
		if err := ljson.Unmarshal(utils.BytesTrimBackticks([]byte(input)), &in); err != nil {
			return "", errors.WithMessage(ErrFailedUnmarshalInput, err.Error())
		}
	}
	out, err := t.Run(ctx, &in)
	if err != nil {
		return "", err
	}
	return utils.Stringify(out), nil
}

// Definition is the origin-independent description of a tool.
type Definition struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Parameters  any    `json:"parameters" yaml:"parameters"`
	Strict      bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// DefinitionOf captures an ITool as a Definition.
func DefinitionOf(t ITool) Definition {
	d := Definition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
	if st, ok := t.(IStrictTool); ok {
		d.Strict = st.Strict()
	}
	return d
}

// ToLLM converts the definition to the wire form sent to the model.
func (d Definition) ToLLM() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
			Strict:      d.Strict,
		},
	}
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a JSON block describing the listed tools,
// suitable for inclusion in a prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return utils.BackticksJSON(utils.ToJSONIndent(d))
}
