package toolset

import (
	"context"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentui/tools"
	"github.com/effective-security/agentui/utils"
	"github.com/invopop/jsonschema"
)

// SearchToolName is the name of the discovery meta-tool.
const SearchToolName = "search_tools"

const searchToolDescription = "Search for and load tools by describing what you want to do. " +
	"After searching, the matching tools will be automatically loaded and available for immediate use in your next action. " +
	"You should search for tools and then use them in the same conversation turn when possible."

// SearchTool is the always-available meta-tool that lets the model
// expand its own visible toolset mid-conversation.
type SearchTool struct {
	manager    *Manager
	parameters *jsonschema.Schema
}

type searchToolArgs struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

// NewSearchTool binds the meta-tool to the manager. categories, when
// supplied, become the enum of the optional category filter.
func NewSearchTool(manager *Manager, categories ...string) *SearchTool {
	queryProp := &jsonschema.Schema{
		Type:        "string",
		Description: "What you want to do (e.g., 'create a page', 'update layout', 'add chart')",
	}
	categoryProp := &jsonschema.Schema{
		Type:        "string",
		Description: "Optional category filter",
	}
	for _, c := range categories {
		categoryProp.Enum = append(categoryProp.Enum, c)
	}

	props := jsonschema.NewProperties()
	props.Set("query", queryProp)
	props.Set("category", categoryProp)

	return &SearchTool{
		manager: manager,
		parameters: &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			Required:             []string{"query"},
			AdditionalProperties: jsonschema.FalseSchema,
		},
	}
}

// Register adds the meta-tool to the manager as always-loaded.
func (t *SearchTool) Register(ctx context.Context, keywords []string) {
	t.manager.RegisterTool(ctx, t.Name(), tools.DefinitionOf(t), keywords, "general", true)
}

func (t *SearchTool) Name() string        { return SearchToolName }
func (t *SearchTool) Description() string { return searchToolDescription }
func (t *SearchTool) Parameters() any     { return t.parameters }
func (t *SearchTool) Strict() bool        { return true }

func (t *SearchTool) Call(ctx context.Context, input string) (string, error) {
	var args searchToolArgs
	if input != "" {
		if err := ljson.Unmarshal(utils.BytesTrimBackticks([]byte(input)), &args); err != nil {
			return "", errors.WithMessage(tools.ErrFailedUnmarshalInput, err.Error())
		}
	}
	if args.Query == "" {
		return "", errors.WithMessage(tools.ErrFailedUnmarshalInput, "query is required")
	}

	matches := t.manager.Search(ctx, args.Query, args.Category, 0)
	return utils.ToJSONIndent(matches), nil
}

var _ tools.IStrictTool = (*SearchTool)(nil)
