package agent

import (
	"context"
	"slices"

	"github.com/effective-security/agentui/pkg/llms"
	"github.com/effective-security/agentui/tools"
	"github.com/effective-security/xlog"
)

// OriginLocal identifies the pool of locally bound tools.
const OriginLocal = "local"

// ResolveOriginFunc resolves an ambiguous tool name to one of the
// supplied origins. It must return a member of origins.
type ResolveOriginFunc func(name string, origins []string) string

// RemoteServer is a connected remote tool server. Implementations
// advertise their tools and execute calls by name.
type RemoteServer interface {
	// Tools returns the advertised tool definitions.
	Tools() []tools.Definition
	// CallTool executes the named tool with a JSON argument string and
	// returns the result coerced to a string.
	CallTool(ctx context.Context, name string, arguments string) (string, error)
	// Disconnect releases the server connection.
	Disconnect(ctx context.Context) error
}

// routeTable maps tool names to the origins advertising them, built per
// conversation turn from the local pool followed by each remote pool in
// attachment order.
type routeTable struct {
	// schemas is the wire form sent to the model, origin already
	// stripped.
	schemas []llms.Tool
	// origins lists, per name, the origin identifiers in aggregation
	// order.
	origins map[string][]string
}

func (a *Agent) buildRouteTable() *routeTable {
	table := &routeTable{
		origins: make(map[string][]string),
	}
	add := func(def tools.Definition, origin string) {
		table.schemas = append(table.schemas, def.ToLLM())
		table.origins[def.Name] = append(table.origins[def.Name], origin)
	}

	for _, def := range a.toolset.GetActiveTools() {
		add(def, OriginLocal)
	}
	for _, name := range a.remoteNames {
		for _, def := range a.remotes[name].Tools() {
			add(def, name)
		}
	}
	return table
}

// resolveOrigin picks the executing origin for a name advertised by
// multiple pools. Without a resolver, or when the resolver returns an
// unknown origin, the first origin in aggregation order wins.
func (a *Agent) resolveOrigin(ctx context.Context, name string, origins []string) string {
	chosen := origins[0]
	if len(origins) > 1 && a.cfg.ResolveOrigin != nil {
		picked := a.cfg.ResolveOrigin(name, origins)
		if slices.Contains(origins, picked) {
			chosen = picked
		} else {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "invalid_origin_resolution",
				"tool", name,
				"picked", picked)
		}
	}
	return chosen
}
