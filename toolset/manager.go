package toolset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/effective-security/agentui/embed"
	"github.com/effective-security/agentui/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentui", "toolset")

// Registration is a registry entry owned by the Manager.
type Registration struct {
	Definition tools.Definition
	Keywords   []string
	Category   string
	// Embedding is the stored vector for semantic search, nil when the
	// Manager has no Embedder or the computation failed.
	Embedding []float32
}

// Config provides the Manager configuration.
type Config struct {
	// Embedder enables semantic search when set. Without it the Manager
	// falls back to keyword scoring.
	Embedder embed.Embedder
	// Search overrides the default search parameters.
	Search *SearchConfig
}

// Manager is a registry of declared tools with lazy activation.
// Only active tools are exposed to the model; search activates more
// on demand. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	embedder embed.Embedder
	search   SearchConfig

	registry map[string]*Registration
	// order preserves registration order so that search results and
	// active-tool listings are deterministic.
	order           []string
	alwaysActive    map[string]bool
	currentlyActive map[string]bool
}

// NewManager returns an empty Manager.
func NewManager(cfg *Config) *Manager {
	m := &Manager{
		search:          DefaultSearchConfig(),
		registry:        make(map[string]*Registration),
		alwaysActive:    make(map[string]bool),
		currentlyActive: make(map[string]bool),
	}
	if cfg != nil {
		m.embedder = cfg.Embedder
		if cfg.Search != nil {
			m.search = *cfg.Search
		}
	}
	return m
}

// RegisterTool adds or overwrites a registration. When alwaysLoad is
// true the tool becomes permanently active; a later re-registration
// with alwaysLoad=false does not demote it. If an Embedder is
// configured, the embedding is computed from the name, description and
// keywords; embedding failure is logged and the tool stays searchable
// via the keyword fallback.
func (m *Manager) RegisterTool(ctx context.Context, name string, def tools.Definition, keywords []string, category string, alwaysLoad bool) {
	reg := &Registration{
		Definition: def,
		Keywords:   keywords,
		Category:   category,
	}

	if m.embedder != nil {
		text := fmt.Sprintf("%s: %s. Keywords: %s", name, def.Description, strings.Join(keywords, ", "))
		vec, err := m.embedder.Embed(ctx, text)
		if err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"reason", "tool_embedding",
				"tool", name,
				"err", err.Error())
		} else {
			reg.Embedding = vec
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.registry[name]; !exists {
		m.order = append(m.order, name)
	}
	m.registry[name] = reg

	if alwaysLoad {
		m.alwaysActive[name] = true
		m.currentlyActive[name] = true
	}

	logger.ContextKV(ctx, xlog.DEBUG, "registered_tool", name, "category", category)
}

// LoadTools adds registered names to the active set. Unknown names are
// ignored.
func (m *Manager) LoadTools(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked(names)
}

func (m *Manager) loadLocked(names []string) {
	for _, name := range names {
		if _, ok := m.registry[name]; ok {
			m.currentlyActive[name] = true
		}
	}
}

// UnloadTools removes names from the active set. A no-op for
// always-loaded tools.
func (m *Manager) UnloadTools(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if !m.alwaysActive[name] {
			delete(m.currentlyActive, name)
		}
	}
}

// ClearLoadedTools resets the active set back to exactly the
// always-loaded tools.
func (m *Manager) ClearLoadedTools() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentlyActive = make(map[string]bool, len(m.alwaysActive))
	for name := range m.alwaysActive {
		m.currentlyActive[name] = true
	}
}

// GetActiveTools returns the definitions of the active tools, in
// registration order.
func (m *Manager) GetActiveTools() []tools.Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var defs []tools.Definition
	for _, name := range m.order {
		if m.currentlyActive[name] {
			defs = append(defs, m.registry[name].Definition)
		}
	}
	return defs
}

// Stats describes the current registry and activation state.
type Stats struct {
	TotalRegistered       int  `json:"total_registered"`
	CurrentlyLoaded       int  `json:"currently_loaded"`
	AlwaysLoaded          int  `json:"always_loaded"`
	SemanticSearchEnabled bool `json:"semantic_search_enabled"`
}

// GetStats returns usage statistics.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		TotalRegistered:       len(m.registry),
		CurrentlyLoaded:       len(m.currentlyActive),
		AlwaysLoaded:          len(m.alwaysActive),
		SemanticSearchEnabled: m.embedder != nil,
	}
}

func (m *Manager) hasEmbeddings() bool {
	for _, reg := range m.registry {
		if len(reg.Embedding) > 0 {
			return true
		}
	}
	return false
}
